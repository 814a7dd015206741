//go:build !windows

package state

import (
	"io"
	"os"
	"syscall"
)

// Takes a non-blocking fcntl write lock on the whole file.
//
// fcntl POSIX locks give the most consistent behavior across unix
// platforms, including some coverage over NFS and CIFS mounts.
func lockFile(f *os.File) error {
	flock := &syscall.Flock_t{
		Type:   syscall.F_WRLCK,
		Whence: int16(io.SeekStart),
		Start:  0,
		Len:    0,
	}

	return syscall.FcntlFlock(f.Fd(), syscall.F_SETLK, flock)
}

// Releases the fcntl lock taken by lockFile.
func unlockFile(f *os.File) error {
	flock := &syscall.Flock_t{
		Type:   syscall.F_UNLCK,
		Whence: int16(io.SeekStart),
		Start:  0,
		Len:    0,
	}

	return syscall.FcntlFlock(f.Fd(), syscall.F_SETLK, flock)
}

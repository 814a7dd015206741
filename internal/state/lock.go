package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"time"

	"github.com/google/uuid"

	"github.com/moorhq/moor/internal/paths"
)

// Describes who holds the state lock. Serialized to the lock sidecar so a
// blocked invocation can tell the user what to wait for.
type LockInfo struct {
	ID        string    `json:"id"`
	Operation string    `json:"operation"`
	Who       string    `json:"who"`
	Created   time.Time `json:"created"`
}

// Returned when the state lock is already held.
type LockError struct {
	Info *LockInfo
	Err  error
}

func (e *LockError) Error() string {
	if e.Info != nil {
		return fmt.Sprintf("state locked by %s (operation %q, since %s): %s",
			e.Info.Who, e.Info.Operation, e.Info.Created.Format(time.RFC3339), e.Err)
	}
	return fmt.Sprintf("state locked: %s", e.Err)
}

func (e *LockError) Unwrap() error { return e.Err }

// Creates lock metadata for an operation, attributed to user@host.
func NewLockInfo(operation string) *LockInfo {
	who := "unknown"
	if u, err := user.Current(); err == nil {
		who = u.Username
	}
	if host, err := os.Hostname(); err == nil {
		who += "@" + host
	}

	return &LockInfo{
		ID:        uuid.NewString(),
		Operation: operation,
		Who:       who,
		Created:   time.Now().UTC(),
	}
}

// Acquires the advisory lock guarding the state file.
//
// The lock is taken without blocking; if another process holds it, the
// sidecar is read and returned inside a LockError. On success the sidecar
// is written and the lock ID returned for the matching Unlock. The lock
// file itself persists between runs; only the sidecar marks it held.
func (m *Filesystem) Lock(info *LockInfo) (string, error) {
	if m.lockFile != nil {
		return "", fmt.Errorf("state %s already locked by this process", m.path)
	}

	f, err := os.OpenFile(paths.LockFile(m.path), os.O_RDWR|os.O_CREATE, paths.DefaultFileMode)
	if err != nil {
		return "", fmt.Errorf("opening state lock: %w", err)
	}

	if err := lockFile(f); err != nil {
		f.Close()
		holder, _ := m.readLockInfo()
		return "", &LockError{Info: holder, Err: err}
	}

	m.lockFile = f
	m.lockID = info.ID

	if err := m.writeLockInfo(info); err != nil {
		m.unlockAndClose()
		return "", err
	}

	m.log.Debug("state locked", "path", m.path, "id", info.ID, "operation", info.Operation)
	return info.ID, nil
}

// Releases the lock taken by Lock. The ID must match.
func (m *Filesystem) Unlock(id string) error {
	if m.lockFile == nil {
		return ErrNotLocked
	}
	if id != m.lockID {
		return fmt.Errorf("lock id %q does not match held lock %q", id, m.lockID)
	}

	if err := os.Remove(paths.LockInfo(m.path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		m.log.Warn("failed to remove lock sidecar", "path", paths.LockInfo(m.path), "error", err)
	}

	err := m.unlockAndClose()
	m.log.Debug("state unlocked", "path", m.path, "id", id)
	return err
}

func (m *Filesystem) unlockAndClose() error {
	err := unlockFile(m.lockFile)
	if cerr := m.lockFile.Close(); err == nil {
		err = cerr
	}
	m.lockFile = nil
	m.lockID = ""
	return err
}

func (m *Filesystem) writeLockInfo(info *LockInfo) error {
	raw, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding lock info: %w", err)
	}
	if err := os.WriteFile(paths.LockInfo(m.path), raw, paths.DefaultFileMode); err != nil {
		return fmt.Errorf("writing lock info: %w", err)
	}
	return nil
}

func (m *Filesystem) readLockInfo() (*LockInfo, error) {
	raw, err := os.ReadFile(paths.LockInfo(m.path))
	if err != nil {
		return nil, err
	}
	var info LockInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

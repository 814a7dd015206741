package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/moorhq/moor/internal/paths"
)

var (
	// Returned when the state file exists but cannot be decoded.
	ErrCorrupt = errors.New("state file is corrupt")

	// Returned when a lock operation is attempted without holding the lock.
	ErrNotLocked = errors.New("state is not locked")
)

// Manages one state file on local disk.
//
// Lock must be held around Load/Persist pairs; the lock is advisory and
// taken on a dedicated lock file so other moor processes block out.
type Filesystem struct {
	path string

	// Open handle carrying the advisory lock. Nil when unlocked.
	lockFile *os.File

	// ID of the lock we hold, echoed back on Unlock.
	lockID string

	log hclog.Logger
}

// Creates a manager for the state file at path.
func NewFilesystem(path string) *Filesystem {
	return &Filesystem{
		path: path,
		log:  hclog.Default().Named("state"),
	}
}

// Reads the state file.
//
// A missing file yields a fresh empty state; a present but undecodable
// file is an error rather than a silent reset, since overwriting it would
// orphan live objects.
func (m *Filesystem) Load() (*State, error) {
	raw, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		m.log.Debug("no state file, starting fresh", "path", m.path)
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state: %w", err)
	}

	// A zero-byte state is as fresh as a missing one.
	if len(raw) == 0 {
		return New(), nil
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrCorrupt, m.path, err)
	}
	if st.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %s: unsupported format version %d", ErrCorrupt, m.path, st.Version)
	}
	if st.Resources == nil {
		st.Resources = make(map[string]*Resource)
	}

	return &st, nil
}

// Writes the state file, bumping the serial.
//
// The previous contents are saved to the backup path, and the new contents
// go through a temp file and rename so a crash never leaves a torn state.
func (m *Filesystem) Persist(st *State) error {
	st.Serial++

	if err := m.backup(); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	raw = append(raw, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(m.path), ".moor-state-*")
	if err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Chmod(paths.DefaultFileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}

	if err := os.Rename(tmp.Name(), m.path); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}

	m.log.Debug("state persisted", "path", m.path, "serial", st.Serial, "resources", len(st.Resources))
	return nil
}

// Copies the current state file to the backup path, if one exists.
func (m *Filesystem) backup() error {
	raw, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("backing up state: %w", err)
	}

	if err := os.WriteFile(paths.StateBackup(m.path), raw, paths.DefaultFileMode); err != nil {
		return fmt.Errorf("backing up state: %w", err)
	}

	return nil
}

package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	toolName = "moor"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the declaration file in a working directory.
func Declaration(dir string) string {
	return filepath.Join(dir, toolName+".hcl")
}

// Path to the state file for a working directory.
func State(dir string) string {
	return filepath.Join(dir, toolName+".state")
}

// Path to the backup written before a state file is overwritten.
func StateBackup(statePath string) string {
	return statePath + ".backup"
}

// Path to the advisory lock file for a state file.
//
// The lock lives on a dedicated file so that atomic state writes (temp
// file plus rename) never swap the locked inode out from under a holder.
func LockFile(statePath string) string {
	dir := filepath.Dir(statePath)
	base := filepath.Base(statePath)
	return filepath.Join(dir, "."+base+".lock")
}

// Path to the lock metadata sidecar for a state file.
//
// The sidecar records who holds the advisory lock so that a blocked
// invocation can report the holder.
func LockInfo(statePath string) string {
	dir := filepath.Dir(statePath)
	base := filepath.Base(statePath)
	return filepath.Join(dir, "."+base+".lock.info")
}

// Path to the workspace directory created by 'moor init'.
//
// Holds the recorded engine fingerprint. Plan, apply, and destroy refuse
// to run until init has populated it.
func Workspace(dir string) string {
	return filepath.Join(dir, "."+toolName)
}

// Path to the engine fingerprint file inside the workspace directory.
func EngineFile(dir string) string {
	return filepath.Join(Workspace(dir), "engine.json")
}

// Path to the optional global CLI configuration.
//
//	Linux:   $XDG_CONFIG_HOME/moor/config.hcl or ~/.config/moor/config.hcl
//	macOS:   ~/Library/Application Support/moor/config.hcl
func CLIConfig() string {
	return filepath.Join(xdg.ConfigHome, toolName, "config.hcl")
}

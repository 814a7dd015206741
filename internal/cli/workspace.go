package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"

	"github.com/moorhq/moor/internal/config"
	"github.com/moorhq/moor/internal/paths"
	"github.com/moorhq/moor/internal/runtime"
	"github.com/moorhq/moor/internal/state"
	"github.com/moorhq/moor/internal/ui"
)

// Returned when a verb needs an initialized workspace and finds none.
var errNotInitialized = errors.New(`workspace not initialized; run "moor init" first`)

// What init records about the engine it connected to.
type engineRecord struct {
	Host          string    `json:"host,omitempty"`
	APIVersion    string    `json:"api_version"`
	OS            string    `json:"os"`
	InitializedAt time.Time `json:"initialized_at"`
}

// Resolves the engine socket address: flag first, then the global CLI
// config, then the client's environment defaults (empty string).
func engineHost() (string, error) {
	if RootCmd.Host != "" {
		return RootCmd.Host, nil
	}

	cfg, err := config.LoadCLIConfig()
	if err != nil {
		return "", fmt.Errorf("loading CLI config: %w", err)
	}
	return cfg.Host, nil
}

// Connects to the container engine.
func connectEngine() (*runtime.Runtime, error) {
	host, err := engineHost()
	if err != nil {
		return nil, err
	}
	return runtime.New(host)
}

// Ensures init has populated the workspace directory.
func requireInit() error {
	if _, err := os.Stat(paths.EngineFile(".")); errors.Is(err, fs.ErrNotExist) {
		return errNotInitialized
	} else if err != nil {
		return err
	}
	return nil
}

func writeEngineRecord(rec engineRecord) error {
	if err := os.MkdirAll(paths.Workspace("."), paths.DefaultDirMode); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(paths.EngineFile("."), raw, paths.DefaultFileMode)
}

// Loads the declaration and runs validation, printing diagnostics.
//
// Returns an error when the declaration cannot be used, after the
// diagnostics have already been shown.
func loadDeclaration(u *ui.UI) (*config.File, error) {
	cfg, diags := config.Load(paths.Declaration("."))
	if cfg != nil {
		diags = append(diags, cfg.Validate()...)
	}

	printDiags(u, diags)
	if diags.HasErrors() {
		return nil, errors.New("the declaration is invalid")
	}
	return cfg, nil
}

// Opens the state file and runs fn with the advisory lock held.
//
// The lock is released on the way out; an unlock failure is reported
// alongside whatever fn returned rather than masking it.
func withLockedState(operation string, fn func(store *state.Filesystem, st *state.State) error) (err error) {
	store := state.NewFilesystem(paths.State("."))

	lockID, err := store.Lock(state.NewLockInfo(operation))
	if err != nil {
		return err
	}
	defer func() {
		if uerr := store.Unlock(lockID); uerr != nil {
			err = multierror.Append(err, uerr)
		}
	}()

	st, err := store.Load()
	if err != nil {
		return err
	}

	return fn(store, st)
}

// Prints diagnostics in severity-tagged form.
func printDiags(u *ui.UI, diags hcl.Diagnostics) {
	for _, d := range diags {
		tag := "[bold][red]Error:[reset]"
		if d.Severity == hcl.DiagWarning {
			tag = "[bold][yellow]Warning:[reset]"
		}

		msg := fmt.Sprintf("%s %s", tag, d.Summary)
		if d.Subject != nil {
			msg += fmt.Sprintf(" (%s)", d.Subject)
		}
		if d.Detail != "" {
			msg += "\n\n  " + d.Detail
		}
		u.Error(msg + "\n")
	}
}

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/moorhq/moor/internal/ui"
)

// Represents the 'moor init' command.
type InitCmd struct{}

// Executes the init command.
//
// Connects to the container engine, negotiates the API version, and
// records the engine fingerprint in the workspace directory. The other
// lifecycle verbs refuse to run until this has happened.
func (c *InitCmd) Run(ctx context.Context, u *ui.UI) error {
	host, err := engineHost()
	if err != nil {
		return err
	}

	rt, err := connectEngine()
	if err != nil {
		return err
	}
	defer rt.Close()

	info, err := rt.Ping(ctx)
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}

	if err := writeEngineRecord(engineRecord{
		Host:          host,
		APIVersion:    info.APIVersion,
		OS:            info.OS,
		InitializedAt: time.Now().UTC(),
	}); err != nil {
		return err
	}

	u.Output(fmt.Sprintf("[bold][green]moor has been initialized![reset] Engine API %s (%s).", info.APIVersion, info.OS))
	return nil
}

package cli

import (
	"context"

	"github.com/moorhq/moor/internal/ui"
)

// Represents the 'moor validate' command.
type ValidateCmd struct{}

// Executes the validate command.
//
// Checks the declaration without touching the engine or the state file.
func (c *ValidateCmd) Run(ctx context.Context, u *ui.UI) error {
	if _, err := loadDeclaration(u); err != nil {
		return err
	}

	u.Output("[green]Success![reset] The declaration is valid.")
	return nil
}

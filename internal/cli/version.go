package cli

import (
	"context"
	"fmt"

	"github.com/moorhq/moor/internal/version"
)

// Represents the 'moor version' command.
type VersionCmd struct{}

// Executes the version command.
func (c *VersionCmd) Run(ctx context.Context) error {
	fmt.Println(version.String())
	return nil
}

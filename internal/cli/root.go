package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/moorhq/moor/internal/logging"
	"github.com/moorhq/moor/internal/ui"
	"github.com/moorhq/moor/internal/version"
)

// Represents the root command for the moor CLI.
var RootCmd struct {
	Quiet   bool   `short:"q" help:"Suppress informational output."`
	Verbose bool   `short:"v" help:"Enable verbose output."`
	Debug   bool   `short:"d" help:"Enable debug output."`
	Chdir   string `short:"C" help:"Run as if started in this directory." placeholder:"DIR"`
	Host    string `help:"Override the container engine socket address." placeholder:"ADDR"`

	Init     InitCmd     `cmd:"" help:"Connect to the container engine and prepare the workspace."`
	Validate ValidateCmd `cmd:"" help:"Check that the declaration is well-formed."`
	Plan     PlanCmd     `cmd:"" help:"Show the changes required to match the declaration."`
	Apply    ApplyCmd    `cmd:"" help:"Create or update the declared resources."`
	Destroy  DestroyCmd  `cmd:"" help:"Remove everything recorded in state."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected verb.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name("moor"),
		kong.Description("A declarative provisioner for a local container engine.\n\nReads a moor.hcl declaration, diffs it against recorded state, and converges the engine."),
		kong.UsageOnError(),
		kong.Vars{
			"version": version.String(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(ui.New()),
	)

	logging.Setup(RootCmd.Quiet || version.IsQuiet(),
		RootCmd.Verbose || version.IsVerbose(),
		RootCmd.Debug || version.IsDebug())

	if RootCmd.Chdir != "" {
		if err := os.Chdir(RootCmd.Chdir); err != nil {
			return err
		}
	}

	return kongCtx.Run()
}

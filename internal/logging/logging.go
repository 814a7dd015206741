// Package logging configures the global hclog logger.
//
// Operational logs go to stderr so they never interleave with plan output
// on stdout. The level is seeded from build-time defaults and overridden
// by CLI flags once parsing has completed.
package logging

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-isatty"

	"github.com/moorhq/moor/internal/version"
)

// Configures and installs the global logger.
//
// Flags override build-time linker defaults. Color is enabled only when
// stderr is an interactive terminal.
func Setup(quiet, verbose, debug bool) {
	hclog.SetDefault(hclog.New(&hclog.LoggerOptions{
		Name:            "moor",
		Level:           level(quiet, debug),
		Output:          os.Stderr,
		Color:           colorOption(),
		IncludeLocation: verbose || version.IsVerbose(),
	}))
}

// Returns the configured global logger.
func Default() hclog.Logger {
	return hclog.Default()
}

// Returns the log level derived from flags and build-time defaults.
func level(quiet, debug bool) hclog.Level {
	if debug || version.IsDebug() {
		return hclog.Debug
	}
	if quiet || version.IsQuiet() {
		return hclog.Warn
	}
	return hclog.Info
}

// Returns the color mode for stderr.
func colorOption() hclog.ColorOption {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return hclog.AutoColor
	}
	return hclog.ColorOff
}

package main

import (
	"os"

	"github.com/moorhq/moor/internal/cli"
	"github.com/moorhq/moor/internal/logging"
	"github.com/moorhq/moor/internal/version"
)

// The entry point for the moor CLI.
//
// Initializes logging from build-time defaults, displays startup
// information, and executes the root command. If any error occurs during
// execution, it exits with a non-zero code.
func main() {
	logging.Setup(version.IsQuiet(), version.IsVerbose(), version.IsDebug())

	log := logging.Default()
	log.Debug("build", "version", version.String())
	log.Debug("moor is running",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}

// Package cli parses flags and dispatches the moor verbs.
//
// The tool accepts the following global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	-C, --chdir     Run as if started in the given directory.
//	    --host      Override the container engine socket address.
//
// Flags override build-time defaults set via linker flags. After parsing,
// the global logger is reconfigured to reflect the final level before the
// selected verb runs. Apply and destroy additionally take -auto-approve
// to skip the interactive confirmation.
package cli

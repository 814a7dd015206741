// Package ui handles user-facing terminal output.
//
// Plan summaries and prompts go through here rather than the logger, so
// that stdout carries only content a user (or a transcript) cares about.
// Color tags are colorstring-style ("[green]", "[bold]") and are stripped
// when stdout is not an interactive terminal.
package ui

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/mitchellh/cli"
	"github.com/mitchellh/colorstring"
)

// Writes colorized output and reads confirmations.
type UI struct {
	base     cli.Ui
	colorize *colorstring.Colorize
}

// Creates a UI bound to the process's standard streams.
func New() *UI {
	return &UI{
		base: &cli.BasicUi{
			Reader:      os.Stdin,
			Writer:      os.Stdout,
			ErrorWriter: os.Stderr,
		},
		colorize: &colorstring.Colorize{
			Colors:  colorstring.DefaultColors,
			Disable: !isatty.IsTerminal(os.Stdout.Fd()),
			Reset:   true,
		},
	}
}

// Writes a line to stdout, expanding color tags.
func (u *UI) Output(msg string) {
	u.base.Output(u.colorize.Color(msg))
}

// Writes a line to stderr, expanding color tags.
func (u *UI) Error(msg string) {
	u.base.Error(u.colorize.Color(msg))
}

// Asks a question and reports whether the user typed the literal "yes".
//
// Anything else, including an empty line or a read error, counts as a
// refusal. Destructive verbs gate on this unless -auto-approve is set.
func (u *UI) Confirm(question string) (bool, error) {
	u.Output(question)
	answer, err := u.base.Ask(`  Only "yes" will be accepted to approve.` + "\n\n  Enter a value:")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(answer) == "yes", nil
}

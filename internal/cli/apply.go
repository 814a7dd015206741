package cli

import (
	"context"
	"fmt"

	"github.com/moorhq/moor/internal/plan"
	"github.com/moorhq/moor/internal/reconcile"
	"github.com/moorhq/moor/internal/state"
	"github.com/moorhq/moor/internal/ui"
)

// Represents the 'moor apply' command.
type ApplyCmd struct {
	AutoApprove bool `help:"Skip the interactive confirmation."`
}

// Executes the apply command.
//
// Plans, shows the change set, asks for the literal "yes", and executes.
// State is persisted after every resource, so an aborted apply leaves an
// accurate record.
func (c *ApplyCmd) Run(ctx context.Context, u *ui.UI) error {
	if err := requireInit(); err != nil {
		return err
	}

	cfg, err := loadDeclaration(u)
	if err != nil {
		return err
	}

	rt, err := connectEngine()
	if err != nil {
		return err
	}
	defer rt.Close()

	return withLockedState("apply", func(store *state.Filesystem, st *state.State) error {
		r := reconcile.New(rt, store.Persist)
		changed, err := r.Refresh(ctx, st)
		if err != nil {
			return err
		}
		// Record what refresh learned even when nothing else follows, so
		// the state file never describes objects the engine lost.
		if changed {
			if err := store.Persist(st); err != nil {
				return err
			}
		}

		p := plan.Diff(cfg, st)
		u.Output(p.Render())

		if p.Empty() {
			return nil
		}

		if !c.AutoApprove {
			ok, err := u.Confirm("\n[bold]Do you want to perform these actions?[reset]")
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("apply cancelled")
			}
			u.Output("")
		}

		if err := r.Apply(ctx, p, st); err != nil {
			return err
		}

		add, change, destroy := p.Counts()
		u.Output(fmt.Sprintf("\n[bold][green]Apply complete![reset] Resources: %d added, %d changed, %d destroyed.", add, change, destroy))
		return nil
	})
}

package cli

import (
	"context"
	"fmt"

	"github.com/moorhq/moor/internal/config"
	"github.com/moorhq/moor/internal/plan"
	"github.com/moorhq/moor/internal/reconcile"
	"github.com/moorhq/moor/internal/state"
	"github.com/moorhq/moor/internal/ui"
)

// Represents the 'moor destroy' command.
type DestroyCmd struct {
	AutoApprove bool `help:"Skip the interactive confirmation."`
}

// Executes the destroy command.
//
// Plans against an empty declaration, which marks everything in state for
// removal: containers first, then their images. Images recorded with
// keep_locally survive on the engine but leave the state.
func (c *DestroyCmd) Run(ctx context.Context, u *ui.UI) error {
	if err := requireInit(); err != nil {
		return err
	}

	rt, err := connectEngine()
	if err != nil {
		return err
	}
	defer rt.Close()

	return withLockedState("destroy", func(store *state.Filesystem, st *state.State) error {
		r := reconcile.New(rt, store.Persist)
		changed, err := r.Refresh(ctx, st)
		if err != nil {
			return err
		}
		if changed {
			if err := store.Persist(st); err != nil {
				return err
			}
		}

		if st.Empty() {
			u.Output("Nothing to destroy. The state records no resources.")
			return nil
		}

		p := plan.Diff(&config.File{}, st)
		u.Output(p.Render())

		if !c.AutoApprove {
			ok, err := u.Confirm("\n[bold]Do you really want to destroy all resources?[reset]")
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("destroy cancelled")
			}
			u.Output("")
		}

		if err := r.Apply(ctx, p, st); err != nil {
			return err
		}

		_, _, destroyed := p.Counts()
		u.Output(fmt.Sprintf("\n[bold][green]Destroy complete![reset] Resources: %d destroyed.", destroyed))
		return nil
	})
}

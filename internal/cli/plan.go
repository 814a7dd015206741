package cli

import (
	"context"

	"github.com/moorhq/moor/internal/plan"
	"github.com/moorhq/moor/internal/reconcile"
	"github.com/moorhq/moor/internal/state"
	"github.com/moorhq/moor/internal/ui"
)

// Represents the 'moor plan' command.
type PlanCmd struct{}

// Executes the plan command.
//
// Refreshes the recorded resources against the live engine, diffs the
// declaration, and renders the change set. Nothing is modified; the
// refreshed view is discarded rather than persisted.
func (c *PlanCmd) Run(ctx context.Context, u *ui.UI) error {
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

	return withLockedState("plan", func(store *state.Filesystem, st *state.State) error {
		// Refresh works on a copy: plan must not rewrite the record.
		refreshed := st.DeepCopy()

		r := reconcile.New(rt, store.Persist)
		if _, err := r.Refresh(ctx, refreshed); err != nil {
			return err
		}

		u.Output(plan.Diff(cfg, refreshed).Render())
		return nil
	})
}

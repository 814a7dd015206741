package reconcile

import (
	"context"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/moorhq/moor/internal/runtime"
	"github.com/moorhq/moor/internal/state"
)

// The engine operations the reconciler needs. Satisfied by
// [runtime.Runtime]; tests substitute a fake.
type Engine interface {
	EnsureImage(ctx context.Context, ref, platform string) (runtime.ImageSummary, error)
	LookupImage(ctx context.Context, refOrID string) (runtime.ImageSummary, bool, error)
	RemoveImage(ctx context.Context, id string) error
	CreateContainer(ctx context.Context, spec runtime.ContainerSpec) (string, error)
	InspectContainer(ctx context.Context, id string) (runtime.ContainerStatus, bool, error)
	RemoveContainer(ctx context.Context, id string) error
}

// Converges the engine toward a plan, persisting state as it goes.
type Reconciler struct {
	engine  Engine
	persist func(*state.State) error
	log     hclog.Logger
}

// Creates a reconciler. The persist callback is invoked after every state
// mutation; the filesystem state manager's Persist is the usual choice.
func New(engine Engine, persist func(*state.State) error) *Reconciler {
	return &Reconciler{
		engine:  engine,
		persist: persist,
		log:     hclog.Default().Named("reconcile"),
	}
}

// Aligns the state with what actually exists on the engine.
//
// Resources whose live objects are gone are pruned so the next diff plans
// them as creates. A stopped container is different: the engine still
// holds its name, so a fresh create would be refused with a name
// conflict. Its record is kept but tainted, which plans a replace that
// removes the stopped container first. Inspection failures are collected
// rather than aborting the sweep, so one bad record doesn't hide the
// rest. The boolean reports whether the state was mutated and needs
// persisting.
func (r *Reconciler) Refresh(ctx context.Context, st *state.State) (bool, error) {
	var errs *multierror.Error
	changed := false

	for addr, res := range st.Resources {
		switch res.Type {
		case state.TypeImage:
			_, ok, err := r.engine.LookupImage(ctx, res.ID)
			if err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			if !ok {
				r.log.Debug("recorded image gone from engine", "addr", addr, "id", res.ID)
				st.Remove(addr)
				changed = true
			}

		case state.TypeContainer:
			status, ok, err := r.engine.InspectContainer(ctx, res.ID)
			if err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			switch {
			case !ok:
				r.log.Debug("recorded container gone from engine", "addr", addr, "id", res.ID)
				st.Remove(addr)
				changed = true
			case !status.Running && !res.Tainted:
				r.log.Debug("recorded container stopped, tainting", "addr", addr, "id", res.ID)
				res.Tainted = true
				changed = true
			}
		}
	}

	return changed, errs.ErrorOrNil()
}

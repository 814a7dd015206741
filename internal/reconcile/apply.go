package reconcile

import (
	"context"
	"fmt"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/moorhq/moor/internal/config"
	"github.com/moorhq/moor/internal/plan"
	"github.com/moorhq/moor/internal/runtime"
	"github.com/moorhq/moor/internal/state"
)

// Executes a plan in order.
//
// State is persisted after every resource mutation, so an error mid-run
// (the verb aborts on the first failure) leaves the record matching
// whatever was actually created or removed. Replaces persist twice: once
// when the old object is gone, once when the new one exists.
//
// Images superseded by an image replace cannot be removed inline: the
// engine refuses while the container created from them still exists, and
// that container is only replaced later in the plan. They are collected
// and swept once the changes have run.
func (r *Reconciler) Apply(ctx context.Context, p *plan.Plan, st *state.State) error {
	var superseded []string
	defer func() { r.sweepImages(ctx, superseded) }()

	for _, c := range p.Changes {
		if err := r.applyChange(ctx, c, st, &superseded); err != nil {
			return fmt.Errorf("%s: %w", c.Addr, err)
		}
	}
	return nil
}

// Removes images left behind by image replaces, best effort.
func (r *Reconciler) sweepImages(ctx context.Context, ids []string) {
	for _, id := range ids {
		if err := r.engine.RemoveImage(ctx, id); err != nil {
			r.log.Warn("failed to remove superseded image", "id", id, "error", err)
			continue
		}
		r.log.Debug("superseded image removed", "id", id)
	}
}

func (r *Reconciler) applyChange(ctx context.Context, c *plan.Change, st *state.State, superseded *[]string) error {
	r.log.Info("applying", "addr", c.Addr, "action", string(c.Action))

	switch c.Type {
	case state.TypeImage:
		return r.applyImage(ctx, c, st, superseded)
	case state.TypeContainer:
		return r.applyContainer(ctx, c, st)
	default:
		return fmt.Errorf("unknown resource type %q", c.Type)
	}
}

func (r *Reconciler) applyImage(ctx context.Context, c *plan.Change, st *state.State, superseded *[]string) error {
	switch c.Action {
	case plan.Delete:
		if c.Prior.Image != nil && c.Prior.Image.KeepLocally {
			r.log.Info("image kept on engine", "addr", c.Addr, "id", c.Prior.ID)
		} else if err := r.engine.RemoveImage(ctx, c.Prior.ID); err != nil {
			return err
		}
		st.Remove(c.Addr)
		return r.persist(st)

	case plan.Update:
		// Only destroy-time behavior changed; rewrite the record.
		res := *c.Prior
		attrs := *c.Prior.Image
		attrs.KeepLocally = c.Image.KeepLocally
		res.Image = &attrs
		st.Put(c.Addr, &res)
		return r.persist(st)

	case plan.Create, plan.Replace:
		summary, err := r.engine.EnsureImage(ctx, c.Image.Name, c.Image.Platform)
		if err != nil {
			return err
		}

		if c.Action.IsReplace() && c.Prior.ID != summary.ID.String() {
			if c.Prior.Image != nil && !c.Prior.Image.KeepLocally {
				*superseded = append(*superseded, c.Prior.ID)
			}
		}

		st.Put(c.Addr, &state.Resource{
			Type:  state.TypeImage,
			Label: c.Label,
			ID:    summary.ID.String(),
			Image: &state.ImageAttrs{
				Reference:   c.Image.Name,
				KeepLocally: c.Image.KeepLocally,
				Platform:    c.Image.Platform,
			},
		})
		return r.persist(st)

	default:
		return fmt.Errorf("unsupported image action %q", string(c.Action))
	}
}

func (r *Reconciler) applyContainer(ctx context.Context, c *plan.Change, st *state.State) error {
	switch c.Action {
	case plan.Delete:
		if err := r.engine.RemoveContainer(ctx, c.Prior.ID); err != nil {
			return err
		}
		st.Remove(c.Addr)
		return r.persist(st)

	case plan.Replace:
		if err := r.engine.RemoveContainer(ctx, c.Prior.ID); err != nil {
			return err
		}
		st.Remove(c.Addr)
		if err := r.persist(st); err != nil {
			return err
		}
		return r.createContainer(ctx, c, st)

	case plan.Create:
		return r.createContainer(ctx, c, st)

	default:
		return fmt.Errorf("unsupported container action %q", string(c.Action))
	}
}

// Creates a container from its recorded image and records the result.
//
// Plan ordering guarantees the image resource is already in state; the
// container is created from the resolved image ID, not the mutable tag.
func (r *Reconciler) createContainer(ctx context.Context, c *plan.Change, st *state.State) error {
	ctr := c.Container

	imgRes, ok := st.Resources[state.ImageAddr(ctr.Image)]
	if !ok {
		return fmt.Errorf("image.%s has no state record; plan ordering bug", ctr.Image)
	}

	platform, err := config.ParsePlatform(imgRes.Image.Platform)
	if err != nil {
		return err
	}

	spec := runtimeSpec(ctr, imgRes.ID, platform)
	id, err := r.engine.CreateContainer(ctx, spec)
	if err != nil {
		return err
	}

	attrs := &state.ContainerAttrs{
		Name:       ctr.Name,
		ImageLabel: ctr.Image,
		ImageID:    imgRes.ID,
	}
	for _, p := range ctr.Ports {
		attrs.Ports = append(attrs.Ports, state.PortAttrs{
			Internal: p.Internal,
			External: p.External,
			Protocol: p.Proto(),
		})
	}

	st.Put(c.Addr, &state.Resource{
		Type:      state.TypeContainer,
		Label:     c.Label,
		ID:        id,
		Container: attrs,
	})
	return r.persist(st)
}

func runtimeSpec(ctr *config.Container, imageID string, platform *ocispec.Platform) runtime.ContainerSpec {
	spec := runtime.ContainerSpec{
		Name:     ctr.Name,
		Image:    imageID,
		Platform: platform,
	}
	for _, p := range ctr.Ports {
		spec.Ports = append(spec.Ports, runtime.PortSpec{
			Internal: p.Internal,
			External: p.External,
			Protocol: p.Proto(),
		})
	}
	return spec
}

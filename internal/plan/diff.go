package plan

import (
	"sort"

	"github.com/moorhq/moor/internal/config"
	"github.com/moorhq/moor/internal/state"
)

// Computes the change set that converges the engine from the recorded
// state to the declaration.
//
// The state must already be refreshed: resources whose live objects are
// gone should have been pruned so they plan as creates. Passing an empty
// declaration plans the removal of everything, which is exactly what
// destroy does.
func Diff(cfg *config.File, prior *state.State) *Plan {
	p := &Plan{}

	// Removals first: containers before the images they were created from.
	p.Changes = append(p.Changes, removals(cfg, prior)...)

	// Image changes next, so containers always find their image in state.
	changedImages := make(map[string]bool)
	for _, img := range cfg.Images {
		c := diffImage(img, prior)
		if c == nil {
			continue
		}
		if c.Action == Create || c.Action == Replace {
			changedImages[img.Label] = true
		}
		p.Changes = append(p.Changes, c)
	}

	for _, ctr := range cfg.Containers {
		if c := diffContainer(ctr, prior, changedImages); c != nil {
			p.Changes = append(p.Changes, c)
		}
	}

	return p
}

// Plans deletes for state resources absent from the declaration.
func removals(cfg *config.File, prior *state.State) []*Change {
	var containers, images []*Change

	for addr, res := range prior.Resources {
		switch res.Type {
		case state.TypeContainer:
			if !hasContainer(cfg, res.Label) {
				containers = append(containers, &Change{
					Action: Delete, Addr: addr, Type: res.Type, Label: res.Label, Prior: res,
				})
			}
		case state.TypeImage:
			if _, ok := cfg.ImageByLabel(res.Label); !ok {
				images = append(images, &Change{
					Action: Delete, Addr: addr, Type: res.Type, Label: res.Label, Prior: res,
				})
			}
		}
	}

	// Map iteration order is random; deletes render and execute in a
	// stable order instead.
	sortChanges(containers)
	sortChanges(images)

	return append(containers, images...)
}

func diffImage(img *config.Image, prior *state.State) *Change {
	addr := state.ImageAddr(img.Label)
	base := &Change{Addr: addr, Type: state.TypeImage, Label: img.Label, Image: img}

	res, ok := prior.Resources[addr]
	if !ok {
		base.Action = Create
		return base
	}

	base.Prior = res
	attrs := res.Image

	switch {
	case attrs == nil || attrs.Reference != img.Name || attrs.Platform != img.Platform:
		base.Action = Replace
	case attrs.KeepLocally != img.KeepLocally:
		// Only affects destroy behavior; the live object is untouched.
		base.Action = Update
	default:
		return nil
	}

	return base
}

func diffContainer(ctr *config.Container, prior *state.State, changedImages map[string]bool) *Change {
	addr := state.ContainerAddr(ctr.Label)
	base := &Change{Addr: addr, Type: state.TypeContainer, Label: ctr.Label, Container: ctr}

	res, ok := prior.Resources[addr]
	if !ok {
		base.Action = Create
		return base
	}

	base.Prior = res

	// Tainted means the live object is unusable but still holds its
	// engine name; it has to be removed before a new one can exist.
	if res.Tainted || containerDrifted(ctr, res.Container) || changedImages[ctr.Image] {
		base.Action = Replace
		return base
	}

	return nil
}

func containerDrifted(desired *config.Container, recorded *state.ContainerAttrs) bool {
	if recorded == nil {
		return true
	}
	if recorded.Name != desired.Name || recorded.ImageLabel != desired.Image {
		return true
	}
	if len(recorded.Ports) != len(desired.Ports) {
		return true
	}
	for i, p := range desired.Ports {
		got := recorded.Ports[i]
		if got.Internal != p.Internal || got.External != p.External || got.Protocol != p.Proto() {
			return true
		}
	}
	return false
}

func hasContainer(cfg *config.File, label string) bool {
	for _, c := range cfg.Containers {
		if c.Label == label {
			return true
		}
	}
	return false
}

func sortChanges(changes []*Change) {
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Addr < changes[j].Addr
	})
}

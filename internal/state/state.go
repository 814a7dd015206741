package state

import (
	"github.com/google/uuid"
)

// Current state file format version.
const FormatVersion = 1

// Resource types recorded in state.
const (
	TypeImage     = "image"
	TypeContainer = "container"
)

// The persisted record of everything moor has created.
type State struct {
	Version   int                  `json:"version"`
	Lineage   string               `json:"lineage"`
	Serial    uint64               `json:"serial"`
	Resources map[string]*Resource `json:"resources"`
}

// One created object and the attributes that produced it.
type Resource struct {
	Type  string `json:"type"`
	Label string `json:"label"`

	// Engine identifier: image ID digest or container ID.
	ID string `json:"id"`

	// Set by refresh when the live object is unusable but still occupies
	// its engine identity (a stopped container holds its name). Tainted
	// resources plan as replace rather than create.
	Tainted bool `json:"tainted,omitempty"`

	Image     *ImageAttrs     `json:"image,omitempty"`
	Container *ContainerAttrs `json:"container,omitempty"`
}

// Attributes recorded for an image resource.
type ImageAttrs struct {
	Reference   string `json:"reference"`
	KeepLocally bool   `json:"keep_locally"`
	Platform    string `json:"platform,omitempty"`
}

// Attributes recorded for a container resource.
type ContainerAttrs struct {
	Name       string      `json:"name"`
	ImageLabel string      `json:"image_label"`
	ImageID    string      `json:"image_id"`
	Ports      []PortAttrs `json:"ports,omitempty"`
}

// One recorded port mapping.
type PortAttrs struct {
	Internal int    `json:"internal"`
	External int    `json:"external"`
	Protocol string `json:"protocol"`
}

// Creates an empty state with a fresh lineage.
func New() *State {
	return &State{
		Version:   FormatVersion,
		Lineage:   uuid.NewString(),
		Resources: make(map[string]*Resource),
	}
}

// Returns the state address for an image block label.
func ImageAddr(label string) string {
	return TypeImage + "." + label
}

// Returns the state address for a container block label.
func ContainerAddr(label string) string {
	return TypeContainer + "." + label
}

// Reports whether the state records no resources.
func (s *State) Empty() bool {
	return len(s.Resources) == 0
}

// Inserts or replaces a resource record.
func (s *State) Put(addr string, res *Resource) {
	if s.Resources == nil {
		s.Resources = make(map[string]*Resource)
	}
	s.Resources[addr] = res
}

// Removes a resource record. Removing an absent address is a no-op.
func (s *State) Remove(addr string) {
	delete(s.Resources, addr)
}

// Returns a deep copy. Plan works on a copy so a failed run never mutates
// the loaded snapshot.
func (s *State) DeepCopy() *State {
	out := &State{
		Version:   s.Version,
		Lineage:   s.Lineage,
		Serial:    s.Serial,
		Resources: make(map[string]*Resource, len(s.Resources)),
	}

	for addr, res := range s.Resources {
		cp := *res
		if res.Image != nil {
			img := *res.Image
			cp.Image = &img
		}
		if res.Container != nil {
			ctr := *res.Container
			ctr.Ports = append([]PortAttrs(nil), res.Container.Ports...)
			cp.Container = &ctr
		}
		out.Resources[addr] = &cp
	}

	return out
}

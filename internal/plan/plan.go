package plan

import (
	"github.com/moorhq/moor/internal/config"
	"github.com/moorhq/moor/internal/state"
)

// What apply will do to a single resource.
type Action rune

const (
	NoOp    Action = 0
	Create  Action = '+'
	Update  Action = '~'
	Delete  Action = '-'
	Replace Action = '±'
)

// Reports whether the action removes the existing object before creating
// a new one. Containers and images are immutable on the engine, so every
// attribute change that touches the object is a replace.
func (a Action) IsReplace() bool {
	return a == Replace
}

// One planned change.
type Change struct {
	Action Action
	Addr   string
	Type   string
	Label  string

	// Recorded resource this change supersedes. Nil on create.
	Prior *state.Resource

	// Desired configuration. Exactly one is set, matching Type, except on
	// delete where both are nil.
	Image     *config.Image
	Container *config.Container
}

// An ordered change set. Changes are executed front to back.
type Plan struct {
	Changes []*Change
}

// Reports whether the plan contains no work.
func (p *Plan) Empty() bool {
	return len(p.Changes) == 0
}

// Returns the add/change/destroy totals for the summary line. A replace
// counts as one add and one destroy, the way the lifecycle sees it.
func (p *Plan) Counts() (add, change, destroy int) {
	for _, c := range p.Changes {
		switch c.Action {
		case Create:
			add++
		case Update:
			change++
		case Delete:
			destroy++
		case Replace:
			add++
			destroy++
		}
	}
	return add, change, destroy
}

package plan

import (
	"fmt"
	"strings"
)

// Renders the plan as colorstring-tagged text for the UI layer.
//
// The layout mirrors the shape users know from declarative provisioners:
// a symbol per resource, its attributes indented beneath, and a final
// add/change/destroy summary line.
func (p *Plan) Render() string {
	if p.Empty() {
		return "No changes. The engine matches the declaration."
	}

	var b strings.Builder
	b.WriteString("moor will perform the following actions:\n")

	for _, c := range p.Changes {
		b.WriteString("\n")
		b.WriteString(renderChange(c))
	}

	add, change, destroy := p.Counts()
	fmt.Fprintf(&b, "\n[bold]Plan:[reset] %d to add, %d to change, %d to destroy.", add, change, destroy)

	return b.String()
}

func renderChange(c *Change) string {
	var b strings.Builder

	fmt.Fprintf(&b, "  %s [bold]%s[reset]\n", symbol(c.Action), c.Addr)

	switch {
	case c.Image != nil:
		fmt.Fprintf(&b, "      name:         %q\n", c.Image.Name)
		fmt.Fprintf(&b, "      keep_locally: %t\n", c.Image.KeepLocally)
		if c.Image.Platform != "" {
			fmt.Fprintf(&b, "      platform:     %q\n", c.Image.Platform)
		}
	case c.Container != nil:
		fmt.Fprintf(&b, "      name:  %q\n", c.Container.Name)
		fmt.Fprintf(&b, "      image: image.%s\n", c.Container.Image)
		for _, port := range c.Container.Ports {
			fmt.Fprintf(&b, "      ports: %d -> %d/%s\n", port.Internal, port.External, port.Proto())
		}
	case c.Prior != nil && c.Prior.Image != nil:
		fmt.Fprintf(&b, "      name: %q\n", c.Prior.Image.Reference)
		if c.Prior.Image.KeepLocally {
			b.WriteString("      (kept locally on the engine)\n")
		}
	case c.Prior != nil && c.Prior.Container != nil:
		fmt.Fprintf(&b, "      name: %q\n", c.Prior.Container.Name)
	}

	return b.String()
}

func symbol(a Action) string {
	switch a {
	case Create:
		return "[green]+[reset]"
	case Delete:
		return "[red]-[reset]"
	case Update:
		return "[yellow]~[reset]"
	case Replace:
		return "[red]-[reset]/[green]+[reset]"
	default:
		return " "
	}
}

package config

import (
	"fmt"

	"github.com/distribution/reference"
	"github.com/hashicorp/hcl/v2"
)

// Validates the declaration beyond what HCL decoding enforces.
//
// Checks cover the properties a plan must be able to rely on: well-formed
// image references, resolvable image labels, unique names, and port values
// an engine can actually bind.
func (f *File) Validate() hcl.Diagnostics {
	var diags hcl.Diagnostics

	diags = append(diags, f.CheckVersion()...)
	diags = append(diags, f.validateImages()...)
	diags = append(diags, f.validateContainers()...)

	return diags
}

func (f *File) validateImages() hcl.Diagnostics {
	var diags hcl.Diagnostics

	seen := make(map[string]bool, len(f.Images))
	for _, img := range f.Images {
		if seen[img.Label] {
			diags = append(diags, errorf("Duplicate image block",
				"An image %q was already declared in %s. Image labels must be unique.", img.Label, f.Path))
			continue
		}
		seen[img.Label] = true

		if _, err := reference.ParseNormalizedNamed(img.Name); err != nil {
			diags = append(diags, errorf("Invalid image reference",
				"The image %q declares name %q, which is not a valid reference: %s.", img.Label, img.Name, err))
		}

		if _, err := ParsePlatform(img.Platform); err != nil {
			diags = append(diags, errorf("Invalid platform",
				"The image %q declares an unusable platform: %s.", img.Label, err))
		}
	}

	return diags
}

func (f *File) validateContainers() hcl.Diagnostics {
	var diags hcl.Diagnostics

	seenLabels := make(map[string]bool, len(f.Containers))
	seenNames := make(map[string]string, len(f.Containers))
	seenPorts := make(map[string]string)

	for _, c := range f.Containers {
		if seenLabels[c.Label] {
			diags = append(diags, errorf("Duplicate container block",
				"A container %q was already declared in %s. Container labels must be unique.", c.Label, f.Path))
			continue
		}
		seenLabels[c.Label] = true

		if holder, dup := seenNames[c.Name]; dup {
			diags = append(diags, errorf("Duplicate container name",
				"The containers %q and %q both declare the engine name %q. At most one container may hold a name.", holder, c.Label, c.Name))
		}
		seenNames[c.Name] = c.Label

		if c.Name == "" {
			diags = append(diags, errorf("Missing container name",
				"The container %q declares an empty name.", c.Label))
		}

		if _, ok := f.ImageByLabel(c.Image); !ok {
			diags = append(diags, errorf("Unknown image",
				"The container %q refers to image %q, but no image block with that label exists.", c.Label, c.Image))
		}

		diags = append(diags, c.validatePorts(seenPorts)...)
	}

	return diags
}

func (c *Container) validatePorts(seenPorts map[string]string) hcl.Diagnostics {
	var diags hcl.Diagnostics

	for _, p := range c.Ports {
		if p.Internal < 1 || p.Internal > 65535 {
			diags = append(diags, errorf("Invalid internal port",
				"The container %q maps internal port %d, which is outside 1-65535.", c.Label, p.Internal))
		}
		if p.External < 1 || p.External > 65535 {
			diags = append(diags, errorf("Invalid external port",
				"The container %q maps external port %d, which is outside 1-65535.", c.Label, p.External))
		}

		switch p.Proto() {
		case "tcp", "udp":
		default:
			diags = append(diags, errorf("Invalid port protocol",
				"The container %q maps a port with protocol %q; only tcp and udp are supported.", c.Label, p.Protocol))
		}

		key := fmt.Sprintf("%d/%s", p.External, p.Proto())
		if holder, dup := seenPorts[key]; dup {
			diags = append(diags, errorf("External port collision",
				"External port %s is mapped by both %q and %q. Each external port can be bound once.", key, holder, c.Label))
		}
		seenPorts[key] = c.Label
	}

	return diags
}

func errorf(summary, format string, args ...any) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   fmt.Sprintf(format, args...),
	}
}

package config

import (
	"fmt"
	"strings"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// A fully decoded declaration file.
type File struct {
	Settings   *Settings    `hcl:"moor,block"`
	Images     []*Image     `hcl:"image,block"`
	Containers []*Container `hcl:"container,block"`

	// Path of the file the declaration was loaded from.
	Path string
}

// Tool-level settings from the optional moor block.
type Settings struct {
	RequiredVersion string `hcl:"required_version,optional"`
}

// A declared engine image.
type Image struct {
	Label       string `hcl:"label,label"`
	Name        string `hcl:"name"`
	KeepLocally bool   `hcl:"keep_locally,optional"`
	Platform    string `hcl:"platform,optional"`
}

// A declared container. Image holds the label of the image block the
// container is created from.
type Container struct {
	Label string  `hcl:"label,label"`
	Image string  `hcl:"image"`
	Name  string  `hcl:"name"`
	Ports []*Port `hcl:"ports,block"`
}

// A single port mapping from a container-internal port to a host port.
type Port struct {
	Internal int    `hcl:"internal"`
	External int    `hcl:"external"`
	Protocol string `hcl:"protocol,optional"`
}

// Returns the mapping's protocol, defaulting to TCP.
func (p *Port) Proto() string {
	if p.Protocol == "" {
		return "tcp"
	}
	return strings.ToLower(p.Protocol)
}

// Looks up a declared image by block label.
func (f *File) ImageByLabel(label string) (*Image, bool) {
	for _, img := range f.Images {
		if img.Label == label {
			return img, true
		}
	}
	return nil, false
}

// Parses an OCI platform string ("os/arch" or "os/arch/variant").
//
// Returns nil for the empty string, meaning the engine default.
func ParsePlatform(s string) (*ocispec.Platform, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, "/")
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("invalid platform %q", s)
		}
	}

	switch len(parts) {
	case 2:
		return &ocispec.Platform{OS: parts[0], Architecture: parts[1]}, nil
	case 3:
		return &ocispec.Platform{OS: parts[0], Architecture: parts[1], Variant: parts[2]}, nil
	default:
		return nil, fmt.Errorf("invalid platform %q: expected os/arch or os/arch/variant", s)
	}
}

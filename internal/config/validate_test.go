package config

import (
	"strings"
	"testing"

	"github.com/hashicorp/hcl/v2"
)

func loadValid(t *testing.T, src string) *File {
	t.Helper()
	f, diags := LoadSource("moor.hcl", []byte(src))
	if diags.HasErrors() {
		t.Fatalf("unexpected load diagnostics: %s", diags)
	}
	return f
}

func wantDiag(t *testing.T, diags hcl.Diagnostics, summary string) {
	t.Helper()
	for _, d := range diags {
		if d.Summary == summary {
			return
		}
	}
	t.Fatalf("diagnostics %s missing %q", diags, summary)
}

func TestValidateOK(t *testing.T) {
	f := loadValid(t, basicDecl)
	if diags := f.Validate(); diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diags)
	}
}

func TestValidateBadImageReference(t *testing.T) {
	f := loadValid(t, `
image "bad" {
  name = "NGINX::latest"
}
`)
	wantDiag(t, f.Validate(), "Invalid image reference")
}

func TestValidateUnknownImageLabel(t *testing.T) {
	f := loadValid(t, `
image "nginx" {
  name = "nginx:1.27"
}

container "web" {
  image = "other"
  name  = "tutorial"
}
`)
	wantDiag(t, f.Validate(), "Unknown image")
}

func TestValidateDuplicateContainerName(t *testing.T) {
	f := loadValid(t, `
image "nginx" {
  name = "nginx:1.27"
}

container "a" {
  image = image.nginx
  name  = "tutorial"
}

container "b" {
  image = image.nginx
  name  = "tutorial"
}
`)
	wantDiag(t, f.Validate(), "Duplicate container name")
}

func TestValidatePortRange(t *testing.T) {
	f := loadValid(t, `
image "nginx" {
  name = "nginx:1.27"
}

container "web" {
  image = image.nginx
  name  = "tutorial"

  ports {
    internal = 0
    external = 70000
  }
}
`)
	diags := f.Validate()
	wantDiag(t, diags, "Invalid internal port")
	wantDiag(t, diags, "Invalid external port")
}

func TestValidateExternalPortCollision(t *testing.T) {
	f := loadValid(t, `
image "nginx" {
  name = "nginx:1.27"
}

container "a" {
  image = image.nginx
  name  = "one"

  ports {
    internal = 80
    external = 8000
  }
}

container "b" {
  image = image.nginx
  name  = "two"

  ports {
    internal = 80
    external = 8000
  }
}
`)
	wantDiag(t, f.Validate(), "External port collision")
}

func TestValidatePortCollisionDifferentProtocols(t *testing.T) {
	f := loadValid(t, `
image "nginx" {
  name = "nginx:1.27"
}

container "web" {
  image = image.nginx
  name  = "tutorial"

  ports {
    internal = 80
    external = 8000
  }

  ports {
    internal = 53
    external = 8000
    protocol = "udp"
  }
}
`)
	// Same external port, different protocols: no collision.
	if diags := f.Validate(); diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diags)
	}
}

func TestValidateBadProtocol(t *testing.T) {
	f := loadValid(t, `
image "nginx" {
  name = "nginx:1.27"
}

container "web" {
  image = image.nginx
  name  = "tutorial"

  ports {
    internal = 80
    external = 8000
    protocol = "sctp"
  }
}
`)
	wantDiag(t, f.Validate(), "Invalid port protocol")
}

func TestCheckVersionBadConstraint(t *testing.T) {
	f := loadValid(t, `
moor {
  required_version = "not-a-constraint"
}
`)
	diags := f.CheckVersion()
	if !diags.HasErrors() {
		t.Fatal("expected diagnostics for malformed constraint")
	}
	if !strings.Contains(diags[0].Detail, "not-a-constraint") {
		t.Fatalf("detail = %q, want the constraint echoed", diags[0].Detail)
	}
}

func TestCheckVersionLocalBuildSkipped(t *testing.T) {
	f := loadValid(t, `
moor {
  required_version = ">= 99.0.0"
}
`)
	// Local test builds carry no stamped version, so the constraint is
	// not enforced.
	if diags := f.CheckVersion(); diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diags)
	}
}

package config

import (
	"fmt"

	goversion "github.com/hashicorp/go-version"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/moorhq/moor/internal/version"
)

// Loads and decodes a declaration file.
//
// Decoding happens in two passes: the image blocks are decoded first so
// that their labels can be exposed as variables ("image.<label>") to the
// expressions in the rest of the file. Validation is separate; a loaded
// File may still fail Validate.
func Load(path string) (*File, hcl.Diagnostics) {
	parser := hclparse.NewParser()

	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, diags
	}

	return decode(path, hclFile.Body)
}

// Loads a declaration from in-memory source. Used by tests.
func LoadSource(filename string, src []byte) (*File, hcl.Diagnostics) {
	parser := hclparse.NewParser()

	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}

	return decode(filename, hclFile.Body)
}

func decode(path string, body hcl.Body) (*File, hcl.Diagnostics) {
	var prelim struct {
		Images []*Image `hcl:"image,block"`
		Remain hcl.Body `hcl:",remain"`
	}
	diags := gohcl.DecodeBody(body, nil, &prelim)
	if diags.HasErrors() {
		return nil, diags
	}

	file := &File{Path: path}
	diags = append(diags, gohcl.DecodeBody(body, evalContext(prelim.Images), file)...)
	if diags.HasErrors() {
		return nil, diags
	}

	return file, diags
}

// Builds the evaluation context exposing declared images as variables.
//
// Each image block label becomes an attribute of the "image" object whose
// value is the label itself, so "image.nginx" and "nginx" decode to the
// same container image reference.
func evalContext(images []*Image) *hcl.EvalContext {
	attrs := make(map[string]cty.Value, len(images))
	for _, img := range images {
		attrs[img.Label] = cty.StringVal(img.Label)
	}

	vars := map[string]cty.Value{"image": cty.EmptyObjectVal}
	if len(attrs) > 0 {
		vars["image"] = cty.ObjectVal(attrs)
	}

	return &hcl.EvalContext{Variables: vars}
}

// Checks the declared required_version constraint against the running
// build.
//
// Local builds carry no stamped version and skip the check so development
// binaries can run any declaration.
func (f *File) CheckVersion() hcl.Diagnostics {
	if f.Settings == nil || f.Settings.RequiredVersion == "" {
		return nil
	}

	constraint, err := goversion.NewConstraint(f.Settings.RequiredVersion)
	if err != nil {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid required_version constraint",
			Detail:   fmt.Sprintf("The constraint %q in %s could not be parsed: %s.", f.Settings.RequiredVersion, f.Path, err),
		}}
	}

	current := version.SemVer()
	if current == nil {
		return nil
	}

	if !constraint.Check(current) {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unsupported moor version",
			Detail:   fmt.Sprintf("This declaration requires moor %s, but the running build is %s.", f.Settings.RequiredVersion, current),
		}}
	}

	return nil
}

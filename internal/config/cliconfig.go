package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/moorhq/moor/internal/paths"
)

// Per-user CLI settings, loaded from the XDG config directory.
//
// Everything here is optional; flags take precedence over the file.
type CLIConfig struct {
	// Engine socket address (e.g., "unix:///var/run/docker.sock").
	Host string `hcl:"host,optional"`
}

// Loads the global CLI configuration.
//
// A missing file is not an error; it yields the zero config so the engine
// client falls back to its environment defaults.
func LoadCLIConfig() (*CLIConfig, error) {
	path := paths.CLIConfig()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return &CLIConfig{}, nil
	}

	var cfg CLIConfig
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

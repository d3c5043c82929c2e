package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"vuetifyconf-cli/internal/interfaces"
)

// WriteManifest writes config as a TOML manifest. root_dir is omitted when it
// is the manifest directory itself. An existing file is only replaced when
// overwrite is set.
func WriteManifest(path string, config *interfaces.Config, overwrite bool) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("manifest already exists: %s", path)
		}
	}

	out := *config
	if dir, err := filepath.Abs(filepath.Dir(path)); err == nil && out.RootDir == dir {
		out.RootDir = ""
	}

	data, err := toml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return nil
}

// readModuleOptions decodes the module_options table with its keys intact.
func readModuleOptions(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var manifest struct {
		ModuleOptions map[string]any `toml:"module_options"`
	}
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to decode module_options in %s: %w", path, err)
	}
	if len(manifest.ModuleOptions) == 0 {
		return nil, nil
	}
	return manifest.ModuleOptions, nil
}

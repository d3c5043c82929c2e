package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"vuetifyconf-cli/internal/interfaces"
)

// ManifestName is the project manifest looked up in the root directory.
const ManifestName = "vuetifyconf.toml"

// Output targets.
const (
	TargetFile      = "file"
	TargetStdout    = "stdout"
	TargetClipboard = "clipboard"
)

// Manager implements the ConfigManager interface
type Manager struct {
	v     *viper.Viper
	flags map[string]interface{} // Store flag values for precedence
	// manifestDir anchors a relative root_dir
	manifestDir string
	// moduleOptions is read from the manifest directly since viper folds
	// key case
	moduleOptions map[string]any
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix("VUETIFYCONF")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	return &Manager{
		v:     v,
		flags: make(map[string]interface{}),
	}
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("root_dir", "")
	v.SetDefault("build_dir", ".nuxt")
	v.SetDefault("layers", []string{})
	v.SetDefault("discover_layers", true)
	v.SetDefault("inline_path", "vuetify.vuetifyOptions")
	v.SetDefault("config_name", "vuetify.config")
	v.SetDefault("rules_name", "vuetify.rules")
	v.SetDefault("enable_rules", false)
	v.SetDefault("rules_from_labs", false)
	v.SetDefault("target", TargetFile)
	v.SetDefault("compatibility", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("watch_exclude", []string{"**/node_modules/**"})
}

// DefaultConfig returns the configuration used when no manifest exists.
func DefaultConfig() *interfaces.Config {
	return NewManager().getConfigFromViper()
}

// LoadDotEnv loads <dir>/.env into the process environment. Variables that
// are already set keep their value and a missing file is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load loads configuration from the specified manifest path. An empty path
// means vuetifyconf.toml in the working directory; a missing manifest leaves
// the defaults in place.
func (m *Manager) Load(path string) (*interfaces.Config, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = filepath.Join(cwd, ManifestName)
	}
	path = expandPath(path)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path %s: %w", path, err)
	}
	m.manifestDir = filepath.Dir(abs)

	if _, err := os.Stat(abs); os.IsNotExist(err) {
		return m.getConfigFromViper(), nil
	}

	m.v.SetConfigFile(abs)
	if err := m.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", abs, err)
	}
	if m.moduleOptions, err = readModuleOptions(abs); err != nil {
		return nil, err
	}

	return m.getConfigFromViper(), nil
}

// SetFlag sets a flag value for precedence resolution
func (m *Manager) SetFlag(key string, value interface{}) {
	m.flags[key] = value
}

// Resolve applies precedence rules (flags > env > config > defaults)
func (m *Manager) Resolve() (*interfaces.Config, error) {
	config := m.getConfigFromViper()
	m.applyFlagOverrides(config)
	return config, nil
}

// applyFlagOverrides applies flag values over the configuration
func (m *Manager) applyFlagOverrides(config *interfaces.Config) {
	if str, ok := m.stringFlag("root_dir"); ok {
		config.RootDir = absPath(expandPath(str))
	}
	if str, ok := m.stringFlag("build_dir"); ok {
		config.BuildDir = str
	}
	if str, ok := m.stringFlag("target"); ok {
		config.Target = str
	}
	if str, ok := m.stringFlag("log_level"); ok {
		config.LogLevel = str
	}
	if val, exists := m.flags["layers"]; exists {
		if layers, ok := val.([]string); ok && len(layers) > 0 {
			config.Layers = layers
		}
	}
	// boolean flags can only switch features on
	if val, exists := m.flags["enable_rules"]; exists {
		if b, ok := val.(bool); ok && b {
			config.EnableRules = true
		}
	}
	if val, exists := m.flags["rules_from_labs"]; exists {
		if b, ok := val.(bool); ok && b {
			config.RulesFromLabs = true
		}
	}
	if val, exists := m.flags["no_discover"]; exists {
		if b, ok := val.(bool); ok && b {
			config.DiscoverLayers = false
		}
	}
}

func (m *Manager) stringFlag(key string) (string, bool) {
	val, exists := m.flags[key]
	if !exists || val == nil {
		return "", false
	}
	str, ok := val.(string)
	return str, ok && str != ""
}

// Validate validates the configuration values
func (m *Manager) Validate(config *interfaces.Config) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	validTargets := map[string]bool{
		TargetFile:      true,
		TargetStdout:    true,
		TargetClipboard: true,
	}
	if !validTargets[config.Target] {
		return fmt.Errorf("invalid target: %s (must be 'file', 'stdout' or 'clipboard')", config.Target)
	}

	if config.BuildDir == "" {
		return fmt.Errorf("build_dir cannot be empty")
	}
	if config.ConfigName == "" || config.RulesName == "" {
		return fmt.Errorf("config_name and rules_name cannot be empty")
	}
	if strings.Trim(config.InlinePath, ".") == "" {
		return fmt.Errorf("inline_path cannot be empty")
	}

	if config.Compatibility != "" {
		if _, err := semver.NewConstraint(config.Compatibility); err != nil {
			return fmt.Errorf("invalid compatibility constraint %q: %w", config.Compatibility, err)
		}
	}

	info, err := os.Stat(config.RootDir)
	if err != nil {
		return fmt.Errorf("root_dir does not exist: %s", config.RootDir)
	}
	if !info.IsDir() {
		return fmt.Errorf("root_dir is not a directory: %s", config.RootDir)
	}

	return nil
}

// CheckCompatibility reports whether version satisfies constraint. Builds
// without a semantic version always pass.
func CheckCompatibility(constraint, version string) error {
	if constraint == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid compatibility constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return nil
	}
	if ok, errs := c.Validate(v); !ok {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return fmt.Errorf("vuetifyconf %s does not satisfy %q: %s", version, constraint, strings.Join(msgs, "; "))
	}
	return nil
}

// getConfigFromViper converts viper configuration to Config struct
// This handles env > config > defaults precedence (flags are applied separately)
func (m *Manager) getConfigFromViper() *interfaces.Config {
	root := m.v.GetString("root_dir")
	switch {
	case root == "":
		root = m.manifestDir
		if root == "" {
			root, _ = os.Getwd()
		}
	case !filepath.IsAbs(expandPath(root)) && m.manifestDir != "":
		root = filepath.Join(m.manifestDir, root)
	default:
		root = absPath(expandPath(root))
	}

	return &interfaces.Config{
		RootDir:        root,
		BuildDir:       m.v.GetString("build_dir"),
		Layers:         m.v.GetStringSlice("layers"),
		DiscoverLayers: m.v.GetBool("discover_layers"),
		InlinePath:     m.v.GetString("inline_path"),
		ConfigName:     m.v.GetString("config_name"),
		RulesName:      m.v.GetString("rules_name"),
		EnableRules:    m.v.GetBool("enable_rules"),
		RulesFromLabs:  m.v.GetBool("rules_from_labs"),
		Target:         m.v.GetString("target"),
		Compatibility:  m.v.GetString("compatibility"),
		LogLevel:       m.v.GetString("log_level"),
		WatchExclude:   m.v.GetStringSlice("watch_exclude"),
		ModuleOptions:  m.moduleOptions,
	}
}

// expandPath expands ~ to user home directory
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path // Return original path if we can't get home dir
	}

	return filepath.Join(homeDir, path[2:])
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

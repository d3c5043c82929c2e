package interfaces

// Config represents the application configuration
type Config struct {
	RootDir        string         `toml:"root_dir"`
	BuildDir       string         `toml:"build_dir"`
	Layers         []string       `toml:"layers"`
	DiscoverLayers bool           `toml:"discover_layers"`
	InlinePath     string         `toml:"inline_path"`
	ConfigName     string         `toml:"config_name"`
	RulesName      string         `toml:"rules_name"`
	EnableRules    bool           `toml:"enable_rules"`
	RulesFromLabs  bool           `toml:"rules_from_labs"`
	Target         string         `toml:"target"`
	Compatibility  string         `toml:"compatibility,omitempty"`
	LogLevel       string         `toml:"log_level"`
	WatchExclude   []string       `toml:"watch_exclude"`
	ModuleOptions  map[string]any `toml:"module_options,omitempty"`
}

// ConfigManager handles configuration loading and resolution
type ConfigManager interface {
	// Load loads configuration from the specified path
	Load(path string) (*Config, error)

	// Resolve applies precedence rules (flags > env > config > defaults)
	Resolve() (*Config, error)

	// Validate validates the configuration values
	Validate(config *Config) error
}

// Package orchestrator runs a generation: it resolves the configuration,
// folds the layers and renders the configuration modules.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"vuetifyconf-cli/internal/config"
	"vuetifyconf-cli/internal/interfaces"
	"vuetifyconf-cli/internal/layer"
	"vuetifyconf-cli/internal/logging"
	"vuetifyconf-cli/internal/parser"
	"vuetifyconf-cli/internal/source"
	"vuetifyconf-cli/internal/template"
	"vuetifyconf-cli/pkg/models"
)

// EmitSubdir is the directory inside the build directory that receives the
// generated modules.
const EmitSubdir = "vuetify"

// TemplateDir holds artifact template overrides, relative to the root.
const TemplateDir = ".vuetifyconf/templates"

// Artifact file names.
const (
	ConfigurationFile = "configuration.mjs"
	RulesFile         = "rules-configuration.mjs"
	LabsRulesFile     = "labs-rules-configuration.mjs"
)

// Orchestrator coordinates all components to generate configuration modules
type Orchestrator struct {
	configManager     *config.Manager
	templateProcessor interfaces.TemplateProcessor
	outputHandler     interfaces.OutputHandler
	fs                afero.Fs
	cache             *parser.Cache
	logger            hclog.Logger
	version           string
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithFs sets the file system layers are read from and artifacts written to
func WithFs(fs afero.Fs) Option {
	return func(o *Orchestrator) { o.fs = fs }
}

// WithLogger sets the logger
func WithLogger(logger hclog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithVersion sets the tool version checked against the manifest
func WithVersion(version string) Option {
	return func(o *Orchestrator) { o.version = version }
}

// WithOutputHandler replaces the output handler
func WithOutputHandler(h interfaces.OutputHandler) Option {
	return func(o *Orchestrator) { o.outputHandler = h }
}

// New creates a new orchestrator with all required components
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		configManager: config.NewManager(),
		fs:            afero.NewOsFs(),
		logger:        hclog.NewNullLogger(),
		version:       "dev",
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.templateProcessor == nil {
		o.templateProcessor = template.NewProcessor("")
	}
	if o.outputHandler == nil {
		o.outputHandler = NewOutputHandler(o.fs, nil)
	}
	// the cache outlives a single run so watch reruns skip unchanged files
	o.cache, _ = parser.NewCache(parser.DefaultCacheSize)
	return o
}

// Artifact is one generated module.
type Artifact struct {
	Name    string
	Path    string
	Content string
}

// Generation is the outcome of one run.
type Generation struct {
	Config        *interfaces.Config
	Load          *layer.Load
	ModuleOptions map[string]any
	Artifacts     []Artifact
}

// Run generates the modules for request and writes them to the configured
// target
func (o *Orchestrator) Run(ctx context.Context, request *models.GenerateRequest) (*Generation, error) {
	cfg, err := o.LoadConfiguration(request)
	if err != nil {
		return nil, RecoverFromError(err)
	}
	gen, err := o.Generate(ctx, cfg)
	if err != nil {
		return nil, RecoverFromError(err)
	}
	if err := o.Output(gen); err != nil {
		if !IsRecoverableError(err) {
			return nil, RecoverFromError(err)
		}
		o.logger.Warn("clipboard unavailable, writing to stdout", "error", err)
		if err := o.outputHandler.WriteToStdout(bundle(gen.Artifacts)); err != nil {
			return nil, RecoverFromError(NewOutputError(config.TargetStdout, err))
		}
	}
	return gen, nil
}

// LoadConfiguration loads and resolves configuration with precedence
func (o *Orchestrator) LoadConfiguration(request *models.GenerateRequest) (*interfaces.Config, error) {
	if err := o.validateRequest(request); err != nil {
		return nil, err
	}

	if err := config.LoadDotEnv(dotEnvDir(request)); err != nil {
		return nil, NewConfigurationError("failed to load .env", err)
	}

	manifest := request.ConfigPath
	if manifest == "" && request.RootDir != "" {
		manifest = filepath.Join(request.RootDir, config.ManifestName)
	}
	if _, err := o.configManager.Load(manifest); err != nil {
		return nil, NewConfigurationError("failed to load configuration", err)
	}

	o.applyRequestFlags(request)

	cfg, err := o.configManager.Resolve()
	if err != nil {
		return nil, NewConfigurationError("failed to resolve configuration", err)
	}
	if err := o.configManager.Validate(cfg); err != nil {
		return nil, NewConfigurationError("invalid configuration", err)
	}
	if err := config.CheckCompatibility(cfg.Compatibility, o.version); err != nil {
		return nil, NewConfigurationError("incompatible manifest", err)
	}

	o.logger.SetLevel(logging.ParseLevel(cfg.LogLevel))

	if processor, ok := o.templateProcessor.(*template.Processor); ok {
		processor.SetOverrideDir(filepath.Join(cfg.RootDir, filepath.FromSlash(TemplateDir)))
	}

	o.logger.Debug("configuration resolved",
		"root", cfg.RootDir,
		"build_dir", cfg.BuildDir,
		"layers", len(cfg.Layers),
		"target", cfg.Target)
	return cfg, nil
}

// applyRequestFlags hands command line values to the config manager
func (o *Orchestrator) applyRequestFlags(request *models.GenerateRequest) {
	o.configManager.SetFlag("root_dir", request.RootDir)
	o.configManager.SetFlag("build_dir", request.BuildDir)
	o.configManager.SetFlag("target", request.Target)
	o.configManager.SetFlag("log_level", request.LogLevel)
	o.configManager.SetFlag("layers", request.Layers)
	o.configManager.SetFlag("enable_rules", request.EnableRules)
	o.configManager.SetFlag("rules_from_labs", request.RulesFromLabs)
	o.configManager.SetFlag("no_discover", request.NoDiscover)
}

// NewLoader builds the layer loader for cfg
func (o *Orchestrator) NewLoader(cfg *interfaces.Config) interfaces.ConfigLoader {
	opts := layer.Options{
		InlinePath:  strings.Split(strings.Trim(cfg.InlinePath, "."), "."),
		ConfigName:  cfg.ConfigName,
		RulesName:   cfg.RulesName,
		EnableRules: cfg.EnableRules,
		Discover:    cfg.DiscoverLayers,
		Exclude:     cfg.WatchExclude,
	}
	return layer.NewLoader(source.NewReader(o.fs), o.cache, o.logger, opts)
}

// Generate folds the layers of cfg and renders the modules without writing
// them
func (o *Orchestrator) Generate(ctx context.Context, cfg *interfaces.Config) (*Generation, error) {
	loader := o.NewLoader(cfg)

	layers, err := loader.Layers(ctx, cfg.RootDir, cfg.Layers)
	if err != nil {
		return nil, NewLoadError(err)
	}
	load, err := loader.Load(ctx, layers)
	if err != nil {
		return nil, NewLoadError(err)
	}

	gen := &Generation{Config: cfg, Load: load}
	if gen.ModuleOptions, err = mergeModuleOptions(cfg.ModuleOptions, load.ModuleOptions); err != nil {
		return nil, NewConfigurationError("failed to merge module options", err)
	}

	emitDir := EmitDir(cfg)
	configuration, err := o.emit(template.ArtifactConfiguration, load.Main, emitDir, ConfigurationFile)
	if err != nil {
		return nil, err
	}
	gen.Artifacts = append(gen.Artifacts, configuration)

	if load.Rules != nil {
		fileName := RulesFile
		if cfg.RulesFromLabs {
			fileName = LabsRulesFile
		}
		rules, err := o.emit(template.ArtifactRules, load.Rules, emitDir, fileName)
		if err != nil {
			return nil, err
		}
		gen.Artifacts = append(gen.Artifacts, rules)
	}

	o.logger.Info("configuration generated",
		"layers", len(load.Layers),
		"artifacts", len(gen.Artifacts),
		"watch", len(load.Watch),
		"cached_modules", o.cache.Len())
	return gen, nil
}

func (o *Orchestrator) emit(name string, res *layer.Result, emitDir, fileName string) (Artifact, error) {
	data := template.NewArtifactData(name, res.Config, res.Registry, emitDir, res.Files)
	content, err := template.Emit(o.templateProcessor, data)
	if err != nil {
		return Artifact{}, NewTemplateError(name, err)
	}
	return Artifact{
		Name:    name,
		Path:    filepath.Join(emitDir, fileName),
		Content: content,
	}, nil
}

// Output writes the artifacts of gen to the configured target
func (o *Orchestrator) Output(gen *Generation) error {
	target := gen.Config.Target
	switch target {
	case config.TargetFile:
		for _, a := range gen.Artifacts {
			if err := o.outputHandler.WriteToFile(a.Content, a.Path); err != nil {
				return NewOutputError(target, err)
			}
			o.logger.Debug("artifact written", "path", a.Path)
		}
	case config.TargetStdout:
		if err := o.outputHandler.WriteToStdout(bundle(gen.Artifacts)); err != nil {
			return NewOutputError(target, err)
		}
	case config.TargetClipboard:
		if err := o.outputHandler.WriteToClipboard(bundle(gen.Artifacts)); err != nil {
			return NewOutputError(target, err)
		}
	default:
		return NewValidationError("target", target, "unknown output target")
	}
	return nil
}

// bundle concatenates artifacts, each preceded by a comment naming its path
func bundle(artifacts []Artifact) string {
	var b strings.Builder
	for i, a := range artifacts {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "// %s\n%s", a.Path, a.Content)
	}
	return b.String()
}

// EmitDir is the directory generated modules are written to
func EmitDir(cfg *interfaces.Config) string {
	buildDir := filepath.FromSlash(cfg.BuildDir)
	if filepath.IsAbs(buildDir) {
		return filepath.Join(buildDir, EmitSubdir)
	}
	return filepath.Join(cfg.RootDir, buildDir, EmitSubdir)
}

// mergeModuleOptions lays the manifest module_options over the options
// collected from the layers
func mergeModuleOptions(manifest, layers map[string]any) (map[string]any, error) {
	out := make(map[string]any)
	for _, src := range []map[string]any{manifest, layers} {
		if len(src) == 0 {
			continue
		}
		if err := mergo.Merge(&out, src); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// validateRequest validates the generation request
func (o *Orchestrator) validateRequest(request *models.GenerateRequest) error {
	if request == nil {
		return NewValidationError("request", nil, "request cannot be nil")
	}

	if request.ForceInteractive && request.ForceNonInteractive {
		return NewValidationError("interactive", "--interactive --yes", "flags are mutually exclusive")
	}

	if request.Target != "" {
		validTargets := map[string]bool{
			config.TargetFile:      true,
			config.TargetStdout:    true,
			config.TargetClipboard: true,
		}
		if !validTargets[request.Target] {
			return NewValidationError("target", request.Target, "must be file, stdout or clipboard")
		}
	}

	for _, l := range request.Layers {
		if strings.TrimSpace(l) == "" {
			return NewValidationError("layers", request.Layers, "empty layer path")
		}
	}

	return nil
}

func dotEnvDir(request *models.GenerateRequest) string {
	switch {
	case request.RootDir != "":
		return request.RootDir
	case request.ConfigPath != "":
		return filepath.Dir(request.ConfigPath)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

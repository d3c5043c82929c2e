package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"vuetifyconf-cli/internal/ast"
	"vuetifyconf-cli/internal/config"
	"vuetifyconf-cli/internal/imports"
	"vuetifyconf-cli/internal/interactive"
	"vuetifyconf-cli/internal/interfaces"
	"vuetifyconf-cli/internal/layer"
	"vuetifyconf-cli/internal/logging"
	"vuetifyconf-cli/internal/merge"
	"vuetifyconf-cli/internal/orchestrator"
	"vuetifyconf-cli/internal/parser"
	"vuetifyconf-cli/internal/source"
	"vuetifyconf-cli/internal/watcher"
	"vuetifyconf-cli/pkg/models"
)

// App runs the CLI commands
type App struct {
	version string
	stdout  io.Writer
	stderr  io.Writer

	// terminal reports whether prompts can be shown
	terminal func() bool
	// watchDelay overrides the watcher debounce in tests
	watchDelay time.Duration
}

// New creates an App writing to the given streams
func New(version string, stdout, stderr io.Writer) *App {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &App{
		version:  version,
		stdout:   stdout,
		stderr:   stderr,
		terminal: interactive.IsTerminal,
	}
}

func (a *App) orchestrator(request *models.GenerateRequest) (*orchestrator.Orchestrator, hclog.Logger) {
	level := request.LogLevel
	if level == "" {
		level = os.Getenv("VUETIFYCONF_LOG_LEVEL")
	}
	logger := logging.New(logging.Options{Level: level, Output: a.stderr})
	orch := orchestrator.New(
		orchestrator.WithLogger(logger),
		orchestrator.WithVersion(a.version),
		orchestrator.WithOutputHandler(orchestrator.NewOutputHandler(nil, a.stdout)),
	)
	return orch, logger
}

// Generate executes a single generation
func (a *App) Generate(ctx context.Context, request *models.GenerateRequest) error {
	orch, _ := a.orchestrator(request)

	gen, err := orch.Run(ctx, request)
	if err != nil {
		return err
	}

	if gen.Config.Target == config.TargetFile {
		for _, artifact := range gen.Artifacts {
			fmt.Fprintf(a.stderr, "Generated %s\n", contractPath(artifact.Path))
		}
	}
	return nil
}

// Watch generates once and then again whenever a file that influenced the
// previous run changes, until ctx is cancelled. Failed reruns are reported
// and leave the previous modules in place.
func (a *App) Watch(ctx context.Context, request *models.GenerateRequest) error {
	orch, logger := a.orchestrator(request)

	cfg, err := orch.LoadConfiguration(request)
	if err != nil {
		return orchestrator.RecoverFromError(err)
	}

	w, err := watcher.New(logger, a.watchDelay, candidateNames(cfg))
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	files := []string{}
	dirs := []string{cfg.RootDir}
	var previous *layer.Load

	regenerate := func(ctx context.Context, changed []string) {
		gen, err := orch.Generate(ctx, cfg)
		if err == nil {
			err = orch.Output(gen)
		}
		if err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", orchestrator.RecoverFromError(err))
			if file := failedFile(err); file != "" {
				files = appendUnique(files, file)
			}
		} else {
			if previous != nil && sameValues(previous, gen.Load) {
				logger.Debug("merged values unchanged", "changed", changed)
			}
			previous = gen.Load
			files = gen.Load.Watch
			dirs = layerDirs(gen.Load.Layers)
			logger.Info("regenerated", "changed", len(changed), "watching", len(files))
		}
		if err := w.Update(files, dirs); err != nil {
			logger.Warn("failed to update watch set", "error", err)
		}
	}

	regenerate(ctx, nil)
	fmt.Fprintf(a.stderr, "Watching %d files in %d directories for changes\n", len(w.Files()), len(w.Dirs()))
	return w.Run(ctx, regenerate)
}

// Files prints the files a generation depends on, one per line
func (a *App) Files(ctx context.Context, request *models.GenerateRequest) error {
	orch, _ := a.orchestrator(request)

	cfg, err := orch.LoadConfiguration(request)
	if err != nil {
		return orchestrator.RecoverFromError(err)
	}
	gen, err := orch.Generate(ctx, cfg)
	if err != nil {
		return orchestrator.RecoverFromError(err)
	}

	for _, path := range gen.Load.Watch {
		fmt.Fprintln(a.stdout, path)
	}
	return nil
}

// Inspect prints the layers, sources, imports and module options of a
// generation without writing anything
func (a *App) Inspect(ctx context.Context, request *models.GenerateRequest) error {
	orch, _ := a.orchestrator(request)

	cfg, err := orch.LoadConfiguration(request)
	if err != nil {
		return orchestrator.RecoverFromError(err)
	}
	gen, err := orch.Generate(ctx, cfg)
	if err != nil {
		return orchestrator.RecoverFromError(err)
	}

	out := a.stdout
	emitDir := orchestrator.EmitDir(cfg)
	fmt.Fprintf(out, "Root: %s\n", contractPath(cfg.RootDir))
	fmt.Fprintf(out, "Output: %s\n\n", contractPath(emitDir))

	fmt.Fprintf(out, "Layers (base-most first):\n")
	for i, l := range gen.Load.Layers {
		fmt.Fprintf(out, "  %d. %s", i+1, contractPath(l.Dir))
		if l.Root {
			fmt.Fprintf(out, " (root)")
		}
		fmt.Fprintln(out)
	}

	printResult(out, "Configuration", gen.Load.Main, emitDir)
	if gen.Load.Rules != nil {
		printResult(out, "Rules", gen.Load.Rules, emitDir)
	} else {
		fmt.Fprintf(out, "\nRules: (disabled)\n")
	}

	fmt.Fprintln(out)
	if len(gen.ModuleOptions) == 0 {
		fmt.Fprintf(out, "Module options: (none)\n")
		return nil
	}
	options, err := ast.Render(ast.FromInterface(gen.ModuleOptions), 0)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Module options: %s\n", options)
	return nil
}

func printResult(out io.Writer, title string, res *layer.Result, emitDir string) {
	fmt.Fprintf(out, "\n%s:\n", title)
	if len(res.Sources) == 0 {
		fmt.Fprintf(out, "  sources: (none)\n")
	}
	for _, src := range res.Sources {
		var parts []string
		if src.Inline != "" {
			parts = append(parts, "inline "+filepath.Base(src.Inline))
		}
		if src.External != "" {
			parts = append(parts, filepath.Base(src.External))
		}
		fmt.Fprintf(out, "  %s: %s\n", contractPath(src.Layer), strings.Join(parts, " + "))
	}
	fmt.Fprintf(out, "  keys: %s\n", strings.Join(res.Config.Keys(), ", "))
	if block := imports.RenderBlock(imports.Collect(res.Registry, emitDir)); block != "" {
		fmt.Fprintf(out, "  %s\n", strings.ReplaceAll(block, "\n", "\n  "))
	}
}

// Init writes a project manifest, asking for its values when interactive
func (a *App) Init(request *models.GenerateRequest, force, numberSelect bool) error {
	root := request.RootDir
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		root = cwd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve root: %w", err)
	}

	path := request.ConfigPath
	if path == "" {
		path = filepath.Join(root, config.ManifestName)
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return orchestrator.NewValidationError("manifest", path, "already exists, pass --force to replace it")
		}
	}

	cfg := config.DefaultConfig()
	cfg.RootDir = root
	applyInitFlags(cfg, request)

	interactive.ResolveInteractive(request, a.terminal())
	if request.Interactive {
		prompter := interactive.NewPrompter(root, numberSelect)
		if err := prompter.CollectManifest(cfg); err != nil {
			return fmt.Errorf("failed to collect inputs: %w", err)
		}
	}

	if err := config.NewManager().Validate(cfg); err != nil {
		return orchestrator.NewConfigurationError("invalid manifest values", err)
	}
	if err := config.WriteManifest(path, cfg, force); err != nil {
		return orchestrator.NewConfigurationError("failed to write manifest", err)
	}

	fmt.Fprintf(a.stdout, "Wrote %s\n", contractPath(path))
	return nil
}

func applyInitFlags(cfg *interfaces.Config, request *models.GenerateRequest) {
	if request.BuildDir != "" {
		cfg.BuildDir = request.BuildDir
	}
	if len(request.Layers) > 0 {
		cfg.Layers = request.Layers
	}
	if request.Target != "" {
		cfg.Target = request.Target
	}
	if request.LogLevel != "" {
		cfg.LogLevel = request.LogLevel
	}
	if request.EnableRules {
		cfg.EnableRules = true
	}
	if request.RulesFromLabs {
		cfg.RulesFromLabs = true
	}
	if request.NoDiscover {
		cfg.DiscoverLayers = false
	}
}

// candidateNames lists the file names whose creation triggers a rerun
func candidateNames(cfg *interfaces.Config) []string {
	var names []string
	for _, base := range []string{"nuxt.config", cfg.ConfigName, cfg.RulesName} {
		for _, ext := range source.Extensions {
			names = append(names, base+"."+ext)
		}
	}
	return names
}

// sameValues reports whether two loads merged to the same trees
func sameValues(a, b *layer.Load) bool {
	if !ast.Equal(a.Main.Config, b.Main.Config) {
		return false
	}
	if a.Rules == nil || b.Rules == nil {
		return a.Rules == nil && b.Rules == nil
	}
	return ast.Equal(a.Rules.Config, b.Rules.Config)
}

func layerDirs(layers []layer.Layer) []string {
	dirs := make([]string, len(layers))
	for i, l := range layers {
		dirs[i] = l.Dir
	}
	return dirs
}

// failedFile names the file a load error points at, if any
func failedFile(err error) string {
	var syntaxErr *parser.SyntaxError
	var unresolved *imports.UnresolvedError
	var unsupported *merge.UnsupportedError
	switch {
	case errors.As(err, &syntaxErr):
		return syntaxErr.Pos.File
	case errors.As(err, &unresolved):
		return unresolved.Pos.File
	case errors.As(err, &unsupported):
		return unsupported.Value.Pos.File
	}
	return ""
}

func appendUnique(list []string, item string) []string {
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	return append(list, item)
}

// contractPath converts a full path back to use ~ for the home directory
func contractPath(path string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return path
	}

	homeDirWithSlash := homeDir + string(filepath.Separator)
	pathWithSlash := path + string(filepath.Separator)

	if strings.HasPrefix(pathWithSlash, homeDirWithSlash) {
		relativePath := path[len(homeDir):]
		if relativePath == "" {
			return "~"
		}
		return "~" + relativePath
	}

	return path
}

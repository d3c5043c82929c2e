// Package layer walks the layers of a project, reads the configuration
// fragments each one contributes and folds them into one configuration per
// namespace.
package layer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"vuetifyconf-cli/internal/ast"
	"vuetifyconf-cli/internal/imports"
	"vuetifyconf-cli/internal/merge"
	"vuetifyconf-cli/internal/parser"
	"vuetifyconf-cli/internal/source"
)

// OptInKey is the reserved property an external file sets to true to take
// part in the merge. It is removed before merging.
const OptInKey = "config"

// RulesFlag enables the rules namespace from the root nuxt.config.
const RulesFlag = "enableVuetifyRules"

// Options controls where fragments are looked up.
type Options struct {
	// InlinePath is the property path of the inline fragment in nuxt.config.
	InlinePath []string
	// ConfigName and RulesName are the extensionless external file names.
	ConfigName string
	RulesName  string
	// EnableRules turns the rules namespace on regardless of nuxt.config.
	EnableRules bool
	// Discover follows the `extends` entries of each nuxt.config.
	Discover bool
	// Exclude lists doublestar patterns removed from the watch list.
	Exclude []string
}

// DefaultOptions returns the conventional file layout.
func DefaultOptions() Options {
	return Options{
		InlinePath: []string{"vuetify", "vuetifyOptions"},
		ConfigName: "vuetify.config",
		RulesName:  "vuetify.rules",
		Discover:   true,
		Exclude:    []string{"**/node_modules/**"},
	}
}

// Result is the folded configuration of one namespace.
type Result struct {
	Namespace string
	Config    *ast.Object
	// Registry holds the imports backing the values of Config.
	Registry *imports.Registry
	// Files lists the configuration files that were read.
	Files []string
	// Sources lists, per contributing layer, the files merged from it.
	Sources []Contribution
}

// Contribution records what one layer contributed to a namespace.
type Contribution struct {
	Layer    string
	Inline   string
	External string
}

// Load is the outcome of one run over all layers.
type Load struct {
	Layers        []Layer
	Main          *Result
	Rules         *Result
	RulesEnabled  bool
	ModuleOptions map[string]any
	// Watch lists every file that influenced the result.
	Watch []string
}

// Loader reads and folds layer configurations.
type Loader struct {
	reader *source.Reader
	cache  *parser.Cache
	logger hclog.Logger
	opts   Options
}

// NewLoader creates a loader. cache may be nil.
func NewLoader(reader *source.Reader, cache *parser.Cache, logger hclog.Logger, opts Options) *Loader {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Loader{
		reader: reader,
		cache:  cache,
		logger: logger.Named("layer"),
		opts:   opts,
	}
}

// Load folds the configuration of layers, which must be ordered base-most
// first with the root project last. The main and rules namespaces are
// folded concurrently and joined before returning; any failure aborts the
// whole load.
func (l *Loader) Load(ctx context.Context, layers []Layer) (*Load, error) {
	out := &Load{Layers: layers}
	if len(layers) > 0 {
		out.RulesEnabled = l.opts.EnableRules || layers[len(layers)-1].nuxt.flag(RulesFlag)
	}

	namespaces := []Namespace{MainNamespace(l.opts.ConfigName)}
	if out.RulesEnabled {
		namespaces = append(namespaces, RulesNamespace(l.opts.RulesName))
	}

	probed, err := l.probe(ctx, layers, namespaces)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, len(namespaces))
	g, gctx := errgroup.WithContext(ctx)
	for i, ns := range namespaces {
		g.Go(func() error {
			res, err := l.fold(gctx, ns, layers, probed)
			if err != nil {
				return fmt.Errorf("%s configuration: %w", ns.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.Main = results[0]
	if out.RulesEnabled {
		out.Rules = results[1]
	}

	out.ModuleOptions, err = moduleOptions(layers)
	if err != nil {
		return nil, err
	}
	out.Watch = l.watchList(layers, results)

	l.logger.Debug("configuration loaded",
		"layers", len(layers),
		"keys", out.Main.Config.Len(),
		"imports", out.Main.Registry.Len(),
		"rules", out.RulesEnabled,
		"watch", len(out.Watch))
	return out, nil
}

// probe checks the conventional external files of every layer concurrently.
// The map holds "" for bases with no candidate on disk.
func (l *Loader) probe(ctx context.Context, layers []Layer, namespaces []Namespace) (map[string]string, error) {
	var bases []string
	for _, layer := range layers {
		for _, ns := range namespaces {
			bases = append(bases, filepath.Join(layer.Dir, ns.FileName))
		}
	}
	found, err := l.reader.Probe(ctx, bases)
	if err != nil {
		return nil, err
	}
	probed := make(map[string]string, len(bases))
	for i, base := range bases {
		probed[base] = found[i]
	}
	return probed, nil
}

// fold merges the fragments of every layer into the namespace seed.
// Fragments arrive with their references already bound, so only the last
// merge registers imports: the registry matches exactly the values of the
// final tree, and a binding replaced by a later layer cannot conflict with one
// that survives.
func (l *Loader) fold(ctx context.Context, ns Namespace, layers []Layer, probed map[string]string) (*Result, error) {
	res := &Result{
		Namespace: ns.Name,
		Config:    ns.Seed(),
		Registry:  imports.NewRegistry(),
	}
	files := newPathSet()

	type part struct {
		dir      string
		fragment *ast.Object
	}
	var parts []part
	for _, layer := range layers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fragment, contribution, err := l.readLayer(ns, layer, probed, files)
		if err != nil {
			return nil, err
		}
		if fragment == nil {
			continue
		}
		parts = append(parts, part{dir: layer.Dir, fragment: fragment})
		res.Sources = append(res.Sources, contribution)
	}

	for i, p := range parts {
		mctx := merge.Context{}
		if i == len(parts)-1 {
			mctx = merge.RegistryContext(res.Registry)
		}
		merged, err := merge.Merge(mctx, res.Config, nil, p.fragment, nil)
		if err != nil {
			return nil, fmt.Errorf("merging layer %s: %w", p.dir, err)
		}
		res.Config = merged
		l.logger.Trace("layer merged", "namespace", ns.Name, "layer", p.dir, "keys", merged.Len())
	}

	res.Files = files.list()
	return res, nil
}

// readLayer returns the bound fragment a layer contributes to ns, merging
// the external file over the inline fragment when both exist.
func (l *Loader) readLayer(ns Namespace, layer Layer, probed map[string]string, files *pathSet) (*ast.Object, Contribution, error) {
	contribution := Contribution{Layer: layer.Dir}
	externalPath := filepath.Join(layer.Dir, ns.FileName)

	var inline *ast.Object
	var inlineImports imports.Map
	if ns.Inline {
		if v, ok := layer.nuxt.inline(l.opts.InlinePath); ok {
			switch x := v.(type) {
			case *ast.Object:
				inline = x
				inlineImports = layer.nuxt.imports
				contribution.Inline = layer.nuxt.path
				files.add(layer.nuxt.path)
			case *ast.Scalar:
				if path, ok := x.Value.(string); ok {
					externalPath = externalBase(layer.Dir, path)
				}
			}
		}
	}

	external, externalImports, path, err := l.readExternal(externalPath, probed, files)
	if err != nil {
		return nil, contribution, err
	}
	contribution.External = path

	ctx := merge.Context{}
	switch {
	case inline != nil && external != nil:
		obj, err := merge.Merge(ctx, inline, inlineImports, external, externalImports)
		return obj, contribution, err
	case inline != nil:
		obj, err := merge.ExtractImports(ctx, inline, inlineImports)
		return obj, contribution, err
	case external != nil:
		obj, err := merge.ExtractImports(ctx, external, externalImports)
		return obj, contribution, err
	}
	return nil, contribution, nil
}

// readExternal reads an external fragment. Files that do not opt in are
// watched but contribute nothing.
func (l *Loader) readExternal(base string, probed map[string]string, files *pathSet) (*ast.Object, imports.Map, string, error) {
	if path, ok := probed[base]; ok && path == "" {
		return nil, nil, "", nil
	}
	file, err := l.reader.Locate(base)
	if errors.Is(err, source.ErrNotFound) {
		return nil, nil, "", nil
	}
	if err != nil {
		return nil, nil, "", err
	}
	files.add(file.Path)

	mod, err := l.cache.Parse(file.Content, file.Path, file.Dialect)
	if err != nil {
		return nil, nil, "", fmt.Errorf("parsing %s: %w", file.Path, err)
	}
	if !optedIn(mod.Default) {
		l.logger.Debug("external configuration not opted in", "file", file.Path)
		return nil, nil, "", nil
	}
	return mod.Default.Delete(OptInKey), imports.BuildMap(mod, file.Path), file.Path, nil
}

func optedIn(obj *ast.Object) bool {
	v, ok := obj.Get(OptInKey)
	if !ok {
		return false
	}
	s, ok := v.(*ast.Scalar)
	return ok && s.Value == true
}

// pathSet keeps paths unique in first-seen order.
type pathSet struct {
	seen  map[string]bool
	order []string
}

func newPathSet() *pathSet {
	return &pathSet{seen: make(map[string]bool)}
}

func (s *pathSet) add(path string) {
	if path == "" || s.seen[path] {
		return
	}
	s.seen[path] = true
	s.order = append(s.order, path)
}

func (s *pathSet) list() []string {
	return append([]string(nil), s.order...)
}

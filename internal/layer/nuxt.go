package layer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"vuetifyconf-cli/internal/ast"
	"vuetifyconf-cli/internal/imports"
	"vuetifyconf-cli/internal/source"
)

// Layer is one directory of the layering hierarchy.
type Layer struct {
	Dir string
	// Root marks the project layer, which is folded last.
	Root bool

	nuxt *nuxtConfig
}

// NuxtConfig returns the path of the layer's nuxt.config, or "" when it has none.
func (l Layer) NuxtConfig() string {
	if l.nuxt == nil {
		return ""
	}
	return l.nuxt.path
}

// nuxtConfig is the parsed nuxt.config of a layer.
type nuxtConfig struct {
	path    string
	config  *ast.Object
	imports imports.Map
}

// module returns the `vuetify` module options object, if any.
func (n *nuxtConfig) module() *ast.Object {
	if n == nil {
		return nil
	}
	v, ok := n.config.Get("vuetify")
	if !ok {
		return nil
	}
	obj, _ := v.(*ast.Object)
	return obj
}

// inline returns the value at path, e.g. vuetify.vuetifyOptions.
func (n *nuxtConfig) inline(path []string) (ast.Value, bool) {
	if n == nil || len(path) == 0 {
		return nil, false
	}
	return n.config.Path(path...)
}

// extends lists the string entries of the `extends` key.
func (n *nuxtConfig) extends() []string {
	if n == nil {
		return nil
	}
	v, ok := n.config.Get("extends")
	if !ok {
		return nil
	}
	var out []string
	switch x := v.(type) {
	case *ast.Scalar:
		if s, ok := x.Value.(string); ok {
			out = append(out, s)
		}
	case *ast.Array:
		for _, el := range x.Elements {
			switch e := el.(type) {
			case *ast.Scalar:
				if s, ok := e.Value.(string); ok {
					out = append(out, s)
				}
			case *ast.Array:
				// [source, options] tuples
				if len(e.Elements) > 0 {
					if s, ok := e.Elements[0].(*ast.Scalar); ok {
						if str, ok := s.Value.(string); ok {
							out = append(out, str)
						}
					}
				}
			}
		}
	}
	return out
}

// flag reads a boolean module option such as enableVuetifyRules.
func (n *nuxtConfig) flag(key string) bool {
	mod := n.module()
	if mod == nil {
		return false
	}
	v, ok := mod.Get(key)
	if !ok {
		return false
	}
	s, ok := v.(*ast.Scalar)
	return ok && s.Value == true
}

// readNuxtConfig parses <dir>/nuxt.config.*; a layer without one yields nil.
func (l *Loader) readNuxtConfig(dir string) (*nuxtConfig, error) {
	file, err := l.reader.Locate(filepath.Join(dir, "nuxt.config"))
	if errors.Is(err, source.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	mod, err := l.cache.Parse(file.Content, file.Path, file.Dialect)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file.Path, err)
	}
	return &nuxtConfig{
		path:    file.Path,
		config:  mod.Default,
		imports: imports.BuildMap(mod, file.Path),
	}, nil
}

// externalBase resolves a configuration path given in nuxt.config against
// the layer directory and drops a known extension.
func externalBase(dir, path string) string {
	for _, ext := range source.Extensions {
		if strings.HasSuffix(path, "."+ext) {
			path = strings.TrimSuffix(path, "."+ext)
			break
		}
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}

// Package imports builds per-file import maps, accumulates the imports that
// back a merged configuration and renders them as import declarations.
package imports

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"vuetifyconf-cli/internal/ast"
)

var (
	// ErrUnresolvedImport is returned when a referenced binding has no import.
	ErrUnresolvedImport = errors.New("unresolved import")
	// ErrImportConflict is returned when one local name is bound to two origins.
	ErrImportConflict = errors.New("import conflict")
)

// Map indexes the imports of one file by local binding name.
type Map map[string]ast.Import

// BuildMap returns the import map of mod, which was read from filePath.
// Relative specifiers are resolved against the directory of filePath.
func BuildMap(mod *ast.Module, filePath string) Map {
	m := make(Map, len(mod.Imports))
	dir := filepath.Dir(filePath)
	for _, spec := range mod.Imports {
		imp := ast.Import{
			From:     spec.From,
			Imported: spec.Imported,
			Local:    spec.Local,
			File:     filePath,
		}
		if IsRelative(spec.From) {
			imp.Relative = true
			imp.From = filepath.ToSlash(filepath.Join(dir, spec.From))
		}
		m[spec.Local] = imp
	}
	return m
}

// IsRelative reports whether a module specifier is relative to its file.
func IsRelative(specifier string) bool {
	return strings.HasPrefix(specifier, ".")
}

// UnresolvedError names a referenced binding that no import declares.
// Declared is set when the binding is a local declaration of its file, which
// the generated module cannot see.
type UnresolvedError struct {
	Local    string
	Pos      ast.Pos
	Declared bool
}

func (e *UnresolvedError) Error() string {
	if e.Declared {
		return fmt.Sprintf("binding %q used in %s is declared in that file, not imported; move it to a module and import it", e.Local, e.Pos)
	}
	return fmt.Sprintf("unresolved import for binding %q originating in %s", e.Local, e.Pos)
}

func (e *UnresolvedError) Unwrap() error {
	return ErrUnresolvedImport
}

// ConflictError reports two different origins registered for one local name.
type ConflictError struct {
	Local    string
	Existing ast.Import
	Incoming ast.Import
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("binding %q is imported from %s (%s) and from %s (%s)",
		e.Local, describe(e.Existing), e.Existing.File, describe(e.Incoming), e.Incoming.File)
}

func (e *ConflictError) Unwrap() error {
	return ErrImportConflict
}

func describe(imp ast.Import) string {
	switch imp.Imported {
	case ast.ImportNamespace:
		return fmt.Sprintf("'%s' as namespace", imp.From)
	case ast.ImportDefault:
		return fmt.Sprintf("default of '%s'", imp.From)
	default:
		return fmt.Sprintf("'%s' export %s", imp.From, imp.Imported)
	}
}

// Registry collects the imports that back the values of one configuration
// namespace, keyed by local name and kept in first registration order.
type Registry struct {
	entries map[string]ast.Import
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]ast.Import)}
}

// Register records that local is backed by imp. Registering the same origin
// again is a no-op; a different origin for the same local name fails with a
// *ConflictError.
func (r *Registry) Register(local string, imp ast.Import) error {
	if existing, ok := r.Lookup(local); ok {
		if existing.SameOrigin(imp) {
			return nil
		}
		return &ConflictError{Local: local, Existing: existing, Incoming: imp}
	}
	r.entries[local] = imp
	r.order = append(r.order, local)
	return nil
}

// Lookup returns the import registered for local.
func (r *Registry) Lookup(local string) (ast.Import, bool) {
	if r == nil {
		return ast.Import{}, false
	}
	imp, ok := r.entries[local]
	return imp, ok
}

// Len returns the number of registered bindings.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Imports returns the registered imports in registration order.
func (r *Registry) Imports() []ast.Import {
	if r == nil {
		return nil
	}
	out := make([]ast.Import, len(r.order))
	for i, local := range r.order {
		out[i] = r.entries[local]
	}
	return out
}

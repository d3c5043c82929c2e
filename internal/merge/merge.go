// Package merge deep-merges configuration trees and reports the imports that
// back every surviving value.
//
// Merge never mutates its inputs. References are bound to their import
// descriptor the first time they are merged, so a value keeps the import of
// the file it came from however many folds it survives.
package merge

import (
	"errors"
	"fmt"
	"strings"

	"vuetifyconf-cli/internal/ast"
	"vuetifyconf-cli/internal/imports"
)

// ErrUnsupportedValue is returned for syntax the merger cannot carry, such as
// spread elements or computed keys.
var ErrUnsupportedValue = errors.New("unsupported configuration value")

// Context receives the imports referenced by surviving values.
type Context struct {
	Register func(local string, imp ast.Import) error
}

// RegistryContext registers into reg.
func RegistryContext(reg *imports.Registry) Context {
	return Context{Register: reg.Register}
}

// UnsupportedError locates a value the merger refuses to handle.
type UnsupportedError struct {
	Path  string
	Value *ast.Unsupported
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s: unsupported %s at key %q: %s",
		e.Value.Pos, strings.ReplaceAll(e.Value.NodeKind, "_", " "), e.Path, e.Value.Source)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupportedValue
}

// Merge folds last into first and returns the result. Keys of last win; an
// object meeting an object merges recursively, anything else replaces the
// previous value wholesale. Keys of first that last does not set survive and
// their imports are registered too. An incoming `undefined` never overrides.
func Merge(ctx Context, first *ast.Object, firstImports imports.Map, last *ast.Object, lastImports imports.Map) (*ast.Object, error) {
	return mergeObject(ctx, nil, first, firstImports, last, lastImports)
}

func mergeObject(ctx Context, path []string, first *ast.Object, firstImports imports.Map, last *ast.Object, lastImports imports.Map) (*ast.Object, error) {
	out := first
	if out == nil {
		out = &ast.Object{}
	}
	seen := make(map[string]bool, last.Len())

	if last != nil {
		for _, e := range last.Entries {
			if s, ok := e.Value.(*ast.Scalar); ok && s.Undefined {
				continue
			}
			seen[e.Key] = true
			keyPath := append(path[:len(path):len(path)], e.Key)

			if incoming, ok := e.Value.(*ast.Object); ok {
				if existing, ok := out.Get(e.Key); ok {
					if prior, ok := existing.(*ast.Object); ok {
						merged, err := mergeObject(ctx, keyPath, prior, firstImports, incoming, lastImports)
						if err != nil {
							return nil, err
						}
						out = out.Set(e.Key, merged)
						continue
					}
				}
			}

			v, err := extract(ctx, keyPath, e.Value, lastImports)
			if err != nil {
				return nil, err
			}
			out = out.Set(e.Key, v)
		}
	}

	for _, e := range out.Entries {
		if seen[e.Key] {
			continue
		}
		v, err := extract(ctx, append(path[:len(path):len(path)], e.Key), e.Value, firstImports)
		if err != nil {
			return nil, err
		}
		out = out.Set(e.Key, v)
	}
	return out, nil
}

// ExtractImports binds and registers the imports of a whole object.
func ExtractImports(ctx Context, obj *ast.Object, m imports.Map) (*ast.Object, error) {
	v, err := extract(ctx, nil, obj, m)
	if err != nil {
		return nil, err
	}
	return v.(*ast.Object), nil
}

func extract(ctx Context, path []string, v ast.Value, m imports.Map) (ast.Value, error) {
	switch n := v.(type) {
	case *ast.Scalar:
		return n, nil
	case *ast.ImportRef:
		ref, err := resolve(ctx, n.Ref, n.Pos, m)
		if err != nil {
			return nil, err
		}
		return &ast.ImportRef{Ref: ref, Pos: n.Pos}, nil
	case *ast.MemberRef:
		ref, err := resolve(ctx, n.Object, n.Pos, m)
		if err != nil {
			return nil, err
		}
		return &ast.MemberRef{Object: ref, Property: n.Property, Pos: n.Pos}, nil
	case *ast.Object:
		out := &ast.Object{Pos: n.Pos, Entries: make([]ast.Entry, 0, len(n.Entries))}
		for _, e := range n.Entries {
			bound, err := extract(ctx, append(path[:len(path):len(path)], e.Key), e.Value, m)
			if err != nil {
				return nil, err
			}
			out.Entries = append(out.Entries, ast.Entry{Key: e.Key, Value: bound})
		}
		return out, nil
	case *ast.Array:
		out := &ast.Array{Pos: n.Pos, Elements: make([]ast.Value, len(n.Elements))}
		for i, el := range n.Elements {
			bound, err := extract(ctx, append(path[:len(path):len(path)], fmt.Sprint(i)), el, m)
			if err != nil {
				return nil, err
			}
			out.Elements[i] = bound
		}
		return out, nil
	case *ast.Opaque:
		if len(n.Locals) > 0 {
			return nil, &imports.UnresolvedError{Local: n.Locals[0], Pos: n.Pos, Declared: true}
		}
		out := &ast.Opaque{Source: n.Source, Pos: n.Pos, Refs: make([]ast.Ref, len(n.Refs))}
		for i, ref := range n.Refs {
			// identifiers without an import are parameters or globals
			if !ref.Bound() {
				if _, ok := m[ref.Local]; !ok {
					out.Refs[i] = ref
					continue
				}
			}
			bound, err := resolve(ctx, ref, n.Pos, m)
			if err != nil {
				return nil, err
			}
			out.Refs[i] = bound
		}
		return out, nil
	case *ast.Unsupported:
		return nil, &UnsupportedError{Path: strings.Join(path, "."), Value: n}
	default:
		return nil, fmt.Errorf("merge: unexpected value %T", v)
	}
}

// resolve binds ref against m unless it is already bound, then registers it.
func resolve(ctx Context, ref ast.Ref, pos ast.Pos, m imports.Map) (ast.Ref, error) {
	if !ref.Bound() {
		imp, ok := m[ref.Local]
		if !ok {
			return ref, &imports.UnresolvedError{Local: ref.Local, Pos: pos}
		}
		ref.Import = &imp
	}
	if ctx.Register != nil {
		if err := ctx.Register(ref.Local, *ref.Import); err != nil {
			return ref, fmt.Errorf("%s: %w", pos, err)
		}
	}
	return ref, nil
}

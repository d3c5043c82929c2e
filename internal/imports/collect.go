package imports

import (
	"fmt"
	"path/filepath"
	"strings"

	"vuetifyconf-cli/internal/ast"
)

// Specifier is one `imported as local` pair of a named import.
type Specifier struct {
	Imported string
	Local    string
}

// String renders the specifier. Imported names that are not identifiers are
// written as string literals.
func (s Specifier) String() string {
	if s.Imported == s.Local {
		return s.Local
	}
	imported := s.Imported
	if !ast.IsIdentifier(imported) {
		imported = ast.Quote(imported)
	}
	return imported + " as " + s.Local
}

// Statement is one import declaration of the emitted module. A statement
// carries either named specifiers or a namespace binding, never both.
type Statement struct {
	From      string
	Named     []Specifier
	Namespace string
}

func (s Statement) String() string {
	if s.Namespace != "" {
		return fmt.Sprintf("import * as %s from %s", s.Namespace, ast.Quote(s.From))
	}
	names := make([]string, len(s.Named))
	for i, spec := range s.Named {
		names[i] = spec.String()
	}
	return fmt.Sprintf("import { %s } from %s", strings.Join(names, ", "), ast.Quote(s.From))
}

// Collect groups the registered imports by origin. Relative origins are
// rewritten relative to emitDir, the directory of the generated module.
// Groups keep the order in which their origin was first registered; inside a
// group the named statement comes before namespace statements.
func Collect(reg *Registry, emitDir string) []Statement {
	type group struct {
		named      []Specifier
		namespaces []string
	}
	groups := make(map[string]*group)
	var order []string

	for _, imp := range reg.Imports() {
		from := imp.From
		if imp.Relative {
			from = EmitPath(emitDir, imp.From)
		}
		g, ok := groups[from]
		if !ok {
			g = &group{}
			groups[from] = g
			order = append(order, from)
		}
		if imp.Imported == ast.ImportNamespace {
			g.namespaces = append(g.namespaces, imp.Local)
			continue
		}
		g.named = append(g.named, Specifier{Imported: imp.Imported, Local: imp.Local})
	}

	var out []Statement
	for _, from := range order {
		g := groups[from]
		if len(g.named) > 0 {
			out = append(out, Statement{From: from, Named: g.named})
		}
		for _, ns := range g.namespaces {
			out = append(out, Statement{From: from, Namespace: ns})
		}
	}
	return out
}

// EmitPath rewrites the absolute path of a relative import so that it can be
// imported from emitDir.
func EmitPath(emitDir, target string) string {
	rel, err := filepath.Rel(filepath.FromSlash(emitDir), filepath.FromSlash(target))
	if err != nil {
		return filepath.ToSlash(target)
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, "../") && !strings.HasPrefix(rel, "./") && rel != ".." {
		rel = "./" + rel
	}
	return rel
}

// RenderBlock renders statements one per line.
func RenderBlock(statements []Statement) string {
	lines := make([]string, len(statements))
	for i, s := range statements {
		lines[i] = s.String()
	}
	return strings.Join(lines, "\n")
}

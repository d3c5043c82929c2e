// Package parser turns TypeScript and JavaScript configuration sources into
// ast modules without evaluating them.
package parser

import (
	"errors"
	"fmt"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"vuetifyconf-cli/internal/ast"
)

// ErrMalformedSource is returned when a file is not valid syntax.
var ErrMalformedSource = errors.New("malformed source")

// SyntaxError locates the first syntax error of a file.
type SyntaxError struct {
	Pos  ast.Pos
	Near string
}

func (e *SyntaxError) Error() string {
	if e.Near != "" {
		return fmt.Sprintf("%s: syntax error near %q", e.Pos, e.Near)
	}
	return fmt.Sprintf("%s: syntax error", e.Pos)
}

func (e *SyntaxError) Unwrap() error {
	return ErrMalformedSource
}

func language(dialect ast.Dialect) *ts.Language {
	if dialect == ast.DialectTS {
		return ts.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	}
	return ts.NewLanguage(tree_sitter_javascript.Language())
}

// Parse parses src and extracts its imports and default export. filename is
// used for diagnostics and positions only.
func Parse(src []byte, filename string, dialect ast.Dialect) (*ast.Module, error) {
	p := ts.NewParser()
	defer p.Close()

	if err := p.SetLanguage(language(dialect)); err != nil {
		return nil, fmt.Errorf("loading %s grammar: %w", dialect, err)
	}

	tree := p.Parse(src, nil)
	if tree == nil {
		return nil, &SyntaxError{Pos: ast.Pos{File: filename}}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(root, src, filename)
	}

	c := &converter{
		src:      src,
		file:     filename,
		locals:   make(map[string]*ts.Node),
		declared: make(map[string]bool),
	}
	mod := &ast.Module{Path: filename, Dialect: dialect}

	var defaultExport *ts.Node
	for i := uint(0); i < uint(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		switch stmt.Kind() {
		case "import_statement":
			mod.Imports = append(mod.Imports, c.importSpecs(stmt)...)
		case "lexical_declaration", "variable_declaration", "function_declaration",
			"generator_function_declaration", "class_declaration", "abstract_class_declaration":
			c.declare(stmt)
		case "export_statement":
			if decl := stmt.ChildByFieldName("declaration"); decl != nil && !isDefaultExport(stmt) {
				c.declare(decl)
			}
			if isDefaultExport(stmt) {
				defaultExport = stmt.ChildByFieldName("value")
				if defaultExport == nil {
					defaultExport = stmt.ChildByFieldName("declaration")
				}
			}
		}
	}
	for _, spec := range mod.Imports {
		delete(c.locals, spec.Local)
		delete(c.declared, spec.Local)
	}

	mod.Default = &ast.Object{Pos: ast.Pos{File: filename}}
	if defaultExport == nil {
		return mod, nil
	}
	obj := c.unwrapDefault(defaultExport, make(map[string]bool))
	if obj == nil {
		return mod, nil
	}
	v, err := c.convert(obj, make(map[string]bool))
	if err != nil {
		return nil, err
	}
	mod.Default = v.(*ast.Object)
	mod.DefaultObject = true
	return mod, nil
}

func syntaxError(root *ts.Node, src []byte, filename string) error {
	n := firstError(root)
	if n == nil {
		n = root
	}
	near := strings.TrimSpace(n.Utf8Text(src))
	if i := strings.IndexByte(near, '\n'); i >= 0 {
		near = near[:i]
	}
	if len(near) > 40 {
		near = near[:40]
	}
	return &SyntaxError{Pos: position(n, filename), Near: near}
}

func firstError(n *ts.Node) *ts.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := uint(0); i < uint(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := firstError(child); found != nil {
			return found
		}
	}
	return nil
}

func position(n *ts.Node, filename string) ast.Pos {
	p := n.StartPosition()
	return ast.Pos{File: filename, Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

func isDefaultExport(stmt *ts.Node) bool {
	for i := uint(0); i < uint(stmt.ChildCount()); i++ {
		if child := stmt.Child(i); child != nil && child.Kind() == "default" {
			return true
		}
	}
	return false
}

// firstNamed returns the first named child that is not a comment.
func firstNamed(n *ts.Node) *ts.Node {
	for i := uint(0); i < uint(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child != nil && child.Kind() != "comment" {
			return child
		}
	}
	return nil
}

func hasChildKind(n *ts.Node, kind string) bool {
	for i := uint(0); i < uint(n.ChildCount()); i++ {
		if child := n.Child(i); child != nil && child.Kind() == kind {
			return true
		}
	}
	return false
}

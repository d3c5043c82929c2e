package parser

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"vuetifyconf-cli/internal/ast"
)

// importSpecs lists the value bindings of an import declaration. Type-only
// imports never back a configuration value and are skipped.
func (c *converter) importSpecs(stmt *ts.Node) []ast.ImportSpec {
	if hasChildKind(stmt, "type") {
		return nil
	}
	source := stmt.ChildByFieldName("source")
	if source == nil {
		return nil
	}
	from := unquote(source.Utf8Text(c.src))

	var clause *ts.Node
	for i := uint(0); i < uint(stmt.NamedChildCount()); i++ {
		if child := stmt.NamedChild(i); child != nil && child.Kind() == "import_clause" {
			clause = child
			break
		}
	}
	if clause == nil {
		return nil
	}

	var specs []ast.ImportSpec
	add := func(imported, local string, n *ts.Node) {
		specs = append(specs, ast.ImportSpec{
			From:     from,
			Imported: imported,
			Local:    local,
			Pos:      position(n, c.file),
		})
	}
	for i := uint(0); i < uint(clause.NamedChildCount()); i++ {
		child := clause.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier":
			add(ast.ImportDefault, child.Utf8Text(c.src), child)
		case "namespace_import":
			if id := firstNamed(child); id != nil {
				add(ast.ImportNamespace, id.Utf8Text(c.src), child)
			}
		case "named_imports":
			for j := uint(0); j < uint(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec == nil || spec.Kind() != "import_specifier" || hasChildKind(spec, "type") {
					continue
				}
				name := spec.ChildByFieldName("name")
				if name == nil {
					continue
				}
				imported := name.Utf8Text(c.src)
				if name.Kind() == "string" {
					imported = unquote(imported)
				}
				local := imported
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					local = alias.Utf8Text(c.src)
				}
				add(imported, local, spec)
			}
		}
	}
	return specs
}

package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"vuetifyconf-cli/internal/ast"
)

// opaqueKinds are expressions kept as source text.
var opaqueKinds = map[string]bool{
	"call_expression":      true,
	"new_expression":       true,
	"arrow_function":       true,
	"function_expression":  true,
	"function":             true,
	"generator_function":   true,
	"class":                true,
	"binary_expression":    true,
	"ternary_expression":   true,
	"unary_expression":     true,
	"await_expression":     true,
	"subscript_expression": true,
	"template_string":      true,
	"regex":                true,
	"sequence_expression":  true,
	"this":                 true,
}

// wrapperKinds only add syntax around an inner expression.
var wrapperKinds = map[string]bool{
	"parenthesized_expression": true,
	"as_expression":            true,
	"satisfies_expression":     true,
	"non_null_expression":      true,
}

type converter struct {
	src    []byte
	file   string
	locals map[string]*ts.Node
	// declared holds every top-level binding of the file that is not an import
	declared map[string]bool
}

// declare records the bindings of a top-level declaration and the
// initializers of `const x = ...`.
func (c *converter) declare(decl *ts.Node) {
	switch decl.Kind() {
	case "function_declaration", "generator_function_declaration", "class_declaration", "abstract_class_declaration":
		if name := decl.ChildByFieldName("name"); name != nil {
			c.declared[name.Utf8Text(c.src)] = true
		}
		return
	case "lexical_declaration", "variable_declaration":
	default:
		return
	}
	for i := uint(0); i < uint(decl.NamedChildCount()); i++ {
		d := decl.NamedChild(i)
		if d == nil || d.Kind() != "variable_declarator" {
			continue
		}
		name := d.ChildByFieldName("name")
		if name == nil {
			continue
		}
		c.bindingNames(name)
		value := d.ChildByFieldName("value")
		if value == nil || name.Kind() != "identifier" {
			continue
		}
		c.locals[name.Utf8Text(c.src)] = value
	}
}

// bindingNames records the identifiers bound by a declarator name, which may
// be a destructuring pattern.
func (c *converter) bindingNames(n *ts.Node) {
	switch n.Kind() {
	case "identifier", "shorthand_property_identifier_pattern":
		c.declared[n.Utf8Text(c.src)] = true
		return
	case "pair_pattern":
		if value := n.ChildByFieldName("value"); value != nil {
			c.bindingNames(value)
		}
		return
	case "assignment_pattern", "object_assignment_pattern":
		if left := n.ChildByFieldName("left"); left != nil {
			c.bindingNames(left)
		}
		return
	}
	for i := uint(0); i < uint(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child != nil {
			c.bindingNames(child)
		}
	}
}

// unwrapDefault finds the object literal behind a default export such as
// `defineConfig({...})`, `{...} satisfies T` or a local constant.
func (c *converter) unwrapDefault(n *ts.Node, seen map[string]bool) *ts.Node {
	for n != nil {
		switch kind := n.Kind(); {
		case kind == "object":
			return n
		case wrapperKinds[kind]:
			n = firstNamed(n)
		case kind == "call_expression":
			args := n.ChildByFieldName("arguments")
			if args == nil {
				return nil
			}
			n = firstNamed(args)
		case kind == "identifier":
			name := n.Utf8Text(c.src)
			if seen[name] {
				return nil
			}
			seen[name] = true
			n = c.locals[name]
		default:
			return nil
		}
	}
	return nil
}

func (c *converter) convert(n *ts.Node, inlining map[string]bool) (ast.Value, error) {
	pos := position(n, c.file)
	text := n.Utf8Text(c.src)

	switch kind := n.Kind(); {
	case kind == "string":
		return &ast.Scalar{Value: unquote(text), Raw: text, Pos: pos}, nil
	case kind == "number":
		if f, ok := parseNumber(text); ok {
			return &ast.Scalar{Value: f, Raw: text, Pos: pos}, nil
		}
		return c.opaque(n, pos), nil
	case kind == "true" || kind == "false":
		return &ast.Scalar{Value: kind == "true", Raw: text, Pos: pos}, nil
	case kind == "null":
		return &ast.Scalar{Raw: text, Pos: pos}, nil
	case kind == "undefined":
		return &ast.Scalar{Undefined: true, Raw: text, Pos: pos}, nil
	case kind == "identifier" || kind == "shorthand_property_identifier":
		return c.identifier(text, pos, inlining)
	case kind == "object":
		return c.object(n, inlining)
	case kind == "array":
		return c.array(n, inlining)
	case wrapperKinds[kind]:
		inner := firstNamed(n)
		if inner == nil {
			return &ast.Unsupported{NodeKind: kind, Source: text, Pos: pos}, nil
		}
		return c.convert(inner, inlining)
	case kind == "member_expression":
		object := n.ChildByFieldName("object")
		property := n.ChildByFieldName("property")
		if object != nil && property != nil && object.Kind() == "identifier" &&
			property.Kind() == "property_identifier" && !hasChildKind(n, "optional_chain") {
			return &ast.MemberRef{
				Object:   ast.Ref{Local: object.Utf8Text(c.src)},
				Property: property.Utf8Text(c.src),
				Pos:      pos,
			}, nil
		}
		return c.opaque(n, pos), nil
	case kind == "unary_expression":
		if s := c.signedNumber(n, text, pos); s != nil {
			return s, nil
		}
		return c.opaque(n, pos), nil
	case kind == "template_string":
		if !hasChildKind(n, "template_substitution") {
			return &ast.Scalar{Value: unquote(text), Raw: text, Pos: pos}, nil
		}
		return c.opaque(n, pos), nil
	case opaqueKinds[kind]:
		return c.opaque(n, pos), nil
	default:
		return &ast.Unsupported{NodeKind: kind, Source: text, Pos: pos}, nil
	}
}

// identifier resolves a bare name. Local constants are inlined from their
// initializer; anything else is a reference to be backed by an import.
func (c *converter) identifier(name string, pos ast.Pos, inlining map[string]bool) (ast.Value, error) {
	if init, ok := c.locals[name]; ok {
		if inlining[name] {
			return nil, fmt.Errorf("%s: constant %q refers to itself", pos, name)
		}
		inlining[name] = true
		defer delete(inlining, name)
		return c.convert(init, inlining)
	}
	switch name {
	case "NaN":
		return &ast.Scalar{Value: math.NaN(), Raw: name, Pos: pos}, nil
	case "Infinity":
		return &ast.Scalar{Value: math.Inf(1), Raw: name, Pos: pos}, nil
	case "undefined":
		return &ast.Scalar{Undefined: true, Raw: name, Pos: pos}, nil
	}
	return &ast.ImportRef{Ref: ast.Ref{Local: name}, Pos: pos}, nil
}

func (c *converter) object(n *ts.Node, inlining map[string]bool) (*ast.Object, error) {
	obj := &ast.Object{Pos: position(n, c.file)}
	for i := uint(0); i < uint(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		pos := position(child, c.file)
		switch child.Kind() {
		case "comment":
			continue
		case "pair":
			keyNode := child.ChildByFieldName("key")
			valueNode := child.ChildByFieldName("value")
			if keyNode == nil || valueNode == nil {
				continue
			}
			key, ok := c.propertyKey(keyNode)
			if !ok {
				obj = obj.Set(keyNode.Utf8Text(c.src), &ast.Unsupported{
					NodeKind: keyNode.Kind(),
					Source:   child.Utf8Text(c.src),
					Pos:      pos,
				})
				continue
			}
			v, err := c.convert(valueNode, inlining)
			if err != nil {
				return nil, err
			}
			obj = obj.Set(key, v)
		case "shorthand_property_identifier":
			name := child.Utf8Text(c.src)
			v, err := c.identifier(name, pos, inlining)
			if err != nil {
				return nil, err
			}
			obj = obj.Set(name, v)
		default:
			// spread elements, methods and accessors
			src := child.Utf8Text(c.src)
			obj = obj.Set(src, &ast.Unsupported{NodeKind: child.Kind(), Source: src, Pos: pos})
		}
	}
	return obj, nil
}

func (c *converter) propertyKey(n *ts.Node) (string, bool) {
	text := n.Utf8Text(c.src)
	switch n.Kind() {
	case "property_identifier", "identifier":
		return text, true
	case "string":
		return unquote(text), true
	case "number":
		if f, ok := parseNumber(text); ok {
			return strconv.FormatFloat(f, 'f', -1, 64), true
		}
		return text, true
	}
	return "", false
}

func (c *converter) array(n *ts.Node, inlining map[string]bool) (*ast.Array, error) {
	arr := &ast.Array{Pos: position(n, c.file)}
	for i := uint(0); i < uint(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		v, err := c.convert(child, inlining)
		if err != nil {
			return nil, err
		}
		arr.Elements = append(arr.Elements, v)
	}
	return arr, nil
}

func (c *converter) signedNumber(n *ts.Node, text string, pos ast.Pos) *ast.Scalar {
	op := n.ChildByFieldName("operator")
	arg := n.ChildByFieldName("argument")
	if op == nil || arg == nil || arg.Kind() != "number" {
		return nil
	}
	f, ok := parseNumber(arg.Utf8Text(c.src))
	if !ok {
		return nil
	}
	switch op.Utf8Text(c.src) {
	case "-":
		return &ast.Scalar{Value: -f, Raw: text, Pos: pos}
	case "+":
		return &ast.Scalar{Value: f, Raw: text, Pos: pos}
	}
	return nil
}

func (c *converter) opaque(n *ts.Node, pos ast.Pos) *ast.Opaque {
	out := &ast.Opaque{
		Source: stripTypes(n, c.src),
		Refs:   c.references(n),
		Pos:    pos,
	}
	for _, ref := range out.Refs {
		if c.declared[ref.Local] {
			out.Locals = append(out.Locals, ref.Local)
		}
	}
	return out
}

// references lists the identifiers mentioned inside an expression, in order
// of first appearance.
func (c *converter) references(n *ts.Node) []ast.Ref {
	var refs []ast.Ref
	seen := make(map[string]bool)
	var walk func(*ts.Node)
	walk = func(n *ts.Node) {
		switch n.Kind() {
		case "identifier", "shorthand_property_identifier":
			name := n.Utf8Text(c.src)
			if !seen[name] {
				seen[name] = true
				refs = append(refs, ast.Ref{Local: name})
			}
			return
		case "type_annotation", "type_arguments", "type_parameters":
			return
		}
		for i := uint(0); i < uint(n.NamedChildCount()); i++ {
			if child := n.NamedChild(i); child != nil {
				walk(child)
			}
		}
	}
	walk(n)
	return refs
}

// parseNumber reads a numeric literal. BigInt literals are not numbers here.
func parseNumber(text string) (float64, bool) {
	clean := strings.ReplaceAll(text, "_", "")
	if f, err := strconv.ParseFloat(clean, 64); err == nil {
		return f, true
	}
	lower := strings.ToLower(clean)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		if i, err := strconv.ParseInt(lower, 0, 64); err == nil {
			return float64(i), true
		}
	}
	return 0, false
}

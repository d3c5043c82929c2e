package ast

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// IsIdentifier reports whether s can be written as a bare property key.
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// Render serializes v as JavaScript source. Nested objects are indented by two
// spaces per level starting at indent.
func Render(v Value, indent int) (string, error) {
	var b strings.Builder
	if err := render(&b, v, indent); err != nil {
		return "", err
	}
	return b.String(), nil
}

func render(b *strings.Builder, v Value, indent int) error {
	switch n := v.(type) {
	case *Scalar:
		b.WriteString(RenderScalar(n))
	case *ImportRef:
		b.WriteString(n.Ref.Local)
	case *MemberRef:
		b.WriteString(n.Object.Local)
		b.WriteByte('.')
		b.WriteString(n.Property)
	case *Opaque:
		b.WriteString(n.Source)
	case *Array:
		return renderArray(b, n, indent)
	case *Object:
		return renderObject(b, n, indent)
	case *Unsupported:
		return fmt.Errorf("cannot render %s at %s", n.NodeKind, n.Pos)
	default:
		return fmt.Errorf("cannot render value of type %T", v)
	}
	return nil
}

func renderObject(b *strings.Builder, o *Object, indent int) error {
	if o.Len() == 0 {
		b.WriteString("{}")
		return nil
	}
	pad := strings.Repeat("  ", indent+1)
	b.WriteString("{\n")
	for _, e := range o.Entries {
		b.WriteString(pad)
		b.WriteString(RenderKey(e.Key))
		b.WriteString(": ")
		if err := render(b, e.Value, indent+1); err != nil {
			return fmt.Errorf("key %q: %w", e.Key, err)
		}
		b.WriteString(",\n")
	}
	b.WriteString(strings.Repeat("  ", indent))
	b.WriteByte('}')
	return nil
}

func renderArray(b *strings.Builder, a *Array, indent int) error {
	if len(a.Elements) == 0 {
		b.WriteString("[]")
		return nil
	}
	multiline := false
	for _, el := range a.Elements {
		if k := el.Kind(); k == KindObject || k == KindArray || k == KindOpaque {
			multiline = true
			break
		}
	}
	if !multiline {
		b.WriteByte('[')
		for i, el := range a.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := render(b, el, indent); err != nil {
				return err
			}
		}
		b.WriteByte(']')
		return nil
	}
	pad := strings.Repeat("  ", indent+1)
	b.WriteString("[\n")
	for i, el := range a.Elements {
		b.WriteString(pad)
		if err := render(b, el, indent+1); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		b.WriteString(",\n")
	}
	b.WriteString(strings.Repeat("  ", indent))
	b.WriteByte(']')
	return nil
}

// RenderKey writes an object key, quoting it when it is not an identifier.
func RenderKey(key string) string {
	if IsIdentifier(key) {
		return key
	}
	return Quote(key)
}

// RenderScalar serializes a literal.
func RenderScalar(s *Scalar) string {
	if s.Undefined {
		return "undefined"
	}
	switch v := s.Value.(type) {
	case nil:
		return "null"
	case string:
		return Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if s.Raw != "" {
			return s.Raw
		}
		if math.IsInf(v, 1) {
			return "Infinity"
		}
		if math.IsInf(v, -1) {
			return "-Infinity"
		}
		if math.IsNaN(v) {
			return "NaN"
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		if s.Raw != "" {
			return s.Raw
		}
		return fmt.Sprint(v)
	}
}

// Quote writes s as a single-quoted JavaScript string literal.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\u2028':
			b.WriteString(`\u2028`)
		case '\u2029':
			b.WriteString(`\u2029`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\x%02x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

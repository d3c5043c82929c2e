package parser

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// typeOnlyKinds never survive into JavaScript output.
var typeOnlyKinds = map[string]bool{
	"type_annotation":           true,
	"type_arguments":            true,
	"type_parameters":           true,
	"omitting_type_annotation":  true,
	"opting_type_annotation":    true,
	"asserts_annotation":        true,
	"type_predicate_annotation": true,
	"accessibility_modifier":    true,
	"override_modifier":         true,
}

type span struct{ start, end uint }

// stripTypes returns the source of n with TypeScript-only syntax removed, so
// an expression copied out of a .ts file stays valid in a .mjs module.
func stripTypes(n *ts.Node, src []byte) string {
	var cut []span
	var walk func(*ts.Node)
	walk = func(n *ts.Node) {
		kind := n.Kind()
		if typeOnlyKinds[kind] {
			cut = append(cut, span{n.StartByte(), n.EndByte()})
			return
		}
		switch kind {
		case "as_expression", "satisfies_expression", "non_null_expression":
			if inner := firstNamed(n); inner != nil {
				cut = append(cut, span{inner.EndByte(), n.EndByte()})
				walk(inner)
				return
			}
		case "formal_parameters":
			if this := thisParameter(n); this != nil {
				cut = append(cut, thisSpan(n, this))
			}
		case "optional_parameter":
			for i := uint(0); i < uint(n.ChildCount()); i++ {
				if child := n.Child(i); child != nil && child.Kind() == "?" {
					cut = append(cut, span{child.StartByte(), child.EndByte()})
				}
			}
		}
		for i := uint(0); i < uint(n.NamedChildCount()); i++ {
			if child := n.NamedChild(i); child != nil {
				walk(child)
			}
		}
	}
	walk(n)

	start, end := n.StartByte(), n.EndByte()
	if len(cut) == 0 {
		return string(src[start:end])
	}
	sort.Slice(cut, func(i, j int) bool { return cut[i].start < cut[j].start })

	var b strings.Builder
	pos := start
	for _, s := range cut {
		if s.start < pos {
			if s.end > pos {
				pos = s.end
			}
			continue
		}
		b.Write(src[pos:s.start])
		pos = s.end
	}
	if pos < end {
		b.Write(src[pos:end])
	}
	return b.String()
}

// thisParameter returns the `this: T` parameter of a parameter list.
func thisParameter(params *ts.Node) *ts.Node {
	for i := uint(0); i < uint(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		if p == nil {
			continue
		}
		if pattern := p.ChildByFieldName("pattern"); pattern != nil && pattern.Kind() == "this" {
			return p
		}
	}
	return nil
}

// thisSpan covers the `this` parameter and the comma separating it from its
// neighbour.
func thisSpan(params, this *ts.Node) span {
	if next := this.NextNamedSibling(); next != nil {
		return span{this.StartByte(), next.StartByte()}
	}
	closing := params.EndByte() - 1
	if prev := this.PrevNamedSibling(); prev != nil {
		return span{prev.EndByte(), closing}
	}
	return span{this.StartByte(), closing}
}

// unquote decodes a JavaScript string or template literal without
// substitutions, quotes included.
func unquote(lit string) string {
	if len(lit) < 2 {
		return lit
	}
	body := lit[1 : len(lit)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}

	var b strings.Builder
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			b.WriteByte(c)
			i++
			continue
		}
		esc := body[i+1]
		i += 2
		switch esc {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
			// line continuation
		case '\r':
			if i < len(body) && body[i] == '\n' {
				i++
			}
		case 'x':
			if i+2 <= len(body) {
				if v, err := strconv.ParseUint(body[i:i+2], 16, 8); err == nil {
					b.WriteRune(rune(v))
					i += 2
					continue
				}
			}
			b.WriteByte('x')
		case 'u':
			r, n := decodeUnicodeEscape(body[i:])
			if n == 0 {
				b.WriteByte('u')
				continue
			}
			b.WriteRune(r)
			i += n
		default:
			b.WriteByte(esc)
		}
	}
	return b.String()
}

func decodeUnicodeEscape(s string) (rune, int) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return 0, 0
		}
		v, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil || !utf8.ValidRune(rune(v)) {
			return 0, 0
		}
		return rune(v), end + 1
	}
	if len(s) < 4 {
		return 0, 0
	}
	v, err := strconv.ParseUint(s[:4], 16, 32)
	if err != nil {
		return 0, 0
	}
	r := rune(v)
	// surrogate pair
	if r >= 0xD800 && r <= 0xDBFF && len(s) >= 10 && s[4] == '\\' && s[5] == 'u' {
		if lo, err := strconv.ParseUint(s[6:10], 16, 32); err == nil && lo >= 0xDC00 && lo <= 0xDFFF {
			return (r-0xD800)<<10 + (rune(lo) - 0xDC00) + 0x10000, 10
		}
	}
	return r, 4
}

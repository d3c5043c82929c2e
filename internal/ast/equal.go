package ast

import "sort"

// Equal reports whether two values are structurally equal. Positions, raw
// literal text and import bindings are ignored; object key order is not
// significant.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *Scalar:
		y := b.(*Scalar)
		return x.Undefined == y.Undefined && x.Value == y.Value
	case *ImportRef:
		return x.Ref.Local == b.(*ImportRef).Ref.Local
	case *MemberRef:
		y := b.(*MemberRef)
		return x.Object.Local == y.Object.Local && x.Property == y.Property
	case *Opaque:
		return x.Source == b.(*Opaque).Source
	case *Unsupported:
		y := b.(*Unsupported)
		return x.NodeKind == y.NodeKind && x.Source == y.Source
	case *Array:
		y := b.(*Array)
		if len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !Equal(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	case *Object:
		y := b.(*Object)
		if x.Len() != y.Len() {
			return false
		}
		for _, e := range x.Entries {
			other, ok := y.Get(e.Key)
			if !ok || !Equal(e.Value, other) {
				return false
			}
		}
		return true
	}
	return false
}

// ToInterface converts the literal parts of v into plain Go values:
// map[string]any, []any, string, float64, bool and nil. Values that reference
// code are dropped; ok is false when v itself is not literal.
func ToInterface(v Value) (out any, ok bool) {
	switch n := v.(type) {
	case *Scalar:
		return n.Value, true
	case *Array:
		list := make([]any, 0, len(n.Elements))
		for _, el := range n.Elements {
			if x, ok := ToInterface(el); ok {
				list = append(list, x)
			}
		}
		return list, true
	case *Object:
		m := make(map[string]any, n.Len())
		for _, e := range n.Entries {
			if x, ok := ToInterface(e.Value); ok {
				m[e.Key] = x
			}
		}
		return m, true
	}
	return nil, false
}

// FromInterface builds a literal tree from plain Go values. Map keys are
// sorted so the result is deterministic.
func FromInterface(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case int:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case float64:
		return Number(x)
	case []any:
		arr := &Array{}
		for _, el := range x {
			arr.Elements = append(arr.Elements, FromInterface(el))
		}
		return arr
	case map[string]any:
		obj := &Object{}
		for _, k := range sortedKeys(x) {
			obj = obj.Set(k, FromInterface(x[k]))
		}
		return obj
	default:
		return &Unsupported{NodeKind: "go value"}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

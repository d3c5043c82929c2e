// Package ast models the configuration values extracted from a source module.
//
// A configuration is a tree of Values. The set of variants is closed: Scalar,
// ImportRef, MemberRef, Object, Array, Opaque and Unsupported. Values are
// immutable once built; operations that change a tree return a new one.
package ast

import "fmt"

// Kind identifies a Value variant.
type Kind uint8

const (
	KindScalar Kind = iota
	KindImportRef
	KindMemberRef
	KindObject
	KindArray
	KindOpaque
	KindUnsupported
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindImportRef:
		return "identifier"
	case KindMemberRef:
		return "member expression"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindOpaque:
		return "expression"
	case KindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Pos locates a value in its source file.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.File == "" {
		return "<unknown>"
	}
	if p.Line == 0 {
		return p.File
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Value is one node of a configuration tree.
type Value interface {
	Kind() Kind
	Position() Pos
	sealed()
}

// Ref is a reference to a local binding. Import is set once the reference
// has been bound to the import declaration that backs it.
type Ref struct {
	Local  string
	Import *Import
}

// Bound reports whether the reference carries its import descriptor.
func (r Ref) Bound() bool {
	return r.Import != nil
}

// Scalar is a literal: string, float64, bool or nil. Undefined marks the
// `undefined` literal, which has no Go counterpart distinct from null.
type Scalar struct {
	Value     any
	Raw       string
	Undefined bool
	Pos       Pos
}

// ImportRef is a bare identifier used as a value, e.g. a blueprint.
type ImportRef struct {
	Ref Ref
	Pos Pos
}

// MemberRef is `object.property` where both sides are simple identifiers.
type MemberRef struct {
	Object   Ref
	Property string
	Pos      Pos
}

// Array is an array literal. Elements are walked for imports but arrays
// are never merged element by element.
type Array struct {
	Elements []Value
	Pos      Pos
}

// Opaque is any other expression (calls, functions, templates...). Source is
// the expression text with TypeScript-only syntax removed; Refs lists the
// identifiers it mentions. Locals names the mentioned identifiers that are
// declared at the top level of the source file rather than imported.
type Opaque struct {
	Source string
	Refs   []Ref
	Locals []string
	Pos    Pos
}

// Unsupported marks syntax the merger refuses to handle, such as spread
// elements or computed keys.
type Unsupported struct {
	NodeKind string
	Source   string
	Pos      Pos
}

func (*Scalar) Kind() Kind      { return KindScalar }
func (*ImportRef) Kind() Kind   { return KindImportRef }
func (*MemberRef) Kind() Kind   { return KindMemberRef }
func (*Object) Kind() Kind      { return KindObject }
func (*Array) Kind() Kind       { return KindArray }
func (*Opaque) Kind() Kind      { return KindOpaque }
func (*Unsupported) Kind() Kind { return KindUnsupported }

func (v *Scalar) Position() Pos      { return v.Pos }
func (v *ImportRef) Position() Pos   { return v.Pos }
func (v *MemberRef) Position() Pos   { return v.Pos }
func (v *Object) Position() Pos      { return v.Pos }
func (v *Array) Position() Pos       { return v.Pos }
func (v *Opaque) Position() Pos      { return v.Pos }
func (v *Unsupported) Position() Pos { return v.Pos }

func (*Scalar) sealed()      {}
func (*ImportRef) sealed()   {}
func (*MemberRef) sealed()   {}
func (*Object) sealed()      {}
func (*Array) sealed()       {}
func (*Opaque) sealed()      {}
func (*Unsupported) sealed() {}

// String builds a string scalar.
func String(s string) *Scalar {
	return &Scalar{Value: s}
}

// Number builds a number scalar.
func Number(f float64) *Scalar {
	return &Scalar{Value: f}
}

// Bool builds a boolean scalar.
func Bool(b bool) *Scalar {
	return &Scalar{Value: b}
}

// Null builds the null literal.
func Null() *Scalar {
	return &Scalar{}
}

// Ident builds an unbound identifier reference.
func Ident(local string) *ImportRef {
	return &ImportRef{Ref: Ref{Local: local}}
}

// Member builds an unbound `object.property` reference.
func Member(object, property string) *MemberRef {
	return &MemberRef{Object: Ref{Local: object}, Property: property}
}

package ast

// Dialect is the source language of a configuration file.
type Dialect uint8

const (
	DialectJS Dialect = iota
	DialectTS
)

func (d Dialect) String() string {
	if d == DialectTS {
		return "ts"
	}
	return "js"
}

// Imported names with special meaning.
const (
	ImportDefault   = "default"
	ImportNamespace = "*"
)

// ImportSpec is one specifier of an import declaration, as written.
type ImportSpec struct {
	From     string
	Imported string
	Local    string
	Pos      Pos
}

// Import describes where a local binding comes from. For relative origins
// From holds the absolute, slash-separated path of the imported module.
type Import struct {
	From     string
	Imported string
	Local    string
	Relative bool
	// File is the configuration file that declared the import.
	File string
}

// SameOrigin reports whether two descriptors bind the same symbol.
func (i Import) SameOrigin(other Import) bool {
	return i.From == other.From && i.Imported == other.Imported
}

// Module is a parsed configuration source file.
type Module struct {
	Path    string
	Dialect Dialect
	Imports []ImportSpec
	// Default is the object behind the default export. When the default export
	// is not object shaped it is an empty object and DefaultObject is false.
	Default       *Object
	DefaultObject bool
}

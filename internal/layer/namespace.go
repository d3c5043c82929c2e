package layer

import "vuetifyconf-cli/internal/ast"

// Namespace names.
const (
	NamespaceMain  = "vuetify"
	NamespaceRules = "rules"
)

// Namespace is one independent configuration pipeline. Namespaces never
// share values or imports.
type Namespace struct {
	Name     string
	FileName string
	// Inline reads a fragment from nuxt.config in addition to the file.
	Inline bool
	// Seed returns the accumulator the first layer is merged into.
	Seed func() *ast.Object
}

// MainNamespace is the Vuetify options pipeline.
func MainNamespace(fileName string) Namespace {
	return Namespace{
		Name:     NamespaceMain,
		FileName: fileName,
		Inline:   true,
		Seed:     func() *ast.Object { return &ast.Object{} },
	}
}

// RulesNamespace is the validation rules pipeline. It starts from
// `{ aliases: {} }`.
func RulesNamespace(fileName string) Namespace {
	return Namespace{
		Name:     NamespaceRules,
		FileName: fileName,
		Seed: func() *ast.Object {
			return ast.NewObject(ast.Entry{Key: "aliases", Value: &ast.Object{}})
		},
	}
}

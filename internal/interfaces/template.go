package interfaces

import (
	"text/template"

	"vuetifyconf-cli/internal/ast"
)

// ArtifactData contains all variables available to artifact templates
type ArtifactData struct {
	// Name identifies the artifact, e.g. "configuration"
	Name string `json:"name"`
	// Imports holds the rendered import statements in emission order
	Imports []string `json:"imports"`
	// Config is the merged configuration object
	Config *ast.Object `json:"-"`
	// Sources lists the files the configuration was merged from
	Sources []string `json:"sources"`
}

// TemplateProcessor handles template loading and execution
type TemplateProcessor interface {
	// LoadTemplate loads an artifact template by name or path
	LoadTemplate(nameOrPath string) (*template.Template, error)

	// Execute executes a template with the provided data
	Execute(tmpl *template.Template, data ArtifactData) (string, error)
}

package template

import (
	"vuetifyconf-cli/internal/ast"
	"vuetifyconf-cli/internal/imports"
	"vuetifyconf-cli/internal/interfaces"
)

// NewArtifactData prepares the template data of one generated module. emitDir
// is the directory the module is written to; relative imports are rewritten
// against it.
func NewArtifactData(name string, config *ast.Object, reg *imports.Registry, emitDir string, sources []string) interfaces.ArtifactData {
	statements := imports.Collect(reg, emitDir)
	lines := make([]string, len(statements))
	for i, s := range statements {
		lines[i] = s.String()
	}
	if config == nil {
		config = &ast.Object{}
	}
	return interfaces.ArtifactData{
		Name:    name,
		Imports: lines,
		Config:  config,
		Sources: sources,
	}
}

// Emit renders the named artifact with p.
func Emit(p interfaces.TemplateProcessor, data interfaces.ArtifactData) (string, error) {
	tmpl, err := p.LoadTemplate(data.Name)
	if err != nil {
		return "", err
	}
	return p.Execute(tmpl, data)
}

package template

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"vuetifyconf-cli/internal/ast"
	"vuetifyconf-cli/internal/interfaces"
)

// Artifact template names.
const (
	ArtifactConfiguration = "configuration"
	ArtifactRules         = "rules-configuration"
)

// TemplateExt is the suffix of artifact templates, builtin or overridden.
const TemplateExt = ".mjs.tmpl"

//go:embed templates/*.tmpl
var builtin embed.FS

// Processor implements the TemplateProcessor interface
type Processor struct {
	overrideDir string
}

// NewProcessor creates a new template processor. Templates found in
// overrideDir replace the builtin ones; an empty dir uses builtins only.
func NewProcessor(overrideDir string) *Processor {
	return &Processor{
		overrideDir: overrideDir,
	}
}

// SetOverrideDir updates the override directory
func (p *Processor) SetOverrideDir(dir string) {
	p.overrideDir = dir
}

// LoadTemplate loads an artifact template from a path or by name
func (p *Processor) LoadTemplate(nameOrPath string) (*template.Template, error) {
	if filepath.IsAbs(nameOrPath) || strings.Contains(nameOrPath, string(filepath.Separator)) {
		return p.loadTemplateFromPath(nameOrPath)
	}

	path, err := p.discoverTemplate(nameOrPath)
	if err != nil {
		return nil, err
	}
	if path != "" {
		return p.loadTemplateFromPath(path)
	}

	content, err := builtin.ReadFile("templates/" + nameOrPath + TemplateExt)
	if err != nil {
		return nil, fmt.Errorf("template not found: %s", nameOrPath)
	}
	return p.parse(nameOrPath, string(content))
}

// discoverTemplate finds an override by name (case-insensitive matching by
// stem). It returns "" when the override directory has none.
func (p *Processor) discoverTemplate(name string) (string, error) {
	if p.overrideDir == "" {
		return "", nil
	}
	entries, err := os.ReadDir(p.overrideDir)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read template directory %s: %w", p.overrideDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		filename := entry.Name()
		if !strings.HasSuffix(filename, TemplateExt) {
			continue
		}
		stem := strings.TrimSuffix(filename, TemplateExt)
		if strings.EqualFold(stem, name) {
			return filepath.Join(p.overrideDir, filename), nil
		}
	}
	return "", nil
}

// loadTemplateFromPath loads a template from a specific file path
func (p *Processor) loadTemplateFromPath(path string) (*template.Template, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file %s: %w", path, err)
	}
	return p.parse(filepath.Base(path), string(content))
}

func (p *Processor) parse(name, content string) (*template.Template, error) {
	tmpl := template.New(name)
	tmpl.Funcs(funcMap())

	tmpl, err := tmpl.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}

// Execute executes a template with the provided data
func (p *Processor) Execute(tmpl *template.Template, data interfaces.ArtifactData) (string, error) {
	var buf strings.Builder

	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// funcMap returns sprig's functions plus the artifact helpers
func funcMap() template.FuncMap {
	funcs := sprig.TxtFuncMap()

	customFuncs := template.FuncMap{
		"render":      renderFunc,
		"importBlock": importBlockFunc,
		"indent":      indentFunc,
		"jsQuote":     ast.Quote,
	}
	for name, fn := range customFuncs {
		funcs[name] = fn
	}
	return funcs
}

// renderFunc serializes a configuration value; level is the indentation
// depth of the line the value starts on.
func renderFunc(level int, v ast.Value) (string, error) {
	return ast.Render(v, level)
}

// importBlockFunc renders import statements one per line followed by a
// blank line, or nothing when there are none.
func importBlockFunc(statements []string) string {
	if len(statements) == 0 {
		return ""
	}
	return strings.Join(statements, "\n") + "\n\n"
}

// indentFunc indents each line of text by the specified number of spaces
func indentFunc(spaces int, text string) string {
	if spaces <= 0 {
		return text
	}

	indent := strings.Repeat(" ", spaces)
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		if strings.TrimSpace(line) != "" { // Don't indent empty lines
			lines[i] = indent + line
		}
	}

	return strings.Join(lines, "\n")
}

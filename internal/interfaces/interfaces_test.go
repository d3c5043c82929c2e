package interfaces

import (
	"context"
	"testing"
	"text/template"

	"vuetifyconf-cli/internal/layer"
)

// Mock implementations to verify interfaces are properly defined
type mockConfigManager struct{}

func (m *mockConfigManager) Load(path string) (*Config, error) {
	return &Config{}, nil
}

func (m *mockConfigManager) Resolve() (*Config, error) {
	return &Config{}, nil
}

func (m *mockConfigManager) Validate(config *Config) error {
	return nil
}

type mockTemplateProcessor struct{}

func (m *mockTemplateProcessor) LoadTemplate(name string) (*template.Template, error) {
	return template.New(name), nil
}

func (m *mockTemplateProcessor) Execute(tmpl *template.Template, data ArtifactData) (string, error) {
	return data.Name, nil
}

type mockOutputHandler struct{}

func (m *mockOutputHandler) WriteToClipboard(content string) error {
	return nil
}

func (m *mockOutputHandler) WriteToStdout(content string) error {
	return nil
}

func (m *mockOutputHandler) WriteToFile(content string, path string) error {
	return nil
}

type mockConfigLoader struct{}

func (m *mockConfigLoader) Layers(ctx context.Context, root string, bases []string) ([]layer.Layer, error) {
	return []layer.Layer{{Dir: root, Root: true}}, nil
}

func (m *mockConfigLoader) Load(ctx context.Context, layers []layer.Layer) (*layer.Load, error) {
	return &layer.Load{Layers: layers}, nil
}

// Test that mock implementations satisfy interfaces
func TestInterfaceImplementations(t *testing.T) {
	var _ ConfigManager = &mockConfigManager{}
	var _ TemplateProcessor = &mockTemplateProcessor{}
	var _ OutputHandler = &mockOutputHandler{}
	var _ ConfigLoader = &mockConfigLoader{}
	var _ ConfigLoader = &layer.Loader{}
}

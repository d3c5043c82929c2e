package template

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vuetifyconf-cli/internal/ast"
	"vuetifyconf-cli/internal/imports"
	"vuetifyconf-cli/internal/interfaces"
)

func TestProcessor_LoadTemplate(t *testing.T) {
	tempDir := t.TempDir()

	override := "// custom\n{{ render 0 .Config }}\n"
	if err := os.WriteFile(filepath.Join(tempDir, "Rules-Configuration.mjs.tmpl"), []byte(override), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	processor := NewProcessor(tempDir)

	tests := []struct {
		name         string
		templateName string
		wantError    bool
		wantName     string
	}{
		{
			name:         "builtin configuration template",
			templateName: ArtifactConfiguration,
			wantName:     ArtifactConfiguration,
		},
		{
			name:         "override matched case insensitive",
			templateName: ArtifactRules,
			wantName:     "Rules-Configuration.mjs.tmpl",
		},
		{
			name:         "explicit path",
			templateName: filepath.Join(tempDir, "Rules-Configuration.mjs.tmpl"),
			wantName:     "Rules-Configuration.mjs.tmpl",
		},
		{
			name:         "unknown template",
			templateName: "client-hints",
			wantError:    true,
		},
		{
			name:         "missing explicit path",
			templateName: filepath.Join(tempDir, "missing.mjs.tmpl"),
			wantError:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := processor.LoadTemplate(tt.templateName)

			if tt.wantError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if tmpl.Name() != tt.wantName {
				t.Errorf("expected template %q, got %q", tt.wantName, tmpl.Name())
			}
		})
	}
}

func TestProcessor_LoadTemplate_MissingOverrideDir(t *testing.T) {
	processor := NewProcessor(filepath.Join(t.TempDir(), "absent"))
	if _, err := processor.LoadTemplate(ArtifactRules); err != nil {
		t.Fatalf("expected builtin fallback, got %v", err)
	}
}

func TestProcessor_LoadTemplate_ParseError(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tempDir, "configuration.mjs.tmpl"), []byte("{{ render 1 "), 0644); err != nil {
		t.Fatal(err)
	}
	processor := NewProcessor(tempDir)
	_, err := processor.LoadTemplate(ArtifactConfiguration)
	if err == nil || !strings.Contains(err.Error(), "failed to parse template") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestEmit_Configuration(t *testing.T) {
	reg := imports.NewRegistry()
	register := func(imp ast.Import) {
		t.Helper()
		if err := reg.Register(imp.Local, imp); err != nil {
			t.Fatal(err)
		}
	}
	register(ast.Import{From: "vuetify/blueprints", Imported: "md3", Local: "md3"})
	register(ast.Import{From: "/app/theme", Imported: "default", Local: "theme", Relative: true})
	register(ast.Import{From: "vuetify/blueprints", Imported: "md2", Local: "legacy"})
	register(ast.Import{From: "vuetify/labs/components", Imported: "*", Local: "labs"})

	config := ast.NewObject(
		ast.Entry{Key: "blueprint", Value: ast.Ident("md3")},
		ast.Entry{Key: "theme", Value: ast.Ident("theme")},
		ast.Entry{Key: "fallback", Value: ast.Ident("legacy")},
		ast.Entry{Key: "components", Value: ast.Member("labs", "VDataTable")},
		ast.Entry{Key: "ssr", Value: ast.Bool(true)},
	)

	data := NewArtifactData(ArtifactConfiguration, config, reg, "/app/.nuxt/vuetify", nil)
	got, err := Emit(NewProcessor(""), data)
	if err != nil {
		t.Fatalf("Emit() failed: %v", err)
	}

	want := `import { md3, md2 as legacy } from 'vuetify/blueprints'
import { default as theme } from '../../theme'
import * as labs from 'vuetify/labs/components'

export function vuetifyConfiguration() {
  return {
    blueprint: md3,
    theme: theme,
    fallback: legacy,
    components: labs.VDataTable,
    ssr: true,
  }
}
`
	if got != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", got, want)
	}

	again, err := Emit(NewProcessor(""), NewArtifactData(ArtifactConfiguration, config, reg, "/app/.nuxt/vuetify", nil))
	if err != nil {
		t.Fatal(err)
	}
	if again != got {
		t.Error("emission is not deterministic")
	}
}

func TestEmit_RulesWithoutImports(t *testing.T) {
	config := ast.NewObject(ast.Entry{Key: "aliases", Value: &ast.Object{}})

	got, err := Emit(NewProcessor(""), NewArtifactData(ArtifactRules, config, nil, "/app/.nuxt/vuetify", nil))
	if err != nil {
		t.Fatalf("Emit() failed: %v", err)
	}

	want := "export const rulesOptions = {\n  aliases: {},\n}\n"
	if got != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", got, want)
	}
}

func TestEmit_UnsupportedValue(t *testing.T) {
	config := ast.NewObject(ast.Entry{Key: "x", Value: &ast.Unsupported{NodeKind: "spread_element", Source: "...a"}})
	_, err := Emit(NewProcessor(""), NewArtifactData(ArtifactRules, config, nil, "/", nil))
	if err == nil {
		t.Error("expected an error for an unsupported value")
	}
}

func TestProcessor_Execute(t *testing.T) {
	processor := NewProcessor("")
	tmpl, err := processor.parse("test", `{{ .Name | upper }} {{ len .Sources }} {{ jsQuote "it's" }}`)
	if err != nil {
		t.Fatal(err)
	}

	got, err := processor.Execute(tmpl, interfaces.ArtifactData{Name: "rules", Sources: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if want := `RULES 2 'it\'s'`; got != want {
		t.Errorf("Execute() = %q, want %q", got, want)
	}
}

func TestImportBlockFunc(t *testing.T) {
	if got := importBlockFunc(nil); got != "" {
		t.Errorf("importBlockFunc(nil) = %q", got)
	}
	got := importBlockFunc([]string{"import { a } from 'a'", "import { b } from 'b'"})
	if want := "import { a } from 'a'\nimport { b } from 'b'\n\n"; got != want {
		t.Errorf("importBlockFunc() = %q, want %q", got, want)
	}
}

func TestIndentFunc(t *testing.T) {
	tests := []struct {
		name     string
		spaces   int
		text     string
		expected string
	}{
		{"zero spaces", 0, "a\nb", "a\nb"},
		{"multiline", 2, "a\nb", "  a\n  b"},
		{"empty lines kept", 4, "a\n\nb", "    a\n\n    b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := indentFunc(tt.spaces, tt.text); got != tt.expected {
				t.Errorf("indentFunc() = %q, want %q", got, tt.expected)
			}
		})
	}
}

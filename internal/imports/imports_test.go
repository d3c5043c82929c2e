package imports

import (
	"errors"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vuetifyconf-cli/internal/ast"
)

func TestBuildMap(t *testing.T) {
	mod := &ast.Module{
		Imports: []ast.ImportSpec{
			{From: "vuetify/blueprints", Imported: "md3", Local: "md3"},
			{From: "./vuetify", Imported: "theme", Local: "theme"},
			{From: "../shared/rules", Imported: "default", Local: "rules"},
			{From: "#build/vuetify/iconsets/unocss.mjs", Imported: "aliases", Local: "aliases"},
		},
	}

	m := BuildMap(mod, "/app/layers/base/vuetify.config.ts")
	require.Len(t, m, 4)

	assert.Equal(t, ast.Import{
		From: "vuetify/blueprints", Imported: "md3", Local: "md3",
		File: "/app/layers/base/vuetify.config.ts",
	}, m["md3"])

	assert.True(t, m["theme"].Relative)
	assert.Equal(t, "/app/layers/base/vuetify", m["theme"].From)

	assert.True(t, m["rules"].Relative)
	assert.Equal(t, "/app/layers/shared/rules", m["rules"].From)

	assert.False(t, m["aliases"].Relative)
	assert.Equal(t, "#build/vuetify/iconsets/unocss.mjs", m["aliases"].From)
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	md3 := ast.Import{From: "vuetify/blueprints", Imported: "md3", Local: "md3", File: "a.ts"}

	require.NoError(t, reg.Register("md3", md3))

	// same origin from another file is idempotent
	again := md3
	again.File = "b.ts"
	require.NoError(t, reg.Register("md3", again))
	assert.Equal(t, 1, reg.Len())

	other := ast.Import{From: "./blueprint", Imported: "md3", Local: "md3", Relative: true, File: "c.ts"}
	err := reg.Register("md3", other)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrImportConflict))

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "md3", conflict.Local)
	assert.Equal(t, "a.ts", conflict.Existing.File)
	assert.Equal(t, "c.ts", conflict.Incoming.File)
	assert.Contains(t, err.Error(), "c.ts")
}

func TestRegistry_Order(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, reg.Register(name, ast.Import{From: "m", Imported: name, Local: name}))
	}
	var locals []string
	for _, imp := range reg.Imports() {
		locals = append(locals, imp.Local)
	}
	assert.Equal(t, []string{"c", "a", "b"}, locals)

	var nilReg *Registry
	assert.Equal(t, 0, nilReg.Len())
	assert.Nil(t, nilReg.Imports())
}

func TestCollect(t *testing.T) {
	reg := NewRegistry()
	register := func(imp ast.Import) {
		require.NoError(t, reg.Register(imp.Local, imp))
	}
	register(ast.Import{From: "vuetify/blueprints", Imported: "md3", Local: "md3"})
	register(ast.Import{From: "/app/vuetify", Imported: "theme", Local: "theme", Relative: true})
	register(ast.Import{From: "vuetify/blueprints", Imported: "md2", Local: "legacy"})
	register(ast.Import{From: "@date-io/luxon", Imported: ast.ImportDefault, Local: "Luxon"})
	register(ast.Import{From: "vuetify/labs/components", Imported: ast.ImportNamespace, Local: "labs"})
	register(ast.Import{From: "/app/.nuxt/vuetify/icons", Imported: "aliases", Local: "aliases", Relative: true})

	got := RenderBlock(Collect(reg, "/app/.nuxt/vuetify"))
	want := "import { md3, md2 as legacy } from 'vuetify/blueprints'\n" +
		"import { theme } from '../../vuetify'\n" +
		"import { default as Luxon } from '@date-io/luxon'\n" +
		"import * as labs from 'vuetify/labs/components'\n" +
		"import { aliases } from './icons'"
	assert.Equal(t, want, got)
}

func TestSpecifier_String(t *testing.T) {
	tests := []struct {
		name string
		spec Specifier
		want string
	}{
		{"same name", Specifier{Imported: "md3", Local: "md3"}, "md3"},
		{"renamed", Specifier{Imported: "md2", Local: "legacy"}, "md2 as legacy"},
		{"default", Specifier{Imported: ast.ImportDefault, Local: "Luxon"}, "default as Luxon"},
		{"string name", Specifier{Imported: "a-b", Local: "c"}, "'a-b' as c"},
		{"string name with quote", Specifier{Imported: "it's", Local: "its"}, `'it\'s' as its`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.spec.String())
		})
	}
}

func TestCollect_NamedAndNamespaceFromOneOrigin(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("ns", ast.Import{From: "lib", Imported: ast.ImportNamespace, Local: "ns"}))
	require.NoError(t, reg.Register("x", ast.Import{From: "lib", Imported: "x", Local: "x"}))

	stmts := Collect(reg, "/out")
	require.Len(t, stmts, 2)
	assert.Equal(t, "import { x } from 'lib'", stmts[0].String())
	assert.Equal(t, "import * as ns from 'lib'", stmts[1].String())
}

func TestCollect_Empty(t *testing.T) {
	assert.Empty(t, Collect(NewRegistry(), "/out"))
	assert.Equal(t, "", RenderBlock(nil))
}

func TestEmitPath(t *testing.T) {
	tests := []struct {
		dir, target, want string
	}{
		{"/app/.nuxt/vuetify", "/app/vuetify", "../../vuetify"},
		{"/app/.nuxt/vuetify", "/app/.nuxt/vuetify/sub/x", "./sub/x"},
		{"/app/.nuxt/vuetify", "/app/layers/base/theme", "../../layers/base/theme"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, EmitPath(tt.dir, tt.target))
		})
	}
}

func TestCollect_Deterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("collecting twice renders identical blocks", prop.ForAll(
		func(origins []int) bool {
			reg := NewRegistry()
			for i, o := range origins {
				local := fmt.Sprintf("v%d", i)
				imp := ast.Import{From: fmt.Sprintf("/src/m%d", o%5), Imported: local, Local: local, Relative: o%2 == 0}
				if err := reg.Register(local, imp); err != nil {
					return false
				}
			}
			first := RenderBlock(Collect(reg, "/src/.nuxt/vuetify"))
			second := RenderBlock(Collect(reg, "/src/.nuxt/vuetify"))
			return first == second
		},
		gen.SliceOf(gen.IntRange(0, 20)),
	))

	properties.TestingRun(t)
}

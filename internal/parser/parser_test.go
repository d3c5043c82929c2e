package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vuetifyconf-cli/internal/ast"
)

const externalTS = `import { md3 } from 'vuetify/blueprints'
import * as labs from 'vuetify/labs/components'
import Luxon, { other as alias } from '@date-io/luxon'
import type { VuetifyOptions } from 'vuetify'
import { theme } from './vuetify'

export default defineVuetifyConfiguration({
  config: true,
  blueprint: md3,
  theme,
  components: labs.VDataTable,
  date: { adapter: Luxon, extra: alias },
  ssr: { clientWidth: 1024 },
  icons: ['mdi', "fa"],
  locale: () => 'en' as string,
})
`

func TestParse_ExternalTypeScript(t *testing.T) {
	mod, err := Parse([]byte(externalTS), "/app/vuetify.config.ts", ast.DialectTS)
	require.NoError(t, err)
	require.True(t, mod.DefaultObject)

	var locals []string
	for _, spec := range mod.Imports {
		locals = append(locals, spec.Local)
	}
	assert.Equal(t, []string{"md3", "labs", "Luxon", "alias", "theme"}, locals)
	assert.Equal(t, ast.ImportNamespace, mod.Imports[1].Imported)
	assert.Equal(t, ast.ImportDefault, mod.Imports[2].Imported)
	assert.Equal(t, "other", mod.Imports[3].Imported)
	assert.Equal(t, "./vuetify", mod.Imports[4].From)

	assert.Equal(t,
		[]string{"config", "blueprint", "theme", "components", "date", "ssr", "icons", "locale"},
		mod.Default.Keys())

	v, _ := mod.Default.Get("config")
	assert.Equal(t, true, v.(*ast.Scalar).Value)

	v, _ = mod.Default.Get("blueprint")
	assert.Equal(t, "md3", v.(*ast.ImportRef).Ref.Local)

	v, _ = mod.Default.Get("theme")
	assert.Equal(t, "theme", v.(*ast.ImportRef).Ref.Local)

	v, _ = mod.Default.Get("components")
	member := v.(*ast.MemberRef)
	assert.Equal(t, "labs", member.Object.Local)
	assert.Equal(t, "VDataTable", member.Property)

	v, _ = mod.Default.Path("date", "adapter")
	assert.Equal(t, "Luxon", v.(*ast.ImportRef).Ref.Local)

	v, _ = mod.Default.Path("ssr", "clientWidth")
	assert.Equal(t, float64(1024), v.(*ast.Scalar).Value)

	v, _ = mod.Default.Get("icons")
	icons := v.(*ast.Array)
	require.Len(t, icons.Elements, 2)
	assert.Equal(t, "fa", icons.Elements[1].(*ast.Scalar).Value)

	v, _ = mod.Default.Get("locale")
	assert.Equal(t, "() => 'en'", v.(*ast.Opaque).Source)
}

func TestParse_InlinesLocalConstants(t *testing.T) {
	src := `const pinCode = (v) => v.length === 4 || 'invalid'
const size = 4
export default { config: true, aliases: { pinCode, size } }
`
	mod, err := Parse([]byte(src), "vuetify.rules.js", ast.DialectJS)
	require.NoError(t, err)

	v, ok := mod.Default.Path("aliases", "pinCode")
	require.True(t, ok)
	opaque, ok := v.(*ast.Opaque)
	require.True(t, ok, "expected opaque, got %s", v.Kind())
	assert.Equal(t, "(v) => v.length === 4 || 'invalid'", opaque.Source)

	v, _ = mod.Default.Path("aliases", "size")
	assert.Equal(t, float64(4), v.(*ast.Scalar).Value)
}

func TestParse_OpaqueFileLocals(t *testing.T) {
	src := `import { format } from './format'
const msg = 'required'
const { min, limits: [max] } = bounds
function helper(v: string) { return v.length > min }
class Checker {}
export function exported() {}
export default {
  config: true,
  rules: {
    required: (v: string) => helper(v) || msg,
    pretty: (v) => format(v),
    sized: (v) => v > min && v < max,
    checked: () => new Checker() && exported(),
  },
}
`
	mod, err := Parse([]byte(src), "vuetify.config.ts", ast.DialectTS)
	require.NoError(t, err)

	tests := []struct {
		key  string
		want []string
	}{
		{"required", []string{"helper", "msg"}},
		{"pretty", nil},
		{"sized", []string{"min", "max"}},
		{"checked", []string{"Checker", "exported"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v, ok := mod.Default.Path("rules", tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, v.(*ast.Opaque).Locals)
		})
	}
}

func TestParse_DefaultExportShapes(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		dialect    ast.Dialect
		wantObject bool
		wantKeys   []string
	}{
		{
			name:       "plain object",
			src:        `export default { a: 1 }`,
			dialect:    ast.DialectJS,
			wantObject: true,
			wantKeys:   []string{"a"},
		},
		{
			name:       "satisfies wrapper",
			src:        `export default { a: 1, b: 'x' } satisfies Options`,
			dialect:    ast.DialectTS,
			wantObject: true,
			wantKeys:   []string{"a", "b"},
		},
		{
			name:       "exported constant",
			src:        "export const options = { theme: { dark: true } }\nexport default options\n",
			dialect:    ast.DialectJS,
			wantObject: true,
			wantKeys:   []string{"theme"},
		},
		{
			name:       "not an object",
			src:        `export default 42`,
			dialect:    ast.DialectJS,
			wantObject: false,
		},
		{
			name:       "no default export",
			src:        `export const a = 1`,
			dialect:    ast.DialectJS,
			wantObject: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod, err := Parse([]byte(tt.src), "test", tt.dialect)
			require.NoError(t, err)
			assert.Equal(t, tt.wantObject, mod.DefaultObject)
			require.NotNil(t, mod.Default)
			assert.Equal(t, tt.wantKeys, mod.Default.Keys())
		})
	}
}

func TestParse_Literals(t *testing.T) {
	src := "export default { neg: -1, hex: 0x10, sep: 1_000, tpl: `hi`, nil: null, undef: undefined, 'quoted-key': 'a\\'b' }"
	mod, err := Parse([]byte(src), "test.js", ast.DialectJS)
	require.NoError(t, err)

	want := map[string]any{
		"neg":        float64(-1),
		"hex":        float64(16),
		"sep":        float64(1000),
		"tpl":        "hi",
		"nil":        nil,
		"quoted-key": "a'b",
	}
	for key, value := range want {
		v, ok := mod.Default.Get(key)
		require.True(t, ok, key)
		assert.Equal(t, value, v.(*ast.Scalar).Value, key)
	}

	v, _ := mod.Default.Get("undef")
	assert.True(t, v.(*ast.Scalar).Undefined)
}

func TestParse_UnsupportedEntries(t *testing.T) {
	src := `import base from './base'
export default { ...base, [key]: 1, ok: true }
`
	mod, err := Parse([]byte(src), "test.js", ast.DialectJS)
	require.NoError(t, err)

	var unsupported int
	for _, e := range mod.Default.Entries {
		if e.Value.Kind() == ast.KindUnsupported {
			unsupported++
		}
	}
	assert.Equal(t, 2, unsupported)
	assert.True(t, mod.Default.Has("ok"))
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse([]byte("export default { a: }"), "broken.js", ast.DialectJS)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedSource))

	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, "broken.js", syntaxErr.Pos.File)
}

func TestParse_SelfReferencingConstant(t *testing.T) {
	src := "const a = { b: a }\nexport default { a }\n"
	_, err := Parse([]byte(src), "loop.js", ast.DialectJS)
	assert.Error(t, err)
}

func TestStripTypes(t *testing.T) {
	src := `export default {
  a: (value: string, opt?: number): boolean => value!.length > 0,
  b: make<Theme>(cfg as Theme),
}
`
	mod, err := Parse([]byte(src), "types.ts", ast.DialectTS)
	require.NoError(t, err)

	v, _ := mod.Default.Get("a")
	assert.Equal(t, "(value, opt) => value.length > 0", v.(*ast.Opaque).Source)

	v, _ = mod.Default.Get("b")
	opaque := v.(*ast.Opaque)
	assert.Equal(t, "make(cfg)", opaque.Source)

	var refs []string
	for _, r := range opaque.Refs {
		refs = append(refs, r.Local)
	}
	assert.Equal(t, []string{"make", "cfg"}, refs)
}

func TestStripTypes_ThisParameter(t *testing.T) {
	src := `export default {
  a: function (this: Window, v: string) { return this.name + v },
  b: function (this: any) { return this },
  c: function (this: void, ...rest: number[]) { return rest },
}
`
	mod, err := Parse([]byte(src), "this.ts", ast.DialectTS)
	require.NoError(t, err)

	tests := []struct {
		key  string
		want string
	}{
		{"a", "function (v) { return this.name + v }"},
		{"b", "function () { return this }"},
		{"c", "function (...rest) { return rest }"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v, ok := mod.Default.Get(tt.key)
			require.True(t, ok)
			got := v.(*ast.Opaque).Source
			assert.Equal(t, tt.want, got)

			_, err := Parse([]byte("export default { x: "+got+" }\n"), "out.mjs", ast.DialectJS)
			assert.NoError(t, err, "stripped source must be valid JavaScript")
		})
	}
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`'plain'`, "plain"},
		{`"double"`, "double"},
		{"`tick`", "tick"},
		{`'a\nb'`, "a\nb"},
		{`'it\'s'`, "it's"},
		{`'\x41'`, "A"},
		{`'é'`, "é"},
		{`'\u{1F600}'`, "\U0001F600"},
		{`'😀'`, "\U0001F600"},
		{`'back\\slash'`, `back\slash`},
		{`''`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, unquote(tt.in))
		})
	}
}

func TestCache(t *testing.T) {
	cache, err := NewCache(4)
	require.NoError(t, err)

	src := []byte(`export default { a: 1 }`)
	first, err := cache.Parse(src, "a.js", ast.DialectJS)
	require.NoError(t, err)
	second, err := cache.Parse(src, "a.js", ast.DialectJS)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.Len())

	changed, err := cache.Parse([]byte(`export default { a: 2 }`), "a.js", ast.DialectJS)
	require.NoError(t, err)
	assert.NotSame(t, first, changed)
	assert.Equal(t, 2, cache.Len())

	var nilCache *Cache
	mod, err := nilCache.Parse(src, "a.js", ast.DialectJS)
	require.NoError(t, err)
	assert.True(t, mod.DefaultObject)
}

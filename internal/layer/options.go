package layer

import (
	"fmt"

	"dario.cat/mergo"

	"vuetifyconf-cli/internal/ast"
)

// moduleOptions merges the literal `vuetify.moduleOptions` of every layer.
// Layers closer to the root win; keys they leave unset fall through to the
// bases.
func moduleOptions(layers []Layer) (map[string]any, error) {
	out := make(map[string]any)
	for i := len(layers) - 1; i >= 0; i-- {
		mod := layers[i].nuxt.module()
		if mod == nil {
			continue
		}
		v, ok := mod.Get("moduleOptions")
		if !ok {
			continue
		}
		obj, ok := v.(*ast.Object)
		if !ok {
			continue
		}
		literal, _ := ast.ToInterface(obj)
		if err := mergo.Merge(&out, literal.(map[string]any)); err != nil {
			return nil, fmt.Errorf("merging module options of %s: %w", layers[i].Dir, err)
		}
	}
	return out, nil
}

package layer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Layers resolves the layer list of the project at root: the configured
// bases first, then the layers reached through `extends` (when discovery is
// on), and the root project last. Paths in bases are relative to root.
func (l *Loader) Layers(ctx context.Context, root string, bases []string) ([]Layer, error) {
	root = filepath.Clean(root)
	visited := map[string]bool{root: true}
	var out []Layer

	for _, base := range bases {
		dir := resolveDir(root, base)
		if visited[dir] {
			continue
		}
		visited[dir] = true
		nuxt, err := l.readNuxtConfig(dir)
		if err != nil {
			return nil, err
		}
		out = append(out, Layer{Dir: dir, nuxt: nuxt})
	}

	rootNuxt, err := l.readNuxtConfig(root)
	if err != nil {
		return nil, err
	}

	if l.opts.Discover {
		// extends lists higher priority layers first, so a depth-first walk
		// reversed yields base-most first
		var discovered []Layer
		var walk func(dir string, nuxt *nuxtConfig) error
		walk = func(dir string, nuxt *nuxtConfig) error {
			for _, entry := range nuxt.extends() {
				if err := ctx.Err(); err != nil {
					return err
				}
				if !isLocalLayer(entry) {
					l.logger.Warn("skipping non-local layer", "extends", entry, "layer", dir)
					continue
				}
				child := resolveDir(dir, entry)
				if visited[child] {
					continue
				}
				visited[child] = true
				childNuxt, err := l.readNuxtConfig(child)
				if err != nil {
					return err
				}
				discovered = append(discovered, Layer{Dir: child, nuxt: childNuxt})
				if err := walk(child, childNuxt); err != nil {
					return err
				}
			}
			return nil
		}
		if err := walk(root, rootNuxt); err != nil {
			return nil, fmt.Errorf("discovering layers: %w", err)
		}
		for i := len(discovered) - 1; i >= 0; i-- {
			out = append(out, discovered[i])
		}
	}

	out = append(out, Layer{Dir: root, Root: true, nuxt: rootNuxt})
	l.logger.Debug("layers resolved", "count", len(out), "root", root)
	return out, nil
}

func resolveDir(from, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(from, path)
}

// isLocalLayer reports whether an extends entry names a directory on disk
// rather than a package or a remote source such as `github:org/repo`.
func isLocalLayer(entry string) bool {
	return strings.HasPrefix(entry, ".") || filepath.IsAbs(entry)
}

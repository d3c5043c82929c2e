package interfaces

import (
	"context"

	"vuetifyconf-cli/internal/layer"
)

// ConfigLoader resolves the layers of a project and folds their
// configuration fragments.
type ConfigLoader interface {
	// Layers lists the layers of the project at root, base-most first
	Layers(ctx context.Context, root string, bases []string) ([]layer.Layer, error)

	// Load folds the configuration of the given layers
	Load(ctx context.Context, layers []layer.Layer) (*layer.Load, error)
}

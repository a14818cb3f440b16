package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/quill/internal/core/ports"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
}

// NewApp resolves the dependency graph and returns the configured Components.
// The nodes it needs are registered by the packages this one imports.
func NewApp(ctx context.Context) (*Components, error) {
	components, _, err := graft.ExecuteFor[*Components](ctx)
	if err != nil {
		return nil, err
	}
	return components, nil
}

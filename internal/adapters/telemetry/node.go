package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/quill/internal/adapters/config" //nolint:depguard // Wired in adapter layer
	"go.trai.ch/quill/internal/adapters/logger" //nolint:depguard // Wired in adapter layer
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
)

// TracerNodeID is the unique identifier for the tracer Graft node.
const TracerNodeID graft.ID = "adapter.telemetry_tracer"

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.ResolvedNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.Tracer, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			if !cfg.Telemetry.Enabled {
				return NewNoOpTracer(), nil
			}
			return NewLoggingTracer(log, cfg.Telemetry.ServiceName), nil
		},
	})
}

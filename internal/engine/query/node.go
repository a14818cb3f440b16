package query

import (
	"context"
	"time"

	"github.com/grindlemire/graft"
	"go.trai.ch/quill/internal/adapters/config"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/quill/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/quill/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
	"go.trai.ch/quill/internal/engine/cache"
)

// NodeID is the unique identifier for the query client Graft node.
const NodeID graft.ID = "engine.query"

func init() {
	graft.Register(graft.Node[*Client]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			cache.NodeID,
			config.ResolvedNodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Client, error) {
			store, err := graft.Dep[*cache.Store](ctx)
			if err != nil {
				return nil, err
			}

			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			queryCfg := cfg.Query
			return New(store, log, tracer,
				WithRetryPolicy(PolicyFromConfig(queryCfg.Retry)),
				WithStaleTimes(func(key domain.QueryKey) time.Duration {
					return queryCfg.StaleTimeFor(key.Resource)
				}),
			), nil
		},
	})
}

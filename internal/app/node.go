package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/quill/internal/adapters/config"     //nolint:depguard // Wired in app layer
	"go.trai.ch/quill/internal/adapters/httpclient" //nolint:depguard // Wired in app layer
	"go.trai.ch/quill/internal/adapters/logger"     //nolint:depguard // Wired in app layer
	"go.trai.ch/quill/internal/adapters/telemetry"  //nolint:depguard // Wired in app layer
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
	"go.trai.ch/quill/internal/engine/cache"
	"go.trai.ch/quill/internal/engine/query"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.ResolvedNodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			cache.NodeID,
			query.NodeID,
			httpclient.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
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

	store, err := graft.Dep[*cache.Store](ctx)
	if err != nil {
		return nil, err
	}

	client, err := graft.Dep[*query.Client](ctx)
	if err != nil {
		return nil, err
	}

	transport, err := graft.Dep[*httpclient.Client](ctx)
	if err != nil {
		return nil, err
	}

	return New(cfg, log, tracer, store, client, transport, transport), nil
}

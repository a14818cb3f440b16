package httpclient

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/quill/internal/adapters/config"  //nolint:depguard // Wired in adapter layer
	"go.trai.ch/quill/internal/adapters/logger"  //nolint:depguard // Wired in adapter layer
	"go.trai.ch/quill/internal/adapters/session" //nolint:depguard // Wired in adapter layer
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
)

// NodeID is the unique identifier for the HTTP client Graft node.
const NodeID graft.ID = "adapter.http_client"

func init() {
	graft.Register(graft.Node[*Client]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.ResolvedNodeID, logger.NodeID, session.NodeID},
		Run: func(ctx context.Context) (*Client, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			sessions, err := graft.Dep[ports.SessionStore](ctx)
			if err != nil {
				return nil, err
			}
			return New(cfg.API, log, WithSessionStore(sessions))
		},
	})
}

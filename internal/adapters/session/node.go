package session

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/quill/internal/adapters/config" //nolint:depguard // Wired in adapter layer
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
)

// NodeID is the unique identifier for the session store Graft node.
const NodeID graft.ID = "adapter.session_store"

func init() {
	graft.Register(graft.Node[ports.SessionStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.ResolvedNodeID},
		Run: func(ctx context.Context) (ports.SessionStore, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(cfg.Session.Path), nil
		},
	})
}

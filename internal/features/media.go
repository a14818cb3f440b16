package features

import (
	"context"
	"net/http"

	"go.trai.ch/quill/internal/adapters/httpclient"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/engine/mutation"
	"go.trai.ch/quill/internal/engine/query"
)

// Media manages the media library.
type Media struct {
	set *Set

	Delete *mutation.Runner[string, struct{}]
}

func newMedia(s *Set) *Media {
	m := &Media{set: s}

	m.Delete = newRunner(s, "deleteMedia", func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, httpclient.Exec(ctx, s.api, http.MethodDelete, apiPath("media", id), nil)
	}, MediaKey)

	return m
}

// List returns every uploaded file.
func (m *Media) List() *query.Query[[]domain.MediaItem] {
	return query.Bind(m.set.client, MediaKey, func(ctx context.Context) ([]domain.MediaItem, error) {
		return httpclient.Get[[]domain.MediaItem](ctx, m.set.api, "media", nil)
	})
}

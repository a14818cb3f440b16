package features

import (
	"context"

	"go.trai.ch/quill/internal/adapters/httpclient"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/engine/query"
)

// Templates lists the starting points offered for new posts.
type Templates struct {
	set *Set
}

func newTemplates(s *Set) *Templates {
	return &Templates{set: s}
}

// List returns every post template.
func (t *Templates) List() *query.Query[[]domain.PostTemplate] {
	return query.Bind(t.set.client, TemplatesKey, func(ctx context.Context) ([]domain.PostTemplate, error) {
		return httpclient.Get[[]domain.PostTemplate](ctx, t.set.api, "post-templates", nil)
	})
}

// Get returns a single post template.
func (t *Templates) Get(id string) *query.Query[domain.PostTemplate] {
	return query.Bind(t.set.client, TemplateKey(id), func(ctx context.Context) (domain.PostTemplate, error) {
		return httpclient.Get[domain.PostTemplate](ctx, t.set.api, apiPath("post-templates", id), nil)
	})
}

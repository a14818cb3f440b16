package features

import (
	"context"
	"net/http"

	"go.trai.ch/quill/internal/adapters/httpclient"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/engine/mutation"
	"go.trai.ch/quill/internal/engine/query"
)

// Tags manages free-form post labels.
type Tags struct {
	set *Set

	Create *mutation.Runner[domain.TagInput, domain.Tag]
	Delete *mutation.Runner[string, struct{}]
}

func newTags(s *Set) *Tags {
	t := &Tags{set: s}

	t.Create = newRunner(s, "createTag", func(ctx context.Context, in domain.TagInput) (domain.Tag, error) {
		return httpclient.Send[domain.Tag](ctx, s.api, http.MethodPost, "tags", in)
	}, TagsKey, SearchKey)

	t.Delete = newRunner(s, "deleteTag", func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, httpclient.Exec(ctx, s.api, http.MethodDelete, apiPath("tags", id), nil)
	}, TagsKey, PostsKey, SearchKey)

	return t
}

// List returns every tag.
func (t *Tags) List() *query.Query[[]domain.Tag] {
	return query.Bind(t.set.client, TagsKey, func(ctx context.Context) ([]domain.Tag, error) {
		return httpclient.Get[[]domain.Tag](ctx, t.set.api, "tags", nil)
	})
}

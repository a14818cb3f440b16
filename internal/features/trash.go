package features

import (
	"context"
	"net/http"

	"go.trai.ch/quill/internal/adapters/httpclient"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/engine/mutation"
	"go.trai.ch/quill/internal/engine/query"
)

// Trash manages soft-deleted posts.
type Trash struct {
	set *Set

	Restore *mutation.Runner[string, domain.Post]
	// Purge deletes a trashed post permanently.
	Purge *mutation.Runner[string, struct{}]
	Empty *mutation.Runner[struct{}, struct{}]
}

func newTrash(s *Set) *Trash {
	t := &Trash{set: s}

	t.Restore = newRunner(s, "restorePost", func(ctx context.Context, id string) (domain.Post, error) {
		return httpclient.Send[domain.Post](ctx, s.api, http.MethodPost, apiPath("trash/posts", id, "restore"), nil)
	}, TrashKey, PostsKey, DashboardKey, SearchKey)

	t.Purge = newRunner(s, "purgePost", func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, httpclient.Exec(ctx, s.api, http.MethodDelete, apiPath("posts", id, "permanent"), nil)
	}, TrashKey, DashboardKey)

	t.Empty = newRunner(s, "emptyTrash", func(ctx context.Context, _ struct{}) (struct{}, error) {
		return struct{}{}, httpclient.Exec(ctx, s.api, http.MethodDelete, "trash/posts", nil)
	}, TrashKey, DashboardKey)

	return t
}

// List returns the trashed posts.
func (t *Trash) List() *query.Query[[]domain.TrashedPost] {
	return query.Bind(t.set.client, TrashKey, func(ctx context.Context) ([]domain.TrashedPost, error) {
		return httpclient.Get[[]domain.TrashedPost](ctx, t.set.api, "trash/posts", nil)
	})
}

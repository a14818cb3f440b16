package features

import (
	"context"
	"net/http"

	"go.trai.ch/quill/internal/adapters/httpclient"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/engine/mutation"
	"go.trai.ch/quill/internal/engine/query"
	"go.trai.ch/zerr"
)

// Publication publishes or unpublishes a post.
type Publication struct {
	ID      string
	Publish bool
}

// TemplateDraft starts a draft post from a post template. An empty Title
// falls back to the template's name.
type TemplateDraft struct {
	TemplateID string
	Title      string
}

// Posts manages articles.
type Posts struct {
	set *Set

	Create  *mutation.Runner[domain.PostInput, domain.Post]
	Replace *mutation.Runner[Change[domain.PostInput], domain.Post]
	Update  *mutation.Runner[Change[domain.PostPatch], domain.Post]
	Publish *mutation.Runner[Publication, domain.Post]
	// MoveToTrash soft-deletes a post. It can be restored from the trash.
	MoveToTrash *mutation.Runner[string, struct{}]
	// FromTemplate copies a template's content into a new draft.
	FromTemplate *mutation.Runner[TemplateDraft, domain.Post]
}

func newPosts(s *Set) *Posts {
	p := &Posts{set: s}

	p.Create = newRunner(s, "createPost", func(ctx context.Context, in domain.PostInput) (domain.Post, error) {
		return httpclient.Send[domain.Post](ctx, s.api, http.MethodPost, "posts", in)
	}, PostsKey, DashboardKey, SearchKey)

	p.Replace = newRunner(s, "replacePost", func(ctx context.Context, in Change[domain.PostInput]) (domain.Post, error) {
		return httpclient.Send[domain.Post](ctx, s.api, http.MethodPut, apiPath("posts", in.ID), in.Body)
	}, PostsKey, DashboardKey, SearchKey)

	p.Update = newRunner(s, "updatePost", func(ctx context.Context, in Change[domain.PostPatch]) (domain.Post, error) {
		return httpclient.Send[domain.Post](ctx, s.api, http.MethodPatch, apiPath("posts", in.ID), in.Body)
	}, PostsKey, DashboardKey, SearchKey)

	p.Publish = newRunner(s, "publishPost", func(ctx context.Context, in Publication) (domain.Post, error) {
		status := domain.PostDraft
		if in.Publish {
			status = domain.PostPublished
		}
		patch := domain.PostPatch{Status: &status}
		return httpclient.Send[domain.Post](ctx, s.api, http.MethodPatch, apiPath("posts", in.ID), patch)
	}, PostsKey, DashboardKey, AnalyticsKey, SearchKey)

	p.MoveToTrash = newRunner(s, "trashPost", func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, httpclient.Exec(ctx, s.api, http.MethodDelete, apiPath("posts", id, "trash"), nil)
	}, PostsKey, TrashKey, DashboardKey, AnalyticsKey, SearchKey)

	p.FromTemplate = newRunner(s, "createPostFromTemplate", func(ctx context.Context, in TemplateDraft) (domain.Post, error) {
		if in.TemplateID == "" {
			return domain.Post{}, zerr.With(zerr.Wrap(domain.ErrMissingArgument, "createPostFromTemplate"), "field", "template id")
		}
		tpl, err := s.Templates.Get(in.TemplateID).Get(ctx)
		if err != nil {
			return domain.Post{}, err
		}
		title := in.Title
		if title == "" {
			title = tpl.Name
		}
		draft := domain.PostInput{
			Title:      title,
			Content:    tpl.Content,
			Excerpt:    tpl.Description,
			Status:     domain.PostDraft,
			TemplateID: tpl.ID,
		}
		return httpclient.Send[domain.Post](ctx, s.api, http.MethodPost, "posts", draft)
	}, PostsKey, DashboardKey, SearchKey)

	return p
}

// List returns the posts matching filter.
func (p *Posts) List(filter domain.PostFilter) *query.Query[[]domain.Post] {
	return query.Bind(p.set.client, PostListKey(filter), func(ctx context.Context) ([]domain.Post, error) {
		return httpclient.Get[[]domain.Post](ctx, p.set.api, "posts", filter.Values())
	})
}

// Get returns a single post.
func (p *Posts) Get(id string) *query.Query[domain.Post] {
	return query.Bind(p.set.client, PostKey(id), func(ctx context.Context) (domain.Post, error) {
		return httpclient.Get[domain.Post](ctx, p.set.api, apiPath("posts", id), nil)
	})
}

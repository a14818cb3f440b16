package features

import (
	"context"
	"net/http"

	"go.trai.ch/quill/internal/adapters/httpclient"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/engine/mutation"
	"go.trai.ch/quill/internal/engine/query"
)

// Categories manages post categories.
type Categories struct {
	set *Set

	Create *mutation.Runner[domain.CategoryInput, domain.Category]
	Update *mutation.Runner[Change[domain.CategoryInput], domain.Category]
	Delete *mutation.Runner[string, struct{}]
}

func newCategories(s *Set) *Categories {
	c := &Categories{set: s}

	c.Create = newRunner(s, "createCategory", func(ctx context.Context, in domain.CategoryInput) (domain.Category, error) {
		return httpclient.Send[domain.Category](ctx, s.api, http.MethodPost, "categories", in)
	}, CategoriesKey, DashboardKey, SearchKey)

	c.Update = newRunner(s, "updateCategory", func(ctx context.Context, in Change[domain.CategoryInput]) (domain.Category, error) {
		return httpclient.Send[domain.Category](ctx, s.api, http.MethodPut, apiPath("categories", in.ID), in.Body)
	}, CategoriesKey, SearchKey)

	// Posts reference categories by ID, so listings filtered by the deleted one change too.
	c.Delete = newRunner(s, "deleteCategory", func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, httpclient.Exec(ctx, s.api, http.MethodDelete, apiPath("categories", id), nil)
	}, CategoriesKey, PostsKey, DashboardKey, SearchKey)

	return c
}

// List returns every category.
func (c *Categories) List() *query.Query[[]domain.Category] {
	return query.Bind(c.set.client, CategoriesKey, func(ctx context.Context) ([]domain.Category, error) {
		return httpclient.Get[[]domain.Category](ctx, c.set.api, "categories", nil)
	})
}

// Get returns a single category.
func (c *Categories) Get(id string) *query.Query[domain.Category] {
	return query.Bind(c.set.client, CategoryKey(id), func(ctx context.Context) (domain.Category, error) {
		return httpclient.Get[domain.Category](ctx, c.set.api, apiPath("categories", id), nil)
	})
}

package features

import (
	"context"
	"net/http"

	"go.trai.ch/quill/internal/adapters/httpclient"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/engine/mutation"
	"go.trai.ch/quill/internal/engine/query"
)

// Sections manages the layout blocks of the public site.
type Sections struct {
	set *Set

	Create  *mutation.Runner[domain.SectionInput, domain.Section]
	Update  *mutation.Runner[Change[domain.SectionInput], domain.Section]
	Delete  *mutation.Runner[string, struct{}]
	Reorder *mutation.Runner[[]string, []domain.Section]
}

func newSections(s *Set) *Sections {
	sec := &Sections{set: s}

	sec.Create = newRunner(s, "createSection", func(ctx context.Context, in domain.SectionInput) (domain.Section, error) {
		return httpclient.Send[domain.Section](ctx, s.api, http.MethodPost, "sections", in)
	}, SectionsKey)

	sec.Update = newRunner(s, "updateSection", func(ctx context.Context, in Change[domain.SectionInput]) (domain.Section, error) {
		return httpclient.Send[domain.Section](ctx, s.api, http.MethodPut, apiPath("sections", in.ID), in.Body)
	}, SectionsKey)

	sec.Delete = newRunner(s, "deleteSection", func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, httpclient.Exec(ctx, s.api, http.MethodDelete, apiPath("sections", id), nil)
	}, SectionsKey)

	sec.Reorder = newRunner(s, "reorderSections", func(ctx context.Context, ids []string) ([]domain.Section, error) {
		return httpclient.Send[[]domain.Section](ctx, s.api, http.MethodPost, "sections/reorder", domain.SectionOrder{IDs: ids})
	}, SectionsKey)

	return sec
}

// List returns the sections in display order.
func (sec *Sections) List() *query.Query[[]domain.Section] {
	return query.Bind(sec.set.client, SectionsKey, func(ctx context.Context) ([]domain.Section, error) {
		return httpclient.Get[[]domain.Section](ctx, sec.set.api, "sections", nil)
	})
}

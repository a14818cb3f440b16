package features

import (
	"context"

	"go.trai.ch/quill/internal/adapters/httpclient"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/engine/query"
	"golang.org/x/sync/errgroup"
)

// Dashboard combines the site counters with the most viewed posts.
type Dashboard struct {
	set *Set
}

func newDashboard(s *Set) *Dashboard {
	return &Dashboard{set: s}
}

// Stats returns the site counters.
func (d *Dashboard) Stats() *query.Query[domain.DashboardStats] {
	return query.Bind(d.set.client, StatsKey(), func(ctx context.Context) (domain.DashboardStats, error) {
		return httpclient.Get[domain.DashboardStats](ctx, d.set.api, "dashboard/stats", nil)
	})
}

// PopularPosts returns the most viewed posts.
func (d *Dashboard) PopularPosts() *query.Query[[]domain.PopularPost] {
	return query.Bind(d.set.client, PopularPostsKey(), func(ctx context.Context) ([]domain.PopularPost, error) {
		return httpclient.Get[[]domain.PopularPost](ctx, d.set.api, "analytics/popular-posts", nil)
	})
}

// Load fetches the stats and the popular posts concurrently.
func (d *Dashboard) Load(ctx context.Context) (domain.Dashboard, error) {
	var out domain.Dashboard

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := d.Stats().Get(gctx)
		out.Stats = stats
		return err
	})
	g.Go(func() error {
		popular, err := d.PopularPosts().Get(gctx)
		out.Popular = popular
		return err
	})

	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}

package features_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/quill/internal/adapters/httpclient"
	"go.trai.ch/quill/internal/adapters/telemetry"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports/mocks"
	"go.trai.ch/quill/internal/engine/cache"
	"go.trai.ch/quill/internal/engine/query"
	"go.trai.ch/quill/internal/features"
	"go.uber.org/mock/gomock"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// fakeAPI is an in-memory stand-in for the CMS backend.
type fakeAPI struct {
	mu     sync.Mutex
	hits   map[string]int
	bodies map[string]json.RawMessage
	tags   []domain.Tag
	fail   map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		hits:   map[string]int{},
		bodies: map[string]json.RawMessage{},
		tags:   []domain.Tag{{ID: "t1", Name: "news"}},
		fail:   map[string]int{},
	}
}

func (f *fakeAPI) Hits(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[route]
}

func (f *fakeAPI) Body(route string) json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[route]
}

func (f *fakeAPI) FailWith(route string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[route] = code
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.EscapedPath()
	if r.URL.RawQuery != "" {
		route += "?" + r.URL.RawQuery
	}

	f.mu.Lock()
	f.hits[route]++
	var body json.RawMessage
	_ = json.NewDecoder(r.Body).Decode(&body)
	f.bodies[route] = body
	code, failing := f.fail[route]
	f.mu.Unlock()

	if failing {
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(domain.ErrorBody{Message: "rejected"})
		return
	}

	switch route {
	case "GET /api/tags":
		f.mu.Lock()
		tags := append([]domain.Tag(nil), f.tags...)
		f.mu.Unlock()
		writeJSON(w, tags)
	case "POST /api/tags":
		var in domain.TagInput
		_ = json.Unmarshal(body, &in)
		tag := domain.Tag{ID: "t2", Name: in.Name}
		f.mu.Lock()
		f.tags = append(f.tags, tag)
		f.mu.Unlock()
		writeJSON(w, tag)
	case "GET /api/posts?status=draft":
		writeJSON(w, []domain.Post{{ID: "p1", Title: "Draft", Status: domain.PostDraft}})
	case "GET /api/posts":
		writeJSON(w, []domain.Post{{ID: "p1", Title: "Draft"}, {ID: "p2", Title: "Live"}})
	case "DELETE /api/posts/p1/trash", "DELETE /api/posts/p1/permanent", "DELETE /api/trash/posts",
		"POST /api/auth/logout", "DELETE /api/media/m%2F1":
		w.WriteHeader(http.StatusNoContent)
	case "GET /api/trash/posts":
		writeJSON(w, []domain.TrashedPost{{Post: domain.Post{ID: "p1"}}})
	case "POST /api/trash/posts/p1/restore":
		writeJSON(w, domain.Post{ID: "p1", Status: domain.PostDraft})
	case "PATCH /api/posts/p1":
		writeJSON(w, domain.Post{ID: "p1", Status: domain.PostPublished})
	case "GET /api/post-templates/tpl1":
		writeJSON(w, domain.PostTemplate{ID: "tpl1", Name: "Release notes", Description: "Changelog", Content: "## Changes"})
	case "POST /api/posts":
		var in domain.PostInput
		_ = json.Unmarshal(body, &in)
		writeJSON(w, domain.Post{ID: "p3", Title: in.Title, Content: in.Content, Status: in.Status, TemplateID: in.TemplateID})
	case "GET /api/dashboard/stats":
		writeJSON(w, domain.DashboardStats{Posts: 2, Published: 1, Drafts: 1})
	case "GET /api/analytics/popular-posts":
		writeJSON(w, []domain.PopularPost{{ID: "p2", Title: "Live", Views: 99}})
	case "POST /api/sections/reorder":
		writeJSON(w, []domain.Section{{ID: "s2", Position: 0}, {ID: "s1", Position: 1}})
	case "POST /api/auth/login":
		writeJSON(w, domain.User{ID: "u1", Email: "ed@example.com"})
	case "GET /api/auth/me":
		writeJSON(w, domain.User{ID: "u1"})
	case "GET /api/search?q=go":
		writeJSON(w, []domain.SearchResult{{Type: "post", ID: "p2", Title: "Go tips"}})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type fakeSession struct {
	mu        sync.Mutex
	persisted int
	cleared   int
}

func (s *fakeSession) PersistSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persisted++
	return nil
}

func (s *fakeSession) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
	return nil
}

func setup(t *testing.T, opts ...features.Option) (*features.Set, *fakeAPI, *cache.Store) {
	t.Helper()

	api := newFakeAPI()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	base, err := url.Parse(srv.URL + "/api")
	require.NoError(t, err)
	transport, err := httpclient.New(domain.APIConfig{BaseURL: base, Timeout: 5 * time.Second}, log)
	require.NoError(t, err)

	tracer := telemetry.NewNoOpTracer()
	store := cache.New()
	client := query.New(store, log, tracer)
	t.Cleanup(func() {
		client.Close()
		store.Close()
	})

	return features.New(client, transport, log, tracer, opts...), api, store
}

func TestTags_CreateRefetchesObservedList(t *testing.T) {
	t.Parallel()

	set, api, store := setup(t)
	ctx := context.Background()
	list := set.Tags.List()

	first := store.Get(list.Key())
	assert.Equal(t, domain.StatusIdle, first.Status)

	_, stop := list.Observe(ctx, func(domain.Entry) {})
	t.Cleanup(stop)
	require.Eventually(t, func() bool { return store.Get(list.Key()).Status == domain.StatusSuccess }, waitFor, tick)

	tags, ok := query.Data[[]domain.Tag](store.Get(list.Key()))
	require.True(t, ok)
	assert.Equal(t, []domain.Tag{{ID: "t1", Name: "news"}}, tags)

	created, err := set.Tags.Create.Run(ctx, domain.TagInput{Name: "News"})
	require.NoError(t, err)
	assert.Equal(t, "t2", created.ID)

	require.Eventually(t, func() bool {
		data, _ := query.Data[[]domain.Tag](store.Get(list.Key()))
		return len(data) == 2
	}, waitFor, tick)
	assert.Never(t, func() bool { return api.Hits("GET /api/tags") > 2 }, 50*time.Millisecond, tick)
	assert.Equal(t, 2, api.Hits("GET /api/tags"))
}

func TestTags_FailedCreateKeepsList(t *testing.T) {
	t.Parallel()

	set, api, store := setup(t)
	ctx := context.Background()
	list := set.Tags.List()

	_, err := list.Get(ctx)
	require.NoError(t, err)
	before := store.Get(list.Key())

	api.FailWith("POST /api/tags", http.StatusUnprocessableEntity)
	_, err = set.Tags.Create.Run(ctx, domain.TagInput{Name: "dup"})
	require.ErrorIs(t, err, domain.ErrMutationFailed)

	var statusErr *domain.HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "rejected", statusErr.Body.Message)

	after := store.Get(list.Key())
	assert.Equal(t, before.Data, after.Data)
	assert.False(t, after.Invalidated)
	assert.Equal(t, 1, api.Hits("GET /api/tags"))
	assert.Equal(t, domain.MutationFailed, set.Tags.Create.State().Status)
}

func TestPosts_FilteredListAndTrash(t *testing.T) {
	t.Parallel()

	set, api, store := setup(t)
	ctx := context.Background()

	drafts := set.Posts.List(domain.PostFilter{Status: domain.PostDraft})
	assert.Equal(t, `["posts",{"status":"draft"}]`, drafts.Key().String())

	posts, err := drafts.Get(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, 1, api.Hits("GET /api/posts?status=draft"))

	all, err := set.Posts.List(domain.PostFilter{}).Get(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = set.Trash.List().Get(ctx)
	require.NoError(t, err)

	_, err = set.Posts.MoveToTrash.Run(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, api.Hits("DELETE /api/posts/p1/trash"))

	assert.True(t, store.Get(drafts.Key()).Invalidated)
	assert.True(t, store.Get(features.PostsKey).Invalidated)
	assert.True(t, store.Get(features.TrashKey).Invalidated)

	_, err = drafts.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, api.Hits("GET /api/posts?status=draft"), "invalidated entries refetch on next read")
}

func TestPosts_FromTemplate(t *testing.T) {
	t.Parallel()

	set, api, store := setup(t)
	ctx := context.Background()

	_, err := set.Posts.List(domain.PostFilter{}).Get(ctx)
	require.NoError(t, err)

	post, err := set.Posts.FromTemplate.Run(ctx, features.TemplateDraft{TemplateID: "tpl1"})
	require.NoError(t, err)
	assert.Equal(t, "p3", post.ID)
	assert.Equal(t, "Release notes", post.Title)
	assert.Equal(t, domain.PostDraft, post.Status)

	var sent domain.PostInput
	require.NoError(t, json.Unmarshal(api.Body("POST /api/posts"), &sent))
	assert.Equal(t, domain.PostInput{
		Title:      "Release notes",
		Content:    "## Changes",
		Excerpt:    "Changelog",
		Status:     domain.PostDraft,
		TemplateID: "tpl1",
	}, sent)
	assert.True(t, store.Get(features.PostsKey).Invalidated)

	_, err = set.Posts.FromTemplate.Run(ctx, features.TemplateDraft{TemplateID: "tpl1", Title: "v2.0"})
	require.NoError(t, err)
	assert.Equal(t, 1, api.Hits("GET /api/post-templates/tpl1"), "the template is read through the cache")
	assert.Equal(t, 2, api.Hits("POST /api/posts"))
}

func TestPosts_FromTemplateRequiresID(t *testing.T) {
	t.Parallel()

	set, api, _ := setup(t)

	_, err := set.Posts.FromTemplate.Run(context.Background(), features.TemplateDraft{})
	require.ErrorIs(t, err, domain.ErrMissingArgument)
	require.ErrorIs(t, err, domain.ErrMutationFailed)
	assert.Zero(t, api.Hits("POST /api/posts"))
}

func TestPosts_ChangesRefetchObservedSearch(t *testing.T) {
	t.Parallel()

	set, api, store := setup(t)
	ctx := context.Background()
	results := set.Search.Query("go")

	_, stop := results.Observe(ctx, func(domain.Entry) {})
	t.Cleanup(stop)
	require.Eventually(t, func() bool { return store.Get(results.Key()).Status == domain.StatusSuccess }, waitFor, tick)

	_, err := set.Posts.MoveToTrash.Run(ctx, "p1")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return api.Hits("GET /api/search?q=go") == 2 }, waitFor, tick)
}

func TestPosts_Publish(t *testing.T) {
	t.Parallel()

	set, api, _ := setup(t)

	post, err := set.Posts.Publish.Run(context.Background(), features.Publication{ID: "p1", Publish: true})
	require.NoError(t, err)
	assert.Equal(t, domain.PostPublished, post.Status)
	assert.JSONEq(t, `{"status":"published"}`, string(api.Body("PATCH /api/posts/p1")))
}

func TestTrash_RestorePurgeEmpty(t *testing.T) {
	t.Parallel()

	set, api, _ := setup(t)
	ctx := context.Background()

	restored, err := set.Trash.Restore.Run(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", restored.ID)

	_, err = set.Trash.Purge.Run(ctx, "p1")
	require.NoError(t, err)

	_, err = set.Trash.Empty.Run(ctx, struct{}{})
	require.NoError(t, err)

	assert.Equal(t, 1, api.Hits("POST /api/trash/posts/p1/restore"))
	assert.Equal(t, 1, api.Hits("DELETE /api/posts/p1/permanent"))
	assert.Equal(t, 1, api.Hits("DELETE /api/trash/posts"))
}

func TestSections_Reorder(t *testing.T) {
	t.Parallel()

	set, api, _ := setup(t)

	sections, err := set.Sections.Reorder.Run(context.Background(), []string{"s2", "s1"})
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.JSONEq(t, `{"ids":["s2","s1"]}`, string(api.Body("POST /api/sections/reorder")))
}

func TestMedia_DeleteEscapesID(t *testing.T) {
	t.Parallel()

	set, api, _ := setup(t)

	_, err := set.Media.Delete.Run(context.Background(), "m/1")
	require.NoError(t, err)
	assert.Equal(t, 1, api.Hits("DELETE /api/media/m%2F1"))
}

func TestDashboard_LoadCombinesStatsAndPopular(t *testing.T) {
	t.Parallel()

	set, api, _ := setup(t)

	dash, err := set.Dashboard.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, dash.Stats.Posts)
	assert.Equal(t, []domain.PopularPost{{ID: "p2", Title: "Live", Views: 99}}, dash.Popular)

	_, err = set.Dashboard.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, api.Hits("GET /api/dashboard/stats"), "fresh entries are served from cache")
}

func TestDashboard_LoadFails(t *testing.T) {
	t.Parallel()

	set, api, _ := setup(t)
	api.FailWith("GET /api/analytics/popular-posts", http.StatusForbidden)

	_, err := set.Dashboard.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrHTTPStatus)
}

func TestAuth_LoginAndLogout(t *testing.T) {
	t.Parallel()

	session := &fakeSession{}
	set, api, store := setup(t, features.WithSession(session))
	ctx := context.Background()

	user, err := set.Auth.Login.Run(ctx, domain.Credentials{Email: "ed@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, 1, session.persisted)

	me, err := set.Auth.Me().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", me.ID)

	_, err = set.Auth.Logout.Run(ctx, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, 1, session.cleared)
	assert.True(t, store.Get(features.MeKey()).Invalidated)
	assert.Equal(t, 1, api.Hits("POST /api/auth/logout"))
}

func TestSearch_TrimsTerm(t *testing.T) {
	t.Parallel()

	set, api, _ := setup(t)
	ctx := context.Background()

	results, err := set.Search.Query("  go ").Get(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, `["search","go"]`, set.Search.Query("go").Key().String())

	empty, err := set.Search.Query("   ").Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Equal(t, 1, api.Hits("GET /api/search?q=go"))
}

func TestSet_Watch(t *testing.T) {
	t.Parallel()

	set, _, _ := setup(t)

	assert.Contains(t, set.Watchable(), "tags")
	assert.IsNonDecreasing(t, set.Watchable())

	updates := make(chan domain.Entry, 8)
	_, stop, err := set.Watch(context.Background(), "tags", func(e domain.Entry) { updates <- e })
	require.NoError(t, err)
	t.Cleanup(stop)

	require.Eventually(t, func() bool {
		for {
			select {
			case e := <-updates:
				if e.Status == domain.StatusSuccess {
					return true
				}
			default:
				return false
			}
		}
	}, waitFor, tick)

	_, _, err = set.Watch(context.Background(), "widgets", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownResource)
}

package query_test

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/quill/internal/adapters/telemetry"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports/mocks"
	"go.trai.ch/quill/internal/engine/cache"
	"go.trai.ch/quill/internal/engine/query"
	"go.uber.org/mock/gomock"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newLogger(t *testing.T) *mocks.MockLogger {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	return log
}

func newClient(t *testing.T, opts ...query.Option) *query.Client {
	t.Helper()
	store := cache.New()
	client := query.New(store, newLogger(t), telemetry.NewNoOpTracer(), opts...)
	t.Cleanup(func() {
		client.Close()
		store.Close()
	})
	return client
}

func statusErr(code int) error {
	return &domain.HTTPStatusError{Method: http.MethodGet, Path: "tags", Code: code}
}

func TestClient_ConcurrentReadsShareOneFetch(t *testing.T) {
	t.Parallel()

	client := newClient(t)
	release := make(chan struct{})
	var calls atomic.Int32

	tags := query.Bind(client, domain.Key("tags"), func(context.Context) ([]domain.Tag, error) {
		calls.Add(1)
		<-release
		return []domain.Tag{{ID: "t1", Name: "Go"}}, nil
	})

	const readers = 10
	results := make([][]domain.Tag, readers)
	errs := make([]error, readers)
	var wg sync.WaitGroup
	for i := range readers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = tags.Get(context.Background())
		}()
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, waitFor, tick)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for i := range readers {
		require.NoError(t, errs[i])
		assert.Equal(t, []domain.Tag{{ID: "t1", Name: "Go"}}, results[i])
	}
}

func TestClient_TagsIdleToSuccess(t *testing.T) {
	t.Parallel()

	client := newClient(t)
	key := domain.Key("tags")
	want := []domain.Tag{{ID: "t1", Name: "Go", Slug: "go"}, {ID: "t2", Name: "Rust", Slug: "rust"}}

	assert.Equal(t, domain.StatusIdle, client.Store().Get(key).Status)

	var (
		mu       sync.Mutex
		statuses []domain.Status
	)
	unsubscribe := client.Store().Subscribe(key, func(e domain.Entry) {
		mu.Lock()
		defer mu.Unlock()
		statuses = append(statuses, e.Status)
	})
	defer unsubscribe()

	tags := query.Bind(client, key, func(context.Context) ([]domain.Tag, error) { return want, nil })
	got, err := tags.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	entry := client.Store().Get(key)
	assert.Equal(t, domain.StatusSuccess, entry.Status)
	assert.NoError(t, entry.Err)
	assert.False(t, entry.FetchedAt.IsZero())
	assert.NotZero(t, entry.Digest)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []domain.Status{domain.StatusLoading, domain.StatusSuccess}, statuses)
}

func TestClient_FreshEntryIsServedFromCache(t *testing.T) {
	t.Parallel()

	client := newClient(t)
	var calls atomic.Int32
	q := query.Bind(client, domain.Key("categories"), func(context.Context) (string, error) {
		calls.Add(1)
		return "cats", nil
	})

	for range 3 {
		got, err := q.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "cats", got)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_StaleWhileRevalidate(t *testing.T) {
	t.Parallel()

	clk := newClock()
	client := newClient(t, query.WithClock(clk.Now), query.WithStaleTime(time.Minute))
	key := domain.Key("posts")

	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return "v1", nil
		}
		<-release
		return "v2", nil
	}

	_, err := client.Fetch(context.Background(), key, fetch)
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)

	entry := client.Read(context.Background(), key, fetch)
	assert.Equal(t, domain.StatusSuccess, entry.Status)
	assert.Equal(t, "v1", entry.Data)

	require.Eventually(t, func() bool { return calls.Load() == 2 }, waitFor, tick)
	loading := client.Store().Get(key)
	assert.Equal(t, domain.StatusLoading, loading.Status)
	assert.Equal(t, "v1", loading.Data, "stale data stays visible while revalidating")

	close(release)
	require.Eventually(t, func() bool {
		e := client.Store().Get(key)
		return e.Status == domain.StatusSuccess && e.Data == "v2"
	}, waitFor, tick)
}

func TestClient_RetriesTransientFailureOnce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		errs      []error
		wantCalls int32
		wantErr   bool
	}{
		{name: "5xx then success", errs: []error{statusErr(http.StatusBadGateway)}, wantCalls: 2},
		{
			name:      "network then success",
			errs:      []error{&domain.NetworkError{Method: http.MethodGet, Path: "tags", Err: context.DeadlineExceeded}},
			wantCalls: 2,
		},
		{
			name:      "5xx twice",
			errs:      []error{statusErr(http.StatusServiceUnavailable), statusErr(http.StatusServiceUnavailable)},
			wantCalls: 2,
			wantErr:   true,
		},
		{name: "4xx is not retried", errs: []error{statusErr(http.StatusNotFound)}, wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newClient(t)
			var calls atomic.Int32
			fetch := func(context.Context) (any, error) {
				n := int(calls.Add(1))
				if n <= len(tt.errs) {
					return nil, tt.errs[n-1]
				}
				return "ok", nil
			}

			entry, err := client.Fetch(context.Background(), domain.Key("tags"), fetch)
			assert.Equal(t, tt.wantCalls, calls.Load())
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, domain.StatusError, entry.Status)
				assert.ErrorIs(t, entry.Err, domain.ErrHTTPStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.StatusSuccess, entry.Status)
			assert.Equal(t, "ok", entry.Data)
		})
	}
}

func TestClient_PolicyFromConfig(t *testing.T) {
	t.Parallel()

	policy := query.PolicyFromConfig(domain.RetryConfig{
		MaxRetries: 2,
		Statuses:   []int{http.StatusTooManyRequests},
		Backoff:    domain.BackoffConstant,
		Initial:    time.Millisecond,
	})
	client := newClient(t, query.WithRetryPolicy(policy))

	var calls atomic.Int32
	_, err := client.Fetch(context.Background(), domain.Key("users"), func(context.Context) (any, error) {
		calls.Add(1)
		return nil, statusErr(http.StatusTooManyRequests)
	})
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())

	calls.Store(0)
	_, err = client.Fetch(context.Background(), domain.Key("sections"), func(context.Context) (any, error) {
		calls.Add(1)
		return nil, statusErr(http.StatusInternalServerError)
	})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "500 is not in the configured statuses")
}

func TestClient_ErrorKeepsStaleData(t *testing.T) {
	t.Parallel()

	client := newClient(t)
	key := domain.Key("dashboard", domain.ParamString("stats"))
	var fail atomic.Bool
	fetch := func(context.Context) (any, error) {
		if fail.Load() {
			return nil, statusErr(http.StatusInternalServerError)
		}
		return "stats", nil
	}

	_, err := client.Fetch(context.Background(), key, fetch)
	require.NoError(t, err)

	fail.Store(true)
	entry, err := client.Refetch(context.Background(), key, fetch)
	require.Error(t, err)
	assert.Equal(t, domain.StatusError, entry.Status)
	assert.Equal(t, "stats", entry.Data)
	assert.ErrorIs(t, entry.Err, domain.ErrHTTPStatus)
}

func TestClient_OutdatedResponseIsDiscarded(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	discarded := make(chan struct{})
	var once sync.Once
	log.EXPECT().Debug(gomock.Any()).Do(func(msg string) {
		if strings.Contains(msg, "discarded") {
			once.Do(func() { close(discarded) })
		}
	}).AnyTimes()

	store := cache.New()
	client := query.New(store, log, telemetry.NewNoOpTracer())
	t.Cleanup(client.Close)

	key := domain.Key("posts", domain.ParamString("42"))
	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			<-release
			return "old", nil
		}
		return "new", nil
	}

	client.Read(context.Background(), key, fetch)
	require.Eventually(t, func() bool { return calls.Load() == 1 }, waitFor, tick)

	entry, err := client.Refetch(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, "new", entry.Data)

	close(release)
	select {
	case <-discarded:
	case <-time.After(waitFor):
		t.Fatal("outdated response was not discarded")
	}
	assert.Equal(t, "new", store.Get(key).Data)
	assert.Equal(t, domain.StatusSuccess, store.Get(key).Status)
}

func TestClient_InvalidateRefetchesObservedKeysOnly(t *testing.T) {
	t.Parallel()

	client := newClient(t)
	tagsKey := domain.Key("tags")
	tagKey := tagsKey.With(domain.ParamString("t1"))
	postsKey := domain.Key("posts")

	var listCalls, tagCalls, postCalls atomic.Int32
	listFetch := func(context.Context) (any, error) { return int(listCalls.Add(1)), nil }
	tagFetch := func(context.Context) (any, error) { return int(tagCalls.Add(1)), nil }
	postFetch := func(context.Context) (any, error) { return int(postCalls.Add(1)), nil }

	var seen atomic.Int32
	_, stop := client.Observe(context.Background(), tagsKey, listFetch, func(domain.Entry) { seen.Add(1) })
	defer stop()
	_, stopPosts := client.Observe(context.Background(), postsKey, postFetch, func(domain.Entry) {})
	defer stopPosts()

	require.Eventually(t, func() bool {
		return client.Store().Get(tagsKey).Status == domain.StatusSuccess &&
			client.Store().Get(postsKey).Status == domain.StatusSuccess
	}, waitFor, tick)

	_, err := client.Fetch(context.Background(), tagKey, tagFetch)
	require.NoError(t, err)

	client.Invalidate(tagsKey)

	require.Eventually(t, func() bool { return listCalls.Load() == 2 }, waitFor, tick)
	require.Eventually(t, func() bool { return client.Store().Get(tagsKey).Data == 2 }, waitFor, tick)
	assert.Never(t, func() bool { return listCalls.Load() > 2 }, 50*time.Millisecond, tick)

	assert.Equal(t, int32(1), tagCalls.Load(), "unobserved descendants are not refetched")
	assert.True(t, client.Store().Get(tagKey).Invalidated)
	assert.Equal(t, int32(1), postCalls.Load(), "keys outside the prefix are untouched")
	assert.False(t, client.Store().Get(postsKey).Invalidated)
	assert.Positive(t, seen.Load())
}

func TestClient_UnobservedKeyIsNotRefetched(t *testing.T) {
	t.Parallel()

	client := newClient(t)
	key := domain.Key("users")
	var calls atomic.Int32
	fetch := func(context.Context) (any, error) { return int(calls.Add(1)), nil }

	_, stop := client.Observe(context.Background(), key, fetch, func(domain.Entry) {})
	require.Eventually(t, func() bool { return client.Store().Get(key).Status == domain.StatusSuccess }, waitFor, tick)
	stop()
	stop()

	client.Invalidate(key)

	assert.Never(t, func() bool { return calls.Load() > 1 }, 50*time.Millisecond, tick)
	assert.True(t, client.Store().Get(key).Invalidated)
}

func TestClient_AbandonedFetchStillCommits(t *testing.T) {
	t.Parallel()

	client := newClient(t)
	key := domain.Key("search", domain.ParamString("go"))
	release := make(chan struct{})
	fetch := func(context.Context) (any, error) {
		<-release
		return "results", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := client.Fetch(ctx, key, fetch)
		done <- err
	}()

	require.Eventually(t, func() bool { return client.Store().Get(key).Status == domain.StatusLoading }, waitFor, tick)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	close(release)
	require.Eventually(t, func() bool { return client.Store().Get(key).Data == "results" }, waitFor, tick)
}

func TestClient_RejectsInvalidKey(t *testing.T) {
	t.Parallel()

	client := newClient(t)
	_, err := client.Fetch(context.Background(), domain.Key(""), func(context.Context) (any, error) {
		t.Fatal("fetch must not run for an invalid key")
		return nil, nil
	})
	assert.ErrorIs(t, err, domain.ErrInvalidKey)
}

func TestClient_ClosedStore(t *testing.T) {
	t.Parallel()

	store := cache.New()
	client := query.New(store, newLogger(t), telemetry.NewNoOpTracer())
	store.Close()

	_, err := client.Fetch(context.Background(), domain.Key("tags"), func(context.Context) (any, error) {
		return "x", nil
	})
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
}

func TestQuery_UnexpectedDataType(t *testing.T) {
	t.Parallel()

	client := newClient(t)
	key := domain.Key("templates")

	asString := query.Bind(client, key, func(context.Context) (string, error) { return "tmpl", nil })
	_, err := asString.Get(context.Background())
	require.NoError(t, err)

	asInt := query.Bind(client, key, func(context.Context) (int, error) { return 1, nil })
	_, err = asInt.Get(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnexpectedData)
}

func TestQuery_PeekAndData(t *testing.T) {
	t.Parallel()

	client := newClient(t)
	q := query.Bind(client, domain.Key("media"), func(context.Context) ([]string, error) {
		return []string{"a.png"}, nil
	})

	first := q.Peek(context.Background())
	assert.Equal(t, domain.StatusIdle, first.Status)

	require.Eventually(t, func() bool {
		data, ok := query.Data[[]string](client.Store().Get(q.Key()))
		return ok && len(data) == 1
	}, waitFor, tick)
}

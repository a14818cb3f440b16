package httpclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/quill/internal/adapters/httpclient"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newLogger(t *testing.T) *mocks.MockLogger {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return log
}

func apiConfig(t *testing.T, srv *httptest.Server) domain.APIConfig {
	t.Helper()
	base, err := url.Parse(srv.URL + "/api")
	require.NoError(t, err)
	return domain.APIConfig{BaseURL: base, Timeout: 5 * time.Second, UserAgent: "quill-test"}
}

func TestClient_GetDecodesRecords(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/tags", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "quill-test", r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get(httpclient.HeaderRequestID))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"t1","name":"Go","slug":"go","postCount":3}]`))
	}))
	t.Cleanup(srv.Close)

	client, err := httpclient.New(apiConfig(t, srv), newLogger(t))
	require.NoError(t, err)

	tags, err := httpclient.Get[[]domain.Tag](context.Background(), client, "tags", url.Values{"page": {"2"}})
	require.NoError(t, err)
	assert.Equal(t, []domain.Tag{{ID: "t1", Name: "Go", Slug: "go", PostCount: 3}}, tags)
}

func TestClient_SendEncodesBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/tags", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in domain.TagInput
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(domain.Tag{ID: "t9", Name: in.Name, Slug: "rust"})
	}))
	t.Cleanup(srv.Close)

	client, err := httpclient.New(apiConfig(t, srv), newLogger(t))
	require.NoError(t, err)

	tag, err := httpclient.Send[domain.Tag](context.Background(), client, http.MethodPost, "tags", domain.TagInput{Name: "Rust"})
	require.NoError(t, err)
	assert.Equal(t, domain.Tag{ID: "t9", Name: "Rust", Slug: "rust"}, tag)
}

func TestClient_StatusErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		body      string
		wantBody  *domain.ErrorBody
		transient bool
		wantMsg   string
	}{
		{
			name:     "structured body",
			status:   http.StatusUnprocessableEntity,
			body:     `{"message":"slug already taken","code":"conflict"}`,
			wantBody: &domain.ErrorBody{Message: "slug already taken", Code: "conflict"},
			wantMsg:  "POST tags: status 422: slug already taken",
		},
		{
			name:      "html body",
			status:    http.StatusBadGateway,
			body:      "<html>bad gateway</html>",
			transient: true,
			wantMsg:   "POST tags: status 502: Bad Gateway",
		},
		{
			name:    "empty body",
			status:  http.StatusNotFound,
			wantMsg: "POST tags: status 404: Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			client, err := httpclient.New(apiConfig(t, srv), newLogger(t))
			require.NoError(t, err)

			err = httpclient.Exec(context.Background(), client, http.MethodPost, "tags", domain.TagInput{Name: "x"})
			require.Error(t, err)
			require.ErrorIs(t, err, domain.ErrHTTPStatus)

			var statusErr *domain.HTTPStatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.status, statusErr.Code)
			assert.Equal(t, tt.wantBody, statusErr.Body)
			assert.Equal(t, tt.transient, statusErr.Transient())
			assert.EqualError(t, err, tt.wantMsg)
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	cfg := apiConfig(t, srv)
	srv.Close()

	client, err := httpclient.New(cfg, newLogger(t))
	require.NoError(t, err)

	_, err = client.Do(context.Background(), domain.NewRequest(http.MethodGet, "tags"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.NotErrorIs(t, err, domain.ErrHTTPStatus)
}

func TestClient_DecodeFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":`))
	}))
	t.Cleanup(srv.Close)

	client, err := httpclient.New(apiConfig(t, srv), newLogger(t))
	require.NoError(t, err)

	_, err = httpclient.Get[domain.Post](context.Background(), client, "posts/1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDecodeFailed)
}

func TestClient_EncodeFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	client, err := httpclient.New(apiConfig(t, srv), newLogger(t))
	require.NoError(t, err)

	err = httpclient.Exec(context.Background(), client, http.MethodPost, "tags", map[string]any{"bad": make(chan int)})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEncodeFailed)
}

func TestClient_RequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := httpclient.New(domain.APIConfig{}, newLogger(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidBaseURL)
}

func TestClient_SessionCookies(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "s3cret", Path: "/", HttpOnly: true})
			w.WriteHeader(http.StatusNoContent)
		case "/api/auth/me":
			cookie, err := r.Cookie("sid")
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(domain.User{ID: cookie.Value})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := apiConfig(t, srv)
	ctrl := gomock.NewController(t)
	sessions := mocks.NewMockSessionStore(ctrl)
	sessions.EXPECT().Load().Return(nil, nil)

	var saved *domain.Session
	sessions.EXPECT().Save(gomock.Any()).DoAndReturn(func(s *domain.Session) error {
		saved = s
		return nil
	})
	sessions.EXPECT().Clear().Return(nil)

	client, err := httpclient.New(cfg, newLogger(t), httpclient.WithSessionStore(sessions))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, httpclient.Exec(ctx, client, http.MethodPost, "auth/login", domain.Credentials{Email: "a@b.c", Password: "pw"}))

	me, err := httpclient.Get[domain.User](ctx, client, "auth/me", nil)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", me.ID)

	require.NoError(t, client.PersistSession())
	require.NotNil(t, saved)
	assert.Equal(t, cfg.BaseURL.String(), saved.BaseURL)
	require.Len(t, saved.Cookies, 1)
	assert.Equal(t, "sid", saved.Cookies[0].Name)
	assert.Equal(t, "s3cret", saved.Cookies[0].Value)

	require.NoError(t, client.ClearSession())
	assert.Empty(t, client.Cookies())

	_, err = httpclient.Get[domain.User](ctx, client, "auth/me", nil)
	var statusErr *domain.HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.Code)
}

func TestClient_RestoresSavedSession(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("sid")
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(domain.User{ID: cookie.Value})
	}))
	t.Cleanup(srv.Close)

	cfg := apiConfig(t, srv)
	ctrl := gomock.NewController(t)
	sessions := mocks.NewMockSessionStore(ctrl)
	sessions.EXPECT().Load().Return(&domain.Session{
		BaseURL: cfg.BaseURL.String(),
		Cookies: []domain.SessionCookie{{Name: "sid", Value: "restored"}},
	}, nil)

	client, err := httpclient.New(cfg, newLogger(t), httpclient.WithSessionStore(sessions))
	require.NoError(t, err)

	me, err := httpclient.Get[domain.User](context.Background(), client, "auth/me", nil)
	require.NoError(t, err)
	assert.Equal(t, "restored", me.ID)
}

func TestClient_IgnoresSessionForOtherBaseURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	ctrl := gomock.NewController(t)
	sessions := mocks.NewMockSessionStore(ctrl)
	sessions.EXPECT().Load().Return(&domain.Session{
		BaseURL: "http://elsewhere.example/api",
		Cookies: []domain.SessionCookie{{Name: "sid", Value: "other"}},
	}, nil)

	client, err := httpclient.New(apiConfig(t, srv), newLogger(t), httpclient.WithSessionStore(sessions))
	require.NoError(t, err)
	assert.Empty(t, client.Cookies())
}

// Package httpclient implements ports.Transport over net/http with JSON
// bodies and a cookie jar that carries the login session.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// HeaderRequestID carries the client generated request identifier.
	HeaderRequestID = "X-Request-ID"

	contentTypeJSON = "application/json"
	maxErrorBody    = 64 << 10
)

// Client implements ports.Transport against the configured API base URL.
type Client struct {
	base      *url.URL
	userAgent string
	http      *http.Client
	jar       *sessionJar
	sessions  ports.SessionStore
	logger    ports.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Jar is replaced by
// the session jar.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSessionStore restores cookies from store and enables PersistSession.
func WithSessionStore(store ports.SessionStore) Option {
	return func(c *Client) { c.sessions = store }
}

// New creates a Client for cfg.
func New(cfg domain.APIConfig, logger ports.Logger, opts ...Option) (*Client, error) {
	if cfg.BaseURL == nil || cfg.BaseURL.Host == "" {
		return nil, zerr.Wrap(domain.ErrInvalidBaseURL, "http client")
	}

	jar, err := newSessionJar()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create cookie jar")
	}

	c := &Client{
		base:      cfg.BaseURL,
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: cfg.Timeout},
		jar:       jar,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.Jar = c.jar

	if err := c.restoreSession(); err != nil {
		// A broken session file only costs a new login.
		c.logger.Warn(fmt.Sprintf("ignoring saved session: %v", err))
	}
	return c, nil
}

// BaseURL returns the API root every request path is resolved against.
func (c *Client) BaseURL() *url.URL {
	return c.base
}

// Do sends req and returns the 2xx response.
func (c *Client) Do(ctx context.Context, req domain.Request) (*domain.Response, error) {
	endpoint := c.base.JoinPath(req.Path)
	if len(req.Query) > 0 {
		endpoint.RawQuery = req.Query.Encode()
	}

	var body io.Reader = http.NoBody
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, zerr.With(errors.Join(domain.ErrEncodeFailed, err), "path", req.Path)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint.String(), body)
	if err != nil {
		return nil, &domain.NetworkError{Method: req.Method, Path: req.Path, Err: err}
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", contentTypeJSON)
	httpReq.Header.Set(HeaderRequestID, requestID)
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", contentTypeJSON)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &domain.NetworkError{Method: req.Method, Path: req.Path, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{Method: req.Method, Path: req.Path, Err: err}
	}

	c.logger.Debug(fmt.Sprintf("%s %s -> %d (%s)", req.Method, req.Path, resp.StatusCode, time.Since(start).Round(time.Millisecond)))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &domain.HTTPStatusError{
			Method: req.Method,
			Path:   req.Path,
			Code:   resp.StatusCode,
			Body:   parseErrorBody(data),
		}
	}

	return &domain.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		RequestID:  requestID,
	}, nil
}

// parseErrorBody returns the structured error payload, or nil if data is not one.
func parseErrorBody(data []byte) *domain.ErrorBody {
	if len(data) == 0 || len(data) > maxErrorBody {
		return nil
	}
	var body domain.ErrorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return nil
	}
	if body.Message == "" && body.Code == "" && len(body.Details) == 0 {
		return nil
	}
	return &body
}

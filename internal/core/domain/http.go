package domain

import (
	"net/http"
	"net/url"
)

// Request describes one call against the REST API. Path is relative to the
// configured base URL. Body, when non-nil, is serialized as JSON.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Response is a successful (2xx) reply from the REST API.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// NewRequest is a shorthand for a request without query or body.
func NewRequest(method, path string) Request {
	return Request{Method: method, Path: path}
}

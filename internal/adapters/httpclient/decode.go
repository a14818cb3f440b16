package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
	"go.trai.ch/zerr"
)

// Decode parses the JSON body of resp into T. An empty body yields the zero value.
func Decode[T any](resp *domain.Response) (T, error) {
	var out T
	if resp == nil || len(resp.Body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		decodeErr := zerr.With(errors.Join(domain.ErrDecodeFailed, err), "type", typeName[T]())
		return out, zerr.With(decodeErr, "request_id", resp.RequestID)
	}
	return out, nil
}

// Get fetches path and decodes the response into T.
func Get[T any](ctx context.Context, t ports.Transport, path string, query url.Values) (T, error) {
	resp, err := t.Do(ctx, domain.Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](resp)
}

// Send issues a request with a JSON body and decodes the response into T.
func Send[T any](ctx context.Context, t ports.Transport, method, path string, body any) (T, error) {
	resp, err := t.Do(ctx, domain.Request{Method: method, Path: path, Body: body})
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](resp)
}

// Exec issues a request whose response body is ignored.
func Exec(ctx context.Context, t ports.Transport, method, path string, body any) error {
	_, err := t.Do(ctx, domain.Request{Method: method, Path: path, Body: body})
	return err
}

func typeName[T any]() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

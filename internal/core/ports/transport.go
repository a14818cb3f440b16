package ports

import (
	"context"

	"go.trai.ch/quill/internal/core/domain"
)

// Transport sends requests to the REST API.
//
//go:generate mockgen -source=transport.go -destination=mocks/mock_transport.go -package=mocks
type Transport interface {
	// Do sends req and returns the 2xx response. Non-2xx responses fail with
	// *domain.HTTPStatusError and transport failures with *domain.NetworkError.
	Do(ctx context.Context, req domain.Request) (*domain.Response, error)
}

package domain_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestHTTPStatusError(t *testing.T) {
	err := &domain.HTTPStatusError{Method: http.MethodGet, Path: "posts", Code: http.StatusBadGateway}

	assert.ErrorIs(t, err, domain.ErrHTTPStatus)
	assert.NotErrorIs(t, err, domain.ErrNetwork)
	assert.True(t, err.Transient())
	assert.Equal(t, "GET posts: status 502: Bad Gateway", err.Error())

	withBody := &domain.HTTPStatusError{
		Method: http.MethodPost,
		Path:   "tags",
		Code:   http.StatusUnprocessableEntity,
		Body:   &domain.ErrorBody{Message: "name is required"},
	}
	assert.False(t, withBody.Transient())
	assert.Equal(t, "POST tags: status 422: name is required", withBody.Error())
}

func TestMutationError_UnwrapsCause(t *testing.T) {
	cause := &domain.NetworkError{Method: http.MethodPost, Path: "tags", Err: errors.New("connection refused")}
	err := zerr.Wrap(&domain.MutationError{Mutation: "createTag", Err: cause}, "create tag")

	assert.ErrorIs(t, err, domain.ErrMutationFailed)
	assert.ErrorIs(t, err, domain.ErrNetwork)

	var netErr *domain.NetworkError
	assert.ErrorAs(t, err, &netErr)
	assert.Equal(t, "tags", netErr.Path)
}

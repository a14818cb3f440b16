package features

import (
	"context"

	"go.trai.ch/quill/internal/adapters/httpclient"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/engine/query"
)

// Users lists the accounts of the admin panel.
type Users struct {
	set *Set
}

func newUsers(s *Set) *Users {
	return &Users{set: s}
}

// List returns every user.
func (u *Users) List() *query.Query[[]domain.User] {
	return query.Bind(u.set.client, UsersKey, func(ctx context.Context) ([]domain.User, error) {
		return httpclient.Get[[]domain.User](ctx, u.set.api, "users", nil)
	})
}

// Get returns a single user.
func (u *Users) Get(id string) *query.Query[domain.User] {
	return query.Bind(u.set.client, UserKey(id), func(ctx context.Context) (domain.User, error) {
		return httpclient.Get[domain.User](ctx, u.set.api, apiPath("users", id), nil)
	})
}

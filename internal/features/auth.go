package features

import (
	"context"
	"errors"
	"net/http"

	"go.trai.ch/quill/internal/adapters/httpclient"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/engine/mutation"
	"go.trai.ch/quill/internal/engine/query"
	"go.trai.ch/zerr"
)

// Auth signs the client in and out and reports the current user.
type Auth struct {
	set *Set

	Login  *mutation.Runner[domain.Credentials, domain.User]
	Logout *mutation.Runner[struct{}, struct{}]
}

func newAuth(s *Set) *Auth {
	a := &Auth{set: s}

	a.Login = newRunner(s, "login", func(ctx context.Context, in domain.Credentials) (domain.User, error) {
		user, err := httpclient.Send[domain.User](ctx, s.api, http.MethodPost, "auth/login", in)
		if err != nil {
			return user, err
		}
		if err := s.session.PersistSession(); err != nil {
			return user, zerr.Wrap(err, "login succeeded but the session was not saved")
		}
		return user, nil
	}, AuthKey)

	// The local session is dropped even if the server call fails so a dead
	// session never sticks.
	a.Logout = newRunner(s, "logout", func(ctx context.Context, _ struct{}) (struct{}, error) {
		callErr := httpclient.Exec(ctx, s.api, http.MethodPost, "auth/logout", nil)
		clearErr := s.session.ClearSession()
		return struct{}{}, errors.Join(callErr, clearErr)
	}, AuthKey)

	return a
}

// Me returns the signed-in user. It fails with a 401 status error when
// signed out.
func (a *Auth) Me() *query.Query[domain.User] {
	return query.Bind(a.set.client, MeKey(), func(ctx context.Context) (domain.User, error) {
		return httpclient.Get[domain.User](ctx, a.set.api, "auth/me", nil)
	})
}

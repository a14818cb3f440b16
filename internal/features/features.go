// Package features declares the query keys, fetchers and mutations of each
// admin panel resource on top of the query and mutation engines.
package features

import (
	"context"
	"net/url"
	"strings"

	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
	"go.trai.ch/quill/internal/engine/mutation"
	"go.trai.ch/quill/internal/engine/query"
)

// SessionKeeper persists or discards the transport's login session.
type SessionKeeper interface {
	PersistSession() error
	ClearSession() error
}

// Change addresses an update to the record with the given ID.
type Change[T any] struct {
	ID   string
	Body T
}

// Set holds every feature bound to one query client and transport.
type Set struct {
	Posts      *Posts
	Categories *Categories
	Tags       *Tags
	Sections   *Sections
	Users      *Users
	Templates  *Templates
	Trash      *Trash
	Search     *Search
	Dashboard  *Dashboard
	Media      *Media
	Auth       *Auth

	client  *query.Client
	api     ports.Transport
	session SessionKeeper
	logger  ports.Logger
	tracer  ports.Tracer
}

// Option configures a Set.
type Option func(*Set)

// WithSession lets login and logout persist and clear the session.
func WithSession(keeper SessionKeeper) Option {
	return func(s *Set) { s.session = keeper }
}

// New binds all features to client and api.
func New(client *query.Client, api ports.Transport, logger ports.Logger, tracer ports.Tracer, opts ...Option) *Set {
	s := &Set{
		client:  client,
		api:     api,
		session: noSession{},
		logger:  logger,
		tracer:  tracer,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Posts = newPosts(s)
	s.Categories = newCategories(s)
	s.Tags = newTags(s)
	s.Sections = newSections(s)
	s.Users = newUsers(s)
	s.Templates = newTemplates(s)
	s.Trash = newTrash(s)
	s.Search = newSearch(s)
	s.Dashboard = newDashboard(s)
	s.Media = newMedia(s)
	s.Auth = newAuth(s)
	return s
}

// Client returns the query client the features read through.
func (s *Set) Client() *query.Client {
	return s.client
}

type noSession struct{}

func (noSession) PersistSession() error { return nil }
func (noSession) ClearSession() error   { return nil }

// newRunner builds a mutation that invalidates the given prefixes on success.
func newRunner[In, Out any](
	s *Set,
	name string,
	do func(context.Context, In) (Out, error),
	invalidates ...domain.QueryKey,
) *mutation.Runner[In, Out] {
	return mutation.New(mutation.Config[In, Out]{
		Name: name,
		Do:   do,
		Invalidates: func(In, Out) []domain.QueryKey {
			return invalidates
		},
	}, s.client, s.logger, s.tracer)
}

// apiPath joins path segments, escaping every segment after the first.
func apiPath(resource string, segments ...string) string {
	if len(segments) == 0 {
		return resource
	}
	escaped := make([]string, 0, len(segments)+1)
	escaped = append(escaped, resource)
	for _, seg := range segments {
		escaped = append(escaped, url.PathEscape(seg))
	}
	return strings.Join(escaped, "/")
}

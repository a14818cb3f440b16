package features

import (
	"context"
	"slices"

	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/engine/cache"
	"go.trai.ch/zerr"
)

type observable interface {
	Observe(ctx context.Context, cb cache.Callback) (domain.Entry, func())
}

func (s *Set) watchable() map[string]func() observable {
	return map[string]func() observable{
		"posts":      func() observable { return s.Posts.List(domain.PostFilter{}) },
		"categories": func() observable { return s.Categories.List() },
		"tags":       func() observable { return s.Tags.List() },
		"sections":   func() observable { return s.Sections.List() },
		"users":      func() observable { return s.Users.List() },
		"templates":  func() observable { return s.Templates.List() },
		"trash":      func() observable { return s.Trash.List() },
		"media":      func() observable { return s.Media.List() },
		"dashboard":  func() observable { return s.Dashboard.Stats() },
		"me":         func() observable { return s.Auth.Me() },
	}
}

// Watchable lists the resource names accepted by Watch.
func (s *Set) Watchable() []string {
	names := make([]string, 0, len(s.watchable()))
	for name := range s.watchable() {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Watch observes the listing of resource. cb runs on every change of the
// entry, and the entry is refetched whenever it is invalidated until the
// returned function is called.
func (s *Set) Watch(ctx context.Context, resource string, cb cache.Callback) (domain.Entry, func(), error) {
	build, ok := s.watchable()[resource]
	if !ok {
		return domain.Entry{}, nil, zerr.With(zerr.Wrap(domain.ErrUnknownResource, "watch"), "resource", resource)
	}
	entry, stop := build().Observe(ctx, cb)
	return entry, stop, nil
}

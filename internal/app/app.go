// Package app implements the application layer for quill.
package app

import (
	"context"
	"errors"
	"log/slog"

	"go.trai.ch/quill/internal/adapters/logger"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
	"go.trai.ch/quill/internal/engine/cache"
	"go.trai.ch/quill/internal/engine/query"
	"go.trai.ch/quill/internal/features"
)

// LevelSetter is implemented by loggers whose verbosity can change at runtime.
type LevelSetter interface {
	SetLevel(level slog.Level)
	SetJSON(enable bool)
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// App owns the cache for the lifetime of one CLI invocation.
type App struct {
	cfg      *domain.Config
	logger   ports.Logger
	tracer   ports.Tracer
	store    *cache.Store
	client   *query.Client
	features *features.Set
}

// New creates a new App instance. Features read through client and write
// through api; keeper persists the session on login.
func New(
	cfg *domain.Config,
	log ports.Logger,
	tracer ports.Tracer,
	store *cache.Store,
	client *query.Client,
	api ports.Transport,
	keeper features.SessionKeeper,
) *App {
	if ls, ok := log.(LevelSetter); ok {
		ls.SetJSON(cfg.Log.JSON)
		ls.SetLevel(logger.ParseLevel(cfg.Log.Level))
	}

	return &App{
		cfg:      cfg,
		logger:   log,
		tracer:   tracer,
		store:    store,
		client:   client,
		features: features.New(client, api, log, tracer, features.WithSession(keeper)),
	}
}

// Features returns the bound resource features.
func (a *App) Features() *features.Set {
	return a.features
}

// Config returns the resolved configuration.
func (a *App) Config() *domain.Config {
	return a.cfg
}

// SetVerbose switches logging to debug level.
func (a *App) SetVerbose(verbose bool) {
	ls, ok := a.logger.(LevelSetter)
	if !ok {
		return
	}
	if verbose {
		ls.SetLevel(slog.LevelDebug)
		return
	}
	ls.SetLevel(logger.ParseLevel(a.cfg.Log.Level))
}

// Close detaches the query client, clears the cache and flushes the tracer.
func (a *App) Close(ctx context.Context) error {
	a.client.Close()
	a.store.Close()

	var errs error
	if s, ok := a.tracer.(shutdowner); ok {
		errs = errors.Join(errs, s.Shutdown(ctx))
	}
	return errs
}

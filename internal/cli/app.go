package cli

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/api"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/forms"
	"fintrack/internal/listview"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
)

// App holds the wired client components.
type App struct {
	Config    *config.Config
	Logger    *applog.Logger
	Store     *storage.SQLiteRepository
	Session   *api.Session
	Client    *api.Client
	Resources *api.Resources
	Lookups   *listview.Lookups
	Caches    *cache.Manager
	// Publisher is nil when AMQP is not configured or unreachable.
	Publisher *amqp.Client
}

// NewApp opens local state, restores the session and builds the API client.
func NewApp(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*App, error) {
	store, err := InitSQLite(logger, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	session := api.NewSession(store)
	if err := session.Restore(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	client := api.NewClient(api.Options{
		BaseURL: cfg.APIBase,
		Timeout: cfg.HTTPTimeout,
		Logger:  logger,
	}, session)
	resources := api.NewResources(client)

	lookupCache := cache.NewLRUCache[[]listview.Option](cfg.LookupCacheMax, cfg.LookupCacheTTL)
	caches := cache.NewManager(logger)
	caches.Register(lookupCache)
	caches.StartCleanup(cfg.LookupCacheTTL)

	app := &App{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Session:   session,
		Client:    client,
		Resources: resources,
		Lookups:   listview.NewLookups(resources, lookupCache, logger),
		Caches:    caches,
	}

	if cfg.AMQPEnabled() {
		pub, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, mutation events disabled", applog.FieldError, err.Error())
		} else {
			app.Publisher = pub
		}
	}
	return app, nil
}

// Options returns the controller options wired to this app.
func (a *App) Options(notifier listview.Notifier) listview.Options {
	opts := listview.Options{
		Notifier:  notifier,
		Locations: a.Store,
		Lookups:   a.Lookups,
		Logger:    a.Logger,
	}
	if a.Publisher != nil {
		opts.Publisher = a.Publisher
	}
	return opts
}

// Controller builds a list controller for one resource.
func Controller[T core.Entity](a *App, res *api.Resource[T], binder forms.Binder[T], notifier listview.Notifier) *listview.Controller[T] {
	return listview.New[T](res, binder, a.Options(notifier))
}

// RequireSession fails when no valid token is held.
func (a *App) RequireSession() error {
	if !a.Session.Valid() {
		return fmt.Errorf("%w: run `fintrack login` first", api.ErrUnauthenticated)
	}
	return nil
}

// Close releases every resource the app opened.
func (a *App) Close() {
	a.Caches.Stop()
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.Logger.Warn("Failed to close AMQP client", applog.FieldError, err.Error())
		}
	}
	if err := a.Store.Close(); err != nil {
		a.Logger.Warn("Failed to close store", applog.FieldError, err.Error())
	}
}

// Timeout bounds one command.
func (a *App) Timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.Config.HTTPTimeout+5*time.Second)
}

/*
Package factory builds runtime objects from configuration.

PURPOSE:
  Turns a validated config.Config into the repository, the event publisher
  and the tracker, so the server and the CLI wire the same pieces the same
  way.

BACKENDS:
  memory  engine/store.Memory, nothing survives the process
  file    store/jsonfile, one JSON document per storage key
  sqlite  store/sqlite, migrated on open

USAGE:
  app, err := factory.Build(ctx, cfg, log)
  if err != nil {
      return err
  }
  defer app.Close()

  entry, err := app.Tracker.Add(ctx, timesheet.NewEntry{...})

SEE ALSO:
  - config/config.go: Settings consumed here
  - timesheet/tracker.go: Tracker built here
*/
package factory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/warp/worklog-engine/config"
	"github.com/warp/worklog-engine/engine/store"
	"github.com/warp/worklog-engine/events"
	"github.com/warp/worklog-engine/events/amqp"
	"github.com/warp/worklog-engine/store/jsonfile"
	"github.com/warp/worklog-engine/store/sqlite"
	"github.com/warp/worklog-engine/timesheet"
)

// =============================================================================
// REPOSITORY
// =============================================================================

// Repository is a timesheet.Repository that owns a resource.
type Repository interface {
	timesheet.Repository
	Close() error
}

// NewRepository opens the configured storage backend.
func NewRepository(cfg config.StorageConfig, loc *time.Location, log zerolog.Logger) (Repository, error) {
	key := cfg.Key
	if key == "" {
		key = timesheet.DefaultStorageKey
	}

	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemory(), nil
	case config.BackendFile:
		return jsonfile.New(cfg.StoragePath(), key, loc, log)
	case config.BackendSQLite, "":
		path := cfg.StoragePath()
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
		return sqlite.New(path, key)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// =============================================================================
// PUBLISHER
// =============================================================================

// NewPublisher dials RabbitMQ when an AMQP URL is configured. Without one it
// returns events.Nop and a no-op closer.
func NewPublisher(cfg config.AMQPConfig, log zerolog.Logger) (events.Publisher, func() error, error) {
	if cfg.URL == "" {
		return events.Nop{}, func() error { return nil }, nil
	}
	p, err := amqp.Dial(cfg.URL, cfg.Exchange, cfg.Queue, log)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}

// =============================================================================
// APP
// =============================================================================

// App bundles everything a binary needs after startup.
type App struct {
	Config    config.Config
	Resolved  config.Resolved
	Log       zerolog.Logger
	Repo      Repository
	Publisher events.Publisher
	Tracker   *timesheet.Tracker

	// LoadErr is the repository load failure, if any. The tracker is usable
	// but starts empty.
	LoadErr error

	closers []func() error
}

// Options overrides pieces of the build, mostly for tests.
type Options struct {
	Publisher events.Publisher
	Now       func() time.Time
}

// Build validates cfg, opens storage and the publisher, and loads the
// tracker. A load failure is recorded in App.LoadErr rather than returned.
func Build(ctx context.Context, cfg config.Config, log zerolog.Logger, opts ...Options) (*App, error) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	resolved, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Resolved: resolved, Log: log}

	repo, err := NewRepository(cfg.Storage, resolved.Location, log)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}
	app.Repo = repo
	app.closers = append(app.closers, repo.Close)

	publisher := o.Publisher
	if publisher == nil {
		p, closePublisher, err := NewPublisher(cfg.AMQP, log)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("connect publisher: %w", err)
		}
		publisher = p
		app.closers = append(app.closers, closePublisher)
	}
	app.Publisher = publisher

	app.Tracker = timesheet.NewTracker(repo, timesheet.Options{
		Periods:   resolved.Periods,
		Rates:     resolved.Rates,
		Location:  resolved.Location,
		Publisher: publisher,
		Logger:    log,
		Now:       o.Now,
	})
	app.LoadErr = app.Tracker.Load(ctx)

	return app, nil
}

// Close releases the publisher and the repository, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

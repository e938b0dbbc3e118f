// Package fieldblocks renders field-driven content blocks: typed fields
// assembled into reusable blocks embedded in documents. The heavy lifting
// lives in pkg/engine; this package re-exports its entry points and wires an
// engine from configuration.
package fieldblocks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-fieldblocks/pkg/config"
	"github.com/goliatone/go-fieldblocks/pkg/engine"
	"github.com/goliatone/go-fieldblocks/pkg/logging"
	"github.com/goliatone/go-fieldblocks/pkg/metrics"
	"github.com/goliatone/go-fieldblocks/pkg/registry"
	"github.com/goliatone/go-fieldblocks/pkg/render"
	"github.com/goliatone/go-fieldblocks/pkg/render/template/gotemplate"
	"github.com/goliatone/go-fieldblocks/pkg/store"
	"github.com/goliatone/go-fieldblocks/pkg/store/memory"
	"github.com/goliatone/go-fieldblocks/pkg/store/redisstore"
	"github.com/goliatone/go-fieldblocks/pkg/store/sqlstore"
)

// Engine aliases engine.Engine for callers importing only the root package.
type Engine = engine.Engine

// Scope aliases engine.Scope.
type Scope = engine.Scope

// NewEngine exposes the engine constructor from the top-level module.
func NewEngine(options ...engine.Option) (*engine.Engine, error) {
	return engine.New(options...)
}

// Runtime is an engine assembled from configuration together with the
// resources it owns.
type Runtime struct {
	Engine   *engine.Engine
	Registry *registry.Memory
	Store    store.Store
	Metrics  *metrics.Collector
	Logger   logging.Logger

	closers []io.Closer
}

// Close releases store connections.
func (r *Runtime) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FromConfig loads block types and templates from the configured
// directories, connects the configured store and builds an engine. reg may
// be nil to skip metric registration.
func FromConfig(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, options ...engine.Option) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("fieldblocks: config is required")
	}
	logger := logging.NewStructured(cfg.Log.Level, cfg.Log.Format)

	blocks, err := registry.LoadFS(dirFS(cfg.Render.BlocksDir))
	if err != nil {
		return nil, fmt.Errorf("fieldblocks: load block types: %w", err)
	}

	templates, err := gotemplate.New(
		gotemplate.WithFS(os.DirFS(cfg.Render.TemplatesDir)),
		gotemplate.WithExtension(cfg.Render.TemplateExtension),
	)
	if err != nil {
		return nil, fmt.Errorf("fieldblocks: configure templates: %w", err)
	}
	executor, err := render.NewTemplateExecutor(templates)
	if err != nil {
		return nil, fmt.Errorf("fieldblocks: %w", err)
	}

	collector, err := metrics.New(reg)
	if err != nil {
		return nil, fmt.Errorf("fieldblocks: register metrics: %w", err)
	}

	rt := &Runtime{Registry: blocks, Metrics: collector, Logger: logger}
	if err := rt.openStore(ctx, cfg.Storage); err != nil {
		return nil, err
	}

	base := []engine.Option{
		engine.WithRegistry(blocks),
		engine.WithExecutor(executor),
		engine.WithStore(rt.Store),
		engine.WithInlineEditing(cfg.Render.InlineEditing),
		engine.WithLogger(logger),
		engine.WithMetrics(collector),
	}
	rt.Engine, err = engine.New(append(base, options...)...)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	logger.Info("fieldblocks engine ready", map[string]any{
		"block_types": len(blocks.List()),
		"storage":     cfg.Storage.Driver,
	})
	return rt, nil
}

func (r *Runtime) openStore(ctx context.Context, cfg config.StorageConfig) error {
	switch cfg.Driver {
	case config.DriverRedis:
		s := redisstore.New(redisstore.Config{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return fmt.Errorf("fieldblocks: %w", err)
		}
		r.Store = s
		r.closers = append(r.closers, s)
	case config.DriverPostgres:
		db, err := sqlstore.Open(cfg.SQL.DSN)
		if err != nil {
			return fmt.Errorf("fieldblocks: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return fmt.Errorf("fieldblocks: ping postgres: %w", err)
		}
		r.Store = sqlstore.New(db, cfg.SQL.Table)
		r.closers = append(r.closers, db)
	default:
		r.Store = memory.New(nil)
	}
	return nil
}

func dirFS(dir string) fs.FS {
	if dir == "" {
		return nil
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil
	}
	return os.DirFS(dir)
}

// Package app wires configuration, the asset source, tracing, and
// per-label registries into one owned lifetime.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/softglow/assetdb/internal/config"
	"github.com/softglow/assetdb/internal/log"
	"github.com/softglow/assetdb/internal/registry"
	"github.com/softglow/assetdb/internal/source"
	"github.com/softglow/assetdb/internal/tracing"
)

// App is the composition root. It builds the source selected by the
// configuration, hands out one Registry per label, and releases
// everything on Close.
type App struct {
	cfg   config.Config
	kinds *source.KindRegistry

	src     source.Source
	tracing *tracing.Provider

	mu         sync.Mutex
	registries map[string]*registry.Registry

	logCleanup func()
}

// New validates cfg and builds the application. The kind registry must
// already hold a decoder for every kind the source will emit.
func New(cfg config.Config, kinds *source.KindRegistry) (*App, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if kinds == nil {
		return nil, fmt.Errorf("app: nil kind registry")
	}

	a := &App{
		cfg:        cfg,
		kinds:      kinds,
		registries: make(map[string]*registry.Registry),
	}

	if cfg.Debug {
		cleanup, err := log.Init(cfg.DebugLogPath)
		if err != nil {
			return nil, fmt.Errorf("app: init debug log: %w", err)
		}
		a.logCleanup = cleanup
	}

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		a.closeLog()
		return nil, fmt.Errorf("app: init tracing: %w", err)
	}
	a.tracing = provider

	src, err := a.openSource()
	if err != nil {
		_ = provider.Shutdown(context.Background())
		a.closeLog()
		return nil, err
	}
	a.src = src

	log.Info(log.CatConfig, "Application started",
		"sourceKind", cfg.Source.Kind, "kinds", len(kinds.Kinds()))
	return a, nil
}

func (a *App) openSource() (source.Source, error) {
	switch a.cfg.Source.Kind {
	case config.SourceManifest:
		opts := []source.ManifestOption{
			source.WithDecodeCacheTTL(a.cfg.Source.DecodeCacheTTL),
		}
		if !a.cfg.Source.DecodeCache {
			opts = []source.ManifestOption{source.WithoutDecodeCache()}
		}
		src, err := source.NewManifestSource(a.cfg.Source.ManifestPath, a.kinds, opts...)
		if err != nil {
			return nil, fmt.Errorf("app: open manifest source: %w", err)
		}
		return src, nil

	case config.SourceSQLite:
		src, err := source.OpenSQLiteSource(a.cfg.Source.DBPath, a.kinds)
		if err != nil {
			return nil, fmt.Errorf("app: open sqlite source: %w", err)
		}
		return src, nil
	}
	return nil, fmt.Errorf("app: unknown source kind %q", a.cfg.Source.Kind)
}

// Source exposes the underlying asset source.
func (a *App) Source() source.Source { return a.src }

// Config returns the configuration the application was built with.
func (a *App) Config() config.Config { return a.cfg }

// Registry returns the registry for label, creating it on first use.
// Repeated calls with the same label return the same instance, so load
// work is shared between callers.
func (a *App) Registry(label string) (*registry.Registry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if r, ok := a.registries[label]; ok {
		return r, nil
	}
	r, err := registry.New(label, a.src, registry.WithTracer(a.tracing.Tracer()))
	if err != nil {
		return nil, err
	}
	a.registries[label] = r
	return r, nil
}

// Labels lists every label the source knows about, when the source
// supports enumeration.
func (a *App) Labels(ctx context.Context) ([]string, error) {
	lister, ok := a.src.(source.LabelLister)
	if !ok {
		return nil, fmt.Errorf("app: source %T cannot enumerate labels", a.src)
	}
	return lister.Labels(ctx)
}

// Reload discards every registry and reopens the source, so the next
// Registry call sees the data currently on disk.
func (a *App) Reload() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	src, err := a.openSource()
	if err != nil {
		return err
	}
	if c, ok := a.src.(interface{ Close() error }); ok {
		_ = c.Close()
	}
	a.src = src
	a.registries = make(map[string]*registry.Registry)
	log.Info(log.CatConfig, "Source reloaded", "sourceKind", a.cfg.Source.Kind)
	return nil
}

// Close releases the source, the tracing provider, and the debug log.
func (a *App) Close() error {
	var firstErr error
	if c, ok := a.src.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			firstErr = err
		}
	}
	if a.tracing != nil {
		if err := a.tracing.Shutdown(context.Background()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closeLog()
	return firstErr
}

func (a *App) closeLog() {
	if a.logCleanup != nil {
		a.logCleanup()
		a.logCleanup = nil
	}
}

// Package registry implements the label-scoped typed asset registry: a
// lazily-populated, type-keyed table over one asset source label, with
// exact lookups via binary search and polymorphic lookups via scan.
//
// A Registry is an explicit handle created by the composition root; there
// are no package-level instances. Registries load at most once and are
// never refreshed; replace the registry to pick up source changes.
package registry

import (
	"context"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/softglow/assetdb/internal/asset"
	"github.com/softglow/assetdb/internal/catalog"
	"github.com/softglow/assetdb/internal/loader"
	"github.com/softglow/assetdb/internal/log"
	"github.com/softglow/assetdb/internal/pubsub"
	"github.com/softglow/assetdb/internal/source"
	"github.com/softglow/assetdb/internal/typekey"
)

// LoadState tracks the one-way load lifecycle of a registry.
type LoadState int32

const (
	NotStarted LoadState = iota
	Loading
	Loaded
)

func (s LoadState) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// LoadEvent is published on the registry's event broker during a load.
type LoadEvent struct {
	Label    string
	Asset    string // asset name for item events, empty on completion
	Progress float64
}

// Option configures a Registry.
type Option func(*Registry)

// WithComponent makes the registry's loader unwrap container payloads to
// the component under key before insertion.
func WithComponent(key typekey.Key) Option {
	return func(r *Registry) { r.componentKey = key }
}

// WithTracer records a span per registry load.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Registry) { r.tracer = tracer }
}

// Registry is the public-facing registry for one label. All mutation is
// serialized behind the load gate; queries are safe from any goroutine
// once loading finishes, and every query forces loading first.
type Registry struct {
	label        string
	componentKey typekey.Key

	ldr    *loader.Loader
	table  *catalog.Table
	state  atomic.Int32
	tracer trace.Tracer
	events *pubsub.Broker[LoadEvent]

	mu       sync.Mutex // guards table mutation, loadErr, span
	loadErr  error
	loadSpan trace.Span
}

// New creates a registry over src for label.
func New(label string, src source.Source, opts ...Option) (*Registry, error) {
	r := &Registry{
		label:  label,
		table:  catalog.New(),
		tracer: noop.NewTracerProvider().Tracer("registry"),
		events: pubsub.NewBroker[LoadEvent](),
	}
	for _, fn := range opts {
		fn(r)
	}

	var ldrOpts []loader.Option
	if r.componentKey != 0 {
		ldrOpts = append(ldrOpts,
			loader.WithComponent(r.componentKey),
			loader.WithDropObserver(func(a asset.Asset) {
				r.events.Publish(pubsub.ItemDroppedEvent, LoadEvent{
					Label: r.label,
					Asset: a.AssetName(),
				})
			}))
	}
	ldr, err := loader.New(src, label, ldrOpts...)
	if err != nil {
		return nil, err
	}
	r.ldr = ldr
	return r, nil
}

// Label returns the label this registry loads.
func (r *Registry) Label() string { return r.label }

// State returns the current load state.
func (r *Registry) State() LoadState {
	return LoadState(r.state.Load())
}

// Events exposes the load event stream. Subscribe before triggering a
// load to observe item deliveries.
func (r *Registry) Events() pubsub.Subscriber[LoadEvent] { return r.events }

// StartLoading begins the background load. It is idempotent: only the
// first call starts a fetch, later calls (and calls while loading or
// loaded) are no-ops. A fetch-start failure still completes the load
// (empty) and is returned here and from EnsureLoaded.
func (r *Registry) StartLoading(ctx context.Context) error {
	if !r.state.CompareAndSwap(int32(NotStarted), int32(Loading)) {
		return nil
	}

	_, span := r.tracer.Start(ctx, "registry.load",
		trace.WithAttributes(attribute.String("assetdb.label", r.label)))
	r.mu.Lock()
	r.loadSpan = span
	r.mu.Unlock()

	log.Info(log.CatRegistry, "load started", "label", r.label)
	if err := r.ldr.Start(ctx, r.insert, r.complete); err != nil {
		r.mu.Lock()
		r.loadErr = err
		r.mu.Unlock()
		log.ErrorErr(log.CatRegistry, "load failed at fetch start", err, "label", r.label)
		return err
	}
	return nil
}

// EnsureLoaded blocks until the registry is fully loaded and its table
// sealed: it starts the load when none has, waits out an in-flight load,
// and returns immediately when already loaded. Every query path funnels
// through here, which is the ordering contract making query results see
// a sorted table.
func (r *Registry) EnsureLoaded(ctx context.Context) error {
	if r.State() != Loaded {
		_ = r.StartLoading(ctx) // error is sticky, returned below
		r.ldr.Wait()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadErr
}

// insert registers one delivered payload under its whole capability set.
func (r *Registry) insert(a asset.Asset) {
	keys, err := asset.KeysFor(a)
	if err != nil {
		log.ErrorErr(log.CatRegistry, "payload dropped: no type key", err, "label", r.label)
		return
	}

	r.mu.Lock()
	err = r.table.Insert(a, keys)
	r.mu.Unlock()
	if err != nil {
		log.ErrorErr(log.CatRegistry, "payload dropped", err, "label", r.label, "asset", a.AssetName())
		return
	}

	r.events.Publish(pubsub.ItemDeliveredEvent, LoadEvent{
		Label:    r.label,
		Asset:    a.AssetName(),
		Progress: r.ldr.Progress(),
	})
}

// complete seals the table and publishes Loaded. Runs exactly once, on
// whichever execution context the source finishes on, strictly before
// any EnsureLoaded waiter resumes.
func (r *Registry) complete() {
	r.mu.Lock()
	r.table.Seal()
	span := r.loadSpan
	r.mu.Unlock()

	r.state.Store(int32(Loaded))
	if span != nil {
		span.SetAttributes(attribute.Int("assetdb.entries", r.table.Len()))
		span.End()
	}
	log.Info(log.CatRegistry, "table sealed", "label", r.label,
		"entries", r.table.Len(), "payloads", r.table.PayloadCount())
	r.events.Publish(pubsub.LoadCompletedEvent, LoadEvent{Label: r.label, Progress: 1})
}

// LoadProgress reports load progress in [0, 1] without forcing a load.
func (r *Registry) LoadProgress() float64 {
	return r.ldr.Progress()
}

// Count forces a load and returns the total entry count: the sum over
// payloads of one entry per capability key, not the distinct payload
// count.
func (r *Registry) Count(ctx context.Context) (int, error) {
	if err := r.EnsureLoaded(ctx); err != nil {
		return 0, err
	}
	return r.table.Len(), nil
}

// Assets forces a load and returns the distinct payloads in arrival
// order. The slice is shared; callers must not mutate it.
func (r *Registry) Assets(ctx context.Context) ([]asset.Asset, error) {
	if err := r.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	return r.table.Payloads(), nil
}

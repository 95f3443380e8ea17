// Package loader bridges an asset source's asynchronous bulk fetch to the
// registry's table population, with an idempotent start, a synchronous
// drain, and progress reporting.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/softglow/assetdb/internal/asset"
	"github.com/softglow/assetdb/internal/log"
	"github.com/softglow/assetdb/internal/source"
	"github.com/softglow/assetdb/internal/typekey"
)

// ErrAmbiguousComponent indicates the loader was configured to unwrap
// containers to a type that is itself the container/payload base, which
// makes the extraction ambiguous.
var ErrAmbiguousComponent = errors.New("loader: component type must be narrower than the asset base")

// Option configures a Loader.
type Option func(*Loader)

// WithComponent makes the loader unwrap Container payloads to the
// component under key before delivery. Containers missing the component
// are dropped silently; non-container payloads pass through unchanged.
func WithComponent(key typekey.Key) Option {
	return func(l *Loader) {
		l.component = key
		l.unwrap = true
	}
}

// WithDropObserver invokes fn for every container dropped because the
// configured component was absent. Drops stay silent otherwise.
func WithDropObserver(fn func(asset.Asset)) Option {
	return func(l *Loader) { l.onDrop = fn }
}

// Loader drives one bulk fetch for one label. A loader loads at most
// once; Start while a load is in flight (or finished) is a no-op.
type Loader struct {
	src       source.Source
	label     string
	component typekey.Key
	unwrap    bool
	onDrop    func(asset.Asset)

	mu      sync.Mutex
	started bool
	handle  source.Handle
	done    chan struct{}
}

// New creates a loader for label over src.
func New(src source.Source, label string, opts ...Option) (*Loader, error) {
	l := &Loader{
		src:   src,
		label: label,
		done:  make(chan struct{}),
	}
	for _, fn := range opts {
		fn(l)
	}
	if l.unwrap {
		if l.component == typekey.Of[asset.Asset]() || l.component == typekey.Of[asset.Container]() {
			return nil, ErrAmbiguousComponent
		}
	}
	return l, nil
}

// Start begins the fetch, delivering each payload to deliver and calling
// onComplete exactly once afterwards. The second and later calls are
// no-ops regardless of whether the first load is still in flight.
//
// A fetch-start failure from the source does not leave the loader hung:
// the load completes with whatever was gathered (nothing) and the error
// is returned for the caller to surface. No retry is attempted.
func (l *Loader) Start(ctx context.Context, deliver func(asset.Asset), onComplete func()) error {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		log.Debug(log.CatLoader, "start ignored: load already in flight", "label", l.label)
		return nil
	}
	l.started = true
	l.mu.Unlock()

	onItem := func(a asset.Asset) {
		if l.unwrap {
			var ok bool
			if a, ok = l.extract(a); !ok {
				return
			}
		}
		if deliver != nil {
			deliver(a)
		}
	}
	onDone := func() {
		if onComplete != nil {
			onComplete()
		}
		close(l.done)
		log.Info(log.CatLoader, "load complete", "label", l.label)
	}

	h, err := l.src.FetchByLabel(ctx, l.label, onItem, onDone)
	if err != nil {
		// The fetch never began; complete empty so waiters unblock.
		onDone()
		return fmt.Errorf("loader: fetch label %s: %w", l.label, err)
	}

	l.mu.Lock()
	l.handle = h
	l.mu.Unlock()
	return nil
}

// extract unwraps a container payload to the configured component.
// Payloads that are not containers pass through as-is.
func (l *Loader) extract(a asset.Asset) (asset.Asset, bool) {
	c, isContainer := a.(asset.Container)
	if !isContainer {
		return a, true
	}
	comp, ok := c.Component(l.component)
	if !ok {
		log.Debug(log.CatLoader, "container dropped: component absent",
			"label", l.label, "container", a.AssetName())
		if l.onDrop != nil {
			l.onDrop(a)
		}
		return nil, false
	}
	return comp, true
}

// Wait blocks until the load has fully completed, including the
// completion callback. Wait before Start blocks until a load happens.
func (l *Loader) Wait() {
	<-l.done
}

// Done exposes the completion signal for select loops.
func (l *Loader) Done() <-chan struct{} { return l.done }

// Started reports whether Start has been called.
func (l *Loader) Started() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.started
}

// Progress reports load progress in [0, 1]: 0 before Start, the source's
// fetch fraction while in flight, 1 once complete.
func (l *Loader) Progress() float64 {
	select {
	case <-l.done:
		return 1
	default:
	}

	l.mu.Lock()
	h := l.handle
	started := l.started
	l.mu.Unlock()

	if !started || h.IsZero() {
		return 0
	}
	return l.src.PercentComplete(h)
}

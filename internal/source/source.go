// Package source defines the asset-source boundary consumed by the loader,
// plus the manifest-file and SQLite implementations. A source groups
// externally owned assets under labels and delivers all assets for a label
// through an asynchronous bulk fetch.
package source

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/softglow/assetdb/internal/asset"
)

// Handle identifies one in-flight or completed fetch.
type Handle struct {
	id uuid.UUID
}

// IsZero reports whether the handle was never issued by a source.
func (h Handle) IsZero() bool { return h.id == uuid.Nil }

func (h Handle) String() string {
	if h.IsZero() {
		return "<no fetch>"
	}
	return h.id.String()
}

// Source is the collaborator boundary the loader consumes. A label that
// the source has never seen is not an error: the fetch completes with
// zero items.
type Source interface {
	// FetchByLabel begins delivering every asset tagged with label.
	// onItem runs once per asset, possibly on a background goroutine,
	// in unspecified order; onDone runs exactly once afterwards.
	FetchByLabel(ctx context.Context, label string, onItem func(asset.Asset), onDone func()) (Handle, error)

	// WaitForCompletion blocks until the fetch behind h has delivered
	// everything and onDone has run. Unknown handles return immediately.
	WaitForCompletion(h Handle)

	// PercentComplete reports fetch progress in [0, 1]. It is
	// monotonically non-decreasing and returns 0 for unknown handles.
	PercentComplete(h Handle) float64

	// IsValid reports whether h was issued by this source.
	IsValid(h Handle) bool
}

// LabelLister is implemented by sources that can enumerate every label
// they carry. The CLI uses it; the loader does not.
type LabelLister interface {
	Labels(ctx context.Context) ([]string, error)
}

// DropCounter is implemented by sources that count assets dropped by
// decode failures. `assetdb verify` fails when the count is non-zero.
type DropCounter interface {
	Drops() int64
}

// fetch tracks one bulk delivery.
type fetch struct {
	total     int
	delivered atomic.Int64
	done      chan struct{}
}

func (f *fetch) progress() float64 {
	select {
	case <-f.done:
		return 1
	default:
	}
	if f.total == 0 {
		return 0
	}
	p := float64(f.delivered.Load()) / float64(f.total)
	if p > 1 {
		p = 1
	}
	return p
}

// tracker owns handle bookkeeping shared by the source implementations.
type tracker struct {
	mu      sync.Mutex
	fetches map[Handle]*fetch
	drops   atomic.Int64
}

func newTracker() *tracker {
	return &tracker{fetches: make(map[Handle]*fetch)}
}

// begin registers a fetch of n items and returns its handle.
func (t *tracker) begin(n int) (Handle, *fetch) {
	h := Handle{id: uuid.New()}
	f := &fetch{total: n, done: make(chan struct{})}
	t.mu.Lock()
	t.fetches[h] = f
	t.mu.Unlock()
	return h, f
}

func (t *tracker) lookup(h Handle) (*fetch, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.fetches[h]
	return f, ok
}

func (t *tracker) wait(h Handle) {
	if f, ok := t.lookup(h); ok {
		<-f.done
	}
}

func (t *tracker) percent(h Handle) float64 {
	if f, ok := t.lookup(h); ok {
		return f.progress()
	}
	return 0
}

func (t *tracker) valid(h Handle) bool {
	_, ok := t.lookup(h)
	return ok
}

func (t *tracker) drop() { t.drops.Add(1) }

func (t *tracker) dropped() int64 { return t.drops.Load() }

// deliver runs the bulk delivery on a background goroutine: onItem per
// asset, then onDone, then the completion mark. onDone runs strictly
// before waiters wake, so WaitForCompletion implies onDone has finished.
func deliver(f *fetch, items []asset.Asset, onItem func(asset.Asset), onDone func()) {
	go func() {
		for _, it := range items {
			if onItem != nil {
				onItem(it)
			}
			f.delivered.Add(1)
		}
		if onDone != nil {
			onDone()
		}
		close(f.done)
	}()
}

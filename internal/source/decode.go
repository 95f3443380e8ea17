package source

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/softglow/assetdb/internal/asset"
)

// Kind registry errors.
var (
	ErrDuplicateKind = errors.New("source: duplicate kind registration")
	ErrUnknownKind   = errors.New("source: unknown asset kind")
	ErrNilDecode     = errors.New("source: decode func cannot be nil")
)

// DecodeFunc materializes one asset from its spec document. unmarshal
// fills a caller-provided struct from the document, the same contract as
// yaml.Node.Decode.
type DecodeFunc func(unmarshal func(out any) error) (asset.Asset, error)

// KindRegistry maps manifest/database kind strings to decoders. Register
// every kind before handing the registry to a source; registration after
// that point is safe but assets already fetched are not revisited.
type KindRegistry struct {
	mu    sync.RWMutex
	kinds map[string]DecodeFunc
}

// NewKindRegistry returns an empty kind registry.
func NewKindRegistry() *KindRegistry {
	return &KindRegistry{kinds: make(map[string]DecodeFunc)}
}

// Register adds a decoder for kind. Re-registering a kind is an error.
func (r *KindRegistry) Register(kind string, fn DecodeFunc) error {
	if kind == "" {
		return fmt.Errorf("source: empty kind name")
	}
	if fn == nil {
		return ErrNilDecode
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.kinds[kind]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKind, kind)
	}
	r.kinds[kind] = fn
	return nil
}

// MustRegister panics on registration error. Useful from init() blocks.
func (r *KindRegistry) MustRegister(kind string, fn DecodeFunc) {
	if err := r.Register(kind, fn); err != nil {
		panic(err)
	}
}

// Decode materializes an asset of the given kind.
func (r *KindRegistry) Decode(kind string, unmarshal func(out any) error) (asset.Asset, error) {
	r.mu.RLock()
	fn, ok := r.kinds[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return fn(unmarshal)
}

// Kinds returns all registered kind names in lexicographic order.
func (r *KindRegistry) Kinds() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		names = append(names, k)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

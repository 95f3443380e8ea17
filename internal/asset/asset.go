// Package asset defines the contracts between payload objects and the
// registry. Payloads are externally owned; the registry only references
// them and never manages their lifetime.
package asset

import "github.com/softglow/assetdb/internal/typekey"

// Asset is the declared base of every registry payload.
type Asset interface {
	// AssetName returns the human-readable identity of the payload,
	// unique within its label.
	AssetName() string
}

// Ancestored is implemented by payloads that are queryable under
// supertype keys. Ancestors returns the capability set beyond the
// concrete type: every key the payload should additionally be indexed
// under. The declared base (Asset) itself is excluded; base-wide queries
// use the scan path instead.
//
// The set is computed once at insertion time. There is no runtime walk
// of embedded types.
type Ancestored interface {
	Asset
	Ancestors() []typekey.Key
}

// Container wraps component assets inside a composite payload. The loader
// unwraps containers to its configured component type before delivery;
// a missing component drops the item without error.
type Container interface {
	Asset
	Component(key typekey.Key) (Asset, bool)
}

// KeysFor returns the full capability set for a payload: its concrete
// type key followed by its declared ancestors, in declaration order.
func KeysFor(a Asset) ([]typekey.Key, error) {
	self, err := typekey.FromValue(a)
	if err != nil {
		return nil, err
	}
	keys := []typekey.Key{self}
	if anc, ok := a.(Ancestored); ok {
		keys = append(keys, anc.Ancestors()...)
	}
	return keys, nil
}

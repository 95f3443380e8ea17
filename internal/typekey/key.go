// Package typekey derives 64-bit ordering keys from Go type identities.
// Keys are deterministic within a single process run and are used by the
// catalog to binary-search entries by type. Distinct types may collide;
// callers that need exactness must re-check the payload type after lookup.
package typekey

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/dgryski/go-farm"
)

// Key is an opaque 64-bit type key. Ordering is the raw numeric order.
type Key uint64

// String renders the key as 16 hex digits.
func (k Key) String() string {
	return fmt.Sprintf("%016x", uint64(k))
}

// FNV-1a parameters used to fold the package and name fingerprints.
const (
	offsetBasis uint64 = 14695981039346656037
	prime       uint64 = 1099511628211
)

// ErrNilType indicates a key was requested for a nil type.
var ErrNilType = errors.New("typekey: nil type")

// FromType computes the key for t. The key folds the fingerprint of the
// type's defining package path and the fingerprint of its full name, each
// mixed XOR-then-multiply. Same type, same run, same key; no stability
// across process restarts is promised.
func FromType(t reflect.Type) (Key, error) {
	if t == nil {
		return 0, ErrNilType
	}
	// Pointer types share identity with their element for registry
	// purposes: a *Sword payload is still a Sword asset.
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	h := offsetBasis
	h ^= farm.Fingerprint64([]byte(t.PkgPath()))
	h *= prime
	h ^= farm.Fingerprint64([]byte(t.String()))
	h *= prime
	return Key(h), nil
}

// Of returns the key for the static type T. It panics only for nil
// interface types, which cannot occur for a named T.
func Of[T any]() Key {
	k, err := FromType(reflect.TypeFor[T]())
	if err != nil {
		panic(err)
	}
	return k
}

// FromValue returns the key of v's dynamic type.
func FromValue(v any) (Key, error) {
	if v == nil {
		return 0, ErrNilType
	}
	return FromType(reflect.TypeOf(v))
}

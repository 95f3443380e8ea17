// Package catalog implements the sorted type-keyed entry table backing a
// registry. A table is append-only until sealed, sorted exactly once by
// Seal, and read-only afterwards.
package catalog

import (
	"cmp"
	"errors"
	"slices"
	"sort"

	"github.com/softglow/assetdb/internal/asset"
	"github.com/softglow/assetdb/internal/typekey"
)

// Table errors.
var (
	ErrSealed     = errors.New("catalog: table is sealed")
	ErrNilPayload = errors.New("catalog: payload cannot be nil")
	ErrNoKeys     = errors.New("catalog: payload has no keys")
)

// entry maps one type key to a payload. A payload usually owns several
// entries, one per key in its capability set. seq is the insertion order
// and breaks ties between equal keys, so the sealed order is total and
// deterministic even under key collisions.
type entry struct {
	key     typekey.Key
	seq     int
	payload asset.Asset
}

// Table is the entry table for a single registry. It is not safe for
// concurrent mutation; the owning registry serializes all writes behind
// its load gate. Reads after Seal are safe from any goroutine.
type Table struct {
	entries  []entry
	payloads []asset.Asset // distinct payloads, insertion order
	sealed   bool
}

// New returns an empty, unsealed table.
func New() *Table {
	return &Table{}
}

// Insert registers payload under every key in keys, referencing the same
// payload instance from each entry. Returns ErrSealed once the table has
// been sealed.
func (t *Table) Insert(payload asset.Asset, keys []typekey.Key) error {
	if t.sealed {
		return ErrSealed
	}
	if payload == nil {
		return ErrNilPayload
	}
	if len(keys) == 0 {
		return ErrNoKeys
	}

	seq := len(t.payloads)
	t.payloads = append(t.payloads, payload)
	for _, k := range keys {
		t.entries = append(t.entries, entry{key: k, seq: seq, payload: payload})
	}
	return nil
}

// Seal sorts the table by (key, insertion order) and freezes it. It is
// idempotent: only the call that transitions the table to sealed sorts,
// and it returns true. Queries are valid only after Seal.
func (t *Table) Seal() bool {
	if t.sealed {
		return false
	}
	t.sealed = true
	slices.SortFunc(t.entries, func(a, b entry) int {
		if c := cmp.Compare(a.key, b.key); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	return true
}

// Sealed reports whether Seal has been called.
func (t *Table) Sealed() bool { return t.sealed }

// Len returns the total entry count, including ancestor entries.
func (t *Table) Len() int { return len(t.entries) }

// PayloadCount returns the number of distinct payloads inserted.
func (t *Table) PayloadCount() int { return len(t.payloads) }

// Run binary-searches for key and returns the half-open index range
// [lo, hi) of entries holding it. An empty run has lo == hi.
func (t *Table) Run(key typekey.Key) (int, int) {
	t.mustBeSealed()
	lo := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].key >= key
	})
	hi := lo
	for hi < len(t.entries) && t.entries[hi].key == key {
		hi++
	}
	return lo, hi
}

// At returns the payload of the entry at index i.
func (t *Table) At(i int) asset.Asset {
	t.mustBeSealed()
	return t.entries[i].payload
}

// KeyAt returns the key of the entry at index i.
func (t *Table) KeyAt(i int) typekey.Key {
	t.mustBeSealed()
	return t.entries[i].key
}

// Payloads returns the distinct payloads in insertion order. The returned
// slice is shared; callers must not mutate it.
func (t *Table) Payloads() []asset.Asset {
	t.mustBeSealed()
	return t.payloads
}

func (t *Table) mustBeSealed() {
	if !t.sealed {
		panic("catalog: query on unsealed table")
	}
}

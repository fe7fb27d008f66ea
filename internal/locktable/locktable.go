// Package locktable implements a fixed pool of striped reader/writer
// locks keyed by shard id. Two Lock(id) calls for the same id always
// return the same *sync.RWMutex, which is the property GetRecords/
// PutRecords rely on to linearize operations per shard.
//
// Striping (rather than one lock per shard, stored in a concurrent map)
// is preferred here because the shard id space is unbounded: a
// concurrent-map-of-locks would grow without limit as new shards
// appear, where a fixed stripe pool does not. Cross-shard false sharing
// of a stripe only costs wait time, never correctness, because every
// operation under a stripe still re-validates which shard's data it is
// touching via the top-level shard directory.
//
// The stripe-selection hash uses a per-table maphash.Seed, with a
// fast-path type switch for string/[]byte keys and an unsafe
// address-of-value fallback for arbitrary scalar comparable types.
//
// © 2025 streamcache authors. MIT License.
package locktable

import (
	"hash/maphash"
	"sync"

	"github.com/Voskan/streamcache/internal/unsafehelpers"
)

// DefaultStripes is a stripe count on the order of 1000, rounded to a
// prime to spread hash collisions more evenly than a power-of-two
// modulus would for non-uniform shard ids.
const DefaultStripes = 1009

// Table is a striped pool of reader/writer locks keyed by a comparable
// shard id type S.
type Table[S comparable] struct {
	stripes []sync.RWMutex
	seed    maphash.Seed
}

// New constructs a Table with n stripes. n <= 0 falls back to
// DefaultStripes.
func New[S comparable](n int) *Table[S] {
	if n <= 0 {
		n = DefaultStripes
	}
	return &Table[S]{
		stripes: make([]sync.RWMutex, n),
		seed:    maphash.MakeSeed(),
	}
}

// Lock returns the stripe assigned to id. The same id always maps to the
// same *sync.RWMutex for the lifetime of the Table.
func (t *Table[S]) Lock(id S) *sync.RWMutex {
	return &t.stripes[t.index(id)]
}

// StripeCount returns the number of stripes in the table.
func (t *Table[S]) StripeCount() int { return len(t.stripes) }

func (t *Table[S]) index(id S) uint64 {
	return t.hash(id) % uint64(len(t.stripes))
}

// hash computes a stripe-selection hash for id: a maphash.Hash seeded
// once per table, with a fast path for the two key shapes most callers
// actually use (string, []byte) and an unsafe fallback for arbitrary
// scalar comparable types (ints, uint64 shard numbers, small structs).
func (t *Table[S]) hash(id S) uint64 {
	var h maphash.Hash
	h.SetSeed(t.seed)
	switch v := any(id).(type) {
	case string:
		h.WriteString(v)
	case []byte:
		h.Write(v)
	default:
		h.Write(unsafehelpers.ScalarBytes(&id))
	}
	return h.Sum64()
}

// Package shardindex implements the per-shard ordered map from segment
// start to Segment, with the floor/higher/get/put/remove operations the
// cache facade needs to trim candidates against neighbors and stitch
// adjacent segments together on read.
//
// The ordered map is backed by a github.com/google/btree.BTreeG, a
// direct fit for an O(log n) floor/higher/get/put/remove contract.
//
// One Index exists per shard, created lazily on first insert. All
// mutation must happen under the owning shard's write lock (internal/
// locktable); reads happen under its read lock. This package performs no
// locking of its own — it assumes external synchronisation already
// serialises access.
//
// © 2025 streamcache authors. MIT License.
package shardindex

import (
	"github.com/google/btree"

	"github.com/Voskan/streamcache/internal/segment"
	"github.com/Voskan/streamcache/internal/seqnum"
)

// SeqNum is re-exported so callers don't need to import internal/seqnum.
type SeqNum = seqnum.SeqNum

const btreeDegree = 32

// item is the unit stored in the btree: a segment keyed by its Start.
type item[P any] struct {
	start SeqNum
	seg   *segment.Segment[P]
}

func less[P any](a, b item[P]) bool {
	return a.start.Less(b.start)
}

// Index is the ordered map for one shard.
type Index[P any] struct {
	tree *btree.BTreeG[item[P]]
}

// New constructs an empty shard index.
func New[P any]() *Index[P] {
	return &Index[P]{tree: btree.NewG(btreeDegree, less[P])}
}

// Floor returns the segment with the largest Start <= seq, if any.
func (idx *Index[P]) Floor(seq SeqNum) (*segment.Segment[P], bool) {
	var found *segment.Segment[P]
	idx.tree.DescendLessOrEqual(item[P]{start: seq}, func(it item[P]) bool {
		found = it.seg
		return false // largest match only
	})
	return found, found != nil
}

// Higher returns the segment with the smallest Start strictly greater
// than seq, if any.
func (idx *Index[P]) Higher(seq SeqNum) (*segment.Segment[P], bool) {
	var found *segment.Segment[P]
	idx.tree.AscendGreaterOrEqual(item[P]{start: seq}, func(it item[P]) bool {
		if it.start.Equal(seq) {
			return true // keep going past the exact match
		}
		found = it.seg
		return false
	})
	return found, found != nil
}

// Get returns the segment whose Start is exactly seq, if any.
func (idx *Index[P]) Get(seq SeqNum) (*segment.Segment[P], bool) {
	it, ok := idx.tree.Get(item[P]{start: seq})
	if !ok {
		return nil, false
	}
	return it.seg, true
}

// Put inserts seg, keyed by its Start. Overwrites any existing segment
// at the same Start — callers are responsible for trimming candidates
// against neighbors before calling Put so that no two segments in the
// index ever overlap.
func (idx *Index[P]) Put(seg *segment.Segment[P]) {
	idx.tree.ReplaceOrInsert(item[P]{start: seg.Start(), seg: seg})
}

// Remove deletes the segment keyed by start, if present.
func (idx *Index[P]) Remove(start SeqNum) (*segment.Segment[P], bool) {
	it, ok := idx.tree.Delete(item[P]{start: start})
	if !ok {
		return nil, false
	}
	return it.seg, true
}

// IsEmpty reports whether the index holds no segments.
func (idx *Index[P]) IsEmpty() bool { return idx.tree.Len() == 0 }

// Len returns the number of segments in the index.
func (idx *Index[P]) Len() int { return idx.tree.Len() }

// TotalBytes sums ByteSize() across every segment in the index. Used
// only by diagnostics (Cache.Stats()); the hot path tracks a running
// atomic counter instead of recomputing this.
func (idx *Index[P]) TotalBytes() int64 {
	var total int64
	idx.tree.Ascend(func(it item[P]) bool {
		total += it.seg.ByteSize()
		return true
	})
	return total
}

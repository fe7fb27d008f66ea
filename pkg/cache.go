package cache

// cache.go is the public facade: Cache[S,P] maps an arbitrary,
// caller-chosen shard id S to an independently-locked, independently-
// evicted ordered run of Segments, with a single global byte-size
// budget shared across every shard.
//
// A shard's state is created lazily on first PutRecords and may be
// removed again once it holds no segments. The top-level directory
// (dir) is a sync.Map so that lazy creation/lookup/removal of shard
// entries needs no global lock; all mutation of a shard's own index
// still goes through the striped per-shard lock in internal/locktable,
// which is what actually serializes concurrent GetRecords/PutRecords
// calls against the same shard.
//
// © 2025 streamcache authors. MIT License.

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Voskan/streamcache/internal/insertlog"
	"github.com/Voskan/streamcache/internal/locktable"
	"github.com/Voskan/streamcache/internal/segment"
	"github.com/Voskan/streamcache/internal/shardindex"
)

// shardState is the per-shard state held in Cache.dir. All reads and
// mutations of idx must happen while holding the shard's stripe lock
// (Cache.locks.Lock(id)).
type shardState[P any] struct {
	idx *shardindex.Index[P]
}

// Cache is a size-bounded, concurrent, in-memory cache of sequence-
// numbered record runs across an arbitrary number of shards, identified
// by the comparable type S. P is the caller's opaque record payload
// type.
type Cache[S comparable, P any] struct {
	dir       sync.Map // S -> *shardState[P]
	locks     *locktable.Table[S]
	insertLog *insertlog.Queue[S, SeqNum]
	size      atomic.Int64

	maxBytes int64
	logger   *zap.Logger
	metrics  metricsSink
	observer EvictionObserver[S]
}

// New constructs an empty Cache bounded to maxBytes total bytes across
// every shard, summed over Record.ByteSize. maxBytes must be > 0.
func New[S comparable, P any](maxBytes int64, opts ...Option[S, P]) (*Cache[S, P], error) {
	cfg := defaultConfig[S, P](maxBytes)
	if err := applyOptions(cfg, opts); err != nil {
		return nil, err
	}
	cfg.logger.Debug("streamcache: cache constructed",
		zap.Int64("max_bytes", cfg.maxBytes), zap.Int("lock_stripes", cfg.lockStripes))
	return &Cache[S, P]{
		locks:     locktable.New[S](cfg.lockStripes),
		insertLog: insertlog.New[S, SeqNum](),
		maxBytes:  cfg.maxBytes,
		logger:    cfg.logger,
		metrics:   newMetricsSink(cfg.registry),
		observer:  cfg.observer,
	}, nil
}

// GetRecords returns the contiguous run of records starting at pos,
// stopping at the first gap in the shard's sequence space, an eviction
// boundary, or after limit records, whichever comes first. limit must
// be > 0. A position with nothing cached at or covering it returns
// (nil, nil), not an error: a cache miss is an ordinary, expected
// outcome, never a failure.
func (c *Cache[S, P]) GetRecords(pos Position[S], limit int) ([]Record[P], error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be > 0", ErrInvalidArgument)
	}

	lock := c.locks.Lock(pos.Shard)
	lock.RLock()
	defer lock.RUnlock()

	st, ok := c.shardState(pos.Shard)
	if !ok {
		c.metrics.incGetMiss()
		return nil, nil
	}

	seg, ok := st.idx.Floor(pos.Seq)
	if !ok || seg.End().Cmp(pos.Seq) <= 0 {
		c.metrics.incGetMiss()
		return nil, nil
	}

	var out []Record[P]
	cursor := pos.Seq
	for {
		recs := seg.RecordsFrom(cursor)
		if remaining := limit - len(out); len(recs) > remaining {
			recs = recs[:remaining]
		}
		out = append(out, recs...)
		if len(out) >= limit {
			break
		}

		next, ok := st.idx.Get(seg.End())
		if !ok {
			break // gap, or end of the cached stream
		}
		cursor = seg.End()
		seg = next
	}

	if len(out) == 0 {
		c.metrics.incGetMiss()
		return nil, nil
	}
	c.metrics.incGetHit()

	// Defensive copy: out may alias a Segment's own backing array via
	// RecordsFrom, and Segments must never be mutated after construction.
	cp := make([]Record[P], len(out))
	copy(cp, out)
	return cp, nil
}

// PutRecords builds a candidate segment starting at pos.Seq from
// records, trims it against whatever already occupies its range, and
// inserts the non-overlapping remainder into pos.Shard, then evicts the
// oldest segments (across all shards, in insertion order) until the
// cache's total byte size is back within its bound.
//
// records must be non-empty and sorted strictly ascending by sequence
// number, with every sequence number >= pos.Seq.
//
// Existing segments are never mutated or removed by a put: the floor
// segment at pos.Seq supplies the trim's lower bound, the higher
// segment its upper bound, and only the candidate is clipped to fit
// between them. Re-inserting records that are already fully covered by
// an existing segment trims the candidate down to empty and is a
// no-op: no index mutation, no insertion-log entry, no size-counter
// change.
func (c *Cache[S, P]) PutRecords(pos Position[S], records []Record[P]) error {
	candidate, err := segment.New(pos.Seq, records)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	lock := c.locks.Lock(pos.Shard)
	lock.Lock()
	st := c.getOrCreateShardState(pos.Shard)

	var lower, upper *SeqNum
	if floor, ok := st.idx.Floor(pos.Seq); ok {
		end := floor.End()
		lower = &end
	}
	if higher, ok := st.idx.Higher(pos.Seq); ok {
		start := higher.Start()
		upper = &start
	}
	trimmed, err := candidate.SubSegment(lower, upper)
	if err != nil {
		lock.Unlock()
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if trimmed.IsEmpty() {
		lock.Unlock()
		return nil
	}
	st.assertNoOverlap(trimmed)
	st.idx.Put(trimmed)
	lock.Unlock()

	c.size.Add(trimmed.ByteSize())
	c.insertLog.Push(insertlog.Entry[S, SeqNum]{Shard: pos.Shard, Start: trimmed.Start()})
	c.metrics.incPut()
	c.metrics.setBytes(c.size.Load())

	c.evict()
	return nil
}

// evict pops the oldest still-tracked segments, across all shards, in
// strict insertion order, until the cache's total size is within bound
// or the insertion log runs dry. It is always called with no shard lock
// held by the calling goroutine, since it acquires per-shard stripe
// locks itself and two Lock(id) calls for different ids may collide on
// the same stripe.
func (c *Cache[S, P]) evict() {
	var removed int
	defer func() {
		if removed > 0 {
			c.logger.Debug("streamcache: eviction pass complete",
				zap.Int("segments_removed", removed), zap.Int64("bytes", c.size.Load()))
		}
	}()

	for c.size.Load() > c.maxBytes {
		e, ok := c.insertLog.Pop()
		if !ok {
			c.logger.Warn("streamcache: size bound exceeded with nothing left to evict",
				zap.Int64("bytes", c.size.Load()), zap.Int64("max_bytes", c.maxBytes))
			return // a concurrent PutRecords has added its bytes but not yet pushed its log entry
		}

		lock := c.locks.Lock(e.Shard)
		lock.Lock()
		st, ok := c.shardState(e.Shard)
		if !ok {
			lock.Unlock()
			continue // shard already gone
		}
		seg, ok := st.idx.Remove(e.Start)
		if ok && st.idx.IsEmpty() {
			// Dropped under the shard lock, so a racing PutRecords either
			// sees this state before the removal or creates a fresh one.
			c.dir.Delete(e.Shard)
		}
		lock.Unlock()
		if !ok {
			c.logger.Debug("streamcache: insertion-log entry stale, skipping",
				zap.Any("shard", e.Shard))
			continue // no segment at this start any more
		}

		c.size.Add(-seg.ByteSize())
		c.metrics.incEvicted()
		c.metrics.setBytes(c.size.Load())
		removed++
		if c.observer != nil {
			c.observer(e.Shard, seg.Start(), seg.End(), seg.ByteSize())
		}
	}
}

// Stats reports a point-in-time snapshot of the cache's occupancy.
type Stats struct {
	Shards   int   `json:"shards"`
	Segments int   `json:"segments"`
	Bytes    int64 `json:"bytes"`
}

// Stats returns a snapshot of the cache's current occupancy. Safe to
// call concurrently with GetRecords/PutRecords; the snapshot is not
// atomic across shards.
func (c *Cache[S, P]) Stats() Stats {
	var shards, segments int
	c.dir.Range(func(k, v any) bool {
		lock := c.locks.Lock(k.(S))
		lock.RLock()
		segments += v.(*shardState[P]).idx.Len()
		lock.RUnlock()
		shards++
		return true
	})
	c.metrics.setSegments(int64(segments))
	return Stats{Shards: shards, Segments: segments, Bytes: c.size.Load()}
}

// Close releases the cache's shard state. A Cache runs no background
// goroutines (eviction happens inline on PutRecords), so Close has
// nothing to stop; it exists so callers have a symmetric teardown point
// and so a Cache can be dropped without waiting on anything.
func (c *Cache[S, P]) Close() {
	c.dir.Range(func(k, _ any) bool {
		c.dir.Delete(k)
		return true
	})
}

func (c *Cache[S, P]) shardState(id S) (*shardState[P], bool) {
	v, ok := c.dir.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*shardState[P]), true
}

func (c *Cache[S, P]) getOrCreateShardState(id S) *shardState[P] {
	if st, ok := c.shardState(id); ok {
		return st
	}
	st := &shardState[P]{idx: shardindex.New[P]()}
	actual, _ := c.dir.LoadOrStore(id, st)
	return actual.(*shardState[P])
}

// assertNoOverlap panics if the index holds a neighbor of trimmed that
// overlaps its range. Called after trimming the incoming candidate
// against the floor/higher neighbors at its original start, while
// still holding the shard's write lock, as a last-line check that the
// trim actually produced a range free of existing segments; a failure
// here means a bug in the trim arithmetic above, never caller input.
func (st *shardState[P]) assertNoOverlap(trimmed *segment.Segment[P]) {
	if pred, ok := st.idx.Floor(trimmed.Start()); ok {
		if pred.End().Cmp(trimmed.Start()) > 0 {
			invariantViolation("predecessor segment overlaps the trimmed segment about to be inserted")
		}
	}
	if next, ok := st.idx.Higher(trimmed.Start()); ok {
		if trimmed.End().Cmp(next.Start()) > 0 {
			invariantViolation("successor segment overlaps the trimmed segment about to be inserted")
		}
	}
}

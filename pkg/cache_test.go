package cache

// cache_test.go exercises GetRecords/PutRecords against the concrete
// read/write scenarios a sequential consumer of a sharded stream
// actually hits: an empty shard, a single-segment hit, a read stitched
// across two contiguous segments, a read that stops at a gap, trimming
// an overlapping put against existing neighbors, idempotent re-insertion,
// eviction under a byte-size bound, and a limit shorter than what's
// available.
//
// © 2025 streamcache authors. MIT License.

import (
	"testing"

	"golang.org/x/sync/errgroup"
)

// allRecords is a limit comfortably larger than anything any test below
// inserts, standing in for "read everything available" — GetRecords
// requires a positive limit and has no "unbounded" sentinel.
const allRecords = 1000

func put(t *testing.T, c *Cache[string, string], shard string, seq int64, n int, byteSize int64) {
	t.Helper()
	recs := make([]Record[string], n)
	for i := 0; i < n; i++ {
		recs[i] = Record[string]{Seq: MustSeqNum(seq + int64(i)), ByteSize: byteSize, Payload: "p"}
	}
	if err := c.PutRecords(Position[string]{Shard: shard, Seq: MustSeqNum(seq)}, recs); err != nil {
		t.Fatalf("PutRecords: %v", err)
	}
}

func TestGetRecordsOnEmptyShardMisses(t *testing.T) {
	c, err := New[string, string](1 << 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.GetRecords(Position[string]{Shard: "a", Seq: ZeroSeqNum}, allRecords)
	if err != nil {
		t.Fatalf("GetRecords: %v", err)
	}
	if got != nil {
		t.Fatalf("GetRecords on empty shard = %v, want nil", got)
	}
}

func TestGetRecordsRejectsNonPositiveLimit(t *testing.T) {
	c, err := New[string, string](1 << 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, limit := range []int{0, -1} {
		if _, err := c.GetRecords(Position[string]{Shard: "a", Seq: ZeroSeqNum}, limit); err == nil {
			t.Fatalf("GetRecords with limit=%d: expected ErrInvalidArgument, got nil", limit)
		}
	}
}

func TestGetRecordsSingleSegmentHit(t *testing.T) {
	c, err := New[string, string](1 << 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	put(t, c, "a", 0, 5, 10)

	got, err := c.GetRecords(Position[string]{Shard: "a", Seq: MustSeqNum(1)}, allRecords)
	if err != nil {
		t.Fatalf("GetRecords: %v", err)
	}
	if len(got) != 4 || !got[0].Seq.Equal(MustSeqNum(1)) {
		t.Fatalf("GetRecords(seq=1) = %+v, want 4 records starting at seq 1", got)
	}
}

func TestGetRecordsStitchesContiguousSegments(t *testing.T) {
	c, err := New[string, string](1 << 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	put(t, c, "a", 0, 3, 10)
	put(t, c, "a", 3, 3, 10)

	got, err := c.GetRecords(Position[string]{Shard: "a", Seq: ZeroSeqNum}, allRecords)
	if err != nil {
		t.Fatalf("GetRecords: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("GetRecords spanning two segments = %d records, want 6", len(got))
	}
	for i, r := range got {
		if !r.Seq.Equal(MustSeqNum(int64(i))) {
			t.Fatalf("record %d has seq %v, want %d", i, r.Seq, i)
		}
	}
}

func TestGetRecordsStopsAtGap(t *testing.T) {
	c, err := New[string, string](1 << 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	put(t, c, "a", 0, 3, 10)
	put(t, c, "a", 10, 3, 10) // not contiguous: leaves a gap at [3,10)

	got, err := c.GetRecords(Position[string]{Shard: "a", Seq: ZeroSeqNum}, allRecords)
	if err != nil {
		t.Fatalf("GetRecords: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("GetRecords across a gap = %d records, want 3 (stop before the gap)", len(got))
	}
}

func TestGetRecordsLimitShorterThanSegment(t *testing.T) {
	c, err := New[string, string](1 << 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	put(t, c, "a", 0, 10, 10)

	got, err := c.GetRecords(Position[string]{Shard: "a", Seq: ZeroSeqNum}, 3)
	if err != nil {
		t.Fatalf("GetRecords: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("GetRecords with limit=3 returned %d records, want 3", len(got))
	}
}

func TestPutRecordsTrimsCandidateAgainstPredecessor(t *testing.T) {
	c, err := New[string, string](1 << 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	put(t, c, "a", 100, 2, 10) // [100,102)
	put(t, c, "a", 101, 2, 10) // [101,103) candidate trimmed by the [100,102) floor to [102,103)

	got, err := c.GetRecords(Position[string]{Shard: "a", Seq: MustSeqNum(100)}, allRecords)
	if err != nil {
		t.Fatalf("GetRecords: %v", err)
	}
	// The first put's [100,102) segment is untouched; only the second
	// put's own candidate is trimmed, down to its non-overlapping
	// remainder [102,103). Reading from 100 stitches both together with
	// no gap: records at 100, 101, 102.
	if len(got) != 3 {
		t.Fatalf("GetRecords after trim = %d records, want 3", len(got))
	}
	for i, want := range []int64{100, 101, 102} {
		if !got[i].Seq.Equal(MustSeqNum(want)) {
			t.Fatalf("record %d has seq %v, want %d", i, got[i].Seq, want)
		}
	}
	stats := c.Stats()
	if stats.Segments != 2 {
		t.Fatalf("Stats().Segments = %d, want 2 ([100,102) untouched, [102,103) trimmed candidate)", stats.Segments)
	}
}

func TestPutRecordsFullyCoveredCandidateIsNoOp(t *testing.T) {
	c, err := New[string, string](1 << 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	put(t, c, "a", 0, 10, 10) // [0,10)

	before := c.Stats()
	put(t, c, "a", 3, 2, 10) // [3,5), fully covered by [0,10): trimmed to empty, no-op
	after := c.Stats()

	if after != before {
		t.Fatalf("Stats() changed on a fully-covered put: before=%+v after=%+v", before, after)
	}
}

func TestPutRecordsExactReinsertIsIdempotent(t *testing.T) {
	c, err := New[string, string](1 << 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	put(t, c, "a", 0, 5, 10) // [0,5)

	before := c.Stats()
	put(t, c, "a", 0, 5, 10) // exact re-insertion: trimmed candidate is empty
	after := c.Stats()

	if after != before {
		t.Fatalf("Stats() changed on an exact re-insertion: before=%+v after=%+v", before, after)
	}
}

func TestEvictionReclaimsOldestInsertedSegmentFirst(t *testing.T) {
	var evicted []string
	c, err := New[string, string](25,
		WithEvictionObserver[string, string](func(shard string, start, end SeqNum, byteSize int64) {
			evicted = append(evicted, shard)
		}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	put(t, c, "a", 0, 1, 10) // oldest
	put(t, c, "b", 0, 1, 10)
	put(t, c, "c", 0, 1, 10) // pushes total past 25, evicts "a" first

	if len(evicted) != 1 || evicted[0] != "a" {
		t.Fatalf("evicted = %v, want [\"a\"] (oldest insert first)", evicted)
	}
	if got := c.Stats().Bytes; got > 25 {
		t.Fatalf("Stats().Bytes = %d, want <= 25", got)
	}

	got, err := c.GetRecords(Position[string]{Shard: "a", Seq: ZeroSeqNum}, allRecords)
	if err != nil {
		t.Fatalf("GetRecords: %v", err)
	}
	if got != nil {
		t.Fatalf("GetRecords for evicted shard = %v, want nil", got)
	}
}

func TestConcurrentPutAndGetAcrossShards(t *testing.T) {
	c, err := New[int, string](1 << 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	const shards = 32
	const recordsPerShard = 64

	var g errgroup.Group
	for s := 0; s < shards; s++ {
		shard := s
		g.Go(func() error {
			for i := 0; i < recordsPerShard; i++ {
				rec := Record[string]{Seq: MustSeqNum(int64(i)), ByteSize: 8, Payload: "p"}
				if err := c.PutRecords(Position[int]{Shard: shard, Seq: rec.Seq}, []Record[string]{rec}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	for s := 0; s < shards; s++ {
		shard := s
		g.Go(func() error {
			for i := 0; i < recordsPerShard; i++ {
				if _, err := c.GetRecords(Position[int]{Shard: shard, Seq: ZeroSeqNum}, 1); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent put/get: %v", err)
	}
}

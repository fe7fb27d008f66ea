// Package segment implements Segment, the cache's central entity: an
// immutable half-open sequence-number interval plus the records whose
// sequence numbers fall in it.
//
// Segments are constructed once and never mutated; "modification"
// (SubSegment) always returns a new Segment. That immutability is what
// lets a reader in GetRecords safely copy a slice of Records while the
// evictor concurrently removes the Segment from its shard index.
//
// © 2025 streamcache authors. MIT License.
package segment

import (
	"errors"
	"sort"

	"github.com/Voskan/streamcache/internal/record"
	"github.com/Voskan/streamcache/internal/seqnum"
)

// SeqNum and Recorder are re-exported so callers of this package never
// need to import internal/seqnum or internal/record directly.
type (
	SeqNum   = seqnum.SeqNum
	Recorder = record.Recorder
)

// ErrInvalidRange is returned when a Segment's bounds or records are
// inconsistent (unsorted records, a record outside [start, end), or
// start > end). These indicate programmer error (a caller building an
// invalid candidate Segment), not user input passed through the public
// API's validated surface.
var ErrInvalidRange = errors.New("segment: invalid range or records")

// Segment is an immutable [Start, End) interval of a shard's sequence
// space, plus the sorted records whose sequence numbers fall inside it.
type Segment[P any] struct {
	start    SeqNum
	end      SeqNum
	records  []record.Record[P]
	byteSize int64
}

// New constructs a Segment starting at start, with End computed as the
// last record's sequence number plus one. records must be non-empty and
// sorted strictly ascending by sequence number, and every record's
// sequence number must be >= start.
func New[P any](start SeqNum, records []record.Record[P]) (*Segment[P], error) {
	if len(records) == 0 {
		return nil, ErrInvalidRange
	}
	end := records[len(records)-1].Seq.Add1()
	return NewRange(start, end, records)
}

// NewRange constructs a Segment over the explicit half-open interval
// [start, end), which may be empty (start == end, with no records).
func NewRange[P any](start, end SeqNum, records []record.Record[P]) (*Segment[P], error) {
	if start.Cmp(end) > 0 {
		return nil, ErrInvalidRange
	}
	var size int64
	for i, r := range records {
		if r.Seq.Cmp(start) < 0 || r.Seq.Cmp(end) >= 0 {
			return nil, ErrInvalidRange
		}
		if i > 0 && records[i-1].Seq.Cmp(r.Seq) >= 0 {
			return nil, ErrInvalidRange
		}
		size += r.ByteSize
	}
	// Defensive copy: the Segment owns its records slice for the rest of
	// its life, independent of whatever the caller does with the slice
	// they passed in.
	owned := make([]record.Record[P], len(records))
	copy(owned, records)
	return &Segment[P]{start: start, end: end, records: owned, byteSize: size}, nil
}

// Start returns the segment's inclusive lower bound.
func (s *Segment[P]) Start() SeqNum { return s.start }

// End returns the segment's exclusive upper bound.
func (s *Segment[P]) End() SeqNum { return s.end }

// ByteSize returns the sum of the upstream byte sizes of the segment's
// records.
func (s *Segment[P]) ByteSize() int64 { return s.byteSize }

// IsEmpty reports whether the segment covers no sequence numbers.
// Callers must not insert an empty segment into a shard index.
func (s *Segment[P]) IsEmpty() bool { return s.start.Cmp(s.end) == 0 }

// Len returns the number of records in the segment.
func (s *Segment[P]) Len() int { return len(s.records) }

// Records returns the segment's records in ascending sequence-number
// order. The returned slice must be treated as read-only by the caller:
// it is the segment's own backing array, not a copy.
func (s *Segment[P]) Records() []record.Record[P] { return s.records }

// RecordsFrom returns the suffix of the segment's records whose sequence
// numbers are >= seq. Precondition: Start() <= seq < End(); a call
// violating it does not panic: a seq below Start() yields every record
// and a seq at or past End() yields an empty slice. The cache facade
// guarantees the precondition via a floor lookup before calling this
// method.
func (s *Segment[P]) RecordsFrom(seq SeqNum) []record.Record[P] {
	idx := sort.Search(len(s.records), func(i int) bool {
		return s.records[i].Seq.Cmp(seq) >= 0
	})
	return s.records[idx:]
}

// SubSegment returns the segment clipped to the intersection with
// [from, to), where from and to are each optionally present (nil means
// "no bound on this side"). If both are present, from <= to is
// required; violating it is a caller error. If both are nil,
// SubSegment returns s unchanged. Clipping never widens the segment.
// If the clipped range collapses to start == end, or [from, to) does
// not intersect s at all, the returned segment IsEmpty and callers
// must not insert it into a shard index.
func (s *Segment[P]) SubSegment(from, to *SeqNum) (*Segment[P], error) {
	if from != nil && to != nil && from.Cmp(*to) > 0 {
		return nil, ErrInvalidRange
	}
	newStart := s.start
	if from != nil && from.Cmp(newStart) > 0 {
		newStart = *from
	}
	newEnd := s.end
	if to != nil && to.Cmp(newEnd) < 0 {
		newEnd = *to
	}
	if newStart.Cmp(newEnd) > 0 {
		// from/to is a valid, non-inverted window that simply doesn't
		// intersect s: the clipped result is empty, not an error.
		return NewRange[P](newStart, newStart, nil)
	}
	if newStart.Cmp(s.start) == 0 && newEnd.Cmp(s.end) == 0 {
		return s, nil
	}
	if newStart.Cmp(newEnd) == 0 {
		return NewRange[P](newStart, newEnd, nil)
	}
	lo := sort.Search(len(s.records), func(i int) bool {
		return s.records[i].Seq.Cmp(newStart) >= 0
	})
	hi := sort.Search(len(s.records), func(i int) bool {
		return s.records[i].Seq.Cmp(newEnd) >= 0
	})
	return NewRange(newStart, newEnd, s.records[lo:hi])
}

// Equal reports structural equality over (start, end, records).
func (s *Segment[P]) Equal(other *Segment[P], recordsEqual func(a, b record.Record[P]) bool) bool {
	if other == nil {
		return false
	}
	if s.start.Cmp(other.start) != 0 || s.end.Cmp(other.end) != 0 {
		return false
	}
	if len(s.records) != len(other.records) {
		return false
	}
	for i := range s.records {
		if !recordsEqual(s.records[i], other.records[i]) {
			return false
		}
	}
	return true
}

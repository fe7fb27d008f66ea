package cache

// types.go re-exports the foundational, dependency-free types that live
// under internal/ (so that internal/segment and internal/shardindex can
// depend on them without an import cycle back through pkg) as aliases.
//
// © 2025 streamcache authors. MIT License.

import (
	"github.com/Voskan/streamcache/internal/record"
	"github.com/Voskan/streamcache/internal/seqnum"
)

// SeqNum is a non-negative, arbitrary-precision sequence number.
type SeqNum = seqnum.SeqNum

// ZeroSeqNum is the sequence number 0.
var ZeroSeqNum = seqnum.ZeroSeqNum

// ErrNegativeSeqNum is returned when a constructed SeqNum would be
// negative.
var ErrNegativeSeqNum = seqnum.ErrNegativeSeqNum

// NewSeqNum constructs a SeqNum from a non-negative int64.
func NewSeqNum(n int64) (SeqNum, error) { return seqnum.NewSeqNum(n) }

// MustSeqNum is NewSeqNum but panics on a negative input.
func MustSeqNum(n int64) SeqNum { return seqnum.MustSeqNum(n) }

// NewSeqNumFromString parses a base-10 sequence number.
func NewSeqNumFromString(s string) (SeqNum, error) { return seqnum.NewSeqNumFromString(s) }

// Recorder is satisfied by anything carrying a sequence number.
type Recorder = record.Recorder

// Record is one opaque, sequence-numbered, sized value from a shard's
// change-data stream.
type Record[P any] = record.Record[P]

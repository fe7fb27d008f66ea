// Package record defines Record, the opaque payload the cache stores.
// The record payload format itself is out of scope: the cache only ever
// looks at a record's sequence number and upstream byte size.
//
// © 2025 streamcache authors. MIT License.
package record

import "github.com/Voskan/streamcache/internal/seqnum"

// SeqNum is an alias so this package's exported signatures read
// naturally without forcing every caller to import internal/seqnum
// directly.
type SeqNum = seqnum.SeqNum

// Recorder is satisfied by anything carrying a sequence number. Record[P]
// implements it; Position.After accepts a Recorder so callers never have
// to reach into a Record's fields by hand.
type Recorder interface {
	SequenceNumber() SeqNum
}

// Record is one opaque, sequence-numbered, sized value from a shard's
// change-data stream. P is the caller's payload type; the cache never
// inspects it.
type Record[P any] struct {
	// Seq is the record's position within its shard's sequence space.
	Seq SeqNum

	// ByteSize is the upstream-reported size of the record, in bytes.
	// Global size accounting sums this field, never a locally computed
	// in-memory size.
	ByteSize int64

	// Payload is the caller-supplied record body. Opaque to the cache.
	Payload P
}

// SequenceNumber implements Recorder.
func (r Record[P]) SequenceNumber() SeqNum { return r.Seq }

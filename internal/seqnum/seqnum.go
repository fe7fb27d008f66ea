// Package seqnum implements SeqNum, the cache's sequence-number type.
// Stream sequence numbers are treated as big-integers: they must not be
// silently truncated by a fixed-width machine integer, so SeqNum wraps
// math/big.Int rather than uint64.
//
// SeqNum values are treated as immutable by every exported method: all
// arithmetic returns a new SeqNum instead of mutating the receiver, so a
// SeqNum embedded in a Segment or Record can be shared freely across
// goroutines without a lock.
//
// This package lives under internal/ so that internal/segment and
// internal/shardindex can depend on it without creating an import cycle
// with pkg, which re-exports SeqNum via a type alias.
//
// © 2025 streamcache authors. MIT License.
package seqnum

import (
	"errors"
	"math/big"
)

// ErrNegativeSeqNum is returned by NewSeqNum / NewSeqNumFromBigInt when
// the supplied value is negative.
var ErrNegativeSeqNum = errors.New("streamcache: sequence number must be non-negative")

// SeqNum is a non-negative, arbitrary-precision sequence number.
type SeqNum struct {
	v *big.Int
}

// ZeroSeqNum is the sequence number 0.
var ZeroSeqNum = SeqNum{v: big.NewInt(0)}

// NewSeqNum constructs a SeqNum from a non-negative int64.
func NewSeqNum(n int64) (SeqNum, error) {
	if n < 0 {
		return SeqNum{}, ErrNegativeSeqNum
	}
	return SeqNum{v: big.NewInt(n)}, nil
}

// MustSeqNum is NewSeqNum but panics on a negative input. Convenient for
// tests and literals known at compile time to be non-negative.
func MustSeqNum(n int64) SeqNum {
	s, err := NewSeqNum(n)
	if err != nil {
		panic(err)
	}
	return s
}

// NewSeqNumFromBigInt constructs a SeqNum from a big.Int, copying it so
// the caller remains free to mutate the original.
func NewSeqNumFromBigInt(n *big.Int) (SeqNum, error) {
	if n == nil {
		return SeqNum{}, errors.New("streamcache: nil sequence number")
	}
	if n.Sign() < 0 {
		return SeqNum{}, ErrNegativeSeqNum
	}
	return SeqNum{v: new(big.Int).Set(n)}, nil
}

// NewSeqNumFromString parses a base-10 sequence number, e.g. one decoded
// from an upstream stream API's iterator token.
func NewSeqNumFromString(s string) (SeqNum, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return SeqNum{}, errors.New("streamcache: invalid sequence number string")
	}
	return NewSeqNumFromBigInt(n)
}

// IsZero reports whether the sequence number is uninitialized (the zero
// value of SeqNum, as opposed to the sequence number 0).
func (s SeqNum) IsZero() bool {
	return s.v == nil
}

// BigInt returns a copy of the underlying big.Int so callers cannot
// mutate the SeqNum through the returned pointer.
func (s SeqNum) BigInt() *big.Int {
	if s.v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(s.v)
}

// String renders the sequence number in base 10.
func (s SeqNum) String() string {
	if s.v == nil {
		return "0"
	}
	return s.v.String()
}

// Cmp compares two sequence numbers: -1 if s < other, 0 if equal, +1 if
// s > other. A zero-value SeqNum compares as 0.
func (s SeqNum) Cmp(other SeqNum) int {
	return s.normalized().Cmp(other.normalized())
}

// Less reports whether s < other.
func (s SeqNum) Less(other SeqNum) bool { return s.Cmp(other) < 0 }

// Equal reports whether s == other.
func (s SeqNum) Equal(other SeqNum) bool { return s.Cmp(other) == 0 }

// Add1 returns s+1. Used to compute a segment's end from its last
// record, and by Position.After.
func (s SeqNum) Add1() SeqNum {
	return SeqNum{v: new(big.Int).Add(s.normalized(), big.NewInt(1))}
}

// Sub returns s-other. The result is only meaningful when s >= other;
// the cache never subtracts sequence numbers in a way that could yield a
// negative value (segment lengths are counted via the records slice, not
// via End.Sub(Start)), so this helper is unexported-adjacent and mostly
// useful to tests and callers measuring coverage gaps.
func (s SeqNum) Sub(other SeqNum) *big.Int {
	return new(big.Int).Sub(s.normalized(), other.normalized())
}

func (s SeqNum) normalized() *big.Int {
	if s.v == nil {
		return big.NewInt(0)
	}
	return s.v
}

// Package unsafehelpers centralises the one unavoidable use of the
// `unsafe` standard-library package in streamcache so that the rest of
// the module stays clean and this file alone carries the audit burden:
// reading an arbitrary comparable value's bytes to mix into a hash.
//
// © 2025 streamcache authors. MIT License.
package unsafehelpers

import "unsafe"

// ScalarBytes returns a read-only view of v's in-memory representation.
// Used by internal/locktable to hash shard ids whose type isn't string
// or []byte (ints, uint64s, small structs) without a reflection-based
// hash. The returned slice is only ever read, never retained past the
// call that produced it, and v must outlive the call (true for any
// addressable local the caller passes in).
func ScalarBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}

package cache

// errors.go implements the package's error taxonomy.
//
// Invalid-argument errors are returned synchronously and never mutate
// cache state; wrap ErrInvalidArgument with fmt.Errorf("%w: ...") and
// callers can test for it with errors.Is. Internal-inconsistency errors
// (a broken invariant that must not occur) are not expected in practice;
// surfacing them as a panic makes the bug visible immediately rather
// than attempting recovery.
//
// © 2025 streamcache authors. MIT License.

import "errors"

// ErrInvalidArgument is the sentinel wrapped by every argument-validation
// failure raised by GetRecords and PutRecords. PutRecords wraps the
// segment package's construction and SubSegment errors in it; those
// functions themselves return segment.ErrInvalidRange.
var ErrInvalidArgument = errors.New("streamcache: invalid argument")

// invariantViolation panics with a message identifying the broken
// invariant. Called only from code paths that indicate a bug in this
// package, never a condition a caller can trigger through valid use of
// the public API.
func invariantViolation(msg string) {
	panic("streamcache: invariant violation: " + msg)
}

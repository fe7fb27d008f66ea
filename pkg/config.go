package cache

// config.go defines the internal configuration object and the set of
// functional options that can be passed to New[S,P]. A generic Option is
// used so that callbacks (the eviction observer) retain full type safety
// with respect to the concrete shard id type S and payload type P chosen
// by the caller.
//
// All fields are initialised with sensible defaults in defaultConfig().
// Options never allocate unless strictly necessary; they capture
// pointers to external objects (registry, logger). The config struct
// itself is never exposed: callers can only influence behaviour through
// Option[S,P], which keeps the door open to add knobs later without
// breaking callers.
//
// © 2025 streamcache authors. MIT License.

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Voskan/streamcache/internal/locktable"
)

// EvictionObserver is invoked synchronously whenever a segment is
// evicted to make room for new records. It runs on the goroutine that
// triggered the eviction (a PutRecords call) and must not block: heavy
// work should be handed off to another goroutine.
type EvictionObserver[S comparable] func(shard S, start, end SeqNum, byteSize int64)

// Option is the functional option passed to New. It is generic because
// WithEvictionObserver refers to the concrete shard id type S.
type Option[S comparable, P any] func(*config[S, P])

// config bundles every knob that influences cache behaviour. All fields
// are immutable once the Cache is constructed.
type config[S comparable, P any] struct {
	maxBytes    int64
	lockStripes int

	registry *prometheus.Registry
	logger   *zap.Logger
	observer EvictionObserver[S]
}

func defaultConfig[S comparable, P any](maxBytes int64) *config[S, P] {
	return &config[S, P]{
		maxBytes:    maxBytes,
		lockStripes: locktable.DefaultStripes,
		logger:      zap.NewNop(),
		registry:    nil, // caller must opt in to metrics
	}
}

// WithMetrics enables Prometheus metrics collection for the cache
// instance, registered against reg. Metrics are aggregated across
// shards rather than labeled per shard: shard ids are caller-supplied
// and unbounded, so per-shard labels would give Prometheus an unbounded
// cardinality series.
func WithMetrics[S comparable, P any](reg *prometheus.Registry) Option[S, P] {
	return func(c *config[S, P]) {
		c.registry = reg
	}
}

// WithLogger plugs an external zap.Logger. The cache logs construction,
// each eviction pass that removes segments, and stale insertion-log
// entries at Debug, and a cache still over its bound with an empty
// insertion log at Warn. GetRecords never logs.
func WithLogger[S comparable, P any](l *zap.Logger) Option[S, P] {
	return func(c *config[S, P]) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLockStripes overrides the number of striped per-shard locks the
// cache uses to serialize access to individual shards. n <= 0 falls
// back to locktable.DefaultStripes. A larger stripe count reduces
// false-sharing between unrelated shards at the cost of more memory.
func WithLockStripes[S comparable, P any](n int) Option[S, P] {
	return func(c *config[S, P]) {
		if n > 0 {
			c.lockStripes = n
		}
	}
}

// WithEvictionObserver registers a function invoked whenever a segment
// is evicted to satisfy the size bound. The callback runs inline on the
// goroutine performing the eviction and must not block.
func WithEvictionObserver[S comparable, P any](obs EvictionObserver[S]) Option[S, P] {
	return func(c *config[S, P]) {
		c.observer = obs
	}
}

func applyOptions[S comparable, P any](cfg *config[S, P], opts []Option[S, P]) error {
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.maxBytes <= 0 {
		return errInvalidMaxBytes
	}
	if cfg.lockStripes <= 0 {
		cfg.lockStripes = locktable.DefaultStripes
	}
	return nil
}

var errInvalidMaxBytes = errors.New("streamcache: max byte size must be > 0")

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"
)

// NoExpiration marks an entry that never goes stale. Used for the persisted
// bearer token, which is only removed by an explicit Delete or Clear.
const NoExpiration time.Duration = -1

// Cache is a key-value store with per-entry TTL. Expired entries are
// reclaimed lazily on read; backends may additionally sweep in the
// background.
type Cache interface {
	// Get retrieves a value from the cache. A stale or missing entry
	// returns found=false with no error.
	Get(ctx context.Context, key string) (bool, any, error)
	// Set stores a value with a TTL. If ttl is zero the cache's configured
	// default TTL is used; NoExpiration disables expiry for the entry.
	Set(ctx context.Context, key string, val any, ttl time.Duration) error
	// Delete removes a key unconditionally. The next Get is a cold miss.
	Delete(ctx context.Context, key string) (bool, error)
	// Clear removes every entry.
	Clear(ctx context.Context) error
	// Close shuts down the cache.
	Close() error
}

type entry struct {
	object  any
	expires time.Time
}

func (e *entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && e.expires.Before(now)
}

// GetTyped retrieves a typed value from the cache.
// For in-memory caches, it performs a direct type assertion.
// For serialized caches (Redis, file), it deserializes from []byte using msgpack.
func GetTyped[T any](ctx context.Context, c Cache, key string) (bool, T, error) {
	found, val, err := c.Get(ctx, key)
	if !found || err != nil {
		var zero T
		return false, zero, err
	}
	if typed, ok := val.(T); ok {
		return true, typed, nil
	}
	if data, ok := val.([]byte); ok {
		var result T
		if err := msgpack.Unmarshal(data, &result); err != nil {
			var zero T
			return false, zero, fmt.Errorf("cache: failed to unmarshal value: %w", err)
		}
		return true, result, nil
	}
	var zero T
	return false, zero, fmt.Errorf("cache: cannot convert value of type %T to %T", val, zero)
}

// DefaultExpires is the default TTL used when Set is called with ttl == 0.
const DefaultExpires = 5 * time.Minute

// DefaultQueryTimeout is the per-operation timeout for cache backends that
// perform I/O (Redis, file). Prevents indefinite hangs on slow or
// unresponsive storage.
const DefaultQueryTimeout = 5 * time.Second

// config holds the resolved configuration for a cache implementation.
type config struct {
	defaultExpires time.Duration
	queryTimeout   time.Duration
	expiryCheck    time.Duration
	prefix         string
}

// Option configures a Cache implementation.
type Option func(*config)

func defaultConfig() config {
	return config{
		defaultExpires: DefaultExpires,
		queryTimeout:   DefaultQueryTimeout,
		expiryCheck:    time.Minute,
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithExpires sets the default TTL for cached values. This is used when
// Set is called with ttl == 0. Defaults to DefaultExpires (5 minutes).
func WithExpires(d time.Duration) Option {
	return func(c *config) { c.defaultExpires = d }
}

// WithQueryTimeout sets the per-operation timeout for I/O-backed caches
// (Redis, file). Defaults to DefaultQueryTimeout (5 seconds).
func WithQueryTimeout(d time.Duration) Option {
	return func(c *config) { c.queryTimeout = d }
}

// WithExpiryCheck sets the interval for background expired entry cleanup.
// Applies to the in-memory backend. Defaults to 1 minute.
func WithExpiryCheck(d time.Duration) Option {
	return func(c *config) { c.expiryCheck = d }
}

// WithPrefix sets the key prefix for namespacing cache keys.
// Applies to the Redis backend. Defaults to empty (no prefix).
func WithPrefix(p string) Option {
	return func(c *config) { c.prefix = p }
}

// Group deduplicates concurrent cold fetches for the same key so that only
// one underlying fetch runs and every caller receives its result.
type Group struct {
	sf singleflight.Group
}

// FetchConfig configures Fetch and Refresh.
type FetchConfig struct {
	// Key is the cache key. Required.
	Key string
	// TTL applied when storing the fetched value. Zero means the cache's
	// configured default TTL.
	TTL time.Duration
	// Group, when set, coalesces concurrent cold fetches for Key into a
	// single in-flight call. When nil, concurrent cold fetches each hit the
	// source and the last write wins.
	Group *Group
}

// FetchFunc produces a value of type T on a cache miss.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Fetch is a cache-aside helper. If a fresh entry exists for cfg.Key it is
// returned without invoking fn. Otherwise fn is called; on success the
// result is stored under cfg.Key and returned. If fn fails, the error is
// surfaced and nothing is written, so a later call may retry.
// Cache read errors are propagated without invoking fn; cache write errors
// after a successful fetch are swallowed since the caller got their value.
func Fetch[T any](ctx context.Context, cfg FetchConfig, c Cache, fn FetchFunc[T]) (T, error) {
	found, val, err := GetTyped[T](ctx, c, cfg.Key)
	if err != nil {
		var zero T
		return zero, err
	}
	if found {
		return val, nil
	}
	return Refresh(ctx, cfg, c, fn)
}

// Refresh bypasses the freshness check: fn is always invoked and the entry
// is overwritten on success. Fetch semantics otherwise apply.
func Refresh[T any](ctx context.Context, cfg FetchConfig, c Cache, fn FetchFunc[T]) (T, error) {
	if cfg.Group != nil {
		v, err, _ := cfg.Group.sf.Do(cfg.Key, func() (any, error) {
			return fetchAndStore(ctx, cfg, c, fn)
		})
		if err != nil {
			var zero T
			return zero, err
		}
		return v.(T), nil
	}
	return fetchAndStore(ctx, cfg, c, fn)
}

func fetchAndStore[T any](ctx context.Context, cfg FetchConfig, c Cache, fn FetchFunc[T]) (T, error) {
	result, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	_ = c.Set(ctx, cfg.Key, result, cfg.TTL)
	return result, nil
}

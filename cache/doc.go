// Package cache provides the client-side TTL cache used to memoize backend
// reads, with multiple backend implementations and type-safe generic
// helpers.
//
// # Cache Interface
//
// The [Cache] interface defines five operations: [Cache.Get], [Cache.Set],
// [Cache.Delete], [Cache.Clear] and [Cache.Close]. All implementations
// satisfy this interface, so backends can be swapped without changing
// application code. Expiration is lazy: a stale entry is reclaimed when it
// is next read (the in-memory backend also sweeps in the background).
//
// The interface uses [any] for values rather than generics because Go does
// not allow generic methods on interfaces. Type safety is provided by the
// package-level generic functions [GetTyped], [Fetch] and [Refresh].
//
// # Implementations
//
//   - [NewInMemory] — In-process map guarded by a mutex. Fastest option with
//     zero serialization overhead. Lost on process restart.
//
//   - [NewFile] — msgpack snapshot on disk, written atomically on every
//     mutation. Survives restarts; this is the durable store for the
//     session token and profile snapshot.
//
//   - [NewRedis] — Backed by Redis using [github.com/redis/go-redis/v9]
//     with native TTL, for caches shared across processes. The caller owns
//     the [redis.Client] lifecycle.
//
//   - [NewComposite] — Chains caches in order (e.g. in-memory L1 over a
//     file-backed L2). Get returns the first hit; mutations apply to all.
//
// # Cache-aside
//
// [Fetch] combines lookup and population:
//
//	slots, err := cache.Fetch(ctx, cache.FetchConfig{Key: "slots", TTL: 30 * time.Second}, c,
//	    func(ctx context.Context) ([]Slot, error) {
//	        return client.ListSlots(ctx)
//	    })
//
// A fresh entry short-circuits the fetch. On a miss the fetch function runs;
// if it fails, the error is surfaced and nothing is cached, so a later call
// retries. [Refresh] forces the fetch regardless of freshness.
//
// By default two concurrent cold fetches for the same key both hit the
// source and the last write wins. Set [FetchConfig.Group] to coalesce them
// into a single in-flight call ([golang.org/x/sync/singleflight]).
package cache

// Package cache stores decoded history API responses in Redis.
//
// The cache is an opt-in, out-of-process layer: entries are JSON documents
// keyed by request path and query, expiring after a per-kind TTL. Failures
// are returned to the caller, which is expected to fall through to the API.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.Key{
//		Kind:   cache.KindEmperor,
//		Path:   "/emperors",
//		Params: url.Values{"dynasty_id": {"ming"}, "skip": {"0"}, "limit": {"20"}},
//	}
//
//	var emperors []model.EmperorSummary
//	if err := manager.Load(ctx, key, &emperors); errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the API, then:
//		_ = manager.Store(ctx, key, emperors, cache.DefaultTTLPolicy().For(key.Kind))
//	}
//
// # TTLs
//
// DefaultTTLPolicy keeps dynasties for 7 days and emperors, events, persons
// and timelines for 1 day.
//
// # Metrics
//
//   - history_cache_hits_total{kind}
//   - history_cache_misses_total{kind}
//   - history_cache_size_bytes
//   - history_cache_errors_total{operation}
package cache

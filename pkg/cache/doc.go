// Package cache provides an optional Redis-backed cache for storefront pages.
//
// A cached page is the raw JSON body of a successful products query, keyed by
// endpoint, page size and cursor. Entries expire after a fixed TTL; the
// storefront client falls back to the network on any miss or cache error.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.PageKey{
//		Endpoint: "shop.myshopify.com/api/2023-10/graphql.json",
//		Limit:    50,
//		Cursor:   "eyJsYXN0X2lkIjo3fQ==",
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// fetch from the storefront, then:
//		_ = manager.Set(ctx, key, cache.NewEntry(body, 5*time.Minute))
//	}
//
// # Metrics
//
//   - catalog_cache_hits_total - Cache hits
//   - catalog_cache_misses_total - Cache misses (absent or expired)
//   - catalog_cache_errors_total{operation} - Redis or decode failures
package cache

// Package cache provides a generic, thread-safe LRU cache with optional
// time-to-live expiry.
//
//	c := cache.NewLRUCache[string, *Artifact](250, cache.WithTTL(3*time.Hour))
//	defer c.Close()
//
//	c.Put("/srv/public/app.js", artifact)
//	if a, ok := c.Get("/srv/public/app.js"); ok {
//		// a is fresh and now most recently used
//	}
//
// Capacity is a hard bound: inserting a new key into a full cache evicts the
// least recently used entry. Every Put stamps the entry with now+TTL; Get on
// an expired entry deletes it and reports a miss, so correctness never relies
// on the background sweep. The sweep starts on the first Put, runs every TTL
// and stops on Close.
//
// SetEvictCallback observes capacity evictions and expirations, which makes
// it a natural hook for metrics.
package cache

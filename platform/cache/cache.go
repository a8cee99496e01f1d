// Package cache provides namespaced caching of counter values.
package cache

// KeySeparator is used to build complete keys out of parts.
const KeySeparator = "."

const countPrefix = "cache.count"

// CountService caches counts separated by namespace. Incr and Decr only
// mutate keys that are present, so cold counters are seeded from durable
// storage with Add before they take deltas.
type CountService interface {
	// Add stores value under key only if the key is absent and reports if
	// the write happened.
	Add(namespace, key string, value int64) (bool, error)
	// Decr lowers the count by delta, flooring at zero. Returns
	// ErrKeyNotFound for absent keys.
	Decr(namespace, key string, delta int64) (int64, error)
	// Del drops the key. Deleting an absent key is not an error.
	Del(namespace, key string) error
	// Get returns the current count or ErrKeyNotFound.
	Get(namespace, key string) (int64, error)
	// Incr raises the count by delta. Returns ErrKeyNotFound for absent
	// keys.
	Incr(namespace, key string, delta int64) (int64, error)
}

// CountServiceMiddleware is a chainable behaviour modifier for CountService.
type CountServiceMiddleware func(CountService) CountService

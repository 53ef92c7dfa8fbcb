package cache

import "time"

// CacheService defines the behavior for caching mechanisms. Used for the
// platform settings, the debt display value and the session cart store.
type CacheService interface {
	// Get retrieves a value from the cache; false when absent or expired.
	Get(key string) (interface{}, bool)

	// Set adds a value to the cache with a duration
	Set(key string, value interface{}, duration time.Duration)

	// Delete removes a value from the cache
	Delete(key string)

	// Flush removes all items
	Flush()
}

package collection

import (
	"fmt"

	"github.com/storacha/batchmint/pkg/collection/events"
)

// DefaultResolverCacheSize is the number of resolved token URIs a collection
// caches unless configured otherwise.
const DefaultResolverCacheSize = 4096

// Option is an option configuring a Collection.
type Option func(c *Collection) error

// WithResolverCacheSize configures how many resolved token URIs to cache. Zero
// disables the cache.
func WithResolverCacheSize(size int) Option {
	return func(c *Collection) error {
		if size < 0 {
			return fmt.Errorf("resolver cache size must not be negative, got %d", size)
		}
		c.cacheSize = size
		return nil
	}
}

// WithEventSink configures a sink that receives every event after the call
// that emitted it has been committed. Events are always persisted to the
// collection's repository regardless.
func WithEventSink(sink events.Sink) Option {
	return func(c *Collection) error {
		c.sink = sink
		return nil
	}
}

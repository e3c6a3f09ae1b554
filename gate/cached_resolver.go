package gate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Resolver loads a value (typically a principal or a profile) for a key.
type Resolver[K comparable, V any] interface {
	Resolve(ctx context.Context, key K) (V, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

func (f ResolverFunc[K, V]) Resolve(ctx context.Context, key K) (V, error) { return f(ctx, key) }

// CachedResolver wraps a Resolver with a TTL cache so authorization checks do
// not hit the database on every request. Concurrent misses for the same key
// share a single call to the inner resolver. Errors are never cached.
type CachedResolver[K comparable, V any] struct {
	inner Resolver[K, V]
	ttl   time.Duration
	now   func() time.Time

	mu    sync.RWMutex
	cache map[K]cacheEntry[V]
	group singleflight.Group
}

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// NewCachedResolver wraps inner; ttl is how long a resolved value is reused.
func NewCachedResolver[K comparable, V any](inner Resolver[K, V], ttl time.Duration) *CachedResolver[K, V] {
	return &CachedResolver[K, V]{
		inner: inner,
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[K]cacheEntry[V]),
	}
}

// Resolve returns the cached value for key or loads it from the inner resolver.
func (r *CachedResolver[K, V]) Resolve(ctx context.Context, key K) (V, error) {
	r.mu.RLock()
	entry, ok := r.cache[key]
	r.mu.RUnlock()
	if ok && r.now().Before(entry.expiresAt) {
		return entry.value, nil
	}

	v, err, _ := r.group.Do(fmt.Sprint(key), func() (any, error) {
		value, err := r.inner.Resolve(ctx, key)
		if err != nil {
			return value, err
		}
		r.mu.Lock()
		r.cache[key] = cacheEntry[V]{value: value, expiresAt: r.now().Add(r.ttl)}
		r.mu.Unlock()
		return value, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	value, _ := v.(V)
	return value, nil
}

// Invalidate drops key from the cache.
func (r *CachedResolver[K, V]) Invalidate(key K) {
	r.mu.Lock()
	delete(r.cache, key)
	r.mu.Unlock()
}

// InvalidateAll clears the cache.
func (r *CachedResolver[K, V]) InvalidateAll() {
	r.mu.Lock()
	r.cache = make(map[K]cacheEntry[V])
	r.mu.Unlock()
}

package fwdcache

import (
	"sort"
	"strings"
	"sync"
)

// Registry maps channel names to replay caches. Names are compared
// case-insensitively and the capacity of the first creation wins.
type Registry[T any] struct {
	caches map[string]*ReplayCache[T]
	mu     sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		caches: make(map[string]*ReplayCache[T]),
	}
}

// GetOrCreate returns the cache for name, creating it with capacity when
// absent. Later calls with a different capacity get the existing cache.
func (r *Registry[T]) GetOrCreate(name string, capacity int) *ReplayCache[T] {
	key := strings.ToLower(name)

	r.mu.RLock()
	c, ok := r.caches[key]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.caches[key]; ok {
		return c
	}
	c = NewReplayCache[T](name, capacity)
	r.caches[key] = c
	return c
}

// Get returns the cache for name, or nil
func (r *Registry[T]) Get(name string) *ReplayCache[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.caches[strings.ToLower(name)]
}

// Names returns the names the caches were created with, sorted
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.caches))
	for _, c := range r.caches {
		names = append(names, c.name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of caches
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.caches)
}

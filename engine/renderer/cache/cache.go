package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/SakulFlee/Orbital-sub000/engine/logger"
)

// Releaser is implemented by realizations that own GPU resources.
type Releaser interface {
	Release()
}

// Identity keys a cache by pointer identity instead of content.
type Identity[T any] struct {
	ptr *T
}

// IdentityOf returns the identity key of p.
func IdentityOf[T any](p *T) Identity[T] {
	return Identity[T]{ptr: p}
}

type entry[V any] struct {
	value    V
	refs     int
	lastUsed time.Time
}

// cache is the implementation of the Cache interface.
type cache[K comparable, V any] struct {
	label   string
	grace   time.Duration
	now     func() time.Time
	entries map[K]*entry[V]
	mu      *sync.Mutex
}

// Cache maps descriptor keys to realizations. Entries are reference counted, an entry with
// no references that has not been used for the grace interval is dropped by Cycle and
// released when its value implements Releaser.
// A realization is never mutated in place: new content means a new key.
type Cache[K comparable, V any] interface {
	// GetOrCreate returns the cached value for key or creates it, and takes a reference.
	//
	// Parameters:
	//   - key: the descriptor hash, label or identity
	//   - create: called without the lock held when the key is missing
	//
	// Returns:
	//   - V: the cached or newly created value
	//   - error: the error of create, nothing is cached in that case
	GetOrCreate(key K, create func() (V, error)) (V, error)

	// Get returns the value for key and marks it used without taking a reference.
	Get(key K) (V, bool)

	// Insert stores value under key with one reference, releasing any previous value.
	Insert(key K, value V)

	// Release drops one reference taken by GetOrCreate or Insert.
	// The entry stays cached until Cycle finds it idle past the grace interval.
	Release(key K)

	// Remove drops the entry immediately and releases its value.
	Remove(key K)

	// Cycle drops every unreferenced entry idle for longer than the grace interval.
	//
	// Returns:
	//   - int: number of entries dropped
	Cycle() int

	// Cleanup is Cycle evaluated at the given time.
	Cleanup(now time.Time) int

	// Len returns the number of cached entries.
	Len() int

	// Keys returns the cached keys in unspecified order.
	Keys() []K

	// Refs returns the reference count of key, zero when missing.
	Refs(key K) int

	// Clear releases and drops every entry regardless of references.
	Clear()
}

var _ Cache[uint64, Releaser] = &cache[uint64, Releaser]{}

// CacheOption configures a Cache.
type CacheOption func(*settings)

type settings struct {
	label string
	now   func() time.Time
}

// WithLabel names the cache in log output.
func WithLabel(label string) CacheOption {
	return func(s *settings) {
		s.label = label
	}
}

// WithClock replaces time.Now, used by tests.
func WithClock(now func() time.Time) CacheOption {
	return func(s *settings) {
		s.now = now
	}
}

// New creates an empty cache.
//
// Parameters:
//   - grace: how long an unreferenced entry survives
//   - options: optional label and clock
//
// Returns:
//   - Cache[K, V]: the cache
func New[K comparable, V any](grace time.Duration, options ...CacheOption) Cache[K, V] {
	s := &settings{label: "cache", now: time.Now}
	for _, opt := range options {
		opt(s)
	}
	return &cache[K, V]{
		label:   s.label,
		grace:   grace,
		now:     s.now,
		entries: make(map[K]*entry[V]),
		mu:      &sync.Mutex{},
	}
}

func (c *cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		e.refs++
		e.lastUsed = c.now()
		c.mu.Unlock()
		return e.value, nil
	}
	c.mu.Unlock()

	value, err := create()
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// another caller may have raced us to the same key
	if e, ok := c.entries[key]; ok {
		e.refs++
		e.lastUsed = c.now()
		release(value)
		return e.value, nil
	}
	c.entries[key] = &entry[V]{value: value, refs: 1, lastUsed: c.now()}
	return value, nil
}

func (c *cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	e.lastUsed = c.now()
	return e.value, true
}

func (c *cache[K, V]) Insert(key K, value V) {
	c.mu.Lock()
	old, had := c.entries[key]
	c.entries[key] = &entry[V]{value: value, refs: 1, lastUsed: c.now()}
	c.mu.Unlock()

	if had {
		release(old.value)
	}
}

func (c *cache[K, V]) Release(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return
	}
	if e.refs > 0 {
		e.refs--
	}
	e.lastUsed = c.now()
}

func (c *cache[K, V]) Remove(key K) {
	c.mu.Lock()
	e, ok := c.entries[key]
	delete(c.entries, key)
	c.mu.Unlock()

	if ok {
		release(e.value)
	}
}

func (c *cache[K, V]) Cycle() int {
	return c.Cleanup(c.now())
}

func (c *cache[K, V]) Cleanup(now time.Time) int {
	c.mu.Lock()
	var dropped []V
	for k, e := range c.entries {
		if e.refs == 0 && now.Sub(e.lastUsed) > c.grace {
			dropped = append(dropped, e.value)
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()

	for _, v := range dropped {
		release(v)
	}
	if len(dropped) > 0 {
		logger.Debugf("%s: dropped %d idle entries", c.label, len(dropped))
	}
	return len(dropped)
}

func (c *cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

func (c *cache[K, V]) Refs(key K) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		return e.refs
	}
	return 0
}

func (c *cache[K, V]) Clear() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[K]*entry[V])
	c.mu.Unlock()

	for _, e := range entries {
		release(e.value)
	}
}

func release[V any](v V) {
	if r, ok := any(v).(Releaser); ok && r != nil {
		r.Release()
	}
}

// SortedKeys returns the keys of c in ascending order.
func SortedKeys[K interface{ ~uint64 | ~string }, V any](c Cache[K, V]) []K {
	keys := c.Keys()
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

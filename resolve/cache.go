package resolve

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/annometa/annotation"
	"github.com/wippyai/annometa/errors"
)

// Cache memoizes materialized annotation instances keyed by the structural
// identity of their value trees. Each distinct structural value is
// materialized at most once; concurrent requests for an equal value share the
// first materialization, with late callers blocking until it completes. A
// failed materialization is reported to every caller waiting on it and then
// evicted, so the next request retries from scratch.
//
// A Cache is unbounded and never evicts successful entries. Its lifetime is
// one build or run session; independent sessions use independent caches.
type Cache struct {
	mu      sync.Mutex
	buckets map[uint64][]*entry
	hits    uint64
	misses  uint64
}

// entry is one in-flight or completed materialization. done is closed when
// instance and err are settled.
type entry struct {
	key      *annotation.Value
	done     chan struct{}
	instance any
	err      error
}

// NewCache creates an empty resolution cache.
func NewCache() *Cache {
	return &Cache{buckets: make(map[uint64][]*entry)}
}

// Stats describes cache usage.
type Stats struct {
	// Entries is the number of completed or in-flight materializations.
	Entries int
	// Hits counts requests that found an existing entry.
	Hits uint64
	// Misses counts requests that started a new materialization.
	Misses uint64
}

// Stats returns a snapshot of cache usage.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, bucket := range c.buckets {
		n += len(bucket)
	}
	return Stats{Entries: n, Hits: c.hits, Misses: c.misses}
}

// Materialize returns the annotation instance for the structural value v,
// constructing it on first request. The result is a pointer to the Go struct
// registered for v's annotation type, shared by every caller holding a
// structurally equal tree.
func (c *Cache) Materialize(v *annotation.Value) (any, error) {
	if v == nil {
		return nil, errors.InvalidData(errors.PhaseResolve, "nil annotation value")
	}
	h := v.Hash()

	c.mu.Lock()
	for _, e := range c.buckets[h] {
		if e.key.Equal(v) {
			c.hits++
			c.mu.Unlock()
			<-e.done
			return e.instance, e.err
		}
	}
	e := &entry{key: v, done: make(chan struct{})}
	c.buckets[h] = append(c.buckets[h], e)
	c.misses++
	c.mu.Unlock()

	inst, err := c.build(v)
	e.instance, e.err = inst, err
	close(e.done)
	if err != nil {
		c.evict(h, e)
		Logger().Debug("evicting failed materialization",
			zap.String("type", v.TypeName()),
			zap.Error(err))
		return nil, err
	}
	return inst, nil
}

// evict removes a failed entry so the next request retries fully.
func (c *Cache) evict(h uint64, failed *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket := c.buckets[h]
	for i, e := range bucket {
		if e == failed {
			c.buckets[h] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(c.buckets[h]) == 0 {
		delete(c.buckets, h)
	}
}

// As materializes v through c and returns the instance as *T. A registered
// annotation type whose struct is not T fails with a type mismatch instead
// of an unchecked assertion.
func As[T any](c *Cache, v *annotation.Value) (*T, error) {
	inst, err := c.Materialize(v)
	if err != nil {
		return nil, err
	}
	t, ok := inst.(*T)
	if !ok {
		return nil, errors.New(errors.PhaseResolve, errors.KindTypeMismatch).
			Type(v.TypeName()).
			GoType(fmt.Sprintf("%T", inst)).
			Detail("materialized instance is %T, not %T", inst, t).
			Build()
	}
	return t, nil
}

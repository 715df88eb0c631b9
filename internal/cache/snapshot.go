package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type snapshot[T any] struct {
	value   T
	takenAt time.Time
}

// Snapshot holds one cached value together with the time it was produced.
//
// Get returns the current value while it is younger than the TTL and otherwise
// runs the loader. A failed load leaves the previous value in place. The value is
// swapped atomically, so readers always see a complete result; two concurrent
// refreshes both run and the last one to finish wins. A load that started before
// Invalidate returns its value to its caller but is not kept.
type Snapshot[T any] struct {
	current atomic.Pointer[snapshot[T]]
	loader  func(ctx context.Context) (T, error)
	ttl     time.Duration
	now     func() time.Time

	mu         sync.Mutex // serialises stores against Invalidate
	generation uint64
}

func NewSnapshot[T any](ttl time.Duration, loader func(ctx context.Context) (T, error)) *Snapshot[T] {
	return &Snapshot[T]{
		loader: loader,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Get returns the cached value or refreshes it
func (s *Snapshot[T]) Get(ctx context.Context) (T, error) {
	if cur := s.current.Load(); cur != nil && s.now().Sub(cur.takenAt) < s.ttl {
		return cur.value, nil
	}

	s.mu.Lock()
	generation := s.generation
	s.mu.Unlock()

	value, err := s.loader(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	s.mu.Lock()
	if s.generation == generation {
		s.current.Store(&snapshot[T]{value: value, takenAt: s.now()})
	}
	s.mu.Unlock()
	return value, nil
}

// Invalidate drops the cached value and the result of any load already running; the next Get reloads
func (s *Snapshot[T]) Invalidate() {
	s.mu.Lock()
	s.generation++
	s.current.Store(nil)
	s.mu.Unlock()
}

// Age reports how old the cached value is, and false if nothing is cached
func (s *Snapshot[T]) Age() (time.Duration, bool) {
	cur := s.current.Load()
	if cur == nil {
		return 0, false
	}
	return s.now().Sub(cur.takenAt), true
}

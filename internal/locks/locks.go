// Package locks provides a keyed mutex registry so that all mutations of one
// order serialize while different orders proceed in parallel.
package locks

import (
	"errors"
	"sync"
	"time"
)

// ErrTimeout is returned when a lock cannot be acquired within the bound.
var ErrTimeout = errors.New("lock acquisition timed out")

type entry struct {
	ch   chan struct{}
	refs int
}

// Registry hands out one logical lock per key. Acquisition is bounded; an
// idle key holds no resources.
type Registry struct {
	mu      sync.Mutex
	timeout time.Duration
	entries map[string]*entry
}

// NewRegistry creates a registry with the given acquisition timeout.
func NewRegistry(timeout time.Duration) *Registry {
	return &Registry{
		timeout: timeout,
		entries: make(map[string]*entry),
	}
}

// Acquire takes the lock for key, waiting at most the configured timeout.
// On success the returned release function must be called exactly once.
func (r *Registry) Acquire(key string) (func(), error) {
	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		r.entries[key] = e
	}
	e.refs++
	r.mu.Unlock()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case e.ch <- struct{}{}:
		return func() {
			<-e.ch
			r.put(key, e)
		}, nil
	case <-timer.C:
		r.put(key, e)
		return nil, ErrTimeout
	}
}

// put drops one reference and removes the entry once nobody holds or waits.
func (r *Registry) put(key string, e *entry) {
	r.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(r.entries, key)
	}
	r.mu.Unlock()
}

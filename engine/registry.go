package engine

import (
	"sync"
	"sync/atomic"

	"github.com/fwojciec/docqa"
)

// Registry tracks the live index handle and processing lock of each corpus.
// The zero value is ready to use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	// Serializes processing of one corpus.
	process sync.Mutex

	processing atomic.Bool

	// Guarded by Registry.mu. generation is bumped on every SetIndex.
	index      docqa.VectorIndex
	generation uint64
}

func (r *Registry) entry(name string) *entry {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if ok {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[name]; ok {
		return e
	}
	if r.entries == nil {
		r.entries = make(map[string]*entry)
	}
	e = &entry{}
	r.entries[name] = e
	return e
}

// Lock blocks until no other caller holds the processing lock of the corpus,
// then marks it as processing. The returned function releases the lock.
func (r *Registry) Lock(name string) (unlock func()) {
	e := r.entry(name)
	e.process.Lock()
	e.processing.Store(true)
	return func() {
		e.processing.Store(false)
		e.process.Unlock()
	}
}

// Processing reports whether the corpus is being processed.
func (r *Registry) Processing(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return ok && e.processing.Load()
}

// Index returns the live index of the corpus, or nil.
func (r *Registry) Index(name string) docqa.VectorIndex {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[name]; ok {
		return e.index
	}
	return nil
}

// SetIndex installs idx as the live index of the corpus. A nil idx removes
// the handle.
func (r *Registry) SetIndex(name string, idx docqa.VectorIndex) {
	e := r.entry(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	e.index = idx
	e.generation++
}

// Generation returns a counter that changes whenever the live index of the
// corpus is replaced or removed.
func (r *Registry) Generation(name string) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[name]; ok {
		return e.generation
	}
	return 0
}

// SetIndexIfCurrent installs idx only if the corpus has no live index and its
// generation still equals gen. It returns the live index afterwards, which is
// nil when idx was rejected because the generation moved on.
func (r *Registry) SetIndexIfCurrent(name string, idx docqa.VectorIndex, gen uint64) docqa.VectorIndex {
	e := r.entry(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.index == nil && e.generation == gen {
		e.index = idx
	}
	return e.index
}

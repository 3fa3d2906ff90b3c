// Package contextbag implements ContextBag: the concurrent, single-writer-
// per-key map stages' outputs are flattened into for fan-in lookups by key.
package contextbag

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

// ConflictError is raised when a second distinct stage attempts to write a
// key already committed by another stage.
type ConflictError struct {
	Key            string
	ExistingWriter string
	NewWriter      string
}

func (e *ConflictError) Error() string {
	return "stageflow: key " + e.Key + " already written by " + e.ExistingWriter + ", conflicting write from " + e.NewWriter
}

type entry struct {
	value  any
	writer string
}

// Bag is the run's concurrent shared map: at most one writer per key for
// the run's lifetime, lock-free reads after the write barrier. The value
// store is an xsync.Map (lock-free reads, CAS-based writes); a small mutex
// guards only the insertion-order slice Keys() reports, so iteration order
// is observable without serializing reads.
type Bag struct {
	m     *xsync.Map[string, entry]
	order struct {
		mu   sync.Mutex
		keys []string
	}
}

// New creates an empty Bag.
func New() *Bag {
	return &Bag{m: xsync.NewMap[string, entry]()}
}

// Write performs an atomic check-and-set. A second distinct writer for an
// existing key yields a *ConflictError; the first writer's value is left
// untouched.
func (b *Bag) Write(key string, value any, writerStage string) error {
	var conflict *ConflictError
	_, _ = b.m.Compute(key, func(old entry, loaded bool) (entry, xsync.ComputeOp) {
		if loaded && old.writer != writerStage {
			conflict = &ConflictError{Key: key, ExistingWriter: old.writer, NewWriter: writerStage}
			return old, xsync.CancelOp
		}
		if loaded {
			return old, xsync.CancelOp
		}
		return entry{value: value, writer: writerStage}, xsync.UpdateOp
	})
	if conflict != nil {
		return conflict
	}
	b.recordInsertion(key)
	return nil
}

func (b *Bag) recordInsertion(key string) {
	b.order.mu.Lock()
	defer b.order.mu.Unlock()
	for _, k := range b.order.keys {
		if k == key {
			return
		}
	}
	b.order.keys = append(b.order.keys, key)
}

// Read returns the last-committed value for key, or def if absent.
func (b *Bag) Read(key string, def any) any {
	if e, ok := b.m.Load(key); ok {
		return e.value
	}
	return def
}

// WriterOf returns the stage name that first wrote key, if any.
func (b *Bag) WriterOf(key string) (string, bool) {
	if e, ok := b.m.Load(key); ok {
		return e.writer, true
	}
	return "", false
}

// Keys returns a snapshot of the current keys in insertion order.
func (b *Bag) Keys() []string {
	b.order.mu.Lock()
	defer b.order.mu.Unlock()
	return append([]string{}, b.order.keys...)
}

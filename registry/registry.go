// Package registry defines the global palette contract: the process-wide
// dictionary assigning stable save IDs to every valid block state or biome.
//
// The type system that owns block and biome definitions populates a registry;
// storage code only reads from it. Table is a ready-made implementation for
// embedders that do not bring their own.
package registry

import (
	"iter"
	"sync"

	"github.com/elliotchance/orderedmap/v2"
)

// Registry resolves values to save IDs and back.
type Registry[T comparable] interface {
	// Has reports whether v is a registered value.
	Has(v T) bool
	// ID returns the save ID of v.
	ID(v T) (uint32, bool)
	// Value returns the value registered under id.
	Value(id uint32) (T, bool)
	// Count returns the number of registered values. IDs are [0, Count()).
	Count() int
}

// Table assigns save IDs in registration order.
//
// Lookups may run concurrently with each other; Register takes a write lock.
type Table[T comparable] struct {
	mu     sync.RWMutex
	ids    *orderedmap.OrderedMap[T, uint32]
	values []T
}

var _ Registry[int] = (*Table[int])(nil)

// NewTable returns a table with values registered in order.
func NewTable[T comparable](values ...T) *Table[T] {
	t := &Table[T]{ids: orderedmap.NewOrderedMap[T, uint32]()}
	for _, v := range values {
		t.Register(v)
	}
	return t
}

// Register returns the save ID of v, assigning the next free ID if v is new.
func (t *Table[T]) Register(v T) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.ids.Get(v); ok {
		return id
	}
	id := uint32(len(t.values))
	t.ids.Set(v, id)
	t.values = append(t.values, v)
	return id
}

func (t *Table[T]) Has(v T) bool {
	_, ok := t.ID(v)
	return ok
}

func (t *Table[T]) ID(v T) (uint32, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ids.Get(v)
}

func (t *Table[T]) Value(id uint32) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(id) >= len(t.values) {
		var zero T
		return zero, false
	}
	return t.values[id], true
}

func (t *Table[T]) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ids.Len()
}

// All yields every save ID and value in ID order. Registrations made while
// iterating are not observed.
func (t *Table[T]) All() iter.Seq2[uint32, T] {
	return func(yield func(uint32, T) bool) {
		t.mu.RLock()
		var pairs []*orderedmap.Element[T, uint32]
		for el := t.ids.Front(); el != nil; el = el.Next() {
			pairs = append(pairs, el)
		}
		t.mu.RUnlock()

		for _, el := range pairs {
			if !yield(el.Value, el.Key) {
				return
			}
		}
	}
}

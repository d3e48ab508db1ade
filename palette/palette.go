// Package palette provides a bounded, insertion-ordered dictionary mapping
// values to small integer indices.
//
// An index is the position at which a value was first inserted and never
// changes: there is no removal and no compaction. Lookups are a linear scan,
// which beats hashing at the small capacities palettes are used with.
package palette

import (
	"fmt"
	"iter"
)

// Palette maps up to Cap() distinct values to the indices [0, Len()).
//
// NOT thread-safe.
type Palette[T comparable] struct {
	values   []T
	capacity int
}

// New returns an empty palette holding at most capacity values.
func New[T comparable](capacity int) *Palette[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("palette: capacity %d must be positive", capacity))
	}
	return &Palette[T]{
		values:   make([]T, 0, capacity),
		capacity: capacity,
	}
}

// Len returns the number of values in the palette.
func (p *Palette[T]) Len() int { return len(p.values) }

// Cap returns the fixed capacity.
func (p *Palette[T]) Cap() int { return p.capacity }

// Full reports whether Insert would fail.
func (p *Palette[T]) Full() bool { return len(p.values) >= p.capacity }

// Search returns the index of v.
func (p *Palette[T]) Search(v T) (int, bool) {
	for i, x := range p.values {
		if x == v {
			return i, true
		}
	}
	return 0, false
}

// Insert appends v and returns its index, or false when the palette is full.
// Insert does not check for duplicates; use Ensure for that.
func (p *Palette[T]) Insert(v T) (int, bool) {
	if p.Full() {
		return 0, false
	}
	p.values = append(p.values, v)
	return len(p.values) - 1, true
}

// Ensure returns the index of v, inserting it if needed. It returns false
// only when v is absent and the palette is full.
func (p *Palette[T]) Ensure(v T) (int, bool) {
	if i, ok := p.Search(v); ok {
		return i, true
	}
	return p.Insert(v)
}

// At returns the value at index i. It panics if i is out of range.
func (p *Palette[T]) At(i int) T {
	if i < 0 || i >= len(p.values) {
		panic(fmt.Sprintf("palette: index %d out of range [0,%d)", i, len(p.values)))
	}
	return p.values[i]
}

// All yields every index and value in insertion order.
func (p *Palette[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range p.values {
			if !yield(i, v) {
				return
			}
		}
	}
}

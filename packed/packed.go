// Package packed implements fixed-width unsigned integer arrays packed into
// 64-bit words.
//
// Values never straddle a word boundary: a width of b bits stores 64/b values
// per word and leaves the remaining high bits as zero padding. The width of an
// array may grow (every value is re-encoded) but never shrink.
//
//	a := packed.New(4096, 4, 0)
//	a.Set(10, 15)
//	a.Resize(5)          // all values preserved
//	v := a.Get(10)       // 15
package packed

import (
	"errors"
	"fmt"
	"iter"
	"math/bits"
)

var (
	// ErrBadBits indicates a width outside [1, 64].
	ErrBadBits = errors.New("packed: bit width out of range")
	// ErrBadLength indicates a word buffer whose size does not match the array length.
	ErrBadLength = errors.New("packed: word count does not match length")
	// ErrBadPadding indicates set bits outside every slot of a word buffer.
	ErrBadPadding = errors.New("packed: non-zero padding bits")
)

// Array is a fixed-length array of values of equal bit width.
//
// NOT thread-safe. Concurrent readers are fine only while nobody writes.
type Array struct {
	length int
	bits   uint8
	words  []uint64
}

// Mask returns the largest value representable in b bits.
func Mask(b uint8) uint64 {
	if b >= 64 {
		return ^uint64(0)
	}
	return 1<<b - 1
}

// ValuesPerWord returns how many b-bit values fit in one word.
func ValuesPerWord(b uint8) int {
	return 64 / int(b)
}

// MinBits returns the smallest width able to hold v. Zero still needs one bit.
func MinBits(v uint64) uint8 {
	if v == 0 {
		return 1
	}
	return uint8(bits.Len64(v))
}

// WordsFor returns the backing buffer size of an array of length values of width b.
func WordsFor(length int, b uint8) int {
	vpw := ValuesPerWord(b)
	return (length + vpw - 1) / vpw
}

func checkBits(b uint8) {
	if b == 0 || b > 64 {
		panic(fmt.Sprintf("packed: bit width %d out of range [1,64]", b))
	}
}

// New returns an array of length values of width b, every slot set to fill.
// It panics if b is not in [1, 64] or fill does not fit in b bits.
func New(length int, b uint8, fill uint64) *Array {
	checkBits(b)
	if length < 0 {
		panic(fmt.Sprintf("packed: negative length %d", length))
	}
	if fill > Mask(b) {
		panic(fmt.Sprintf("packed: fill value %d does not fit in %d bits", fill, b))
	}

	a := &Array{
		length: length,
		bits:   b,
		words:  make([]uint64, WordsFor(length, b)),
	}
	if fill == 0 || length == 0 {
		return a
	}

	vpw := ValuesPerWord(b)
	var pattern uint64
	for i := range vpw {
		pattern |= fill << (uint(i) * uint(b))
	}
	for i := range a.words {
		a.words[i] = pattern
	}

	// Slots past length in the last word stay zero.
	if rem := length % vpw; rem != 0 {
		last := len(a.words) - 1
		a.words[last] &= Mask(uint8(rem * int(b)))
	}
	return a
}

// FromWords adopts an existing word buffer, as produced by Words. The buffer
// is not copied. Bits outside every slot must be zero.
func FromWords(length int, b uint8, words []uint64) (*Array, error) {
	if b == 0 || b > 64 {
		return nil, fmt.Errorf("width %d: %w", b, ErrBadBits)
	}
	if length < 0 || len(words) != WordsFor(length, b) {
		return nil, fmt.Errorf("length %d at width %d needs %d words, got %d: %w",
			length, b, WordsFor(max(length, 0), b), len(words), ErrBadLength)
	}
	if i, ok := checkPadding(length, b, words); !ok {
		return nil, fmt.Errorf("word %d: %w", i, ErrBadPadding)
	}
	return &Array{length: length, bits: b, words: words}, nil
}

// checkPadding reports the first word with bits set beyond its slots, both
// the high bits every word leaves unused and the slots past length in the
// last word.
func checkPadding(length int, b uint8, words []uint64) (int, bool) {
	vpw := ValuesPerWord(b)
	pad := ^Mask(uint8(vpw * int(b)))
	for i, w := range words {
		if w&pad != 0 {
			return i, false
		}
	}
	if rem := length % vpw; rem != 0 && len(words) > 0 {
		last := len(words) - 1
		if words[last]&^Mask(uint8(rem*int(b))) != 0 {
			return last, false
		}
	}
	return 0, true
}

// Len returns the number of slots.
func (a *Array) Len() int { return a.length }

// Bits returns the current width of every slot.
func (a *Array) Bits() uint8 { return a.bits }

// Words returns the backing buffer. Callers must not modify it.
func (a *Array) Words() []uint64 { return a.words }

// locate returns the word index and bit shift of slot i for width b.
func locate(i int, b uint8) (int, uint) {
	vpw := ValuesPerWord(b)
	return i / vpw, uint(i%vpw) * uint(b)
}

func (a *Array) checkIndex(i int) {
	if i < 0 || i >= a.length {
		panic(fmt.Sprintf("packed: index %d out of range [0,%d)", i, a.length))
	}
}

// Get returns the value at slot i. It panics if i is out of range.
func (a *Array) Get(i int) uint64 {
	a.checkIndex(i)
	return a.get(i)
}

func (a *Array) get(i int) uint64 {
	w, shift := locate(i, a.bits)
	return (a.words[w] >> shift) & Mask(a.bits)
}

// Set stores v at slot i. It panics if i is out of range or v does not fit.
func (a *Array) Set(i int, v uint64) {
	a.checkIndex(i)
	if v > Mask(a.bits) {
		panic(fmt.Sprintf("packed: value %d does not fit in %d bits", v, a.bits))
	}
	a.set(i, v)
}

func (a *Array) set(i int, v uint64) {
	w, shift := locate(i, a.bits)
	m := Mask(a.bits)
	a.words[w] = a.words[w]&^(m<<shift) | v<<shift
}

// All yields every slot index and value in order.
func (a *Array) All() iter.Seq2[int, uint64] {
	return func(yield func(int, uint64) bool) {
		for i := range a.length {
			if !yield(i, a.get(i)) {
				return
			}
		}
	}
}

// Replace rewrites every slot with fn(old). It panics if fn returns a value
// that does not fit the current width.
func (a *Array) Replace(fn func(uint64) uint64) {
	m := Mask(a.bits)
	for i := range a.length {
		v := fn(a.get(i))
		if v > m {
			panic(fmt.Sprintf("packed: replaced value %d does not fit in %d bits", v, a.bits))
		}
		a.set(i, v)
	}
}

// Resize widens every slot to b bits, keeping all values.
func (a *Array) Resize(b uint8) {
	a.ResizeAndReplace(b, nil)
}

// ResizeAndReplace widens every slot to b bits and stores fn(old) in it. A
// nil fn keeps the values. It panics unless b is strictly greater than the
// current width, or if fn returns a value that does not fit in b bits.
//
// The buffer grows in place. Slots are re-encoded from the last one backward:
// with a wider layout a slot only ever moves to a higher bit position, so no
// value is overwritten before it has been read.
func (a *Array) ResizeAndReplace(b uint8, fn func(uint64) uint64) {
	checkBits(b)
	if b <= a.bits {
		panic(fmt.Sprintf("packed: cannot resize from %d to %d bits", a.bits, b))
	}

	old := a.bits
	oldMask := Mask(old)
	newMask := Mask(b)

	need := WordsFor(a.length, b)
	if need > cap(a.words) {
		grown := make([]uint64, len(a.words), need)
		copy(grown, a.words)
		a.words = grown
	}
	// The extension beyond the old length is fresh, zeroed space.
	a.words = a.words[:need]
	clear(a.words[WordsFor(a.length, old):])

	for i := a.length - 1; i >= 0; i-- {
		w, shift := locate(i, old)
		v := (a.words[w] >> shift) & oldMask
		if fn != nil {
			v = fn(v)
		}
		if v > newMask {
			panic(fmt.Sprintf("packed: resized value %d does not fit in %d bits", v, b))
		}
		w, shift = locate(i, b)
		a.words[w] = a.words[w]&^(newMask<<shift) | v<<shift
	}
	a.bits = b

	// Old bits may linger in the new padding.
	if used := uint8(ValuesPerWord(b) * int(b)); used < 64 {
		pad := Mask(used)
		for i := range a.words {
			a.words[i] &= pad
		}
	}
}

package packed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinBits(t *testing.T) {
	assert.Equal(t, uint8(1), MinBits(0))
	assert.Equal(t, uint8(1), MinBits(1))
	assert.Equal(t, uint8(2), MinBits(2))
	assert.Equal(t, uint8(6), MinBits(63))
	assert.Equal(t, uint8(7), MinBits(64))
	assert.Equal(t, uint8(64), MinBits(^uint64(0)))
}

func TestMask(t *testing.T) {
	assert.Equal(t, uint64(1), Mask(1))
	assert.Equal(t, uint64(0xF), Mask(4))
	assert.Equal(t, uint64(1<<63-1), Mask(63))
	assert.Equal(t, ^uint64(0), Mask(64))
}

func TestWordsFor(t *testing.T) {
	assert.Equal(t, 64, WordsFor(4096, 1))
	assert.Equal(t, 256, WordsFor(4096, 4))
	assert.Equal(t, 342, WordsFor(4096, 5)) // 12 per word
	assert.Equal(t, 4096, WordsFor(4096, 64))
	assert.Equal(t, 0, WordsFor(0, 7))
}

// TestArray_SetGetAllWidths checks set/get round trips at every width.
func TestArray_SetGetAllWidths(t *testing.T) {
	const length = 100
	for b := uint8(1); b <= 64; b++ {
		a := New(length, b, 0)
		m := Mask(b)
		for i := range length {
			a.Set(i, (uint64(i)*0x9E3779B97F4A7C15)&m)
		}
		for i := range length {
			require.Equal(t, (uint64(i)*0x9E3779B97F4A7C15)&m, a.Get(i), "width %d slot %d", b, i)
		}

		a.Set(length-1, m)
		assert.Equal(t, m, a.Get(length-1), "width %d max value", b)
	}
}

func TestArray_SetDoesNotDisturbNeighbours(t *testing.T) {
	a := New(64, 5, 0)
	a.Set(10, 31)
	assert.Equal(t, uint64(0), a.Get(9))
	assert.Equal(t, uint64(31), a.Get(10))
	assert.Equal(t, uint64(0), a.Get(11))

	a.Set(10, 1)
	assert.Equal(t, uint64(1), a.Get(10))
}

func TestNew_Fill(t *testing.T) {
	a := New(33, 5, 17)
	for i, v := range a.All() {
		require.Equal(t, uint64(17), v, "slot %d", i)
	}

	// 33 slots at 12 per word: the last word holds 9 slots, the rest is zero.
	words := a.Words()
	require.Len(t, words, 3)
	assert.Zero(t, words[2]>>(9*5), "unused slots must be zero")
	assert.Zero(t, words[0]>>60, "padding must be zero")
}

func TestNew_ContractViolations(t *testing.T) {
	assert.Panics(t, func() { New(16, 0, 0) })
	assert.Panics(t, func() { New(16, 65, 0) })
	assert.Panics(t, func() { New(16, 4, 16) })
	assert.Panics(t, func() { New(-1, 4, 0) })
}

func TestArray_SetContractViolations(t *testing.T) {
	a := New(16, 4, 0)
	assert.Panics(t, func() { a.Set(0, 16) })
	assert.Panics(t, func() { a.Set(16, 0) })
	assert.Panics(t, func() { a.Set(-1, 0) })
	assert.Panics(t, func() { a.Get(16) })
}

func TestArray_All(t *testing.T) {
	a := New(10, 3, 0)
	for i := range 10 {
		a.Set(i, uint64(i%8))
	}
	var got []uint64
	for _, v := range a.All() {
		got = append(got, v)
	}
	assert.Equal(t, []uint64{0, 1, 2, 3, 4, 5, 6, 7, 0, 1}, got)

	// Early break stops iteration.
	n := 0
	for range a.All() {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestArray_Replace(t *testing.T) {
	a := New(20, 4, 3)
	a.Replace(func(v uint64) uint64 { return v * 5 })
	for _, v := range a.All() {
		require.Equal(t, uint64(15), v)
	}
	assert.Panics(t, func() { a.Replace(func(v uint64) uint64 { return v + 1 }) })
}

// TestArray_ResizeRoundTrip widens 32 slots of 15 from width 4 to 5, then
// to 17 with a transform whose results need 17 bits.
func TestArray_ResizeRoundTrip(t *testing.T) {
	a := New(32, 4, 15)

	a.Resize(5)
	require.Equal(t, uint8(5), a.Bits())
	for i, v := range a.All() {
		require.Equal(t, uint64(15), v, "slot %d after Resize(5)", i)
	}

	times := func(v uint64) uint64 { return v * 5678 }
	assert.PanicsWithValue(t, "packed: resized value 85170 does not fit in 16 bits", func() {
		New(32, 5, 15).ResizeAndReplace(16, times)
	})

	a.ResizeAndReplace(17, times)
	require.Equal(t, uint8(17), a.Bits())
	for i, v := range a.All() {
		require.Equal(t, uint64(15*5678), v, "slot %d after ResizeAndReplace(17)", i)
	}
}

// TestArray_ResizeDistinctValues widens from every width with distinct
// per-slot values to catch slots clobbered during in-place growth.
func TestArray_ResizeDistinctValues(t *testing.T) {
	const length = 1000
	for b := uint8(1); b < 64; b++ {
		for _, next := range []uint8{b + 1, 64} {
			a := New(length, b, 0)
			m := Mask(b)
			for i := range length {
				a.Set(i, (uint64(i)*2654435761)&m)
			}
			a.Resize(next)
			for i := range length {
				require.Equal(t, (uint64(i)*2654435761)&m, a.Get(i), "width %d->%d slot %d", b, next, i)
			}
		}
	}
}

func TestArray_ResizePaddingZero(t *testing.T) {
	a := New(64, 4, 15)
	a.Resize(5)
	for i, w := range a.Words() {
		assert.Zero(t, w>>60, "padding of word %d", i)
	}
	// The last word holds 64%12 = 4 slots.
	words := a.Words()
	assert.Zero(t, words[len(words)-1]>>(4*5), "unused slots of last word")
}

func TestArray_ResizeContractViolations(t *testing.T) {
	a := New(8, 4, 0)
	assert.Panics(t, func() { a.Resize(4) })
	assert.Panics(t, func() { a.Resize(3) })
	assert.Panics(t, func() { a.Resize(65) })
	assert.Panics(t, func() {
		a.ResizeAndReplace(5, func(uint64) uint64 { return 32 })
	})
}

func TestFromWords(t *testing.T) {
	src := New(100, 6, 0)
	for i := range 100 {
		src.Set(i, uint64(i%64))
	}

	a, err := FromWords(100, 6, append([]uint64(nil), src.Words()...))
	require.NoError(t, err)
	for i := range 100 {
		require.Equal(t, uint64(i%64), a.Get(i))
	}

	_, err = FromWords(100, 6, src.Words()[:3])
	assert.ErrorIs(t, err, ErrBadLength)
	_, err = FromWords(100, 0, nil)
	assert.ErrorIs(t, err, ErrBadBits)
	_, err = FromWords(100, 65, nil)
	assert.ErrorIs(t, err, ErrBadBits)
}

func TestFromWords_RejectsPadding(t *testing.T) {
	// Width 6 packs 10 slots per word and leaves the top 4 bits unused.
	words := make([]uint64, WordsFor(25, 6))
	words[0] = 1 << 62
	_, err := FromWords(25, 6, words)
	assert.ErrorIs(t, err, ErrBadPadding)

	// 25 slots fill half of the last word.
	words[0] = 0
	words[2] = Mask(30) + 1<<30
	_, err = FromWords(25, 6, words)
	assert.ErrorIs(t, err, ErrBadPadding)

	words[2] = Mask(30)
	a, err := FromWords(25, 6, words)
	require.NoError(t, err)
	assert.Equal(t, uint64(63), a.Get(24))
}

func TestFromWords_ResizeWithSpareCapacity(t *testing.T) {
	words := make([]uint64, 1, 16)
	words[0] = ^uint64(0) // 16 slots of 15 at width 4
	a, err := FromWords(16, 4, words)
	require.NoError(t, err)

	// Garbage in the spare capacity must not leak into the array.
	spare := words[:cap(words)]
	for i := 1; i < len(spare); i++ {
		spare[i] = ^uint64(0)
	}

	a.Resize(8)
	for i := range 16 {
		require.Equal(t, uint64(15), a.Get(i), "slot %d", i)
	}
}

func BenchmarkArray_Get(b *testing.B) {
	a := New(4096, 5, 3)
	b.ResetTimer()
	var sink uint64
	for i := range b.N {
		sink += a.Get(i & 4095)
	}
	_ = sink
}

func BenchmarkArray_Resize(b *testing.B) {
	for range b.N {
		a := New(4096, 4, 7)
		a.Resize(8)
	}
}

package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectorMap_FirstFit(t *testing.T) {
	m := newSectorMap(10)
	m.mark(0, 2, true)
	m.mark(3, 2, true)
	m.mark(7, 1, true)

	tests := []struct {
		count     int
		start     int
		firstFree int
	}{
		{1, 2, 2},
		{2, 5, 2},
		{3, 8, 2}, // runs into the tail
		{5, 8, 2},
	}
	for _, tt := range tests {
		start, firstFree := m.firstFit(2, tt.count)
		assert.Equal(t, tt.start, start, "count %d", tt.count)
		assert.Equal(t, tt.firstFree, firstFree, "count %d", tt.count)
	}
}

func TestSectorMap_Full(t *testing.T) {
	m := newSectorMap(4)
	m.mark(0, 4, true)
	start, firstFree := m.firstFit(2, 1)
	assert.Equal(t, 4, start)
	assert.Equal(t, -1, firstFree)
}

func TestSectorMap_GrowAndCount(t *testing.T) {
	m := newSectorMap(2)
	m.mark(0, 2, true)
	m.grow(130)
	assert.Equal(t, 130, m.Len())
	assert.False(t, m.used(129))

	m.mark(64, 66, true)
	assert.Equal(t, 68, m.usedCount())
	m.mark(100, 10, false)
	assert.Equal(t, 58, m.usedCount())
	assert.True(t, m.used(99))
	assert.False(t, m.used(100))

	m.grow(5)
	assert.Equal(t, 130, m.Len(), "grow never shrinks")
}

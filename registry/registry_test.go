package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_RegisterAssignsSequentialIDs(t *testing.T) {
	tab := NewTable("air", "stone", "dirt")

	assert.Equal(t, 3, tab.Count())
	id, ok := tab.ID("stone")
	require.True(t, ok)
	assert.Equal(t, uint32(1), id)

	assert.Equal(t, uint32(1), tab.Register("stone"), "re-registering returns the same ID")
	assert.Equal(t, uint32(3), tab.Register("grass"))
	assert.Equal(t, 4, tab.Count())
}

func TestTable_Lookups(t *testing.T) {
	tab := NewTable(10, 20)

	assert.True(t, tab.Has(20))
	assert.False(t, tab.Has(30))

	v, ok := tab.Value(0)
	require.True(t, ok)
	assert.Equal(t, 10, v)

	_, ok = tab.Value(2)
	assert.False(t, ok)
	_, ok = tab.ID(30)
	assert.False(t, ok)
}

func TestTable_All(t *testing.T) {
	tab := NewTable("a", "b", "c")
	var ids []uint32
	var values []string
	for id, v := range tab.All() {
		ids = append(ids, id)
		values = append(values, v)
	}
	assert.Equal(t, []uint32{0, 1, 2}, ids)
	assert.Equal(t, []string{"a", "b", "c"}, values)
}

func TestTable_ConcurrentReaders(t *testing.T) {
	tab := NewTable[int]()
	for v := range 256 {
		tab.Register(v)
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for v := range 256 {
				id, ok := tab.ID(v)
				if !ok || id != uint32(v) {
					t.Errorf("ID(%d) = %d, %v", v, id, ok)
					return
				}
			}
		}()
	}
	wg.Wait()
}

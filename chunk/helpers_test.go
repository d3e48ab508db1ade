package chunk

import (
	"fmt"
	"testing"

	"github.com/joshuapare/voxstore/registry"
)

// testState is a block handle, the form a type system hands out.
type testState uint32

const (
	air testState = iota
	stone
	dirt
)

// newBlockTable registers n block states: air, stone, dirt, then numbered ones.
func newBlockTable(n int) *registry.Table[testState] {
	tab := registry.NewTable[testState]()
	for i := range n {
		tab.Register(testState(i))
	}
	return tab
}

func newBiomeTable() *registry.Table[string] {
	return registry.NewTable("plains", "desert", "ocean", "forest", "taiga")
}

func newTestLevel(t *testing.T, blocks int) Settings[testState, string] {
	t.Helper()
	return Settings[testState, string]{
		MinY:       -64,
		MaxY:       320,
		Block:      air,
		Biome:      "plains",
		BlockTable: newBlockTable(blocks),
		BiomeTable: newBiomeTable(),
	}
}

func newTestSubChunk(t *testing.T, blocks int) *SubChunk[testState, string] {
	t.Helper()
	s, err := NewSubChunk[testState, string](newBlockTable(blocks), newBiomeTable(), air, "plains")
	if err != nil {
		t.Fatalf("NewSubChunk: %v", err)
	}
	return s
}

// position returns a distinct block coordinate for the i-th write.
func position(i int) (x, y, z int) {
	return i & 15, (i >> 8) & 15, (i >> 4) & 15
}

func (s testState) String() string { return fmt.Sprintf("state#%d", uint32(s)) }

package chunk

import (
	"testing"

	"github.com/sandertv/gophertunnel/minecraft/nbt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTripLocal(t *testing.T) {
	level := newTestLevel(t, 16)
	c := New(12, -3, level)
	require.NoError(t, c.SetBlock(0, -64, 0, stone))
	require.NoError(t, c.SetBlock(5, 10, 7, dirt))
	require.NoError(t, c.SetBlock(15, 200, 15, testState(9)))
	require.NoError(t, c.SetBiome(0, 10, 0, "taiga"))

	data, err := Encode(c)
	require.NoError(t, err)

	got, err := Decode(data, level)
	require.NoError(t, err)
	assert.Equal(t, int32(12), got.X)
	assert.Equal(t, int32(-3), got.Z)
	assert.Equal(t, stone, got.Block(0, -64, 0))
	assert.Equal(t, dirt, got.Block(5, 10, 7))
	assert.Equal(t, testState(9), got.Block(15, 200, 15))
	assert.Equal(t, air, got.Block(1, 10, 7))
	assert.Equal(t, "taiga", got.Biome(0, 10, 0))
	assert.Equal(t, "plains", got.Biome(0, -64, 0))
	assert.Nil(t, got.SubChunk(5))

	s := got.SubChunk(0)
	require.NotNil(t, s)
	assert.True(t, s.Local())
	assert.Equal(t, 2, s.PaletteLen())
}

func TestCodec_RoundTripGlobal(t *testing.T) {
	level := newTestLevel(t, 400)
	c := New(0, 0, level)
	for i := range 300 {
		x, y, z := position(i)
		require.NoError(t, c.SetBlock(x, y, z, testState(i)))
	}
	require.False(t, c.SubChunk(0).Local())

	data, err := Encode(c)
	require.NoError(t, err)

	got, err := Decode(data, level)
	require.NoError(t, err)
	s := got.SubChunk(0)
	require.NotNil(t, s)
	assert.False(t, s.Local())
	for i := range 300 {
		x, y, z := position(i)
		require.Equal(t, testState(i), got.Block(x, y, z))
	}
}

func TestCodec_DecodeWidensForGrownRegistry(t *testing.T) {
	level := newTestLevel(t, 200)
	c := New(0, 0, level)
	for i := range 150 {
		x, y, z := position(i)
		require.NoError(t, c.SetBlock(x, y, z, testState(i)))
	}
	data, err := Encode(c)
	require.NoError(t, err)

	table := newBlockTable(1000)
	level.BlockTable = table
	got, err := Decode(data, level)
	require.NoError(t, err)
	assert.Equal(t, uint8(10), got.SubChunk(0).Bits())
	assert.Equal(t, testState(149), got.Block(position(149)))
}

func TestCodec_EmptyColumn(t *testing.T) {
	level := newTestLevel(t, 4)
	data, err := Encode(New(1, 2, level))
	require.NoError(t, err)

	got, err := Decode(data, level)
	require.NoError(t, err)
	assert.Equal(t, int32(1), got.X)
	assert.Nil(t, got.SubChunk(0))
}

// rawColumn builds column data starting at the test level's lowest section.
func rawColumn(sections ...sectionData) columnData {
	return columnData{YPos: -4, Sections: sections}
}

func encodeRaw(t *testing.T, col columnData) []byte {
	t.Helper()
	data, err := nbt.MarshalEncoding(col, nbt.LittleEndian)
	require.NoError(t, err)
	return data
}

func validSection(t *testing.T, level Settings[testState, string]) sectionData {
	t.Helper()
	c := New(0, 0, level)
	require.NoError(t, c.SetBlock(0, 0, 0, stone))
	sd, err := encodeSection(c.SubChunk(0))
	require.NoError(t, err)
	return sd
}

func TestCodec_DecodeRejectsCorruptSections(t *testing.T) {
	level := newTestLevel(t, 16)

	tests := []struct {
		name   string
		mutate func(*sectionData)
		want   error
	}{
		{"outside height", func(sd *sectionData) { sd.Y = 40 }, ErrCorruptSection},
		{"unregistered palette entry", func(sd *sectionData) { sd.Palette[1] = 77 }, ErrIllegalBlock},
		{"negative palette entry", func(sd *sectionData) { sd.Palette[1] = -1 }, ErrIllegalBlock},
		{"duplicate palette entry", func(sd *sectionData) { sd.Palette[1] = sd.Palette[0] }, ErrCorruptSection},
		{"width mismatch", func(sd *sectionData) { sd.Bits = 4 }, ErrCorruptSection},
		{"short block words", func(sd *sectionData) { sd.Blocks = sd.Blocks[:3] }, ErrCorruptSection},
		{"biome padding bits", func(sd *sectionData) { sd.Biomes[0] = -1 << 63 }, ErrCorruptSection},
		{"slot beyond palette", func(sd *sectionData) {
			sd.Palette = sd.Palette[:1]
			sd.Bits = 1
		}, ErrCorruptSection},
		{"bad biome width", func(sd *sectionData) { sd.BiomeBits = 0 }, ErrCorruptSection},
		{"biome slot beyond registry", func(sd *sectionData) {
			sd.BiomeBits = 8
			sd.Biomes = make([]int64, 8)
			sd.Biomes[0] = 200
		}, ErrCorruptSection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sd := validSection(t, level)
			tt.mutate(&sd)
			_, err := Decode(encodeRaw(t, rawColumn(sd)), level)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCodec_DecodeRejectsRepeatedSection(t *testing.T) {
	level := newTestLevel(t, 16)
	sd := validSection(t, level)
	_, err := Decode(encodeRaw(t, rawColumn(sd, sd)), level)
	assert.ErrorIs(t, err, ErrCorruptSection)
}

func TestCodec_DecodeRejectsWrongMinSection(t *testing.T) {
	level := newTestLevel(t, 16)
	col := rawColumn(validSection(t, level))
	col.YPos = 0
	_, err := Decode(encodeRaw(t, col), level)
	assert.ErrorIs(t, err, ErrCorruptSection)
}

func TestCodec_KeepsLastUpdate(t *testing.T) {
	level := newTestLevel(t, 4)
	c := New(3, 4, level)
	c.LastUpdate = 1 << 40
	data, err := Encode(c)
	require.NoError(t, err)

	got, err := Decode(data, level)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<40), got.LastUpdate)
}

// TestCodec_RoundTripHighWordBits covers slots in the high half of each
// word, which only survive the codec if whole 64-bit longs do.
func TestCodec_RoundTripHighWordBits(t *testing.T) {
	level := newTestLevel(t, 16)
	c := New(0, 0, level)
	s, err := c.ensure(4) // section 0
	require.NoError(t, err)
	for i := range BlockCount {
		x, y, z := position(i)
		require.NoError(t, s.SetBlock(x, y, z, testState(i%4)))
	}
	require.NoError(t, s.SetBiome(3, 3, 3, "forest"))

	data, err := Encode(c)
	require.NoError(t, err)
	got, err := Decode(data, level)
	require.NoError(t, err)

	want, have := s.blocks.Words(), got.SubChunk(0).blocks.Words()
	require.Equal(t, want, have)
	for i := range BlockCount {
		x, y, z := position(i)
		require.Equal(t, testState(i%4), got.Block(x, y, z), "slot %d", i)
	}
	assert.Equal(t, "forest", got.SubChunk(0).Biome(3, 3, 3))
}

func TestCodec_DecodeGarbage(t *testing.T) {
	_, err := Decode([]byte{0xff, 0x00, 0x13}, newTestLevel(t, 4))
	assert.Error(t, err)
}

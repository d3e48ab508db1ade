package chunk

import (
	"fmt"

	"github.com/sandertv/gophertunnel/minecraft/nbt"

	"github.com/joshuapare/voxstore/packed"
	"github.com/joshuapare/voxstore/palette"
	"github.com/joshuapare/voxstore/registry"
)

// columnData is the NBT layout of an encoded chunk.
type columnData struct {
	XPos       int32         `nbt:"xPos"`
	ZPos       int32         `nbt:"zPos"`
	YPos       int32         `nbt:"yPos"`
	LastUpdate int64         `nbt:"LastUpdate"`
	Sections   []sectionData `nbt:"sections"`
}

// sectionData is the NBT layout of one sub-chunk. Palette holds block save
// IDs and is absent for promoted sub-chunks, whose Blocks words hold save IDs
// directly.
type sectionData struct {
	Y         int32   `nbt:"Y"`
	Palette   []int32 `nbt:"palette,omitempty"`
	Bits      uint8   `nbt:"bits"`
	Blocks    []int64 `nbt:"block_states"`
	BiomeBits uint8   `nbt:"biome_bits"`
	Biomes    []int64 `nbt:"biomes"`
}

// Encode serialises every written sub-chunk of c as little-endian NBT.
func Encode[B, M comparable](c *Chunk[B, M]) ([]byte, error) {
	col := columnData{
		XPos:       c.X,
		ZPos:       c.Z,
		YPos:       int32(c.minSection),
		LastUpdate: c.LastUpdate,
	}
	for y, s := range c.Sections() {
		sd, err := encodeSection(s)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", y, err)
		}
		sd.Y = int32(y)
		col.Sections = append(col.Sections, sd)
	}
	data, err := nbt.MarshalEncoding(col, nbt.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("encode chunk %d,%d: %w", c.X, c.Z, err)
	}
	return data, nil
}

func encodeSection[B, M comparable](s *SubChunk[B, M]) (sectionData, error) {
	sd := sectionData{
		Bits:      s.blocks.Bits(),
		Blocks:    toLongs(s.blocks.Words()),
		BiomeBits: s.biomes.Bits(),
		Biomes:    toLongs(s.biomes.Words()),
	}
	if s.local != nil {
		sd.Palette = make([]int32, 0, s.local.Len())
		for _, b := range s.local.All() {
			id, ok := s.blockReg.ID(b)
			if !ok {
				return sectionData{}, fmt.Errorf("palette block %v: %w", b, ErrIllegalBlock)
			}
			sd.Palette = append(sd.Palette, int32(id))
		}
	}
	return sd, nil
}

// Decode parses data produced by Encode into a chunk of level. Every save ID
// is checked against the level's registries.
func Decode[B, M comparable](data []byte, level Level[B, M]) (*Chunk[B, M], error) {
	var col columnData
	if err := nbt.UnmarshalEncoding(data, &col, nbt.LittleEndian); err != nil {
		return nil, fmt.Errorf("decode chunk: %w", err)
	}

	c := New(col.XPos, col.ZPos, level)
	if int(col.YPos) != c.minSection {
		return nil, fmt.Errorf("lowest section %d, level starts at %d: %w", col.YPos, c.minSection, ErrCorruptSection)
	}
	c.LastUpdate = col.LastUpdate
	for _, sd := range col.Sections {
		i := int(sd.Y) - c.minSection
		if i < 0 || i >= len(c.subs) {
			return nil, fmt.Errorf("section %d outside height range: %w", sd.Y, ErrCorruptSection)
		}
		if c.subs[i] != nil {
			return nil, fmt.Errorf("section %d repeated: %w", sd.Y, ErrCorruptSection)
		}
		s, err := decodeSection(sd, level.Blocks(), level.Biomes())
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", sd.Y, err)
		}
		c.subs[i] = s
	}
	return c, nil
}

func decodeSection[B, M comparable](
	sd sectionData,
	blockReg registry.Registry[B],
	biomeReg registry.Registry[M],
) (*SubChunk[B, M], error) {
	blocks, err := packed.FromWords(BlockCount, sd.Bits, toWords(sd.Blocks))
	if err != nil {
		return nil, fmt.Errorf("blocks: %w: %w", ErrCorruptSection, err)
	}
	biomes, err := packed.FromWords(BiomeCount, sd.BiomeBits, toWords(sd.Biomes))
	if err != nil {
		return nil, fmt.Errorf("biomes: %w: %w", ErrCorruptSection, err)
	}

	s := &SubChunk[B, M]{
		blocks:   blocks,
		biomes:   biomes,
		blockReg: blockReg,
		biomeReg: biomeReg,
	}

	if len(sd.Palette) > 0 {
		if s.local, err = decodePalette(sd.Palette, blockReg); err != nil {
			return nil, err
		}
		if want := packed.MinBits(uint64(s.local.Len() - 1)); sd.Bits != want {
			return nil, fmt.Errorf("palette of %d needs %d bits, got %d: %w",
				s.local.Len(), want, sd.Bits, ErrCorruptSection)
		}
		if err := checkSlots(blocks, uint64(s.local.Len())); err != nil {
			return nil, fmt.Errorf("blocks: %w", err)
		}
	} else if err := fitGlobal(blocks, blockReg.Count()); err != nil {
		return nil, fmt.Errorf("blocks: %w", err)
	}

	if err := fitGlobal(biomes, biomeReg.Count()); err != nil {
		return nil, fmt.Errorf("biomes: %w", err)
	}
	return s, nil
}

func decodePalette[B comparable](ids []int32, reg registry.Registry[B]) (*palette.Palette[B], error) {
	if len(ids) > LocalPaletteCapacity {
		return nil, fmt.Errorf("palette of %d exceeds %d: %w", len(ids), LocalPaletteCapacity, ErrCorruptSection)
	}
	p := palette.New[B](LocalPaletteCapacity)
	for _, id := range ids {
		b, ok := reg.Value(uint32(id))
		if id < 0 || !ok {
			return nil, fmt.Errorf("palette save ID %d: %w", id, ErrIllegalBlock)
		}
		if _, dup := p.Search(b); dup {
			return nil, fmt.Errorf("palette save ID %d repeated: %w", id, ErrCorruptSection)
		}
		p.Insert(b)
	}
	return p, nil
}

// fitGlobal checks that every slot of a holds a save ID below count and widens
// a if the registry has grown since it was written.
func fitGlobal(a *packed.Array, count int) error {
	want := globalBits(count)
	if a.Bits() > want {
		return fmt.Errorf("%d bits for %d save IDs: %w", a.Bits(), count, ErrCorruptSection)
	}
	if err := checkSlots(a, uint64(count)); err != nil {
		return err
	}
	if a.Bits() < want {
		a.Resize(want)
	}
	return nil
}

func checkSlots(a *packed.Array, limit uint64) error {
	for i, v := range a.All() {
		if v >= limit {
			return fmt.Errorf("slot %d holds %d, limit %d: %w", i, v, limit, ErrCorruptSection)
		}
	}
	return nil
}

func toLongs(words []uint64) []int64 {
	out := make([]int64, len(words))
	for i, w := range words {
		out[i] = int64(w)
	}
	return out
}

func toWords(longs []int64) []uint64 {
	out := make([]uint64, len(longs))
	for i, l := range longs {
		out[i] = uint64(l)
	}
	return out
}

package chunk

import (
	"fmt"

	"github.com/joshuapare/voxstore/packed"
	"github.com/joshuapare/voxstore/palette"
	"github.com/joshuapare/voxstore/registry"
)

const (
	// Size is the edge length of a sub-chunk in blocks.
	Size = 16
	// BiomeSize is the edge length of a sub-chunk in biome cells.
	BiomeSize = 4

	// BlockCount and BiomeCount are the slot counts of the two arrays.
	BlockCount = Size * Size * Size
	BiomeCount = BiomeSize * BiomeSize * BiomeSize

	// LocalPaletteCapacity is the number of distinct blocks a sub-chunk keeps
	// behind its local palette before switching to global save IDs.
	LocalPaletteCapacity = 128
)

// SubChunk holds the blocks and biomes of one 16x16x16 vertical segment.
//
// NOT thread-safe.
type SubChunk[B, M comparable] struct {
	blocks *packed.Array
	// local is nil once the sub-chunk has been promoted to global save IDs.
	local  *palette.Palette[B]
	biomes *packed.Array

	blockReg registry.Registry[B]
	biomeReg registry.Registry[M]
}

// NewSubChunk returns a sub-chunk filled with defaultBlock and defaultBiome.
func NewSubChunk[B, M comparable](
	blocks registry.Registry[B],
	biomes registry.Registry[M],
	defaultBlock B,
	defaultBiome M,
) (*SubChunk[B, M], error) {
	if !blocks.Has(defaultBlock) {
		return nil, fmt.Errorf("default block %v: %w", defaultBlock, ErrIllegalBlock)
	}
	biomeID, ok := biomes.ID(defaultBiome)
	if !ok {
		return nil, fmt.Errorf("default biome %v: %w", defaultBiome, ErrIllegalBiome)
	}

	local := palette.New[B](LocalPaletteCapacity)
	local.Insert(defaultBlock)

	return &SubChunk[B, M]{
		blocks:   packed.New(BlockCount, packed.MinBits(0), 0),
		local:    local,
		biomes:   packed.New(BiomeCount, biomeBits(biomes), uint64(biomeID)),
		blockReg: blocks,
		biomeReg: biomes,
	}, nil
}

// globalBits returns the slot width needed for every save ID of a registry
// holding count values.
func globalBits(count int) uint8 {
	if count <= 1 {
		return 1
	}
	return packed.MinBits(uint64(count - 1))
}

func biomeBits[M comparable](reg registry.Registry[M]) uint8 {
	return globalBits(reg.Count())
}

// BlockIndex returns the block slot of (x, y, z). Coordinates must be in [0, 16).
func BlockIndex(x, y, z int) int {
	if uint(x) >= Size || uint(y) >= Size || uint(z) >= Size {
		panic(fmt.Sprintf("chunk: block coordinate (%d,%d,%d) out of range", x, y, z))
	}
	return y<<8 | z<<4 | x
}

// BiomeIndex returns the biome slot of cell (x, y, z). Coordinates must be in [0, 4).
func BiomeIndex(x, y, z int) int {
	if uint(x) >= BiomeSize || uint(y) >= BiomeSize || uint(z) >= BiomeSize {
		panic(fmt.Sprintf("chunk: biome coordinate (%d,%d,%d) out of range", x, y, z))
	}
	return y<<4 | z<<2 | x
}

// Local reports whether blocks are still stored behind the local palette.
func (s *SubChunk[B, M]) Local() bool { return s.local != nil }

// PaletteLen returns the size of the local palette, or 0 after promotion.
func (s *SubChunk[B, M]) PaletteLen() int {
	if s.local == nil {
		return 0
	}
	return s.local.Len()
}

// Bits returns the current width of a block slot.
func (s *SubChunk[B, M]) Bits() uint8 { return s.blocks.Bits() }

// Block returns the block at (x, y, z).
func (s *SubChunk[B, M]) Block(x, y, z int) B {
	v := s.blocks.Get(BlockIndex(x, y, z))
	if s.local != nil {
		return s.local.At(int(v))
	}
	b, ok := s.blockReg.Value(uint32(v))
	if !ok {
		panic(fmt.Sprintf("chunk: slot holds unregistered block save ID %d", v))
	}
	return b
}

// SetBlock stores b at (x, y, z). It fails with ErrIllegalBlock if b is not
// registered; the sub-chunk is unchanged in that case.
func (s *SubChunk[B, M]) SetBlock(x, y, z int, b B) error {
	i := BlockIndex(x, y, z)
	v, err := s.resolveBlock(b)
	if err != nil {
		return err
	}
	s.blocks.Set(i, v)
	return nil
}

// resolveBlock returns the value b is stored as, growing the slot width or
// promoting the sub-chunk as needed.
func (s *SubChunk[B, M]) resolveBlock(b B) (uint64, error) {
	if s.local != nil {
		if i, ok := s.local.Search(b); ok {
			return uint64(i), nil
		}
		// Unregistered blocks never enter the palette.
		if !s.blockReg.Has(b) {
			return 0, fmt.Errorf("block %v: %w", b, ErrIllegalBlock)
		}
		if i, ok := s.local.Insert(b); ok {
			if need := packed.MinBits(uint64(i)); need > s.blocks.Bits() {
				s.blocks.Resize(need)
			}
			return uint64(i), nil
		}
		if err := s.promote(); err != nil {
			return 0, err
		}
	}

	id, ok := s.blockReg.ID(b)
	if !ok {
		return 0, fmt.Errorf("block %v: %w", b, ErrIllegalBlock)
	}
	// The registry may have grown since promotion.
	if packed.MinBits(uint64(id)) > s.blocks.Bits() {
		s.blocks.Resize(globalBits(s.blockReg.Count()))
	}
	return uint64(id), nil
}

// promote rewrites every slot from a local palette index to the block's save
// ID and drops the palette.
func (s *SubChunk[B, M]) promote() error {
	ids := make([]uint64, s.local.Len())
	for i, b := range s.local.All() {
		id, ok := s.blockReg.ID(b)
		if !ok {
			return fmt.Errorf("palette block %v no longer registered: %w", b, ErrIllegalBlock)
		}
		ids[i] = uint64(id)
	}

	remap := func(v uint64) uint64 { return ids[v] }
	if need := globalBits(s.blockReg.Count()); need > s.blocks.Bits() {
		s.blocks.ResizeAndReplace(need, remap)
	} else {
		s.blocks.Replace(remap)
	}
	s.local = nil
	return nil
}

// Biome returns the biome of cell (x, y, z), each coordinate in [0, 4).
func (s *SubChunk[B, M]) Biome(x, y, z int) M {
	v := s.biomes.Get(BiomeIndex(x, y, z))
	m, ok := s.biomeReg.Value(uint32(v))
	if !ok {
		panic(fmt.Sprintf("chunk: slot holds unregistered biome save ID %d", v))
	}
	return m
}

// SetBiome stores m in cell (x, y, z). It fails with ErrIllegalBiome if m is
// not registered.
func (s *SubChunk[B, M]) SetBiome(x, y, z int, m M) error {
	i := BiomeIndex(x, y, z)
	id, ok := s.biomeReg.ID(m)
	if !ok {
		return fmt.Errorf("biome %v: %w", m, ErrIllegalBiome)
	}
	if packed.MinBits(uint64(id)) > s.biomes.Bits() {
		s.biomes.Resize(biomeBits(s.biomeReg))
	}
	s.biomes.Set(i, uint64(id))
	return nil
}

package chunk

import (
	"fmt"
	"iter"
)

// Chunk is a column of sub-chunks at chunk coordinate (X, Z).
//
// NOT thread-safe.
type Chunk[B, M comparable] struct {
	X, Z int32
	// LastUpdate is the world tick of the last change, kept as-is by the codec.
	LastUpdate int64

	level      Level[B, M]
	minSection int
	subs       []*SubChunk[B, M]
}

// New returns an empty column. It panics if the level's height range is not
// made of whole sub-chunks.
func New[B, M comparable](x, z int32, level Level[B, M]) *Chunk[B, M] {
	minY, maxY := level.HeightRange()
	if minY%Size != 0 || maxY%Size != 0 || maxY <= minY {
		panic(fmt.Sprintf("chunk: height range [%d,%d) is not whole sub-chunks", minY, maxY))
	}
	return &Chunk[B, M]{
		X:          x,
		Z:          z,
		level:      level,
		minSection: minY >> 4,
		subs:       make([]*SubChunk[B, M], (maxY-minY)/Size),
	}
}

// Level returns the level the chunk was created for.
func (c *Chunk[B, M]) Level() Level[B, M] { return c.level }

// MinSection returns the section y of the lowest sub-chunk.
func (c *Chunk[B, M]) MinSection() int { return c.minSection }

// SectionCount returns the number of sub-chunk slots in the column.
func (c *Chunk[B, M]) SectionCount() int { return len(c.subs) }

// slot returns the sub-chunk slot of world y.
func (c *Chunk[B, M]) slot(y int) (int, error) {
	i := (y >> 4) - c.minSection
	if i < 0 || i >= len(c.subs) {
		minY, maxY := c.level.HeightRange()
		return 0, fmt.Errorf("y %d not in [%d,%d): %w", y, minY, maxY, ErrOutOfHeight)
	}
	return i, nil
}

// SubChunk returns the sub-chunk at section y, or nil if it was never written
// or section is outside the column.
func (c *Chunk[B, M]) SubChunk(section int) *SubChunk[B, M] {
	i := section - c.minSection
	if i < 0 || i >= len(c.subs) {
		return nil
	}
	return c.subs[i]
}

// Sections yields the section y and sub-chunk of every written sub-chunk,
// bottom to top.
func (c *Chunk[B, M]) Sections() iter.Seq2[int, *SubChunk[B, M]] {
	return func(yield func(int, *SubChunk[B, M]) bool) {
		for i, s := range c.subs {
			if s == nil {
				continue
			}
			if !yield(c.minSection+i, s) {
				return
			}
		}
	}
}

// ensure returns the sub-chunk in slot i, creating it from the level defaults.
func (c *Chunk[B, M]) ensure(i int) (*SubChunk[B, M], error) {
	if s := c.subs[i]; s != nil {
		return s, nil
	}
	s, err := NewSubChunk(c.level.Blocks(), c.level.Biomes(), c.level.DefaultBlock(), c.level.DefaultBiome())
	if err != nil {
		return nil, err
	}
	c.subs[i] = s
	return s, nil
}

// Block returns the block at chunk-local x, z (in [0, 16)) and world y.
// Positions in unwritten sub-chunks or outside the height range hold the
// default block.
func (c *Chunk[B, M]) Block(x, y, z int) B {
	i, err := c.slot(y)
	if err != nil || c.subs[i] == nil {
		return c.level.DefaultBlock()
	}
	return c.subs[i].Block(x, y&(Size-1), z)
}

// SetBlock stores b at chunk-local x, z and world y.
func (c *Chunk[B, M]) SetBlock(x, y, z int, b B) error {
	i, err := c.slot(y)
	if err != nil {
		return err
	}
	// Skip allocating a sub-chunk just to store its default.
	if c.subs[i] == nil && b == c.level.DefaultBlock() {
		return nil
	}
	s, err := c.ensure(i)
	if err != nil {
		return err
	}
	return s.SetBlock(x, y&(Size-1), z, b)
}

// Biome returns the biome at chunk-local block x, z and world block y.
func (c *Chunk[B, M]) Biome(x, y, z int) M {
	i, err := c.slot(y)
	if err != nil || c.subs[i] == nil {
		return c.level.DefaultBiome()
	}
	return c.subs[i].Biome(x>>2, (y&(Size-1))>>2, z>>2)
}

// SetBiome stores m in the biome cell containing chunk-local block x, z and
// world block y.
func (c *Chunk[B, M]) SetBiome(x, y, z int, m M) error {
	i, err := c.slot(y)
	if err != nil {
		return err
	}
	if c.subs[i] == nil && m == c.level.DefaultBiome() {
		return nil
	}
	s, err := c.ensure(i)
	if err != nil {
		return err
	}
	return s.SetBiome(x>>2, (y&(Size-1))>>2, z>>2, m)
}

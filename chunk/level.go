package chunk

import "github.com/joshuapare/voxstore/registry"

// Level supplies the parameters chunks are built from: the vertical extent,
// what a fresh sub-chunk is filled with, and the registries resolving save IDs.
type Level[B, M comparable] interface {
	// HeightRange returns the lowest block y and the y just above the highest
	// block. Both are multiples of 16.
	HeightRange() (minY, maxY int)
	DefaultBlock() B
	DefaultBiome() M
	Blocks() registry.Registry[B]
	Biomes() registry.Registry[M]
}

// Settings is a plain Level.
type Settings[B, M comparable] struct {
	MinY, MaxY int
	Block      B
	Biome      M
	BlockTable registry.Registry[B]
	BiomeTable registry.Registry[M]
}

var _ Level[int, int] = Settings[int, int]{}

func (s Settings[B, M]) HeightRange() (int, int)      { return s.MinY, s.MaxY }
func (s Settings[B, M]) DefaultBlock() B              { return s.Block }
func (s Settings[B, M]) DefaultBiome() M              { return s.Biome }
func (s Settings[B, M]) Blocks() registry.Registry[B] { return s.BlockTable }
func (s Settings[B, M]) Biomes() registry.Registry[M] { return s.BiomeTable }

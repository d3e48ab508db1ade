package chunk

import "errors"

var (
	// ErrIllegalBlock indicates a block that is not registered globally.
	ErrIllegalBlock = errors.New("chunk: illegal block")
	// ErrIllegalBiome indicates a biome that is not registered globally.
	ErrIllegalBiome = errors.New("chunk: illegal biome")
	// ErrOutOfHeight indicates a y coordinate outside the level's height range.
	ErrOutOfHeight = errors.New("chunk: y outside height range")
	// ErrCorruptSection indicates encoded section data that cannot be decoded.
	ErrCorruptSection = errors.New("chunk: corrupt section")
)

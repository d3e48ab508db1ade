// Package chunk stores the blocks and biomes of a chunk column in as few bits
// as possible.
//
// # Sub-chunks
//
// A SubChunk covers a 16x16x16 cube of blocks and a 4x4x4 grid of biome
// cells (each cell spanning 4x4x4 blocks). Block slots are indexed
// y<<8 | z<<4 | x, biome slots y<<4 | z<<2 | x.
//
// Blocks start out behind a local palette of at most LocalPaletteCapacity
// entries. Each slot then stores a palette index and the slot width is the
// minimum number of bits for the largest index. When a new distinct block
// would overflow the palette, the sub-chunk is promoted once and for all:
// every slot is rewritten to the block's global save ID, the width grows to
// fit the largest save ID of the block registry and the palette is dropped.
//
//	sub, err := chunk.NewSubChunk(blocks, biomes, air, plains)
//	if err != nil {
//	    return err
//	}
//	if err := sub.SetBlock(1, 2, 3, stone); err != nil { // ErrIllegalBlock if unregistered
//	    return err
//	}
//	b := sub.Block(1, 2, 3) // stone
//
// Biomes are never paletted: the biome space is small, so slots hold save IDs
// from the biome registry directly.
//
// # Columns
//
// A Chunk stacks sub-chunks over the height range of a Level. Sub-chunks are
// created on the first write; reading an absent one returns the level's
// default block and biome.
//
// # Encoding
//
// Encode and Decode convert a Chunk to and from little-endian NBT. Palettes are
// written as save IDs so the encoding stays valid across processes as long
// as the registries assign the same IDs.
//
// # Concurrency
//
// Nothing in this package locks. A chunk has a single writer at a time and
// readers must not overlap with it; the level owning the chunk enforces that.
package chunk

// Package region reads and writes region files: 32x32 chunk containers made
// of 4096-byte sectors.
//
// # Layout
//
// The first two sectors hold the header. Sector 0 is the location table, one
// big-endian word per chunk packing the first sector (24 bits) and the sector
// count (8 bits). Sector 1 holds the matching Unix write timestamps. Chunk
// (cx, cz) uses slot (cx&31) | (cz&31)<<5.
//
// Each chunk starts on a sector boundary with a 4-byte length, counting the
// method byte that follows, and then the compressed payload:
//
//	[u32 length][u8 method][payload...]
//
// The method is 1 (gzip), 2 (zlib) or 3 (none). A chunk too large for 255
// sectors keeps a single sector with length 1 and method|0x80; its payload
// lives in c.<cx>.<cz>.mcc next to the region file.
//
// # Allocation
//
// Sectors are allocated first-fit from an in-memory bitmap rebuilt on open.
// A chunk whose size in sectors is unchanged is rewritten in place. Otherwise
// its old range is freed and a new run is searched for, growing the file at
// the tail when no run fits inside it.
//
// # Maintenance
//
// Freed sectors are reused but the file never shrinks; Compact rewrites it
// without holes. Verify finds chunks sharing sectors or failing to
// decompress, and Repair removes them. Inspect summarizes a file without
// opening it for writing.
//
// # Concurrency
//
// A File is not safe for concurrent use. The storage package serializes all
// access through one worker goroutine.
package region

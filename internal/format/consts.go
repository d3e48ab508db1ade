// Package format houses the on-disk constants and small codecs of the region
// file format: sector geometry, the location/timestamp header, compression
// ids and file naming. Higher-level packages (region, storage) orchestrate the
// I/O; this package never touches a file.
package format

const (
	// SectorSize is the allocation unit of a region file in bytes.
	SectorSize = 4096

	// HeaderSectors is the number of sectors occupied by the header: one
	// sector of locations followed by one sector of timestamps.
	HeaderSectors = 2

	// HeaderSize is the size of the region header in bytes. A region file is
	// never smaller than this.
	HeaderSize = HeaderSectors * SectorSize

	// RegionWidth is the number of chunks along each horizontal axis of a region.
	RegionWidth = 32

	// ChunksPerRegion is the number of header entries (32x32).
	ChunksPerRegion = RegionWidth * RegionWidth

	// LocationTableOffset and TimestampTableOffset are absolute file offsets
	// of the two header tables. Every entry is a big-endian uint32.
	//
	//	Offset  Size   Description
	//	------  -----  ------------------------------------------------------
	//	0x0000  4096   1024 x (sector offset << 8 | sector count)
	//	0x1000  4096   1024 x last modification time, Unix seconds
	LocationTableOffset  = 0
	TimestampTableOffset = SectorSize
	EntrySize            = 4

	// MaxSectorOffset is the largest sector offset a location entry can hold
	// (24 bits).
	MaxSectorOffset = 1<<24 - 1

	// MaxSectorCount is the largest per-chunk sector count a location entry
	// can hold (8 bits).
	MaxSectorCount = 255

	// ChunkHeaderSize is the per-chunk prefix: a big-endian uint32 length
	// (which counts the method byte) and the compression method byte.
	ChunkHeaderSize = 5

	// ExternalThreshold bounds the bytes a chunk may occupy inside the region
	// file, prefix included. Larger chunks go to a companion external file.
	ExternalThreshold = MaxSectorCount * SectorSize
)

package format

// SectorsFor returns the number of sectors a chunk needs for a payload of n
// compressed bytes, and whether the payload must be stored externally.
//
// A chunk occupies ChunkHeaderSize+n bytes. Once that no longer fits in
// MaxSectorCount sectors the chunk is external and keeps a single sector for
// its prefix:
//
//	SectorsFor(0)                      = 1, false
//	SectorsFor(4091)                   = 1, false
//	SectorsFor(4092)                   = 2, false
//	SectorsFor(ExternalThreshold-5)    = 255, false
//	SectorsFor(ExternalThreshold-4)    = 1, true
func SectorsFor(n int) (sectors int, external bool) {
	total := ChunkHeaderSize + n
	if total > ExternalThreshold {
		return 1, true
	}
	return AlignSector(total) / SectorSize, false
}

// AlignSector returns n aligned up to the next sector boundary.
//
//	AlignSector(1)    = 4096
//	AlignSector(4096) = 4096
//	AlignSector(4097) = 8192
func AlignSector(n int) int {
	return (n + SectorSize - 1) &^ (SectorSize - 1)
}

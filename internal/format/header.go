package format

import (
	"fmt"

	"github.com/joshuapare/voxstore/internal/buf"
)

// Location is one entry of the location table: where a chunk's sectors start
// and how many there are. A zero Sectors value means the chunk is absent.
type Location struct {
	Offset  uint32 // first sector, absolute (header sectors included)
	Sectors uint8
}

// Empty reports whether the entry describes no chunk.
func (l Location) Empty() bool { return l.Sectors == 0 }

// End returns the sector index just past the chunk.
func (l Location) End() uint32 { return l.Offset + uint32(l.Sectors) }

// Pack encodes the location as a header word. Offsets above MaxSectorOffset
// panic: callers must fall back to external storage before getting here.
func (l Location) Pack() uint32 {
	if l.Offset > MaxSectorOffset {
		panic(fmt.Sprintf("format: sector offset %d exceeds 24 bits", l.Offset))
	}
	return l.Offset<<8 | uint32(l.Sectors)
}

// UnpackLocation decodes a header word.
func UnpackLocation(v uint32) Location {
	return Location{Offset: v >> 8, Sectors: uint8(v)}
}

// Index returns the header slot for a chunk. Only the low five bits of each
// coordinate are used, so both world and region-local coordinates work.
func Index(cx, cz int32) int {
	return int(cx&(RegionWidth-1)) | int(cz&(RegionWidth-1))<<5
}

// Header is the decoded two-sector region header.
type Header struct {
	Locations  [ChunksPerRegion]Location
	Timestamps [ChunksPerRegion]uint32
}

// ParseHeader decodes the locations and timestamps from the first HeaderSize
// bytes of b. It performs no range validation; see Header.Validate.
func ParseHeader(b []byte) (*Header, error) {
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("region header: %w", ErrFileTooSmall)
	}
	h := &Header{}
	for i := range ChunksPerRegion {
		h.Locations[i] = UnpackLocation(buf.U32BE(b[LocationTableOffset+i*EntrySize:]))
		h.Timestamps[i] = buf.U32BE(b[TimestampTableOffset+i*EntrySize:])
	}
	return h, nil
}

// Validate checks every non-empty location against a file of totalSectors
// sectors. Entries overlapping the header or running past the end are
// reported as ErrIllegalMetadata.
func (h *Header) Validate(totalSectors uint32) error {
	for i, loc := range h.Locations {
		if loc.Empty() {
			continue
		}
		if loc.Offset < HeaderSectors || loc.End() > totalSectors {
			return fmt.Errorf("chunk %d at sectors [%d,%d) of %d: %w",
				i, loc.Offset, loc.End(), totalSectors, ErrIllegalMetadata)
		}
	}
	return nil
}

// PutLocation writes the location word of slot i into a header-sized buffer.
func PutLocation(b []byte, i int, loc Location) {
	buf.PutU32BE(b[LocationTableOffset+i*EntrySize:], loc.Pack())
}

// PutTimestamp writes the timestamp word of slot i into a header-sized buffer.
func PutTimestamp(b []byte, i int, ts uint32) {
	buf.PutU32BE(b[TimestampTableOffset+i*EntrySize:], ts)
}

// LocationOffset and TimestampOffset return the absolute file offsets of slot i.
func LocationOffset(i int) int64 { return int64(LocationTableOffset + i*EntrySize) }
func TimestampOffset(i int) int64 { return int64(TimestampTableOffset + i*EntrySize) }

package region

import (
	"fmt"
	"path/filepath"

	"github.com/joshuapare/voxstore/internal/format"
	"github.com/joshuapare/voxstore/internal/mmfile"
)

// Summary is a read-only description of a region file.
type Summary struct {
	Pos    RegionPos
	Stats  Stats
	Chunks []ChunkInfo
}

// Inspect maps the region file at path read-only and describes every stored
// chunk without decompressing any payload. Unlike OpenFile it never needs
// write access.
func Inspect(path string) (*Summary, error) {
	rx, rz, err := format.ParseRegionFileName(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	data, unmap, err := mmfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("inspect region: %w", err)
	}
	defer unmap()

	if err := checkSize(int64(len(data))); err != nil {
		return nil, fmt.Errorf("inspect region %s: %w", path, err)
	}
	h, err := parseHeader(data[:format.HeaderSize], int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("inspect region %s: %w", path, err)
	}

	pos := RegionPos{X: rx, Z: rz}
	sectors := newSectorMap(len(data) / format.SectorSize)
	sectors.mark(0, format.HeaderSectors, true)
	s := &Summary{Pos: pos}
	for i, loc := range h.Locations {
		if loc.Empty() {
			continue
		}
		sectors.mark(int(loc.Offset), int(loc.Sectors), true)
		off := int(loc.Offset) * format.SectorSize
		length, c, external, err := parsePrefix(data[off:off+format.ChunkHeaderSize], loc)
		p := pos.Chunk(i)
		if err != nil {
			return nil, fmt.Errorf("chunk %d,%d: %w", p.X, p.Z, err)
		}
		s.Chunks = append(s.Chunks, ChunkInfo{
			Pos:         p,
			Offset:      loc.Offset,
			Sectors:     loc.Sectors,
			Length:      length,
			Compression: c,
			External:    external,
			Timestamp:   format.UnixToTime(h.Timestamps[i]),
		})
	}
	s.Stats = Stats{
		Sectors:     sectors.Len(),
		UsedSectors: sectors.usedCount(),
		Chunks:      len(s.Chunks),
		Size:        int64(len(data)),
	}
	s.Stats.FreeSectors = s.Stats.Sectors - s.Stats.UsedSectors
	return s, nil
}

package region

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joshuapare/voxstore/internal/format"
)

// Compact rewrites the region file at path with its chunks packed in header
// order, dropping unused sectors. Timestamps and payloads are kept as stored.
// It returns the statistics before and after.
func Compact(path string, opts ...Option) (before, after Stats, err error) {
	src, err := OpenFile(path, opts...)
	if err != nil {
		return Stats{}, Stats{}, err
	}
	defer func() {
		if !src.closed {
			_ = src.Close()
		}
	}()
	before = src.Stats()

	tmp := path + ".compact"
	_ = os.Remove(tmp)
	osf, err := os.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return before, Stats{}, fmt.Errorf("compact: %w", err)
	}
	if err := osf.Truncate(format.HeaderSize); err != nil {
		_ = osf.Close()
		_ = os.Remove(tmp)
		return before, Stats{}, fmt.Errorf("compact: %w", err)
	}
	dst := newFile(tmp, src.pos, osf, &format.Header{}, opts)
	// Companion files are shared with the source.
	dst.dir = filepath.Dir(path)
	dst.sectors.mark(0, format.HeaderSectors, true)

	copyErr := copyChunks(src, dst)
	after = dst.Stats()
	if err := errors.Join(copyErr, dst.Flush(), dst.Close(), src.Close()); err != nil {
		_ = os.Remove(tmp)
		return before, Stats{}, fmt.Errorf("compact %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return before, Stats{}, fmt.Errorf("compact: %w", err)
	}
	src.log.Info("region compacted", "path", path,
		"sectors_before", before.Sectors, "sectors_after", after.Sectors)
	return before, after, nil
}

func copyChunks(src, dst *File) error {
	for i, loc := range src.header.Locations {
		if loc.Empty() {
			continue
		}
		p := src.world(i)
		_, c, external, err := src.prefix(loc)
		if err != nil {
			return fmt.Errorf("chunk %d,%d: %w", p.X, p.Z, err)
		}
		if external {
			// The companion file stays where it is.
			if err := dst.writeExternalStub(i, c, src.header.Timestamps[i]); err != nil {
				return fmt.Errorf("chunk %d,%d: %w", p.X, p.Z, err)
			}
			continue
		}
		payload, _, err := src.ReadRaw(p.X, p.Z)
		if err != nil {
			return err
		}
		if err := dst.write(i, payload, c, src.header.Timestamps[i]); err != nil {
			return fmt.Errorf("chunk %d,%d: %w", p.X, p.Z, err)
		}
	}
	return nil
}

// writeExternalStub allocates the single sector of an external chunk whose
// companion file already exists.
func (f *File) writeExternalStub(i int, c Compression, ts uint32) error {
	loc, grown, err := f.allocate(format.Location{}, 1)
	if err != nil {
		return err
	}
	var p [format.ChunkHeaderSize]byte
	p[3] = 1
	p[4] = format.MethodByte(c, true)
	if _, err := f.f.WriteAt(p[:], int64(loc.Offset)*format.SectorSize); err != nil {
		f.rollback(format.Location{}, loc, grown)
		return fmt.Errorf("write chunk header: %w", err)
	}
	return f.putEntry(i, loc, ts)
}

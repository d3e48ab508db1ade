package region

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joshuapare/voxstore/internal/buf"
	"github.com/joshuapare/voxstore/internal/format"
	"github.com/joshuapare/voxstore/internal/logger"
	"github.com/joshuapare/voxstore/internal/writer"
)

type (
	ChunkPos    = format.ChunkPos
	RegionPos   = format.RegionPos
	Compression = format.Compression
)

const (
	Gzip = format.Gzip
	Zlib = format.Zlib
	None = format.None
)

// File is an open region file.
//
// NOT thread-safe: a File is owned by one goroutine at a time.
type File struct {
	path string
	dir  string
	pos  RegionPos
	f    *os.File
	// headerW receives location and timestamp writes.
	headerW io.WriterAt

	header  *format.Header
	sectors *sectorMap

	// maxOffset is the highest sector offset a location entry may hold.
	maxOffset uint32
	now       func() time.Time
	log       *slog.Logger
	closed    bool
}

// Option configures a File when it is created or opened.
type Option func(*File)

// WithLogger sets the logger. The default is logger.L.
func WithLogger(l *slog.Logger) Option {
	return func(f *File) { f.log = l }
}

// WithClock sets the source of chunk timestamps.
func WithClock(now func() time.Time) Option {
	return func(f *File) { f.now = now }
}

// ChunkInfo describes one stored chunk.
type ChunkInfo struct {
	Pos         ChunkPos
	Offset      uint32
	Sectors     uint8
	Length      uint32 // stored length, method byte included
	Compression Compression
	External    bool
	Timestamp   time.Time
}

// Stats summarizes sector usage.
type Stats struct {
	Sectors     int // total, header included
	UsedSectors int
	FreeSectors int
	Chunks      int
	Size        int64
}

// Path returns the path of the region file.
func Path(dir string, rx, rz int32) string {
	return filepath.Join(dir, format.RegionFileName(rx, rz))
}

// Create creates the empty region file (rx, rz) in dir. It fails if the file
// already exists.
func Create(dir string, rx, rz int32, opts ...Option) (*File, error) {
	path := Path(dir, rx, rz)
	osf, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create region: %w", err)
	}
	if err := osf.Truncate(format.HeaderSize); err != nil {
		_ = osf.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("create region %s: %w", path, err)
	}

	f := newFile(path, RegionPos{X: rx, Z: rz}, osf, &format.Header{}, opts)
	f.sectors.mark(0, format.HeaderSectors, true)
	f.log.Debug("region created", "path", path)
	return f, nil
}

// Open opens the existing region file (rx, rz) in dir.
func Open(dir string, rx, rz int32, opts ...Option) (*File, error) {
	return openFile(Path(dir, rx, rz), RegionPos{X: rx, Z: rz}, opts)
}

// OpenFile opens the region file at path. The base name must follow the
// r.<rx>.<rz>.mca scheme.
func OpenFile(path string, opts ...Option) (*File, error) {
	rx, rz, err := format.ParseRegionFileName(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return openFile(path, RegionPos{X: rx, Z: rz}, opts)
}

// OpenOrCreate opens region (rx, rz) in dir, creating it if it does not exist.
func OpenOrCreate(dir string, rx, rz int32, opts ...Option) (*File, error) {
	f, err := Open(dir, rx, rz, opts...)
	if errors.Is(err, fs.ErrNotExist) {
		f, err = Create(dir, rx, rz, opts...)
		if errors.Is(err, fs.ErrExist) {
			// Lost a race with another creator.
			return Open(dir, rx, rz, opts...)
		}
	}
	return f, err
}

func newFile(path string, pos RegionPos, osf *os.File, h *format.Header, opts []Option) *File {
	f := &File{
		path:      path,
		dir:       filepath.Dir(path),
		pos:       pos,
		f:         osf,
		headerW:   osf,
		header:    h,
		maxOffset: format.MaxSectorOffset,
		now:       time.Now,
		log:       logger.L,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.log = logger.Or(f.log)
	st, err := osf.Stat()
	n := format.HeaderSectors
	if err == nil {
		n = max(n, int(st.Size()/format.SectorSize))
	}
	f.sectors = newSectorMap(n)
	return f
}

func openFile(path string, pos RegionPos, opts []Option) (*File, error) {
	osf, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open region: %w", err)
	}
	h, err := readHeader(osf)
	if err != nil {
		_ = osf.Close()
		return nil, fmt.Errorf("open region %s: %w", path, err)
	}

	f := newFile(path, pos, osf, h, opts)
	f.sectors.mark(0, format.HeaderSectors, true)
	for _, loc := range h.Locations {
		if !loc.Empty() {
			f.sectors.mark(int(loc.Offset), int(loc.Sectors), true)
		}
	}
	f.log.Debug("region opened", "path", path, "sectors", f.sectors.Len())
	return f, nil
}

// readHeader checks the file size and parses and validates the header.
func readHeader(osf *os.File) (*format.Header, error) {
	st, err := osf.Stat()
	if err != nil {
		return nil, err
	}
	if err := checkSize(st.Size()); err != nil {
		return nil, err
	}
	raw := make([]byte, format.HeaderSize)
	if _, err := osf.ReadAt(raw, 0); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	return parseHeader(raw, st.Size())
}

func checkSize(size int64) error {
	if size < format.HeaderSize {
		return fmt.Errorf("%d bytes: %w", size, format.ErrFileTooSmall)
	}
	if size%format.SectorSize != 0 {
		return fmt.Errorf("%d bytes: %w", size, format.ErrFileNotPadded)
	}
	return nil
}

func parseHeader(raw []byte, size int64) (*format.Header, error) {
	h, err := format.ParseHeader(raw)
	if err != nil {
		return nil, err
	}
	if err := h.Validate(uint32(size / format.SectorSize)); err != nil {
		return nil, err
	}
	return h, nil
}

// Path returns the file's path.
func (f *File) Path() string { return f.path }

// Pos returns the region coordinate.
func (f *File) Pos() RegionPos { return f.pos }

// world returns the world coordinate of the chunk at slot i.
func (f *File) world(i int) ChunkPos { return f.pos.Chunk(i) }

// HasChunk reports whether chunk (cx, cz) has sectors allocated.
func (f *File) HasChunk(cx, cz int32) bool {
	return !f.header.Locations[format.Index(cx, cz)].Empty()
}

// Timestamp returns the last write time of chunk (cx, cz), or the zero time.
func (f *File) Timestamp(cx, cz int32) time.Time {
	return format.UnixToTime(f.header.Timestamps[format.Index(cx, cz)])
}

// Chunks yields the world coordinate of every stored chunk in header order.
func (f *File) Chunks() iter.Seq[ChunkPos] {
	return func(yield func(ChunkPos) bool) {
		for i, loc := range f.header.Locations {
			if loc.Empty() {
				continue
			}
			if !yield(f.world(i)) {
				return
			}
		}
	}
}

// Stats returns sector usage.
func (f *File) Stats() Stats {
	s := Stats{
		Sectors:     f.sectors.Len(),
		UsedSectors: f.sectors.usedCount(),
		Size:        int64(f.sectors.Len()) * format.SectorSize,
	}
	s.FreeSectors = s.Sectors - s.UsedSectors
	for _, loc := range f.header.Locations {
		if !loc.Empty() {
			s.Chunks++
		}
	}
	return s
}

// prefix reads the length and method byte of the chunk at loc.
func (f *File) prefix(loc format.Location) (length uint32, c Compression, external bool, err error) {
	var p [format.ChunkHeaderSize]byte
	if _, err := f.f.ReadAt(p[:], int64(loc.Offset)*format.SectorSize); err != nil {
		return 0, 0, false, fmt.Errorf("read chunk header: %w", err)
	}
	return parsePrefix(p[:], loc)
}

// parsePrefix decodes a chunk's 5-byte prefix, checking the length against
// the chunk's allocation.
func parsePrefix(p []byte, loc format.Location) (length uint32, c Compression, external bool, err error) {
	length = buf.U32BE(p)
	if length == 0 || int64(length) > int64(loc.Sectors)*format.SectorSize-4 {
		return 0, 0, false, fmt.Errorf("chunk length %d in %d sectors: %w",
			length, loc.Sectors, format.ErrIllegalMetadata)
	}
	c, external, err = format.SplitMethod(p[4])
	return length, c, external, err
}

func (f *File) externalPath(i int) string {
	p := f.world(i)
	return filepath.Join(f.dir, format.ExternalFileName(p.X, p.Z))
}

// Info describes chunk (cx, cz).
func (f *File) Info(cx, cz int32) (ChunkInfo, error) {
	if f.closed {
		return ChunkInfo{}, ErrClosed
	}
	i := format.Index(cx, cz)
	loc := f.header.Locations[i]
	if loc.Empty() {
		return ChunkInfo{}, ErrEmptyChunk
	}
	length, c, external, err := f.prefix(loc)
	if err != nil {
		return ChunkInfo{}, err
	}
	return ChunkInfo{
		Pos:         f.world(i),
		Offset:      loc.Offset,
		Sectors:     loc.Sectors,
		Length:      length,
		Compression: c,
		External:    external,
		Timestamp:   format.UnixToTime(f.header.Timestamps[i]),
	}, nil
}

// ReadRaw returns the stored, still compressed payload of chunk (cx, cz).
func (f *File) ReadRaw(cx, cz int32) ([]byte, Compression, error) {
	r, c, err := f.open(cx, cz)
	if err != nil {
		return nil, 0, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("read chunk %d,%d: %w", cx, cz, err)
	}
	return data, c, nil
}

// Read returns a reader of the decompressed payload of chunk (cx, cz).
func (f *File) Read(cx, cz int32) (io.ReadCloser, error) {
	r, c, err := f.open(cx, cz)
	if err != nil {
		return nil, err
	}
	return decompressor(c, r)
}

// ReadChunk returns the decompressed payload of chunk (cx, cz).
func (f *File) ReadChunk(cx, cz int32) ([]byte, error) {
	r, err := f.Read(cx, cz)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read chunk %d,%d: %w", cx, cz, err)
	}
	return data, nil
}

// open returns a reader of the stored payload and its compression.
func (f *File) open(cx, cz int32) (io.ReadCloser, Compression, error) {
	if f.closed {
		return nil, 0, ErrClosed
	}
	i := format.Index(cx, cz)
	loc := f.header.Locations[i]
	if loc.Empty() {
		return nil, 0, ErrEmptyChunk
	}
	length, c, external, err := f.prefix(loc)
	if err != nil {
		return nil, 0, err
	}
	if external {
		ext, err := os.Open(f.externalPath(i))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("chunk %d,%d: %w", cx, cz, ErrExternalChunkNotFound)
		}
		if err != nil {
			return nil, 0, fmt.Errorf("open external chunk: %w", err)
		}
		return ext, c, nil
	}
	off := int64(loc.Offset)*format.SectorSize + format.ChunkHeaderSize
	return io.NopCloser(io.NewSectionReader(f.f, off, int64(length)-1)), c, nil
}

// WriteChunk compresses data with c and stores it as chunk (cx, cz).
func (f *File) WriteChunk(cx, cz int32, data []byte, c Compression) error {
	payload, err := Compress(c, data)
	if err != nil {
		return err
	}
	return f.Write(cx, cz, payload, c)
}

// Write stores payload, already compressed with c, as chunk (cx, cz) and
// stamps it with the current time.
func (f *File) Write(cx, cz int32, payload []byte, c Compression) error {
	return f.write(format.Index(cx, cz), payload, c, format.TimeToUnix(f.now()))
}

func (f *File) write(i int, payload []byte, c Compression, ts uint32) error {
	if f.closed {
		return ErrClosed
	}
	if !c.Valid() {
		return fmt.Errorf("write with %s: %w", c, ErrUnknownCompression)
	}

	old := f.header.Locations[i]
	wasExternal := f.storedExternal(old)

	sectors, external := format.SectorsFor(len(payload))
	loc, grown, err := f.allocate(old, sectors)
	if err != nil {
		return err
	}
	if int(loc.Sectors) < sectors {
		// Fell back to a single sector past the addressable range.
		external = true
		f.log.Info("chunk stored externally: region out of addressable sectors",
			"path", f.path, "chunk", f.world(i), "bytes", len(payload))
	}

	if err := f.writeData(i, loc, payload, c, external); err != nil {
		f.rollback(old, loc, grown)
		return err
	}
	if err := f.putEntry(i, loc, ts); err != nil {
		f.rollback(old, loc, grown)
		return err
	}
	if wasExternal && !external {
		if err := os.Remove(f.externalPath(i)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			f.log.Warn("remove stale external chunk", "path", f.externalPath(i), "err", err)
		}
	}
	return nil
}

// storedExternal reports whether the chunk at loc carries the external flag.
func (f *File) storedExternal(loc format.Location) bool {
	if loc.Empty() {
		return false
	}
	_, _, external, err := f.prefix(loc)
	return err == nil && external
}

// allocate returns the sectors a chunk of the given size occupies, moving it
// if its current allocation differs. grown is the file's sector count before
// any growth.
func (f *File) allocate(old format.Location, sectors int) (loc format.Location, grown int, err error) {
	grown = f.sectors.Len()
	if !old.Empty() && int(old.Sectors) == sectors {
		return old, grown, nil
	}

	f.sectors.mark(int(old.Offset), int(old.Sectors), false)
	start, firstFree := f.sectors.firstFit(format.HeaderSectors, sectors)
	if start > int(f.maxOffset) {
		if firstFree < 0 || firstFree > int(f.maxOffset) {
			f.sectors.mark(int(old.Offset), int(old.Sectors), true)
			return format.Location{}, grown, ErrOutOfSectors
		}
		start, sectors = firstFree, 1
	}

	if end := start + sectors; end > f.sectors.Len() {
		if err := f.f.Truncate(int64(end) * format.SectorSize); err != nil {
			f.sectors.mark(int(old.Offset), int(old.Sectors), true)
			return format.Location{}, grown, fmt.Errorf("grow region: %w", err)
		}
		f.log.Debug("region grown", "path", f.path, "sectors", end)
		f.sectors.grow(end)
	}
	f.sectors.mark(start, sectors, true)
	return format.Location{Offset: uint32(start), Sectors: uint8(sectors)}, grown, nil
}

// rollback undoes allocate after a failed data write.
func (f *File) rollback(old, loc format.Location, grown int) {
	if loc == old {
		return
	}
	f.sectors.mark(int(loc.Offset), int(loc.Sectors), false)
	f.sectors.mark(int(old.Offset), int(old.Sectors), true)
	if grown < f.sectors.Len() {
		if err := f.f.Truncate(int64(grown) * format.SectorSize); err == nil {
			f.sectors.n = grown
		}
	}
}

// writeData writes the chunk prefix and payload, or the companion file.
func (f *File) writeData(i int, loc format.Location, payload []byte, c Compression, external bool) error {
	off := int64(loc.Offset) * format.SectorSize
	if external {
		if err := writer.WriteFile(f.externalPath(i), payload, 0o644); err != nil {
			return fmt.Errorf("write external chunk: %w", err)
		}
		var p [format.ChunkHeaderSize]byte
		buf.PutU32BE(p[:], 1)
		p[4] = format.MethodByte(c, true)
		if _, err := f.f.WriteAt(p[:], off); err != nil {
			return fmt.Errorf("write chunk header: %w", err)
		}
		return nil
	}

	data := make([]byte, format.ChunkHeaderSize+len(payload))
	buf.PutU32BE(data, uint32(len(payload)+1))
	data[4] = format.MethodByte(c, false)
	copy(data[format.ChunkHeaderSize:], payload)
	if _, err := f.f.WriteAt(data, off); err != nil {
		return fmt.Errorf("write chunk: %w", err)
	}
	return nil
}

// putEntry records loc and ts for slot i in memory and on disk. The
// location word goes last, so on failure the on-disk allocation is the old
// one.
func (f *File) putEntry(i int, loc format.Location, ts uint32) error {
	if err := f.putWord(format.TimestampOffset(i), ts); err != nil {
		return fmt.Errorf("write timestamp: %w", err)
	}
	if err := f.putWord(format.LocationOffset(i), loc.Pack()); err != nil {
		if rerr := f.putWord(format.TimestampOffset(i), f.header.Timestamps[i]); rerr != nil {
			f.log.Warn("restore chunk timestamp", "path", f.path, "chunk", f.world(i), "err", rerr)
		}
		return fmt.Errorf("write location: %w", err)
	}
	f.header.Locations[i] = loc
	f.header.Timestamps[i] = ts
	return nil
}

func (f *File) putWord(off int64, v uint32) error {
	var w [format.EntrySize]byte
	buf.PutU32BE(w[:], v)
	_, err := f.headerW.WriteAt(w[:], off)
	return err
}

// Remove deletes chunk (cx, cz). Removing an absent chunk is a no-op.
func (f *File) Remove(cx, cz int32) error {
	if f.closed {
		return ErrClosed
	}
	i := format.Index(cx, cz)
	loc := f.header.Locations[i]
	if loc.Empty() {
		return nil
	}
	external := f.storedExternal(loc)
	if err := f.putEntry(i, format.Location{}, 0); err != nil {
		return err
	}
	f.sectors.mark(int(loc.Offset), int(loc.Sectors), false)
	if external {
		if err := os.Remove(f.externalPath(i)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove external chunk: %w", err)
		}
	}
	return nil
}

// Flush forces written data to stable storage.
func (f *File) Flush() error {
	if f.closed {
		return ErrClosed
	}
	if err := flush(f.f); err != nil {
		return fmt.Errorf("flush region %s: %w", f.path, err)
	}
	return nil
}

// Close closes the file. Further calls return ErrClosed.
func (f *File) Close() error {
	if f.closed {
		return ErrClosed
	}
	f.closed = true
	return f.f.Close()
}

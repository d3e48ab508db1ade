package format

import (
	"fmt"
	"strconv"
	"strings"
)

// RegionFileName returns the file name of region (rx, rz): r.<rx>.<rz>.mca.
func RegionFileName(rx, rz int32) string {
	return fmt.Sprintf("r.%d.%d.mca", rx, rz)
}

// ExternalFileName returns the companion file of chunk (cx, cz): c.<cx>.<cz>.mcc.
// The coordinates are world chunk coordinates.
func ExternalFileName(cx, cz int32) string {
	return fmt.Sprintf("c.%d.%d.mcc", cx, cz)
}

// ParseRegionFileName extracts the region coordinates from a base file name.
func ParseRegionFileName(name string) (rx, rz int32, err error) {
	parts := strings.Split(name, ".")
	if len(parts) != 4 || parts[0] != "r" || parts[3] != "mca" {
		return 0, 0, fmt.Errorf("%q: %w", name, ErrBadFileName)
	}
	x, errX := strconv.ParseInt(parts[1], 10, 32)
	z, errZ := strconv.ParseInt(parts[2], 10, 32)
	if errX != nil || errZ != nil {
		return 0, 0, fmt.Errorf("%q: %w", name, ErrBadFileName)
	}
	return int32(x), int32(z), nil
}

// RegionOf returns the region containing chunk (cx, cz).
func RegionOf(cx, cz int32) (rx, rz int32) {
	return cx >> 5, cz >> 5
}

// ChunkPos is a world chunk coordinate.
type ChunkPos struct {
	X, Z int32
}

// RegionPos is a region coordinate.
type RegionPos struct {
	X, Z int32
}

// Region returns the region containing p.
func (p ChunkPos) Region() RegionPos {
	rx, rz := RegionOf(p.X, p.Z)
	return RegionPos{X: rx, Z: rz}
}

// Chunk returns the world coordinate of the chunk at header slot i of region p.
func (p RegionPos) Chunk(i int) ChunkPos {
	return ChunkPos{
		X: p.X*RegionWidth + int32(i&(RegionWidth-1)),
		Z: p.Z*RegionWidth + int32(i>>5),
	}
}

package region

import (
	"errors"

	"github.com/joshuapare/voxstore/internal/format"
)

var (
	// ErrEmptyChunk indicates a read of a chunk the region has no sectors for.
	ErrEmptyChunk = errors.New("region: chunk not present")

	// ErrExternalChunkNotFound indicates a chunk flagged external whose
	// companion file is missing.
	ErrExternalChunkNotFound = errors.New("region: external chunk file not found")

	// ErrOutOfSectors indicates no sector could be allocated without exceeding
	// the addressable offset range.
	ErrOutOfSectors = errors.New("region: out of addressable sectors")

	// ErrClosed indicates use of a closed region file.
	ErrClosed = errors.New("region: file closed")
)

// Format errors, re-exported so callers outside the module can match them.
var (
	ErrFileTooSmall       = format.ErrFileTooSmall
	ErrFileNotPadded      = format.ErrFileNotPadded
	ErrIllegalMetadata    = format.ErrIllegalMetadata
	ErrUnknownCompression = format.ErrUnknownCompression
	ErrBadFileName        = format.ErrBadFileName
)

package format

import "errors"

var (
	// ErrFileTooSmall indicates a region file shorter than its two header sectors.
	ErrFileTooSmall = errors.New("format: region file smaller than header")
	// ErrFileNotPadded indicates a region file whose size is not a multiple of the sector size.
	ErrFileNotPadded = errors.New("format: region file not padded to sector size")
	// ErrIllegalMetadata indicates a location entry pointing outside the file or into the header.
	ErrIllegalMetadata = errors.New("format: illegal chunk metadata")
	// ErrUnknownCompression indicates a compression id this package does not know.
	ErrUnknownCompression = errors.New("format: unknown compression method")
	// ErrBadFileName indicates a file name that does not follow the region naming scheme.
	ErrBadFileName = errors.New("format: malformed region file name")
)

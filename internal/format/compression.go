package format

import "fmt"

// Compression identifies how a chunk payload is compressed. The values are
// the method byte stored after the chunk length.
type Compression uint8

const (
	Gzip Compression = 1
	Zlib Compression = 2
	None Compression = 3

	// ExternalFlag is OR-ed into the method byte when the payload lives in a
	// companion external chunk file.
	ExternalFlag = 0x80

	// DefaultCompression is used when a caller does not pick a method.
	DefaultCompression = Zlib
)

// Valid reports whether c is a known method (without the external flag).
func (c Compression) Valid() bool {
	return c >= Gzip && c <= None
}

func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case Zlib:
		return "zlib"
	case None:
		return "none"
	}
	return fmt.Sprintf("unknown(%d)", uint8(c))
}

// ParseCompression maps a configuration name to a Compression.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "gzip":
		return Gzip, nil
	case "zlib", "":
		return Zlib, nil
	case "none":
		return None, nil
	}
	return 0, fmt.Errorf("compression %q: %w", name, ErrUnknownCompression)
}

// SplitMethod separates a stored method byte into its compression and the
// external flag. Unknown methods return ErrUnknownCompression.
func SplitMethod(b byte) (Compression, bool, error) {
	external := b&ExternalFlag != 0
	c := Compression(b &^ ExternalFlag)
	if !c.Valid() {
		return c, external, fmt.Errorf("method byte 0x%02x: %w", b, ErrUnknownCompression)
	}
	return c, external, nil
}

// MethodByte builds the stored method byte.
func MethodByte(c Compression, external bool) byte {
	b := byte(c)
	if external {
		b |= ExternalFlag
	}
	return b
}

// Package buf contains helpers for the big-endian fields used by region files.
package buf

import "encoding/binary"

// U32BE reads a big-endian uint32 from b. Returns 0 when b is too short.
func U32BE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// PutU32BE writes v to b in big-endian order. It is a no-op when b is too short.
func PutU32BE(b []byte, v uint32) {
	if len(b) < 4 {
		return
	}
	binary.BigEndian.PutUint32(b, v)
}

// U24BE reads the top three bytes of a big-endian word (a sector offset).
// Returns 0 when b is too short.
func U24BE(b []byte) uint32 {
	if len(b) < 3 {
		return 0
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// PutU24BE writes the low 24 bits of v into b[0:3] in big-endian order.
func PutU24BE(b []byte, v uint32) {
	if len(b) < 3 {
		return
	}
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

// CeilDiv returns ceil(a / b) for positive b.
func CeilDiv(a, b int) int {
	return (a + b - 1) / b
}

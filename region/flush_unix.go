//go:build linux || freebsd

package region

import (
	"os"

	"golang.org/x/sys/unix"
)

// flush performs file descriptor sync.
//
// On Linux/FreeBSD, fdatasync() covers the data and the size change of a grown file.
func flush(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}

//go:build darwin

package region

import (
	"os"

	"golang.org/x/sys/unix"
)

// flush performs file descriptor sync.
//
// On macOS, F_FULLFSYNC ensures data reaches the physical disk, not just the
// drive cache. Filesystems that reject it fall back to fsync.
func flush(f *os.File) error {
	if _, err := unix.FcntlInt(f.Fd(), unix.F_FULLFSYNC, 0); err == nil {
		return nil
	}
	return unix.Fsync(int(f.Fd()))
}

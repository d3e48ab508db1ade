//go:build !linux && !freebsd && !darwin && !windows

package region

import "os"

func flush(f *os.File) error {
	return f.Sync()
}

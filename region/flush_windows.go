//go:build windows

package region

import (
	"os"

	"golang.org/x/sys/windows"
)

// flush performs file sync using FlushFileBuffers.
func flush(f *os.File) error {
	return windows.FlushFileBuffers(windows.Handle(f.Fd()))
}

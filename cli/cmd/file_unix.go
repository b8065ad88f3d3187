//go:build unix

package cmd

import (
	"os"
	"syscall"
)

// fileKey uniquely identifies a file by its device and inode numbers.
type fileKey struct {
	dev uint64
	ino uint64
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(_ string, info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	//nolint:unconvert // field widths differ between platforms
	return fileKey{dev: uint64(stat.Dev), ino: uint64(stat.Ino)}, true
}

//go:build !unix

package cmd

import "os"

// fileKey identifies a file by its resolved absolute path.
type fileKey struct {
	path string
}

func makeFileKey(resolved string, _ os.FileInfo) (fileKey, bool) {
	return fileKey{path: resolved}, true
}

//go:build !linux && !darwin

package lsdshuffle

import "os"

// fallocateFile sets the file size. Without a native fallocate this may not
// reserve blocks on every filesystem.
func fallocateFile(file *os.File, size int64) error {
	return file.Truncate(size)
}

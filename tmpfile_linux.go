//go:build linux

package lsdshuffle

import (
	"os"

	"golang.org/x/sys/unix"
)

// openTmpFile creates an anonymous O_TMPFILE file in dir that the kernel
// deletes on close. Requires Linux 3.11+ and filesystem support.
func openTmpFile(dir string) (*os.File, error) {
	fd, err := unix.Open(dir, unix.O_RDWR|unix.O_TMPFILE, 0600)
	if err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(fd), ""), nil
}

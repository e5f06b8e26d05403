//go:build darwin

package lsdshuffle

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile reserves disk blocks for a file-backed scratch buffer or
// key file. On macOS, uses fcntl F_PREALLOCATE.
func fallocateFile(file *os.File, size int64) error {
	// F_ALLOCATEALL: allocate all requested space or fail
	fst := unix.Fstore_t{
		Flags:   unix.F_ALLOCATEALL,
		Posmode: unix.F_PEOFPOSMODE,
		Offset:  0,
		Length:  size,
	}

	if err := unix.FcntlFstore(file.Fd(), unix.F_PREALLOCATE, &fst); err != nil {
		return unix.Ftruncate(int(file.Fd()), size)
	}

	// F_PREALLOCATE only reserves space, it doesn't set the size
	return unix.Ftruncate(int(file.Fd()), size)
}

//go:build !linux

package lsdshuffle

import (
	"errors"
	"os"
)

var errNoTmpFile = errors.New("O_TMPFILE not supported on this platform")

// openTmpFile always fails off Linux; callers fall back to os.CreateTemp.
func openTmpFile(dir string) (*os.File, error) {
	return nil, errNoTmpFile
}

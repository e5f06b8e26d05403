// Package errors defines all exported error sentinels for the lsdshuffle library.
//
// This is the single source of truth for error values. Both the top-level
// lsdshuffle package and the CLI import from here, ensuring errors.Is checks
// work across package boundaries.
package errors

import "errors"

// Sort errors
var (
	ErrEngineFailure     = errors.New("lsdshuffle: digit engine failed")
	ErrAllocation        = errors.New("lsdshuffle: buffer allocation failed")
	ErrContractViolation = errors.New("lsdshuffle: engine boundary table violates contract")
	ErrBoundaryTableSize = errors.New("lsdshuffle: boundary table has wrong length")
)

// Configuration errors
var (
	ErrInvalidStepWidth   = errors.New("lsdshuffle: step width must be between 1 and 16 bits")
	ErrInvalidPartitions  = errors.New("lsdshuffle: partition count must be at least 1")
	ErrInvalidConcurrency = errors.New("lsdshuffle: concurrency must not be negative")
	ErrNilEngine          = errors.New("lsdshuffle: engine is nil")
	ErrUnknownScratch     = errors.New("lsdshuffle: unknown scratch kind")
)

// Key file errors
var (
	ErrInvalidMagic   = errors.New("lsdshuffle: invalid key file magic number")
	ErrInvalidVersion = errors.New("lsdshuffle: unsupported key file version")
	ErrTruncatedFile  = errors.New("lsdshuffle: key file is truncated")
	ErrChecksumFailed = errors.New("lsdshuffle: key file checksum verification failed")
	ErrTooManyKeys    = errors.New("lsdshuffle: key count exceeds addressable memory")
)

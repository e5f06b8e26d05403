package lsdshuffle

import (
	"fmt"
	"math"
	"sync"

	streamerrors "github.com/tamirms/lsdshuffle/errors"
	"github.com/tamirms/lsdshuffle/internal/digits"
)

// Engine sorts a single partition by one digit. It is the local compute
// kernel of the sort; the round driver treats it as a black box.
//
// # Contract
//
// SortDigit must stably reorder keys in place into ascending order of the
// width-bit digit at bit offset, and write the start offset of every bucket
// into boundaries:
//
//   - len(boundaries) is exactly 2^width; the driver allocates it
//   - boundaries[b] is the index in keys of the first key with digit b
//   - entries are non-decreasing and never exceed len(keys)
//   - bucket b spans [boundaries[b], boundaries[b+1]), the last bucket ends
//     at len(keys)
//
// Stability is mandatory: keys with equal digits must keep their relative
// order, or earlier rounds' work is destroyed.
//
// On error, the contents of keys and boundaries are undefined. The driver
// discards them and fails the sort without retrying.
//
// # Thread Safety
//
// The driver calls SortDigit concurrently from several goroutines, one per
// partition, each with disjoint keys and boundaries. Implementations must be
// safe for that use.
type Engine interface {
	SortDigit(keys []uint32, boundaries []uint32, offset, width int) error
}

// EngineFunc adapts an ordinary function to the Engine interface.
type EngineFunc func(keys []uint32, boundaries []uint32, offset, width int) error

// SortDigit calls f(keys, boundaries, offset, width).
func (f EngineFunc) SortDigit(keys []uint32, boundaries []uint32, offset, width int) error {
	return f(keys, boundaries, offset, width)
}

// CountingEngine is the default Engine: a stable counting sort over one
// digit. It keeps a pool of temporary buffers so repeated rounds do not
// allocate.
//
// The zero value is ready to use. A CountingEngine must not be copied after
// first use.
type CountingEngine struct {
	tmpPool sync.Pool // *[]uint32
}

// SortDigit implements Engine.
func (e *CountingEngine) SortDigit(keys []uint32, boundaries []uint32, offset, width int) error {
	if !digits.ValidWidth(width) {
		return fmt.Errorf("%w: got %d", streamerrors.ErrInvalidStepWidth, width)
	}
	nb := digits.Buckets(width)
	if len(boundaries) != nb {
		return fmt.Errorf("%w: got %d entries, want %d", streamerrors.ErrBoundaryTableSize, len(boundaries), nb)
	}
	if uint64(len(keys)) > math.MaxUint32 {
		return streamerrors.ErrTooManyKeys
	}

	clear(boundaries)
	if len(keys) == 0 {
		return nil
	}

	for _, v := range keys {
		boundaries[digits.Extract(v, offset, width)]++
	}

	// Exclusive prefix sum: counts become bucket starts
	var total uint32
	for b, c := range boundaries {
		boundaries[b] = total
		total += c
	}

	tmp := e.getTemp(len(keys))

	// Scatter in input order, which is what makes the pass stable.
	// Each cursor ends at its bucket's end, i.e. the next bucket's start.
	for _, v := range keys {
		d := digits.Extract(v, offset, width)
		tmp[boundaries[d]] = v
		boundaries[d]++
	}
	copy(boundaries[1:], boundaries[:nb-1])
	boundaries[0] = 0

	copy(keys, tmp)
	e.putTemp(tmp)
	return nil
}

// getTemp returns a scratch slice of length n from the pool.
func (e *CountingEngine) getTemp(n int) []uint32 {
	if p, ok := e.tmpPool.Get().(*[]uint32); ok && cap(*p) >= n {
		return (*p)[:n]
	}
	return make([]uint32, n)
}

// putTemp returns a scratch slice to the pool.
func (e *CountingEngine) putTemp(s []uint32) {
	e.tmpPool.Put(&s)
}

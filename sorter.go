package lsdshuffle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	streamerrors "github.com/tamirms/lsdshuffle/errors"
	"github.com/tamirms/lsdshuffle/internal/digits"
)

// Sorter sorts uint32 keys with a partitioned, multi-round LSD radix sort.
//
// Each round splits the working buffer into P partitions, sorts every
// partition by one digit in parallel through an Engine, and shuffles the
// bucket runs of all partitions into a scratch buffer. The two buffers then
// swap roles for the next round.
//
// Usage:
//
//	sorter, err := lsdshuffle.NewSorter(lsdshuffle.WithPartitions(4))
//	if err != nil { return err }
//	if err := sorter.Execute(ctx, keys); err != nil { return err }
//	// keys is now sorted
//
// A Sorter is immutable after NewSorter and safe for concurrent use, as long
// as concurrent calls sort distinct slices. Each call allocates and releases
// its own scratch buffer.
type Sorter struct {
	cfg    *sortConfig
	rounds int
}

// NewSorter creates a Sorter. Defaults: 8-bit digits (4 rounds),
// 2 partitions, all partitions in parallel, CountingEngine, heap scratch.
func NewSorter(opts ...Option) (*Sorter, error) {
	cfg := defaultSortConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if !digits.ValidWidth(cfg.stepWidth) {
		return nil, fmt.Errorf("%w: got %d", streamerrors.ErrInvalidStepWidth, cfg.stepWidth)
	}
	if cfg.partitions < 1 {
		return nil, fmt.Errorf("%w: got %d", streamerrors.ErrInvalidPartitions, cfg.partitions)
	}
	if cfg.concurrency < 0 {
		return nil, fmt.Errorf("%w: got %d", streamerrors.ErrInvalidConcurrency, cfg.concurrency)
	}
	if cfg.scratch > ScratchFile {
		return nil, fmt.Errorf("%w: %d", streamerrors.ErrUnknownScratch, cfg.scratch)
	}
	if cfg.engine == nil {
		return nil, streamerrors.ErrNilEngine
	}

	return &Sorter{
		cfg:    cfg,
		rounds: digits.Rounds(cfg.stepWidth),
	}, nil
}

// Sort is a convenience wrapper: NewSorter(opts...) followed by Execute.
func Sort(ctx context.Context, keys []uint32, opts ...Option) error {
	s, err := NewSorter(opts...)
	if err != nil {
		return err
	}
	return s.Execute(ctx, keys)
}

// StepWidth returns the digit width in bits.
func (s *Sorter) StepWidth() int { return s.cfg.stepWidth }

// Partitions returns the partition count.
func (s *Sorter) Partitions() int { return s.cfg.partitions }

// Rounds returns the number of digit rounds per sort.
func (s *Sorter) Rounds() int { return s.rounds }

// Execute sorts keys in place in ascending order.
//
// On success keys holds the sorted sequence regardless of the round count's
// parity. On failure the contents of keys are unspecified: an engine failure
// in any round aborts the whole sort without retry.
func (s *Sorter) Execute(ctx context.Context, keys []uint32) error {
	return s.ExecuteStats(ctx, keys, nil)
}

// ExecuteStats is Execute, adding this run's timings to stats if non-nil.
func (s *Sorter) ExecuteStats(ctx context.Context, keys []uint32, stats *Stats) error {
	start := time.Now()
	err := s.execute(ctx, keys, stats)
	if stats != nil {
		stats.Total += time.Since(start)
	}
	return err
}

func (s *Sorter) execute(ctx context.Context, keys []uint32, stats *Stats) error {
	if uint64(len(keys)) > math.MaxUint32 {
		// Boundary tables hold uint32 offsets
		return streamerrors.ErrTooManyKeys
	}

	bufs, err := newBufferManager(keys, s.cfg.partitions, s.cfg.stepWidth, s.cfg.scratch, s.cfg.tempDir)
	if err != nil {
		return err
	}

	d := newRoundDriver(s.cfg, bufs)
	var runErr error
	if len(keys) > 0 {
		runErr = d.run(ctx)
	} else {
		d.state = StateCompleted
	}
	if stats != nil {
		d.record(stats, len(keys))
	}

	if releaseErr := bufs.release(); releaseErr != nil {
		primaryErr := fmt.Errorf("release scratch: %w", releaseErr)
		return errors.Join(runErr, primaryErr)
	}
	return runErr
}

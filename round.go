package lsdshuffle

import (
	"context"
	"errors"
	"fmt"
	"time"

	streamerrors "github.com/tamirms/lsdshuffle/errors"
	"github.com/tamirms/lsdshuffle/internal/digits"
	"golang.org/x/sync/errgroup"
)

// State is the round driver's lifecycle state.
type State uint8

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EngineError reports a failed Engine call. It matches both
// errors.ErrEngineFailure and the engine's own error under errors.Is.
type EngineError struct {
	Round     int
	Partition int
	Err       error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%v: round %d partition %d: %v", streamerrors.ErrEngineFailure, e.Round, e.Partition, e.Err)
}

// Unwrap returns the sentinel and the engine's error.
func (e *EngineError) Unwrap() []error {
	return []error{streamerrors.ErrEngineFailure, e.Err}
}

// roundDriver runs the rounds of one sort.
//
// State machine:
//
//	Idle -> Running(0) -> Running(1) -> ... -> Running(n-1) -> Completed
//	             \______________\__________________\_______-> Failed
//
// Failed is terminal. A failed round commits nothing: its shuffle never runs
// and the contents of both buffers are unspecified.
type roundDriver struct {
	cfg    *sortConfig
	bufs   *bufferManager
	rounds int

	state State
	round int // Round in progress (valid while Running) or the round that failed
	done  int // Rounds completed

	parts []Partition // Reused across rounds, re-split every round
	errs  []error     // Per-partition results of the current round

	// Timings for this run
	worker   time.Duration
	shuffle  time.Duration
	copyBack time.Duration
	copied   bool
}

func newRoundDriver(cfg *sortConfig, bufs *bufferManager) *roundDriver {
	return &roundDriver{
		cfg:    cfg,
		bufs:   bufs,
		rounds: digits.Rounds(cfg.stepWidth),
		state:  StateIdle,
		parts:  make([]Partition, cfg.partitions),
		errs:   make([]error, cfg.partitions),
	}
}

// run drives every round to completion or to the first failure.
// ctx is only consulted between rounds.
func (d *roundDriver) run(ctx context.Context) error {
	d.state = StateRunning
	for d.round = 0; d.round < d.rounds; d.round++ {
		if err := ctx.Err(); err != nil {
			return d.fail(fmt.Errorf("round %d: %w", d.round, err))
		}
		if err := d.step(); err != nil {
			return d.fail(err)
		}
		d.done++
	}

	start := time.Now()
	d.copied = d.bufs.finish()
	d.copyBack = time.Since(start)
	d.state = StateCompleted

	d.cfg.logger.Debug("sort completed",
		"rounds", d.rounds,
		"copied_back", d.copied)
	return nil
}

func (d *roundDriver) fail(err error) error {
	d.state = StateFailed
	d.cfg.logger.Debug("sort failed", "round", d.round, "err", err)
	return err
}

// step runs one round: split, concurrent digit sort, join, shuffle, swap.
func (d *roundDriver) step() error {
	offset := digits.Offset(d.round, d.cfg.stepWidth)
	cur := d.bufs.current()
	d.parts = splitInto(d.parts, len(cur))

	workerStart := time.Now()
	err := d.dispatch(cur, offset)
	d.worker += time.Since(workerStart)
	if err != nil {
		return err
	}

	if d.cfg.checkBoundaries {
		for i, p := range d.parts {
			if err := CheckBoundaries(d.bufs.tables[i], p.Len); err != nil {
				return fmt.Errorf("round %d partition %d: %w", d.round, i, err)
			}
		}
	}

	shuffleStart := time.Now()
	err = shuffle(d.bufs.next(), cur, d.parts, d.bufs.tables)
	d.shuffle += time.Since(shuffleStart)
	if err != nil {
		return fmt.Errorf("round %d: %w", d.round, err)
	}

	d.bufs.swap()

	d.cfg.logger.Debug("round completed",
		"round", d.round,
		"offset", offset,
		"partitions", len(d.parts))
	return nil
}

// dispatch sorts every partition of cur concurrently and waits for all of
// them. A failing partition does not stop its siblings; the round fails once
// every call has returned, reporting every partition that failed.
func (d *roundDriver) dispatch(cur []uint32, offset int) error {
	var g errgroup.Group
	if d.cfg.concurrency > 0 {
		g.SetLimit(d.cfg.concurrency)
	}

	// Each goroutine writes only its own errs slot.
	for i, p := range d.parts {
		g.Go(func() error {
			d.errs[i] = d.sortPartition(i, p.Keys(cur), offset)
			return d.errs[i]
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Join(d.errs...)
	}
	return nil
}

// sortPartition runs the engine on one partition, turning both returned
// errors and panics into an *EngineError.
func (d *roundDriver) sortPartition(i int, keys []uint32, offset int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &EngineError{Round: d.round, Partition: i, Err: fmt.Errorf("engine panic: %v", r)}
		}
	}()

	if engineErr := d.cfg.engine.SortDigit(keys, d.bufs.tables[i], offset, d.cfg.stepWidth); engineErr != nil {
		return &EngineError{Round: d.round, Partition: i, Err: engineErr}
	}
	return nil
}

// record adds this run's counters to stats.
func (d *roundDriver) record(stats *Stats, keys int) {
	stats.Runs++
	stats.Keys += keys
	stats.StepWidth = d.cfg.stepWidth
	stats.Partitions = d.cfg.partitions
	stats.Rounds += d.done
	stats.Worker += d.worker
	stats.Shuffle += d.shuffle
	stats.CopyBack += d.copyBack
	if d.copied {
		stats.CopiedBack++
	}
}

package lsdshuffle

import (
	"log/slog"
)

const (
	// defaultStepWidth sorts one byte per round: 4 rounds of 256 buckets.
	defaultStepWidth = 8

	// defaultPartitions emulates two devices.
	defaultPartitions = 2
)

// Option is a functional option for configuring a Sorter.
type Option func(*sortConfig)

type sortConfig struct {
	stepWidth       int
	partitions      int
	concurrency     int // 0 = one goroutine per partition
	engine          Engine
	scratch         ScratchKind
	tempDir         string // for ScratchFile
	checkBoundaries bool
	logger          *slog.Logger
}

func defaultSortConfig() *sortConfig {
	return &sortConfig{
		stepWidth:  defaultStepWidth,
		partitions: defaultPartitions,
		engine:     &CountingEngine{},
		scratch:    ScratchHeap,
		logger:     slog.New(slog.DiscardHandler),
	}
}

// WithStepWidth sets the digit width in bits, 1 to 16.
// The sort runs ceil(32/w) rounds of 2^w buckets each. Widths giving an odd
// round count (e.g. 5, 7, 11) are supported; the result is copied back into
// the caller's slice after the last round.
func WithStepWidth(w int) Option {
	return func(c *sortConfig) {
		c.stepWidth = w
	}
}

// WithPartitions sets the number of partitions sorted independently each
// round.
func WithPartitions(p int) Option {
	return func(c *sortConfig) {
		c.partitions = p
	}
}

// WithConcurrency bounds how many partitions are sorted at once.
// Default (0) runs every partition of a round in parallel.
func WithConcurrency(n int) Option {
	return func(c *sortConfig) {
		c.concurrency = n
	}
}

// WithEngine sets the per-partition digit sort. Default is a CountingEngine.
// A nil engine is rejected by NewSorter.
func WithEngine(e Engine) Option {
	return func(c *sortConfig) {
		c.engine = e
	}
}

// WithScratch selects the scratch buffer backing. Default is ScratchHeap.
func WithScratch(kind ScratchKind) Option {
	return func(c *sortConfig) {
		c.scratch = kind
	}
}

// WithTempDir sets the directory for ScratchFile buffers.
// The directory must exist. Default is os.TempDir().
func WithTempDir(dir string) Option {
	return func(c *sortConfig) {
		c.tempDir = dir
	}
}

// WithBoundaryCheck validates every boundary table the engine returns before
// it is used. Off by default: a correct engine never needs it, and it costs
// an extra pass over each table per round.
func WithBoundaryCheck(enabled bool) Option {
	return func(c *sortConfig) {
		c.checkBoundaries = enabled
	}
}

// WithLogger enables debug logging of round progress.
func WithLogger(l *slog.Logger) Option {
	return func(c *sortConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

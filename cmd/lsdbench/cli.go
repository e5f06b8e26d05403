package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/tamirms/lsdshuffle"
	"github.com/tamirms/lsdshuffle/internal/digits"
	cli "github.com/urfave/cli/v2"
)

// sortFlags are shared by every command that configures a sort.
func sortFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to a TOML config file; flags set on the command line override it",
		},
		&cli.IntFlag{
			Name:  "keys",
			Usage: "Number of keys to generate",
			Value: defaultKeys,
		},
		&cli.IntFlag{
			Name:  "step-width",
			Usage: "Digit width in bits (1-16)",
			Value: 8,
		},
		&cli.IntFlag{
			Name:  "partitions",
			Usage: "Number of partitions sorted independently per round",
			Value: 2,
		},
		&cli.IntFlag{
			Name:  "concurrency",
			Usage: "Maximum partitions sorted at once (0 = all)",
		},
		&cli.StringFlag{
			Name:  "scratch",
			Usage: "Scratch buffer backing: heap, anon or file",
			Value: "heap",
		},
		&cli.StringFlag{
			Name:  "temp-dir",
			Usage: "Directory for file-backed scratch buffers",
		},
		&cli.StringFlag{
			Name:  "generator",
			Usage: "Key generator: xxh3 or murmur3",
			Value: "xxh3",
		},
		&cli.Uint64Flag{
			Name:  "seed",
			Usage: "Key generator seed",
			Value: defaultSeed,
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Log every round to stderr",
		},
	}
}

// loadSettings builds the effective config: defaults, then the config file,
// then every flag explicitly set.
func loadSettings(c *cli.Context) (*Config, error) {
	cfg := DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.IsSet("keys") {
		cfg.Keys = c.Int("keys")
	}
	if c.IsSet("step-width") {
		cfg.StepWidth = c.Int("step-width")
	}
	if c.IsSet("partitions") {
		cfg.Partitions = c.Int("partitions")
	}
	if c.IsSet("concurrency") {
		cfg.Concurrency = c.Int("concurrency")
	}
	if c.IsSet("scratch") {
		cfg.Scratch = c.String("scratch")
	}
	if c.IsSet("temp-dir") {
		cfg.TempDir = c.String("temp-dir")
	}
	if c.IsSet("generator") {
		cfg.Generator = c.String("generator")
	}
	if c.IsSet("seed") {
		cfg.Seed = c.Uint64("seed")
	}
	if c.IsSet("input") {
		cfg.Input = c.String("input")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("verify") {
		cfg.Verify = c.Bool("verify")
	}
	if c.IsSet("baseline") {
		cfg.Baseline = c.Bool("baseline")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger returns a debug logger writing to w, or nil when debug is off.
func newLogger(debug bool, w io.Writer) *slog.Logger {
	if !debug {
		return nil
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// loadKeys reads cfg.Input, or generates cfg.Keys keys when no input is set.
func loadKeys(w io.Writer, cfg *Config) ([]uint32, error) {
	if cfg.Input != "" {
		keys, sorted, err := lsdshuffle.ReadKeyFile(cfg.Input)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", cfg.Input, err)
		}
		fmt.Fprintf(w, "Loaded %d keys from %s (sorted: %v)\n", len(keys), cfg.Input, sorted)
		return keys, nil
	}

	gen, err := cfg.KeyGenerator()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	keys := gen.Generate(cfg.Keys)
	fmt.Fprintf(w, "Generated %d keys with %s in %v\n", len(keys), cfg.Generator, time.Since(start).Round(time.Microsecond))
	return keys, nil
}

func handleRunCommand(c *cli.Context) error {
	cfg, err := loadSettings(c)
	if err != nil {
		return err
	}
	w := c.App.Writer

	keys, err := loadKeys(w, cfg)
	if err != nil {
		return err
	}

	opts, err := cfg.SorterOptions()
	if err != nil {
		return err
	}
	opts = append(opts, lsdshuffle.WithLogger(newLogger(cfg.Debug, c.App.ErrWriter)))
	sorter, err := lsdshuffle.NewSorter(opts...)
	if err != nil {
		return err
	}

	var orig []uint32
	if cfg.Verify || cfg.Baseline {
		orig = slices.Clone(keys)
	}

	fmt.Fprintln(w, "Running distributed sort:")
	var stats lsdshuffle.Stats
	if err := sorter.ExecuteStats(c.Context, keys, &stats); err != nil {
		return fmt.Errorf("sort failed: %w", err)
	}
	checksum := lsdshuffle.Checksum(keys)
	printStats(w, &stats, sorter.Rounds(), checksum)

	if cfg.Verify {
		if err := verifyOutput(c.Context, orig, keys, checksum, opts); err != nil {
			return err
		}
		fmt.Fprintln(w, "Verification: OK (matches slices.Sort and single-partition sort)")
	}

	if cfg.Baseline {
		if err := runBaseline(c.Context, w, orig, cfg, opts); err != nil {
			return err
		}
	}

	if cfg.Output != "" {
		if err := lsdshuffle.WriteKeyFile(cfg.Output, keys, true); err != nil {
			return fmt.Errorf("failed to write %s: %w", cfg.Output, err)
		}
		fmt.Fprintf(w, "Wrote sorted keys to %s\n", cfg.Output)
	}
	return nil
}

// printStats prints one sort's statistics table.
func printStats(w io.Writer, s *lsdshuffle.Stats, steps int, checksum uint64) {
	fmt.Fprintln(w, "Statistics:")
	fmt.Fprintf(w, "\tData Size: %fMiB\n", s.SizeMiB())
	fmt.Fprintf(w, "\tBits per step: %d (%d steps)\n", s.StepWidth, steps)
	fmt.Fprintf(w, "\tPartitions: %d\n", s.Partitions)
	fmt.Fprintf(w, "\tTotal Time: %dms (%fms per step)\n", s.Total.Milliseconds(), perStepMS(s.Total, steps))
	fmt.Fprintf(w, "\tWorker Time: %dms (%fms per step)\n", s.Worker.Milliseconds(), perStepMS(s.Worker, steps))
	fmt.Fprintf(w, "\tShuffle Time: %dms (%fms per step)\n", s.Shuffle.Milliseconds(), perStepMS(s.Shuffle, steps))
	fmt.Fprintf(w, "\tCopy-back Time: %dms (copied: %v)\n", s.CopyBack.Milliseconds(), s.CopiedBack > 0)
	fmt.Fprintf(w, "\tChecksum: %016x\n", checksum)
}

func perStepMS(d time.Duration, steps int) float64 {
	if steps == 0 {
		return 0
	}
	return float64(d.Microseconds()) / 1000 / float64(steps)
}

// verifyOutput checks sorted against slices.Sort of orig and against a
// single-partition sort with the same options.
func verifyOutput(ctx context.Context, orig, sorted []uint32, checksum uint64, opts []lsdshuffle.Option) error {
	want := slices.Clone(orig)
	slices.Sort(want)
	if i := firstDiff(sorted, want); i >= 0 {
		return fmt.Errorf("verification failed: key %d is %d, slices.Sort has %d", i, sorted[i], want[i])
	}

	single := slices.Clone(orig)
	singleOpts := append(slices.Clone(opts), lsdshuffle.WithPartitions(1))
	if err := lsdshuffle.Sort(ctx, single, singleOpts...); err != nil {
		return fmt.Errorf("verification sort failed: %w", err)
	}
	if got := lsdshuffle.Checksum(single); got != checksum {
		return fmt.Errorf("verification failed: single-partition checksum %016x, distributed %016x", got, checksum)
	}
	return nil
}

func firstDiff(a, b []uint32) int {
	if len(a) != len(b) {
		return min(len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return -1
}

// runBaseline sorts one partition's share of orig on a single partition,
// the per-device comparison point for the distributed run.
func runBaseline(ctx context.Context, w io.Writer, orig []uint32, cfg *Config, opts []lsdshuffle.Option) error {
	share := slices.Clone(orig[:len(orig)/max(cfg.Partitions, 1)])
	baselineOpts := append(slices.Clone(opts), lsdshuffle.WithPartitions(1))
	sorter, err := lsdshuffle.NewSorter(baselineOpts...)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Running single-partition baseline:")
	var stats lsdshuffle.Stats
	if err := sorter.ExecuteStats(ctx, share, &stats); err != nil {
		return fmt.Errorf("baseline sort failed: %w", err)
	}
	fmt.Fprintln(w, "Single Partition Sort Statistics:")
	fmt.Fprintf(w, "\tData Size:  %fMiB\n", stats.SizeMiB())
	fmt.Fprintf(w, "\tTotal Time: %dms\n", stats.Total.Milliseconds())
	return nil
}

func handleGenCommand(c *cli.Context) error {
	cfg, err := loadSettings(c)
	if err != nil {
		return err
	}
	if cfg.Output == "" {
		return errors.New("gen requires --output")
	}
	w := c.App.Writer

	gen, err := cfg.KeyGenerator()
	if err != nil {
		return err
	}
	start := time.Now()
	keys := gen.Generate(cfg.Keys)
	if err := lsdshuffle.WriteKeyFile(cfg.Output, keys, false); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfg.Output, err)
	}
	fmt.Fprintf(w, "Wrote %d keys to %s in %v\n", len(keys), cfg.Output, time.Since(start).Round(time.Microsecond))
	return nil
}

// handleVerifyEngineCommand checks the default engine against the reference
// on every partition of every round offset.
func handleVerifyEngineCommand(c *cli.Context) error {
	cfg, err := loadSettings(c)
	if err != nil {
		return err
	}
	if !digits.ValidWidth(cfg.StepWidth) {
		return fmt.Errorf("invalid step width %d", cfg.StepWidth)
	}
	if cfg.Partitions < 1 {
		return fmt.Errorf("invalid partition count %d", cfg.Partitions)
	}
	w := c.App.Writer

	keys, err := loadKeys(w, cfg)
	if err != nil {
		return err
	}

	engine := &lsdshuffle.CountingEngine{}
	parts := lsdshuffle.Split(len(keys), cfg.Partitions)
	for round := range digits.Rounds(cfg.StepWidth) {
		offset := digits.Offset(round, cfg.StepWidth)
		for i, p := range parts {
			if err := lsdshuffle.VerifyEngine(engine, p.Keys(keys), offset, cfg.StepWidth); err != nil {
				return fmt.Errorf("round %d partition %d: %w", round, i, err)
			}
		}
		fmt.Fprintf(w, "round %d (offset %d): %d partitions OK\n", round, offset, len(parts))
	}
	return nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "lsdbench",
		Usage: "Benchmark and verify the partitioned LSD radix sort",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Sort generated or loaded keys and print timing statistics",
				Flags: append(sortFlags(),
					&cli.StringFlag{
						Name:  "input",
						Usage: "Key file to sort instead of generated keys",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Write the sorted keys to this key file",
					},
					&cli.BoolFlag{
						Name:  "verify",
						Usage: "Check the result against slices.Sort and a single-partition sort",
					},
					&cli.BoolFlag{
						Name:  "baseline",
						Usage: "Also time a single-partition sort of one partition's share",
					},
				),
				Action: handleRunCommand,
			},
			{
				Name:  "gen",
				Usage: "Write generated keys to a key file",
				Flags: append(sortFlags(),
					&cli.StringFlag{
						Name:  "output",
						Usage: "Key file to write",
					},
				),
				Action: handleGenCommand,
			},
			{
				Name:  "verify-engine",
				Usage: "Check the default engine's digit sort against the reference for every round",
				Flags: append(sortFlags(),
					&cli.StringFlag{
						Name:  "input",
						Usage: "Key file to verify on instead of generated keys",
					},
				),
				Action: handleVerifyEngineCommand,
			},
		},
	}
}

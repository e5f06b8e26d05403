// Package lsdshuffle implements a partitioned, multi-round LSD radix sort
// over uint32 keys.
//
// Each round takes one digit of the keys, least significant first. The
// working buffer is split into P contiguous partitions, every partition is
// stably sorted by that digit on its own (in parallel, through a pluggable
// Engine), and a shuffle step merges the partitions' bucket runs into a
// second buffer: bucket-major, partition-minor. After ceil(32/W) rounds of
// W-bit digits the keys are fully sorted, and the result is identical to a
// single-partition sort.
//
// The partitions stand in for independent devices: an Engine only ever sees
// its own slice of keys and reports where each bucket starts in it.
//
// # Basic Usage
//
// Sorting in place:
//
//	if err := lsdshuffle.Sort(ctx, keys); err != nil {
//	    log.Fatal(err)
//	}
//
// Reusing a configured sorter and collecting timings:
//
//	sorter, err := lsdshuffle.NewSorter(
//	    lsdshuffle.WithStepWidth(11),
//	    lsdshuffle.WithPartitions(4),
//	    lsdshuffle.WithScratch(lsdshuffle.ScratchAnon),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var stats lsdshuffle.Stats
//	if err := sorter.ExecuteStats(ctx, keys, &stats); err != nil {
//	    log.Fatal(err)
//	}
//
// Checking a custom engine against the reference:
//
//	err := lsdshuffle.VerifyEngine(myEngine, sample, 0, 8)
//
// # Package Structure
//
// The implementation is organized as follows:
//
//   - Public API: sorter.go (NewSorter, Sort, Execute), sorter_options.go (Option, With* functions)
//   - Engine contract: engine.go (Engine, EngineFunc, CountingEngine)
//   - Round driver: round.go (state machine, errgroup dispatch), partition.go (Split), shuffle.go
//   - Buffers: buffers.go (double buffering, copy-back), scratch.go (heap, anonymous mmap, file mmap)
//   - Verification: verify.go (ReferenceBoundaries, CheckBoundaries, VerifyEngine, Checksum)
//   - Serialization: keyfile.go (WriteKeyFile, ReadKeyFile)
//   - Digits: internal/digits/ (extraction, round arithmetic), internal/encoding/ (key/byte views)
//   - Key generation: internal/keygen/ (xxh3 and murmur3 key streams)
//   - Platform: fallocate_*.go, prefault_*.go, fadvise_*.go, tmpfile_*.go (OS-specific optimizations)
package lsdshuffle

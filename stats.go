package lsdshuffle

import "time"

// Stats accumulates timings across one or more sorts. Pass a *Stats to
// ExecuteStats; each call adds to it rather than overwriting, so one Stats
// can summarize a batch of runs.
type Stats struct {
	Runs       int // Completed or failed Execute calls
	Keys       int // Total keys sorted
	Rounds     int // Total rounds completed
	StepWidth  int
	Partitions int

	Total    time.Duration // Wall time of all runs, including allocation
	Worker   time.Duration // Time spent in engine dispatch, join included
	Shuffle  time.Duration // Time spent recombining partitions
	CopyBack time.Duration // Time spent copying odd-round results home

	CopiedBack int // Runs that needed a copy-back
}

// PerRound returns d averaged over the completed rounds.
func (s *Stats) PerRound(d time.Duration) time.Duration {
	if s.Rounds == 0 {
		return 0
	}
	return d / time.Duration(s.Rounds)
}

// SizeMiB returns the total sorted data size in MiB.
func (s *Stats) SizeMiB() float64 {
	return float64(s.Keys) * 4 / (1024 * 1024)
}

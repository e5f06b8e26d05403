package lsdshuffle

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
	streamerrors "github.com/tamirms/lsdshuffle/errors"
	"github.com/tamirms/lsdshuffle/internal/digits"
	"github.com/tamirms/lsdshuffle/internal/encoding"
)

// checksumChunk is how many keys Checksum encodes per hasher write.
const checksumChunk = 1024

// ReferenceBoundaries computes the boundary table an Engine must produce for
// keys, independently of any Engine: count every digit, then take the
// exclusive prefix sum of the counts.
func ReferenceBoundaries(keys []uint32, offset, width int) []uint32 {
	counts := make([]uint32, digits.Buckets(width))
	for _, v := range keys {
		counts[digits.Extract(v, offset, width)]++
	}

	table := make([]uint32, len(counts))
	var prev uint32
	for b, c := range counts {
		table[b] = prev
		prev += c
	}
	return table
}

// CheckBoundaries reports ErrContractViolation unless table is a valid
// boundary table for a partition of n keys: it starts at 0, never decreases,
// and never exceeds n.
func CheckBoundaries(table []uint32, n int) error {
	if len(table) == 0 {
		return fmt.Errorf("%w: empty boundary table", streamerrors.ErrContractViolation)
	}
	if table[0] != 0 {
		return fmt.Errorf("%w: first bucket starts at %d, want 0", streamerrors.ErrContractViolation, table[0])
	}
	for b := 1; b < len(table); b++ {
		if table[b] < table[b-1] {
			return fmt.Errorf("%w: bucket %d starts at %d before bucket %d at %d",
				streamerrors.ErrContractViolation, b, table[b], b-1, table[b-1])
		}
	}
	if last := table[len(table)-1]; int(last) > n {
		return fmt.Errorf("%w: last bucket starts at %d beyond partition of %d keys",
			streamerrors.ErrContractViolation, last, n)
	}
	return nil
}

// VerifyEngine runs e on a single partition spanning a copy of keys and
// checks the result against an independent computation:
//
//   - the boundary table is well formed and equals ReferenceBoundaries
//   - every key lies in the bucket its digit names
//   - the keys are a permutation of the input
//   - keys with equal digits keep their input order (stability)
//
// keys itself is not modified. Any mismatch is ErrContractViolation; an
// engine error is returned wrapped in ErrEngineFailure.
func VerifyEngine(e Engine, keys []uint32, offset, width int) error {
	if !digits.ValidWidth(width) {
		return fmt.Errorf("%w: got %d", streamerrors.ErrInvalidStepWidth, width)
	}

	got := slices.Clone(keys)
	table := make([]uint32, digits.Buckets(width))
	if err := e.SortDigit(got, table, offset, width); err != nil {
		return &EngineError{Partition: 0, Err: err}
	}

	if err := CheckBoundaries(table, len(got)); err != nil {
		return err
	}

	ref := ReferenceBoundaries(keys, offset, width)
	for b := range ref {
		if table[b] != ref[b] {
			return fmt.Errorf("%w: boundary %d is %d, want %d",
				streamerrors.ErrContractViolation, b, table[b], ref[b])
		}
	}

	// Every position must hold a key of the bucket it falls in
	bucket := 0
	for i, v := range got {
		for bucket+1 < len(ref) && i >= int(ref[bucket+1]) {
			bucket++
		}
		if d := digits.Extract(v, offset, width); d != bucket {
			return fmt.Errorf("%w: key %d (0x%08X) has digit %d inside bucket %d",
				streamerrors.ErrContractViolation, i, v, d, bucket)
		}
	}

	// A stable digit sort is fully determined by its input: it must match
	// the reference stable scatter exactly.
	want := referenceDigitSort(keys, ref, offset, width)
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("%w: key %d is 0x%08X, stable order expects 0x%08X",
				streamerrors.ErrContractViolation, i, got[i], want[i])
		}
	}
	return nil
}

// referenceDigitSort returns the stable digit sort of keys given their
// reference boundary table.
func referenceDigitSort(keys, ref []uint32, offset, width int) []uint32 {
	cursor := slices.Clone(ref)
	out := make([]uint32, len(keys))
	for _, v := range keys {
		d := digits.Extract(v, offset, width)
		out[cursor[d]] = v
		cursor[d]++
	}
	return out
}

// IsSorted reports whether keys are in non-decreasing order.
func IsSorted(keys []uint32) bool {
	return slices.IsSorted(keys)
}

// Checksum returns the xxHash64 of keys' little-endian encoding. Two key
// sequences with equal Checksums are, for verification purposes, identical.
func Checksum(keys []uint32) uint64 {
	h := xxhash.New()
	var buf [checksumChunk * encoding.KeySize]byte
	for len(keys) > 0 {
		n := min(len(keys), checksumChunk)
		encoding.PutKeys(buf[:], keys[:n])
		if _, err := h.Write(buf[:n*encoding.KeySize]); err != nil {
			panic("hash.Hash.Write returned unexpected error: " + err.Error())
		}
		keys = keys[n:]
	}
	return h.Sum64()
}

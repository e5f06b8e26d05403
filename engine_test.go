package lsdshuffle

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	streamerrors "github.com/tamirms/lsdshuffle/errors"
	"github.com/tamirms/lsdshuffle/internal/digits"
)

func TestCountingEngineBoundaries(t *testing.T) {
	var e CountingEngine
	keys := []uint32{0x13, 0x01, 0x22, 0x03, 0x11, 0x00}
	table := make([]uint32, 4)

	// Digit is the low 2 bits: 3, 1, 2, 3, 1, 0
	if err := e.SortDigit(keys, table, 0, 2); err != nil {
		t.Fatal(err)
	}

	wantKeys := []uint32{0x00, 0x01, 0x11, 0x22, 0x13, 0x03}
	if !slices.Equal(keys, wantKeys) {
		t.Errorf("keys: got %#x, want %#x", keys, wantKeys)
	}
	wantTable := []uint32{0, 1, 3, 4}
	if !slices.Equal(table, wantTable) {
		t.Errorf("boundaries: got %v, want %v", table, wantTable)
	}
}

func TestCountingEngineEmptyBuckets(t *testing.T) {
	var e CountingEngine
	keys := []uint32{0x300, 0x300, 0x100}
	table := make([]uint32, 16)
	for i := range table {
		table[i] = 99 // stale values from a previous round
	}

	if err := e.SortDigit(keys, table, 8, 4); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(keys, []uint32{0x100, 0x300, 0x300}) {
		t.Errorf("keys: got %#x", keys)
	}
	want := []uint32{0, 0, 1, 1, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3}
	if !slices.Equal(table, want) {
		t.Errorf("boundaries: got %v, want %v", table, want)
	}
}

func TestCountingEngineEmptyPartition(t *testing.T) {
	var e CountingEngine
	table := []uint32{7, 7}
	if err := e.SortDigit(nil, table, 0, 1); err != nil {
		t.Fatal(err)
	}
	if table[0] != 0 || table[1] != 0 {
		t.Errorf("empty partition: got %v, want all zero", table)
	}
}

func TestCountingEngineRejectsBadInput(t *testing.T) {
	var e CountingEngine
	keys := []uint32{1, 2}

	if err := e.SortDigit(keys, make([]uint32, 256), 0, 0); !errors.Is(err, streamerrors.ErrInvalidStepWidth) {
		t.Errorf("width 0: expected ErrInvalidStepWidth, got %v", err)
	}
	if err := e.SortDigit(keys, make([]uint32, 255), 0, 8); !errors.Is(err, streamerrors.ErrBoundaryTableSize) {
		t.Errorf("short table: expected ErrBoundaryTableSize, got %v", err)
	}
}

func TestCountingEngineStable(t *testing.T) {
	rng := newTestRNG(t)
	for _, w := range []int{1, 4, 8, 13, 16} {
		t.Run(fmt.Sprintf("w=%d", w), func(t *testing.T) {
			keys := randomKeys(rng, 3000)
			for _, offset := range []int{0, 32 - w} {
				if err := VerifyEngine(&CountingEngine{}, keys, offset, w); err != nil {
					t.Errorf("offset %d: %v", offset, err)
				}
			}
		})
	}
}

func TestCountingEngineLastRoundPartialDigit(t *testing.T) {
	// Width 5 at offset 30 only has 2 real bits
	var e CountingEngine
	keys := []uint32{0xC0000000, 0x40000000, 0x80000000, 0x00000001}
	table := make([]uint32, digits.Buckets(5))
	if err := e.SortDigit(keys, table, 30, 5); err != nil {
		t.Fatal(err)
	}
	want := []uint32{0x00000001, 0x40000000, 0x80000000, 0xC0000000}
	if !slices.Equal(keys, want) {
		t.Errorf("got %#x, want %#x", keys, want)
	}
	for b := 4; b < len(table); b++ {
		if table[b] != 4 {
			t.Errorf("bucket %d: got start %d, want 4", b, table[b])
		}
	}
}

func TestEngineFunc(t *testing.T) {
	var called bool
	f := EngineFunc(func(keys, boundaries []uint32, offset, width int) error {
		called = offset == 3 && width == 2 && len(keys) == 1 && len(boundaries) == 4
		return nil
	})
	if err := f.SortDigit([]uint32{1}, make([]uint32, 4), 3, 2); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("EngineFunc did not forward its arguments")
	}
}

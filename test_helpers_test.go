package lsdshuffle

import (
	"encoding/binary"
	"errors"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

// errFault is the error returned by test engines that fail on purpose.
var errFault = errors.New("injected engine fault")

// newTestRNG returns a PCG generator seeded from the test name, so every
// test gets its own reproducible key stream.
func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// randomKeys returns n pseudo-random keys.
func randomKeys(rng *rand.Rand, n int) []uint32 {
	keys := make([]uint32, n)
	for i := range keys {
		keys[i] = rng.Uint32()
	}
	return keys
}

// narrowKeys returns n keys drawn from [0, limit), so duplicates are common.
func narrowKeys(rng *rand.Rand, n int, limit uint32) []uint32 {
	keys := make([]uint32, n)
	for i := range keys {
		keys[i] = rng.Uint32N(limit)
	}
	return keys
}

// sortedCopy returns an ascending copy of keys.
func sortedCopy(keys []uint32) []uint32 {
	out := slices.Clone(keys)
	slices.Sort(out)
	return out
}

// mustSort sorts keys with opts and fails the test on error.
func mustSort(t *testing.T, keys []uint32, opts ...Option) {
	t.Helper()
	if err := Sort(t.Context(), keys, opts...); err != nil {
		t.Fatalf("Sort: %v", err)
	}
}

// assertSortedPermutation checks got is the ascending permutation of input.
func assertSortedPermutation(t *testing.T, input, got []uint32) {
	t.Helper()
	if !IsSorted(got) {
		t.Fatalf("keys not sorted")
	}
	want := sortedCopy(input)
	if !slices.Equal(got, want) {
		t.Fatalf("keys are not a permutation of the input")
	}
}

// failingEngine returns an engine that fails with errFault whenever fail
// reports true for the call, and otherwise behaves like a CountingEngine.
func failingEngine(fail func(keys []uint32, offset int) bool) Engine {
	var base CountingEngine
	return EngineFunc(func(keys, boundaries []uint32, offset, width int) error {
		if fail(keys, offset) {
			return errFault
		}
		return base.SortDigit(keys, boundaries, offset, width)
	})
}

// recordingEngine wraps a CountingEngine and records every partition's input
// per digit offset, in call order. Run it with WithConcurrency(1) for call
// order to match partition order.
type recordingEngine struct {
	base CountingEngine

	mu     sync.Mutex
	inputs map[int][]uint32 // offset -> concatenated partition inputs
	calls  atomic.Int64
}

func newRecordingEngine() *recordingEngine {
	return &recordingEngine{inputs: make(map[int][]uint32)}
}

func (e *recordingEngine) SortDigit(keys, boundaries []uint32, offset, width int) error {
	e.calls.Add(1)
	e.mu.Lock()
	e.inputs[offset] = append(e.inputs[offset], keys...)
	e.mu.Unlock()
	return e.base.SortDigit(keys, boundaries, offset, width)
}

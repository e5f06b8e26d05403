package lsdshuffle

import (
	"github.com/tamirms/lsdshuffle/internal/digits"
)

// bufferManager owns the double-buffering scheme of one sort.
//
// bufs[0] is always the caller's slice and bufs[1] the scratch buffer. front
// names the buffer holding the current round's input; swap flips it without
// moving any keys. Because roles alternate every round, an odd round count
// leaves the result in scratch, and finish copies it back so the caller's
// slice always ends up holding the sorted keys.
//
// The manager also owns the per-partition boundary tables. They are
// allocated once and every round overwrites them completely.
type bufferManager struct {
	bufs    [2][]uint32
	front   int
	scratch scratchBuffer
	tables  [][]uint32
}

// newBufferManager allocates scratch space and boundary tables for sorting
// keys in partitions partitions of width-bit digits.
func newBufferManager(keys []uint32, partitions, width int, kind ScratchKind, tempDir string) (*bufferManager, error) {
	scratch, err := allocScratch(kind, len(keys), tempDir)
	if err != nil {
		return nil, err
	}

	// One backing array for all tables; each table's capacity is clipped so
	// an engine cannot write into its neighbour.
	nb := digits.Buckets(width)
	backing := make([]uint32, partitions*nb)
	tables := make([][]uint32, partitions)
	for i := range tables {
		tables[i] = backing[i*nb : (i+1)*nb : (i+1)*nb]
	}

	return &bufferManager{
		bufs:    [2][]uint32{keys, scratch.keys()},
		scratch: scratch,
		tables:  tables,
	}, nil
}

// current returns the buffer holding this round's input.
func (m *bufferManager) current() []uint32 { return m.bufs[m.front] }

// next returns the buffer this round shuffles into.
func (m *bufferManager) next() []uint32 { return m.bufs[1-m.front] }

// swap makes next the current buffer.
func (m *bufferManager) swap() { m.front = 1 - m.front }

// inPrimary reports whether the current buffer is the caller's slice.
func (m *bufferManager) inPrimary() bool { return m.front == 0 }

// finish guarantees the current buffer's contents are in the caller's slice,
// copying them back from scratch if the last round left them there.
// Reports whether a copy was made.
func (m *bufferManager) finish() bool {
	if m.inPrimary() {
		return false
	}
	copy(m.bufs[0], m.bufs[1])
	m.front = 0
	return true
}

// release frees the scratch buffer. The caller's slice is untouched.
func (m *bufferManager) release() error {
	m.bufs[1] = nil
	m.tables = nil
	return m.scratch.release()
}

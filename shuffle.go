package lsdshuffle

import (
	"fmt"

	streamerrors "github.com/tamirms/lsdshuffle/errors"
)

// shuffle recombines locally bucket-sorted partitions of src into dst.
//
// Runs are copied bucket-major, partition-minor: bucket 0 of partition 0,
// bucket 0 of partition 1, ..., then bucket 1 of partition 0, and so on. This
// groups every key with the same digit together, keeps each partition's own
// order, and breaks ties between partitions by partition index. That
// tie-break is what makes a P-partition sort agree key-for-key with a
// single-partition sort.
//
// tables[i] is partition i's boundary table. A table whose runs fall outside
// the partition, or that would not account for every key, is reported as
// ErrContractViolation rather than trusted.
func shuffle(dst, src []uint32, parts []Partition, tables [][]uint32) error {
	nb := len(tables[0])
	pos := 0
	for b := range nb {
		for i, p := range parts {
			start, end := bucketRun(tables[i], b, p.Len)
			if start > end || end > p.Len {
				return fmt.Errorf("%w: partition %d bucket %d run [%d, %d) outside partition of %d keys",
					streamerrors.ErrContractViolation, i, b, start, end, p.Len)
			}
			pos += copy(dst[pos:], src[p.Offset+start:p.Offset+end])
		}
	}

	if pos != len(dst) {
		return fmt.Errorf("%w: shuffle placed %d of %d keys", streamerrors.ErrContractViolation, pos, len(dst))
	}
	return nil
}

// bucketRun returns the [start, end) range of bucket b within a partition of
// n keys. The last bucket implicitly ends at n.
func bucketRun(table []uint32, b, n int) (int, int) {
	start := int(table[b])
	if b+1 < len(table) {
		return start, int(table[b+1])
	}
	return start, n
}

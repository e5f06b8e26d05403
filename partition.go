package lsdshuffle

// Partition is a contiguous, non-owning view into a key buffer.
// A partition is only meaningful for the round that produced it: every round
// re-splits the buffer it reads from.
type Partition struct {
	Offset int // Index of the first key in the buffer
	Len    int // Number of keys
}

// End returns the index one past the partition's last key.
func (p Partition) End() int {
	return p.Offset + p.Len
}

// Keys returns the partition's keys within buf. The returned slice has its
// capacity clipped to the partition so an Engine cannot grow into a sibling.
func (p Partition) Keys(buf []uint32) []uint32 {
	return buf[p.Offset:p.End():p.End()]
}

// Split divides a buffer of n keys into p contiguous, non-overlapping
// partitions covering it exactly. Every partition holds n/p keys except the
// last, which also absorbs the remainder n%p.
//
// Split panics if p < 1 or n < 0.
func Split(n, p int) []Partition {
	return splitInto(make([]Partition, p), n)
}

// splitInto fills parts with the split of n keys into len(parts) partitions
// and returns it. The round driver reuses one slice across rounds.
func splitInto(parts []Partition, n int) []Partition {
	p := len(parts)
	if p < 1 {
		panic("lsdshuffle: Split requires at least one partition")
	}
	if n < 0 {
		panic("lsdshuffle: Split requires a non-negative length")
	}

	size := n / p
	for i := range parts {
		parts[i] = Partition{Offset: i * size, Len: size}
	}
	parts[p-1].Len += n % p
	return parts
}

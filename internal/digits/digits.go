// Package digits provides the digit arithmetic shared by the round driver,
// the default engine and the verification helpers.
package digits

// KeyBits is the width of a key in bits.
const KeyBits = 32

// MaxWidth is the widest digit supported. 16 bits gives 65536 buckets per
// round, which keeps a boundary table at 256KiB per partition.
const MaxWidth = 16

// Extract isolates the width-bit digit of v starting at bit offset.
// Bits above KeyBits read as zero, so the last round of a width that does
// not divide 32 sees a narrower effective digit.
func Extract(v uint32, offset, width int) int {
	return int((v >> uint(offset)) & (1<<uint(width) - 1))
}

// Buckets returns the number of distinct digit values for width, 2^width.
func Buckets(width int) int {
	return 1 << uint(width)
}

// Rounds returns the number of digit rounds needed to cover every key bit,
// ceil(32 / width).
func Rounds(width int) int {
	if width <= 0 {
		return 0
	}
	return (KeyBits + width - 1) / width
}

// Offset returns the bit offset of round.
func Offset(round, width int) int {
	return round * width
}

// ValidWidth reports whether width is a supported digit width.
func ValidWidth(width int) bool {
	return width >= 1 && width <= MaxWidth
}

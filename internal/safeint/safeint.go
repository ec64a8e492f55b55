// Package safeint provides the overflow-checked arithmetic the storage
// layer's capacity guards are built on: row-offset growth in the table and
// bitset sizing in the paged columns must detect exhaustion instead of
// wrapping silently.
package safeint

import "math/bits"

// MaxInt64 bounds the flat row-offset space: offsets are converted to int
// for page indexing, so anything above this is unaddressable regardless of
// the RowId encoding.
const MaxInt64 = 1<<63 - 1

// SafeAdd returns x+y and reports whether the addition overflowed.
func SafeAdd(x, y uint64) (uint64, bool) {
	sum, carryOut := bits.Add64(x, y, 0)
	return sum, carryOut != 0
}

// CeilDiv divides x by y rounding up, returning 0 for a zero divisor. Used
// to size a page's presence bitset to its cell capacity.
func CeilDiv(x, y int) int {
	if y == 0 {
		return 0
	}
	return (x + y - 1) / y
}

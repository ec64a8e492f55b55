package column

import "math"

// Sortable encodings for floating types: a total-order mapping of float bits
// to signed integer bits so that lexicographic integer comparisons yield
// float ordering. Date/time types are stored as plain epoch-based
// integers by the converter registry and need no such mapping.
//
// The mapping leaves positive-float bit patterns untouched (their raw IEEE
// representation already orders correctly as a signed integer) and flips
// every bit but the sign bit of negative-float patterns (whose raw
// representation orders backwards, since larger magnitude negatives have
// larger raw bit patterns). Both directions use the same formula, so
// encode and decode share the transform.

func sortable32(bits int32) int32 {
	return bits ^ ((bits >> 31) & 0x7fffffff)
}

func sortable64(bits int64) int64 {
	return bits ^ ((bits >> 63) & 0x7fffffffffffffff)
}

// EncodeF32 maps a float32 to an int32 that preserves the float's total
// order under plain signed-integer comparison.
func EncodeF32(v float32) int32 {
	return sortable32(int32(math.Float32bits(v)))
}

// DecodeF32 is the inverse of EncodeF32.
func DecodeF32(enc int32) float32 {
	return math.Float32frombits(uint32(sortable32(enc)))
}

// EncodeF64 maps a float64 to an int64 that preserves the float's total
// order under plain signed-integer comparison.
func EncodeF64(v float64) int64 {
	return sortable64(int64(math.Float64bits(v)))
}

// DecodeF64 is the inverse of EncodeF64.
func DecodeF64(enc int64) float64 {
	return math.Float64frombits(uint64(sortable64(enc)))
}

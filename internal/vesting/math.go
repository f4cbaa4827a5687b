package vesting

import "math/bits"

// addChecked returns a+b and false on overflow.
func addChecked(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

// mulChecked returns a*b and false on overflow.
func mulChecked(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

// subFloor returns a-b clamped at zero.
func subFloor(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}

// mulDiv computes floor(a*b/d) using a 128-bit intermediate. d must be > 0
// and the quotient must fit in 64 bits, which holds whenever b <= d.
func mulDiv(a, b, d uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	q, _ := bits.Div64(hi, lo, d)
	return q
}

// ceilDiv returns ceil(a/b) for b > 0.
func ceilDiv(a, b uint64) uint64 {
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}

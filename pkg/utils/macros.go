package utils

import "golang.org/x/exp/constraints"

// NextPowerOfTwo returns the smallest power of two that is >= v.
// Values below 1 return 1.
func NextPowerOfTwo[T constraints.Integer](v T) T {
	p := T(1)
	for p < v {
		p <<= 1
	}
	return p
}

// BankMask returns the mask used to wrap a bank number into count
// physically present banks (next power of two minus one).
func BankMask[T constraints.Integer](count T) T {
	return NextPowerOfTwo(count) - 1
}

// ZeroAdjust8 maps a bank number of 0 to 1.
func ZeroAdjust8(v uint8) uint8 {
	if v == 0 {
		return 1
	}
	return v
}

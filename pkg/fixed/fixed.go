// Package fixed provides overflow checked u64 arithmetic with u128
// intermediates, mirroring the on-chain program's SafeMath. All divisions
// floor. Any divergence from the on-chain results is a correctness bug.
package fixed

import (
	"errors"
	"math/bits"
)

var (
	// ErrOverflow result does not fit in 64 bits
	ErrOverflow = errors.New("fixed: overflow")
	// ErrDivisionByZero zero divisor
	ErrDivisionByZero = errors.New("fixed: division by zero")
)

// Add checked a + b
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub checked a - b
func Sub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrOverflow
	}
	return diff, nil
}

// AddSat a + b saturating at MaxUint64
func AddSat(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return ^uint64(0)
	}
	return sum
}

// SubFloor a - b floored at zero
func SubFloor(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}

// Mul checked a * b
func Mul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}

// MulDiv floor(a * b / c) with a full 128 bit intermediate product
func MulDiv(a, b, c uint64) (uint64, error) {
	if c == 0 {
		return 0, ErrDivisionByZero
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return 0, ErrOverflow
	}
	q, _ := bits.Div64(hi, lo, c)
	return q, nil
}

// Pow10 10^n for n <= 19
func Pow10(n uint8) uint64 {
	v := uint64(1)
	for i := uint8(0); i < n; i++ {
		v *= 10
	}
	return v
}

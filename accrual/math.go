package accrual

import (
	"math/bits"

	serr "github.com/mezonai/stakeledger/errors"
)

// Add is checked uint64 addition.
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, serr.Newf(serr.ErrCodeOverflow, "%d + %d overflows", a, b)
	}
	return sum, nil
}

// Sub is checked uint64 subtraction.
func Sub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, serr.Newf(serr.ErrCodeUnderflow, "%d - %d underflows", a, b)
	}
	return diff, nil
}

// AddDuration returns t+d seconds, failing instead of wrapping.
func AddDuration(t, d int64) (int64, error) {
	sum := t + d
	if (d > 0 && sum < t) || (d < 0 && sum > t) {
		return 0, serr.Newf(serr.ErrCodeOverflow, "%d + %d overflows", t, d)
	}
	return sum, nil
}

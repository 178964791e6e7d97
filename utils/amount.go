package utils

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// ParseAmount parses a base-10 amount, allowing '_' as a digit separator
// (1_000_000). The result must fit in 64 bits.
func ParseAmount(s string) (uint64, error) {
	v, err := uint256.FromDecimal(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	if err != nil {
		return 0, fmt.Errorf("could not parse amount %q: %w", s, err)
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("amount %s exceeds 64 bits", v.Dec())
	}
	return v.Uint64(), nil
}

// FormatAmount renders amount with '_' between groups of three digits
func FormatAmount(amount uint64) string {
	digits := uint256.NewInt(amount).Dec()
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('_')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

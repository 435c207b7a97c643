package helper

import (
	"math"
	"strconv"
	"strings"
)

// TruncateTo cuts v down to the given number of decimal places without
// rounding. Venues reject quantities rounded up past step size or available
// margin, so truncation is mandatory for everything sent on the wire.
func TruncateTo(v float64, decimals int) float64 {
	if decimals < 0 {
		return v
	}
	p := math.Pow10(decimals)
	return math.Trunc(v*p+1e-9) / p
}

// CountDecimals returns the number of decimal places of a step value,
// e.g. 0.001 -> 3, 1 -> 0.
func CountDecimals(step float64) int {
	if step == math.Trunc(step) {
		return 0
	}
	s := strconv.FormatFloat(step, 'f', -1, 64)
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return 0
	}
	return len(s) - i - 1
}

// Package convert provides overflow-safe integer conversions.
package convert

import "math"

// IntToUintClamped converts an int to uint, clamping negative values to 0.
func IntToUintClamped(v int) uint {
	if v < 0 {
		return 0
	}
	return uint(v)
}

// Int64ToIntClamped narrows a database integer to int, clamping on overflow.
func Int64ToIntClamped(v int64) int {
	if v > math.MaxInt {
		return math.MaxInt
	}
	if v < math.MinInt {
		return math.MinInt
	}
	return int(v)
}

// ShiftClamped returns 1<<n, saturating at 1<<limit. Negative n yields 1.
func ShiftClamped(n, limit int) int64 {
	if n < 0 {
		n = 0
	}
	if n > limit {
		n = limit
	}
	return int64(1) << IntToUintClamped(n)
}

// IntToInt32Clamped narrows v to int32, saturating at the bounds.
func IntToInt32Clamped(v int) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}

package utils

// Clamp limits x to [lo, hi]; NaN passes through unchanged
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x >= hi {
		return hi
	}
	return x
}

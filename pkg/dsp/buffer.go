// Package dsp provides digital signal processing utilities for audio
package dsp

// Buffer utilities for common audio operations

// Clear zeroes a buffer - no allocations
func Clear(buffer []float32) {
	for i := range buffer {
		buffer[i] = 0
	}
}

// SoftLimit saturates a single sample with a rational tanh approximation.
// Output stays within [-1, 1] and is close to linear for small inputs.
func SoftLimit(x float32) float32 {
	if x < -3 {
		return -1
	}
	if x > 3 {
		return 1
	}
	return x * (27 + x*x) / (27 + 9*x*x)
}

// SoftLimitBuffer applies SoftLimit in place - no allocations
func SoftLimitBuffer(buffer []float32) {
	for i := range buffer {
		buffer[i] = SoftLimit(buffer[i])
	}
}

// SoftMix sums two signals and saturates the result.
func SoftMix(a, b float32) float32 {
	return SoftLimit(a + b)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt limits v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Peak finds the maximum absolute value in a buffer
func Peak(buffer []float32) float32 {
	peak := float32(0)
	for _, sample := range buffer {
		if sample < 0 {
			sample = -sample
		}
		if sample > peak {
			peak = sample
		}
	}
	return peak
}

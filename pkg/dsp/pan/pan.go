// Package pan provides stereo image operations.
package pan

import "github.com/justyntemme/wreath/pkg/dsp"

const invSqrt2 = float32(1 / dsp.Sqrt2)

// ToMidSide converts a stereo pair to its orthonormal mid/side form.
func ToMidSide(left, right float32) (mid, side float32) {
	return (left + right) * invSqrt2, (left - right) * invSqrt2
}

// FromMidSide converts an orthonormal mid/side pair back to left/right.
func FromMidSide(mid, side float32) (left, right float32) {
	return (mid + side) * invSqrt2, (mid - side) * invSqrt2
}

// Widen scales the side component of a stereo pair.
// width: 0 = mono, 1 = unchanged, >1 = wider
func Widen(left, right, width float32) (float32, float32) {
	mid, side := ToMidSide(left, right)
	return FromMidSide(mid, side*width)
}

// WidenBuffer applies Widen to a pair of buffers in place - no allocations
func WidenBuffer(left, right []float32, width float32) {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	for i := 0; i < n; i++ {
		left[i], right[i] = Widen(left[i], right[i], width)
	}
}

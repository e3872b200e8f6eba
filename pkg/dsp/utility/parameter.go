// Package utility holds small helpers shared by the DSP packages: parameter
// scaling, slew coefficients and a seedable random source.
package utility

import "math"

// ScaleParameter performs linear scaling of a normalized parameter value (0-1) to a target range.
func ScaleParameter(normalized, min, max float64) float64 {
	return min + normalized*(max-min)
}

// ScaleParameterExp performs exponential scaling of a normalized parameter value (0-1) to a target range.
// This is ideal for frequency, time, and other parameters where exponential scaling feels more natural.
func ScaleParameterExp(normalized, min, max float64) float64 {
	if min <= 0 || max <= 0 {
		// Fall back to linear scaling if min or max is non-positive
		return ScaleParameter(normalized, min, max)
	}
	return min * math.Pow(max/min, normalized)
}

// SlewCoefficient returns the one-pole coefficient that covers a slew of
// seconds at the given sample rate. Zero or negative times mean no slew.
func SlewCoefficient(seconds, sampleRate float64) float32 {
	if seconds <= 0 || sampleRate <= 0 {
		return 1
	}
	coeff := 1.0 / (seconds * sampleRate)
	if coeff > 1 {
		return 1
	}
	return float32(coeff)
}

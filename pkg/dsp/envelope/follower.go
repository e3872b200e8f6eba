// Package envelope provides envelope followers for level-dependent processing
package envelope

import "math"

// calcCoef calculates exponential coefficient for a given time
func calcCoef(timeSeconds, sampleRate float64) float64 {
	if timeSeconds <= 0.0 {
		return 0.0
	}
	return math.Exp(-1.0 / (timeSeconds * sampleRate))
}

// Follower implements an envelope follower for dynamics processing
type Follower struct {
	sampleRate  float64
	attack      float64
	release     float64
	attackCoef  float64
	releaseCoef float64
	envelope    float64
}

// NewFollower creates a new envelope follower
func NewFollower(sampleRate float64) *Follower {
	f := &Follower{
		sampleRate: sampleRate,
		attack:     0.01,
		release:    0.1,
	}
	f.updateCoefficients()
	return f
}

// SetAttack sets the attack time
func (f *Follower) SetAttack(seconds float64) {
	f.attack = math.Max(0.0001, seconds)
	f.updateCoefficients()
}

// SetRelease sets the release time
func (f *Follower) SetRelease(seconds float64) {
	f.release = math.Max(0.0001, seconds)
	f.updateCoefficients()
}

// updateCoefficients recalculates coefficients
func (f *Follower) updateCoefficients() {
	f.attackCoef = calcCoef(f.attack, f.sampleRate)
	f.releaseCoef = calcCoef(f.release, f.sampleRate)
}

// Reset drops the tracked envelope to zero
func (f *Follower) Reset() {
	f.envelope = 0
}

// Value returns the last envelope value without advancing
func (f *Follower) Value() float32 {
	return float32(f.envelope)
}

// Follow processes a single sample
func (f *Follower) Follow(input float32) float32 {
	absInput := math.Abs(float64(input))

	if absInput > f.envelope {
		f.envelope = absInput + (f.envelope-absInput)*f.attackCoef
	} else {
		f.envelope = absInput + (f.envelope-absInput)*f.releaseCoef
	}

	return float32(f.envelope)
}

// Process extracts the envelope from a signal - no allocations
func (f *Follower) Process(input, output []float32) {
	for i := range input {
		output[i] = f.Follow(input[i])
	}
}

// Package mix provides audio mixing and crossfading operations.
package mix

import (
	"math"
)

// EqualPowerGains returns the gains of an equal-power crossfade.
// position: 0.0 = all a, 1.0 = all b
func EqualPowerGains(position float32) (gainA, gainB float32) {
	angle := float64(position) * math.Pi / 2.0
	return float32(math.Cos(angle)), float32(math.Sin(angle))
}

// CrossfadeCosine performs an equal-power cosine crossfade.
// position: 0.0 = 100% a, 1.0 = 100% b
func CrossfadeCosine(a, b, position float32) float32 {
	gainA, gainB := EqualPowerGains(position)
	return a*gainA + b*gainB
}

// CrossfadeLinear performs a linear crossfade.
// position: 0.0 = 100% a, 1.0 = 100% b
func CrossfadeLinear(a, b, position float32) float32 {
	return a*(1.0-position) + b*position
}

// Curve selects the crossfade law used by a Crossfader.
type Curve int

const (
	// EqualPower keeps the summed power constant across the fade
	EqualPower Curve = iota
	// Linear keeps the summed amplitude constant across the fade
	Linear
)

// Crossfader blends two values at a stored position. The looper uses it with
// from/to set to 0 and 1 to shape fade coefficients at loop seams.
type Crossfader struct {
	curve    Curve
	position float32
}

// NewCrossfader creates a crossfader with the given curve, positioned at a.
func NewCrossfader(curve Curve) *Crossfader {
	return &Crossfader{curve: curve}
}

// SetPosition sets the fade position, clamped to [0, 1].
func (c *Crossfader) SetPosition(position float32) {
	if position < 0 {
		position = 0
	} else if position > 1 {
		position = 1
	}
	c.position = position
}

// Position returns the current fade position.
func (c *Crossfader) Position() float32 {
	return c.position
}

// Process blends a and b at the current position.
func (c *Crossfader) Process(a, b float32) float32 {
	if c.curve == Linear {
		return CrossfadeLinear(a, b, c.position)
	}
	return CrossfadeCosine(a, b, c.position)
}

// Package filter provides digital signal processing filters
package filter

import (
	"math"

	"github.com/justyntemme/wreath/pkg/dsp"
)

// Type selects which SVF response a caller reads.
type Type int

const (
	// Lowpass passes content below the cutoff
	Lowpass Type = iota
	// Bandpass passes content around the cutoff
	Bandpass
	// Highpass passes content above the cutoff
	Highpass
)

// String returns the short display name of the response.
func (t Type) String() string {
	switch t {
	case Lowpass:
		return "LP"
	case Bandpass:
		return "BP"
	case Highpass:
		return "HP"
	default:
		return "?"
	}
}

// SVF implements a state variable filter
// Provides simultaneous lowpass, highpass, bandpass, and notch outputs
// Zero-delay feedback topology for better analog modeling
type SVF struct {
	sampleRate float64

	// Filter parameters
	g     float32 // frequency coefficient
	k     float32 // damping coefficient (1/Q)
	drive float32 // input saturation amount, 0 = clean

	// State variables (per-channel)
	ic1eq []float32 // integrator 1 state
	ic2eq []float32 // integrator 2 state
}

// SVFOutputs holds all filter outputs
type SVFOutputs struct {
	Lowpass  float32
	Highpass float32
	Bandpass float32
	Notch    float32
}

// Select returns the output matching t. Unknown types read the bandpass.
func (o SVFOutputs) Select(t Type) float32 {
	switch t {
	case Lowpass:
		return o.Lowpass
	case Highpass:
		return o.Highpass
	default:
		return o.Bandpass
	}
}

// NewSVF creates a new state variable filter for the specified number of channels
func NewSVF(sampleRate float64, channels int) *SVF {
	s := &SVF{
		sampleRate: sampleRate,
		ic1eq:      make([]float32, channels),
		ic2eq:      make([]float32, channels),
	}
	s.SetFrequency(dsp.DefaultFilterHz)
	s.SetQ(dsp.DefaultQ)
	return s
}

// Reset clears the filter state
func (s *SVF) Reset() {
	for i := range s.ic1eq {
		s.ic1eq[i] = 0
		s.ic2eq[i] = 0
	}
}

// SetFrequency sets the filter cutoff in Hz, limited to just under Nyquist.
func (s *SVF) SetFrequency(frequency float64) {
	ratio := dsp.Clamp(frequency/s.sampleRate, 0, dsp.MaxFrequencyFrac)
	// Pre-warp the frequency for the bilinear transform
	s.g = float32(math.Tan(math.Pi * ratio))
}

// SetQ sets the filter resonance (Q factor)
func (s *SVF) SetQ(q float64) {
	s.k = float32(1.0 / dsp.Clamp(q, dsp.MinQ, dsp.MaxQ))
}

// SetResonance sets resonance on a 0-1 scale. 0 is a gentle Q of 0.5 and 1
// is close to self-oscillation.
func (s *SVF) SetResonance(res float64) {
	k := 2.0 * (1.0 - dsp.Clamp(res, 0, 1))
	s.k = float32(math.Max(k, 0.02))
}

// SetDrive sets how hard the input is pushed into saturation (0 = clean).
func (s *SVF) SetDrive(drive float64) {
	s.drive = float32(math.Max(drive, 0))
}

// ProcessSample processes a single sample and returns all outputs
func (s *SVF) ProcessSample(input float32, channel int) SVFOutputs {
	if s.drive > 0 {
		input = dsp.SoftLimit(input*(1+s.drive)) / (1 + s.drive)
	}

	// Get state for this channel
	ic1eq := s.ic1eq[channel]
	ic2eq := s.ic2eq[channel]

	// Compute common terms
	g := s.g
	k := s.k
	a1 := 1.0 / (1.0 + g*(g+k))
	a2 := g * a1
	a3 := g * a2

	// Compute outputs
	v3 := input - ic2eq
	v1 := a1*ic1eq + a2*v3
	v2 := ic2eq + a2*ic1eq + a3*v3

	// Update state
	s.ic1eq[channel] = 2.0*v1 - ic1eq
	s.ic2eq[channel] = 2.0*v2 - ic2eq

	return SVFOutputs{
		Lowpass:  v2,
		Bandpass: v1,
		Highpass: input - k*v1 - v2,
		Notch:    input - k*v1,
	}
}

// Process filters one sample and returns the response selected by t.
func (s *SVF) Process(input float32, channel int, t Type) float32 {
	return s.ProcessSample(input, channel).Select(t)
}

// ProcessBuffer filters buffer in place with the response selected by t - no allocations
func (s *SVF) ProcessBuffer(buffer []float32, channel int, t Type) {
	for i := range buffer {
		buffer[i] = s.Process(buffer[i], channel, t)
	}
}

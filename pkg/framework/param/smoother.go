package param

import "math"

// SmoothingType defines different parameter smoothing algorithms.
type SmoothingType int

const (
	// LinearSmoothing reaches the target in a fixed number of samples
	LinearSmoothing SmoothingType = iota
	// ExponentialSmoothing is a one-pole filter towards the target
	ExponentialSmoothing
)

// Smoother glides a value towards a target one sample at a time.
type Smoother struct {
	smoothingType SmoothingType
	current       float64
	target        float64
	threshold     float64
	isSmoothing   bool

	// coeff is the one-pole step for exponential smoothing, 1 jumps.
	coeff float64

	// samples and step drive linear smoothing.
	samples float64
	step    float64
}

// NewSmoother creates a smoother. For ExponentialSmoothing amount is the
// one-pole coefficient in (0, 1]; for LinearSmoothing it is the ramp length
// in samples.
func NewSmoother(smoothingType SmoothingType, amount float64) *Smoother {
	s := &Smoother{
		smoothingType: smoothingType,
		threshold:     1e-4,
	}
	s.SetRate(amount)
	return s
}

// SetRate updates the coefficient or ramp length, see NewSmoother.
func (s *Smoother) SetRate(amount float64) {
	switch s.smoothingType {
	case LinearSmoothing:
		s.samples = math.Max(amount, 0)
	default:
		if amount <= 0 || amount > 1 {
			amount = 1
		}
		s.coeff = amount
	}
}

// SetTarget sets the value to glide towards.
func (s *Smoother) SetTarget(target float64) {
	if target == s.target {
		return
	}
	s.target = target
	s.isSmoothing = true
	if s.smoothingType == LinearSmoothing {
		if s.samples < 1 {
			s.step = target - s.current
		} else {
			s.step = (target - s.current) / s.samples
		}
	}
}

// Next advances one sample and returns the smoothed value.
func (s *Smoother) Next() float64 {
	if !s.isSmoothing {
		return s.current
	}

	switch s.smoothingType {
	case LinearSmoothing:
		s.current += s.step
		if (s.step >= 0 && s.current >= s.target) || (s.step < 0 && s.current <= s.target) {
			s.settle()
		}
	default:
		s.current += s.coeff * (s.target - s.current)
		if math.Abs(s.current-s.target) < s.threshold {
			s.settle()
		}
	}
	return s.current
}

func (s *Smoother) settle() {
	s.current = s.target
	s.isSmoothing = false
}

// Current returns the value without advancing.
func (s *Smoother) Current() float64 {
	return s.current
}

// Target returns the value being approached.
func (s *Smoother) Target() float64 {
	return s.target
}

// IsSmoothing returns true while the value has not reached the target.
func (s *Smoother) IsSmoothing() bool {
	return s.isSmoothing
}

// Reset jumps to value and stops smoothing.
func (s *Smoother) Reset(value float64) {
	s.current = value
	s.target = value
	s.isSmoothing = false
}

// SetThreshold sets the distance at which exponential smoothing snaps to the target.
func (s *Smoother) SetThreshold(threshold float64) {
	s.threshold = threshold
}

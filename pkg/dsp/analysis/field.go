package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/justyntemme/wreath/pkg/dsp/gain"
)

// PhaseStatus is a qualitative reading of the correlation.
type PhaseStatus int

const (
	PhaseInPhase PhaseStatus = iota
	PhaseMostlyInPhase
	PhasePartiallyCorrelated
	PhaseMostlyOutOfPhase
	PhaseOutOfPhase
)

var phaseNames = [...]string{
	"In Phase",
	"Mostly In Phase",
	"Partially Correlated",
	"Mostly Out of Phase",
	"Out of Phase",
}

func (p PhaseStatus) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "Unknown"
	}
	return phaseNames[p]
}

// Field describes the relationship between the two channels.
type Field struct {
	// Correlation is the Pearson correlation in [-1, 1]
	Correlation float64
	// Width is sqrt(side/mid power): 0 is mono, 1 is normal stereo
	Width float64
	// Balance is the right to left RMS ratio in dB
	Balance float64
}

// Phase classifies the correlation.
func (f Field) Phase() PhaseStatus {
	switch c := f.Correlation; {
	case c > 0.9:
		return PhaseInPhase
	case c > 0.5:
		return PhaseMostlyInPhase
	case c > -0.5:
		return PhasePartiallyCorrelated
	case c > -0.9:
		return PhaseMostlyOutOfPhase
	default:
		return PhaseOutOfPhase
	}
}

// MonoCompatibility maps the correlation onto [0, 1].
func (f Field) MonoCompatibility() float64 {
	return (f.Correlation + 1) / 2
}

// Report is the full measurement of a stereo buffer.
type Report struct {
	Left  Level
	Right Level
	Field Field
}

// Measure analyses left and right, truncated to the shorter of the two.
func Measure(left, right []float32) Report {
	n := min(len(left), len(right))
	l, r := widen(left[:n]), widen(right[:n])
	ll, rl := measureLevel(l), measureLevel(r)
	return Report{
		Left:  ll,
		Right: rl,
		Field: Field{
			Correlation: correlation(l, r),
			Width:       width(l, r),
			Balance:     gain.LinearToDb(rl.RMS) - gain.LinearToDb(ll.RMS),
		},
	}
}

func correlation(l, r []float64) float64 {
	if len(l) < 2 {
		return 1
	}
	silentL, silentR := stat.Variance(l, nil) == 0, stat.Variance(r, nil) == 0
	switch {
	case silentL && silentR:
		return 1
	case silentL || silentR:
		return 0
	}
	return max(-1, min(1, stat.Correlation(l, r, nil)))
}

func width(l, r []float64) float64 {
	var mid, side float64
	for i := range l {
		m := (l[i] + r[i]) * 0.5
		s := (l[i] - r[i]) * 0.5
		mid += m * m
		side += s * s
	}
	switch {
	case side == 0:
		return 0
	case mid == 0:
		return math.Inf(1)
	}
	return math.Sqrt(side / mid)
}

package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/justyntemme/wreath/pkg/dsp/gain"
)

// Level is the peak and RMS amplitude of one channel.
type Level struct {
	Peak float64
	RMS  float64
}

// PeakDB returns the peak in dBFS.
func (l Level) PeakDB() float64 {
	return gain.LinearToDb(l.Peak)
}

// RMSDB returns the RMS level in dBFS.
func (l Level) RMSDB() float64 {
	return gain.LinearToDb(l.RMS)
}

// MeasureLevel returns the level of samples. An empty buffer measures zero.
func MeasureLevel(samples []float32) Level {
	return measureLevel(widen(samples))
}

func measureLevel(x []float64) Level {
	if len(x) == 0 {
		return Level{}
	}
	return Level{
		Peak: floats.Norm(x, math.Inf(1)),
		RMS:  floats.Norm(x, 2) / math.Sqrt(float64(len(x))),
	}
}

func widen(samples []float32) []float64 {
	x := make([]float64, len(samples))
	for i, v := range samples {
		x[i] = float64(v)
	}
	return x
}

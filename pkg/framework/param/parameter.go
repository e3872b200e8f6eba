// Package param describes the looper control surface: ranged parameters with
// display formatting, an ordered registry and a smoother for audio-rate
// targets.
package param

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"

	"github.com/justyntemme/wreath/pkg/dsp/utility"
)

// Parameter is a single control with a plain range and an atomically stored
// normalized value, so a control goroutine can write it while the audio
// goroutine reads it.
type Parameter struct {
	ID           uint32
	Name         string
	ShortName    string
	Unit         string
	Min          float64
	Max          float64
	DefaultValue float64 // normalized
	StepCount    int32
	Flags        uint32

	value atomic.Uint64

	formatFunc func(float64) string
	parseFunc  func(string) (float64, error)
}

// Flags for parameters
const (
	// IsList marks a parameter whose steps name discrete choices
	IsList uint32 = 1 << iota
	// PerChannel marks a parameter that can target the left or right looper
	PerChannel
	// Logarithmic spreads the range evenly in octaves rather than in units
	Logarithmic
)

// GetValue returns the current normalized value (0-1)
func (p *Parameter) GetValue() float64 {
	return math.Float64frombits(p.value.Load())
}

// SetValue sets the normalized value, clamped to 0-1
func (p *Parameter) SetValue(value float64) {
	if value < 0 {
		value = 0
	} else if value > 1 {
		value = 1
	}
	if p.StepCount > 0 {
		value = math.Round(value*float64(p.StepCount)) / float64(p.StepCount)
	}
	p.value.Store(math.Float64bits(value))
}

// GetPlainValue converts the stored value to the parameter's range
func (p *Parameter) GetPlainValue() float64 {
	return p.Denormalize(p.GetValue())
}

// SetPlainValue stores a value given in the parameter's range
func (p *Parameter) SetPlainValue(plain float64) {
	p.SetValue(p.Normalize(plain))
}

// Reset restores the default value
func (p *Parameter) Reset() {
	p.SetValue(p.DefaultValue)
}

// Has reports whether all bits in flag are set
func (p *Parameter) Has(flag uint32) bool {
	return p.Flags&flag == flag
}

// FormatValue renders a normalized value for display
func (p *Parameter) FormatValue(normalized float64) string {
	plain := p.Denormalize(normalized)
	if p.formatFunc != nil {
		return p.formatFunc(plain)
	}
	if p.StepCount > 0 {
		return fmt.Sprintf("%.0f", plain)
	}
	if p.Unit != "" {
		return fmt.Sprintf("%.2f %s", plain, p.Unit)
	}
	return fmt.Sprintf("%.2f", plain)
}

// ParsePlain parses display text into a plain value
func (p *Parameter) ParsePlain(str string) (float64, error) {
	if p.parseFunc != nil {
		return p.parseFunc(str)
	}
	return strconv.ParseFloat(str, 64)
}

// ParseValue parses display text into a normalized value
func (p *Parameter) ParseValue(str string) (float64, error) {
	plain, err := p.ParsePlain(str)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", p.Name, err)
	}
	return p.Normalize(plain), nil
}

// Normalize converts plain value to normalized (0-1)
func (p *Parameter) Normalize(plain float64) float64 {
	if p.Max <= p.Min {
		return 0
	}
	var normalized float64
	if p.logarithmic() {
		if plain <= p.Min {
			return 0
		}
		normalized = math.Log(plain/p.Min) / math.Log(p.Max/p.Min)
	} else {
		normalized = (plain - p.Min) / (p.Max - p.Min)
	}
	if normalized < 0 {
		return 0
	}
	if normalized > 1 {
		return 1
	}
	return normalized
}

// Denormalize converts normalized (0-1) to plain value
func (p *Parameter) Denormalize(normalized float64) float64 {
	if p.logarithmic() {
		return utility.ScaleParameterExp(normalized, p.Min, p.Max)
	}
	return utility.ScaleParameter(normalized, p.Min, p.Max)
}

func (p *Parameter) logarithmic() bool {
	return p.Has(Logarithmic) && p.Min > 0
}

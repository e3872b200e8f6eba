package param

import (
	"fmt"
	"strings"
)

// Builder provides a fluent API for creating parameters
type Builder struct {
	param *Parameter
}

// New creates a new parameter builder
func New(id uint32, name string) *Builder {
	return &Builder{
		param: &Parameter{
			ID:        id,
			Name:      name,
			ShortName: name,
			Min:       0,
			Max:       1,
		},
	}
}

// ShortName sets the short name used by scripts and key bindings
func (b *Builder) ShortName(name string) *Builder {
	b.param.ShortName = name
	return b
}

// Range sets the min and max values
func (b *Builder) Range(min, max float64) *Builder {
	b.param.Min = min
	b.param.Max = max
	return b
}

// Default sets the default value (in plain range, not normalized)
func (b *Builder) Default(value float64) *Builder {
	b.param.DefaultValue = b.param.Normalize(value)
	return b
}

// Unit sets the unit string
func (b *Builder) Unit(unit string) *Builder {
	b.param.Unit = unit
	return b
}

// Steps sets the number of discrete steps
func (b *Builder) Steps(count int32) *Builder {
	b.param.StepCount = count
	return b
}

// Toggle makes the parameter an on/off switch
func (b *Builder) Toggle() *Builder {
	b.param.Min = 0
	b.param.Max = 1
	b.param.StepCount = 1
	b.param.formatFunc = OnOffFormatter
	b.param.parseFunc = OnOffParser
	return b
}

// PerChannel marks the parameter as targeting a single looper channel
func (b *Builder) PerChannel() *Builder {
	b.param.Flags |= PerChannel
	return b
}

// Logarithmic maps the normalized value exponentially onto the range. Call it
// before Default. The range must be positive.
func (b *Builder) Logarithmic() *Builder {
	b.param.Flags |= Logarithmic
	return b
}

// Formatter sets custom value formatting and parsing
func (b *Builder) Formatter(format func(float64) string, parse func(string) (float64, error)) *Builder {
	b.param.formatFunc = format
	b.param.parseFunc = parse
	return b
}

// Build returns the configured parameter at its default value
func (b *Builder) Build() *Parameter {
	b.param.Reset()
	return b.param
}

// ChoiceOption is a single entry of a list parameter
type ChoiceOption struct {
	Value   float64
	Name    string
	Aliases []string
}

// Choice creates a builder for a list parameter. Options are expected in
// ascending value order starting at the first option's value.
func Choice(id uint32, name string, options []ChoiceOption) *Builder {
	format := func(value float64) string {
		for _, opt := range options {
			if opt.Value == value {
				return opt.Name
			}
		}
		return "Unknown"
	}

	parse := func(str string) (float64, error) {
		str = strings.TrimSpace(str)
		for _, opt := range options {
			if strings.EqualFold(str, opt.Name) {
				return opt.Value, nil
			}
			for _, alias := range opt.Aliases {
				if strings.EqualFold(str, alias) {
					return opt.Value, nil
				}
			}
		}
		return 0, fmt.Errorf("unknown option %q", str)
	}

	b := New(id, name).Formatter(format, parse)
	b.param.Flags |= IsList
	if len(options) == 0 {
		return b
	}
	return b.
		Range(options[0].Value, options[len(options)-1].Value).
		Steps(int32(len(options) - 1)).
		Default(options[0].Value)
}

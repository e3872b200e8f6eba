package stereo

import (
	"errors"
	"fmt"
	"math"

	"github.com/justyntemme/wreath/pkg/dsp"
	"github.com/justyntemme/wreath/pkg/dsp/filter"
	"github.com/justyntemme/wreath/pkg/framework/param"
	"github.com/justyntemme/wreath/pkg/looper"
)

// ErrUnknownControl is returned by SetControl for an ID that is not a control.
var ErrUnknownControl = errors.New("unknown control")

// Control IDs.
const (
	ParamInputGain uint32 = iota
	ParamOutputGain
	ParamDryWet
	ParamFeedback
	ParamFeedbackLevel
	ParamFilterLevel
	ParamFilterType
	ParamFilterCutoff
	ParamStereoWidth
	ParamMovement
	ParamDirection
	ParamTriggerMode
	ParamLoopStart
	ParamLoopLength
	ParamReadRate
	ParamWriteRate
	ParamFreeze
	ParamRateSlew
	ParamFadeSamples
	ParamLoopSync
)

// NewControlRegistry describes every control SetControl accepts, with its
// plain range, default and display format.
func NewControlRegistry() *param.Registry {
	percent := func(id uint32, name, short string, def float64) *param.Parameter {
		return param.New(id, name).
			ShortName(short).
			Range(0, 1).
			Default(def).
			Formatter(param.PercentFormatter, param.PercentParser).
			Build()
	}
	gain := func(id uint32, name, short string) *param.Parameter {
		return param.New(id, name).
			ShortName(short).
			Range(0, 2).
			Default(1).
			Formatter(param.GainFormatter, param.GainParser).
			Build()
	}
	rate := func(id uint32, name, short string) *param.Parameter {
		return param.New(id, name).
			ShortName(short).
			Range(dsp.MinRate, dsp.MaxRate).
			Default(1).
			Formatter(param.RateFormatter, param.RateParser).
			PerChannel().
			Build()
	}
	seconds := func(id uint32, name, short string, def float64) *param.Parameter {
		return param.New(id, name).
			ShortName(short).
			Range(0, dsp.DefaultBufferSeconds).
			Default(def).
			Formatter(param.SecondsFormatter, param.SecondsParser).
			PerChannel().
			Build()
	}

	r := param.NewRegistry()
	err := r.Add(
		gain(ParamInputGain, "Input Gain", "input_gain"),
		gain(ParamOutputGain, "Output Gain", "output_gain"),
		percent(ParamDryWet, "Dry/Wet", "mix", 0.5),
		percent(ParamFeedback, "Feedback", "feedback", 0),
		percent(ParamFeedbackLevel, "Feedback Level", "feedback_level", 1),
		percent(ParamFilterLevel, "Filter Level", "filter_level", 0.3),

		param.Choice(ParamFilterType, "Filter Type", []param.ChoiceOption{
			{Value: float64(filter.Lowpass), Name: "LP", Aliases: []string{"lowpass"}},
			{Value: float64(filter.Bandpass), Name: "BP", Aliases: []string{"bandpass"}},
			{Value: float64(filter.Highpass), Name: "HP", Aliases: []string{"highpass"}},
		}).ShortName("filter_type").Default(float64(filter.Bandpass)).Build(),

		param.New(ParamFilterCutoff, "Filter Cutoff").
			ShortName("cutoff").
			Range(dsp.MinFrequency, dsp.MaxFrequency).
			Logarithmic().
			Default(dsp.DefaultFilterHz).
			Formatter(param.FrequencyFormatter, param.FrequencyParser).
			Build(),

		param.New(ParamStereoWidth, "Stereo Width").
			ShortName("width").
			Range(0, 2).
			Default(1).
			Formatter(param.PercentFormatter, param.PercentParser).
			Build(),

		param.Choice(ParamMovement, "Movement", []param.ChoiceOption{
			{Value: float64(looper.Forward), Name: "Forward", Aliases: []string{"fwd"}},
			{Value: float64(looper.Backwards), Name: "Backwards", Aliases: []string{"backward", "reverse"}},
			{Value: float64(looper.Pendulum), Name: "Pendulum"},
			{Value: float64(looper.Random), Name: "Random"},
			{Value: float64(looper.Drunk), Name: "Drunk"},
		}).ShortName("movement").PerChannel().Build(),

		param.Choice(ParamDirection, "Direction", []param.ChoiceOption{
			{Value: float64(looper.DirectionForward), Name: "Forward", Aliases: []string{"fwd"}},
			{Value: float64(looper.DirectionBackwards), Name: "Backwards", Aliases: []string{"backward", "reverse"}},
		}).ShortName("direction").PerChannel().Build(),

		param.Choice(ParamTriggerMode, "Trigger Mode", []param.ChoiceOption{
			{Value: float64(looper.Gate), Name: "Gate"},
			{Value: float64(looper.Trigger), Name: "Trigger", Aliases: []string{"oneshot"}},
			{Value: float64(looper.Loop), Name: "Loop"},
		}).ShortName("trigger").Default(float64(looper.Loop)).Build(),

		seconds(ParamLoopStart, "Loop Start", "loop_start", 0),
		seconds(ParamLoopLength, "Loop Length", "loop_length", dsp.DefaultBufferSeconds),
		rate(ParamReadRate, "Read Rate", "read_rate"),
		rate(ParamWriteRate, "Write Rate", "write_rate"),

		param.New(ParamFreeze, "Freeze").
			ShortName("freeze").
			Range(0, 1).
			Formatter(param.PercentFormatter, param.PercentParser).
			PerChannel().
			Build(),

		param.New(ParamRateSlew, "Rate Slew").
			ShortName("rate_slew").
			Range(0, 5).
			Formatter(param.SecondsFormatter, param.SecondsParser).
			Build(),

		param.New(ParamFadeSamples, "Fade Samples").
			ShortName("fade").
			Range(1, dsp.SampleRate48k/10).
			Default(dsp.SampleRate48k*dsp.DefaultFadeSeconds).
			Formatter(param.SamplesFormatter, nil).
			Build(),

		param.New(ParamLoopSync, "Loop Sync").
			ShortName("loop_sync").
			Toggle().
			Build(),
	)
	if err != nil {
		// The table above is fixed, so this is a programming error.
		panic(err)
	}
	return r
}

// SetControl sets the control with the given ID to a plain value, as
// described by NewControlRegistry. Per-channel controls go to ch, the rest
// ignore it. Loop start and length are given in seconds.
func (s *StereoLooper) SetControl(id uint32, ch Channel, value float64) error {
	if s.sampleRate == 0 {
		return ErrNotInitialized
	}

	switch id {
	case ParamInputGain:
		s.SetInputGain(float32(value))
	case ParamOutputGain:
		s.SetOutputGain(float32(value))
	case ParamDryWet:
		s.SetDryWetMix(float32(value))
	case ParamFeedback:
		s.SetFeedback(float32(value))
	case ParamFeedbackLevel:
		s.SetFeedbackLevel(float32(value))
	case ParamFilterLevel:
		s.SetFilterLevel(float32(value))
	case ParamFilterType:
		s.SetFilterType(filter.Type(choice(value, int(filter.Highpass))))
	case ParamFilterCutoff:
		s.SetFilterValue(value)
	case ParamStereoWidth:
		s.SetStereoWidth(float32(value))
	case ParamMovement:
		s.SetMovement(ch, looper.Movement(choice(value, int(looper.Drunk))))
	case ParamDirection:
		s.SetDirection(ch, looper.Direction(choice(value, int(looper.DirectionBackwards))))
	case ParamTriggerMode:
		s.SetTriggerMode(looper.TriggerMode(choice(value, int(looper.Loop))))
	case ParamLoopStart:
		s.SetLoopStart(ch, s.samples(value))
	case ParamLoopLength:
		s.SetLoopLength(ch, s.samples(value))
	case ParamReadRate:
		s.SetReadRate(ch, value)
	case ParamWriteRate:
		s.SetWriteRate(ch, value)
	case ParamFreeze:
		s.SetFreeze(ch, float32(value))
	case ParamRateSlew:
		s.SetRateSlew(value)
	case ParamFadeSamples:
		s.SetSamplesToFade(int(value))
	case ParamLoopSync:
		s.SetLoopSync(value >= 0.5)
	default:
		return fmt.Errorf("control %d: %w", id, ErrUnknownControl)
	}
	return nil
}

// choice rounds a list value to the nearest index in [0, last].
func choice(value float64, last int) int {
	return dsp.ClampInt(int(math.Round(value)), 0, last)
}

func (s *StereoLooper) samples(seconds float64) int {
	return int(math.Round(seconds * float64(s.sampleRate)))
}

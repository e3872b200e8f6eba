package live

import (
	"math"

	"github.com/justyntemme/wreath/pkg/dsp"
	"github.com/justyntemme/wreath/pkg/looper"
	"github.com/justyntemme/wreath/pkg/stereo"
)

const (
	rateStep = 0.1
	ctrlC    = 3
)

// Help lists the key bindings.
const Help = "space start  b stop buffering  f freeze  r retrigger  g gate  x reset  c clear\r\n" +
	"d direction  m movement  t trigger mode  -/= loop length  [/] read rate  q quit\r\n"

// Keys turns key presses into commands. It tracks the values that keys step
// through, so it lives on the control goroutine only.
type Keys struct {
	lengthStep int
	movement   looper.Movement
	trigger    looper.TriggerMode
	rate       float64
	gate       bool
}

// NewKeys starts from the configuration the engine was initialized with.
// Loop length keys move by a tenth of a second.
func NewKeys(sampleRate int, conf stereo.Config) *Keys {
	return &Keys{
		lengthStep: max(sampleRate/10, 1),
		movement:   conf.Movement,
		trigger:    conf.TriggerMode,
		rate:       conf.Rate,
	}
}

// Handle returns the commands for key and whether it quits.
func (k *Keys) Handle(key byte) (cmds []stereo.Command, quit bool) {
	switch key {
	case 'q', ctrlC:
		return nil, true
	case ' ':
		return one(stereo.Command{Kind: stereo.CommandStart}), false
	case 'b':
		return one(stereo.Command{Kind: stereo.CommandStopBuffering}), false
	case 'f':
		return one(stereo.Command{Kind: stereo.CommandToggleFreeze}), false
	case 'r':
		return one(stereo.Command{Kind: stereo.CommandRetrigger}), false
	case 'x':
		return one(stereo.Command{Kind: stereo.CommandReset}), false
	case 'c':
		return one(stereo.Command{Kind: stereo.CommandClear}), false
	case 'd':
		return one(stereo.Command{Kind: stereo.CommandToggleDirection, Channel: stereo.Both}), false
	case 'g':
		k.gate = !k.gate
		v := 0.0
		if k.gate {
			v = 1
		}
		return one(stereo.Command{Kind: stereo.CommandGate, Value: v}), false
	case 'm':
		k.movement = (k.movement + 1) % (looper.Drunk + 1)
		return one(control(stereo.ParamMovement, float64(k.movement))), false
	case 't':
		k.trigger = (k.trigger + 1) % (looper.Loop + 1)
		return one(control(stereo.ParamTriggerMode, float64(k.trigger))), false
	case '-':
		return one(stereo.Command{Kind: stereo.CommandNudgeLoopLength, Channel: stereo.Both, Value: float64(-k.lengthStep)}), false
	case '=', '+':
		return one(stereo.Command{Kind: stereo.CommandNudgeLoopLength, Channel: stereo.Both, Value: float64(k.lengthStep)}), false
	case '[':
		return one(k.stepRate(-rateStep)), false
	case ']':
		return one(k.stepRate(rateStep)), false
	}
	return nil, false
}

func (k *Keys) stepRate(delta float64) stereo.Command {
	k.rate = dsp.Clamp(math.Round((k.rate+delta)*10)/10, dsp.MinRate, dsp.MaxRate)
	return control(stereo.ParamReadRate, k.rate)
}

func control(id uint32, value float64) stereo.Command {
	return stereo.Command{Kind: stereo.CommandSetControl, ID: id, Channel: stereo.Both, Value: value}
}

func one(c stereo.Command) []stereo.Command {
	return []stereo.Command{c}
}

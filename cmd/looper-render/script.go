package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/justyntemme/wreath/pkg/dsp"
	"github.com/justyntemme/wreath/pkg/framework/param"
	"github.com/justyntemme/wreath/pkg/looper"
	"github.com/justyntemme/wreath/pkg/stereo"
)

const defaultTailSeconds = 10

var errUnknownName = errors.New("unknown name")

// Script is the YAML automation file.
//
//	config:
//	  mode: cross
//	  movement: pendulum
//	buffer_seconds: 4
//	tail: 20
//	events:
//	  - {at: 4.5, control: start}
//	  - {at: 6, control: feedback, value: 70%}
//	  - {at: 8, control: read_rate, channel: right, value: 0.5x}
type Script struct {
	Config        ScriptConfig `yaml:"config"`
	BufferSeconds float64      `yaml:"buffer_seconds"`
	Tail          float64      `yaml:"tail"`
	Events        []Event      `yaml:"events"`
}

// ScriptConfig names the engine configuration applied at Init.
type ScriptConfig struct {
	Mode        string  `yaml:"mode"`
	TriggerMode string  `yaml:"trigger"`
	Movement    string  `yaml:"movement"`
	Direction   string  `yaml:"direction"`
	Rate        float64 `yaml:"rate"`
}

// Event is one scheduled control change or action. Value is parsed with the
// control's own display parser, so "70%", "250ms" and "highpass" all work.
type Event struct {
	At      float64 `yaml:"at"`
	Control string  `yaml:"control"`
	Channel string  `yaml:"channel"`
	Value   string  `yaml:"value"`
}

// timedCommand is an event resolved against the control registry.
type timedCommand struct {
	frame int
	cmd   stereo.Command
}

func defaultScript() *Script {
	return &Script{
		BufferSeconds: dsp.DefaultBufferSeconds,
		Tail:          defaultTailSeconds,
	}
}

func loadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return parseScript(data)
}

func parseScript(data []byte) (*Script, error) {
	s := defaultScript()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if s.BufferSeconds <= 0 {
		return nil, fmt.Errorf("buffer_seconds must be positive, got %g", s.BufferSeconds)
	}
	if s.Tail < 0 {
		return nil, fmt.Errorf("tail must not be negative, got %g", s.Tail)
	}
	return s, nil
}

// engineConfig resolves the names in the config section.
func (s *Script) engineConfig(registry *param.Registry) (stereo.Config, error) {
	conf := stereo.DefaultConfig()
	c := s.Config

	if c.Mode != "" {
		mode, err := parseMode(c.Mode)
		if err != nil {
			return conf, err
		}
		conf.Mode = mode
	}
	choices := []struct {
		name  string
		value string
		set   func(v float64)
	}{
		{"trigger", c.TriggerMode, func(v float64) { conf.TriggerMode = looper.TriggerMode(v) }},
		{"movement", c.Movement, func(v float64) { conf.Movement = looper.Movement(v) }},
		{"direction", c.Direction, func(v float64) { conf.Direction = looper.Direction(v) }},
	}
	for _, ch := range choices {
		if ch.value == "" {
			continue
		}
		p, _ := registry.Lookup(ch.name)
		v, err := p.ParsePlain(ch.value)
		if err != nil {
			return conf, fmt.Errorf("config %s: %w", ch.name, err)
		}
		ch.set(v)
	}
	if c.Rate != 0 {
		conf.Rate = dsp.Clamp(c.Rate, dsp.MinRate, dsp.MaxRate)
	}
	return conf, nil
}

func parseMode(name string) (stereo.Mode, error) {
	if m, ok := stereo.ParseMode(name); ok {
		return m, nil
	}
	return stereo.Mono, fmt.Errorf("mode %q: %w", name, errUnknownName)
}

func parseChannel(name string) (stereo.Channel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "both":
		return stereo.Both, nil
	case "left", "l":
		return stereo.Left, nil
	case "right", "r":
		return stereo.Right, nil
	}
	return stereo.Both, fmt.Errorf("channel %q: %w", name, errUnknownName)
}

// actions maps the script's action names to commands that take no value.
var actions = map[string]stereo.Command{
	"start":            {Kind: stereo.CommandStart},
	"stop_buffering":   {Kind: stereo.CommandStopBuffering},
	"reset":            {Kind: stereo.CommandReset},
	"clear":            {Kind: stereo.CommandClear},
	"retrigger":        {Kind: stereo.CommandRetrigger},
	"gate_on":          {Kind: stereo.CommandGate, Value: 1},
	"gate_off":         {Kind: stereo.CommandGate, Value: 0},
	"toggle_freeze":    {Kind: stereo.CommandToggleFreeze},
	"toggle_direction": {Kind: stereo.CommandToggleDirection},
}

// compile resolves every event into a command at its frame, in time order.
// Events at the same time keep their script order.
func (s *Script) compile(registry *param.Registry, sampleRate int) ([]timedCommand, error) {
	out := make([]timedCommand, 0, len(s.Events))
	for i, e := range s.Events {
		if e.At < 0 {
			return nil, fmt.Errorf("event %d: negative time %g", i, e.At)
		}
		cmd, err := resolve(registry, e)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		out = append(out, timedCommand{
			frame: int(e.At * float64(sampleRate)),
			cmd:   cmd,
		})
	}
	slices.SortStableFunc(out, func(a, b timedCommand) int {
		return a.frame - b.frame
	})
	return out, nil
}

func resolve(registry *param.Registry, e Event) (stereo.Command, error) {
	ch, err := parseChannel(e.Channel)
	if err != nil {
		return stereo.Command{}, err
	}
	name := strings.ToLower(strings.TrimSpace(e.Control))

	if cmd, ok := actions[name]; ok {
		cmd.Channel = ch
		return cmd, nil
	}
	switch name {
	case "nudge_loop_length", "offset_loopers":
		v, err := strconv.ParseFloat(strings.TrimSpace(e.Value), 64)
		if err != nil {
			return stereo.Command{}, fmt.Errorf("%s: %w", name, err)
		}
		kind := stereo.CommandNudgeLoopLength
		if name == "offset_loopers" {
			kind = stereo.CommandOffsetLoopers
		}
		return stereo.Command{Kind: kind, Channel: ch, Value: v}, nil
	}

	p, ok := registry.Lookup(name)
	if !ok {
		return stereo.Command{}, fmt.Errorf("control %q: %w", e.Control, errUnknownName)
	}
	if ch != stereo.Both && !p.Has(param.PerChannel) {
		return stereo.Command{}, fmt.Errorf("%s applies to both channels", p.Name)
	}
	v, err := p.ParsePlain(e.Value)
	if err != nil {
		// Lists also take their index.
		var numErr error
		if v, numErr = strconv.ParseFloat(strings.TrimSpace(e.Value), 64); numErr != nil {
			return stereo.Command{}, fmt.Errorf("%s: %w", p.Name, err)
		}
	}
	return stereo.Command{Kind: stereo.CommandSetControl, ID: p.ID, Channel: ch, Value: v}, nil
}

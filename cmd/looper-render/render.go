package main

import (
	"fmt"

	"github.com/justyntemme/wreath/internal/wavio"
	"github.com/justyntemme/wreath/pkg/framework/debug"
	"github.com/justyntemme/wreath/pkg/stereo"
)

const blockSize = 512

// render runs the input through a fresh looper: the warm-up in silence, then
// every input frame, then the tail in silence. Events fire before the frame
// they are scheduled on.
func render(input *wavio.Audio, script *Script, log *debug.Logger) (left, right []float32, err error) {
	registry := stereo.NewControlRegistry()
	conf, err := script.engineConfig(registry)
	if err != nil {
		return nil, nil, err
	}
	commands, err := script.compile(registry, input.SampleRate)
	if err != nil {
		return nil, nil, err
	}

	capacity := int(script.BufferSeconds * float64(input.SampleRate))
	s := &stereo.StereoLooper{}
	s.SetLogger(log.Named("stereo"))
	if err := s.Init(input.SampleRate, conf, stereo.NewMemory(capacity)); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize looper: %w", err)
	}
	for range s.StartupSamples() {
		s.Process(0, 0)
	}
	log.Debug("%s, %s trigger, %.1fs buffer", conf.Mode, conf.TriggerMode, script.BufferSeconds)

	total := input.Frames() + int(script.Tail*float64(input.SampleRate))
	inLeft := make([]float32, total)
	inRight := make([]float32, total)
	copy(inLeft, input.Left)
	copy(inRight, input.Right)
	left = make([]float32, total)
	right = make([]float32, total)

	next := 0
	for pos := 0; pos < total; {
		for next < len(commands) && commands[next].frame <= pos {
			if err := s.Execute(commands[next].cmd); err != nil {
				return nil, nil, fmt.Errorf("frame %d: %w", commands[next].frame, err)
			}
			log.Debug("%.3fs: %s, state %s", float64(pos)/float64(input.SampleRate), commands[next].cmd.Kind, s.GetState())
			next++
		}

		end := min(pos+blockSize, total)
		if next < len(commands) {
			end = min(end, commands[next].frame)
		}
		s.ProcessBuffer(inLeft[pos:end], inRight[pos:end], left[pos:end], right[pos:end])
		pos = end
	}
	if skipped := len(commands) - next; skipped > 0 {
		log.Warn("%d events after the end of the render were skipped", skipped)
	}
	return left, right, nil
}

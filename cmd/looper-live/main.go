// Command looper-live plays the stereo looper in real time and drives it from
// the keyboard.
//
// Usage:
//
//	looper-live                           record the default input device
//	looper-live -in loop.wav              loop a file instead of the input
//	looper-live -backend oto -in loop.wav playback only, no input device
//
// The terminal is put in raw mode while the looper runs; q or Ctrl-C quits.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/justyntemme/wreath/internal/live"
	"github.com/justyntemme/wreath/internal/wavio"
	"github.com/justyntemme/wreath/pkg/framework/debug"
	"github.com/justyntemme/wreath/pkg/stereo"
)

const (
	backendPortAudio = "portaudio"
	backendOto       = "oto"

	defaultSampleRate = 48000
)

var logger = debug.New(os.Stderr, "looper-live", debug.FlagLevel|debug.FlagPrefix)

// stopFunc stops an audio backend and releases its device.
type stopFunc func() error

func main() {
	if err := run(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run() error {
	backend := flag.String("backend", backendPortAudio, "Audio backend: portaudio or oto")
	inputPath := flag.String("in", "", "WAV file to loop instead of the input device")
	bufferSeconds := flag.Float64("buffer", 10, "Looper memory in seconds")
	sampleRate := flag.Int("rate", defaultSampleRate, "Sample rate when no file is given")
	frames := flag.Int("frames", live.DefaultBlockFrames, "Frames per audio callback")
	mode := flag.String("mode", "mono", "Channel mode: mono, dual or cross")
	logLevel := flag.String("log", "info", "Log level: debug, info, warn, error or off")
	verbose := flag.Bool("v", false, "Verbose output (same as -log debug)")
	flag.Parse()

	level, err := debug.ParseLevel(*logLevel)
	if err != nil {
		return err
	}
	if *verbose {
		level = debug.LogLevelDebug
	}
	logger.SetLevel(level)

	var input *wavio.Audio
	if *inputPath != "" {
		input, err = wavio.Read(*inputPath)
		if err != nil {
			return err
		}
		*sampleRate = input.SampleRate
		logger.Debug("looping %s: %d Hz, %d frames", *inputPath, input.SampleRate, input.Frames())
	}

	conf := stereo.DefaultConfig()
	m, ok := stereo.ParseMode(*mode)
	if !ok {
		return fmt.Errorf("unknown mode %q", *mode)
	}
	conf.Mode = m

	engine, err := live.NewEngine(*sampleRate, conf, *bufferSeconds, logger.Named("stereo"))
	if err != nil {
		return err
	}

	var stop stopFunc
	switch *backend {
	case backendPortAudio:
		stop, err = startPortAudio(engine, input, *sampleRate, *frames)
	case backendOto:
		if input == nil {
			return errors.New("the oto backend has no input device; use -in")
		}
		stop, err = startOto(engine, input, *sampleRate, *frames)
	default:
		return fmt.Errorf("unknown backend %q", *backend)
	}
	if err != nil {
		return err
	}
	logger.Info("%s backend running at %d Hz, %d frames per block", *backend, *sampleRate, *frames)

	loopErr := controlLoop(engine, live.NewKeys(*sampleRate, conf))
	if err := stop(); err != nil {
		logger.Warn("failed to stop audio: %v", err)
	}
	logger.Info("%s", engine.Meter().Report())
	if n := engine.Overruns(); n > 0 {
		logger.Warn("%d commands dropped", n)
	}
	return loopErr
}

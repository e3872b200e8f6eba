// Command looper-render runs a WAV file through the stereo looper offline and
// writes the result.
//
// Usage:
//
//	looper-render in.wav out.wav
//	looper-render -script freeze.yaml -bits 24 in.wav out.wav
//	looper-render -buffer 4 -v in.wav out.wav
//
// The script schedules control changes and actions at times measured from the
// first input frame. Without a script the looper records the input and, once
// the buffer is full, plays it back with the default controls.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/justyntemme/wreath/internal/wavio"
	"github.com/justyntemme/wreath/pkg/dsp/analysis"
	"github.com/justyntemme/wreath/pkg/framework/debug"
)

const (
	minRequiredArgs = 2
	defaultBits     = wavio.BitDepth16
)

var logger = debug.New(os.Stderr, "looper-render", debug.FlagLevel|debug.FlagPrefix)

func main() {
	if err := run(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run() error {
	scriptPath := flag.String("script", "", "YAML automation script")
	bufferSeconds := flag.Float64("buffer", 0, "Looper memory in seconds (overrides the script)")
	bits := flag.Int("bits", defaultBits, "Output bit depth: 16 or 24")
	logLevel := flag.String("log", "info", "Log level: debug, info, warn, error or off")
	verbose := flag.Bool("v", false, "Verbose output (same as -log debug)")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		return errors.New("insufficient arguments")
	}
	if *bits != wavio.BitDepth16 && *bits != wavio.BitDepth24 {
		return fmt.Errorf("unsupported bit depth %d", *bits)
	}
	level, err := debug.ParseLevel(*logLevel)
	if err != nil {
		return err
	}
	if *verbose {
		level = debug.LogLevelDebug
	}
	logger.SetLevel(level)

	script := defaultScript()
	if *scriptPath != "" {
		script, err = loadScript(*scriptPath)
		if err != nil {
			return err
		}
	}
	if *bufferSeconds > 0 {
		script.BufferSeconds = *bufferSeconds
	}

	inputPath, outputPath := args[0], args[1]
	input, err := wavio.Read(inputPath)
	if err != nil {
		return err
	}
	logger.Debug("input: %d Hz, %d channels, %d-bit, %d frames",
		input.SampleRate, input.Channels, input.BitDepth, input.Frames())

	start := time.Now()
	left, right, err := render(input, script, logger)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := wavio.Write(outputPath, left, right, input.SampleRate, *bits); err != nil {
		return err
	}
	logger.WarnBuffer(left, "left")
	logger.WarnBuffer(right, "right")

	fmt.Printf("Rendered %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  %d frames at %d Hz (%d-bit)\n", len(left), input.SampleRate, *bits)
	report := analysis.Measure(left, right)
	for _, ch := range []struct {
		name  string
		level analysis.Level
	}{{"left", report.Left}, {"right", report.Right}} {
		fmt.Printf("  %-5s peak %.3f (%.1f dBFS), RMS %.3f (%.1f dBFS)\n",
			ch.name, ch.level.Peak, ch.level.PeakDB(), ch.level.RMS, ch.level.RMSDB())
	}
	fmt.Printf("  Stereo: correlation %+.2f (%s), width %.2f, balance %+.1f dB\n",
		report.Field.Correlation, report.Field.Phase(), report.Field.Width, report.Field.Balance)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(len(left))/float64(input.SampleRate)/elapsed.Seconds())
	return nil
}

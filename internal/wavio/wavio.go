// Package wavio reads and writes the stereo float32 material the looper
// commands work on. Mono files are duplicated to both channels; files with
// more than two channels keep the first two.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/tphakala/simd/f32"
)

const (
	// Sample formats Encode accepts.
	BitDepth16 = 16
	BitDepth24 = 24

	maxInt16 = 32767.0
	maxInt24 = 8388607.0

	wavFormatPCM   = 1
	stereoChannels = 2
)

var (
	// ErrInvalidWAV is returned when the input is not a RIFF WAVE file.
	ErrInvalidWAV = errors.New("invalid WAV file")
	// ErrBitDepth is returned by Encode for a bit depth other than 16 or 24.
	ErrBitDepth = errors.New("unsupported bit depth")
	// ErrLengthMismatch is returned by Encode when the channels differ in length.
	ErrLengthMismatch = errors.New("channel length mismatch")
)

// Audio is a decoded file split into planar channels scaled to [-1, 1).
type Audio struct {
	Left       []float32
	Right      []float32
	SampleRate int
	Channels   int // channel count of the source file
	BitDepth   int
}

// Frames returns the number of sample frames.
func (a *Audio) Frames() int {
	return len(a.Left)
}

// Read opens and decodes a WAV file.
func Read(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	a, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// Decode reads a whole WAV stream into memory.
func Decode(r io.ReadSeeker) (*Audio, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, ErrInvalidWAV
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode PCM: %w", err)
	}
	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("%d channels: %w", channels, ErrInvalidWAV)
	}

	samples := buf.AsFloat32Buffer().Data
	frames := len(samples) / channels
	a := &Audio{
		Left:       make([]float32, frames),
		Right:      make([]float32, frames),
		SampleRate: buf.Format.SampleRate,
		Channels:   channels,
		BitDepth:   int(decoder.BitDepth),
	}
	for i := range frames {
		frame := samples[i*channels:]
		a.Left[i] = frame[0]
		if channels > 1 {
			a.Right[i] = frame[1]
		} else {
			a.Right[i] = frame[0]
		}
	}
	return a, nil
}

// Write encodes a stereo pair as PCM into a new file at path.
func Write(path string, left, right []float32, sampleRate, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Encode(f, left, right, sampleRate, bitDepth); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Encode writes a stereo pair as interleaved PCM. Samples outside [-1, 1]
// are clipped.
func Encode(w io.WriteSeeker, left, right []float32, sampleRate, bitDepth int) error {
	if len(left) != len(right) {
		return fmt.Errorf("%d vs %d frames: %w", len(left), len(right), ErrLengthMismatch)
	}
	maxVal, err := maxValue(bitDepth)
	if err != nil {
		return err
	}

	interleaved := make([]float32, stereoChannels*len(left))
	f32.Interleave2(interleaved, left, right)
	f32.Scale(interleaved, interleaved, float32(maxVal))

	data := make([]int, len(interleaved))
	for i, v := range interleaved {
		data[i] = int(math.Round(math.Max(-maxVal-1, math.Min(maxVal, float64(v)))))
	}

	encoder := wav.NewEncoder(w, sampleRate, bitDepth, stereoChannels, wavFormatPCM)
	err = encoder.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: stereoChannels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	})
	if err != nil {
		_ = encoder.Close()
		return fmt.Errorf("failed to write samples: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}
	return nil
}

func maxValue(bitDepth int) (float64, error) {
	switch bitDepth {
	case BitDepth16:
		return maxInt16, nil
	case BitDepth24:
		return maxInt24, nil
	default:
		return 0, fmt.Errorf("%d bits: %w", bitDepth, ErrBitDepth)
	}
}

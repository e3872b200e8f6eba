package main

import (
	"errors"
	"fmt"

	pa "github.com/gordonklaus/portaudio"

	"github.com/justyntemme/wreath/internal/live"
	"github.com/justyntemme/wreath/internal/wavio"
)

const stereoChannels = 2

// startPortAudio opens the default devices. With an input file the stream is
// output only and the file is looped into the engine; otherwise the default
// input device is recorded.
func startPortAudio(engine *live.Engine, input *wavio.Audio, sampleRate, frames int) (stopFunc, error) {
	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("unable to set up portaudio: %w", err)
	}

	var stream *pa.Stream
	var err error
	if input != nil {
		src := live.NewSource(engine, input.Left, input.Right, frames)
		stream, err = pa.OpenDefaultStream(0, stereoChannels, float64(sampleRate), frames,
			func(out [][]float32) {
				src.Render(out[0], out[1])
			})
	} else {
		stream, err = pa.OpenDefaultStream(stereoChannels, stereoChannels, float64(sampleRate), frames,
			func(in, out [][]float32) {
				engine.Process(in[0], in[1], out[0], out[1])
			})
	}
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to open stream: %w", err), pa.Terminate())
	}
	if err := stream.Start(); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to start stream: %w", err), stream.Close(), pa.Terminate())
	}
	logger.Debug("%s", pa.VersionText())

	return func() error {
		return errors.Join(stream.Stop(), stream.Close(), pa.Terminate())
	}, nil
}

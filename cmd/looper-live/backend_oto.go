package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/justyntemme/wreath/internal/live"
	"github.com/justyntemme/wreath/internal/wavio"
)

// startOto plays the looped input file through oto. oto has no capture side,
// so there is always an input file.
func startOto(engine *live.Engine, input *wavio.Audio, sampleRate, frames int) (stopFunc, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: stereoChannels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(frames) * time.Second / time.Duration(sampleRate),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to set up oto: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(live.NewSource(engine, input.Left, input.Right, frames))
	player.Play()

	return func() error {
		return errors.Join(player.Close(), ctx.Err())
	}, nil
}

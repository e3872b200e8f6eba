package live

import (
	"encoding/binary"
	"math"

	"github.com/tphakala/simd/f32"
)

const (
	bytesPerSample = 4
	bytesPerFrame  = 2 * bytesPerSample

	// DefaultBlockFrames is the largest block Source runs through the engine
	// at once.
	DefaultBlockFrames = 512
)

// Source pulls audio through the engine for a player that reads bytes. It
// loops its input (silence when there is none) and serves the output as
// interleaved float32 little-endian stereo.
type Source struct {
	engine *Engine
	left   []float32
	right  []float32
	pos    int

	inLeft, inRight   []float32
	outLeft, outRight []float32
	interleaved       []float32
}

// NewSource loops left and right, which must be the same length, as the
// engine input.
func NewSource(engine *Engine, left, right []float32, blockFrames int) *Source {
	blockFrames = max(blockFrames, 1)
	return &Source{
		engine:      engine,
		left:        left,
		right:       right[:len(left)],
		inLeft:      make([]float32, blockFrames),
		inRight:     make([]float32, blockFrames),
		outLeft:     make([]float32, blockFrames),
		outRight:    make([]float32, blockFrames),
		interleaved: make([]float32, 2*blockFrames),
	}
}

// Read fills p with whole frames. It never fails.
func (s *Source) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	for done := 0; done < frames; {
		n := min(frames-done, len(s.outLeft))
		s.Render(s.outLeft[:n], s.outRight[:n])

		inter := s.interleaved[:2*n]
		f32.Interleave2(inter, s.outLeft[:n], s.outRight[:n])
		out := p[done*bytesPerFrame:]
		for i, v := range inter {
			binary.LittleEndian.PutUint32(out[i*bytesPerSample:], math.Float32bits(v))
		}
		done += n
	}
	return frames * bytesPerFrame, nil
}

// Render runs the next len(outLeft) frames of input through the engine into
// planar outputs.
func (s *Source) Render(outLeft, outRight []float32) {
	for done := 0; done < len(outLeft); {
		n := min(len(outLeft)-done, len(s.inLeft))
		s.fill(n)
		s.engine.Process(s.inLeft[:n], s.inRight[:n], outLeft[done:done+n], outRight[done:done+n])
		done += n
	}
}

func (s *Source) fill(n int) {
	if len(s.left) == 0 {
		clear(s.inLeft[:n])
		clear(s.inRight[:n])
		return
	}
	for i := range n {
		s.inLeft[i] = s.left[s.pos]
		s.inRight[i] = s.right[s.pos]
		s.pos++
		if s.pos == len(s.left) {
			s.pos = 0
		}
	}
}

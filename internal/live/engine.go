// Package live runs a StereoLooper behind a real-time audio callback. A
// control goroutine turns key presses into commands; the audio goroutine
// drains them between blocks and publishes a status snapshot for display.
package live

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/justyntemme/wreath/pkg/framework/debug"
	"github.com/justyntemme/wreath/pkg/looper"
	"github.com/justyntemme/wreath/pkg/stereo"
)

// QueueCapacity bounds the commands waiting for the next audio block.
const QueueCapacity = 256

// Status is what the audio goroutine last published.
type Status struct {
	State      stereo.State
	Movement   looper.Movement
	LoopLength [2]int
	ReadPos    [2]float64
	ReadRate   float64
	Freeze     float32
	SampleRate int
}

func (s Status) String() string {
	sec := func(samples float64) float64 {
		if s.SampleRate == 0 {
			return 0
		}
		return samples / float64(s.SampleRate)
	}
	return fmt.Sprintf("%-9s %-9s L %5.2fs @ %5.2fs  R %5.2fs @ %5.2fs  rate %.2fx  freeze %3.0f%%",
		s.State, s.Movement,
		sec(float64(s.LoopLength[stereo.Left])), sec(s.ReadPos[stereo.Left]),
		sec(float64(s.LoopLength[stereo.Right])), sec(s.ReadPos[stereo.Right]),
		s.ReadRate, s.Freeze*100)
}

// Engine owns the looper. Process belongs to the audio goroutine; Send,
// Status and the meter are safe from any goroutine.
type Engine struct {
	looper *stereo.StereoLooper
	queue  *stereo.CommandQueue
	meter  *debug.LoadMeter
	failed atomic.Uint64

	state      atomic.Int32
	movement   atomic.Int32
	loopLength [2]atomic.Int64
	readPos    [2]atomic.Uint64
	readRate   atomic.Uint64
	freeze     atomic.Uint32
}

// NewEngine allocates bufferSeconds of looper memory at sampleRate.
func NewEngine(sampleRate int, conf stereo.Config, bufferSeconds float64, log *debug.Logger) (*Engine, error) {
	if bufferSeconds <= 0 {
		return nil, fmt.Errorf("buffer must be positive, got %gs", bufferSeconds)
	}
	s := &stereo.StereoLooper{}
	if log != nil {
		s.SetLogger(log)
	}
	mem := stereo.NewMemory(int(bufferSeconds * float64(sampleRate)))
	if err := s.Init(sampleRate, conf, mem); err != nil {
		return nil, fmt.Errorf("failed to initialize looper: %w", err)
	}
	e := &Engine{
		looper: s,
		queue:  stereo.NewCommandQueue(QueueCapacity),
		meter:  debug.NewLoadMeter(float64(sampleRate)),
	}
	e.publish()
	return e, nil
}

// Send queues a command for the next block.
func (e *Engine) Send(c stereo.Command) error {
	return e.queue.Push(c)
}

// Process applies queued commands then runs one block of planar audio.
func (e *Engine) Process(inLeft, inRight, outLeft, outRight []float32) {
	start := e.meter.Begin()
	if _, err := e.looper.Apply(e.queue); err != nil {
		e.failed.Add(1)
	}
	e.looper.ProcessBuffer(inLeft, inRight, outLeft, outRight)
	e.publish()
	e.meter.End(start, len(inLeft))
}

func (e *Engine) publish() {
	s := e.looper
	e.state.Store(int32(s.GetState()))
	e.movement.Store(int32(s.GetMovement(stereo.Left)))
	for ch := range e.loopLength {
		e.loopLength[ch].Store(int64(s.GetLoopLength(stereo.Channel(ch))))
		e.readPos[ch].Store(math.Float64bits(s.GetReadPos(stereo.Channel(ch))))
	}
	e.readRate.Store(math.Float64bits(s.GetReadRate(stereo.Left)))
	e.freeze.Store(math.Float32bits(s.GetFreeze()))
}

// Status returns the last published snapshot.
func (e *Engine) Status() Status {
	st := Status{
		State:      stereo.State(e.state.Load()),
		Movement:   looper.Movement(e.movement.Load()),
		ReadRate:   math.Float64frombits(e.readRate.Load()),
		Freeze:     math.Float32frombits(e.freeze.Load()),
		SampleRate: e.looper.GetSampleRate(),
	}
	for ch := range st.LoopLength {
		st.LoopLength[ch] = int(e.loopLength[ch].Load())
		st.ReadPos[ch] = math.Float64frombits(e.readPos[ch].Load())
	}
	return st
}

// Meter reports the audio callback load.
func (e *Engine) Meter() *debug.LoadMeter {
	return e.meter
}

// Failed returns how many blocks had a command that could not be applied.
func (e *Engine) Failed() uint64 {
	return e.failed.Load()
}

// Overruns returns how many commands were dropped because the queue was full.
func (e *Engine) Overruns() uint64 {
	return e.queue.Overruns()
}

package live

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/wreath/pkg/framework/debug"
	"github.com/justyntemme/wreath/pkg/looper"
	"github.com/justyntemme/wreath/pkg/stereo"
)

const testRate = 1000

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(testRate, stereo.DefaultConfig(), 0.2, debug.New(io.Discard, "live", 0))
	require.NoError(t, err)
	return e
}

// runFrames pushes n frames of a constant through the engine in blocks of 64.
func runFrames(e *Engine, n int) {
	in := make([]float32, 64)
	for i := range in {
		in[i] = 0.25
	}
	outL := make([]float32, 64)
	outR := make([]float32, 64)
	for n > 0 {
		b := min(n, len(in))
		e.Process(in[:b], in[:b], outL[:b], outR[:b])
		n -= b
	}
}

func ready(t *testing.T) *Engine {
	t.Helper()
	e := newEngine(t)
	runFrames(e, testRate+1+200)
	require.Equal(t, stereo.Ready, e.Status().State)
	return e
}

func TestNewEngine(t *testing.T) {
	_, err := NewEngine(testRate, stereo.DefaultConfig(), 0, nil)
	assert.Error(t, err)

	_, err = NewEngine(0, stereo.DefaultConfig(), 1, nil)
	assert.ErrorIs(t, err, looper.ErrInvalidSampleRate)

	e := newEngine(t)
	st := e.Status()
	assert.Equal(t, stereo.Startup, st.State)
	assert.Equal(t, testRate, st.SampleRate)
	assert.Equal(t, 1.0, st.ReadRate)
}

func TestEngineCommands(t *testing.T) {
	e := ready(t)
	assert.Equal(t, [2]int{200, 200}, e.Status().LoopLength)

	require.NoError(t, e.Send(stereo.Command{Kind: stereo.CommandStart}))
	require.NoError(t, e.Send(control(stereo.ParamMovement, float64(looper.Pendulum))))
	runFrames(e, 10)

	st := e.Status()
	assert.Equal(t, stereo.Recording, st.State)
	assert.Equal(t, looper.Pendulum, st.Movement)
	assert.Zero(t, e.Failed())

	require.NoError(t, e.Send(stereo.Command{Kind: stereo.CommandNudgeLoopLength, Channel: stereo.Both, Value: -100}))
	runFrames(e, 1)
	assert.Equal(t, [2]int{100, 100}, e.Status().LoopLength)

	require.NoError(t, e.Send(control(99, 1)))
	runFrames(e, 1)
	assert.Equal(t, uint64(1), e.Failed())
}

func TestEngineOverruns(t *testing.T) {
	e := newEngine(t)
	for range QueueCapacity {
		require.NoError(t, e.Send(stereo.Command{Kind: stereo.CommandClear}))
	}
	assert.ErrorIs(t, e.Send(stereo.Command{Kind: stereo.CommandClear}), stereo.ErrQueueFull)
	assert.Equal(t, uint64(1), e.Overruns())

	runFrames(e, 1)
	assert.NoError(t, e.Send(stereo.Command{Kind: stereo.CommandClear}))
}

func TestEngineMeter(t *testing.T) {
	e := newEngine(t)
	runFrames(e, 640)
	assert.Equal(t, uint64(10), e.Meter().Calls())
	assert.GreaterOrEqual(t, e.Meter().Load(), 0.0)
}

func TestStatusString(t *testing.T) {
	st := Status{
		State:      stereo.Frozen,
		Movement:   looper.Drunk,
		LoopLength: [2]int{48000, 24000},
		ReadPos:    [2]float64{12000, 0},
		ReadRate:   0.5,
		Freeze:     1,
		SampleRate: 48000,
	}
	s := st.String()
	for _, want := range []string{"Frozen", "Drunk", "L  1.00s @  0.25s", "R  0.50s", "rate 0.50x", "freeze 100%"} {
		assert.True(t, strings.Contains(s, want), "%q missing %q", s, want)
	}

	assert.NotPanics(t, func() { _ = Status{}.String() })
}

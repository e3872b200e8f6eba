package stereo

import (
	"bytes"
	"io"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/wreath/pkg/dsp"
	"github.com/justyntemme/wreath/pkg/dsp/filter"
	"github.com/justyntemme/wreath/pkg/framework/debug"
	"github.com/justyntemme/wreath/pkg/looper"
)

const testRate = 1000

func newStereo(t testing.TB, conf Config, capacity int) (*StereoLooper, Memory) {
	t.Helper()
	s := &StereoLooper{}
	s.SetLogger(debug.New(io.Discard, "stereo", 0))
	mem := NewMemory(capacity)
	require.NoError(t, s.Init(testRate, conf, mem))
	return s, mem
}

func skipStartup(t testing.TB, s *StereoLooper) {
	t.Helper()
	for i := 0; i < s.StartupSamples(); i++ {
		s.Process(1, 1)
	}
	require.Equal(t, Buffering, s.GetState())
}

// fill records until the memory is full and the looper is Ready.
func fill(t testing.TB, s *StereoLooper, left, right float32) {
	t.Helper()
	skipStartup(t, s)
	for s.IsBuffering() {
		s.Process(left, right)
	}
	require.True(t, s.IsReady())
}

func running(t testing.TB, conf Config, capacity int) (*StereoLooper, Memory) {
	t.Helper()
	s, mem := newStereo(t, conf, capacity)
	fill(t, s, 0.25, 0.25)
	s.Start()
	require.True(t, s.IsRecording())
	return s, mem
}

func dualConfig() Config {
	conf := DefaultConfig()
	conf.Mode = Dual
	return conf
}

func TestInitErrors(t *testing.T) {
	s := &StereoLooper{}
	err := s.Init(0, DefaultConfig(), NewMemory(100))
	assert.ErrorIs(t, err, looper.ErrInvalidSampleRate)

	mem := NewMemory(100)
	mem.Right = make([]float32, 50)
	mem.RightFrozen = make([]float32, 50)
	err = s.Init(testRate, DefaultConfig(), mem)
	assert.ErrorIs(t, err, looper.ErrBufferMismatch)

	err = (&StereoLooper{}).SetControl(ParamFeedback, Both, 0.5)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "Frozen", Frozen.String())
	assert.Equal(t, "Cross", Cross.String())
	assert.Equal(t, "Both", Both.String())
	assert.Equal(t, "Flanger", NoteModeFlanger.String())
	assert.Equal(t, "Unknown", State(9).String())

	m, ok := ParseMode(" dual ")
	assert.True(t, ok)
	assert.Equal(t, Dual, m)
	_, ok = ParseMode("quad")
	assert.False(t, ok)
}

func TestStartupIsSilent(t *testing.T) {
	s, _ := newStereo(t, DefaultConfig(), 200)
	for i := 0; i < s.StartupSamples()-1; i++ {
		l, r := s.Process(1, 1)
		require.Zero(t, l)
		require.Zero(t, r)
	}
	assert.True(t, s.IsStartingUp())

	l, r := s.Process(1, 1)
	assert.Zero(t, l)
	assert.Zero(t, r)
	assert.True(t, s.IsBuffering())
}

func TestBufferingPassesThrough(t *testing.T) {
	s, mem := newStereo(t, DefaultConfig(), 200)
	skipStartup(t, s)

	l, r := s.Process(0.5, -0.5)
	assert.Greater(t, l, float32(0))
	assert.Equal(t, l, -r)

	for s.IsBuffering() {
		s.Process(0.5, -0.5)
	}
	assert.True(t, s.IsReady())
	assert.Equal(t, 200, s.GetBufferSamples(Left))
	assert.Equal(t, 200, s.GetBufferSamples(Right))
	assert.Equal(t, 200, s.GetLoopLength(Left))
	assert.Equal(t, dsp.SoftLimit(0.5), mem.Left[0])
	assert.Equal(t, dsp.SoftLimit(-0.5), mem.RightFrozen[199])
}

func TestStopBufferingEarly(t *testing.T) {
	s, _ := newStereo(t, DefaultConfig(), 200)
	s.StopBuffering()
	assert.False(t, s.requested(requestStopBuffering), "ignored outside buffering")

	skipStartup(t, s)
	for i := 0; i < 100; i++ {
		s.Process(0.1, 0.1)
	}
	s.StopBuffering()
	s.Process(0.1, 0.1)

	assert.True(t, s.IsReady())
	assert.Equal(t, 101, s.GetBufferSamples(Left))
	assert.Equal(t, 101, s.GetLoopLength(Right))
}

func TestReadyMirrorsPending(t *testing.T) {
	s, _ := newStereo(t, DefaultConfig(), 200)
	fill(t, s, 0.1, 0.1)

	s.SetReadRate(Both, 2)
	s.SetLoopLength(Both, 100)
	s.Process(0, 0)

	for i := range s.next {
		assert.Equal(t, 1.0, s.next[i].readRate)
		assert.Equal(t, 200, s.next[i].loopLength)
		assert.Zero(t, s.next[i].freeze)
	}
	assert.Equal(t, 200, s.GetLoopLength(Left))
}

func TestSetDirectionWhileReady(t *testing.T) {
	s, _ := newStereo(t, DefaultConfig(), 200)
	fill(t, s, 0.1, 0.1)

	s.SetDirection(Both, looper.DirectionBackwards)
	assert.Equal(t, 199.0, s.GetReadPos(Left))
	assert.Equal(t, 199.0, s.GetReadPos(Right))

	s.Start()
	s.Process(0, 0)
	assert.Equal(t, 198.0, s.GetReadPos(Left))
	assert.False(t, s.IsGoingForward(Right))
}

func TestToggleDirection(t *testing.T) {
	tests := []struct {
		name string
		conf Config
		ch   Channel
		want [2]looper.Direction
	}{
		{"mono both", DefaultConfig(), Both, [2]looper.Direction{looper.DirectionBackwards, looper.DirectionBackwards}},
		{"mono one side", DefaultConfig(), Right, [2]looper.Direction{looper.DirectionBackwards, looper.DirectionBackwards}},
		{"dual both", dualConfig(), Both, [2]looper.Direction{looper.DirectionBackwards, looper.DirectionBackwards}},
		{"dual one side", dualConfig(), Right, [2]looper.Direction{looper.DirectionForward, looper.DirectionBackwards}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newStereo(t, tt.conf, 200)
			fill(t, s, 0.1, 0.1)

			s.ToggleDirection(tt.ch)
			assert.Equal(t, tt.want, [2]looper.Direction{s.GetDirection(Left), s.GetDirection(Right)})

			s.ToggleDirection(tt.ch)
			assert.Equal(t, looper.DirectionForward, s.GetDirection(Left))
			assert.Equal(t, looper.DirectionForward, s.GetDirection(Right))
		})
	}
}

func TestFreezeProtectsBuffer(t *testing.T) {
	s, mem := newStereo(t, DefaultConfig(), 200)
	fill(t, s, 0.25, 0.25)
	snapshot := slices.Clone(mem.Left)

	s.Start()
	s.SetFreeze(Both, 1)
	assert.True(t, s.IsFrozen())
	for i := 0; i < 500; i++ {
		s.Process(0.9, 0.9)
	}
	assert.Equal(t, snapshot, mem.Left, "frozen writes leave the buffer alone")
	assert.Equal(t, float32(1), s.Looper(Left).GetFreeze())

	s.SetFreeze(Both, 0)
	assert.True(t, s.IsRecording())
	pos := int(s.GetWritePos(Left))
	s.Process(0.9, 0.9)
	assert.NotEqual(t, snapshot[pos], mem.Left[pos], "recording writes through again")
}

func TestFreezeArmedBeforeStart(t *testing.T) {
	s, _ := newStereo(t, DefaultConfig(), 200)
	fill(t, s, 0.25, 0.25)

	s.ToggleFreeze()
	s.Process(0, 0)
	assert.True(t, s.IsReady(), "arming does not start playback")

	s.Start()
	assert.True(t, s.IsFrozen())
	s.Process(0, 0)
	assert.Equal(t, float32(1), s.Looper(Right).GetFreeze())

	s.ToggleFreeze()
	assert.True(t, s.IsRecording())
}

func TestTriggerModeSwitch(t *testing.T) {
	s, _ := running(t, DefaultConfig(), 200)
	s.Process(0, 0)

	s.SetTriggerMode(looper.Gate)
	assert.Zero(t, s.GetDryLevel(), "gate mode mutes the dry signal at once")
	assert.True(t, s.requested(requestStart))
	s.Process(0, 0)
	assert.False(t, s.requested(requestStart), "both loopers confirmed the start")
	assert.Equal(t, looper.Gate, s.Looper(Left).GetTriggerMode())
	assert.Equal(t, looper.Gate, s.Looper(Right).GetTriggerMode())

	s.SetTriggerMode(looper.Trigger)
	assert.Equal(t, float32(1), s.GetDryLevel())
	assert.True(t, s.requested(requestStop))
	for i := 0; i < 50 && s.requested(requestStop); i++ {
		s.Process(0, 0)
	}
	assert.False(t, s.requested(requestStop))
	for i := 0; i < 20; i++ {
		s.Process(0, 0)
	}
	assert.False(t, s.Looper(Left).IsPlaying())
	assert.False(t, s.Looper(Right).IsLooping())
}

func TestGate(t *testing.T) {
	conf := DefaultConfig()
	conf.TriggerMode = looper.Gate
	s, _ := running(t, conf, 200)
	assert.True(t, s.IsGateMode())
	s.Process(0, 0)

	s.Gate(true)
	assert.True(t, s.requested(requestStart))
	s.Gate(false)
	assert.True(t, s.requested(requestStop))
	assert.False(t, s.requested(requestStart))

	s.SetTriggerMode(looper.Trigger)
	s.Gate(true)
	assert.True(t, s.requested(requestRetrigger))
}

func TestLoopLengthPerChannel(t *testing.T) {
	t.Run("dual keeps channels apart", func(t *testing.T) {
		s, _ := running(t, dualConfig(), 4000)
		s.SetLoopLength(Left, 1000)
		s.SetLoopLength(Right, 3000)
		s.SetLoopStart(Left, 10)
		s.SetLoopStart(Right, 20)
		s.Process(0, 0)

		assert.Equal(t, 1000, s.GetLoopLength(Left))
		assert.Equal(t, 3000, s.GetLoopLength(Right))
		assert.Equal(t, 10, s.GetLoopStart(Left))
		assert.Equal(t, 20, s.GetLoopStart(Right))
	})

	t.Run("mono links channels", func(t *testing.T) {
		s, _ := running(t, DefaultConfig(), 4000)
		s.SetLoopLength(Right, 1500)
		s.Process(0, 0)

		assert.Equal(t, 1500, s.GetLoopLength(Left))
		assert.Equal(t, 1500, s.GetLoopLength(Right))
	})

	t.Run("nudge", func(t *testing.T) {
		s, _ := running(t, DefaultConfig(), 4000)
		s.NudgeLoopLength(Both, -1000)
		s.Process(0, 0)
		assert.Equal(t, 3000, s.GetLoopLength(Left))
		assert.Equal(t, 3000, s.GetLoopLength(Right))
	})

	t.Run("mono nudge on one side moves both once", func(t *testing.T) {
		s, _ := running(t, DefaultConfig(), 4000)
		s.NudgeLoopLength(Left, -500)
		s.Process(0, 0)
		assert.Equal(t, 3500, s.GetLoopLength(Left))
		assert.Equal(t, 3500, s.GetLoopLength(Right))
	})

	t.Run("dual nudge", func(t *testing.T) {
		s, _ := running(t, dualConfig(), 4000)
		s.NudgeLoopLength(Right, -500)
		s.Process(0, 0)
		assert.Equal(t, 4000, s.GetLoopLength(Left))
		assert.Equal(t, 3500, s.GetLoopLength(Right))
	})
}

func TestNoteMode(t *testing.T) {
	s, _ := newStereo(t, DefaultConfig(), 200)
	tests := []struct {
		length int
		want   NoteMode
	}{
		{10, NoteModeNote},
		{NoteMaxSamples, NoteModeNote},
		{NoteMaxSamples + 1, NoteModeFlanger},
		{FlangerMaxSamples, NoteModeFlanger},
		{FlangerMaxSamples + 1, NoteModeNone},
	}
	for _, tt := range tests {
		s.SetLoopLength(Both, tt.length)
		assert.Equal(t, tt.want, s.GetNoteMode(Left), "length %d", tt.length)
		assert.Equal(t, tt.want, s.GetNoteMode(Right), "length %d", tt.length)
	}
}

func TestRateSlew(t *testing.T) {
	s, _ := running(t, DefaultConfig(), 200)

	s.SetReadRate(Both, 2)
	s.Process(0, 0)
	assert.Equal(t, 2.0, s.GetReadRate(Left), "no slew jumps straight to the target")

	s.SetRateSlew(0.01)
	s.SetReadRate(Both, 1)
	s.SetWriteRate(Right, 0.5)
	s.Process(0, 0)
	assert.InDelta(t, 1.9, s.GetReadRate(Left), 1e-6)
	assert.InDelta(t, 0.95, s.GetWriteRate(Right), 1e-6)

	for i := 0; i < 500; i++ {
		s.Process(0, 0)
	}
	assert.Equal(t, 1.0, s.GetReadRate(Right))
	assert.Equal(t, 0.5, s.GetWriteRate(Right))
	assert.Equal(t, 0.5, s.GetWriteRate(Left), "mono links the write rate")
}

func TestFeedbackRouting(t *testing.T) {
	tests := []struct {
		mode     Mode
		leftFed  bool
		rightFed bool
	}{
		{Cross, false, true},
		{Dual, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			conf := DefaultConfig()
			conf.Mode = tt.mode
			s, mem := newStereo(t, conf, 200)
			fill(t, s, 0.5, 0)
			s.Start()
			s.SetFeedback(1)
			s.SetFilterLevel(0)

			for i := 0; i < 20; i++ {
				s.Process(0, 0)
			}
			if tt.leftFed {
				assert.Greater(t, mem.Left[10], float32(0.05))
			} else {
				assert.Zero(t, mem.Left[10])
			}
			if tt.rightFed {
				assert.Greater(t, mem.Right[10], float32(0.05))
			} else {
				assert.Zero(t, mem.Right[10])
			}
		})
	}
}

func TestResetReturnsToBuffering(t *testing.T) {
	s, _ := running(t, DefaultConfig(), 200)
	s.SetMovement(Both, looper.Pendulum)
	s.SetFreeze(Both, 1)

	s.Reset()
	s.Process(0, 0)
	assert.True(t, s.IsBuffering())
	assert.Zero(t, s.GetBufferSamples(Left))
	assert.Zero(t, s.GetFreeze())
	assert.False(t, s.Looper(Left).IsPlaying())
	assert.Equal(t, looper.Pendulum, s.GetMovement(Right), "movement set on both channels survives")

	for s.IsBuffering() {
		s.Process(0.1, 0.1)
	}
	assert.True(t, s.IsReady())
	assert.Equal(t, 200, s.GetBufferSamples(Right))
}

func TestClearBuffer(t *testing.T) {
	s, mem := running(t, DefaultConfig(), 200)
	require.NotZero(t, dsp.Peak(mem.Left))

	s.ClearBuffer()
	s.Process(0, 0)
	assert.Zero(t, dsp.Peak(mem.Left))
	assert.Zero(t, dsp.Peak(mem.Right))
	assert.Zero(t, dsp.Peak(mem.LeftFrozen))
}

func TestOffsetLoopers(t *testing.T) {
	s, _ := newStereo(t, DefaultConfig(), 200)
	fill(t, s, 0.1, 0.1)

	s.OffsetLoopers(50)
	assert.Equal(t, 50.0, s.GetReadPos(Right))
	s.OffsetLoopers(-10)
	assert.Equal(t, 190.0, s.GetReadPos(Right))
}

func TestDrunkWalk(t *testing.T) {
	tests := []struct {
		mode   Mode
		shared bool
	}{
		{Mono, true},
		{Dual, false},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			conf := DefaultConfig()
			conf.Mode = tt.mode
			conf.Movement = looper.Drunk
			s, _ := running(t, conf, 200)
			s.Seed(42)

			flips, differ := 0, false
			prev := s.GetDirection(Left)
			for i := 0; i < 10*testRate; i++ {
				s.Process(0, 0)
				if dir := s.GetDirection(Left); dir != prev {
					flips++
					prev = dir
				}
				if s.GetDirection(Left) != s.GetDirection(Right) {
					differ = true
				}
			}
			assert.Greater(t, flips, 0)
			assert.Equal(t, !tt.shared, differ)
		})
	}
}

func TestPendulumSurvivesReconcile(t *testing.T) {
	s, _ := running(t, DefaultConfig(), 200)
	s.SetMovement(Both, looper.Pendulum)
	for i := 0; i < 250; i++ {
		s.Process(0, 0)
	}
	assert.False(t, s.IsGoingForward(Left), "the bounce is not undone by pending controls")
}

func TestSetControl(t *testing.T) {
	tests := []struct {
		name  string
		id    uint32
		ch    Channel
		value float64
		check func(t *testing.T, s *StereoLooper)
	}{
		{"input gain", ParamInputGain, Both, 1.5, func(t *testing.T, s *StereoLooper) {
			assert.Equal(t, float32(1.5), s.GetInputGain())
		}},
		{"dry wet", ParamDryWet, Both, 0.8, func(t *testing.T, s *StereoLooper) {
			assert.Equal(t, float32(0.8), s.GetDryWetMix())
		}},
		{"filter type", ParamFilterType, Both, 2, func(t *testing.T, s *StereoLooper) {
			assert.Equal(t, filter.Highpass, s.GetFilterType())
		}},
		{"cutoff", ParamFilterCutoff, Both, 500, func(t *testing.T, s *StereoLooper) {
			assert.Equal(t, 500.0, s.GetFilterValue())
		}},
		{"movement right", ParamMovement, Right, 2, func(t *testing.T, s *StereoLooper) {
			assert.Equal(t, looper.Pendulum, s.GetMovement(Right))
			assert.Equal(t, looper.Forward, s.GetMovement(Left))
		}},
		{"trigger mode", ParamTriggerMode, Both, 0, func(t *testing.T, s *StereoLooper) {
			assert.Equal(t, looper.Gate, s.GetTriggerMode())
		}},
		{"loop length in seconds", ParamLoopLength, Left, 0.1, func(t *testing.T, s *StereoLooper) {
			assert.Equal(t, 100, s.next[Left].loopLength)
			assert.Equal(t, 200, s.next[Right].loopLength)
		}},
		{"read rate clamps", ParamReadRate, Both, 9, func(t *testing.T, s *StereoLooper) {
			assert.Equal(t, dsp.MaxRate, s.next[Right].readRate)
		}},
		{"freeze", ParamFreeze, Both, 1, func(t *testing.T, s *StereoLooper) {
			assert.True(t, s.IsFrozen())
		}},
		{"fade samples", ParamFadeSamples, Both, 10, func(t *testing.T, s *StereoLooper) {
			assert.Equal(t, 10, s.Looper(Left).GetFadeSamples())
		}},
		{"loop sync", ParamLoopSync, Both, 1, func(t *testing.T, s *StereoLooper) {
			assert.True(t, s.GetLoopSync())
			assert.True(t, s.Looper(Right).GetLoopSync())
		}},
		{"rate slew", ParamRateSlew, Both, 0.25, func(t *testing.T, s *StereoLooper) {
			assert.Equal(t, 0.25, s.GetRateSlew())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := running(t, dualConfig(), 200)
			require.NoError(t, s.SetControl(tt.id, tt.ch, tt.value))
			tt.check(t, s)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		s, _ := newStereo(t, DefaultConfig(), 200)
		assert.ErrorIs(t, s.SetControl(999, Both, 1), ErrUnknownControl)
	})
}

func TestControlRegistry(t *testing.T) {
	r := NewControlRegistry()
	assert.Equal(t, 20, r.Count())

	p, ok := r.Lookup("feedback")
	require.True(t, ok)
	assert.Equal(t, ParamFeedback, p.ID)

	p, ok = r.Lookup("Filter Type")
	require.True(t, ok)
	assert.Equal(t, float64(filter.Bandpass), p.GetPlainValue())
	v, err := p.ParsePlain("highpass")
	require.NoError(t, err)
	assert.Equal(t, float64(filter.Highpass), v)

	p, ok = r.Lookup("trigger")
	require.True(t, ok)
	assert.Equal(t, float64(looper.Loop), p.GetPlainValue())
	assert.Equal(t, "Loop", p.FormatValue(p.GetValue()))

	// Registry defaults agree with a freshly initialized looper.
	s, _ := newStereo(t, DefaultConfig(), 200)
	defaults := map[uint32]float64{
		ParamInputGain:     float64(s.GetInputGain()),
		ParamOutputGain:    float64(s.GetOutputGain()),
		ParamDryWet:        float64(s.GetDryWetMix()),
		ParamFeedback:      float64(s.GetFeedback()),
		ParamFeedbackLevel: float64(s.GetFeedbackLevel()),
		ParamFilterLevel:   float64(s.GetFilterLevel()),
		ParamFilterCutoff:  s.GetFilterValue(),
		ParamStereoWidth:   float64(s.GetStereoWidth()),
		ParamFilterType:    float64(s.GetFilterType()),
	}
	for id, want := range defaults {
		assert.InDelta(t, want, r.Get(id).GetPlainValue(), 1e-6, r.Get(id).Name)
	}
}

func TestLoggerRecordsTransitions(t *testing.T) {
	var buf bytes.Buffer
	logger := debug.New(&buf, "stereo", debug.FlagLevel|debug.FlagPrefix)
	logger.SetLevel(debug.LogLevelDebug)

	s := &StereoLooper{}
	s.SetLogger(logger)
	require.NoError(t, s.Init(testRate, DefaultConfig(), NewMemory(200)))
	fill(t, s, 0.1, 0.1)
	s.Start()

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] [stereo] state Startup -> Buffering")
	assert.Contains(t, out, "state Buffering -> Ready")
	assert.Contains(t, out, "state Ready -> Recording")
}

func TestProcessStaysBounded(t *testing.T) {
	conf := DefaultConfig()
	conf.Mode = Cross
	s, _ := newStereo(t, conf, 2000)
	s.Seed(3)
	s.SetFeedback(0.9)
	s.SetStereoWidth(2)
	s.SetOutputGain(2)

	input := func(i int) (float32, float32) {
		x := float32(math.Sin(2 * math.Pi * 220 * float64(i) / testRate))
		return x, -x * 0.5
	}

	for i := 0; i < 20*testRate; i++ {
		switch i {
		case 4000:
			s.Start()
		case 6000:
			s.SetMovement(Left, looper.Pendulum)
			s.SetMovement(Right, looper.Random)
			s.SetReadRate(Both, 1.7)
		case 9000:
			s.ToggleFreeze()
		case 11000:
			s.SetLoopStart(Both, 1500)
			s.SetLoopLength(Both, 900)
		case 13000:
			s.ToggleFreeze()
			s.Trigger()
		case 15000:
			s.SetFilterType(filter.Highpass)
			s.SetTriggerMode(looper.Trigger)
		}
		l, r := s.Process(input(i))
		require.False(t, math.IsNaN(float64(l)) || math.IsNaN(float64(r)), "sample %d", i)
		require.LessOrEqual(t, math.Abs(float64(l)), 1.0, "sample %d", i)
		require.LessOrEqual(t, math.Abs(float64(r)), 1.0, "sample %d", i)
	}
}

func BenchmarkProcess(b *testing.B) {
	s, _ := running(b, DefaultConfig(), 4000)
	s.SetFeedback(0.5)
	s.SetReadRate(Both, 1.5)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Process(0.1, -0.1)
	}
}

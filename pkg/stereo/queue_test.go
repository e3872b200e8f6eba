package stereo

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandQueue(t *testing.T) {
	t.Run("capacity rounds up", func(t *testing.T) {
		assert.Equal(t, 8, NewCommandQueue(5).Cap())
		assert.Equal(t, 1, NewCommandQueue(0).Cap())
		assert.Equal(t, 64, NewCommandQueue(64).Cap())
	})

	t.Run("fifo and full", func(t *testing.T) {
		q := NewCommandQueue(4)
		for i := 0; i < 4; i++ {
			require.NoError(t, q.Push(Command{Kind: CommandSetControl, Value: float64(i)}))
		}
		assert.ErrorIs(t, q.Push(Command{}), ErrQueueFull)
		assert.Equal(t, uint64(1), q.Overruns())
		assert.Equal(t, 4, q.Len())

		for i := 0; i < 4; i++ {
			c, ok := q.Pop()
			require.True(t, ok)
			assert.Equal(t, float64(i), c.Value)
		}
		_, ok := q.Pop()
		assert.False(t, ok)
		assert.Zero(t, q.Len())
	})

	t.Run("wraps", func(t *testing.T) {
		q := NewCommandQueue(2)
		for i := 0; i < 10; i++ {
			require.NoError(t, q.Push(Command{ID: uint32(i)}))
			c, ok := q.Pop()
			require.True(t, ok)
			assert.Equal(t, uint32(i), c.ID)
		}
	})
}

func TestCommandQueueConcurrent(t *testing.T) {
	const n = 10000
	q := NewCommandQueue(16)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; {
			if q.Push(Command{Value: float64(i)}) == nil {
				i++
				continue
			}
			runtime.Gosched()
		}
	}()

	for want := 0; want < n; {
		c, ok := q.Pop()
		if !ok {
			runtime.Gosched()
			continue
		}
		require.Equal(t, float64(want), c.Value)
		want++
	}
	wg.Wait()
}

func TestApply(t *testing.T) {
	err := (&StereoLooper{}).Execute(Command{Kind: CommandStart})
	assert.ErrorIs(t, err, ErrNotInitialized)

	s, _ := newStereo(t, DefaultConfig(), 200)
	q := NewCommandQueue(8)
	require.NoError(t, q.Push(Command{Kind: CommandSetControl, ID: ParamFeedback, Value: 0.5}))
	require.NoError(t, q.Push(Command{Kind: CommandKind(99)}))
	require.NoError(t, q.Push(Command{Kind: CommandToggleFreeze}))
	require.NoError(t, q.Push(Command{Kind: CommandSetControl, ID: 999}))

	n, err := s.Apply(q)
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, ErrUnknownCommand, "the first failure is reported")
	assert.Zero(t, q.Len())
	assert.Equal(t, float32(0.5), s.GetFeedback())
	assert.Equal(t, float32(1), s.GetFreeze())
}

func TestApplyDrivesTransport(t *testing.T) {
	s, _ := newStereo(t, dualConfig(), 200)
	fill(t, s, 0.1, 0.1)

	q := NewCommandQueue(8)
	for _, c := range []Command{
		{Kind: CommandOffsetLoopers, Value: 20},
		{Kind: CommandStart},
		{Kind: CommandToggleDirection, Channel: Right},
		{Kind: CommandNudgeLoopLength, Channel: Left, Value: -50},
	} {
		require.NoError(t, q.Push(c))
	}
	n, err := s.Apply(q)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	s.Process(0, 0)
	assert.True(t, s.IsRecording())
	assert.True(t, s.IsGoingForward(Left))
	assert.False(t, s.IsGoingForward(Right))
	assert.Equal(t, 150, s.GetLoopLength(Left))
	assert.Equal(t, 200, s.GetLoopLength(Right))
}

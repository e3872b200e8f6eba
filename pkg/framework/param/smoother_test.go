package param

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmoother(t *testing.T) {
	t.Run("LinearSmoothing", func(t *testing.T) {
		smoother := NewSmoother(LinearSmoothing, 10)
		smoother.Reset(0)
		smoother.SetTarget(1)

		for i := 0; i < 10; i++ {
			assert.InDelta(t, float64(i+1)*0.1, smoother.Next(), 1e-9, "sample %d", i)
		}
		assert.Equal(t, 1.0, smoother.Next())
		assert.False(t, smoother.IsSmoothing())
	})

	t.Run("ExponentialSmoothing", func(t *testing.T) {
		smoother := NewSmoother(ExponentialSmoothing, 0.1)
		smoother.Reset(0)
		smoother.SetTarget(1)

		assert.InDelta(t, 0.1, smoother.Next(), 1e-9)
		assert.InDelta(t, 0.19, smoother.Next(), 1e-9)

		prev := smoother.Current()
		for i := 0; i < 20; i++ {
			value := smoother.Next()
			assert.Greater(t, value, prev)
			assert.Less(t, value, 1.0)
			prev = value
		}
		for i := 0; i < 200; i++ {
			smoother.Next()
		}
		assert.False(t, smoother.IsSmoothing())
		assert.Equal(t, 1.0, smoother.Current())
	})

	t.Run("unit coefficient jumps", func(t *testing.T) {
		smoother := NewSmoother(ExponentialSmoothing, 1)
		smoother.Reset(1)
		smoother.SetTarget(0.25)
		assert.Equal(t, 0.25, smoother.Next())
		assert.False(t, smoother.IsSmoothing())
	})

	t.Run("out of range coefficient jumps", func(t *testing.T) {
		smoother := NewSmoother(ExponentialSmoothing, 0)
		smoother.Reset(0)
		smoother.SetTarget(2)
		assert.Equal(t, 2.0, smoother.Next())
	})

	t.Run("downward ramp", func(t *testing.T) {
		smoother := NewSmoother(LinearSmoothing, 4)
		smoother.Reset(2)
		smoother.SetTarget(1)
		assert.InDelta(t, 1.75, smoother.Next(), 1e-9)
		assert.Equal(t, 1.0, smoother.Target())
		for i := 0; i < 3; i++ {
			smoother.Next()
		}
		assert.Equal(t, 1.0, smoother.Current())
		assert.False(t, smoother.IsSmoothing())
	})
}

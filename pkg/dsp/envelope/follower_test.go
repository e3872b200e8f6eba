package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFollowerTracksLevel(t *testing.T) {
	f := NewFollower(48000)
	f.SetAttack(0.001)
	f.SetRelease(0.05)

	var env float32
	for i := 0; i < 4800; i++ {
		sign := float32(1)
		if i%2 == 1 {
			sign = -1
		}
		env = f.Follow(0.5 * sign)
	}
	assert.InDelta(t, 0.5, env, 0.01, "envelope should settle on the rectified level")

	for i := 0; i < 48000; i++ {
		env = f.Follow(0)
	}
	assert.Less(t, env, float32(0.01), "envelope should release towards zero")
}

func TestFollowerAttackIsFasterThanRelease(t *testing.T) {
	f := NewFollower(48000)
	f.SetAttack(0.001)
	f.SetRelease(0.5)

	for i := 0; i < 480; i++ {
		f.Follow(1)
	}
	peak := f.Value()
	assert.Greater(t, peak, float32(0.99))

	for i := 0; i < 480; i++ {
		f.Follow(0)
	}
	assert.Greater(t, f.Value(), float32(0.9), "slow release keeps most of the level")
}

func TestFollowerProcessAndReset(t *testing.T) {
	f := NewFollower(48000)
	in := []float32{1, 1, 1, 1}
	out := make([]float32, len(in))
	f.Process(in, out)
	for i := 1; i < len(out); i++ {
		assert.Greater(t, out[i], out[i-1])
	}

	f.Reset()
	assert.Equal(t, float32(0), f.Value())
}

package debug

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadMeter(t *testing.T) {
	m := NewLoadMeter(48000)
	assert.Zero(t, m.Load())

	// 480 frames is a 10ms budget.
	m.Record(5*time.Millisecond, 480)
	m.Record(1*time.Millisecond, 480)

	assert.Equal(t, uint64(2), m.Calls())
	assert.InDelta(t, 0.3, m.Load(), 1e-6)
	assert.InDelta(t, 0.5, m.Peak(), 1e-3)
	assert.Contains(t, m.Report(), "callbacks=2")

	m.Record(time.Millisecond, 0)
	assert.Equal(t, uint64(2), m.Calls(), "empty callbacks are ignored")

	m.Reset()
	assert.Zero(t, m.Calls())
	assert.Zero(t, m.Peak())
}

func TestLoadMeterBeginEnd(t *testing.T) {
	m := NewLoadMeter(48000)
	start := m.Begin()
	m.End(start, 64)
	assert.Equal(t, uint64(1), m.Calls())
}

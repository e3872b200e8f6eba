package debug

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInspect(t *testing.T) {
	buffer := []float32{0.5, -1, float32(math.NaN()), 0.25}
	stats := Inspect(buffer)

	assert.Equal(t, float32(1), stats.Peak)
	assert.Equal(t, 1, stats.Clipped)
	assert.Equal(t, 1, stats.NaN)
	assert.InDelta(t, -0.0625, stats.DC, 1e-6)

	assert.Equal(t, BufferStats{}, Inspect(nil))
}

func TestCheckBuffer(t *testing.T) {
	assert.Empty(t, CheckBuffer([]float32{0.1, -0.1, 0.2, -0.2}, "clean"))

	issues := CheckBuffer([]float32{1, 1, 1}, "hot")
	assert.Len(t, issues, 2)
	assert.Contains(t, issues[0], "full scale")
	assert.Contains(t, issues[1], "DC offset")

	var buf bytes.Buffer
	logger := New(&buf, "", FlagLevel)
	logger.WarnBuffer([]float32{float32(math.Inf(1))}, "left")
	assert.Contains(t, buf.String(), "[WARN] left: 1 invalid samples")
}

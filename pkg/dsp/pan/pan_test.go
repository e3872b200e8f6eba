package pan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWiden(t *testing.T) {
	tests := []struct {
		name        string
		left, right float32
		width       float32
		wantL       float32
		wantR       float32
	}{
		{"unity width is transparent", 0.8, 0.2, 1, 0.8, 0.2},
		{"zero width collapses to mono", 1, 0, 0, 0.5, 0.5},
		{"double width", 0.8, 0.2, 2, 1.1, -0.1},
		{"mono input unaffected", 0.5, 0.5, 3, 0.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, r := Widen(tt.left, tt.right, tt.width)
			assert.InDelta(t, tt.wantL, l, 1e-5)
			assert.InDelta(t, tt.wantR, r, 1e-5)
		})
	}
}

func TestMidSideRoundTrip(t *testing.T) {
	mid, side := ToMidSide(0.3, -0.7)
	l, r := FromMidSide(mid, side)
	assert.InDelta(t, 0.3, l, 1e-6)
	assert.InDelta(t, -0.7, r, 1e-6)
}

func TestWidenBuffer(t *testing.T) {
	left := []float32{1, 0, -1}
	right := []float32{0, 1, 0}
	WidenBuffer(left, right, 0)
	assert.InDeltaSlice(t, []float32{0.5, 0.5, -0.5}, left, 1e-6)
	assert.InDeltaSlice(t, []float32{0.5, 0.5, -0.5}, right, 1e-6)
}

package debug

import (
	"fmt"
	"sync/atomic"
	"time"
)

// LoadMeter measures how much of each audio callback's real-time budget is
// spent processing. It is safe to update from the audio goroutine and read
// from anywhere.
type LoadMeter struct {
	sampleRate float64
	calls      atomic.Uint64
	frames     atomic.Uint64
	busyNanos  atomic.Int64
	peakLoad   atomic.Uint64 // load fraction * 1e4
}

// NewLoadMeter creates a meter for callbacks running at sampleRate.
func NewLoadMeter(sampleRate float64) *LoadMeter {
	return &LoadMeter{sampleRate: sampleRate}
}

// Begin marks the start of a callback.
func (m *LoadMeter) Begin() time.Time {
	return time.Now()
}

// End records a callback that started at start and produced frames frames.
func (m *LoadMeter) End(start time.Time, frames int) {
	m.Record(time.Since(start), frames)
}

// Record adds one callback of the given duration.
func (m *LoadMeter) Record(elapsed time.Duration, frames int) {
	if frames <= 0 || m.sampleRate <= 0 {
		return
	}
	m.calls.Add(1)
	m.frames.Add(uint64(frames))
	m.busyNanos.Add(int64(elapsed))

	budget := float64(frames) / m.sampleRate * float64(time.Second)
	load := uint64(float64(elapsed) / budget * 1e4)
	for {
		peak := m.peakLoad.Load()
		if load <= peak || m.peakLoad.CompareAndSwap(peak, load) {
			break
		}
	}
}

// Calls returns the number of recorded callbacks.
func (m *LoadMeter) Calls() uint64 {
	return m.calls.Load()
}

// Load returns the average fraction of the time budget spent processing.
func (m *LoadMeter) Load() float64 {
	frames := m.frames.Load()
	if frames == 0 {
		return 0
	}
	budget := float64(frames) / m.sampleRate * float64(time.Second)
	return float64(m.busyNanos.Load()) / budget
}

// Peak returns the highest single-callback load seen.
func (m *LoadMeter) Peak() float64 {
	return float64(m.peakLoad.Load()) / 1e4
}

// Reset clears all measurements.
func (m *LoadMeter) Reset() {
	m.calls.Store(0)
	m.frames.Store(0)
	m.busyNanos.Store(0)
	m.peakLoad.Store(0)
}

// Report summarises the measurements on one line.
func (m *LoadMeter) Report() string {
	return fmt.Sprintf("callbacks=%d frames=%d load=%.2f%% peak=%.2f%%",
		m.Calls(), m.frames.Load(), m.Load()*100, m.Peak()*100)
}

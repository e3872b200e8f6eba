package debug

import (
	"fmt"
	"math"
)

// Thresholds used by CheckBuffer.
const (
	ClipThreshold = 0.999
	DCThreshold   = 0.01
)

// BufferStats holds sanity information about a rendered buffer.
type BufferStats struct {
	Peak    float32
	DC      float32
	Clipped int
	NaN     int // NaN or infinite samples
}

// Inspect scans a buffer for clipping, DC offset and invalid samples.
func Inspect(buffer []float32) BufferStats {
	var stats BufferStats
	if len(buffer) == 0 {
		return stats
	}

	var sum float64
	for _, sample := range buffer {
		x := float64(sample)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			stats.NaN++
			continue
		}
		sum += x
		abs := float32(math.Abs(x))
		if abs > stats.Peak {
			stats.Peak = abs
		}
		if abs >= ClipThreshold {
			stats.Clipped++
		}
	}
	stats.DC = float32(sum / float64(len(buffer)))
	return stats
}

// CheckBuffer returns a description of every problem found in buffer.
func CheckBuffer(buffer []float32, name string) []string {
	var issues []string
	stats := Inspect(buffer)

	if stats.NaN > 0 {
		issues = append(issues, fmt.Sprintf("%s: %d invalid samples", name, stats.NaN))
	}
	if stats.Clipped > 0 {
		issues = append(issues, fmt.Sprintf("%s: %d samples at full scale", name, stats.Clipped))
	}
	if math.Abs(float64(stats.DC)) > DCThreshold {
		issues = append(issues, fmt.Sprintf("%s: DC offset %.3f", name, stats.DC))
	}
	return issues
}

// WarnBuffer logs every problem CheckBuffer finds at Warn level.
func (l *Logger) WarnBuffer(buffer []float32, name string) {
	for _, issue := range CheckBuffer(buffer, name) {
		l.Warn("%s", issue)
	}
}

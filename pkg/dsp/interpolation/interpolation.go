// Package interpolation reads between samples.
package interpolation

// Linear blends y0 towards y1 by frac, where frac 0 is y0 and frac 1 is y1.
// Read heads moving backwards pass the next sample in playback order as y1.
func Linear(y0, y1, frac float32) float32 {
	return y0 + (y1-y0)*frac
}

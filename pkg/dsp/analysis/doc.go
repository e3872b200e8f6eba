// Package analysis measures rendered stereo audio: per-channel peak and RMS
// levels and the stereo field (correlation, width and balance).
//
// Measurements work on whole buffers and are meant for offline summaries, not
// for the audio thread.
//
// Example:
//
//	r := analysis.Measure(left, right)
//	fmt.Printf("peak %.1f dBFS, %s\n", r.Left.PeakDB(), r.Field.Phase())
package analysis

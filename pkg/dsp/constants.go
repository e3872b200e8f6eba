// Package dsp provides digital signal processing utilities and algorithms.
package dsp

// Common audio constants used throughout the DSP packages and the looper.
const (
	// Gain/Level constants
	UnityGain = 1.0 // Unity gain (0 dB)

	// Frequency ranges
	MinFrequency     = 20.0    // 20 Hz
	MaxFrequency     = 20000.0 // 20 kHz
	DefaultFilterHz  = 1000.0  // Feedback filter cutoff after init
	MaxFrequencyFrac = 0.499   // Highest usable cutoff as a fraction of the sample rate

	// Q factor ranges
	MinQ     = 0.1
	MaxQ     = 20.0
	DefaultQ = 0.707 // Butterworth response

	// Channel counts
	Mono   = 1
	Stereo = 2

	// Common sample rates
	SampleRate44k1 = 44100.0
	SampleRate48k  = 48000.0
	SampleRate96k  = 96000.0

	// Looper buffer sizing
	DefaultBufferSeconds = 80 // 1:20 per channel, live and frozen
	MinLoopSamples       = 48 // Shortest loop window, 1ms at 48kHz

	// Fade window at loop seams
	DefaultFadeSeconds = 0.004 // 4ms

	// Common mix ranges
	MinMix  = 0.0 // Dry
	MaxMix  = 1.0 // Wet
	HalfMix = 0.5 // 50/50

	// Read/write rate limits (speed multipliers)
	MinRate = 0.0
	MaxRate = 4.0

	// Phase constants
	TwoPi  = 6.283185307179586
	Pi     = 3.141592653589793
	HalfPi = 1.5707963267948966

	// Sqrt2 is used by the mid/side matrix.
	Sqrt2 = 1.4142135623730951

	// Small values for comparisons
	Epsilon = 1e-6
)

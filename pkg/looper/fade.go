package looper

import (
	"math"

	"github.com/justyntemme/wreath/pkg/dsp"
	"github.com/justyntemme/wreath/pkg/dsp/interpolation"
)

func (l *Looper) scheduleFade(in bool) {
	l.fadeIndex = 0
	l.fadePos = l.readPos
	l.mustFadeIn = in
	l.mustFadeOut = !in
	if in {
		l.crossing = false
	}
}

func (l *Looper) clearFade() {
	l.fadeIndex = 0
	l.mustFadeIn = false
	l.mustFadeOut = false
	l.crossing = false
}

// fadeCoefficient returns the gain for the current step of the active fade
// and advances it. The curve runs from 0 to 1 (fade in) or 1 to 0 (fade
// out) and reaches the far end at fadeIndex == GetFadeSamples().
func (l *Looper) fadeCoefficient() float32 {
	samples := l.GetFadeSamples()
	l.fader.SetPosition(float32(l.fadeIndex) / float32(samples))

	var coeff float32
	if l.mustFadeIn {
		coeff = l.fader.Process(0, 1)
	} else {
		coeff = l.fader.Process(1, 0)
	}

	l.fadeIndex++
	if l.fadeIndex > samples {
		l.mustFadeIn = false
		l.mustFadeOut = false
	}
	return coeff
}

// GetFadePos returns the read head position where the current fade began.
func (l *Looper) GetFadePos() float64 {
	return l.fadePos
}

// Read returns the sample at pos, linearly interpolated towards the next
// index in the direction of travel, with the active fade applied. While
// fully frozen it reads the snapshot.
func (l *Looper) Read(pos float64) float32 {
	src := l.buffer
	if l.freeze >= 1 {
		src = l.frozen
	}
	last := l.span() - 1

	var i, j int
	var frac float64
	if l.IsGoingForward() {
		i = int(math.Floor(pos))
		j = i + 1
		frac = pos - float64(i)
	} else {
		i = int(math.Ceil(pos))
		j = i - 1
		frac = float64(i) - pos
	}
	i = dsp.ClampInt(i, 0, last)

	val := src[i]
	if frac != 0 {
		val = interpolation.Linear(val, src[dsp.ClampInt(j, 0, last)], float32(frac))
	}

	if l.IsFading() {
		val *= l.fadeCoefficient()
	}
	return val
}

// Play reads at the read head, or returns silence while stopped or muted.
func (l *Looper) Play() float32 {
	if l.transport == stopped || !l.reading {
		return 0
	}
	return l.Read(l.readPos)
}

// Write records value at the write head. Partial freeze blends value with
// what is already there; full freeze leaves the buffer untouched. The
// frozen snapshot tracks every write so it is current when freeze engages.
func (l *Looper) Write(value float32) {
	if !l.writing || l.freeze >= 1 {
		return
	}
	i := dsp.ClampInt(int(l.writePos), 0, l.capacity-1)
	if l.freeze > 0 {
		value = value*(1-l.freeze) + l.buffer[i]*l.freeze
	}
	l.buffer[i] = value
	l.frozen[i] = value
}

// HandleFade advances the transport once a transport fade has finished:
// a stop goes silent, a retrigger jumps back to the entry and fades in, a
// start settles into playing. It reports whether a fade is still running.
func (l *Looper) HandleFade() bool {
	if l.IsFading() {
		return true
	}
	switch l.transport {
	case stopping:
		l.transport = stopped
	case restarting:
		l.transport = starting
		l.Restart()
	case starting:
		l.transport = playing
	}
	return l.IsFading()
}

// Start begins playback with a fade in. An immediate start plays from where
// the read head is; otherwise the head restarts at the window entry. It
// reports false while a stop is still fading out, so the caller can retry.
func (l *Looper) Start(immediate bool) bool {
	switch l.transport {
	case starting, playing, restarting:
		return true
	case stopping:
		if !immediate {
			return false
		}
	}

	l.transport = starting
	if immediate {
		l.scheduleFade(true)
		return true
	}
	l.Restart()
	return true
}

// Stop ends playback. An immediate stop goes silent at once; otherwise the
// read head fades out first. It reports false while a start is still
// fading in, so the caller can retry.
func (l *Looper) Stop(immediate bool) bool {
	if immediate {
		l.transport = stopped
		l.clearFade()
		return true
	}
	switch l.transport {
	case stopped, stopping:
		return true
	case starting:
		if l.IsFading() {
			return false
		}
	}
	l.scheduleFade(false)
	l.transport = stopping
	return true
}

// Trigger restarts playback from the window entry: a running looper fades
// out first, a stopped one starts right away.
func (l *Looper) Trigger() bool {
	switch l.transport {
	case stopped:
		l.transport = starting
		l.Restart()
	case stopping:
		l.transport = restarting
	case restarting:
	default:
		l.scheduleFade(false)
		l.transport = restarting
	}
	return true
}

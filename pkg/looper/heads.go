package looper

import (
	"math"

	"github.com/justyntemme/wreath/pkg/dsp"
)

// HandlePosBoundaries keeps a proposed head position inside the loop window
// and reports whether it passed through a window boundary. pos is where the
// head would move next; the head's current position tells which way it came
// from. The write head always moves forward and never bounces. The read head
// follows the looper direction and, in Pendulum movement, reflects at the
// boundary and reverses.
//
// In a normal window a head past the exit wraps to the entry. In an inverted
// window (end before start) the head wraps at the recorded length to index
// 0 without crossing anything, and a head landing in the gap between end and
// start is moved to the entry.
func (l *Looper) HandlePosBoundaries(pos float64, isReadPos bool) (float64, bool) {
	prev := l.writePos
	forward := true
	if isReadPos {
		prev = l.readPos
		forward = l.IsGoingForward()
	}
	bounce := isReadPos && l.movement == Pendulum
	start, end := float64(l.loopStart), float64(l.loopEnd)

	if l.loopEnd > l.loopStart {
		switch {
		case forward && pos > end:
			return l.boundary(start, end, bounce)
		case !forward && pos < start:
			return l.boundary(end, start, bounce)
		case forward && pos < start:
			return start, false
		case !forward && pos > end:
			return end, false
		}
		return pos, false
	}

	span := float64(l.span())
	if forward {
		if pos >= span {
			pos = math.Min(pos-span, end)
		}
		if pos > end && (pos < start || prev <= end) {
			return l.boundary(start, end, bounce)
		}
		return pos, false
	}

	if pos < 0 {
		pos = math.Max(pos+span, start)
	}
	if pos < start && (pos > end || prev >= start) {
		return l.boundary(end, start, bounce)
	}
	return pos, false
}

// boundary resolves a crossing: wrap to entry or, when bouncing, reflect at
// the exit and reverse.
func (l *Looper) boundary(entry, exit float64, bounce bool) (float64, bool) {
	if bounce {
		l.ToggleDirection()
		return exit, true
	}
	return entry, true
}

// UpdateReadPos advances the read head by the read rate in the current
// direction. At a window crossing it applies deferred loop changes, stops a
// one-shot pass and picks a new spot in Random movement.
func (l *Looper) UpdateReadPos() {
	if l.transport == stopped {
		return
	}

	step := l.readRate
	if !l.IsGoingForward() {
		step = -step
	}
	pos, crossed := l.HandlePosBoundaries(l.readPos+step, true)

	if crossed {
		l.applyPendingLoop()
		if !l.looping {
			l.transport = stopped
			l.clearFade()
			l.readPos = l.entry()
			l.updateHeads()
			return
		}
		l.mustRestart = true
		if l.movement == Random {
			l.Restart()
			l.updateHeads()
			return
		}
	}

	l.SetReadPos(pos)
	l.updateHeads()
}

// UpdateWritePos advances the write head by the write rate.
func (l *Looper) UpdateWritePos() {
	l.writePos, _ = l.HandlePosBoundaries(l.writePos+l.writeRate, false)
}

// SetReadPos moves the read head and schedules fades. A fade in starts when
// the head lands on the entry for its direction or a restart was requested.
// A fade out starts GetFadeSamples() before the head leaves the window or,
// going backwards, before it runs into the write head.
func (l *Looper) SetReadPos(pos float64) {
	pos = dsp.Clamp(pos, 0, float64(l.span()-1))
	prev := l.readPos
	l.readPos = pos

	exitTime := l.timeToExit(pos)
	crossTime := l.timeToWriteHead(pos)
	defer func() {
		l.lastExitTime = exitTime
		l.lastCrossTime = crossTime
	}()

	// Transport fades own the fade state until they finish.
	if l.transport == stopped || l.transport == stopping || l.transport == restarting {
		l.mustRestart = false
		return
	}

	entry := int(l.entry())
	fade := float64(l.GetFadeSamples())

	if l.mustRestart || (int(pos) == entry && int(prev) != entry) {
		l.mustRestart = false
		l.scheduleFade(true)
	}

	if exitTime >= 0 && exitTime <= fade && l.lastExitTime > fade {
		l.scheduleFade(false)
	} else if crossTime >= 0 && crossTime <= fade && l.lastCrossTime > fade {
		l.scheduleFade(false)
		l.crossing = true
	} else if l.crossing && !l.IsFading() {
		l.scheduleFade(true)
	}
}

// entry is the window boundary the read head enters from.
func (l *Looper) entry() float64 {
	if l.IsGoingForward() {
		return float64(l.loopStart)
	}
	return float64(l.loopEnd)
}

// timeToExit is how many samples the read head needs to leave the window,
// or -1 when it is not moving or outside the window.
func (l *Looper) timeToExit(pos float64) float64 {
	if l.readRate <= 0 || l.loopLength == 0 {
		return -1
	}
	off := l.offset(pos)
	last := float64(l.loopLength - 1)
	if off > last {
		return -1
	}
	if l.IsGoingForward() {
		return (last - off) / l.readRate
	}
	return off / l.readRate
}

// timeToWriteHead is how many samples a backwards read head needs to meet
// the write head, or -1 when they cannot meet audibly.
func (l *Looper) timeToWriteHead(pos float64) float64 {
	if l.IsGoingForward() || !l.writing || l.freeze >= 1 {
		return -1
	}
	closing := l.readRate + l.writeRate
	if closing <= 0 || l.loopLength == 0 {
		return -1
	}
	dist := l.offset(pos) - l.offset(l.writePos)
	if dist < 0 {
		dist += float64(l.loopLength)
	}
	return dist / closing
}

// Restart puts the read head back at the window entry with a fade in. In
// Random movement it jumps to a random spot instead, heading away from
// where it was. In Pendulum movement it starts at the far boundary heading
// inward.
func (l *Looper) Restart() {
	l.mustRestart = true

	if l.movement == Random {
		pos := float64(l.GetRandomPosition())
		if pos > l.readPos {
			l.direction = DirectionForward
		} else {
			l.direction = DirectionBackwards
		}
		l.SetReadPos(pos)
		return
	}

	l.SetReadPos(l.entry())
	if l.movement == Pendulum {
		l.ToggleDirection()
		l.SetReadPos(l.entry())
	}
}

// GetRandomPosition returns a uniformly random index inside the window.
func (l *Looper) GetRandomPosition() int {
	if l.loopLength <= 0 {
		return l.loopStart
	}
	pos := (l.loopStart + l.rng.Intn(l.loopLength)) % l.span()
	return dsp.ClampInt(pos, 0, l.span()-1)
}

// updateHeads refreshes the head distance and cross point telemetry.
func (l *Looper) updateHeads() {
	length := float64(max(l.loopLength, 1))
	gap := math.Mod(l.offset(l.writePos)-l.offset(l.readPos), length)
	if gap < 0 {
		gap += length
	}

	var closing float64
	if l.IsGoingForward() {
		closing = l.readRate - l.writeRate
	} else {
		gap = math.Mod(length-gap, length)
		closing = l.readRate + l.writeRate
	}
	l.headsDistance = int(gap)

	l.crossPointFound = closing > 0
	if !l.crossPointFound {
		return
	}
	meet := l.writePos + l.writeRate*gap/closing
	l.crossPoint = int(math.Mod(meet, float64(l.span())))
}

// OffsetFrom places the read head offset samples after pos, wrapped to stay
// inside the window.
func (l *Looper) OffsetFrom(pos, offset float64) {
	length := float64(max(l.loopLength, 1))
	off := math.Mod(l.offset(pos)+offset, length)
	if off < 0 {
		off += length
	}
	l.SetReadPos(math.Mod(float64(l.loopStart)+off, float64(l.span())))
}

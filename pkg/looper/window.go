package looper

import "github.com/justyntemme/wreath/pkg/dsp"

// Buffer records one sample during the initial buffering pass and reports
// true once the buffer is full. Calls after that are ignored.
func (l *Looper) Buffer(value float32) bool {
	i := int(l.writePos)
	if i >= l.capacity {
		return true
	}
	l.buffer[i] = value
	l.frozen[i] = value
	l.writePos++
	l.bufferSamples = i + 1
	l.bufferSeconds = l.seconds(float64(l.bufferSamples))
	return l.bufferSamples >= l.capacity
}

// StopBuffering fixes the recorded length and opens the loop window over all
// of it. The read head waits at the entry for the current direction.
func (l *Looper) StopBuffering() {
	l.writePos = 0
	l.hasPending = false
	l.setLoop(0, l.span())
	if l.IsGoingForward() {
		l.SetReadPos(float64(l.loopStart))
	} else {
		l.SetReadPos(float64(l.loopEnd))
	}
}

// SetLoopLength sets the window length, clamped to [MinSamples, recorded
// length]. With loop sync on and playback running the change waits for the
// next pass through the window exit.
func (l *Looper) SetLoopLength(length int) {
	length = dsp.ClampInt(length, MinSamples, l.span())
	if l.deferLoopChange() {
		l.pendingLength = length
		return
	}
	l.setLoop(l.loopStart, length)
}

// IncrementLoopLength lengthens the window by samples.
func (l *Looper) IncrementLoopLength(samples int) {
	l.SetLoopLength(l.targetLength() + samples)
}

// DecrementLoopLength shortens the window by samples.
func (l *Looper) DecrementLoopLength(samples int) {
	l.SetLoopLength(l.targetLength() - samples)
}

// SetLoopStart moves the window, clamped to the recorded length. The length
// is kept, so the end may wrap past the buffer end.
func (l *Looper) SetLoopStart(start int) {
	start = dsp.ClampInt(start, 0, l.span()-1)
	if l.deferLoopChange() {
		l.pendingStart = start
		return
	}
	l.setLoop(start, l.loopLength)
}

// SetLoopSync turns deferred window changes on or off. Turning it off
// applies anything still waiting.
func (l *Looper) SetLoopSync(sync bool) {
	l.loopSync = sync
	if !sync {
		l.applyPendingLoop()
	}
}

func (l *Looper) deferLoopChange() bool {
	if !l.loopSync || l.transport == stopped {
		return false
	}
	if !l.hasPending {
		l.pendingStart = l.loopStart
		l.pendingLength = l.loopLength
		l.hasPending = true
	}
	return true
}

func (l *Looper) targetLength() int {
	if l.hasPending {
		return l.pendingLength
	}
	return l.loopLength
}

func (l *Looper) applyPendingLoop() {
	if !l.hasPending {
		return
	}
	l.hasPending = false
	l.setLoop(l.pendingStart, l.pendingLength)
}

func (l *Looper) setLoop(start, length int) {
	span := l.span()
	length = dsp.ClampInt(length, MinSamples, span)
	l.loopStart = start
	l.loopLength = length
	l.loopEnd = (start + length - 1) % span
}

// IsInverted reports whether the window wraps past the end of the recording.
func (l *Looper) IsInverted() bool {
	return l.loopEnd < l.loopStart
}

// offset returns pos relative to the loop start, wrapped to the recording.
func (l *Looper) offset(pos float64) float64 {
	off := pos - float64(l.loopStart)
	if off < 0 {
		off += float64(l.span())
	}
	return off
}

package stereo

import (
	"github.com/justyntemme/wreath/pkg/dsp"
	"github.com/justyntemme/wreath/pkg/dsp/mix"
	"github.com/justyntemme/wreath/pkg/dsp/pan"
	"github.com/justyntemme/wreath/pkg/framework/param"
)

// freezeFeedbackGain scales the filtered feedback blended into the output
// while frozen.
const freezeFeedbackGain = 0.5

// Process runs one frame and returns the output pair.
func (s *StereoLooper) Process(leftIn, rightIn float32) (float32, float32) {
	dry := [2]float32{
		dsp.SoftLimit(leftIn * s.inputGain),
		dsp.SoftLimit(rightIn * s.inputGain),
	}
	var wet [2]float32

	switch s.state {
	case Startup:
		s.startup++
		if s.startup > s.sampleRate {
			s.startup = 0
			s.setState(Buffering)
		}
		return 0, 0

	case Buffering:
		doneLeft := s.loopers[Left].Buffer(dry[Left])
		doneRight := s.loopers[Right].Buffer(dry[Right])
		if (doneLeft && doneRight) || s.requested(requestStopBuffering) {
			s.done(requestStopBuffering)
			s.stopBuffering()
			s.setState(Ready)
		}
		wet = dry

	case Ready:
		s.mirrorPending()

	case Recording, Frozen:
		wet = s.run(&dry)
	}

	left, right := pan.Widen(wet[Left], wet[Right], s.stereoWidth)
	outLeft := dsp.SoftLimit(mix.CrossfadeCosine(dry[Left], left, s.dryWetMix) * s.outputGain)
	outRight := dsp.SoftLimit(mix.CrossfadeCosine(dry[Right], right, s.dryWetMix) * s.outputGain)
	return outLeft, outRight
}

// ProcessBuffer runs Process over planar buffers of equal length - no
// allocations.
func (s *StereoLooper) ProcessBuffer(inLeft, inRight, outLeft, outRight []float32) {
	for i := range inLeft {
		outLeft[i], outRight[i] = s.Process(inLeft[i], inRight[i])
	}
}

func (s *StereoLooper) stopBuffering() {
	for i := range s.loopers {
		l := &s.loopers[i]
		l.SetTriggerMode(s.next[i].triggerMode)
		l.SetDirection(s.next[i].direction)
		l.StopBuffering()
		s.syncApplied(i)
		s.next[i] = s.applied[i]
	}
}

// mirrorPending keeps the pending record level with the loopers while
// Ready, with rates and freeze back at neutral.
func (s *StereoLooper) mirrorPending() {
	for i := range s.loopers {
		l := &s.loopers[i]
		next := &s.next[i]
		next.loopLength = l.GetLoopLength()
		next.loopStart = l.GetLoopStart()
		next.readRate = 1
		next.writeRate = 1
		next.freeze = 0
	}
}

// run is the Recording and Frozen signal chain.
func (s *StereoLooper) run(dry *[2]float32) [2]float32 {
	var wet [2]float32

	s.updateParameters()
	dry[Left] *= s.dryLevel
	dry[Right] *= s.dryLevel

	if !s.handleRequests() {
		return wet
	}

	for i := range s.loopers {
		s.loopers[i].HandleFade()
		wet[i] = s.loopers[i].Play()
	}

	var feedback [2]float32
	for i := range s.loopers {
		fb := wet[i] * s.feedback
		fb = dsp.SoftMix(fb, s.filterLevel*s.filter(fb, i))
		fb *= s.feedbackLevel - s.envelopes[i].Follow(fb)
		feedback[i] = fb
		wet[i] = dsp.SoftMix(wet[i], s.filter(fb, i)*s.freeze*freezeFeedbackGain)
	}

	for i := range s.loopers {
		src := i
		if s.conf.Mode == Cross {
			src = 1 - i
		}
		s.loopers[i].Write(dsp.SoftMix(dry[i], feedback[src]))
	}
	for i := range s.loopers {
		s.loopers[i].UpdateWritePos()
	}
	for i := range s.loopers {
		s.loopers[i].UpdateReadPos()
	}

	s.drunkWalk()
	return wet
}

func (s *StereoLooper) filter(x float32, channel int) float32 {
	return s.feedbackFilter.Process(x, channel, s.filterType)
}

// handleRequests carries out latched requests in a fixed order: clear,
// reset, retrigger, start, stop. It reports false when a reset tore the
// loopers down.
func (s *StereoLooper) handleRequests() bool {
	if s.requests == 0 {
		return true
	}
	left, right := &s.loopers[Left], &s.loopers[Right]

	if s.requested(requestClear) {
		s.done(requestClear)
		left.ClearBuffer()
		right.ClearBuffer()
	}

	if s.requested(requestReset) {
		s.requests = 0
		left.Stop(true)
		right.Stop(true)
		s.reset()
		s.setState(Buffering)
		return false
	}

	if s.requested(requestRetrigger) {
		s.done(requestRetrigger)
		left.Trigger()
		right.Trigger()
	}

	if s.requested(requestStart) {
		doneLeft := left.Start(false)
		doneRight := right.Start(false)
		if doneLeft && doneRight {
			s.done(requestStart)
		}
	}

	if s.requested(requestStop) {
		doneLeft := left.Stop(false)
		doneRight := right.Stop(false)
		if doneLeft && doneRight {
			s.done(requestStop)
		}
	}
	return true
}

// updateParameters reconciles the pending record into each looper. Values
// are pushed only when they changed since they were last applied, so a
// direction a looper picked itself (pendulum, drunk) is left alone. Rates
// glide towards their targets.
func (s *StereoLooper) updateParameters() {
	for i := range s.loopers {
		l := &s.loopers[i]
		next, applied := &s.next[i], &s.applied[i]

		if next.triggerMode != applied.triggerMode {
			l.SetTriggerMode(next.triggerMode)
		}
		if next.direction != applied.direction {
			l.SetDirection(next.direction)
		}
		if next.loopLength != applied.loopLength {
			l.SetLoopLength(next.loopLength)
		}
		if next.loopStart != applied.loopStart {
			l.SetLoopStart(next.loopStart)
		}
		if rate := l.GetReadRate(); rate != next.readRate {
			l.SetReadRate(slew(s.readSlew[i], rate, next.readRate))
		}
		if rate := l.GetWriteRate(); rate != next.writeRate {
			l.SetWriteRate(slew(s.writeSlew[i], rate, next.writeRate))
		}
		if next.freeze != applied.freeze {
			l.SetFreeze(next.freeze)
		}
		*applied = *next
	}
}

// slew steps current one sample towards target.
func slew(sm *param.Smoother, current, target float64) float64 {
	if sm.Current() != current {
		sm.Reset(current)
	}
	sm.SetTarget(target)
	return sm.Next()
}

// drunkWalk flips the direction of loopers in Drunk movement at random. In
// Dual mode each channel draws on its own, otherwise they share a draw.
func (s *StereoLooper) drunkWalk() {
	left, right := &s.loopers[Left], &s.loopers[Right]
	if !left.IsDrunkMovement() && !right.IsDrunkMovement() {
		return
	}
	flip := s.rng.Chance(s.drunkChance)
	if left.IsDrunkMovement() && flip {
		left.ToggleDirection()
	}
	if s.conf.Mode == Dual {
		flip = s.rng.Chance(s.drunkChance)
	}
	if right.IsDrunkMovement() && flip {
		right.ToggleDirection()
	}
}

package stereo

import (
	"github.com/justyntemme/wreath/pkg/dsp"
	"github.com/justyntemme/wreath/pkg/dsp/filter"
	"github.com/justyntemme/wreath/pkg/dsp/utility"
	"github.com/justyntemme/wreath/pkg/looper"
)

// Filter settings applied with every cutoff change.
const (
	filterDrive     = 0.75
	filterResMin    = 0.05
	filterResMax    = 0.2
	filterResFreeze = 0.2
)

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Start begins playback from Ready. A freeze armed before the start goes
// straight to Frozen.
func (s *StereoLooper) Start() {
	if s.state != Ready {
		return
	}
	for i := range s.loopers {
		s.loopers[i].Start(true)
		s.next[i].freeze = s.freeze
	}
	if s.freeze == 1 {
		s.setState(Frozen)
	} else {
		s.setState(Recording)
	}
}

// StopBuffering ends the first recording pass early. It has no effect
// outside Buffering.
func (s *StereoLooper) StopBuffering() {
	if s.state == Buffering {
		s.latch(requestStopBuffering)
	}
}

// Reset tears both loopers down and records a new buffer.
func (s *StereoLooper) Reset() {
	s.latch(requestReset)
}

// ClearBuffer silences the recorded material.
func (s *StereoLooper) ClearBuffer() {
	s.latch(requestClear)
}

// Trigger restarts playback from the loop entry.
func (s *StereoLooper) Trigger() {
	s.latch(requestRetrigger)
}

// Gate feeds the gate input. In Gate mode a rising edge starts the loopers
// and a falling edge stops them; in Trigger mode a rising edge retriggers.
func (s *StereoLooper) Gate(open bool) {
	if open == s.gate {
		return
	}
	s.gate = open
	switch s.conf.TriggerMode {
	case looper.Gate:
		if open {
			s.latchStart()
		} else {
			s.latchStop()
		}
	case looper.Trigger:
		if open {
			s.latch(requestRetrigger)
		}
	}
}

func (s *StereoLooper) latchStart() {
	s.done(requestStop)
	s.latch(requestStart)
}

func (s *StereoLooper) latchStop() {
	s.done(requestStart)
	s.latch(requestStop)
}

// SetTriggerMode changes the trigger mode of both loopers. Gate mode mutes
// the dry signal and starts the loopers, waiting for the gate; Trigger mode
// stops them until the next trigger; Loop mode starts them.
func (s *StereoLooper) SetTriggerMode(mode looper.TriggerMode) {
	for i := range s.next {
		s.next[i].triggerMode = mode
	}
	switch mode {
	case looper.Gate:
		s.dryLevel = 0
		s.latchStart()
	case looper.Trigger:
		s.dryLevel = 1
		s.latchStop()
	case looper.Loop:
		s.dryLevel = 1
		s.latchStart()
	}
	s.conf.TriggerMode = mode
}

// SetMovement changes the movement of the loopers ch reaches.
func (s *StereoLooper) SetMovement(ch Channel, movement looper.Movement) {
	for i := range s.loopers {
		if !s.affects(ch, i) {
			continue
		}
		s.loopers[i].SetMovement(movement)
		s.next[i].direction = s.loopers[i].GetDirection()
		s.applied[i].direction = s.next[i].direction
	}
	if ch == Both {
		s.conf.Movement = movement
	}
}

// SetDirection sets the read direction. While Ready, going backwards parks
// the read heads at the loop end so playback starts there.
func (s *StereoLooper) SetDirection(ch Channel, direction looper.Direction) {
	for i := range s.loopers {
		if s.affects(ch, i) {
			s.setDirection(i, direction)
		}
	}
	if ch == Both {
		s.conf.Direction = direction
	}
}

// ToggleDirection reverses the read direction of each affected looper.
func (s *StereoLooper) ToggleDirection(ch Channel) {
	for i := range s.loopers {
		if !s.affects(ch, i) {
			continue
		}
		dir := looper.DirectionBackwards
		if s.loopers[i].GetDirection() == looper.DirectionBackwards {
			dir = looper.DirectionForward
		}
		s.setDirection(i, dir)
	}
	if ch == Both {
		s.conf.Direction = s.next[Left].direction
	}
}

// setDirection updates looper i only; while Ready the looper follows at once.
func (s *StereoLooper) setDirection(i int, direction looper.Direction) {
	s.next[i].direction = direction
	if s.state != Ready {
		return
	}
	l := &s.loopers[i]
	l.SetDirection(direction)
	s.applied[i].direction = direction
	if direction == looper.DirectionBackwards {
		l.SetReadPos(float64(l.GetLoopEnd()))
	}
}

// SetLoopStart moves the loop window start, in samples.
func (s *StereoLooper) SetLoopStart(ch Channel, start int) {
	for i := range s.loopers {
		if s.affects(ch, i) {
			last := max(s.loopers[i].GetBufferSamples()-1, 0)
			s.next[i].loopStart = dsp.ClampInt(start, 0, last)
		}
	}
}

// SetLoopLength sets the loop window length, in samples, and updates the
// note mode of the affected channels.
func (s *StereoLooper) SetLoopLength(ch Channel, length int) {
	for i := range s.loopers {
		if s.affects(ch, i) {
			s.setLoopLength(i, length)
		}
	}
}

// NudgeLoopLength changes the pending loop length of each affected looper by
// delta samples.
func (s *StereoLooper) NudgeLoopLength(ch Channel, delta int) {
	for i := range s.loopers {
		if s.affects(ch, i) {
			s.setLoopLength(i, s.next[i].loopLength+delta)
		}
	}
}

func (s *StereoLooper) setLoopLength(i, length int) {
	hi := max(s.loopers[i].GetBufferSamples(), looper.MinSamples)
	s.next[i].loopLength = dsp.ClampInt(length, looper.MinSamples, hi)
	s.noteMode[i] = noteModeFor(length)
}

func noteModeFor(length int) NoteMode {
	switch {
	case length <= NoteMaxSamples:
		return NoteModeNote
	case length <= FlangerMaxSamples:
		return NoteModeFlanger
	default:
		return NoteModeNone
	}
}

// SetReadRate sets the read speed. Changes glide over the rate slew time.
func (s *StereoLooper) SetReadRate(ch Channel, rate float64) {
	rate = dsp.Clamp(rate, dsp.MinRate, dsp.MaxRate)
	for i := range s.next {
		if s.affects(ch, i) {
			s.next[i].readRate = rate
		}
	}
	if ch == Both {
		s.conf.Rate = rate
	}
}

// SetWriteRate sets the write speed. Changes glide over the rate slew time.
func (s *StereoLooper) SetWriteRate(ch Channel, rate float64) {
	rate = dsp.Clamp(rate, dsp.MinRate, dsp.MaxRate)
	for i := range s.next {
		if s.affects(ch, i) {
			s.next[i].writeRate = rate
		}
	}
}

// SetFreeze sets how much of the buffer is protected from overdubs. While
// running, an amount of 1 switches to Frozen and anything else to
// Recording.
func (s *StereoLooper) SetFreeze(ch Channel, amount float32) {
	amount = clamp01(amount)
	for i := range s.next {
		if s.affects(ch, i) {
			s.next[i].freeze = amount
		}
	}
	s.freeze = amount
	s.updateFilter()
	if s.IsRunning() {
		if amount == 1 {
			s.setState(Frozen)
		} else {
			s.setState(Recording)
		}
	}
}

// ToggleFreeze flips between fully frozen and recording. While Ready it
// arms or disarms the freeze applied by Start.
func (s *StereoLooper) ToggleFreeze() {
	if s.freeze == 1 {
		s.SetFreeze(Both, 0)
	} else {
		s.SetFreeze(Both, 1)
	}
}

// SetRateSlew sets the read and write rate glide time in seconds.
func (s *StereoLooper) SetRateSlew(seconds float64) {
	s.rateSlew = max(seconds, 0)
	coeff := float64(utility.SlewCoefficient(s.rateSlew, float64(s.sampleRate)))
	for i := range s.readSlew {
		s.readSlew[i].SetRate(coeff)
		s.writeSlew[i].SetRate(coeff)
	}
}

func (s *StereoLooper) GetRateSlew() float64 {
	return s.rateSlew
}

// SetSamplesToFade sets the fade window at loop seams for both loopers.
func (s *StereoLooper) SetSamplesToFade(samples int) {
	for i := range s.loopers {
		s.loopers[i].SetSamplesToFade(samples)
	}
}

// SetLoopSync defers loop window changes to the next pass through the loop
// end.
func (s *StereoLooper) SetLoopSync(sync bool) {
	s.loopSync = sync
	for i := range s.loopers {
		s.loopers[i].SetLoopSync(sync)
	}
}

// OffsetLoopers places the right read head offset samples after the left.
func (s *StereoLooper) OffsetLoopers(offset float64) {
	s.loopers[Right].OffsetFrom(s.loopers[Left].GetReadPos(), offset)
}

// SetFilterValue sets the feedback filter cutoff in Hz. Resonance follows
// the feedback and freeze amounts.
func (s *StereoLooper) SetFilterValue(hz float64) {
	s.filterValue = hz
	s.feedbackFilter.SetFrequency(hz)
	s.updateFilter()
}

func (s *StereoLooper) updateFilter() {
	s.feedbackFilter.SetDrive(filterDrive)
	res := utility.ScaleParameter(float64(1-s.feedback), filterResMin, filterResMax+float64(s.freeze)*filterResFreeze)
	s.feedbackFilter.SetResonance(res)
}

// SetFilterType selects the feedback filter response.
func (s *StereoLooper) SetFilterType(t filter.Type) {
	s.filterType = t
}

func (s *StereoLooper) SetInputGain(gain float32) {
	s.inputGain = max(gain, 0)
}

func (s *StereoLooper) SetOutputGain(gain float32) {
	s.outputGain = max(gain, 0)
}

// SetDryWetMix sets the output blend, 0 dry and 1 wet.
func (s *StereoLooper) SetDryWetMix(mix float32) {
	s.dryWetMix = clamp01(mix)
}

// SetFeedback sets how much of the loop output is written back.
func (s *StereoLooper) SetFeedback(amount float32) {
	s.feedback = clamp01(amount)
	s.updateFilter()
}

// SetFeedbackLevel sets the feedback ceiling the envelope ducks from.
func (s *StereoLooper) SetFeedbackLevel(level float32) {
	s.feedbackLevel = clamp01(level)
}

// SetFilterLevel sets how much filtered feedback is blended in.
func (s *StereoLooper) SetFilterLevel(level float32) {
	s.filterLevel = clamp01(level)
}

// SetStereoWidth scales the side signal: 0 mono, 1 unchanged, 2 wide.
func (s *StereoLooper) SetStereoWidth(width float32) {
	s.stereoWidth = max(width, 0)
}

func (s *StereoLooper) GetInputGain() float32 {
	return s.inputGain
}

func (s *StereoLooper) GetOutputGain() float32 {
	return s.outputGain
}

func (s *StereoLooper) GetDryWetMix() float32 {
	return s.dryWetMix
}

func (s *StereoLooper) GetFeedback() float32 {
	return s.feedback
}

func (s *StereoLooper) GetFeedbackLevel() float32 {
	return s.feedbackLevel
}

func (s *StereoLooper) GetFilterLevel() float32 {
	return s.filterLevel
}

func (s *StereoLooper) GetStereoWidth() float32 {
	return s.stereoWidth
}

// Package stereo drives two loopers as one stereo instrument. A
// StereoLooper owns the left and right Looper, the feedback filter and
// envelope followers and the top-level state machine
// (Startup, Buffering, Ready, Recording, Frozen). Process is called once per
// frame from the audio goroutine; control setters write a pending record
// that the next Process call reconciles, so a change never lands mid-sample.
package stereo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/justyntemme/wreath/pkg/dsp"
	"github.com/justyntemme/wreath/pkg/dsp/envelope"
	"github.com/justyntemme/wreath/pkg/dsp/filter"
	"github.com/justyntemme/wreath/pkg/dsp/utility"
	"github.com/justyntemme/wreath/pkg/framework/debug"
	"github.com/justyntemme/wreath/pkg/framework/param"
	"github.com/justyntemme/wreath/pkg/looper"
)

// ErrNotInitialized is returned by control entry points used before Init.
var ErrNotInitialized = errors.New("stereo looper not initialized")

// Channel selects which looper a control targets.
type Channel int

const (
	// Left targets the left looper
	Left Channel = iota
	// Right targets the right looper
	Right
	// Both targets the two loopers at once
	Both
)

var channelNames = [...]string{"Left", "Right", "Both"}

func (c Channel) String() string {
	if c < 0 || int(c) >= len(channelNames) {
		return "Unknown"
	}
	return channelNames[c]
}

// Mode decides how per-channel controls and the feedback path are linked.
type Mode int

const (
	// Mono links both channels: every control targets Both
	Mono Mode = iota
	// Cross keeps channel controls independent and feeds each channel's
	// feedback into the opposite looper
	Cross
	// Dual keeps the channels fully independent
	Dual
)

var modeNames = [...]string{"Mono", "Cross", "Dual"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "Unknown"
	}
	return modeNames[m]
}

// ParseMode looks a mode up by name, ignoring case.
func ParseMode(name string) (Mode, bool) {
	for m, n := range modeNames {
		if strings.EqualFold(strings.TrimSpace(name), n) {
			return Mode(m), true
		}
	}
	return Mono, false
}

// State is the top-level state of the instrument.
type State int

const (
	// Startup emits silence while the hardware settles
	Startup State = iota
	// Buffering records the first pass and passes the input through
	Buffering
	// Ready waits for Start with the buffer recorded
	Ready
	// Recording plays and overdubs
	Recording
	// Frozen plays the frozen snapshot
	Frozen
)

var stateNames = [...]string{"Startup", "Buffering", "Ready", "Recording", "Frozen"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// NoteMode classifies a loop length by how it sounds.
type NoteMode int

const (
	// NoteModeNone is an ordinary loop
	NoteModeNone NoteMode = iota
	// NoteModeNote is a loop short enough to be heard as a pitch
	NoteModeNote
	// NoteModeFlanger is a loop in the comb filter range
	NoteModeFlanger
)

// Loop lengths, in samples, at or below which a loop is a note or a flanger.
const (
	NoteMaxSamples    = 2400
	FlangerMaxSamples = 4800
)

func (n NoteMode) String() string {
	switch n {
	case NoteModeNote:
		return "Note"
	case NoteModeFlanger:
		return "Flanger"
	default:
		return "None"
	}
}

// Config is the configuration restored on Init and on every reset.
type Config struct {
	Mode        Mode
	TriggerMode looper.TriggerMode
	Movement    looper.Movement
	Direction   looper.Direction
	Rate        float64
}

// DefaultConfig is a linked, free-running, forward configuration at unit rate.
func DefaultConfig() Config {
	return Config{
		Mode:        Mono,
		TriggerMode: looper.Loop,
		Movement:    looper.Forward,
		Direction:   looper.DirectionForward,
		Rate:        1,
	}
}

// Memory is the sample arena the loopers record into: a live and a frozen
// buffer per channel, all the same length.
type Memory struct {
	Left        []float32
	Right       []float32
	LeftFrozen  []float32
	RightFrozen []float32
}

// NewMemory allocates an arena of capacity samples per buffer.
func NewMemory(capacity int) Memory {
	return Memory{
		Left:        make([]float32, capacity),
		Right:       make([]float32, capacity),
		LeftFrozen:  make([]float32, capacity),
		RightFrozen: make([]float32, capacity),
	}
}

// Capacity returns the length of the left buffer.
func (m Memory) Capacity() int {
	return len(m.Left)
}

// pending holds the control values the next processing step reconciles
// into one looper.
type pending struct {
	triggerMode looper.TriggerMode
	direction   looper.Direction
	loopStart   int
	loopLength  int
	readRate    float64
	writeRate   float64
	freeze      float32
}

// request is a latched one-shot action, cleared once both loopers have
// carried it out.
type request uint8

const (
	requestStopBuffering request = 1 << iota
	requestClear
	requestReset
	requestRetrigger
	requestStart
	requestStop
)

// StereoLooper is the two-channel looping instrument.
type StereoLooper struct {
	sampleRate int
	conf       Config
	state      State
	startup    int

	loopers  [2]looper.Looper
	next     [2]pending
	applied  [2]pending
	noteMode [2]NoteMode

	readSlew  [2]*param.Smoother
	writeSlew [2]*param.Smoother

	requests request
	gate     bool

	inputGain     float32
	outputGain    float32
	dryWetMix     float32
	feedback      float32
	feedbackLevel float32
	filterLevel   float32
	stereoWidth   float32
	dryLevel      float32
	freeze        float32
	rateSlew      float64
	filterType    filter.Type
	filterValue   float64
	loopSync      bool

	feedbackFilter *filter.SVF
	envelopes      [2]*envelope.Follower

	rng         *utility.Random
	drunkChance float64

	log *debug.Logger
}

// Init binds the instrument to its memory and restores conf. The
// instrument starts in Startup.
func (s *StereoLooper) Init(sampleRate int, conf Config, mem Memory) error {
	if err := s.loopers[Left].Init(sampleRate, mem.Left, mem.LeftFrozen); err != nil {
		return fmt.Errorf("left channel: %w", err)
	}
	if err := s.loopers[Right].Init(sampleRate, mem.Right, mem.RightFrozen); err != nil {
		return fmt.Errorf("right channel: %w", err)
	}
	if mem.Capacity() != len(mem.Right) {
		return fmt.Errorf("right channel: %d != %d: %w", len(mem.Right), mem.Capacity(), looper.ErrBufferMismatch)
	}

	s.sampleRate = sampleRate
	s.conf = conf
	s.state = Startup
	s.startup = 0
	if s.log == nil {
		s.log = debug.Default()
	}

	s.inputGain = 1
	s.outputGain = 1
	s.dryWetMix = 0.5
	s.feedback = 0
	s.feedbackLevel = 1
	s.filterLevel = 0.3
	s.stereoWidth = 1
	s.dryLevel = 1
	s.freeze = 0
	s.filterType = filter.Bandpass
	s.loopSync = false

	s.feedbackFilter = filter.NewSVF(float64(sampleRate), dsp.Stereo)
	for i := range s.envelopes {
		s.envelopes[i] = envelope.NewFollower(float64(sampleRate))
		s.readSlew[i] = param.NewSmoother(param.ExponentialSmoothing, 1)
		s.writeSlew[i] = param.NewSmoother(param.ExponentialSmoothing, 1)
	}
	s.SetRateSlew(0)
	s.SetFilterValue(dsp.DefaultFilterHz)

	s.rng = utility.NewRandom(uint64(sampleRate))
	s.drunkChance = DrunkFlipsPerSecond / float64(sampleRate)
	s.requests = 0
	s.gate = false
	s.reset()
	return nil
}

// DrunkFlipsPerSecond is the average rate at which Drunk movement reverses.
const DrunkFlipsPerSecond = 4.0

// SetLogger replaces the logger used for state transitions.
func (s *StereoLooper) SetLogger(l *debug.Logger) {
	s.log = l
}

// Seed reseeds the random sources used by Drunk and Random movement.
func (s *StereoLooper) Seed(seed uint64) {
	s.rng = utility.NewRandom(seed)
	s.loopers[Left].Seed(seed + 1)
	s.loopers[Right].Seed(seed + 2)
}

// StartupSamples is how many Process calls the warm-up lasts.
func (s *StereoLooper) StartupSamples() int {
	return s.sampleRate + 1
}

// reset re-enters the just-initialized looper state and restores the
// configuration.
func (s *StereoLooper) reset() {
	for i := range s.loopers {
		s.loopers[i].Reset()
		s.envelopes[i].Reset()
		s.syncApplied(i)
		s.next[i] = s.applied[i]
		s.noteMode[i] = NoteModeNone
	}
	s.feedbackFilter.Reset()
	s.freeze = 0

	s.SetTriggerMode(s.conf.TriggerMode)
	s.SetMovement(Both, s.conf.Movement)
	s.SetDirection(Both, s.conf.Direction)
	s.SetReadRate(Both, s.conf.Rate)
	s.SetWriteRate(Both, s.conf.Rate)
}

// syncApplied records the looper's live values as already applied.
func (s *StereoLooper) syncApplied(i int) {
	l := &s.loopers[i]
	s.applied[i] = pending{
		triggerMode: l.GetTriggerMode(),
		direction:   l.GetDirection(),
		loopStart:   l.GetLoopStart(),
		loopLength:  l.GetLoopLength(),
		readRate:    l.GetReadRate(),
		writeRate:   l.GetWriteRate(),
		freeze:      l.GetFreeze(),
	}
}

func (s *StereoLooper) setState(state State) {
	if state == s.state {
		return
	}
	s.log.Debug("state %s -> %s", s.state, state)
	s.state = state
}

func (s *StereoLooper) latch(r request) {
	s.requests |= r
}

func (s *StereoLooper) requested(r request) bool {
	return s.requests&r != 0
}

func (s *StereoLooper) done(r request) {
	s.requests &^= r
}

// Looper returns the looper behind ch. Both returns the left looper.
func (s *StereoLooper) Looper(ch Channel) *looper.Looper {
	if ch == Right {
		return &s.loopers[Right]
	}
	return &s.loopers[Left]
}

// affects reports whether a control aimed at ch reaches looper i. Mono
// mode links the channels.
func (s *StereoLooper) affects(ch Channel, i int) bool {
	return ch == Both || s.conf.Mode == Mono || int(ch) == i
}

// GetState returns the current orchestrator state.
func (s *StereoLooper) GetState() State {
	return s.state
}

func (s *StereoLooper) GetMode() Mode {
	return s.conf.Mode
}

// GetConfig returns the configuration as last set through the controls.
func (s *StereoLooper) GetConfig() Config {
	return s.conf
}

func (s *StereoLooper) GetSampleRate() int {
	return s.sampleRate
}

func (s *StereoLooper) IsStartingUp() bool {
	return s.state == Startup
}

func (s *StereoLooper) IsBuffering() bool {
	return s.state == Buffering
}

func (s *StereoLooper) IsReady() bool {
	return s.state == Ready
}

func (s *StereoLooper) IsRecording() bool {
	return s.state == Recording
}

func (s *StereoLooper) IsFrozen() bool {
	return s.state == Frozen
}

// IsRunning reports whether the loop is playing, recording or frozen.
func (s *StereoLooper) IsRunning() bool {
	return s.state == Recording || s.state == Frozen
}

func (s *StereoLooper) GetTriggerMode() looper.TriggerMode {
	return s.conf.TriggerMode
}

// IsGateMode reports whether playback follows the gate level.
func (s *StereoLooper) IsGateMode() bool {
	return s.conf.TriggerMode == looper.Gate
}

func (s *StereoLooper) GetLoopSync() bool {
	return s.loopSync
}

// GetFilterValue returns the feedback filter control in [0, 1], before
// it is mapped to a cutoff frequency.
func (s *StereoLooper) GetFilterValue() float64 {
	return s.filterValue
}

func (s *StereoLooper) GetFilterType() filter.Type {
	return s.filterType
}

// GetFreeze returns the requested freeze amount, which may be armed before
// the loop starts.
func (s *StereoLooper) GetFreeze() float32 {
	return s.freeze
}

func (s *StereoLooper) GetDryLevel() float32 {
	return s.dryLevel
}

// GetNoteMode returns how the last requested loop length for ch sounds.
func (s *StereoLooper) GetNoteMode(ch Channel) NoteMode {
	if ch == Right {
		return s.noteMode[Right]
	}
	return s.noteMode[Left]
}

// The per-channel getters below read the looper for ch; Both reads the left
// one.

// GetBufferSamples returns the recorded length of the channel in samples.
func (s *StereoLooper) GetBufferSamples(ch Channel) int {
	return s.Looper(ch).GetBufferSamples()
}

func (s *StereoLooper) GetBufferSeconds(ch Channel) float64 {
	return s.Looper(ch).GetBufferSeconds()
}

func (s *StereoLooper) GetLoopStart(ch Channel) int {
	return s.Looper(ch).GetLoopStart()
}

// GetLoopEnd returns the last sample of the loop window, which precedes the
// start when the window wraps.
func (s *StereoLooper) GetLoopEnd(ch Channel) int {
	return s.Looper(ch).GetLoopEnd()
}

func (s *StereoLooper) GetLoopLength(ch Channel) int {
	return s.Looper(ch).GetLoopLength()
}

func (s *StereoLooper) GetLoopStartSeconds(ch Channel) float64 {
	return s.Looper(ch).GetLoopStartSeconds()
}

func (s *StereoLooper) GetLoopLengthSeconds(ch Channel) float64 {
	return s.Looper(ch).GetLoopLengthSeconds()
}

func (s *StereoLooper) GetReadPos(ch Channel) float64 {
	return s.Looper(ch).GetReadPos()
}

func (s *StereoLooper) GetReadPosSeconds(ch Channel) float64 {
	return s.Looper(ch).GetReadPosSeconds()
}

func (s *StereoLooper) GetWritePos(ch Channel) float64 {
	return s.Looper(ch).GetWritePos()
}

func (s *StereoLooper) GetReadRate(ch Channel) float64 {
	return s.Looper(ch).GetReadRate()
}

func (s *StereoLooper) GetWriteRate(ch Channel) float64 {
	return s.Looper(ch).GetWriteRate()
}

func (s *StereoLooper) GetMovement(ch Channel) looper.Movement {
	return s.Looper(ch).GetMovement()
}

func (s *StereoLooper) GetDirection(ch Channel) looper.Direction {
	return s.Looper(ch).GetDirection()
}

func (s *StereoLooper) IsGoingForward(ch Channel) bool {
	return s.Looper(ch).IsGoingForward()
}

// GetCrossPoint returns where the read and write heads of ch will meet.
func (s *StereoLooper) GetCrossPoint(ch Channel) int {
	return s.Looper(ch).GetCrossPoint()
}

// GetHeadsDistance returns the distance from the read head to the write
// head of ch within the loop.
func (s *StereoLooper) GetHeadsDistance(ch Channel) int {
	return s.Looper(ch).GetHeadsDistance()
}

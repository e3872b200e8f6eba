// Package looper implements a single-channel looping engine: a record
// buffer with a frozen snapshot, read and write heads that move through a
// loop window under several movement patterns, and short equal-power fades
// wherever playback would otherwise jump.
//
// All methods are meant to be called from one audio goroutine, once per
// sample. Nothing allocates after Init and every operation is O(1) except
// ClearBuffer.
package looper

import (
	"errors"
	"fmt"

	"github.com/justyntemme/wreath/pkg/dsp"
	"github.com/justyntemme/wreath/pkg/dsp/mix"
	"github.com/justyntemme/wreath/pkg/dsp/utility"
)

// MinSamples is the shortest loop window.
const MinSamples = dsp.MinLoopSamples

var (
	// ErrInvalidSampleRate is returned by Init for a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("invalid sample rate")
	// ErrEmptyBuffer is returned by Init when the buffer cannot hold a minimum loop.
	ErrEmptyBuffer = errors.New("buffer too small")
	// ErrBufferMismatch is returned by Init when the live and frozen buffers differ in size.
	ErrBufferMismatch = errors.New("live and frozen buffers differ in size")
)

// Movement selects how the read head travels through the loop window.
type Movement int

const (
	// Forward plays the window start to end and wraps
	Forward Movement = iota
	// Backwards plays the window end to start and wraps
	Backwards
	// Pendulum bounces between the window boundaries
	Pendulum
	// Random jumps to a random point in the window at every restart
	Random
	// Drunk plays like Forward while its owner occasionally flips the direction
	Drunk
)

var movementNames = [...]string{"Forward", "Backwards", "Pendulum", "Random", "Drunk"}

func (m Movement) String() string {
	if m < 0 || int(m) >= len(movementNames) {
		return "Unknown"
	}
	return movementNames[m]
}

// Direction is the sign of read head travel.
type Direction int

const (
	// DirectionForward moves towards higher buffer indices
	DirectionForward Direction = iota
	// DirectionBackwards moves towards lower buffer indices
	DirectionBackwards
)

func (d Direction) String() string {
	if d == DirectionBackwards {
		return "Backwards"
	}
	return "Forward"
}

// TriggerMode links gate and trigger events to playback.
type TriggerMode int

const (
	// Gate plays only while the gate is open
	Gate TriggerMode = iota
	// Trigger plays the window once per trigger
	Trigger
	// Loop plays continuously
	Loop
)

var triggerModeNames = [...]string{"Gate", "Trigger", "Loop"}

func (t TriggerMode) String() string {
	if t < 0 || int(t) >= len(triggerModeNames) {
		return "Unknown"
	}
	return triggerModeNames[t]
}

type transport int

const (
	stopped transport = iota
	starting
	playing
	stopping
	restarting
)

// Looper is one channel of the looping engine. The zero value is not usable;
// call Init first.
type Looper struct {
	sampleRate int
	buffer     []float32 // live content
	frozen     []float32 // snapshot played while fully frozen
	capacity   int

	bufferSamples int
	bufferSeconds float64

	readPos   float64
	writePos  float64
	readRate  float64
	writeRate float64

	loopStart  int
	loopEnd    int
	loopLength int

	loopSync      bool
	pendingStart  int
	pendingLength int
	hasPending    bool

	movement    Movement
	direction   Direction
	triggerMode TriggerMode
	looping     bool
	reading     bool
	writing     bool
	freeze      float32

	transport   transport
	mustRestart bool

	samplesToFade int
	fadeIndex     int
	fadePos       float64
	mustFadeIn    bool
	mustFadeOut   bool
	fader         *mix.Crossfader

	// Read head travel time, in samples, to the window exit and to the
	// write head, as of the previous position update.
	lastExitTime  float64
	lastCrossTime float64
	crossing      bool

	headsDistance   int
	crossPoint      int
	crossPointFound bool

	rng *utility.Random
}

// Init binds the looper to its two buffers and resets it. The buffers are
// owned by the looper until the next Init and are never resized.
func (l *Looper) Init(sampleRate int, buffer, frozen []float32) error {
	if sampleRate <= 0 {
		return fmt.Errorf("looper init: %d Hz: %w", sampleRate, ErrInvalidSampleRate)
	}
	if len(buffer) < MinSamples {
		return fmt.Errorf("looper init: %d samples: %w", len(buffer), ErrEmptyBuffer)
	}
	if len(frozen) != len(buffer) {
		return fmt.Errorf("looper init: %d != %d: %w", len(frozen), len(buffer), ErrBufferMismatch)
	}

	l.sampleRate = sampleRate
	l.buffer = buffer
	l.frozen = frozen
	l.capacity = len(buffer)
	l.samplesToFade = int(float64(sampleRate) * dsp.DefaultFadeSeconds)
	l.fader = mix.NewCrossfader(mix.EqualPower)
	l.rng = utility.NewRandom(uint64(sampleRate))
	l.Reset()
	return nil
}

// Seed reseeds the random source used by Random movement.
func (l *Looper) Seed(seed uint64) {
	l.rng = utility.NewRandom(seed)
}

// Reset returns the looper to its just-initialized state, ready to buffer
// from index 0. Buffer contents are left in place and overwritten by the
// next buffering pass. The fade length and loop sync settings survive.
func (l *Looper) Reset() {
	l.bufferSamples = 0
	l.bufferSeconds = 0
	l.readPos = 0
	l.writePos = 0
	l.readRate = 1
	l.writeRate = 1
	l.loopStart = 0
	l.loopEnd = 0
	l.loopLength = 0
	l.hasPending = false
	l.movement = Forward
	l.direction = DirectionForward
	l.triggerMode = Loop
	l.looping = true
	l.reading = true
	l.writing = true
	l.freeze = 0
	l.transport = stopped
	l.mustRestart = false
	l.crossing = false
	l.lastExitTime = 0
	l.lastCrossTime = 0
	l.headsDistance = 0
	l.crossPoint = 0
	l.crossPointFound = false
	l.clearFade()
}

// ClearBuffer silences the live content without touching the loop window.
// While fully frozen the snapshot is kept so playback continues.
func (l *Looper) ClearBuffer() {
	dsp.Clear(l.buffer)
	if l.freeze < 1 {
		dsp.Clear(l.frozen)
	}
}

// span is the length of buffer the heads move through: the recorded length,
// floored to a minimum loop.
func (l *Looper) span() int {
	return dsp.ClampInt(l.bufferSamples, MinSamples, l.capacity)
}

// SetMovement changes the movement pattern. Forward and Backwards also set
// the direction.
func (l *Looper) SetMovement(movement Movement) {
	switch movement {
	case Forward:
		l.direction = DirectionForward
	case Backwards:
		l.direction = DirectionBackwards
	}
	l.movement = movement
}

// SetDirection sets the read head direction.
func (l *Looper) SetDirection(direction Direction) {
	l.direction = direction
}

// ToggleDirection reverses the read head.
func (l *Looper) ToggleDirection() {
	if l.direction == DirectionForward {
		l.direction = DirectionBackwards
	} else {
		l.direction = DirectionForward
	}
}

// SetTriggerMode sets the trigger mode. Trigger mode plays the window once
// per trigger, the others loop.
func (l *Looper) SetTriggerMode(mode TriggerMode) {
	l.triggerMode = mode
	l.looping = mode != Trigger
}

// SetLooping sets whether the read head wraps at the window exit or stops.
func (l *Looper) SetLooping(looping bool) {
	l.looping = looping
}

// SetReadRate sets the read head speed multiplier.
func (l *Looper) SetReadRate(rate float64) {
	l.readRate = dsp.Clamp(rate, dsp.MinRate, dsp.MaxRate)
}

// SetWriteRate sets the write head speed multiplier.
func (l *Looper) SetWriteRate(rate float64) {
	l.writeRate = dsp.Clamp(rate, dsp.MinRate, dsp.MaxRate)
}

// SetFreeze sets how much of the live buffer is protected from new writes.
// At 1 writes stop and playback comes from the frozen snapshot.
func (l *Looper) SetFreeze(amount float32) {
	if amount < 0 {
		amount = 0
	} else if amount > 1 {
		amount = 1
	}
	l.freeze = amount
}

// SetReading enables or disables playback output.
func (l *Looper) SetReading(active bool) { l.reading = active }

// SetWriting enables or disables recording into the buffer.
func (l *Looper) SetWriting(active bool) { l.writing = active }

// ToggleReading flips playback output.
func (l *Looper) ToggleReading() { l.reading = !l.reading }

// ToggleWriting flips recording.
func (l *Looper) ToggleWriting() { l.writing = !l.writing }

// SetSamplesToFade sets the fade window used at loop seams and restarts.
func (l *Looper) SetSamplesToFade(samples int) {
	l.samplesToFade = max(samples, 1)
}

// GetFadeSamples returns the fade window, limited to half the loop.
func (l *Looper) GetFadeSamples() int {
	return max(min(l.samplesToFade, l.loopLength/2), 1)
}

func (l *Looper) seconds(samples float64) float64 {
	return samples / float64(l.sampleRate)
}

func (l *Looper) GetSampleRate() int {
	return l.sampleRate
}

// GetCapacity returns the size of the caller supplied buffer, in samples.
func (l *Looper) GetCapacity() int {
	return l.capacity
}

// GetBufferSamples returns how many samples were recorded while buffering.
func (l *Looper) GetBufferSamples() int {
	return l.bufferSamples
}

func (l *Looper) GetBufferSeconds() float64 {
	return l.bufferSeconds
}

func (l *Looper) GetLoopStart() int {
	return l.loopStart
}

// GetLoopEnd returns the last sample of the loop window. It is lower than
// the loop start when the window wraps past the end of the recording.
func (l *Looper) GetLoopEnd() int {
	return l.loopEnd
}

func (l *Looper) GetLoopLength() int {
	return l.loopLength
}

// GetReadPos returns the fractional read head position, in samples.
func (l *Looper) GetReadPos() float64 {
	return l.readPos
}

func (l *Looper) GetWritePos() float64 {
	return l.writePos
}

func (l *Looper) GetReadRate() float64 {
	return l.readRate
}

func (l *Looper) GetWriteRate() float64 {
	return l.writeRate
}

func (l *Looper) GetMovement() Movement {
	return l.movement
}

func (l *Looper) GetDirection() Direction {
	return l.direction
}

func (l *Looper) GetTriggerMode() TriggerMode {
	return l.triggerMode
}

// GetFreeze returns the freeze amount: 0 records, 1 keeps the buffer.
func (l *Looper) GetFreeze() float32 {
	return l.freeze
}

// GetLoopSync reports whether window changes wait for the read head to
// reach a loop boundary.
func (l *Looper) GetLoopSync() bool {
	return l.loopSync
}

// GetHeadsDistance returns how many samples the read head trails the write
// head within the loop, measured in the read direction.
func (l *Looper) GetHeadsDistance() int {
	return l.headsDistance
}

// GetCrossPoint returns the buffer position where the heads will next meet.
// It is only meaningful when CrossPointFound is true.
func (l *Looper) GetCrossPoint() int {
	return l.crossPoint
}

// CrossPointFound reports whether the heads are closing in on each other at
// the current rates, so that GetCrossPoint holds a meeting position.
func (l *Looper) CrossPointFound() bool {
	return l.crossPointFound
}

func (l *Looper) IsGoingForward() bool {
	return l.direction == DirectionForward
}

// IsDrunkMovement reports whether the read head wanders randomly.
func (l *Looper) IsDrunkMovement() bool {
	return l.movement == Drunk
}

// IsLooping reports whether playback wraps at the loop end rather than
// stopping after one pass.
func (l *Looper) IsLooping() bool {
	return l.looping
}

func (l *Looper) IsReading() bool {
	return l.reading
}

func (l *Looper) IsWriting() bool {
	return l.writing
}

// IsFading reports whether a fade in or fade out is pending or running.
func (l *Looper) IsFading() bool {
	return l.mustFadeIn || l.mustFadeOut
}

// IsPlaying reports whether the transport is anywhere but stopped,
// including while it fades out.
func (l *Looper) IsPlaying() bool {
	return l.transport != stopped
}

// IsStopping reports whether a stop was requested and the output is fading
// out; the transport stops once the fade completes.
func (l *Looper) IsStopping() bool {
	return l.transport == stopping
}

// GetLoopStartSeconds and the other Seconds getters convert sample values
// using the looper sample rate.
func (l *Looper) GetLoopStartSeconds() float64 {
	return l.seconds(float64(l.loopStart))
}

func (l *Looper) GetLoopLengthSeconds() float64 {
	return l.seconds(float64(l.loopLength))
}

func (l *Looper) GetReadPosSeconds() float64 {
	return l.seconds(l.readPos)
}

func (l *Looper) GetWritePosSeconds() float64 {
	return l.seconds(l.writePos)
}

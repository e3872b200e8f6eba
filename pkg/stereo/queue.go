package stereo

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrQueueFull is returned by Push when the audio goroutine has fallen behind.
var ErrQueueFull = errors.New("command queue full")

// CommandKind names what a Command does.
type CommandKind int

const (
	// CommandSetControl sets the control with ID to Value on Channel
	CommandSetControl CommandKind = iota
	// CommandStart starts playback from Ready
	CommandStart
	// CommandStopBuffering ends the first recording pass
	CommandStopBuffering
	// CommandReset records a new buffer
	CommandReset
	// CommandClear silences the recorded material
	CommandClear
	// CommandRetrigger restarts playback from the loop entry
	CommandRetrigger
	// CommandGate opens the gate when Value > 0 and closes it otherwise
	CommandGate
	// CommandToggleFreeze flips between frozen and recording
	CommandToggleFreeze
	// CommandToggleDirection reverses the read direction of Channel
	CommandToggleDirection
	// CommandNudgeLoopLength changes the loop length of Channel by Value samples
	CommandNudgeLoopLength
	// CommandOffsetLoopers places the right read head Value samples after the left
	CommandOffsetLoopers
)

var commandNames = [...]string{
	CommandSetControl:      "SetControl",
	CommandStart:           "Start",
	CommandStopBuffering:   "StopBuffering",
	CommandReset:           "Reset",
	CommandClear:           "Clear",
	CommandRetrigger:       "Retrigger",
	CommandGate:            "Gate",
	CommandToggleFreeze:    "ToggleFreeze",
	CommandToggleDirection: "ToggleDirection",
	CommandNudgeLoopLength: "NudgeLoopLength",
	CommandOffsetLoopers:   "OffsetLoopers",
}

func (k CommandKind) String() string {
	if k < 0 || int(k) >= len(commandNames) {
		return "Unknown"
	}
	return commandNames[k]
}

// Command is one control change crossing from a control goroutine to the
// audio goroutine.
type Command struct {
	Kind    CommandKind
	Channel Channel
	ID      uint32
	Value   float64
}

// CommandQueue is a fixed-capacity lock-free ring for exactly one producer
// and one consumer goroutine. Neither side blocks or allocates.
type CommandQueue struct {
	data []Command
	mask uint64

	readPos  atomic.Uint64
	writePos atomic.Uint64

	overruns atomic.Uint64
}

// NewCommandQueue creates a queue holding at least capacity commands.
func NewCommandQueue(capacity int) *CommandQueue {
	size := nextPowerOf2(uint64(max(capacity, 1)))
	return &CommandQueue{
		data: make([]Command, size),
		mask: size - 1,
	}
}

func nextPowerOf2(n uint64) uint64 {
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}

// Push adds a command. It fails with ErrQueueFull instead of overwriting
// commands the consumer has not read.
func (q *CommandQueue) Push(c Command) error {
	w := q.writePos.Load()
	if w-q.readPos.Load() >= uint64(len(q.data)) {
		q.overruns.Add(1)
		return ErrQueueFull
	}
	q.data[w&q.mask] = c
	q.writePos.Store(w + 1)
	return nil
}

// Pop removes the oldest command.
func (q *CommandQueue) Pop() (Command, bool) {
	r := q.readPos.Load()
	if r == q.writePos.Load() {
		return Command{}, false
	}
	c := q.data[r&q.mask]
	q.readPos.Store(r + 1)
	return c, true
}

// Len returns the number of queued commands.
func (q *CommandQueue) Len() int {
	return int(q.writePos.Load() - q.readPos.Load())
}

// Cap returns the queue capacity.
func (q *CommandQueue) Cap() int {
	return len(q.data)
}

// Overruns returns how many pushes failed because the queue was full.
func (q *CommandQueue) Overruns() uint64 {
	return q.overruns.Load()
}

// Apply drains q into the looper. Call it from the audio goroutine between
// Process calls. It returns the number of commands applied and the error of
// the first one that failed.
func (s *StereoLooper) Apply(q *CommandQueue) (int, error) {
	var n int
	var first error
	for {
		c, ok := q.Pop()
		if !ok {
			return n, first
		}
		if err := s.Execute(c); err != nil {
			if first == nil {
				first = err
			}
			continue
		}
		n++
	}
}

// Execute carries out a single command.
func (s *StereoLooper) Execute(c Command) error {
	if s.sampleRate == 0 {
		return ErrNotInitialized
	}
	switch c.Kind {
	case CommandSetControl:
		return s.SetControl(c.ID, c.Channel, c.Value)
	case CommandStart:
		s.Start()
	case CommandStopBuffering:
		s.StopBuffering()
	case CommandReset:
		s.Reset()
	case CommandClear:
		s.ClearBuffer()
	case CommandRetrigger:
		s.Trigger()
	case CommandGate:
		s.Gate(c.Value > 0)
	case CommandToggleFreeze:
		s.ToggleFreeze()
	case CommandToggleDirection:
		s.ToggleDirection(c.Channel)
	case CommandNudgeLoopLength:
		s.NudgeLoopLength(c.Channel, int(c.Value))
	case CommandOffsetLoopers:
		s.OffsetLoopers(c.Value)
	default:
		return fmt.Errorf("command kind %d: %w", c.Kind, ErrUnknownCommand)
	}
	return nil
}

// ErrUnknownCommand is returned by Execute for an unknown CommandKind.
var ErrUnknownCommand = errors.New("unknown command")

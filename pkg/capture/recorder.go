// Package capture records the edges of two GPIO lines into traces that can
// be decoded while the capture goes on.
package capture

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/womat/debug"
	"rffedec/pkg/port"
	"rffedec/pkg/trace"
)

var (
	// ErrUnsupported is returned by sources that are not available on this platform.
	ErrUnsupported = errors.New("capture source not supported on this platform")
	// ErrInvalidParam is returned for an unknown terminator or line.
	ErrInvalidParam = errors.New("invalid parameters")
)

// Source is a running capture.
type Source interface {
	// Now returns the current time in the time base of the event timestamps.
	Now() time.Duration
	Close() error
}

// Recorder converts line events into trace edges. Timestamps are taken
// relative to the first event and quantized to the sample rate.
// It is safe for concurrent use.
type Recorder struct {
	sync.Mutex
	sampleRate uint32
	names      []string
	levels     []port.StateType

	t *trace.Trace
	// origin is the timestamp of sample 0 of t
	origin  time.Duration
	started bool
	// last is the newest event timestamp
	last time.Duration
}

// NewRecorder returns a recorder for the named lines, all starting at level initial.
func NewRecorder(sampleRate uint32, initial []port.StateType, names ...string) *Recorder {
	r := &Recorder{
		sampleRate: sampleRate,
		names:      names,
		levels:     make([]port.StateType, len(names)),
	}
	for i := range r.levels {
		r.levels[i] = port.Low
		if i < len(initial) {
			r.levels[i] = initial[i]
		}
	}
	r.reset()
	return r
}

func (r *Recorder) reset() {
	r.t = trace.New(r.sampleRate, r.names...)
	for i, c := range r.t.Channels {
		c.Initial = r.levels[i]
	}
	r.started = false
}

// SetLevel sets the level of line before the first event is recorded.
func (r *Recorder) SetLevel(line int, v port.StateType) {
	r.Lock()
	defer r.Unlock()

	if r.started || line < 0 || line >= len(r.levels) {
		return
	}
	r.levels[line] = v
	r.t.Channels[line].Initial = v
}

// samples converts a duration to samples, rounded to the nearest sample.
func (r *Recorder) samples(d time.Duration) uint64 {
	return uint64(math.Round(d.Seconds() * float64(r.sampleRate)))
}

// Add records event ev on line. Edges that map to a sample at or before the
// previous edge of the line are moved to the next free sample.
func (r *Recorder) Add(line int, ev port.Event) error {
	r.Lock()
	defer r.Unlock()

	if line < 0 || line >= len(r.levels) {
		return fmt.Errorf("%w: line %d", ErrInvalidParam, line)
	}

	v := ev.Type.State()
	if v == port.Invalid {
		return fmt.Errorf("%w: event type %d", ErrInvalidParam, ev.Type)
	}
	if v == r.levels[line] {
		debug.TraceLog.Printf("line %s: repeated level %v dropped", r.names[line], v)
		return nil
	}

	if !r.started {
		r.origin = ev.Timestamp
		r.started = true
	}
	if ev.Timestamp > r.last {
		r.last = ev.Timestamp
	}

	var s uint64
	if ev.Timestamp > r.origin {
		s = r.samples(ev.Timestamp - r.origin)
	}

	c := r.t.Channels[line]
	if n := len(c.Edges); n > 0 && s <= c.Edges[n-1] {
		s = c.Edges[n-1] + 1
	}
	r.levels[line] = v
	return c.Toggle(s)
}

// Flush returns the recorded trace and starts a new one if no event came
// in for at least quiet before now. Otherwise it returns nil.
func (r *Recorder) Flush(now, quiet time.Duration) *trace.Trace {
	r.Lock()
	defer r.Unlock()

	if !r.started || now-r.last < quiet {
		return nil
	}

	t := r.t
	t.Samples = r.samples(now-r.origin) + 1
	r.reset()
	return t
}

func checkTerminator(terminator string) error {
	switch terminator {
	case "pullup", "pulldown", "none":
		return nil
	default:
		return fmt.Errorf("%w: terminator %q", ErrInvalidParam, terminator)
	}
}

// Pending returns the number of edges recorded since the last flush.
func (r *Recorder) Pending() int {
	r.Lock()
	defer r.Unlock()

	n := 0
	for _, c := range r.t.Channels {
		n += len(c.Edges)
	}
	return n
}

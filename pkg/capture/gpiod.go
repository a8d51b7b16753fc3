//go:build linux

package capture

import (
	"time"

	"github.com/warthog618/gpiod"
	"github.com/womat/debug"
	"golang.org/x/sys/unix"
	"rffedec/pkg/port"
)

// Chip captures lines of a GPIO character device. Event timestamps are
// taken by the kernel.
type Chip struct {
	gpiodChip *gpiod.Chip
	lines     []*gpiod.Line
}

// OpenChip opens the GPIO character device name and watches the line
// offsets for edges. The edges of offsets[i] are recorded as line i of rec.
func OpenChip(name string, offsets []int, terminator string, rec *Recorder) (*Chip, error) {
	if err := checkTerminator(terminator); err != nil {
		return nil, err
	}

	c, err := gpiod.NewChip(name)
	if err != nil {
		return nil, err
	}
	chip := &Chip{gpiodChip: c}

	for i, offset := range offsets {
		line, offset := i, offset
		handler := func(evt gpiod.LineEvent) {
			ev := port.Event{Timestamp: evt.Timestamp, Type: port.FallingEdge}
			if evt.Type == gpiod.LineEventRisingEdge {
				ev.Type = port.RisingEdge
			}
			if err := rec.Add(line, ev); err != nil {
				debug.ErrorLog.Printf("line %d: %v", offset, err)
			}
		}

		opts := []gpiod.LineReqOption{gpiod.WithEventHandler(handler), gpiod.WithBothEdges, gpiod.AsInput}
		switch terminator {
		case "pullup":
			opts = append(opts, gpiod.WithPullUp)
		case "pulldown":
			opts = append(opts, gpiod.WithPullDown)
		}

		l, err := c.RequestLine(offset, opts...)
		if err != nil {
			_ = chip.Close()
			return nil, err
		}
		chip.lines = append(chip.lines, l)

		v, err := l.Value()
		if err != nil {
			_ = chip.Close()
			return nil, err
		}
		rec.SetLevel(line, port.StateType(v))
		debug.DebugLog.Printf("gpio line %d requested as %s, level %d", offset, rec.names[line], v)
	}

	return chip, nil
}

// Now returns the monotonic clock the kernel stamps line events with.
func (c *Chip) Now() time.Duration {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return time.Duration(ts.Nano())
}

// Close releases all lines and the chip.
//
// Closing a line waits for its running event handler to return, so Close
// must not be called from an event handler.
func (c *Chip) Close() error {
	for _, l := range c.lines {
		if err := l.Close(); err != nil {
			debug.ErrorLog.Println(err)
		}
	}
	return c.gpiodChip.Close()
}

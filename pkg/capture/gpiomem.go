//go:build linux

package capture

import (
	"time"

	"github.com/warthog618/gpio"
	"github.com/womat/debug"
	"rffedec/pkg/port"
)

// Mem captures BCM GPIO pins through the /dev/gpiomem register window.
// Edges are stamped when the watcher sees them, which is less precise
// than a character device.
type Mem struct {
	pins  []*gpio.Pin
	start time.Time
}

// OpenMem maps GPIO memory and watches the BCM pins for edges. The edges
// of pins[i] are recorded as line i of rec.
func OpenMem(pins []int, terminator string, rec *Recorder) (*Mem, error) {
	if err := checkTerminator(terminator); err != nil {
		return nil, err
	}

	if err := gpio.Open(); err != nil {
		return nil, err
	}
	m := &Mem{start: time.Now()}

	for i, p := range pins {
		line := i
		pin := gpio.NewPin(p)
		pin.Input()
		switch terminator {
		case "pullup":
			pin.PullUp()
		case "pulldown":
			pin.PullDown()
		}

		rec.SetLevel(line, level(pin))

		handler := func(pin *gpio.Pin) {
			ev := port.Event{Timestamp: time.Since(m.start), Type: port.FallingEdge}
			if level(pin) == port.High {
				ev.Type = port.RisingEdge
			}
			if err := rec.Add(line, ev); err != nil {
				debug.ErrorLog.Printf("pin %d: %v", pin.Pin(), err)
			}
		}
		if err := pin.Watch(gpio.EdgeBoth, handler); err != nil {
			_ = m.Close()
			return nil, err
		}
		m.pins = append(m.pins, pin)
	}

	return m, nil
}

func level(p *gpio.Pin) port.StateType {
	if p.Read() {
		return port.High
	}
	return port.Low
}

// Now returns the time since the capture was opened.
func (m *Mem) Now() time.Duration {
	return time.Since(m.start)
}

// Close removes the watchers and unmaps GPIO memory.
func (m *Mem) Close() error {
	for _, p := range m.pins {
		p.Unwatch()
	}
	return gpio.Close()
}

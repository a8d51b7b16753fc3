package rffe

import (
	"github.com/womat/debug"
	"rffedec/pkg/port"
	"rffedec/pkg/trace"
)

// findStart scans for a sequence start condition: a data pulse while the
// clock stays low, followed by a clock idle time at least as long as the
// pulse. Rejected candidates are skipped. On success both cursors are at
// the first rising clock edge of the slave address.
func (p *pass) findStart() (Frame, error) {
	for {
		if !p.clk.MoreTransitions() || !p.data.MoreTransitions() {
			return Frame{}, trace.ErrEndOfStream
		}

		p.clk.AdvanceTo(p.data.Sample())
		if p.data.State() != port.High || p.clk.State() != port.Low {
			if err := p.data.AdvanceToNextEdge(); err != nil {
				return Frame{}, err
			}
			continue
		}

		up := p.data.Sample()
		if err := p.data.AdvanceToNextEdge(); err != nil {
			return Frame{}, err
		}
		dn := p.data.Sample()

		if p.clk.WouldTransitionBy(dn) {
			debug.TraceLog.Printf("start candidate %d..%d rejected: clock toggles during the pulse", up, dn)
			continue
		}
		p.clk.AdvanceTo(dn)

		next, err := p.clk.NextEdge()
		if err != nil {
			return Frame{}, err
		}
		if width, idle := dn-up, next-dn; idle < width {
			debug.TraceLog.Printf("start candidate %d..%d rejected: clock idle %d shorter than pulse %d", up, dn, idle, width)
			continue
		}

		// rising edge of the first slave address bit
		if err = p.clk.AdvanceToNextEdge(); err != nil {
			return Frame{}, err
		}
		sync := p.clk.Sample()
		p.data.AdvanceTo(sync)
		p.ones = 0

		return Frame{
			Kind:    FrameStart,
			Start:   up,
			End:     sync,
			Markers: []Marker{{Clock: up, Data: up, State: port.High, Type: MarkerStart}},
		}, nil
	}
}

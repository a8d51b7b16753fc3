package rffe

import (
	"github.com/womat/debug"
	"rffedec/pkg/port"
)

// busParkSlack is the number of samples a clock edge may come late and
// still count as the end of the park cycle.
const busParkSlack = 2

type busPark struct {
	rise, fall, end uint64
	// level is the data line at the falling edge
	level  port.StateType
	landed bool
}

// resolveBusPark walks one bus park cycle from the rising clock edge at the
// cursor. The high phase gives the half period; if the clock rises again
// within a half period (plus slack) after the falling edge, the park ends on
// that edge. Otherwise the park is taken as one nominal bit period.
func (p *pass) resolveBusPark() (busPark, error) {
	bp := busPark{rise: p.clk.Sample()}

	if err := p.clk.AdvanceToNextEdge(); err != nil {
		return bp, err
	}
	bp.fall = p.clk.Sample()
	p.data.AdvanceTo(bp.fall)
	bp.level = p.data.State()
	p.ones = 0

	delta := bp.fall - bp.rise
	if p.clk.WouldTransitionWithin(delta + busParkSlack) {
		if err := p.clk.AdvanceToNextEdge(); err != nil {
			return bp, err
		}
		bp.end = p.clk.Sample()
		p.data.AdvanceTo(bp.end)
		bp.landed = true
		return bp, nil
	}

	bp.end = bp.fall + delta + busParkSlack
	if p.clk.MoreTransitions() {
		p.clk.AdvanceTo(bp.end)
		p.data.AdvanceTo(bp.end)
	}
	return bp, nil
}

// terminalBusPark closes a transaction.
func (p *pass) terminalBusPark() error {
	bp, err := p.resolveBusPark()
	if err != nil {
		return err
	}

	p.emitBusPark(bp, BusParkTerminal)
	return nil
}

// turnaroundBusPark hands the bus to the slave before a read data phase.
// A slave may need one more park cycle before it drives data; if the park
// did not end on a clock edge the cursors move on to the next one.
func (p *pass) turnaroundBusPark() error {
	bp, err := p.resolveBusPark()
	if err != nil {
		return err
	}

	if !bp.landed && p.clk.MoreTransitions() {
		if err = p.clk.AdvanceToNextEdge(); err != nil {
			return err
		}
		p.data.AdvanceTo(p.clk.Sample())
		debug.TraceLog.Printf("turnaround %d..%d extended to clock edge %d", bp.rise, bp.end, p.clk.Sample())
	}

	p.emitBusPark(bp, BusParkTurnaround)
	return nil
}

func (p *pass) emitBusPark(bp busPark, role uint64) {
	f := Frame{
		Kind:      FrameBusPark,
		Secondary: role,
		Start:     bp.rise,
		End:       bp.end,
		Markers:   []Marker{{Clock: bp.rise, Data: bp.fall, State: bp.level, Type: MarkerStop}},
	}
	if bp.landed {
		f.Primary = 1
	}
	p.emit(f)
}

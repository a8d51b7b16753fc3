package rffe

import (
	"rffedec/pkg/port"
)

// bits is the result of one multi bit read.
type bits struct {
	value   uint64
	markers []Marker
	// clocks holds the rising edge of every bit and the rising edge after the last bit.
	clocks []uint64
}

// frame returns a frame over the bits [from, to).
func (b bits) frame(kind FrameKind, primary, secondary uint64, from, to int) Frame {
	return Frame{
		Kind:      kind,
		Primary:   primary,
		Secondary: secondary,
		Start:     b.clocks[from],
		End:       b.clocks[to],
		Markers:   b.markers[from:to:to],
	}
}

// readBit reads one bit. The clock cursor must be at a rising edge; the bit
// is the data level at the following falling edge. The clock cursor ends on
// the next rising edge.
func (p *pass) readBit() (Marker, error) {
	m := Marker{Clock: p.clk.Sample(), Type: MarkerBit}

	if err := p.clk.AdvanceToNextEdge(); err != nil {
		return m, err
	}

	m.Data = p.clk.Sample()
	p.data.AdvanceTo(m.Data)
	m.State = p.data.State()

	return m, p.clk.AdvanceToNextEdge()
}

// readBits reads n bits MSB first and adds the high bits to the parity accumulator.
func (p *pass) readBits(n int) (bits, error) {
	b := bits{
		markers: make([]Marker, 0, n),
		clocks:  make([]uint64, 0, n+1),
	}

	for i := 0; i < n; i++ {
		m, err := p.readBit()
		if err != nil {
			return b, err
		}

		b.value <<= 1
		if m.State == port.High {
			b.value |= 1
			p.ones++
		}
		b.markers = append(b.markers, m)
		b.clocks = append(b.clocks, m.Clock)
	}

	b.clocks = append(b.clocks, p.clk.Sample())
	return b, nil
}

// readParity reads the parity bit that follows a command word or a byte.
// The bit is captured as is, it is not checked against the accumulator.
func (p *pass) readParity(fromCommand bool) error {
	ones := p.ones

	m, err := p.readBit()
	if err != nil {
		return err
	}

	end := p.clk.Sample()
	p.data.AdvanceTo(end)

	f := Frame{
		Kind:    FrameParity,
		Start:   m.Clock,
		End:     end,
		Ones:    ones,
		Markers: []Marker{m},
	}
	if m.State == port.High {
		f.Primary = 1
	}
	if fromCommand {
		f.Secondary = 1
	}

	p.emit(f)
	return nil
}

// readByte reads an address or data byte followed by its parity bit.
func (p *pass) readByte(kind FrameKind, secondary uint64) error {
	b, err := p.readBits(byteBits)
	if err != nil {
		return err
	}

	p.emit(b.frame(kind, b.value, secondary, 0, byteBits))
	return p.readParity(false)
}

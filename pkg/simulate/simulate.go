// Package simulate generates SCLK/SDATA traces of RFFE transactions.
//
// Every bit takes four quarter periods: SCLK rises, SDATA changes one
// quarter later, SCLK falls at half period and stays low for the second
// half. The generated traces are the known good input of the decoder tests
// and of the simulate command.
package simulate

import (
	"errors"
	"fmt"

	"rffedec/pkg/port"
	"rffedec/pkg/rffe"
	"rffedec/pkg/trace"
)

// ErrBitPeriod is returned if the sample rate can't resolve a quarter bit period.
var ErrBitPeriod = errors.New("sample rate must be at least 4 times the bit rate")

const (
	// idleBits is the bus idle time inserted after every transaction.
	idleBits = 10
)

// Transaction describes one transaction to generate. The command byte
// selects the shape; Address and Data are used as far as the shape needs.
type Transaction struct {
	SlaveAddress byte
	Command      byte
	// Address is the register address, 16 bit for long commands (hi byte first).
	Address uint16
	// Data holds the data bytes; missing bytes are sent as 0.
	Data []byte
	// Turnaround is the number of extra bit periods the slave waits after
	// the turnaround bus park before it drives read data.
	Turnaround int
}

// Generator writes transactions into a two channel trace.
type Generator struct {
	t    *trace.Trace
	clk  *trace.Channel
	data *trace.Channel
	// now is the current sample.
	now uint64
	// quarter is a quarter bit period in samples.
	quarter uint64
	// ones counts the high bits since the last parity bit.
	ones int
	err  error
}

// New returns a generator with both lines low for 10 bit periods.
func New(sampleRate, bitRate uint32, clockName, dataName string) (*Generator, error) {
	if bitRate == 0 || uint64(sampleRate) < rffe.MinimumSampleRate(bitRate) {
		return nil, fmt.Errorf("%w: %d < 4 * %d", ErrBitPeriod, sampleRate, bitRate)
	}

	t := trace.New(sampleRate, clockName, dataName)
	g := &Generator{
		t:       t,
		clk:     t.Channels[0],
		data:    t.Channels[1],
		quarter: uint64(sampleRate/bitRate) / 4,
	}

	g.Idle(idleBits)
	return g, nil
}

// BitPeriod returns the bit period in samples.
func (g *Generator) BitPeriod() uint64 {
	return 4 * g.quarter
}

// Now returns the current sample.
func (g *Generator) Now() uint64 {
	return g.now
}

// Trace returns the generated trace.
func (g *Generator) Trace() (*trace.Trace, error) {
	g.t.Samples = g.now + 1
	return g.t, g.err
}

// Idle keeps both lines unchanged for n bit periods.
func (g *Generator) Idle(n int) {
	g.now += uint64(n) * g.BitPeriod()
}

func (g *Generator) wait(quarters int) {
	g.now += uint64(quarters) * g.quarter
}

func (g *Generator) drive(ch *trace.Channel, v port.StateType) {
	if err := ch.Set(g.now, v); err != nil && g.err == nil {
		g.err = err
	}
}

// Start generates a sequence start condition: both lines low for one bit
// period, a one bit period SDATA pulse and one more idle bit period.
func (g *Generator) Start() {
	g.drive(g.clk, port.Low)
	g.drive(g.data, port.Low)
	g.wait(4)

	g.drive(g.data, port.High)
	g.wait(4)
	g.drive(g.data, port.Low)
	g.wait(4)

	g.ones = 0
}

// bit clocks out one data bit.
func (g *Generator) bit(v port.StateType) {
	g.drive(g.clk, port.High)
	g.wait(1)
	g.drive(g.data, v)
	g.wait(1)
	g.drive(g.clk, port.Low)
	g.wait(2)
}

// Bits clocks out the n low bits of v, MSB first.
func (g *Generator) Bits(v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		if v>>uint(i)&1 == 1 {
			g.ones++
			g.bit(port.High)
			continue
		}
		g.bit(port.Low)
	}
}

// Byte clocks out b followed by its parity bit.
func (g *Generator) Byte(b byte) {
	g.Bits(uint64(b), 8)
	g.Parity()
}

// Parity clocks out the odd parity bit of the bits since the last parity bit.
func (g *Generator) Parity() {
	if g.ones%2 == 0 {
		g.bit(port.High)
	} else {
		g.bit(port.Low)
	}
	g.ones = 0
}

// BusPark clocks out one bus park cycle with SDATA driven low.
func (g *Generator) BusPark() {
	g.bit(port.Low)
	g.ones = 0
}

// Glitch generates an SDATA pulse while SCLK is high.
func (g *Generator) Glitch() {
	g.drive(g.clk, port.High)
	g.wait(1)
	g.drive(g.data, port.High)
	g.wait(1)
	g.drive(g.data, port.Low)
	g.drive(g.clk, port.Low)
	g.wait(2)
}

// ClockedPulse generates an SDATA pulse with SCLK toggling inside it.
func (g *Generator) ClockedPulse() {
	g.drive(g.data, port.High)
	g.wait(1)
	g.drive(g.clk, port.High)
	g.wait(1)
	g.drive(g.clk, port.Low)
	g.wait(1)
	g.drive(g.data, port.Low)
	g.wait(4)
}

// ShortIdle generates an SDATA pulse followed by a clock pulse that comes
// sooner than the pulse width.
func (g *Generator) ShortIdle() {
	g.drive(g.data, port.High)
	g.wait(4)
	g.drive(g.data, port.Low)
	g.wait(1)
	g.drive(g.clk, port.High)
	g.wait(2)
	g.drive(g.clk, port.Low)
	g.wait(4)
}

// Transaction generates one complete transaction followed by bus idle.
func (g *Generator) Transaction(tx Transaction) {
	c := rffe.Classify(tx.Command)

	g.Start()
	g.Bits(uint64(tx.SlaveAddress&0x0F)<<8|uint64(tx.Command), 12)
	g.Parity()

	data := func() {
		for i := 0; i < c.Count; i++ {
			var b byte
			if i < len(tx.Data) {
				b = tx.Data[i]
			}
			g.Byte(b)
		}
	}
	turnaround := func() {
		g.BusPark()
		g.Idle(tx.Turnaround)
	}

	switch c.Kind {
	case rffe.Reserved:
		g.Idle(idleBits)
		return
	case rffe.ExtendedWrite:
		g.Byte(byte(tx.Address))
		data()
	case rffe.ExtendedRead:
		g.Byte(byte(tx.Address))
		turnaround()
		data()
	case rffe.ExtendedLongWrite:
		g.Byte(byte(tx.Address >> 8))
		g.Byte(byte(tx.Address))
		data()
	case rffe.ExtendedLongRead:
		g.Byte(byte(tx.Address >> 8))
		g.Byte(byte(tx.Address))
		turnaround()
		data()
	case rffe.NormalWrite:
		data()
	case rffe.NormalRead:
		turnaround()
		data()
	}

	g.BusPark()
	g.Idle(idleBits)
}

// Demo generates a sweep over all transaction kinds for two slave addresses.
func (g *Generator) Demo() {
	commands := []byte{
		0x00, 0x07, 0x0F,
		0x10, 0x1B, 0x1F,
		0x20, 0x23, 0x2F,
		0x30, 0x36, 0x37,
		0x38, 0x3D, 0x3F,
		0x40, 0x43, 0x55, 0x5F,
		0x60, 0x64, 0x78, 0x7F,
		0x80, 0x91, 0xA3, 0xBC, 0xC1, 0xD9, 0xEF, 0xF2, 0xFF,
	}

	for _, sa := range []byte{0x5, 0x7} {
		for _, cmd := range commands {
			g.Transaction(demoTransaction(sa, cmd))
		}
	}
}

func demoTransaction(sa, cmd byte) Transaction {
	tx := Transaction{SlaveAddress: sa, Command: cmd}
	counting := func(first byte) []byte {
		b := make([]byte, rffe.ByteCount(cmd))
		for i := range b {
			b[i] = first + byte(i)
		}
		return b
	}

	switch rffe.Classify(cmd).Kind {
	case rffe.ExtendedWrite:
		tx.Address, tx.Data = 0xBC, counting(0x40)
	case rffe.ExtendedRead:
		tx.Address, tx.Data = 0x9A, counting(0x30)
	case rffe.ExtendedLongWrite:
		tx.Address, tx.Data = 0x5678, counting(0x10)
	case rffe.ExtendedLongRead:
		tx.Address, tx.Data = 0x1234, counting(0x10)
	case rffe.NormalWrite:
		tx.Data = []byte{0x81}
	case rffe.NormalRead:
		tx.Data = []byte{0x2C}
	}
	return tx
}

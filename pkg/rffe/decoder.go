// Package rffe recovers RFFE bus transactions from a clock (SCLK) and a
// data (SDATA) channel.
//
// A decode pass walks both channels once, strictly forward: it looks for a
// sequence start condition, reads the slave address and command word,
// classifies the command and then follows the frame script of the
// transaction kind. Every transaction becomes one packet in the sink.
package rffe

import (
	"context"
	"errors"

	"github.com/womat/debug"
	"rffedec/pkg/trace"
)

// step is one element of a transaction script.
type step int

const (
	stepAddress step = iota
	stepAddressHi
	stepAddressLo
	stepTurnaround
	// stepPayload reads the announced number of data bytes, each with its parity.
	stepPayload
	stepBusPark
)

// scripts lists the frame script that follows the command parity bit.
var scripts = [...][]step{
	ExtendedWrite:     {stepAddress, stepPayload, stepBusPark},
	Reserved:          nil,
	ExtendedRead:      {stepAddress, stepTurnaround, stepPayload, stepBusPark},
	ExtendedLongWrite: {stepAddressHi, stepAddressLo, stepPayload, stepBusPark},
	ExtendedLongRead:  {stepAddressHi, stepAddressLo, stepTurnaround, stepPayload, stepBusPark},
	NormalWrite:       {stepPayload, stepBusPark},
	NormalRead:        {stepTurnaround, stepPayload, stepBusPark},
	ShortWrite:        {stepBusPark},
}

// pass is the state of one decode pass. It is owned by Run.
type pass struct {
	clk  *trace.Cursor
	data *trace.Cursor
	sink PacketSink
	// ones is the parity accumulator: high bits since the last start or bus park.
	ones int
}

// Run decodes transactions from the clock and data cursors into sink until
// the channels run out of edges. It returns nil at the end of the stream and
// the context error if ctx is canceled; ctx is checked between packets only.
func Run(ctx context.Context, clk, data *trace.Cursor, sink PacketSink) error {
	p := &pass{clk: clk, data: data, sink: sink}

	for {
		err := p.transaction()
		if errors.Is(err, trace.ErrEndOfStream) {
			return nil
		}
		if err != nil {
			return err
		}

		if err = ctx.Err(); err != nil {
			return err
		}
	}
}

// Decode runs a decode pass over two channels of t and returns the committed packets.
func Decode(ctx context.Context, t *trace.Trace, clockID, dataID string) ([]Packet, error) {
	clk, err := t.Channel(clockID)
	if err != nil {
		return nil, err
	}
	data, err := t.Channel(dataID)
	if err != nil {
		return nil, err
	}

	c := &Collector{}
	err = Run(ctx, trace.NewCursor(clk), trace.NewCursor(data), c)
	return c.Packets, err
}

// transaction decodes one packet. A packet that runs into the end of the
// stream is canceled.
func (p *pass) transaction() error {
	err := p.frames()
	if err != nil {
		p.sink.CancelPacket()
		return err
	}

	p.sink.CommitPacket()
	return nil
}

func (p *pass) frames() error {
	start, err := p.findStart()
	if err != nil {
		return err
	}
	p.emit(start)

	c, err := p.command()
	if err != nil {
		return err
	}

	if c.Kind == Reserved {
		debug.DebugLog.Printf("reserved command at sample %d", start.Start)
		return nil
	}

	if err = p.readParity(true); err != nil {
		return err
	}

	for _, s := range scripts[c.Kind] {
		if err = p.step(s, c); err != nil {
			return err
		}
	}
	return nil
}

func (p *pass) step(s step, c Class) error {
	switch s {
	case stepAddress:
		return p.readByte(FrameAddress, AddressNormal)
	case stepAddressHi:
		return p.readByte(FrameAddress, AddressHi)
	case stepAddressLo:
		return p.readByte(FrameAddress, AddressLo)
	case stepTurnaround:
		return p.turnaroundBusPark()
	case stepPayload:
		for i := 0; i < c.Count; i++ {
			if err := p.readByte(FrameData, 0); err != nil {
				return err
			}
		}
		return nil
	default:
		return p.terminalBusPark()
	}
}

// command reads the slave address and command word and emits the slave
// address, type and extra field frames.
func (p *pass) command() (Class, error) {
	b, err := p.readBits(commandBits)
	if err != nil {
		return Class{}, err
	}

	p.emit(b.frame(FrameSlaveAddress, b.value>>byteBits&0x0F, 0, 0, slaveAddressBits))

	c := Classify(byte(b.value))
	p.emit(b.frame(FrameType, uint64(c.Kind), 0, slaveAddressBits, c.Split))
	if c.HasField() {
		p.emit(b.frame(c.Field, c.Value, 0, c.Split, commandBits))
	}

	return c, nil
}

func (p *pass) emit(f Frame) {
	p.sink.AddFrame(f)
	p.sink.ReportProgress(f.End)
}

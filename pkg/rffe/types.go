package rffe

import (
	"fmt"

	"rffedec/pkg/port"
)

// TransactionKind is the transaction shape selected by the command byte.
type TransactionKind uint8

const (
	ExtendedWrite TransactionKind = iota
	Reserved
	ExtendedRead
	ExtendedLongWrite
	ExtendedLongRead
	NormalWrite
	NormalRead
	ShortWrite
)

var transactionNames = [...]string{
	ExtendedWrite:     "ExtendedWrite",
	Reserved:          "Reserved",
	ExtendedRead:      "ExtendedRead",
	ExtendedLongWrite: "ExtendedLongWrite",
	ExtendedLongRead:  "ExtendedLongRead",
	NormalWrite:       "NormalWrite",
	NormalRead:        "NormalRead",
	ShortWrite:        "ShortWrite",
}

func (k TransactionKind) String() string {
	if int(k) < len(transactionNames) {
		return transactionNames[k]
	}
	return fmt.Sprintf("TransactionKind(%d)", uint8(k))
}

// MarshalText lets kinds appear by name in json documents.
func (k TransactionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsRead reports whether the slave drives the data phase.
func (k TransactionKind) IsRead() bool {
	return k == ExtendedRead || k == ExtendedLongRead || k == NormalRead
}

// FrameKind identifies the field a frame covers.
type FrameKind uint8

const (
	FrameStart FrameKind = iota
	FrameSlaveAddress
	FrameType
	FrameByteCount
	FrameLongByteCount
	FrameShortAddress
	FrameAddress
	FrameShortData
	FrameData
	FrameParity
	FrameBusPark
	FrameError
)

var frameNames = [...]string{
	FrameStart:         "Start",
	FrameSlaveAddress:  "SlaveAddress",
	FrameType:          "Type",
	FrameByteCount:     "ByteCount",
	FrameLongByteCount: "LongByteCount",
	FrameShortAddress:  "ShortAddress",
	FrameAddress:       "Address",
	FrameShortData:     "ShortData",
	FrameData:          "Data",
	FrameParity:        "Parity",
	FrameBusPark:       "BusPark",
	FrameError:         "Error",
}

func (k FrameKind) String() string {
	if int(k) < len(frameNames) {
		return frameNames[k]
	}
	return fmt.Sprintf("FrameKind(%d)", uint8(k))
}

// MarshalText lets kinds appear by name in json documents.
func (k FrameKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Secondary values of Address frames.
const (
	AddressNormal uint64 = iota
	AddressHi
	AddressLo
)

// Secondary values of BusPark frames.
const (
	BusParkTerminal uint64 = iota
	BusParkTurnaround
)

// MarkerType is the annotation drawn at a marker.
type MarkerType uint8

const (
	MarkerBit MarkerType = iota
	MarkerStart
	MarkerStop
)

// Marker annotates one bit: the clock edge it was clocked by, the sample
// the data line was read at and the level read there.
type Marker struct {
	Clock uint64         `json:"clock"`
	Data  uint64         `json:"data"`
	State port.StateType `json:"state"`
	Type  MarkerType     `json:"type"`
}

// Frame is one recovered field. It covers the samples [Start, End); the
// next frame of the packet never starts before End.
type Frame struct {
	Kind      FrameKind `json:"kind"`
	Primary   uint64    `json:"primary"`
	Secondary uint64    `json:"secondary"`
	Start     uint64    `json:"start"`
	End       uint64    `json:"end"`
	// Ones is the parity accumulator when a parity bit was read.
	Ones    int      `json:"ones,omitempty"`
	Markers []Marker `json:"markers,omitempty"`
}

// FromCommand reports whether a parity frame closes the command word.
func (f Frame) FromCommand() bool {
	return f.Kind == FrameParity && f.Secondary == 1
}

// Landed reports whether a bus park ended on a real clock edge.
func (f Frame) Landed() bool {
	return f.Kind == FrameBusPark && f.Primary == 1
}

// Packet is the frame sequence of one transaction, starting with a Start frame.
type Packet struct {
	Frames []Frame `json:"frames"`
}

// Start returns the first sample of the packet.
func (p Packet) Start() uint64 {
	if len(p.Frames) == 0 {
		return 0
	}
	return p.Frames[0].Start
}

// End returns the sample after the packet.
func (p Packet) End() uint64 {
	if len(p.Frames) == 0 {
		return 0
	}
	return p.Frames[len(p.Frames)-1].End
}

// Kind returns the transaction kind from the Type frame.
func (p Packet) Kind() (TransactionKind, bool) {
	for _, f := range p.Frames {
		if f.Kind == FrameType {
			return TransactionKind(f.Primary), true
		}
	}
	return 0, false
}

// SlaveAddress returns the slave address, or -1 if the packet has none.
func (p Packet) SlaveAddress() int {
	for _, f := range p.Frames {
		if f.Kind == FrameSlaveAddress {
			return int(f.Primary)
		}
	}
	return -1
}

// Malformed reports whether the packet carries a reserved command.
func (p Packet) Malformed() bool {
	k, ok := p.Kind()
	return ok && k == Reserved
}

// Package report turns decoded packets into text and keeps decode statistics.
package report

import (
	"fmt"
	"strings"

	"rffedec/pkg/rffe"
)

var shortNames = [...]string{
	rffe.ExtendedWrite:     "EW",
	rffe.Reserved:          "-",
	rffe.ExtendedRead:      "ER",
	rffe.ExtendedLongWrite: "ELW",
	rffe.ExtendedLongRead:  "ELR",
	rffe.NormalWrite:       "W",
	rffe.NormalRead:        "R",
	rffe.ShortWrite:        "W0",
}

var midNames = [...]string{
	rffe.ExtendedWrite:     "ExtWr",
	rffe.Reserved:          "Rsv",
	rffe.ExtendedRead:      "ExtRd",
	rffe.ExtendedLongWrite: "ExtLngWr",
	rffe.ExtendedLongRead:  "ExtLngRd",
	rffe.NormalWrite:       "Wr",
	rffe.NormalRead:        "Rd",
	rffe.ShortWrite:        "Wr0",
}

// ShortName returns the one to three letter name of a transaction kind.
func ShortName(k rffe.TransactionKind) string {
	if int(k) < len(shortNames) {
		return shortNames[k]
	}
	return "?"
}

// MidName returns the abbreviated name of a transaction kind.
func MidName(k rffe.TransactionKind) string {
	if int(k) < len(midNames) {
		return midNames[k]
	}
	return "?"
}

// Label returns the bubble text of a frame, e.g. "SA:5", "D:0x40", "P1".
func Label(f rffe.Frame) string {
	switch f.Kind {
	case rffe.FrameStart:
		return "SSC"
	case rffe.FrameSlaveAddress:
		return fmt.Sprintf("SA:%X", f.Primary)
	case rffe.FrameType:
		return MidName(rffe.TransactionKind(f.Primary))
	case rffe.FrameByteCount, rffe.FrameLongByteCount:
		return fmt.Sprintf("BC:%d", f.Primary)
	case rffe.FrameShortAddress:
		return fmt.Sprintf("A:0x%02X", f.Primary)
	case rffe.FrameAddress:
		switch f.Secondary {
		case rffe.AddressHi:
			return fmt.Sprintf("AH:0x%02X", f.Primary)
		case rffe.AddressLo:
			return fmt.Sprintf("AL:0x%02X", f.Primary)
		}
		return fmt.Sprintf("A:0x%02X", f.Primary)
	case rffe.FrameShortData:
		return fmt.Sprintf("D:0x%02X", f.Primary)
	case rffe.FrameData:
		return fmt.Sprintf("D:0x%02X", f.Primary)
	case rffe.FrameParity:
		return fmt.Sprintf("P%d", f.Primary)
	case rffe.FrameBusPark:
		return "BP"
	default:
		return "E"
	}
}

// Summary returns a one line description of a packet without styling.
func Summary(p rffe.Packet) string {
	labels := make([]string, 0, len(p.Frames))
	for _, f := range p.Frames {
		labels = append(labels, Label(f))
	}
	return strings.Join(labels, " ")
}

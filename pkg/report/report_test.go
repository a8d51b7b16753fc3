package report

import (
	"strings"
	"testing"

	"rffedec/pkg/rffe"
)

func shortWritePacket() rffe.Packet {
	return rffe.Packet{Frames: []rffe.Frame{
		{Kind: rffe.FrameStart, Start: 220, End: 260},
		{Kind: rffe.FrameSlaveAddress, Primary: 0x5, Start: 260, End: 340},
		{Kind: rffe.FrameType, Primary: uint64(rffe.ShortWrite), Start: 340, End: 360},
		{Kind: rffe.FrameShortData, Primary: 0x2A, Start: 360, End: 500},
		{Kind: rffe.FrameParity, Primary: 1, Secondary: 1, Start: 500, End: 520},
		{Kind: rffe.FrameBusPark, Start: 520, End: 542},
	}}
}

func TestNames(t *testing.T) {
	tests := []struct {
		kind  rffe.TransactionKind
		short string
		mid   string
	}{
		{rffe.ExtendedWrite, "EW", "ExtWr"},
		{rffe.Reserved, "-", "Rsv"},
		{rffe.ExtendedRead, "ER", "ExtRd"},
		{rffe.ExtendedLongWrite, "ELW", "ExtLngWr"},
		{rffe.ExtendedLongRead, "ELR", "ExtLngRd"},
		{rffe.NormalWrite, "W", "Wr"},
		{rffe.NormalRead, "R", "Rd"},
		{rffe.ShortWrite, "W0", "Wr0"},
		{rffe.TransactionKind(99), "?", "?"},
	}

	for _, tt := range tests {
		if got := ShortName(tt.kind); got != tt.short {
			t.Errorf("ShortName(%v) = %q, want %q", tt.kind, got, tt.short)
		}
		if got := MidName(tt.kind); got != tt.mid {
			t.Errorf("MidName(%v) = %q, want %q", tt.kind, got, tt.mid)
		}
	}
}

func TestSummary(t *testing.T) {
	want := "SSC SA:5 Wr0 D:0x2A P1 BP"
	if got := Summary(shortWritePacket()); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestLabelAddress(t *testing.T) {
	tests := []struct {
		f    rffe.Frame
		want string
	}{
		{rffe.Frame{Kind: rffe.FrameAddress, Primary: 0x12, Secondary: rffe.AddressHi}, "AH:0x12"},
		{rffe.Frame{Kind: rffe.FrameAddress, Primary: 0x34, Secondary: rffe.AddressLo}, "AL:0x34"},
		{rffe.Frame{Kind: rffe.FrameAddress, Primary: 0xBC}, "A:0xBC"},
		{rffe.Frame{Kind: rffe.FrameLongByteCount, Primary: 3}, "BC:3"},
		{rffe.Frame{Kind: rffe.FrameError}, "E"},
	}

	for _, tt := range tests {
		if got := Label(tt.f); got != tt.want {
			t.Errorf("Label(%+v) = %q, want %q", tt.f, got, tt.want)
		}
	}
}

func TestFormatPacket(t *testing.T) {
	got := FormatPacket(shortWritePacket(), 100_000_000)

	for _, want := range []string{"0.000002s", "W0", "SA:5", "D:0x2A", "BP"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatPacket() = %q, missing %q", got, want)
		}
	}
}

func TestStatistics(t *testing.T) {
	s := NewStatistics()

	s.Update(shortWritePacket())
	s.Update(rffe.Packet{Frames: []rffe.Frame{
		{Kind: rffe.FrameStart},
		{Kind: rffe.FrameSlaveAddress},
		{Kind: rffe.FrameType, Primary: uint64(rffe.Reserved)},
	}})
	s.Update(rffe.Packet{Frames: []rffe.Frame{
		{Kind: rffe.FrameType, Primary: uint64(rffe.NormalRead)},
		{Kind: rffe.FrameBusPark, Primary: 1, Secondary: rffe.BusParkTurnaround},
		{Kind: rffe.FrameBusPark},
	}})
	s.Cancel()

	c := s.Snapshot()
	if c.Packets != 3 || c.Reserved != 1 || c.Canceled != 1 || c.Frames != 12 {
		t.Errorf("Snapshot() = %+v", c)
	}
	if c.LandedParks != 1 || c.NominalParks != 2 {
		t.Errorf("bus parks landed %d nominal %d, want 1 and 2", c.LandedParks, c.NominalParks)
	}
	if c.PerKind["ShortWrite"] != 1 || c.PerKind["NormalRead"] != 1 || c.PerKind["Reserved"] != 1 {
		t.Errorf("PerKind = %v", c.PerKind)
	}

	out := s.String()
	for _, want := range []string{"Packets:", "Wr0", "Reserved:", "Canceled:"} {
		if !strings.Contains(out, want) {
			t.Errorf("String() missing %q:\n%s", want, out)
		}
	}

	s.Reset()
	if c = s.Snapshot(); c.Packets != 0 || c.PerKind["ShortWrite"] != 0 {
		t.Errorf("Snapshot() after Reset() = %+v", c)
	}
}

package rffe

import (
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		cmd   byte
		kind  TransactionKind
		field FrameKind
		value uint64
		split int
		count int
	}{
		{cmd: 0x00, kind: ExtendedWrite, field: FrameByteCount, value: 0, split: 8, count: 1},
		{cmd: 0x07, kind: ExtendedWrite, field: FrameByteCount, value: 7, split: 8, count: 8},
		{cmd: 0x0F, kind: ExtendedWrite, field: FrameByteCount, value: 15, split: 8, count: 16},
		{cmd: 0x10, kind: Reserved, field: FrameError, split: 12},
		{cmd: 0x1F, kind: Reserved, field: FrameError, split: 12},
		{cmd: 0x20, kind: ExtendedRead, field: FrameByteCount, value: 0, split: 8, count: 1},
		{cmd: 0x2F, kind: ExtendedRead, field: FrameByteCount, value: 15, split: 8, count: 16},
		{cmd: 0x30, kind: ExtendedLongWrite, field: FrameLongByteCount, value: 0, split: 9, count: 1},
		{cmd: 0x37, kind: ExtendedLongWrite, field: FrameLongByteCount, value: 7, split: 9, count: 8},
		{cmd: 0x38, kind: ExtendedLongRead, field: FrameLongByteCount, value: 0, split: 9, count: 1},
		{cmd: 0x3F, kind: ExtendedLongRead, field: FrameLongByteCount, value: 7, split: 9, count: 8},
		{cmd: 0x40, kind: NormalWrite, field: FrameShortAddress, value: 0x00, split: 7, count: 1},
		{cmd: 0x55, kind: NormalWrite, field: FrameShortAddress, value: 0x15, split: 7, count: 1},
		{cmd: 0x5F, kind: NormalWrite, field: FrameShortAddress, value: 0x1F, split: 7, count: 1},
		{cmd: 0x60, kind: NormalRead, field: FrameShortAddress, value: 0x00, split: 7, count: 1},
		{cmd: 0x7F, kind: NormalRead, field: FrameShortAddress, value: 0x1F, split: 7, count: 1},
		{cmd: 0x80, kind: ShortWrite, field: FrameShortData, value: 0x00, split: 5},
		{cmd: 0xC1, kind: ShortWrite, field: FrameShortData, value: 0x41, split: 5},
		{cmd: 0xFF, kind: ShortWrite, field: FrameShortData, value: 0x7F, split: 5},
	}

	for _, tt := range tests {
		c := Classify(tt.cmd)
		if c.Kind != tt.kind || c.Field != tt.field || c.Value != tt.value || c.Split != tt.split || c.Count != tt.count {
			t.Errorf("Classify(0x%02X) = %+v, want kind %v field %v value %d split %d count %d",
				tt.cmd, c, tt.kind, tt.field, tt.value, tt.split, tt.count)
		}
	}
}

func TestClassifyAllBytes(t *testing.T) {
	seen := make(map[TransactionKind]int)

	for i := 0; i < 256; i++ {
		cmd := byte(i)
		c := Classify(cmd)
		seen[c.Kind]++

		var want TransactionKind
		switch {
		case cmd < 0x10:
			want = ExtendedWrite
		case cmd < 0x20:
			want = Reserved
		case cmd < 0x30:
			want = ExtendedRead
		case cmd < 0x38:
			want = ExtendedLongWrite
		case cmd < 0x40:
			want = ExtendedLongRead
		case cmd < 0x60:
			want = NormalWrite
		case cmd < 0x80:
			want = NormalRead
		default:
			want = ShortWrite
		}
		if c.Kind != want {
			t.Errorf("Classify(0x%02X).Kind = %v, want %v", cmd, c.Kind, want)
		}

		if c.HasField() == (c.Kind == Reserved) {
			t.Errorf("Classify(0x%02X).HasField() = %v", cmd, c.HasField())
		}
		if c.Split < slaveAddressBits || c.Split > commandBits {
			t.Errorf("Classify(0x%02X).Split = %d out of range", cmd, c.Split)
		}
	}

	want := map[TransactionKind]int{
		ExtendedWrite:     16,
		Reserved:          16,
		ExtendedRead:      16,
		ExtendedLongWrite: 8,
		ExtendedLongRead:  8,
		NormalWrite:       32,
		NormalRead:        32,
		ShortWrite:        128,
	}
	for k, n := range want {
		if seen[k] != n {
			t.Errorf("%v covers %d command bytes, want %d", k, seen[k], n)
		}
	}
}

func TestByteCount(t *testing.T) {
	for i := 0; i < 256; i++ {
		cmd := byte(i)

		var want int
		switch Classify(cmd).Kind {
		case ExtendedWrite, ExtendedRead:
			want = int(cmd&0x0F) + 1
		case ExtendedLongWrite, ExtendedLongRead:
			want = int(cmd&0x07) + 1
		case NormalWrite, NormalRead:
			want = 1
		}

		if got := ByteCount(cmd); got != want {
			t.Errorf("ByteCount(0x%02X) = %d, want %d", cmd, got, want)
		}
	}
}

func TestMinimumSampleRate(t *testing.T) {
	if got := MinimumSampleRate(26_000_000); got != 104_000_000 {
		t.Errorf("MinimumSampleRate(26 MHz) = %d, want 104000000", got)
	}
}

func TestTransactionKindString(t *testing.T) {
	if got := ExtendedLongRead.String(); got != "ExtendedLongRead" {
		t.Errorf("String() = %q", got)
	}
	if got := TransactionKind(42).String(); got != "TransactionKind(42)" {
		t.Errorf("String() = %q", got)
	}
	if !NormalRead.IsRead() || NormalWrite.IsRead() {
		t.Error("IsRead() mismatch")
	}
}

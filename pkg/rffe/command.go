package rffe

// Command word layout, in bit positions of the 12 bit word (MSB first).
const (
	commandBits      = 12
	slaveAddressBits = 4
	byteBits         = 8
)

// Class is the decoded meaning of a command byte.
type Class struct {
	Kind TransactionKind
	// Field is the frame kind of the extra field after the type bits.
	// Reserved commands have no extra field and Split == commandBits.
	Field FrameKind
	// Value is the raw extra field.
	Value uint64
	// Split is the bit position where the type bits end and the extra field starts.
	Split int
	// Count is the number of address/data bytes that follow the command.
	Count int
}

type commandClass struct {
	last  byte
	kind  TransactionKind
	split int
	field FrameKind
	mask  byte
	// extended commands carry the byte count as field + 1
	extended bool
	count    int
}

// decodeTable is ordered by command byte, each row covers the bytes up to last.
var decodeTable = [...]commandClass{
	{last: 0x0F, kind: ExtendedWrite, split: 8, field: FrameByteCount, mask: 0x0F, extended: true},
	{last: 0x1F, kind: Reserved, split: commandBits},
	{last: 0x2F, kind: ExtendedRead, split: 8, field: FrameByteCount, mask: 0x0F, extended: true},
	{last: 0x37, kind: ExtendedLongWrite, split: 9, field: FrameLongByteCount, mask: 0x07, extended: true},
	{last: 0x3F, kind: ExtendedLongRead, split: 9, field: FrameLongByteCount, mask: 0x07, extended: true},
	{last: 0x5F, kind: NormalWrite, split: 7, field: FrameShortAddress, mask: 0x1F, count: 1},
	{last: 0x7F, kind: NormalRead, split: 7, field: FrameShortAddress, mask: 0x1F, count: 1},
	{last: 0xFF, kind: ShortWrite, split: 5, field: FrameShortData, mask: 0x7F},
}

// Classify decodes a command byte. Every byte value has exactly one class.
func Classify(cmd byte) Class {
	for _, r := range decodeTable {
		if cmd > r.last {
			continue
		}

		c := Class{
			Kind:  r.kind,
			Field: r.field,
			Value: uint64(cmd & r.mask),
			Split: r.split,
			Count: r.count,
		}
		if r.kind == Reserved {
			c.Field = FrameError
		}
		if r.extended {
			c.Count = int(cmd&r.mask) + 1
		}
		return c
	}

	// unreachable, the last row ends at 0xFF
	return Class{Kind: Reserved, Field: FrameError, Split: commandBits}
}

// ByteCount returns the number of address/data bytes announced by cmd.
func ByteCount(cmd byte) int {
	return Classify(cmd).Count
}

// HasField reports whether the command carries an extra field after the type bits.
func (c Class) HasField() bool {
	return c.Split < commandBits
}

// MinimumSampleRate returns the lowest sample rate that resolves the quarter
// bit period the data line changes at, for the nominal bit rate.
func MinimumSampleRate(bitRate uint32) uint64 {
	return 4 * uint64(bitRate)
}

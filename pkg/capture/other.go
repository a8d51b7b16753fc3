//go:build !linux

package capture

import "time"

// Chip is not available on this platform.
type Chip struct{}

// OpenChip returns ErrUnsupported.
func OpenChip(name string, offsets []int, terminator string, rec *Recorder) (*Chip, error) {
	return nil, ErrUnsupported
}

func (c *Chip) Now() time.Duration { return 0 }
func (c *Chip) Close() error       { return nil }

// Mem is not available on this platform.
type Mem struct{}

// OpenMem returns ErrUnsupported.
func OpenMem(pins []int, terminator string, rec *Recorder) (*Mem, error) {
	return nil, ErrUnsupported
}

func (m *Mem) Now() time.Duration { return 0 }
func (m *Mem) Close() error       { return nil }

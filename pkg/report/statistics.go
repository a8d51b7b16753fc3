package report

import (
	"fmt"
	"sync"
	"time"

	"rffedec/pkg/rffe"
)

// Counters is a snapshot of the decode statistics.
type Counters struct {
	StartTime time.Time `json:"starttime"`

	Packets  uint64 `json:"packets"`
	Canceled uint64 `json:"canceled"`
	Reserved uint64 `json:"reserved"`
	Frames   uint64 `json:"frames"`
	// PerKind counts committed packets by transaction kind.
	PerKind map[string]uint64 `json:"perkind"`
	// LandedParks and NominalParks count bus parks that ended on a clock
	// edge and those that were given the nominal length.
	LandedParks  uint64 `json:"landedparks"`
	NominalParks uint64 `json:"nominalparks"`

	PacketRate float64 `json:"packetrate"` // packets/sec
}

// Statistics counts decoded packets. It is safe for concurrent use.
type Statistics struct {
	sync.RWMutex
	startTime time.Time

	packets  uint64
	canceled uint64
	reserved uint64
	frames   uint64
	perKind  [rffe.ShortWrite + 1]uint64
	landed   uint64
	nominal  uint64
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	return &Statistics{startTime: time.Now()}
}

// Update counts a committed packet.
func (s *Statistics) Update(p rffe.Packet) {
	s.Lock()
	defer s.Unlock()

	s.packets++
	s.frames += uint64(len(p.Frames))
	if k, ok := p.Kind(); ok && int(k) < len(s.perKind) {
		s.perKind[k]++
	}
	if p.Malformed() {
		s.reserved++
	}

	for _, f := range p.Frames {
		if f.Kind != rffe.FrameBusPark {
			continue
		}
		if f.Landed() {
			s.landed++
		} else {
			s.nominal++
		}
	}
}

// Cancel counts a packet that was dropped before it was complete.
func (s *Statistics) Cancel() {
	s.Lock()
	defer s.Unlock()
	s.canceled++
}

// Snapshot returns the current counters.
func (s *Statistics) Snapshot() Counters {
	s.RLock()
	defer s.RUnlock()

	c := Counters{
		StartTime:    s.startTime,
		Packets:      s.packets,
		Canceled:     s.canceled,
		Reserved:     s.reserved,
		Frames:       s.frames,
		PerKind:      make(map[string]uint64, len(s.perKind)),
		LandedParks:  s.landed,
		NominalParks: s.nominal,
	}
	for k, n := range s.perKind {
		c.PerKind[rffe.TransactionKind(k).String()] = n
	}
	if elapsed := time.Since(s.startTime).Seconds(); elapsed > 0 {
		c.PacketRate = float64(s.packets) / elapsed
	}
	return c
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	c := s.Snapshot()

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", time.Since(c.StartTime).Seconds())
	result += fmt.Sprintf("Packets:         %8d\n", c.Packets)
	for k := rffe.ExtendedWrite; k <= rffe.ShortWrite; k++ {
		if n := c.PerKind[k.String()]; n > 0 {
			result += fmt.Sprintf("  %-9s      %8d\n", MidName(k), n)
		}
	}
	if c.Reserved > 0 {
		result += fmt.Sprintf("Reserved:        %8d\n", c.Reserved)
	}
	if c.Canceled > 0 {
		result += fmt.Sprintf("Canceled:        %8d\n", c.Canceled)
	}
	result += fmt.Sprintf("Frames:          %8d\n", c.Frames)
	result += fmt.Sprintf("Bus Parks:       %8d landed, %d nominal\n", c.LandedParks, c.NominalParks)
	result += fmt.Sprintf("Packet Rate:     %8.1f pkts/sec\n", c.PacketRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	s.Lock()
	defer s.Unlock()

	s.startTime = time.Now()
	s.packets = 0
	s.canceled = 0
	s.reserved = 0
	s.frames = 0
	s.perKind = [rffe.ShortWrite + 1]uint64{}
	s.landed = 0
	s.nominal = 0
}

package rffe

// PacketSink receives the frames of a decode pass. Frames arrive in sample
// order; CommitPacket closes the frames added since the last commit or
// cancel into one packet, CancelPacket drops them.
type PacketSink interface {
	AddFrame(Frame)
	CommitPacket()
	CancelPacket()
	ReportProgress(sample uint64)
}

// Collector is a PacketSink that keeps every committed packet.
type Collector struct {
	Packets []Packet
	// Canceled counts dropped packets that had at least one frame.
	Canceled int
	// Progress is the last reported sample.
	Progress uint64
	// OnPacket is called for every committed packet, if set.
	OnPacket func(Packet)

	current []Frame
}

// AddFrame appends f to the packet in flight.
func (c *Collector) AddFrame(f Frame) {
	c.current = append(c.current, f)
}

// CommitPacket closes the packet in flight.
func (c *Collector) CommitPacket() {
	if len(c.current) == 0 {
		return
	}

	p := Packet{Frames: c.current}
	c.current = nil
	c.Packets = append(c.Packets, p)

	if c.OnPacket != nil {
		c.OnPacket(p)
	}
}

// CancelPacket drops the packet in flight.
func (c *Collector) CancelPacket() {
	if len(c.current) > 0 {
		c.Canceled++
	}
	c.current = nil
}

// ReportProgress records the decode position.
func (c *Collector) ReportProgress(sample uint64) {
	c.Progress = sample
}

package app

import (
	"context"
	"sync"
	"time"

	"github.com/womat/debug"
	"rffedec/pkg/report"
	"rffedec/pkg/rffe"
	"rffedec/pkg/trace"
)

// recentSize is the number of packets kept for the data web service.
const recentSize = 100

// PacketMessage is the json form of a decoded packet, published to mqtt
// and served by the data web service.
type PacketMessage struct {
	// Time is the packet start in seconds since the start of the trace.
	Time         float64              `json:"time"`
	Kind         rffe.TransactionKind `json:"kind"`
	SlaveAddress int                  `json:"slaveaddress"`
	Malformed    bool                 `json:"malformed"`
	Summary      string               `json:"summary"`
	Frames       []rffe.Frame         `json:"frames"`
}

// NewPacketMessage converts p; sampleRate converts sample indices to time.
func NewPacketMessage(p rffe.Packet, sampleRate uint32) PacketMessage {
	m := PacketMessage{
		SlaveAddress: p.SlaveAddress(),
		Malformed:    p.Malformed(),
		Summary:      report.Summary(p),
		Frames:       p.Frames,
	}
	m.Kind, _ = p.Kind()
	if sampleRate > 0 {
		m.Time = float64(p.Start()) / float64(sampleRate)
	}
	return m
}

// recentPackets is a ring of the last decoded packets.
type recentPackets struct {
	sync.RWMutex
	packets []PacketMessage
	next    int
	full    bool
}

func newRecentPackets(n int) *recentPackets {
	return &recentPackets{packets: make([]PacketMessage, n)}
}

func (r *recentPackets) add(m PacketMessage) {
	r.Lock()
	defer r.Unlock()

	r.packets[r.next] = m
	r.next++
	if r.next == len(r.packets) {
		r.next = 0
		r.full = true
	}
}

// list returns the packets oldest first.
func (r *recentPackets) list() []PacketMessage {
	r.RLock()
	defer r.RUnlock()

	if !r.full {
		return append([]PacketMessage(nil), r.packets[:r.next]...)
	}
	return append(append([]PacketMessage(nil), r.packets[r.next:]...), r.packets[:r.next]...)
}

// sink forwards the committed packets of one decode pass to the statistics,
// the recent packet list and mqtt.
type sink struct {
	rffe.Collector
	app        *App
	sampleRate uint32
}

func (app *App) newSink(sampleRate uint32) *sink {
	s := &sink{app: app, sampleRate: sampleRate}
	s.OnPacket = s.packet
	return s
}

func (s *sink) packet(p rffe.Packet) {
	s.app.stats.Update(p)

	m := NewPacketMessage(p, s.sampleRate)
	s.app.recent.add(m)
	debug.DebugLog.Printf("packet %s", report.FormatPacket(p, s.sampleRate))

	if err := s.app.mqtt.Publish(s.app.config.MQTT.Topic, m, false); err != nil {
		debug.ErrorLog.Println(err)
	}
}

// CancelPacket counts dropped packets that had frames.
func (s *sink) CancelPacket() {
	n := s.Canceled
	s.Collector.CancelPacket()
	if s.Canceled > n {
		s.app.stats.Cancel()
	}
}

// decodeTrace runs one decode pass over t.
func (app *App) decodeTrace(ctx context.Context, t *trace.Trace) error {
	if !app.config.SampleRateOK(t.SampleRate) {
		debug.ErrorLog.Printf("sample rate %d is below 4 times the bit rate %d, bits may be lost", t.SampleRate, app.config.BitRate)
	}

	clk, err := t.Channel(app.config.Channels.Clock)
	if err != nil {
		return err
	}
	data, err := t.Channel(app.config.Channels.Data)
	if err != nil {
		return err
	}

	if _, bit, err := trace.EstimateBitPeriod(clk); err == nil {
		debug.TraceLog.Printf("estimated bit period %.1f samples", bit)
	}

	s := app.newSink(t.SampleRate)
	if err = rffe.Run(ctx, trace.NewCursor(clk), trace.NewCursor(data), s); err != nil {
		return err
	}

	debug.DebugLog.Printf("decoded %d packets, %d canceled, up to sample %d", len(s.Packets), s.Canceled, s.Progress)
	app.publishStatistics()
	return nil
}

func (app *App) publishStatistics() {
	if err := app.mqtt.Publish(app.config.MQTT.StatisticsTopic, app.stats.Snapshot(), true); err != nil {
		debug.ErrorLog.Println(err)
	}
}

// decodeFile decodes the configured trace file once. The results stay
// available on the web services until shutdown.
func (app *App) decodeFile() {
	t, err := trace.Load(app.config.Source.File, app.config.Source.SampleRate)
	if err != nil {
		debug.ErrorLog.Printf("can't load trace %q: %v", app.config.Source.File, err)
		return
	}

	debug.InfoLog.Printf("decoding %q: %d channels, %d samples at %d Hz",
		app.config.Source.File, len(t.Channels), t.Duration(), t.SampleRate)
	if err = app.decodeTrace(app.ctx, t); err != nil {
		debug.ErrorLog.Printf("decode %q: %v", app.config.Source.File, err)
		return
	}
	debug.InfoLog.Print(app.stats.String())
}

// capture decodes the live capture every time the bus went quiet.
func (app *App) capture() {
	ticker := time.NewTicker(app.config.Source.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-app.ctx.Done():
			return
		case <-ticker.C:
		}

		t := app.recorder.Flush(app.source.Now(), app.config.Source.Quiet)
		if t == nil {
			continue
		}

		if err := app.decodeTrace(app.ctx, t); err != nil {
			debug.ErrorLog.Printf("decode capture: %v", err)
		}
	}
}

package app

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"rffedec/pkg/app/config"
	"rffedec/pkg/report"
	"rffedec/pkg/rffe"
	"rffedec/pkg/simulate"
	"rffedec/pkg/trace"
)

func testApp(t *testing.T) *App {
	t.Helper()

	cfg := config.NewConfig()
	cfg.BitRate = 5_000_000
	cfg.Source.File = "capture.cbor"
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	a.initDefaultRoutes()
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func testTrace(t *testing.T) *trace.Trace {
	t.Helper()

	g, err := simulate.New(100_000_000, 5_000_000, "SCLK", "SDATA")
	if err != nil {
		t.Fatal(err)
	}
	g.Transaction(simulate.Transaction{SlaveAddress: 0x5, Command: 0x00, Address: 0x1C, Data: []byte{0x40}})
	g.Transaction(simulate.Transaction{SlaveAddress: 0x5, Command: 0x1B})
	g.Transaction(simulate.Transaction{SlaveAddress: 0x7, Command: 0x7F, Data: []byte{0x2C}})

	tr, err := g.Trace()
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func TestDecodeTrace(t *testing.T) {
	a := testApp(t)

	if err := a.decodeTrace(context.Background(), testTrace(t)); err != nil {
		t.Fatalf("decodeTrace() error = %v", err)
	}

	c := a.stats.Snapshot()
	if c.Packets != 3 || c.Reserved != 1 || c.Canceled != 0 {
		t.Errorf("statistics %+v", c)
	}

	got := a.recent.list()
	if len(got) != 3 {
		t.Fatalf("%d recent packets, want 3", len(got))
	}
	if got[0].Kind != rffe.ExtendedWrite || got[0].SlaveAddress != 5 || got[0].Time != 2.2e-6 {
		t.Errorf("first packet %+v", got[0])
	}
	if !got[1].Malformed || got[2].Kind != rffe.NormalRead || got[2].SlaveAddress != 7 {
		t.Errorf("packets %+v %+v", got[1], got[2])
	}
}

func TestDecodeFile(t *testing.T) {
	a := testApp(t)
	a.config.Source.File = filepath.Join(t.TempDir(), "capture.cbor")
	if err := trace.Save(a.config.Source.File, testTrace(t)); err != nil {
		t.Fatal(err)
	}

	a.decodeFile()
	if n := a.stats.Snapshot().Packets; n != 3 {
		t.Errorf("decoded %d packets, want 3", n)
	}
}

func TestDecodeTraceUnknownChannel(t *testing.T) {
	a := testApp(t)
	a.config.Channels.Data = "MISO"

	if err := a.decodeTrace(context.Background(), testTrace(t)); err == nil {
		t.Error("decodeTrace() accepted an unknown channel")
	}
}

func TestRecentPackets(t *testing.T) {
	r := newRecentPackets(3)
	for i := 0; i < 5; i++ {
		r.add(PacketMessage{SlaveAddress: i})
	}

	var got []int
	for _, m := range r.list() {
		got = append(got, m.SlaveAddress)
	}
	if diff := cmp.Diff([]int{2, 3, 4}, got); diff != "" {
		t.Errorf("list() mismatch (-want +got):\n%s", diff)
	}
}

func TestWebServices(t *testing.T) {
	a := testApp(t)
	if err := a.decodeTrace(context.Background(), testTrace(t)); err != nil {
		t.Fatal(err)
	}

	resp, err := a.web.Test(httptest.NewRequest("GET", "/data", nil))
	if err != nil {
		t.Fatalf("GET /data error = %v", err)
	}
	var packets []struct {
		Kind    string `json:"kind"`
		Summary string `json:"summary"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&packets); err != nil {
		t.Fatal(err)
	}
	if len(packets) != 3 || packets[2].Kind != "NormalRead" || packets[1].Summary != "SSC SA:5 Rsv" {
		t.Errorf("GET /data = %+v", packets)
	}

	resp, err = a.web.Test(httptest.NewRequest("DELETE", "/statistics", nil))
	if err != nil {
		t.Fatalf("DELETE /statistics error = %v", err)
	}
	var c report.Counters
	if err = json.NewDecoder(resp.Body).Decode(&c); err != nil {
		t.Fatal(err)
	}
	if c.Packets != 0 {
		t.Errorf("statistics not reset: %+v", c)
	}

	resp, err = a.web.Test(httptest.NewRequest("GET", "/version", nil))
	if err != nil || resp.StatusCode != 200 {
		t.Errorf("GET /version = %v, %v", resp, err)
	}
}

func TestRunMissingChipCloses(t *testing.T) {
	cfg := config.NewConfig()
	cfg.BitRate = 5_000_000
	cfg.Source.Type = config.SourceGpiod
	cfg.Source.Chip = "gpiochip-does-not-exist"
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err = a.Run(); err == nil {
		t.Fatal("Run() opened a chip that does not exist")
	}
	if a.source != nil {
		t.Errorf("source = %#v after a failed open, want nil", a.source)
	}
	if err = a.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

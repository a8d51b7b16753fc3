package mqtt

import (
	"testing"
)

func TestEncode(t *testing.T) {
	msg, err := Encode("rffe/packets", map[string]int{"sa": 5}, false)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if msg.Topic != "rffe/packets" || string(msg.Payload) != `{"sa":5}` || msg.Retained {
		t.Errorf("Encode() = %+v", msg)
	}

	if _, err = Encode("x", make(chan int), false); err == nil {
		t.Error("Encode() accepted a channel")
	}
}

func TestPublishWithoutBroker(t *testing.T) {
	m := New()
	if err := m.Connect("", "rffedec"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if m.Enabled() {
		t.Error("Enabled() = true without a broker")
	}

	if err := m.Publish("rffe/packets", 1, false); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
	if len(m.C) != 0 {
		t.Errorf("%d messages queued without a broker", len(m.C))
	}
	if err := m.Disconnect(); err != nil {
		t.Errorf("Disconnect() error = %v", err)
	}
}

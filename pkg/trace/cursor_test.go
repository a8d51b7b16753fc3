package trace

import (
	"errors"
	"testing"

	"rffedec/pkg/port"
)

func TestCursor(t *testing.T) {
	ch := &Channel{Name: "SCLK", Initial: port.Low, Edges: []uint64{10, 20, 30}}
	c := NewCursor(ch)

	if c.Sample() != 0 || c.State() != port.Low {
		t.Fatalf("new cursor at %d level %v", c.Sample(), c.State())
	}
	if !c.MoreTransitions() {
		t.Fatal("MoreTransitions() = false")
	}

	if c.WouldTransitionBy(9) {
		t.Error("WouldTransitionBy(9) = true")
	}
	if !c.WouldTransitionBy(10) {
		t.Error("WouldTransitionBy(10) = false")
	}

	c.AdvanceTo(10)
	if c.State() != port.High {
		t.Errorf("edge at 10 not in effect at 10")
	}
	if c.WouldTransitionWithin(9) || !c.WouldTransitionWithin(10) {
		t.Errorf("WouldTransitionWithin around edge 20 is wrong")
	}

	// backward moves are ignored
	c.AdvanceTo(5)
	if c.Sample() != 10 {
		t.Errorf("Sample() = %d after backward move, want 10", c.Sample())
	}

	if err := c.AdvanceToNextEdge(); err != nil || c.Sample() != 20 || c.State() != port.Low {
		t.Errorf("AdvanceToNextEdge() = %v, at %d level %v", err, c.Sample(), c.State())
	}

	next, err := c.NextEdge()
	if err != nil || next != 30 {
		t.Errorf("NextEdge() = %d, %v", next, err)
	}

	c.AdvanceTo(25)
	if err = c.AdvanceToNextEdge(); err != nil || c.Sample() != 30 {
		t.Errorf("AdvanceToNextEdge() = %v, at %d", err, c.Sample())
	}
	if c.MoreTransitions() {
		t.Error("MoreTransitions() = true after the last edge")
	}
	if err = c.AdvanceToNextEdge(); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("AdvanceToNextEdge() = %v, want ErrEndOfStream", err)
	}
	if _, err = c.NextEdge(); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("NextEdge() = %v, want ErrEndOfStream", err)
	}
}

func TestCursorEdgeAtZero(t *testing.T) {
	ch := &Channel{Initial: port.Low, Edges: []uint64{0, 4}}
	c := NewCursor(ch)

	if c.State() != port.High {
		t.Errorf("State() = %v, want an edge at sample 0 in effect", c.State())
	}
	if err := c.AdvanceToNextEdge(); err != nil || c.Sample() != 4 {
		t.Errorf("AdvanceToNextEdge() = %v, at %d", err, c.Sample())
	}
}

func TestChannelSet(t *testing.T) {
	ch := &Channel{Initial: port.High}

	for _, step := range []struct {
		s uint64
		v port.StateType
	}{
		{5, port.High}, {6, port.Low}, {7, port.Low}, {9, port.High},
	} {
		if err := ch.Set(step.s, step.v); err != nil {
			t.Fatalf("Set(%d, %v) error = %v", step.s, step.v, err)
		}
	}

	if got := len(ch.Edges); got != 2 {
		t.Errorf("got %d edges, want 2", got)
	}
	if err := ch.Toggle(9); !errors.Is(err, ErrUnorderedEdge) {
		t.Errorf("Toggle(9) = %v, want ErrUnorderedEdge", err)
	}

	for s, want := range map[uint64]port.StateType{0: port.High, 5: port.High, 6: port.Low, 8: port.Low, 9: port.High} {
		if got := ch.StateAt(s); got != want {
			t.Errorf("StateAt(%d) = %v, want %v", s, got, want)
		}
	}
}

func TestTraceChannel(t *testing.T) {
	tr := New(1000, "SCLK", "SDATA")

	if c, err := tr.Channel("SDATA"); err != nil || c != tr.Channels[1] {
		t.Errorf("Channel(SDATA) = %v, %v", c, err)
	}
	if c, err := tr.Channel("0"); err != nil || c != tr.Channels[0] {
		t.Errorf("Channel(0) = %v, %v", c, err)
	}
	if _, err := tr.Channel("2"); !errors.Is(err, ErrUnknownChannel) {
		t.Errorf("Channel(2) = %v, want ErrUnknownChannel", err)
	}

	tr.Channels[0].Edges = []uint64{3, 41}
	if d := tr.Duration(); d != 42 {
		t.Errorf("Duration() = %d, want 42", d)
	}
}

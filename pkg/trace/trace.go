// Package trace holds digitized logic channels as edge lists and the cursor
// used to walk them.
package trace

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"rffedec/pkg/port"
)

var (
	ErrEndOfStream       = errors.New("end of stream")
	ErrUnknownChannel    = errors.New("unknown channel")
	ErrUnorderedEdge     = errors.New("edge is not after the previous edge")
	ErrUnsupportedFormat = errors.New("unsupported trace format")
	ErrMissingSampleRate = errors.New("sample rate is required")
	ErrNoChannels        = errors.New("trace has no channels")
)

// Channel is one digitized line: the level at sample 0 followed by the
// sample indices at which the level toggles, in increasing order.
type Channel struct {
	Name    string         `cbor:"name" json:"name"`
	Initial port.StateType `cbor:"initial" json:"initial"`
	Edges   []uint64       `cbor:"edges" json:"edges"`
}

// Trace is a set of channels sampled with the same clock.
type Trace struct {
	SampleRate uint32     `cbor:"samplerate" json:"samplerate"`
	Samples    uint64     `cbor:"samples" json:"samples"`
	Channels   []*Channel `cbor:"channels" json:"channels"`
}

// New returns an empty trace with one low channel per name.
func New(sampleRate uint32, names ...string) *Trace {
	t := &Trace{SampleRate: sampleRate}
	for _, n := range names {
		t.Channels = append(t.Channels, &Channel{Name: n, Initial: port.Low})
	}
	return t
}

// Channel looks a channel up by name, or by its zero based index.
func (t *Trace) Channel(id string) (*Channel, error) {
	for _, c := range t.Channels {
		if c.Name == id {
			return c, nil
		}
	}

	if i, err := strconv.Atoi(id); err == nil && i >= 0 && i < len(t.Channels) {
		return t.Channels[i], nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, id)
}

// Duration returns the sample count covered by the trace, at least up to the last edge.
func (t *Trace) Duration() uint64 {
	d := t.Samples
	for _, c := range t.Channels {
		if n := len(c.Edges); n > 0 && c.Edges[n-1]+1 > d {
			d = c.Edges[n-1] + 1
		}
	}
	return d
}

// Toggle appends an edge at sample s.
func (c *Channel) Toggle(s uint64) error {
	if n := len(c.Edges); n > 0 && s <= c.Edges[n-1] {
		return fmt.Errorf("%w: %d <= %d", ErrUnorderedEdge, s, c.Edges[n-1])
	}
	c.Edges = append(c.Edges, s)
	return nil
}

// Set drives the channel to state v at sample s, adding an edge only if the level changes.
func (c *Channel) Set(s uint64, v port.StateType) error {
	if c.Level() == v {
		return nil
	}
	return c.Toggle(s)
}

// Level returns the level after the last edge.
func (c *Channel) Level() port.StateType {
	if len(c.Edges)%2 == 0 {
		return c.Initial
	}
	return c.Initial.Toggle()
}

// StateAt returns the level at sample s. An edge at s is already in effect.
func (c *Channel) StateAt(s uint64) port.StateType {
	n := sort.Search(len(c.Edges), func(i int) bool { return c.Edges[i] > s })
	if n%2 == 0 {
		return c.Initial
	}
	return c.Initial.Toggle()
}

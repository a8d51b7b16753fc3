package trace

import (
	"sort"

	"rffedec/pkg/port"
)

// Cursor is a forward only position on a channel. It never moves backward.
type Cursor struct {
	ch *Channel
	// pos is the current sample index.
	pos uint64
	// next is the index of the first edge after pos.
	next int
}

// NewCursor returns a cursor at sample 0 of ch.
func NewCursor(ch *Channel) *Cursor {
	c := &Cursor{ch: ch}
	// an edge at sample 0 is already in effect
	c.AdvanceTo(0)
	return c
}

// Sample returns the current sample index.
func (c *Cursor) Sample() uint64 {
	return c.pos
}

// State returns the level at the current sample.
func (c *Cursor) State() port.StateType {
	if c.next%2 == 0 {
		return c.ch.Initial
	}
	return c.ch.Initial.Toggle()
}

// AdvanceToNextEdge moves the cursor onto the next edge.
func (c *Cursor) AdvanceToNextEdge() error {
	if c.next >= len(c.ch.Edges) {
		return ErrEndOfStream
	}

	c.pos = c.ch.Edges[c.next]
	c.next++
	return nil
}

// AdvanceTo moves the cursor to sample s. Positions behind the cursor are ignored.
func (c *Cursor) AdvanceTo(s uint64) {
	if s < c.pos {
		return
	}

	c.pos = s
	edges := c.ch.Edges[c.next:]
	c.next += sort.Search(len(edges), func(i int) bool { return edges[i] > s })
}

// NextEdge returns the sample of the next edge without moving.
func (c *Cursor) NextEdge() (uint64, error) {
	if c.next >= len(c.ch.Edges) {
		return 0, ErrEndOfStream
	}
	return c.ch.Edges[c.next], nil
}

// WouldTransitionBy reports whether moving to sample s would cross an edge.
func (c *Cursor) WouldTransitionBy(s uint64) bool {
	next, err := c.NextEdge()
	return err == nil && next <= s
}

// WouldTransitionWithin reports whether moving n samples ahead would cross an edge.
func (c *Cursor) WouldTransitionWithin(n uint64) bool {
	return c.WouldTransitionBy(c.pos + n)
}

// MoreTransitions reports whether any edge is left ahead of the cursor.
func (c *Cursor) MoreTransitions() bool {
	return c.next < len(c.ch.Edges)
}

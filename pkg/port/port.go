// Package port holds the definition of a sampled logic line
package port

import "time"

// EventType indicates the type of change to the line state.
type EventType int

const (
	_ EventType = iota
	// RisingEdge indicates a low to high transition.
	RisingEdge
	// FallingEdge indicates a high to low transition.
	FallingEdge
)

// Event is a single edge seen on a line while capturing.
type Event struct {
	// Timestamp indicates the time the event was detected.
	Timestamp time.Duration
	// The type of state change event this structure represents.
	Type EventType
}

// StateType is the sampled level of a line.
type StateType int

const (
	// High indicates a logical 1.
	High StateType = 1
	// Low indicates a logical 0.
	Low StateType = 0
	// Invalid indicates an unknown or invalid state.
	Invalid StateType = -1
)

// Toggle returns the opposite level. Invalid stays Invalid.
func (s StateType) Toggle() StateType {
	switch s {
	case High:
		return Low
	case Low:
		return High
	default:
		return Invalid
	}
}

func (s StateType) String() string {
	switch s {
	case High:
		return "1"
	case Low:
		return "0"
	default:
		return "?"
	}
}

// State returns the level a line has after the edge.
func (e EventType) State() StateType {
	switch e {
	case RisingEdge:
		return High
	case FallingEdge:
		return Low
	default:
		return Invalid
	}
}

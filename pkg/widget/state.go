package widget

import "fmt"

// State is a phase of the send lifecycle:
//
//	Idle -> Sending -> {Succeeded | Failed} -> Idle
type State int

const (
	StateIdle State = iota
	StateSending
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var transitions = map[State][]State{
	StateIdle:      {StateSending},
	StateSending:   {StateSucceeded, StateFailed},
	StateSucceeded: {StateIdle},
	StateFailed:    {StateIdle},
}

func (s State) canTransition(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

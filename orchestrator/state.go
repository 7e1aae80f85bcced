package orchestrator

import (
	"github.com/cockroachdb/errors"
)

// State is the state of a run.
type State int

const (
	// StateAwaitingModelResponse is the initial state, the transcript is sent to the model
	StateAwaitingModelResponse State = iota
	// StateExecutingTools is entered when the model asked for tool calls
	StateExecutingTools
	// StateDone is terminal, the model replied without tool calls
	StateDone
	// StateExhausted is terminal, the iteration ceiling was reached
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateAwaitingModelResponse:
		return "awaiting_model_response"
	case StateExecutingTools:
		return "executing_tools"
	case StateDone:
		return "done"
	case StateExhausted:
		return "exhausted"
	}
	return "unknown"
}

// IsTerminal returns true for Done and Exhausted.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateExhausted
}

var transitions = map[State][]State{
	StateAwaitingModelResponse: {StateDone, StateExecutingTools, StateExhausted},
	StateExecutingTools:        {StateAwaitingModelResponse},
}

// CanTransition returns true if the run may move from one state to the other.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type machine struct {
	state State
}

func (m *machine) transition(to State) error {
	if !CanTransition(m.state, to) {
		return errors.WithMessagef(ErrInvalidTransition, "%s -> %s", m.state, to)
	}
	m.state = to
	return nil
}

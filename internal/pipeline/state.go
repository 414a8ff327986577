package pipeline

import (
	"errors"
	"sync/atomic"

	yerrors "github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

var ErrInvalidTransition = errors.New("invalid pipeline state transition")

// State is the lifecycle of one streaming session.
type State uint32

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// StateMachine holds the session state. It is safe for concurrent use: the
// reader moves it to streaming while the main loop drives shutdown.
type StateMachine struct {
	state atomic.Uint32
}

// NewStateMachine starts in StateIdle.
func NewStateMachine() *StateMachine {
	return &StateMachine{}
}

func (m *StateMachine) State() State {
	return State(m.state.Load())
}

// Transition moves to the next state. There is no way back from closed and no
// reconnect edge.
func (m *StateMachine) Transition(to State) error {
	for {
		from := State(m.state.Load())
		if !canTransition(from, to) {
			return yerrors.Wrapf(ErrInvalidTransition, "%s -> %s", from, to)
		}
		if m.state.CompareAndSwap(uint32(from), uint32(to)) {
			logs.Infof("pipeline state %s -> %s", from, to)
			return nil
		}
	}
}

func canTransition(from, to State) bool {
	switch from {
	case StateIdle:
		return to == StateConnecting
	case StateConnecting:
		return to == StateStreaming || to == StateClosed
	case StateStreaming:
		return to == StateDraining || to == StateClosed
	case StateDraining:
		return to == StateClosed
	default:
		return false
	}
}

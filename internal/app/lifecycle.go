package app

import (
	"fmt"
	"sync"

	"github.com/bft-labs/stamper/internal/domain"
	"github.com/bft-labs/stamper/internal/ports"
)

// State represents the lifecycle state of a batch.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateAborted
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateCompleted:
		return "Completed"
	case StateAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// Phase is the step a unit is in.
type Phase int

const (
	PhaseConverting Phase = iota
	PhaseCompositing
	PhaseDispatching
	PhaseMonitoring
	PhaseCleaning
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseConverting:
		return "Converting"
	case PhaseCompositing:
		return "Compositing"
	case PhaseDispatching:
		return "Dispatching"
	case PhaseMonitoring:
		return "Monitoring"
	case PhaseCleaning:
		return "Cleaning"
	default:
		return "Unknown"
	}
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// PhaseObserver is told when a unit enters a phase.
type PhaseObserver interface {
	OnPhase(unit domain.Unit, phase Phase)
}

// Lifecycle manages the state machine for batches.
type Lifecycle struct {
	mu           sync.RWMutex
	state        State
	logger       ports.Logger
	eventEmitter EventEmitter
}

// NewLifecycle creates a new lifecycle manager.
func NewLifecycle(logger ports.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{
		state:        StateIdle,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo attempts to transition to a new state.
// Returns an error wrapping domain.ErrInvalidTransition if the transition is not valid.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state

	valid := false
	switch oldState {
	case StateIdle, StateCompleted, StateAborted:
		valid = newState == StateRunning
	case StateRunning:
		valid = newState == StateCompleted || newState == StateAborted
	}
	if !valid {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, oldState, newState)
	}

	l.state = newState
	l.mu.Unlock()

	// Emit event outside of lock
	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(oldState, newState, reason)
	}

	l.logger.Debug("state transition",
		ports.String("from", oldState.String()),
		ports.String("to", newState.String()),
		ports.String("reason", reason),
	)

	return nil
}

// CanStart returns true if a batch can be started.
func (l *Lifecycle) CanStart() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state != StateRunning
}

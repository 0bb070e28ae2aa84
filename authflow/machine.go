// Package authflow drives the login, signup and password reset ceremonies
// against the backend. Each flow is a small state machine: a submission is
// only accepted in the state that expects it, only one submission runs at a
// time, and the outcome of that one API call decides the next state.
package authflow

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrNoToken            = errors.New("code accepted but no session token was issued")
)

// machine is the state shared by every flow. S is the flow's state enum and E
// its event type; transition is the flow's one transition function.
type machine[S comparable, E any] struct {
	mu         sync.Mutex
	state      S
	busy       bool
	errText    string
	notice     string
	redirect   Timer
	cancelled  bool
	transition func(S, E) (S, error)
}

// begin claims the submission slot for an event the current state accepts.
func (m *machine[S, E]) begin(e E) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return ErrSubmissionInFlight
	}
	if _, err := m.transition(m.state, e); err != nil {
		return err
	}
	m.busy = true
	m.errText = ""
	return nil
}

// succeed applies e and releases the submission slot.
func (m *machine[S, E]) succeed(e E) S {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy = false
	if next, err := m.transition(m.state, e); err == nil {
		m.state = next
	}
	return m.state
}

// fail keeps the current state and records the text to show.
func (m *machine[S, E]) fail(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy = false
	m.errText = text
}

// redirectAfter schedules f on s unless the flow has been cancelled.
func (m *machine[S, E]) redirectAfter(s Scheduler, d time.Duration, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancelled {
		return
	}
	m.redirect = s.AfterFunc(d, f)
}

func (m *machine[S, E]) isCancelled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelled
}

func (m *machine[S, E]) State() S {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Busy reports whether a submission is in flight; the submit control is disabled meanwhile.
func (m *machine[S, E]) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy
}

// ErrorText is the message for the last failed submission, "" after a success.
func (m *machine[S, E]) ErrorText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errText
}

// Notice is the confirmation shown after a successful final step.
func (m *machine[S, E]) Notice() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notice
}

// Cancel stops a pending delayed redirect, e.g. when the user leaves the
// screen. A submission still in flight completes but no longer navigates.
func (m *machine[S, E]) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = true
	if m.redirect != nil {
		m.redirect.Stop()
		m.redirect = nil
	}
}

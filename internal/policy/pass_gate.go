// Package policy implements the expedited-pass gate: the two-state
// (open/closed) circuit that governs whether an attraction is still
// issuing expedited-queue passes for the day.
package policy

import "sync"

// GateState is the state of an attraction's expedited-pass gate.
type GateState string

const (
	// GateOpen means passes may still be issued.
	GateOpen GateState = "open"
	// GateClosed means no more passes will be issued today; once closed
	// a gate never reopens.
	GateClosed GateState = "closed"
)

// PassGate tracks the open/closed state of one attraction's expedited
// queue. Unlike a general circuit breaker it has no half-open probing
// state and no automatic recovery: closing is a one-way trip for the
// remainder of the simulated day, set when the return window would run
// past the park's closing buffer.
type PassGate struct {
	mu    sync.RWMutex
	state GateState
}

// NewPassGate creates a gate, open by default, or closed immediately if
// the attraction offers no expedited-queue seats at all.
func NewPassGate(startOpen bool) *PassGate {
	state := GateClosed
	if startOpen {
		state = GateOpen
	}
	return &PassGate{state: state}
}

// State returns the current gate state.
func (g *PassGate) State() GateState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// IsOpen reports whether passes may currently be issued.
func (g *PassGate) IsOpen() bool {
	return g.State() == GateOpen
}

// Close permanently closes the gate. Closing an already-closed gate is a
// no-op.
func (g *PassGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = GateClosed
}

package cast

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition is returned for a phase change outside the table.
var ErrIllegalTransition = errors.New("illegal cast transition")

// Phase is the state of the session machine.
type Phase int

const (
	NoReceivers Phase = iota
	ReceiversAvailable
	Connecting
	Connected
	Disconnected
)

func (p Phase) String() string {
	switch p {
	case NoReceivers:
		return "NO_RECEIVERS"
	case ReceiversAvailable:
		return "RECEIVERS_AVAILABLE"
	case Connecting:
		return "CONNECTING"
	case Connected:
		return "CONNECTED"
	case Disconnected:
		return "DISCONNECTED"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

var transitions = map[Phase][]Phase{
	NoReceivers:        {ReceiversAvailable},
	ReceiversAvailable: {NoReceivers, Connecting},
	Connecting:         {Connected, ReceiversAvailable, NoReceivers},
	Connected:          {Disconnected},
	Disconnected:       {ReceiversAvailable, NoReceivers},
}

// Machine enforces the transition table.
type Machine struct {
	phase Phase
}

// NewMachine starts in NoReceivers.
func NewMachine() *Machine {
	return &Machine{phase: NoReceivers}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// Can reports whether to is reachable from the current phase.
func (m *Machine) Can(to Phase) bool {
	for _, next := range transitions[m.phase] {
		if next == to {
			return true
		}
	}
	return false
}

// To moves to the given phase or returns ErrIllegalTransition.
func (m *Machine) To(to Phase) error {
	if !m.Can(to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.phase, to)
	}
	m.phase = to
	return nil
}

package memo

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a gate moves between states that
// are not connected.
var ErrInvalidTransition = errors.New("invalid transition")

// State is the lifecycle position of one gated computation.
type State int

const (
	Pending State = iota
	SkippedExisting
	SkippedRedundant
	SkippedInapplicable
	Running
	Completed
)

var stateNames = map[State]string{
	Pending:             "pending",
	SkippedExisting:     "skipped_existing",
	SkippedRedundant:    "skipped_redundant",
	SkippedInapplicable: "skipped_inapplicable",
	Running:             "running",
	Completed:           "completed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ParseState resolves a name produced by State.String.
func ParseState(name string) (State, error) {
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown gate state %q", name)
}

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool {
	switch s {
	case SkippedExisting, SkippedRedundant, SkippedInapplicable, Completed:
		return true
	default:
		return false
	}
}

// IsSkip reports whether s is one of the skip states.
func (s State) IsSkip() bool {
	switch s {
	case SkippedExisting, SkippedRedundant, SkippedInapplicable:
		return true
	default:
		return false
	}
}

// transition validates from -> to.
func transition(from, to State) (State, error) {
	if !isAllowedTransition(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return to, nil
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case Pending:
		return to == SkippedExisting || to == SkippedRedundant || to == Running
	case Running:
		return to == Completed || to == SkippedInapplicable
	default:
		return false
	}
}

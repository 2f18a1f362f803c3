package workflow

import "github.com/garyjia/ggr-reconciler/internal/domain/entity"

// State represents a report's position in the review lifecycle
type State string

const (
	StatePending  State = State(entity.StatusPending)
	StateApproved State = State(entity.StatusApproved)
	StateRejected State = State(entity.StatusRejected)
)

var validStates = map[State]bool{
	StatePending:  true,
	StateApproved: true,
	StateRejected: true,
}

var terminalStates = map[State]bool{
	StateApproved: true,
	StateRejected: true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}

// Status converts the state back to the reporting service's status value
func (s State) Status() entity.ReportStatus {
	return entity.ReportStatus(s)
}

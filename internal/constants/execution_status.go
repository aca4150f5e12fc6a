package constants

type ExecutionStatus string

const (
	StatusAssigned   ExecutionStatus = "assigned"
	StatusInProgress ExecutionStatus = "in_progress"
	StatusCompleted  ExecutionStatus = "completed"
	StatusFailed     ExecutionStatus = "failed"
)

var executionTransitions = map[ExecutionStatus][]ExecutionStatus{
	StatusAssigned:   {StatusInProgress},
	StatusInProgress: {StatusCompleted, StatusFailed},
}

// IsTerminal reports whether no further transition is permitted out of s.
func (s ExecutionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func (s ExecutionStatus) CanTransitionTo(next ExecutionStatus) bool {
	for _, allowed := range executionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ExecutionStatus) Valid() bool {
	switch s {
	case StatusAssigned, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

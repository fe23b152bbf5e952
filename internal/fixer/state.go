package fixer

import "fmt"

// State is the lifecycle position of one file in a fix run.
type State string

const (
	StatePending   State = "PENDING"
	StateRequested State = "REQUESTED"
	StateFixed     State = "FIXED"
	StateFailed    State = "FAILED"
)

var transitions = map[State][]State{
	StatePending:   {StateRequested, StateFailed},
	StateRequested: {StateFixed, StateFailed},
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateFixed || s == StateFailed
}

// CanTransition reports whether moving from s to next is allowed.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// fileState tracks a single file; it is owned by exactly one task.
type fileState struct {
	path  string
	state State
}

func newFileState(path string) *fileState {
	return &fileState{path: path, state: StatePending}
}

func (f *fileState) moveTo(next State) error {
	if !f.state.CanTransition(next) {
		return fmt.Errorf("invalid state transition for %s: %s -> %s", f.path, f.state, next)
	}
	f.state = next
	return nil
}

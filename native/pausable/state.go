package pausable

// State is the two-position circuit breaker.
type State uint8

const (
	Active State = iota
	Paused
)

func (s State) Paused() bool { return s == Paused }

func (s State) String() string {
	if s == Paused {
		return "paused"
	}
	return "active"
}

// pause engages the breaker and reports whether the state changed.
func pause(s *State) bool {
	if s.Paused() {
		return false
	}
	*s = Paused
	return true
}

// unpause releases the breaker and reports whether the state changed.
func unpause(s *State) bool {
	if !s.Paused() {
		return false
	}
	*s = Active
	return true
}

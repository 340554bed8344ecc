package session

// State represents the lifecycle of a search session.
type State string

const (
	StateCreated              State = "created"
	StatePlanning             State = "planning"
	StateSearching            State = "searching"
	StateEvaluating           State = "evaluating"
	StateRanked               State = "ranked"
	StateAutoActing           State = "auto_acting"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateCompleted            State = "completed"
	StateFailed               State = "failed"
	StateCancelled            State = "cancelled"
)

// allowedTransitions is the forward-only edge set. Cancellation is
// reachable from every non-terminal state; no edge leaves a terminal
// state, which makes every session history monotonic.
var allowedTransitions = map[State][]State{
	StateCreated:              {StatePlanning, StateFailed, StateCancelled},
	StatePlanning:             {StateSearching, StateFailed, StateCancelled},
	StateSearching:            {StateEvaluating, StateFailed, StateCancelled},
	StateEvaluating:           {StateRanked, StateFailed, StateCancelled},
	StateRanked:               {StateAutoActing, StateAwaitingConfirmation, StateCompleted, StateFailed, StateCancelled},
	StateAutoActing:           {StateCompleted, StateFailed, StateCancelled},
	StateAwaitingConfirmation: {StateAutoActing, StateCompleted, StateFailed, StateCancelled},
	StateCompleted:            nil,
	StateFailed:               nil,
	StateCancelled:            nil,
}

// Terminal reports whether no transition may leave the state.
func (s State) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

// CanTransition reports whether moving from s to next is legal.
func (s State) CanTransition(next State) bool {
	for _, candidate := range allowedTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"torrentai/internal/evaluate"
	"torrentai/internal/intent"
	"torrentai/internal/normalize"
	"torrentai/internal/planner"
	"torrentai/internal/rank"
	"torrentai/internal/sources"
)

// SourceFailure is the recorded form of a non-fatal adapter error.
type SourceFailure struct {
	Adapter string `json:"adapter"`
	Query   string `json:"query"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Snapshot is an immutable view of a session at one instant. Slices
// are copies; observers may hold them indefinitely.
type Snapshot struct {
	ID            string
	Request       string
	State         State
	Intent        *intent.Intent
	Plan          *planner.Plan
	Raw           []sources.Candidate
	Normalized    []normalize.Candidate
	Ranked        []evaluate.Scored
	Decision      rank.Decision
	SourceErrors  []SourceFailure
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Session owns the full lifecycle of one search. All accumulated state
// is guarded by the session's own mutex; nothing outside the session
// mutates it.
type Session struct {
	id        string
	request   string
	createdAt time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	state         State
	updatedAt     time.Time
	intent        *intent.Intent
	plan          *planner.Plan
	raw           []sources.Candidate
	normalized    []normalize.Candidate
	ranked        []evaluate.Scored
	decision      rank.Decision
	sourceErrors  []SourceFailure
	failureReason string

	subscribers map[int]chan Snapshot
	nextSubID   int
}

// New creates a session in the Created state. The parent context
// bounds the session's whole lifetime; Cancel severs it early.
func New(parent context.Context, request string) *Session {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	now := time.Now().UTC()
	return &Session{
		id:          uuid.NewString(),
		request:     request,
		createdAt:   now,
		updatedAt:   now,
		ctx:         ctx,
		cancel:      cancel,
		state:       StateCreated,
		subscribers: make(map[int]chan Snapshot),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Request returns the original free-text request.
func (s *Session) Request() string { return s.request }

// Context is cancelled when the session is cancelled or its parent
// expires. All session work must run under it.
func (s *Session) Context() context.Context { return s.ctx }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cancel severs the session context and moves any non-terminal
// session to Cancelled. Work still in flight observes the context at
// its next suspension point; a parked session transitions immediately
// so Cancelled is reachable without a runner on the session.
func (s *Session) Cancel() {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.CanTransition(StateCancelled) {
		return
	}
	s.state = StateCancelled
	s.failureReason = "cancelled"
	s.updatedAt = time.Now().UTC()
	s.notifyLocked()
}

// Snapshot returns a copy of the session's observable state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:            s.id,
		Request:       s.request,
		State:         s.state,
		Decision:      s.decision,
		FailureReason: s.failureReason,
		CreatedAt:     s.createdAt,
		UpdatedAt:     s.updatedAt,
	}
	if s.intent != nil {
		in := *s.intent
		snap.Intent = &in
	}
	if s.plan != nil {
		p := *s.plan
		snap.Plan = &p
	}
	snap.Raw = append([]sources.Candidate(nil), s.raw...)
	snap.Normalized = append([]normalize.Candidate(nil), s.normalized...)
	snap.Ranked = append([]evaluate.Scored(nil), s.ranked...)
	snap.SourceErrors = append([]SourceFailure(nil), s.sourceErrors...)
	return snap
}

// Subscribe registers an observer. The returned channel receives a
// snapshot after every state or accumulator change; slow observers
// miss intermediate snapshots rather than block the session. The
// cancel function must be called exactly once.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Snapshot, 8)
	s.subscribers[id] = ch
	once := sync.Once{}
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			if existing, ok := s.subscribers[id]; ok {
				delete(s.subscribers, id)
				close(existing)
			}
			s.mu.Unlock()
		})
	}
	return ch, unsubscribe
}

func (s *Session) notifyLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
		}
	}
}

// transition moves to next and reports whether the edge was legal.
// Illegal transitions (including any out of a terminal state) are
// refused without mutation.
func (s *Session) transition(next State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.CanTransition(next) {
		return false
	}
	s.state = next
	s.updatedAt = time.Now().UTC()
	s.notifyLocked()
	return true
}

func (s *Session) setIntent(in intent.Intent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intent = &in
	s.updatedAt = time.Now().UTC()
	s.notifyLocked()
}

func (s *Session) setPlan(p planner.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = &p
	s.updatedAt = time.Now().UTC()
	s.notifyLocked()
}

// appendRaw accumulates candidates incrementally during Searching so
// observers can watch progress.
func (s *Session) appendRaw(batch []sources.Candidate) {
	if len(batch) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = append(s.raw, batch...)
	s.updatedAt = time.Now().UTC()
	s.notifyLocked()
}

func (s *Session) recordSourceErrors(errs []*sources.Error) {
	if len(errs) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range errs {
		failure := SourceFailure{Adapter: e.Adapter, Query: e.Query, Kind: string(e.Kind)}
		if e.Cause != nil {
			failure.Message = e.Cause.Error()
		}
		s.sourceErrors = append(s.sourceErrors, failure)
	}
	s.updatedAt = time.Now().UTC()
	s.notifyLocked()
}

func (s *Session) setNormalized(candidates []normalize.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.normalized = candidates
	s.updatedAt = time.Now().UTC()
	s.notifyLocked()
}

func (s *Session) setOutcome(outcome rank.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranked = outcome.Ranked
	s.decision = outcome.Decision
	s.updatedAt = time.Now().UTC()
	s.notifyLocked()
}

func (s *Session) setFailureReason(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failureReason = reason
	s.updatedAt = time.Now().UTC()
	s.notifyLocked()
}

// Ranked returns a copy of the ranked list and the gate decision.
func (s *Session) Ranked() ([]evaluate.Scored, rank.Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]evaluate.Scored(nil), s.ranked...), s.decision
}

// Registry tracks live sessions. Sessions are independent; the
// registry only provides lookup and listing.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add registers a session.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
}

// Get looks a session up by identifier.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// List returns all sessions ordered by creation time.
func (r *Registry) List() []*Session {
	r.mu.Lock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].createdAt.Equal(out[j].createdAt) {
			return out[i].createdAt.Before(out[j].createdAt)
		}
		return out[i].id < out[j].id
	})
	return out
}

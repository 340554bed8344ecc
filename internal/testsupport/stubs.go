package testsupport

import (
	"context"
	"sync"

	"torrentai/internal/evaluate"
	"torrentai/internal/intent"
	"torrentai/internal/normalize"
	"torrentai/internal/planner"
	"torrentai/internal/sources"
)

// StubInterpreter implements interpret.Service with canned responses.
type StubInterpreter struct {
	Intent     intent.Intent
	ParseErr   error
	Suggestion planner.Suggestion
	StratErr   error
}

func (s *StubInterpreter) ParseIntent(ctx context.Context, request string) (intent.Intent, error) {
	if err := ctx.Err(); err != nil {
		return intent.Intent{}, err
	}
	return s.Intent, s.ParseErr
}

func (s *StubInterpreter) BuildStrategy(ctx context.Context, in intent.Intent) (planner.Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return planner.Suggestion{}, err
	}
	return s.Suggestion, s.StratErr
}

// StubAdapter implements sources.Adapter and records its calls.
type StubAdapter struct {
	AdapterName string
	// Respond produces the result for each call. When nil the adapter
	// returns Candidates/Err unconditionally.
	Respond    func(query string, hints []string) ([]sources.Candidate, error)
	Candidates []sources.Candidate
	Err        error

	mu      sync.Mutex
	queries []string
}

func (s *StubAdapter) Name() string { return s.AdapterName }

func (s *StubAdapter) Search(ctx context.Context, query string, hints []string) ([]sources.Candidate, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, sources.NewError(s.AdapterName, query, sources.ErrorTimeout, err)
	}
	if s.Respond != nil {
		return s.Respond(query, hints)
	}
	return s.Candidates, s.Err
}

// Queries returns a copy of the queries issued so far.
func (s *StubAdapter) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// StubEvaluator implements evaluate.Service. Score maps candidate
// titles to (relevance, confidence) pairs; unmapped titles score zero.
type StubEvaluator struct {
	Score map[string][2]float64
	Err   error
	// FailCalls makes the first N calls fail with Err before
	// succeeding, for retry tests.
	FailCalls int

	mu    sync.Mutex
	calls int
}

func (s *StubEvaluator) Evaluate(ctx context.Context, in intent.Intent, candidates []normalize.Candidate) ([]evaluate.Scored, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()
	if s.Err != nil && (s.FailCalls == 0 || call <= s.FailCalls) {
		return nil, s.Err
	}
	out := make([]evaluate.Scored, len(candidates))
	for i, cand := range candidates {
		scores := s.Score[cand.Title]
		out[i] = evaluate.Scored{
			Candidate:  cand,
			Relevance:  scores[0],
			Confidence: scores[1],
			Quality:    scores[0],
		}
	}
	return out, nil
}

// Calls reports how many times Evaluate ran.
func (s *StubEvaluator) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// StubTransferer implements session.Transferer and records initiations.
type StubTransferer struct {
	Err error

	mu        sync.Mutex
	initiated []string
	sessions  []string
}

func (s *StubTransferer) Initiate(ctx context.Context, magnet, title, sessionID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Err != nil {
		return "", s.Err
	}
	s.mu.Lock()
	s.initiated = append(s.initiated, magnet)
	s.sessions = append(s.sessions, sessionID)
	s.mu.Unlock()
	return "transfer-1", nil
}

// Initiated returns the magnet links handed to the engine.
func (s *StubTransferer) Initiated() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.initiated...)
}

// Sessions returns the session ids handed to the engine, in initiation
// order.
func (s *StubTransferer) Sessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sessions...)
}

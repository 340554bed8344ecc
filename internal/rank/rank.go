// Package rank orders scored candidates and gates the auto-action
// decision. It is pure and deterministic: equal scores always resolve
// to first-seen order, so concurrency upstream never leaks into the
// ranked output.
package rank

import (
	"sort"

	"torrentai/internal/evaluate"
)

// Decision is the terminal verdict of the ranking engine.
type Decision string

const (
	// DecisionProceed means the top candidate cleared the auto-action
	// threshold and should go straight to the transfer engine.
	DecisionProceed Decision = "proceed"
	// DecisionAwaitConfirmation means a ranked list exists but needs
	// external confirmation before any action.
	DecisionAwaitConfirmation Decision = "await_confirmation"
	// DecisionNoQualifyingResults means nothing survived the
	// confidence filter. A valid terminal state, not an error.
	DecisionNoQualifyingResults Decision = "no_qualifying_results"
)

// Options carries the two independent thresholds. Config validation
// guarantees AutoActionThreshold >= MinConfidence.
type Options struct {
	MinConfidence       float64
	AutoActionThreshold float64
	// AutoAction requests automatic transfer of a qualifying top
	// candidate. When false the decision never goes past
	// await_confirmation.
	AutoAction bool
}

// Outcome is the ranked list plus the gate decision.
type Outcome struct {
	Ranked   []evaluate.Scored
	Decision Decision
}

// Top returns the best ranked candidate, if any.
func (o Outcome) Top() (evaluate.Scored, bool) {
	if len(o.Ranked) == 0 {
		return evaluate.Scored{}, false
	}
	return o.Ranked[0], true
}

// Rank filters by minimum confidence, sorts by relevance with the
// fixed tie-break chain (confidence, seeders, first-seen), and gates
// the result against the auto-action threshold.
func Rank(scored []evaluate.Scored, opts Options) Outcome {
	filtered := make([]evaluate.Scored, 0, len(scored))
	for _, s := range scored {
		if s.Confidence >= opts.MinConfidence {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) == 0 {
		return Outcome{Decision: DecisionNoQualifyingResults}
	}

	sort.Slice(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if a.Relevance != b.Relevance {
			return a.Relevance > b.Relevance
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Candidate.Seeders != b.Candidate.Seeders {
			return a.Candidate.Seeders > b.Candidate.Seeders
		}
		return a.Candidate.FirstSeen < b.Candidate.FirstSeen
	})

	decision := DecisionAwaitConfirmation
	if opts.AutoAction && filtered[0].Relevance >= opts.AutoActionThreshold {
		decision = DecisionProceed
	}
	return Outcome{Ranked: filtered, Decision: decision}
}

package evaluate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"torrentai/internal/intent"
	"torrentai/internal/logging"
	"torrentai/internal/normalize"
	"torrentai/internal/services"
	"torrentai/internal/services/llm"
	"torrentai/internal/textutil"
)

// lowSimilarityThreshold is the cosine similarity below which a
// candidate title is flagged as bearing little resemblance to the
// requested title.
const lowSimilarityThreshold = 0.2

// ScorePolicy decides what happens when the evaluator emits a score
// outside [0,1].
type ScorePolicy string

const (
	// ScoreClamp silently clamps out-of-range scores into [0,1].
	ScoreClamp ScorePolicy = "clamp"
	// ScoreReject fails the whole evaluation on any out-of-range score.
	ScoreReject ScorePolicy = "reject"
)

// Scored wraps a normalized candidate with the evaluator's judgment.
// All scores lie in [0,1] once a Scored value exists.
type Scored struct {
	Candidate    normalize.Candidate
	Relevance    float64
	Confidence   float64
	Quality      float64
	Completeness float64
	MatchReasons []string
	Warnings     []string
}

// Service scores normalized candidates against an intent.
// Implementations must return exactly one Scored per input candidate,
// in input order.
type Service interface {
	Evaluate(ctx context.Context, in intent.Intent, candidates []normalize.Candidate) ([]Scored, error)
}

// Completer is the slice of the LLM client this package needs.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// LLMService implements Service on top of a chat completion client.
type LLMService struct {
	client Completer
	policy ScorePolicy
	logger *slog.Logger
}

var _ Service = (*LLMService)(nil)

// NewLLMService constructs the LLM-backed evaluator.
func NewLLMService(client Completer, policy ScorePolicy, logger *slog.Logger) *LLMService {
	if policy != ScoreReject {
		policy = ScoreClamp
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LLMService{
		client: client,
		policy: policy,
		logger: logging.NewComponentLogger(logger, "evaluate"),
	}
}

type evaluationPayload struct {
	RelevanceScore    float64  `json:"relevance_score"`
	Confidence        float64  `json:"confidence"`
	MatchReasons      []string `json:"match_reasons"`
	Warnings          []string `json:"warnings"`
	QualityScore      float64  `json:"quality_score"`
	CompletenessScore float64  `json:"completeness_score"`
}

// Evaluate implements Service. The model returns one evaluation per
// candidate, aligned by position; any count mismatch is an evaluator
// contract breach and fails the call.
func (s *LLMService) Evaluate(ctx context.Context, in intent.Intent, candidates []normalize.Candidate) ([]Scored, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	content, err := s.client.CompleteJSON(ctx, evaluationSystemPrompt, evaluationUserPrompt(in, candidates))
	if err != nil {
		return nil, services.Wrap(services.ErrEvaluation, "evaluate", "score", "completion failed", err)
	}

	var payloads []evaluationPayload
	if err := llm.DecodeJSON(content, &payloads); err != nil {
		return nil, services.Wrap(services.ErrEvaluation, "evaluate", "score", "malformed evaluation payload", err)
	}
	if len(payloads) != len(candidates) {
		return nil, services.Wrap(services.ErrEvaluation, "evaluate", "score",
			fmt.Sprintf("evaluation count mismatch: %d evaluations for %d candidates", len(payloads), len(candidates)), nil)
	}

	scored := make([]Scored, len(candidates))
	for i, payload := range payloads {
		entry := Scored{
			Candidate:    candidates[i],
			MatchReasons: cleanList(payload.MatchReasons),
			Warnings:     cleanList(payload.Warnings),
		}
		scores := []struct {
			name  string
			value float64
			dst   *float64
		}{
			{"relevance_score", payload.RelevanceScore, &entry.Relevance},
			{"confidence", payload.Confidence, &entry.Confidence},
			{"quality_score", payload.QualityScore, &entry.Quality},
			{"completeness_score", payload.CompletenessScore, &entry.Completeness},
		}
		for _, score := range scores {
			normalized, err := s.normalizeScore(score.name, score.value, i)
			if err != nil {
				return nil, err
			}
			*score.dst = normalized
		}
		scored[i] = entry
	}
	flagDissimilarTitles(in, scored)
	s.logger.DebugContext(ctx, "evaluated candidates",
		logging.String("intent", in.Summary()),
		logging.Int("count", len(scored)))
	return scored, nil
}

func (s *LLMService) normalizeScore(name string, value float64, index int) (float64, error) {
	if value >= 0 && value <= 1 {
		return value, nil
	}
	if s.policy == ScoreReject {
		return 0, services.Wrap(services.ErrEvaluation, "evaluate", "score",
			fmt.Sprintf("candidate %d: %s %.3f outside [0,1]", index, name, value), nil)
	}
	if value < 0 {
		return 0, nil
	}
	return 1, nil
}

// flagDissimilarTitles attaches a deterministic warning to candidates
// whose titles share almost no tokens with the requested title. The
// model's scores are left untouched; the warning only surfaces in
// candidate views.
func flagDissimilarTitles(in intent.Intent, scored []Scored) {
	requested := textutil.NewFingerprint(in.Title)
	if requested == nil {
		return
	}
	for i := range scored {
		candidate := textutil.NewFingerprint(scored[i].Candidate.Title)
		if candidate == nil {
			continue
		}
		if textutil.CosineSimilarity(requested, candidate) < lowSimilarityThreshold {
			scored[i].Warnings = append(scored[i].Warnings, "title bears little resemblance to the request")
		}
	}
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

package interpret

import (
	"context"
	"log/slog"
	"strings"

	"torrentai/internal/intent"
	"torrentai/internal/language"
	"torrentai/internal/logging"
	"torrentai/internal/planner"
	"torrentai/internal/services"
	"torrentai/internal/services/llm"
)

// Service turns free-text requests into structured intents and query
// strategies. Implementations must be safe for concurrent use.
type Service interface {
	// ParseIntent interprets one natural language request. The request
	// text is never mutated; the returned intent is complete and valid.
	ParseIntent(ctx context.Context, request string) (intent.Intent, error)
	// BuildStrategy proposes query variants for an already parsed
	// intent. An empty suggestion is valid; the planner substitutes
	// bare-title variants.
	BuildStrategy(ctx context.Context, in intent.Intent) (planner.Suggestion, error)
}

// Completer is the slice of the LLM client this package needs.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// LLMService implements Service on top of a chat completion client.
type LLMService struct {
	client Completer
	logger *slog.Logger
}

var _ Service = (*LLMService)(nil)

// NewLLMService constructs the LLM-backed interpreter.
func NewLLMService(client Completer, logger *slog.Logger) *LLMService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LLMService{
		client: client,
		logger: logging.NewComponentLogger(logger, "interpret"),
	}
}

type parsePayload struct {
	ContentType        string     `json:"content_type"`
	Title              string     `json:"title"`
	Year               *int       `json:"year"`
	TVDetails          *tvPayload `json:"tv_details"`
	QualityPreferences []string   `json:"quality_preferences"`
	Language           *string    `json:"language"`
	AdditionalContext  []string   `json:"additional_context"`
}

type tvPayload struct {
	Season         *int               `json:"season"`
	Episode        *int               `json:"episode"`
	EpisodeRange   *episodeRangeShape `json:"episode_range"`
	CompleteSeason bool               `json:"complete_season"`
	CompleteSeries bool               `json:"complete_series"`
}

type episodeRangeShape struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

// ParseIntent implements Service.
func (s *LLMService) ParseIntent(ctx context.Context, request string) (intent.Intent, error) {
	request = strings.TrimSpace(request)
	if request == "" {
		return intent.Intent{}, services.Wrap(services.ErrParse, "interpret", "parse", "request is empty", nil)
	}

	content, err := s.client.CompleteJSON(ctx, parseSystemPrompt, parseUserPrompt(request))
	if err != nil {
		return intent.Intent{}, services.Wrap(services.ErrParse, "interpret", "parse", "completion failed", err)
	}

	var payload parsePayload
	if err := llm.DecodeJSON(content, &payload); err != nil {
		return intent.Intent{}, services.Wrap(services.ErrParse, "interpret", "parse", "malformed interpretation payload", err)
	}

	result, err := buildIntent(payload)
	if err != nil {
		return intent.Intent{}, err
	}
	s.logger.DebugContext(ctx, "parsed request",
		logging.String(logging.FieldQuery, request),
		logging.String("intent", result.Summary()))
	return result, nil
}

func buildIntent(payload parsePayload) (intent.Intent, error) {
	title := strings.TrimSpace(payload.Title)
	if title == "" {
		return intent.Intent{}, services.Wrap(services.ErrParse, "interpret", "parse", "interpretation produced no title", nil)
	}

	contentType, known := intent.ParseContentType(payload.ContentType)
	result := intent.Intent{
		ContentType:        contentType,
		Title:              title,
		QualityPreferences: cleanList(payload.QualityPreferences),
		Context:            cleanList(payload.AdditionalContext),
	}
	if !known {
		// Unrecognized kinds still flow through as "other"; the raw
		// label is kept for display.
		if raw := strings.TrimSpace(payload.ContentType); raw != "" {
			result.OtherLabel = raw
		}
	}
	if payload.Year != nil && *payload.Year > 0 {
		result.Year = *payload.Year
	}
	if payload.Language != nil {
		result.Language = canonicalLanguage(*payload.Language)
	}
	if tv := payload.TVDetails; tv != nil {
		details := &intent.TVDetails{
			CompleteSeason: tv.CompleteSeason,
			CompleteSeries: tv.CompleteSeries,
		}
		if tv.Season != nil && *tv.Season > 0 {
			details.Season = *tv.Season
		}
		if tv.Episode != nil && *tv.Episode > 0 {
			details.Episode = *tv.Episode
		}
		if r := tv.EpisodeRange; r != nil && r.First > 0 && r.Last > 0 {
			first, last := r.First, r.Last
			if last < first {
				first, last = last, first
			}
			details.EpisodeRange = &intent.EpisodeRange{First: first, Last: last}
		}
		// A tv_details block with no usable fields carries no signal.
		if details.Season > 0 || details.Episode > 0 || details.EpisodeRange != nil ||
			details.CompleteSeason || details.CompleteSeries {
			result.TV = details
		}
	}
	return result, nil
}

// BuildStrategy implements Service.
func (s *LLMService) BuildStrategy(ctx context.Context, in intent.Intent) (planner.Suggestion, error) {
	if strings.TrimSpace(in.Title) == "" {
		return planner.Suggestion{}, services.Wrap(services.ErrStrategy, "interpret", "strategy", "intent title is empty", nil)
	}

	content, err := s.client.CompleteJSON(ctx, strategySystemPrompt, strategyUserPrompt(in))
	if err != nil {
		return planner.Suggestion{}, services.Wrap(services.ErrStrategy, "interpret", "strategy", "completion failed", err)
	}

	var suggestion planner.Suggestion
	if err := llm.DecodeJSON(content, &suggestion); err != nil {
		return planner.Suggestion{}, services.Wrap(services.ErrStrategy, "interpret", "strategy", "malformed strategy payload", err)
	}
	s.logger.DebugContext(ctx, "built strategy",
		logging.String("intent", in.Summary()),
		logging.Int("primary", len(suggestion.PrimaryQueries)),
		logging.Int("fallback", len(suggestion.FallbackQueries)))
	return suggestion, nil
}

// canonicalLanguage maps language codes and words to their display
// form so "es", "spa", and "spanish" all become "Spanish". Values the
// mapping does not recognize pass through trimmed.
func canonicalLanguage(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if iso := language.ToISO2(trimmed); iso != "" {
		if name := language.DisplayName(iso); name != strings.ToUpper(iso) {
			return name
		}
	}
	return trimmed
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

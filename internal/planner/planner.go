package planner

import (
	"fmt"
	"strings"

	"torrentai/internal/intent"
	"torrentai/internal/services"
)

// Plan is an ordered query strategy: primary variants are issued
// first, fallback variants only when primaries come up short, and
// per-source hints ride along for adapters that understand them.
type Plan struct {
	Primary  []string
	Fallback []string
	// SourceHints maps an adapter name to source-specific query hints.
	SourceHints map[string][]string
}

// Suggestion is the raw variant material returned by the
// interpretation capability's strategy call.
type Suggestion struct {
	PrimaryQueries  []string            `json:"primary_queries"`
	FallbackQueries []string            `json:"fallback_queries"`
	SourceHints     map[string][]string `json:"scraper_hints"`
}

// Build assembles a Plan from an intent and the interpreter's
// suggestion. It is pure: no I/O, deterministic output. The primary
// bucket is guaranteed non-empty; when the suggestion is unusable the
// bare title (and "title year" when a year is known) stands in.
func Build(in intent.Intent, suggestion Suggestion) (Plan, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Plan{}, services.Wrap(services.ErrParse, "planner", "build", "intent title is empty", nil)
	}

	plan := Plan{
		Primary:  cleanQueries(suggestion.PrimaryQueries),
		Fallback: cleanQueries(suggestion.FallbackQueries),
	}

	if len(plan.Primary) == 0 {
		plan.Primary = fallbackPrimary(in, title)
	}
	plan.Fallback = dropOverlap(plan.Fallback, plan.Primary)

	if len(suggestion.SourceHints) > 0 {
		plan.SourceHints = make(map[string][]string, len(suggestion.SourceHints))
		for source, hints := range suggestion.SourceHints {
			name := strings.ToLower(strings.TrimSpace(source))
			cleaned := cleanQueries(hints)
			if name == "" || len(cleaned) == 0 {
				continue
			}
			plan.SourceHints[name] = cleaned
		}
		if len(plan.SourceHints) == 0 {
			plan.SourceHints = nil
		}
	}

	return plan, nil
}

// HintsFor returns the hints registered for an adapter name, if any.
func (p Plan) HintsFor(adapter string) []string {
	if len(p.SourceHints) == 0 {
		return nil
	}
	return p.SourceHints[strings.ToLower(strings.TrimSpace(adapter))]
}

// Queries returns primary then fallback variants in issue order.
func (p Plan) Queries() []string {
	out := make([]string, 0, len(p.Primary)+len(p.Fallback))
	out = append(out, p.Primary...)
	out = append(out, p.Fallback...)
	return out
}

func fallbackPrimary(in intent.Intent, title string) []string {
	queries := []string{title}
	if in.Year > 0 {
		queries = append(queries, fmt.Sprintf("%s %d", title, in.Year))
	}
	if tv := in.TV; tv != nil && tv.Season > 0 {
		// Sites disagree on season notation, so cover both the compact
		// code and the spelled-out phrase.
		queries = append(queries,
			fmt.Sprintf("%s S%02d", title, tv.Season),
			fmt.Sprintf("%s Season %d", title, tv.Season),
		)
	}
	return queries
}

func cleanQueries(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, q := range raw {
		trimmed := strings.TrimSpace(q)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func dropOverlap(queries, against []string) []string {
	if len(queries) == 0 {
		return nil
	}
	taken := make(map[string]struct{}, len(against))
	for _, q := range against {
		taken[strings.ToLower(q)] = struct{}{}
	}
	out := make([]string, 0, len(queries))
	for _, q := range queries {
		if _, ok := taken[strings.ToLower(q)]; ok {
			continue
		}
		out = append(out, q)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

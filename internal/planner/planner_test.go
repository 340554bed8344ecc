package planner

import (
	"errors"
	"testing"

	"torrentai/internal/intent"
	"torrentai/internal/services"
)

func TestBuildRejectsEmptyTitle(t *testing.T) {
	_, err := Build(intent.Intent{Title: "   "}, Suggestion{PrimaryQueries: []string{"something"}})
	if err == nil {
		t.Fatal("expected error for empty title")
	}
	if !errors.Is(err, services.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestBuildUsesSuggestionBuckets(t *testing.T) {
	plan, err := Build(intent.Intent{Title: "Breaking Bad"}, Suggestion{
		PrimaryQueries:  []string{"Breaking Bad S02", "Breaking Bad Season 2", " "},
		FallbackQueries: []string{"Breaking Bad", "breaking bad s02"},
		SourceHints: map[string][]string{
			"YTS": {"Breaking Bad 2008"},
			"":    {"ignored"},
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got, want := len(plan.Primary), 2; got != want {
		t.Fatalf("primary count = %d, want %d (%v)", got, want, plan.Primary)
	}
	// Fallback entries duplicating a primary variant are dropped.
	if got, want := len(plan.Fallback), 1; got != want {
		t.Fatalf("fallback count = %d, want %d (%v)", got, want, plan.Fallback)
	}
	if plan.Fallback[0] != "Breaking Bad" {
		t.Fatalf("fallback[0] = %q", plan.Fallback[0])
	}
	if hints := plan.HintsFor("yts"); len(hints) != 1 || hints[0] != "Breaking Bad 2008" {
		t.Fatalf("HintsFor(yts) = %v", hints)
	}
}

func TestBuildFallsBackToBareTitle(t *testing.T) {
	plan, err := Build(intent.Intent{
		ContentType: intent.ContentTVShow,
		Title:       "The Wire",
		Year:        2002,
		TV:          &intent.TVDetails{Season: 3},
	}, Suggestion{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []string{"The Wire", "The Wire 2002", "The Wire S03", "The Wire Season 3"}
	if len(plan.Primary) != len(want) {
		t.Fatalf("primary = %v, want %v", plan.Primary, want)
	}
	for i, q := range want {
		if plan.Primary[i] != q {
			t.Fatalf("primary[%d] = %q, want %q", i, plan.Primary[i], q)
		}
	}
}

func TestQueriesOrdersPrimaryFirst(t *testing.T) {
	plan := Plan{Primary: []string{"a", "b"}, Fallback: []string{"c"}}
	queries := plan.Queries()
	if len(queries) != 3 || queries[0] != "a" || queries[2] != "c" {
		t.Fatalf("Queries() = %v", queries)
	}
}

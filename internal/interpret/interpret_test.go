package interpret

import (
	"context"
	"errors"
	"testing"

	"torrentai/internal/intent"
	"torrentai/internal/services"
)

type stubCompleter struct {
	content string
	err     error
	system  string
	user    string
}

func (s *stubCompleter) CompleteJSON(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	s.system = systemPrompt
	s.user = userPrompt
	return s.content, s.err
}

func TestParseIntentTVShow(t *testing.T) {
	stub := &stubCompleter{content: `{
		"content_type": "tv_show",
		"title": "Breaking Bad",
		"year": null,
		"tv_details": {
			"season": 2,
			"episode": null,
			"episode_range": null,
			"complete_season": true,
			"complete_series": false
		},
		"quality_preferences": ["1080p"],
		"language": null,
		"additional_context": []
	}`}
	svc := NewLLMService(stub, nil)

	got, err := svc.ParseIntent(context.Background(), "get me season 2 of breaking bad in 1080p")
	if err != nil {
		t.Fatalf("ParseIntent: %v", err)
	}
	if got.ContentType != intent.ContentTVShow {
		t.Fatalf("content type = %q", got.ContentType)
	}
	if got.Title != "Breaking Bad" {
		t.Fatalf("title = %q", got.Title)
	}
	if got.TV == nil || got.TV.Season != 2 || !got.TV.CompleteSeason {
		t.Fatalf("tv details = %+v", got.TV)
	}
	if len(got.QualityPreferences) != 1 || got.QualityPreferences[0] != "1080p" {
		t.Fatalf("quality = %v", got.QualityPreferences)
	}
}

func TestParseIntentCodeFencedPayload(t *testing.T) {
	stub := &stubCompleter{content: "```json\n{\"content_type\":\"movie\",\"title\":\"Inception\",\"year\":2010}\n```"}
	svc := NewLLMService(stub, nil)

	got, err := svc.ParseIntent(context.Background(), "inception 2010")
	if err != nil {
		t.Fatalf("ParseIntent: %v", err)
	}
	if got.ContentType != intent.ContentMovie || got.Year != 2010 {
		t.Fatalf("intent = %+v", got)
	}
}

func TestParseIntentUnknownContentType(t *testing.T) {
	stub := &stubCompleter{content: `{"content_type":"podcast","title":"Some Show"}`}
	svc := NewLLMService(stub, nil)

	got, err := svc.ParseIntent(context.Background(), "that podcast")
	if err != nil {
		t.Fatalf("ParseIntent: %v", err)
	}
	if got.ContentType != intent.ContentOther {
		t.Fatalf("content type = %q, want other", got.ContentType)
	}
	if got.OtherLabel != "podcast" {
		t.Fatalf("other label = %q", got.OtherLabel)
	}
}

func TestParseIntentMissingTitle(t *testing.T) {
	stub := &stubCompleter{content: `{"content_type":"movie","title":"  "}`}
	svc := NewLLMService(stub, nil)

	_, err := svc.ParseIntent(context.Background(), "something vague")
	if !errors.Is(err, services.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestParseIntentMalformedPayload(t *testing.T) {
	stub := &stubCompleter{content: "I could not understand that request."}
	svc := NewLLMService(stub, nil)

	_, err := svc.ParseIntent(context.Background(), "anything")
	if !errors.Is(err, services.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestParseIntentEmptyRequest(t *testing.T) {
	svc := NewLLMService(&stubCompleter{}, nil)
	_, err := svc.ParseIntent(context.Background(), "   ")
	if !errors.Is(err, services.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestParseIntentInvertedEpisodeRange(t *testing.T) {
	stub := &stubCompleter{content: `{
		"content_type": "tv_show",
		"title": "Example",
		"tv_details": {"season": 1, "episode_range": {"first": 8, "last": 3}}
	}`}
	svc := NewLLMService(stub, nil)

	got, err := svc.ParseIntent(context.Background(), "example episodes")
	if err != nil {
		t.Fatalf("ParseIntent: %v", err)
	}
	r := got.TV.EpisodeRange
	if r == nil || r.First != 3 || r.Last != 8 {
		t.Fatalf("episode range = %+v", r)
	}
}

func TestBuildStrategy(t *testing.T) {
	stub := &stubCompleter{content: `{
		"primary_queries": ["Breaking Bad S02", "Breaking Bad Season 2"],
		"fallback_queries": ["Breaking Bad"],
		"scraper_hints": {"piratebay": ["Breaking Bad S02 complete"]}
	}`}
	svc := NewLLMService(stub, nil)

	in := intent.Intent{ContentType: intent.ContentTVShow, Title: "Breaking Bad", TV: &intent.TVDetails{Season: 2, CompleteSeason: true}}
	got, err := svc.BuildStrategy(context.Background(), in)
	if err != nil {
		t.Fatalf("BuildStrategy: %v", err)
	}
	if len(got.PrimaryQueries) != 2 || len(got.FallbackQueries) != 1 {
		t.Fatalf("suggestion = %+v", got)
	}
	if len(got.SourceHints["piratebay"]) != 1 {
		t.Fatalf("hints = %v", got.SourceHints)
	}
}

func TestBuildStrategyMalformedPayload(t *testing.T) {
	stub := &stubCompleter{content: "no json here"}
	svc := NewLLMService(stub, nil)

	_, err := svc.BuildStrategy(context.Background(), intent.Intent{ContentType: intent.ContentMovie, Title: "Inception"})
	if !errors.Is(err, services.ErrStrategy) {
		t.Fatalf("expected ErrStrategy, got %v", err)
	}
}

func TestBuildStrategyCompletionError(t *testing.T) {
	stub := &stubCompleter{err: errors.New("boom")}
	svc := NewLLMService(stub, nil)

	_, err := svc.BuildStrategy(context.Background(), intent.Intent{ContentType: intent.ContentMovie, Title: "Inception"})
	if !errors.Is(err, services.ErrStrategy) {
		t.Fatalf("expected ErrStrategy, got %v", err)
	}
}

func TestCanonicalLanguage(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"spanish", "Spanish"},
		{"es", "Spanish"},
		{"spa", "Spanish"},
		{"FRENCH", "French"},
		{"", ""},
		{"  ", ""},
		{"klingon", "klingon"},
	}
	for _, tc := range tests {
		if got := canonicalLanguage(tc.input); got != tc.want {
			t.Fatalf("canonicalLanguage(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

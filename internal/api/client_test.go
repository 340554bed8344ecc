package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"torrentai/internal/api"
	"torrentai/internal/evaluate"
	"torrentai/internal/intent"
	"torrentai/internal/normalize"
	"torrentai/internal/planner"
	"torrentai/internal/rank"
	"torrentai/internal/session"
	"torrentai/internal/sources"
)

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(api.DaemonStatus{Running: true, Sessions: 2})
	}))
	defer server.Close()

	client := api.NewClient(server.URL, "secret-token")
	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if gotAuth != "Bearer secret-token" {
		t.Fatalf("unexpected authorization header: %q", gotAuth)
	}
	if !status.Running || status.Sessions != 2 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestClientSearchPostsRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/search" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req api.SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Request != "breaking bad season 2" {
			t.Errorf("unexpected request text: %q", req.Request)
		}
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(api.SessionSummary{ID: "abc", State: "planning", Request: req.Request})
	}))
	defer server.Close()

	client := api.NewClient(server.URL, "")
	summary, err := client.Search(context.Background(), "breaking bad season 2")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if summary.ID != "abc" || summary.State != "planning" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestClientSurfacesErrorPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
	}))
	defer server.Close()

	client := api.NewClient(server.URL, "")
	_, err := client.Session(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "session not found") {
		t.Fatalf("expected daemon error message, got %v", err)
	}
}

func TestClientConfirmHitsSessionAction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/abc/confirm" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req api.ConfirmRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Index != 1 {
			t.Errorf("unexpected index: %d", req.Index)
		}
		json.NewEncoder(w).Encode(api.SessionResponse{
			Session: api.SessionDetail{SessionSummary: api.SessionSummary{ID: "abc", State: "completed"}},
		})
	}))
	defer server.Close()

	client := api.NewClient(server.URL, "")
	detail, err := client.Confirm(context.Background(), "abc", 1)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if detail.State != "completed" {
		t.Fatalf("unexpected state: %q", detail.State)
	}
}

func TestDetailFromSnapshot(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	snap := session.Snapshot{
		ID:      "abc",
		Request: "breaking bad season 2",
		State:   session.StateAwaitingConfirmation,
		Intent: &intent.Intent{
			ContentType: intent.ContentTVShow,
			Title:       "Breaking Bad",
			TV:          &intent.TVDetails{Season: 2, CompleteSeason: true},
		},
		Plan: &planner.Plan{
			Primary:  []string{"Breaking Bad season 2"},
			Fallback: []string{"Breaking Bad S02"},
		},
		Ranked: []evaluate.Scored{
			{
				Candidate: normalize.Candidate{
					Candidate: sources.Candidate{
						Title:     "Breaking.Bad.S02.1080p",
						Link:      "magnet:?xt=urn:btih:aaa",
						Seeders:   120,
						SizeBytes: 4 << 30,
					},
					Sources: []string{"piratebay", "yts"},
				},
				Relevance:    0.95,
				Confidence:   0.9,
				MatchReasons: []string{"complete season"},
			},
		},
		SourceErrors: []session.SourceFailure{
			{Adapter: "yts", Query: "Breaking Bad S02", Kind: "timeout", Message: "deadline exceeded"},
		},
		Decision:  rank.DecisionAwaitConfirmation,
		CreatedAt: created,
		UpdatedAt: created.Add(time.Minute),
	}

	detail := api.DetailFromSnapshot(snap)
	if detail.ID != "abc" || detail.State != string(session.StateAwaitingConfirmation) {
		t.Fatalf("unexpected summary: %+v", detail.SessionSummary)
	}
	if detail.Intent != snap.Intent.Summary() {
		t.Fatalf("unexpected intent line: %q", detail.Intent)
	}
	if detail.Candidates != 1 {
		t.Fatalf("unexpected candidate count: %d", detail.Candidates)
	}
	if len(detail.Queries) != 2 || detail.Queries[0] != "Breaking Bad season 2" {
		t.Fatalf("unexpected queries: %v", detail.Queries)
	}
	if len(detail.Ranked) != 1 {
		t.Fatalf("unexpected ranked length: %d", len(detail.Ranked))
	}
	got := detail.Ranked[0]
	if got.Magnet != "magnet:?xt=urn:btih:aaa" || got.Seeders != 120 || got.Relevance != 0.95 {
		t.Fatalf("unexpected candidate mapping: %+v", got)
	}
	if len(got.Sources) != 2 {
		t.Fatalf("unexpected sources: %v", got.Sources)
	}
	if len(detail.SourceErrors) != 1 || detail.SourceErrors[0].Kind != "timeout" {
		t.Fatalf("unexpected source errors: %+v", detail.SourceErrors)
	}
}

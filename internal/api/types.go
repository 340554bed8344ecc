// Package api defines the JSON payloads exchanged between the daemon's
// HTTP API and its clients, plus the client the CLI uses to call it.
package api

import (
	"time"

	"torrentai/internal/session"
)

// SearchRequest starts a new search session.
type SearchRequest struct {
	Request string `json:"request"`
}

// ConfirmRequest picks a ranked candidate by position.
type ConfirmRequest struct {
	Index int `json:"index"`
}

// SessionSummary is the list view of a session.
type SessionSummary struct {
	ID            string    `json:"id"`
	Request       string    `json:"request"`
	State         string    `json:"state"`
	Decision      string    `json:"decision,omitempty"`
	Intent        string    `json:"intent,omitempty"`
	Candidates    int       `json:"candidates"`
	FailureReason string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Candidate is the ranked candidate view.
type Candidate struct {
	Title        string   `json:"title"`
	Magnet       string   `json:"magnet"`
	Sources      []string `json:"sources"`
	Seeders      int      `json:"seeders"`
	SizeBytes    int64    `json:"size_bytes,omitempty"`
	Relevance    float64  `json:"relevance"`
	Confidence   float64  `json:"confidence"`
	Quality      float64  `json:"quality,omitempty"`
	MatchReasons []string `json:"match_reasons,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// SourceFailure mirrors a recorded adapter failure.
type SourceFailure struct {
	Adapter string `json:"adapter"`
	Query   string `json:"query"`
	Kind    string `json:"kind"`
	Message string `json:"message,omitempty"`
}

// SessionDetail is the full view of one session.
type SessionDetail struct {
	SessionSummary
	Queries      []string        `json:"queries,omitempty"`
	Ranked       []Candidate     `json:"ranked,omitempty"`
	SourceErrors []SourceFailure `json:"source_errors,omitempty"`
}

// Transfer is the progress view of one torrent the engine tracks.
type Transfer struct {
	Hash         string  `json:"hash"`
	Name         string  `json:"name"`
	PercentDone  float64 `json:"percent_done"`
	RateDownload int64   `json:"rate_download"`
	ETA          int64   `json:"eta"`
	TotalSize    int64   `json:"total_size"`
	Downloading  bool    `json:"downloading"`
	Complete     bool    `json:"complete"`
}

// DaemonStatus reports daemon runtime information.
type DaemonStatus struct {
	Running      bool   `json:"running"`
	PID          int    `json:"pid"`
	Sessions     int    `json:"sessions"`
	LockFilePath string `json:"lock_file_path,omitempty"`
}

// SessionListResponse wraps the session list payload.
type SessionListResponse struct {
	Sessions []SessionSummary `json:"sessions"`
}

// SessionResponse wraps a single session payload.
type SessionResponse struct {
	Session SessionDetail `json:"session"`
}

// CandidateListResponse wraps the ranked candidate payload.
type CandidateListResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// TransferListResponse wraps the transfer progress payload.
type TransferListResponse struct {
	Transfers []Transfer `json:"transfers"`
}

// FromSnapshot converts a session snapshot into its summary view.
func FromSnapshot(snap session.Snapshot) SessionSummary {
	summary := SessionSummary{
		ID:            snap.ID,
		Request:       snap.Request,
		State:         string(snap.State),
		Decision:      string(snap.Decision),
		Candidates:    len(snap.Ranked),
		FailureReason: snap.FailureReason,
		CreatedAt:     snap.CreatedAt,
		UpdatedAt:     snap.UpdatedAt,
	}
	if snap.Intent != nil {
		summary.Intent = snap.Intent.Summary()
	}
	return summary
}

// DetailFromSnapshot converts a session snapshot into its full view.
func DetailFromSnapshot(snap session.Snapshot) SessionDetail {
	detail := SessionDetail{SessionSummary: FromSnapshot(snap)}
	if snap.Plan != nil {
		detail.Queries = snap.Plan.Queries()
	}
	detail.Ranked = make([]Candidate, 0, len(snap.Ranked))
	for _, scored := range snap.Ranked {
		detail.Ranked = append(detail.Ranked, Candidate{
			Title:        scored.Candidate.Title,
			Magnet:       scored.Candidate.Link,
			Sources:      scored.Candidate.Sources,
			Seeders:      scored.Candidate.Seeders,
			SizeBytes:    scored.Candidate.SizeBytes,
			Relevance:    scored.Relevance,
			Confidence:   scored.Confidence,
			Quality:      scored.Quality,
			MatchReasons: scored.MatchReasons,
			Warnings:     scored.Warnings,
		})
	}
	detail.SourceErrors = make([]SourceFailure, 0, len(snap.SourceErrors))
	for _, failure := range snap.SourceErrors {
		detail.SourceErrors = append(detail.SourceErrors, SourceFailure{
			Adapter: failure.Adapter,
			Query:   failure.Query,
			Kind:    failure.Kind,
			Message: failure.Message,
		})
	}
	return detail
}

package sources

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Candidate is one discoverable item reported by a source adapter. The
// magnet link is its identity: two candidates with the same link are
// the same logical item regardless of which sources reported them.
type Candidate struct {
	Source    string
	Title     string
	Link      string
	SizeBytes int64
	Seeders   int
	Leechers  int
	Uploaded  time.Time
	// Raw carries source-native metadata the core does not interpret.
	Raw map[string]string
}

// Adapter is the uniform contract every source implements. Search
// issues one query variant with optional source-specific hints and
// returns raw candidates; failures are classified by ErrorKind.
type Adapter interface {
	Name() string
	Search(ctx context.Context, query string, hints []string) ([]Candidate, error)
}

// ErrorKind classifies adapter failures.
type ErrorKind string

const (
	ErrorTimeout   ErrorKind = "timeout"
	ErrorTransport ErrorKind = "transport"
	ErrorDecode    ErrorKind = "decode"
)

// Error records one non-fatal adapter failure for a single query
// variant. Sessions accumulate these as warnings; only the absence of
// any successful adapter fails a search outright.
type Error struct {
	Adapter string
	Query   string
	Kind    ErrorKind
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s failure for query %q", e.Adapter, e.Kind, e.Query)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an adapter Error.
func NewError(adapter, query string, kind ErrorKind, cause error) *Error {
	return &Error{Adapter: adapter, Query: query, Kind: kind, Cause: cause}
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls a running daemon's HTTP API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// ClientOption customizes Client construction.
type ClientOption func(*Client)

// WithClientHTTPClient overrides the underlying HTTP client.
func WithClientHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient builds a client for the daemon at baseURL. The token is
// sent as a bearer credential when non-empty.
func NewClient(baseURL, token string, opts ...ClientOption) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Status fetches daemon runtime information.
func (c *Client) Status(ctx context.Context) (DaemonStatus, error) {
	var out DaemonStatus
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &out)
	return out, err
}

// Search starts a new session and returns its summary.
func (c *Client) Search(ctx context.Context, request string) (SessionSummary, error) {
	var out SessionSummary
	err := c.do(ctx, http.MethodPost, "/api/search", SearchRequest{Request: request}, &out)
	return out, err
}

// Sessions lists all sessions the daemon knows about.
func (c *Client) Sessions(ctx context.Context) ([]SessionSummary, error) {
	var out SessionListResponse
	err := c.do(ctx, http.MethodGet, "/api/sessions", nil, &out)
	return out.Sessions, err
}

// Session fetches the full view of one session.
func (c *Client) Session(ctx context.Context, id string) (SessionDetail, error) {
	var out SessionResponse
	err := c.do(ctx, http.MethodGet, "/api/sessions/"+id, nil, &out)
	return out.Session, err
}

// Candidates fetches the ranked candidates of one session.
func (c *Client) Candidates(ctx context.Context, id string) ([]Candidate, error) {
	var out CandidateListResponse
	err := c.do(ctx, http.MethodGet, "/api/sessions/"+id+"/candidates", nil, &out)
	return out.Candidates, err
}

// Cancel requests cancellation of a running session.
func (c *Client) Cancel(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/sessions/"+id+"/cancel", nil, nil)
}

// Confirm acts on a ranked candidate of a parked session.
func (c *Client) Confirm(ctx context.Context, id string, index int) (SessionDetail, error) {
	var out SessionResponse
	err := c.do(ctx, http.MethodPost, "/api/sessions/"+id+"/confirm", ConfirmRequest{Index: index}, &out)
	return out.Session, err
}

// Dismiss completes a parked session without acting.
func (c *Client) Dismiss(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/sessions/"+id+"/dismiss", nil, nil)
}

// Transfers lists active torrent progress.
func (c *Client) Transfers(ctx context.Context) ([]Transfer, error) {
	var out TransferListResponse
	err := c.do(ctx, http.MethodGet, "/api/transfers", nil, &out)
	return out.Transfers, err
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("daemon request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon: %s", apiErr.Error)
		}
		return fmt.Errorf("daemon returned status %d", resp.StatusCode)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

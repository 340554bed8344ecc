// Package transmission implements a minimal Transmission RPC client
// covering the calls the transfer engine needs: adding magnet links
// and polling torrent progress.
package transmission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"torrentai/internal/services"
)

const (
	defaultTimeout = 30 * time.Second

	sessionIDHeader = "X-Transmission-Session-Id"
)

// Status values reported by the Transmission daemon.
const (
	StatusStopped      = 0
	StatusCheckWait    = 1
	StatusCheck        = 2
	StatusDownloadWait = 3
	StatusDownload     = 4
	StatusSeedWait     = 5
	StatusSeed         = 6
)

// Config holds connection settings for the Transmission daemon.
type Config struct {
	// URL is the full RPC endpoint, e.g. http://localhost:9091/transmission/rpc.
	URL      string
	Username string
	Password string
	// Timeout bounds each RPC round trip. Zero means 30 seconds.
	Timeout time.Duration
}

// Client speaks the Transmission RPC protocol. It is safe for
// concurrent use; the CSRF session token is refreshed transparently
// on 409 responses.
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu        sync.Mutex
	sessionID string
}

// Option customizes Client construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, primarily for
// tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient validates the configuration and returns a Client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.URL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "transmission", "new", "transfer.url is required", nil)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// AddResult describes the torrent a successful add call created or
// matched.
type AddResult struct {
	ID        int64
	Hash      string
	Name      string
	Duplicate bool
}

// Torrent is the subset of torrent-get fields the engine tracks.
type Torrent struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Hash         string  `json:"hashString"`
	Status       int     `json:"status"`
	PercentDone  float64 `json:"percentDone"`
	RateDownload int64   `json:"rateDownload"`
	ETA          int64   `json:"eta"`
	TotalSize    int64   `json:"totalSize"`
	DownloadDir  string  `json:"downloadDir"`
}

// Downloading reports whether the daemon is still fetching data.
func (t Torrent) Downloading() bool {
	return t.Status == StatusDownloadWait || t.Status == StatusDownload
}

// Complete reports whether all wanted data has been downloaded.
func (t Torrent) Complete() bool {
	return t.PercentDone >= 1.0
}

type rpcRequest struct {
	Method    string `json:"method"`
	Arguments any    `json:"arguments,omitempty"`
}

type rpcResponse struct {
	Result    string          `json:"result"`
	Arguments json.RawMessage `json:"arguments"`
}

type addArguments struct {
	Filename    string `json:"filename"`
	DownloadDir string `json:"download-dir,omitempty"`
	Paused      bool   `json:"paused"`
}

type addResponse struct {
	Added     *addedTorrent `json:"torrent-added"`
	Duplicate *addedTorrent `json:"torrent-duplicate"`
}

type addedTorrent struct {
	ID   int64  `json:"id"`
	Hash string `json:"hashString"`
	Name string `json:"name"`
}

// Add submits a magnet link. Adding a torrent the daemon already has
// is not an error; the result reports it as a duplicate.
func (c *Client) Add(ctx context.Context, magnet, downloadDir string) (AddResult, error) {
	if magnet == "" {
		return AddResult{}, services.Wrap(services.ErrTransfer, "transmission", "add", "empty magnet link", nil)
	}
	var payload addResponse
	err := c.call(ctx, "torrent-add", addArguments{Filename: magnet, DownloadDir: downloadDir}, &payload)
	if err != nil {
		return AddResult{}, err
	}
	switch {
	case payload.Added != nil:
		return AddResult{ID: payload.Added.ID, Hash: payload.Added.Hash, Name: payload.Added.Name}, nil
	case payload.Duplicate != nil:
		return AddResult{ID: payload.Duplicate.ID, Hash: payload.Duplicate.Hash, Name: payload.Duplicate.Name, Duplicate: true}, nil
	default:
		return AddResult{}, services.Wrap(services.ErrTransfer, "transmission", "add", "daemon accepted the call but reported no torrent", nil)
	}
}

type getArguments struct {
	IDs    []int64  `json:"ids,omitempty"`
	Fields []string `json:"fields"`
}

type getResponse struct {
	Torrents []Torrent `json:"torrents"`
}

var torrentFields = []string{
	"id", "name", "hashString", "status", "percentDone",
	"rateDownload", "eta", "totalSize", "downloadDir",
}

// Get fetches progress for the given torrent IDs. An empty id list
// returns every torrent the daemon knows about.
func (c *Client) Get(ctx context.Context, ids ...int64) ([]Torrent, error) {
	var payload getResponse
	err := c.call(ctx, "torrent-get", getArguments{IDs: ids, Fields: torrentFields}, &payload)
	if err != nil {
		return nil, err
	}
	return payload.Torrents, nil
}

// HealthCheck verifies the daemon is reachable and the credentials
// are accepted.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.Get(ctx)
	return err
}

// call performs one RPC, retrying exactly once after a 409 to pick up
// a fresh session token.
func (c *Client) call(ctx context.Context, method string, args, out any) error {
	body, err := json.Marshal(rpcRequest{Method: method, Arguments: args})
	if err != nil {
		return services.Wrap(services.ErrTransfer, "transmission", method, "encode request", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		resp, err := c.do(ctx, body)
		if err != nil {
			return services.Wrap(services.ErrTransfer, "transmission", method, "rpc request failed", err)
		}
		if resp.StatusCode == http.StatusConflict {
			c.setSessionID(resp.Header.Get(sessionIDHeader))
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			continue
		}
		return c.decode(method, resp, out)
	}
	return services.Wrap(services.ErrTransfer, "transmission", method, "daemon kept rejecting the session token", nil)
}

func (c *Client) do(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if id := c.getSessionID(); id != "" {
		req.Header.Set(sessionIDHeader, id)
	}
	if c.cfg.Username != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}
	return c.httpClient.Do(req)
}

func (c *Client) decode(method string, resp *http.Response, out any) error {
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return services.Wrap(services.ErrConfiguration, "transmission", method, "authentication rejected", nil)
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return services.Wrap(services.ErrTransfer, "transmission", method,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(data)), nil)
	}
	var envelope rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return services.Wrap(services.ErrTransfer, "transmission", method, "decode response", err)
	}
	if envelope.Result != "success" {
		return services.Wrap(services.ErrTransfer, "transmission", method,
			fmt.Sprintf("daemon returned %q", envelope.Result), nil)
	}
	if out != nil && len(envelope.Arguments) > 0 {
		if err := json.Unmarshal(envelope.Arguments, out); err != nil {
			return services.Wrap(services.ErrTransfer, "transmission", method, "decode arguments", err)
		}
	}
	return nil
}

func (c *Client) getSessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Client) setSessionID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = id
}

// Package yts queries the YTS movie API and converts its torrent
// entries into raw candidates.
package yts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"torrentai/internal/sources"
)

const adapterName = "yts"

// trackers is the announce list baked into generated magnet links,
// matching what the site itself embeds.
var trackers = []string{
	"udp://open.demonii.com:1337",
	"udp://tracker.openbittorrent.com:80",
	"udp://tracker.coppersurfer.tk:6969",
	"udp://glotorrents.pw:6969/announce",
	"udp://tracker.opentrackr.org:1337/announce",
	"udp://torrent.gresille.org:80/announce",
	"udp://p4p.arenabg.com:1337",
	"udp://tracker.leechers-paradise.org:6969",
}

// Adapter queries the YTS list_movies endpoint.
type Adapter struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

var _ sources.Adapter = (*Adapter)(nil)

// Option configures the Adapter.
type Option func(*Adapter)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Adapter) {
		if client != nil {
			a.httpClient = client
		}
	}
}

// New creates a YTS adapter.
func New(baseURL, userAgent string, opts ...Option) (*Adapter, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("yts base url required")
	}
	adapter := &Adapter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  strings.TrimSpace(userAgent),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(adapter)
	}
	return adapter, nil
}

// Name implements sources.Adapter.
func (a *Adapter) Name() string { return adapterName }

type listResponse struct {
	Status        string `json:"status"`
	StatusMessage string `json:"status_message"`
	Data          struct {
		Movies []movie `json:"movies"`
	} `json:"data"`
}

type movie struct {
	Title        string    `json:"title"`
	Year         int       `json:"year"`
	DateUploaded string    `json:"date_uploaded"`
	Torrents     []torrent `json:"torrents"`
}

type torrent struct {
	Hash         string `json:"hash"`
	Quality      string `json:"quality"`
	Type         string `json:"type"`
	Seeds        int    `json:"seeds"`
	Peers        int    `json:"peers"`
	SizeBytes    int64  `json:"size_bytes"`
	DateUploaded string `json:"date_uploaded"`
}

// Search queries list_movies.json for one variant. Hints may replace
// the generic query with a site-specific form.
func (a *Adapter) Search(ctx context.Context, query string, hints []string) ([]sources.Candidate, error) {
	effective := strings.TrimSpace(query)
	for _, hint := range hints {
		if trimmed := strings.TrimSpace(hint); trimmed != "" {
			effective = trimmed
			break
		}
	}
	if effective == "" {
		return nil, sources.NewError(adapterName, query, sources.ErrorDecode, errors.New("empty query"))
	}

	endpoint, err := url.Parse(a.baseURL + "/list_movies.json")
	if err != nil {
		return nil, sources.NewError(adapterName, effective, sources.ErrorTransport, err)
	}
	params := url.Values{}
	params.Set("query_term", effective)
	params.Set("limit", "50")
	params.Set("sort_by", "date_added")
	params.Set("order_by", "desc")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, sources.NewError(adapterName, effective, sources.ErrorTransport, err)
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, sources.NewError(adapterName, effective, classifyRequestError(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, sources.NewError(adapterName, effective, sources.ErrorTransport,
			fmt.Errorf("http %d", resp.StatusCode))
	}

	var payload listResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, sources.NewError(adapterName, effective, sources.ErrorDecode, err)
	}
	if payload.Status != "ok" {
		return nil, sources.NewError(adapterName, effective, sources.ErrorDecode,
			fmt.Errorf("api status %q: %s", payload.Status, payload.StatusMessage))
	}

	var results []sources.Candidate
	for _, m := range payload.Data.Movies {
		for _, t := range m.Torrents {
			if strings.TrimSpace(t.Hash) == "" {
				continue
			}
			title := fmt.Sprintf("%s (%d) [%s]", m.Title, m.Year, t.Quality)
			candidate := sources.Candidate{
				Source:    adapterName,
				Title:     title,
				Link:      magnetLink(t.Hash, title),
				SizeBytes: t.SizeBytes,
				Seeders:   t.Seeds,
				Leechers:  t.Peers,
				Raw:       map[string]string{"quality": t.Quality, "type": t.Type},
			}
			uploaded := t.DateUploaded
			if uploaded == "" {
				uploaded = m.DateUploaded
			}
			if ts, err := time.Parse("2006-01-02 15:04:05", uploaded); err == nil {
				candidate.Uploaded = ts
			}
			results = append(results, candidate)
		}
	}
	return results, nil
}

func classifyRequestError(err error) sources.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return sources.ErrorTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return sources.ErrorTimeout
	}
	return sources.ErrorTransport
}

func magnetLink(hash, displayName string) string {
	var b strings.Builder
	b.WriteString("magnet:?xt=urn:btih:")
	b.WriteString(strings.ToLower(strings.TrimSpace(hash)))
	b.WriteString("&dn=")
	b.WriteString(url.QueryEscape(displayName))
	for _, tr := range trackers {
		b.WriteString("&tr=")
		b.WriteString(url.QueryEscape(tr))
	}
	return b.String()
}

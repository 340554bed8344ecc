// Package piratebay scrapes the Pirate Bay search result table into
// raw candidates.
package piratebay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"torrentai/internal/sources"
)

const adapterName = "piratebay"

// Adapter queries a Pirate Bay mirror and parses its HTML results.
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

// New creates a Pirate Bay adapter.
func New(baseURL, userAgent string, opts ...Option) (*Adapter, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("piratebay base url required")
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

// Search fetches one result page for the query. Hints are extra query
// variants specific to this site; the first usable hint replaces the
// generic query.
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

	endpoint := fmt.Sprintf("%s/search/%s/1/99/0", a.baseURL, url.PathEscape(effective))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
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

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, sources.NewError(adapterName, effective, sources.ErrorDecode, err)
	}
	return parseResults(doc), nil
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

func parseResults(doc *goquery.Document) []sources.Candidate {
	var results []sources.Candidate
	doc.Find("table#searchResult tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}

		titleLink := cells.Eq(1).Find("a").First()
		title := strings.TrimSpace(titleLink.Text())
		if title == "" || strings.Contains(title, "Details for") {
			return
		}

		magnet, ok := row.Find(`a[href^="magnet:"]`).First().Attr("href")
		if !ok || !strings.HasPrefix(magnet, "magnet:") {
			return
		}

		candidate := sources.Candidate{
			Source: adapterName,
			Title:  title,
			Link:   magnet,
		}
		if cells.Length() > 4 {
			candidate.SizeBytes = parseSize(strings.TrimSpace(cells.Eq(4).Text()))
		}
		if cells.Length() > 5 {
			candidate.Seeders = parseCount(cells.Eq(5).Text())
		}
		if cells.Length() > 6 {
			candidate.Leechers = parseCount(cells.Eq(6).Text())
		}
		if uploaded := strings.TrimSpace(cells.Eq(2).Text()); uploaded != "" {
			candidate.Raw = map[string]string{"uploaded": uploaded}
			if ts, ok := parseUploaded(uploaded, time.Now()); ok {
				candidate.Uploaded = ts
			}
		}
		results = append(results, candidate)
	})
	return results
}

func parseCount(text string) int {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

var sizeUnits = map[string]float64{
	"B":   1,
	"KB":  1 << 10,
	"KIB": 1 << 10,
	"MB":  1 << 20,
	"MIB": 1 << 20,
	"GB":  1 << 30,
	"GIB": 1 << 30,
	"TB":  1 << 40,
	"TIB": 1 << 40,
}

// parseSize converts strings like "1.37 GiB" into bytes. Unknown
// formats yield zero rather than an error; size is advisory only.
func parseSize(text string) int64 {
	fields := strings.Fields(strings.ReplaceAll(text, " ", " "))
	if len(fields) < 2 {
		return 0
	}
	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || value < 0 {
		return 0
	}
	multiplier, ok := sizeUnits[strings.ToUpper(strings.TrimSpace(fields[1]))]
	if !ok {
		return 0
	}
	return int64(value * multiplier)
}

// parseUploaded handles the site's "MM-DD YYYY", "MM-DD HH:MM"
// (current year), and "Today"/"Y-day" forms.
func parseUploaded(text string, now time.Time) (time.Time, bool) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(text, " ", " "))
	switch {
	case strings.HasPrefix(trimmed, "Today"):
		return now.Truncate(24 * time.Hour), true
	case strings.HasPrefix(trimmed, "Y-day"):
		return now.AddDate(0, 0, -1).Truncate(24 * time.Hour), true
	}
	if ts, err := time.Parse("01-02 2006", trimmed); err == nil {
		return ts, true
	}
	if ts, err := time.Parse("01-02 15:04", trimmed); err == nil {
		return ts.AddDate(now.Year(), 0, 0), true
	}
	return time.Time{}, false
}

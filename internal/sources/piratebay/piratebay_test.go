package piratebay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"torrentai/internal/sources"
)

const resultsPage = `<html><body>
<table id="searchResult">
<tr><th>Type</th><th>Name</th><th>Uploaded</th><th>Links</th><th>Size</th><th>SE</th><th>LE</th></tr>
<tr>
  <td>Video</td>
  <td><a href="/torrent/1">Example Show S02 1080p</a></td>
  <td>07-15 2023</td>
  <td><a href="magnet:?xt=urn:btih:abc123">magnet</a></td>
  <td>2 GiB</td>
  <td>42</td>
  <td>7</td>
</tr>
<tr>
  <td>Video</td>
  <td><a href="/torrent/2">No Magnet Row</a></td>
  <td>07-15 2023</td>
  <td></td>
  <td>700 MiB</td>
  <td>3</td>
  <td>1</td>
</tr>
</table>
</body></html>`

func TestSearchParsesResultTable(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(resultsPage))
	}))
	defer server.Close()

	adapter, err := New(server.URL, "test-agent")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	results, err := adapter.Search(context.Background(), "example show", nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !strings.HasPrefix(gotPath, "/search/") {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result (magnetless row skipped), got %d", len(results))
	}
	got := results[0]
	if got.Title != "Example Show S02 1080p" {
		t.Fatalf("title = %q", got.Title)
	}
	if !strings.HasPrefix(got.Link, "magnet:") {
		t.Fatalf("link = %q", got.Link)
	}
	if got.Seeders != 42 || got.Leechers != 7 {
		t.Fatalf("seeders/leechers = %d/%d", got.Seeders, got.Leechers)
	}
	if want := int64(2) << 30; got.SizeBytes != want {
		t.Fatalf("size = %d, want %d", got.SizeBytes, want)
	}
	if got.Source != "piratebay" {
		t.Fatalf("source = %q", got.Source)
	}
}

func TestSearchHintReplacesQuery(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`<html><body></body></html>`))
	}))
	defer server.Close()

	adapter, err := New(server.URL, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := adapter.Search(context.Background(), "generic", []string{"site specific"}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !strings.Contains(gotPath, "site%20specific") && !strings.Contains(gotPath, "site specific") {
		t.Fatalf("hint not used, path = %q", gotPath)
	}
}

func TestSearchTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	adapter, err := New(server.URL, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = adapter.Search(context.Background(), "anything", nil)
	var srcErr *sources.Error
	if !errors.As(err, &srcErr) {
		t.Fatalf("expected sources.Error, got %v", err)
	}
	if srcErr.Kind != sources.ErrorTransport {
		t.Fatalf("kind = %q, want transport", srcErr.Kind)
	}
}

func TestParseSize(t *testing.T) {
	gib := float64(1 << 30)
	cases := []struct {
		in   string
		want int64
	}{
		{"1.37 GiB", int64(1.37 * gib)},
		{"700 MiB", 700 << 20},
		{"512 B", 512},
		{"garbage", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := parseSize(tc.in); got != tc.want {
			t.Errorf("parseSize(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseUploaded(t *testing.T) {
	now := time.Date(2023, 8, 1, 10, 0, 0, 0, time.UTC)
	if ts, ok := parseUploaded("07-15 2023", now); !ok || ts.Year() != 2023 || ts.Month() != 7 {
		t.Fatalf("parseUploaded explicit year = %v %v", ts, ok)
	}
	if ts, ok := parseUploaded("07-15 09:30", now); !ok || ts.Year() != now.Year() {
		t.Fatalf("parseUploaded current year = %v %v", ts, ok)
	}
	if _, ok := parseUploaded("whenever", now); ok {
		t.Fatal("expected parse failure")
	}
}

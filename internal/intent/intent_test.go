package intent_test

import (
	"testing"

	"torrentai/internal/intent"
)

func TestParseContentType(t *testing.T) {
	tests := []struct {
		input  string
		want   intent.ContentType
		wantOK bool
	}{
		{"movie", intent.ContentMovie, true},
		{"  TV_Show ", intent.ContentTVShow, true},
		{"MUSIC", intent.ContentMusic, true},
		{"software", intent.ContentSoftware, true},
		{"documentary", intent.ContentOther, false},
		{"", intent.ContentOther, false},
	}
	for _, tc := range tests {
		got, ok := intent.ParseContentType(tc.input)
		if got != tc.want || ok != tc.wantOK {
			t.Fatalf("ParseContentType(%q) = %v, %v; want %v, %v", tc.input, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		in   intent.Intent
		want string
	}{
		{
			name: "movie with year and quality",
			in: intent.Intent{
				ContentType:        intent.ContentMovie,
				Title:              "Inception",
				Year:               2010,
				QualityPreferences: []string{"1080p", "bluray"},
			},
			want: "Movie: Inception (2010), quality 1080p/bluray",
		},
		{
			name: "single episode",
			in: intent.Intent{
				ContentType: intent.ContentTVShow,
				Title:       "Breaking Bad",
				TV:          &intent.TVDetails{Season: 2, Episode: 5},
			},
			want: "TV Show: Breaking Bad, S02E05",
		},
		{
			name: "episode range",
			in: intent.Intent{
				ContentType: intent.ContentTVShow,
				Title:       "The Wire",
				TV: &intent.TVDetails{
					Season:       1,
					EpisodeRange: &intent.EpisodeRange{First: 3, Last: 6},
				},
			},
			want: "TV Show: The Wire, S01E03-E06",
		},
		{
			name: "complete season",
			in: intent.Intent{
				ContentType: intent.ContentTVShow,
				Title:       "Severance",
				TV:          &intent.TVDetails{Season: 1, CompleteSeason: true},
			},
			want: "TV Show: Severance, season 1 (complete)",
		},
		{
			name: "complete series wins over season detail",
			in: intent.Intent{
				ContentType: intent.ContentTVShow,
				Title:       "The Office",
				TV:          &intent.TVDetails{Season: 3, CompleteSeries: true},
			},
			want: "TV Show: The Office, complete series",
		},
		{
			name: "other with label",
			in: intent.Intent{
				ContentType: intent.ContentOther,
				OtherLabel:  "course",
				Title:       "Intro to Statistics",
			},
			want: "Other (course): Intro to Statistics",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Summary(); got != tc.want {
				t.Fatalf("Summary() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFingerprintStability(t *testing.T) {
	a := intent.Intent{
		ContentType:        intent.ContentMovie,
		Title:              "Inception",
		Year:               2010,
		QualityPreferences: []string{"1080p"},
	}
	b := intent.Intent{
		ContentType:        intent.ContentMovie,
		Title:              "  inception  ",
		Year:               2010,
		QualityPreferences: []string{"1080P "},
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatal("expected fingerprints to match across case and whitespace")
	}
	if len(a.Fingerprint()) != 32 {
		t.Fatalf("unexpected fingerprint length: %d", len(a.Fingerprint()))
	}
}

func TestFingerprintDistinguishesDetails(t *testing.T) {
	base := intent.Intent{
		ContentType: intent.ContentTVShow,
		Title:       "Breaking Bad",
		TV:          &intent.TVDetails{Season: 2, Episode: 5},
	}
	otherEpisode := base
	otherEpisode.TV = &intent.TVDetails{Season: 2, Episode: 6}
	if base.Fingerprint() == otherEpisode.Fingerprint() {
		t.Fatal("expected different episodes to fingerprint differently")
	}

	withLanguage := base
	withLanguage.Language = "Spanish"
	if base.Fingerprint() == withLanguage.Fingerprint() {
		t.Fatal("expected language to change the fingerprint")
	}
}

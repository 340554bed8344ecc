package intent

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ContentType classifies what kind of content a request is after.
type ContentType string

const (
	ContentMovie    ContentType = "movie"
	ContentTVShow   ContentType = "tv_show"
	ContentMusic    ContentType = "music"
	ContentSoftware ContentType = "software"
	ContentBook     ContentType = "book"
	ContentGame     ContentType = "game"
	ContentOther    ContentType = "other"
)

var contentTypeSet = map[ContentType]struct{}{
	ContentMovie:    {},
	ContentTVShow:   {},
	ContentMusic:    {},
	ContentSoftware: {},
	ContentBook:     {},
	ContentGame:     {},
	ContentOther:    {},
}

// ParseContentType converts a string into a known ContentType. Unknown
// values map to ContentOther with ok=false so callers can decide
// whether to tolerate them.
func ParseContentType(value string) (ContentType, bool) {
	normalized := ContentType(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return ContentOther, false
	}
	if _, ok := contentTypeSet[normalized]; ok {
		return normalized, true
	}
	return ContentOther, false
}

// Label returns a human-readable name for the content type.
func (t ContentType) Label() string {
	switch t {
	case ContentMovie:
		return "Movie"
	case ContentTVShow:
		return "TV Show"
	case ContentMusic:
		return "Music"
	case ContentSoftware:
		return "Software"
	case ContentBook:
		return "Book"
	case ContentGame:
		return "Game"
	default:
		return "Other"
	}
}

// EpisodeRange is an inclusive episode span within one season.
type EpisodeRange struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

// TVDetails carries series-specific request structure.
type TVDetails struct {
	Season         int           `json:"season,omitempty"`
	Episode        int           `json:"episode,omitempty"`
	EpisodeRange   *EpisodeRange `json:"episode_range,omitempty"`
	CompleteSeason bool          `json:"complete_season"`
	CompleteSeries bool          `json:"complete_series"`
}

// Intent is the structured form of a free-text content request. It is
// produced once by the interpretation capability and never mutated.
type Intent struct {
	ContentType        ContentType `json:"content_type"`
	OtherLabel         string      `json:"other_label,omitempty"`
	Title              string      `json:"title"`
	Year               int         `json:"year,omitempty"`
	TV                 *TVDetails  `json:"tv_details,omitempty"`
	QualityPreferences []string    `json:"quality_preferences,omitempty"`
	Language           string      `json:"language,omitempty"`
	Context            []string    `json:"additional_context,omitempty"`
}

// Summary renders a short one-line description for logs and the CLI.
func (in Intent) Summary() string {
	var b strings.Builder
	b.WriteString(in.ContentType.Label())
	if in.ContentType == ContentOther && in.OtherLabel != "" {
		fmt.Fprintf(&b, " (%s)", in.OtherLabel)
	}
	b.WriteString(": ")
	b.WriteString(in.Title)
	if in.Year > 0 {
		fmt.Fprintf(&b, " (%d)", in.Year)
	}
	if tv := in.TV; tv != nil {
		switch {
		case tv.CompleteSeries:
			b.WriteString(", complete series")
		case tv.CompleteSeason && tv.Season > 0:
			fmt.Fprintf(&b, ", season %d (complete)", tv.Season)
		case tv.Season > 0 && tv.Episode > 0:
			fmt.Fprintf(&b, ", S%02dE%02d", tv.Season, tv.Episode)
		case tv.Season > 0 && tv.EpisodeRange != nil:
			fmt.Fprintf(&b, ", S%02dE%02d-E%02d", tv.Season, tv.EpisodeRange.First, tv.EpisodeRange.Last)
		case tv.Season > 0:
			fmt.Fprintf(&b, ", season %d", tv.Season)
		}
	}
	if len(in.QualityPreferences) > 0 {
		fmt.Fprintf(&b, ", quality %s", strings.Join(in.QualityPreferences, "/"))
	}
	return b.String()
}

// Fingerprint returns a stable hash of the normalized intent, used as
// the memoization key for interpretation and evaluation results.
func (in Intent) Fingerprint() string {
	var b strings.Builder
	b.WriteString(string(in.ContentType))
	b.WriteByte('|')
	b.WriteString(strings.ToLower(strings.TrimSpace(in.Title)))
	fmt.Fprintf(&b, "|%d", in.Year)
	if tv := in.TV; tv != nil {
		fmt.Fprintf(&b, "|s%de%d", tv.Season, tv.Episode)
		if tv.EpisodeRange != nil {
			fmt.Fprintf(&b, "r%d-%d", tv.EpisodeRange.First, tv.EpisodeRange.Last)
		}
		fmt.Fprintf(&b, "cs%vcx%v", tv.CompleteSeason, tv.CompleteSeries)
	}
	for _, q := range in.QualityPreferences {
		b.WriteByte('|')
		b.WriteString(strings.ToLower(strings.TrimSpace(q)))
	}
	if in.Language != "" {
		b.WriteByte('|')
		b.WriteString(strings.ToLower(in.Language))
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:16])
}

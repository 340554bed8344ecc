// Package normalize collapses raw candidates from every adapter into
// one record per unique link, keeping provenance for merged sightings.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"torrentai/internal/sources"
)

// MergePolicy selects which sighting represents a duplicated link.
type MergePolicy string

const (
	// MergeHighestSeeders keeps the sighting with the most seeders,
	// breaking ties in favor of the most recently seen record.
	MergeHighestSeeders MergePolicy = "highest_seeders"
	// MergeFirstSeen keeps the first sighting unconditionally.
	MergeFirstSeen MergePolicy = "first_seen"
)

// Candidate is the deduplicated form of one unique link. The embedded
// record is the chosen representative; Sources lists every adapter
// that reported the link, in first-reported order.
type Candidate struct {
	sources.Candidate
	Sources []string
	// FirstSeen is the arrival index of the link's first sighting.
	// Ranking uses it as the final, stable tie-break.
	FirstSeen int
}

// Dedupe merges raw candidates by link under the given policy. Output
// order is first-seen order among links; records without a link are
// dropped since nothing downstream can act on them.
func Dedupe(raw []sources.Candidate, policy MergePolicy) []Candidate {
	if policy != MergeFirstSeen {
		policy = MergeHighestSeeders
	}
	byLink := make(map[string]int, len(raw))
	out := make([]Candidate, 0, len(raw))

	for i, cand := range raw {
		link := strings.TrimSpace(cand.Link)
		if link == "" {
			continue
		}
		idx, seen := byLink[link]
		if !seen {
			byLink[link] = len(out)
			out = append(out, Candidate{
				Candidate: cand,
				Sources:   []string{cand.Source},
				FirstSeen: i,
			})
			continue
		}
		merged := &out[idx]
		if !containsFold(merged.Sources, cand.Source) {
			merged.Sources = append(merged.Sources, cand.Source)
		}
		if policy == MergeHighestSeeders && cand.Seeders >= merged.Seeders {
			// Later sightings win ties, so equal seeder counts prefer
			// the most recently seen record.
			first := merged.FirstSeen
			srcs := merged.Sources
			merged.Candidate = cand
			merged.FirstSeen = first
			merged.Sources = srcs
		}
	}
	return out
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

// SourceLabel renders an adapter name for display ("piratebay" ->
// "Piratebay"). Casers are stateful, so one is built per call.
func SourceLabel(name string) string {
	return cases.Title(language.English).String(strings.TrimSpace(name))
}

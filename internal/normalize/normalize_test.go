package normalize

import (
	"testing"

	"torrentai/internal/sources"
)

func TestDedupeHighestSeedersWins(t *testing.T) {
	raw := []sources.Candidate{
		{Source: "piratebay", Title: "A", Link: "magnet:a", Seeders: 5},
		{Source: "piratebay", Title: "B", Link: "magnet:b", Seeders: 10},
		{Source: "yts", Title: "B again", Link: "magnet:b", Seeders: 40},
		{Source: "yts", Title: "C", Link: "magnet:c", Seeders: 1},
	}

	got := Dedupe(raw, MergeHighestSeeders)
	if len(got) != 3 {
		t.Fatalf("expected 3 unique links, got %d", len(got))
	}
	// First-seen order among links is preserved.
	if got[0].Link != "magnet:a" || got[1].Link != "magnet:b" || got[2].Link != "magnet:c" {
		t.Fatalf("unexpected order: %v %v %v", got[0].Link, got[1].Link, got[2].Link)
	}
	b := got[1]
	if b.Seeders != 40 || b.Source != "yts" {
		t.Fatalf("representative = %+v, want the 40-seeder yts sighting", b.Candidate)
	}
	if len(b.Sources) != 2 || b.Sources[0] != "piratebay" || b.Sources[1] != "yts" {
		t.Fatalf("provenance = %v", b.Sources)
	}
	if b.FirstSeen != 1 {
		t.Fatalf("first seen = %d, want index of first sighting", b.FirstSeen)
	}
}

func TestDedupeEqualSeedersPrefersMostRecent(t *testing.T) {
	raw := []sources.Candidate{
		{Source: "piratebay", Title: "older", Link: "magnet:x", Seeders: 12},
		{Source: "yts", Title: "newer", Link: "magnet:x", Seeders: 12},
	}

	got := Dedupe(raw, MergeHighestSeeders)
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].Title != "newer" {
		t.Fatalf("representative title = %q, want most recent sighting", got[0].Title)
	}
}

func TestDedupeFirstSeenPolicy(t *testing.T) {
	raw := []sources.Candidate{
		{Source: "piratebay", Title: "first", Link: "magnet:x", Seeders: 2},
		{Source: "yts", Title: "second", Link: "magnet:x", Seeders: 99},
	}

	got := Dedupe(raw, MergeFirstSeen)
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].Title != "first" || got[0].Seeders != 2 {
		t.Fatalf("representative = %+v, want first sighting", got[0].Candidate)
	}
	if len(got[0].Sources) != 2 {
		t.Fatalf("provenance = %v", got[0].Sources)
	}
}

func TestDedupeDropsEmptyLinks(t *testing.T) {
	raw := []sources.Candidate{
		{Source: "piratebay", Title: "no link"},
		{Source: "yts", Title: "ok", Link: "magnet:y"},
	}

	got := Dedupe(raw, MergeHighestSeeders)
	if len(got) != 1 || got[0].Link != "magnet:y" {
		t.Fatalf("got %+v", got)
	}
}

func TestSourceLabel(t *testing.T) {
	if got := SourceLabel("piratebay"); got != "Piratebay" {
		t.Fatalf("label = %q", got)
	}
}

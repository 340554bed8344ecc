package interpret

import (
	"fmt"
	"strings"

	"torrentai/internal/intent"
)

const parseSystemPrompt = `You are a torrent search assistant. Parse the user's natural language request into structured JSON.

Extract the following information:
1. Content type (movie, tv_show, music, software, book, game, other)
2. Title of the content
3. For TV shows: season number, episode number(s), whether they want a complete season or the complete series
4. Year (if mentioned)
5. Quality preferences (1080p, 4K, BluRay, etc.)
6. Language preferences
7. Any other relevant context

Respond with ONLY valid JSON in this format:
{
    "content_type": "tv_show",
    "title": "Breaking Bad",
    "year": null,
    "tv_details": {
        "season": 2,
        "episode": null,
        "episode_range": null,
        "complete_season": true,
        "complete_series": false
    },
    "quality_preferences": [],
    "language": null,
    "additional_context": []
}`

const strategySystemPrompt = `You generate optimized torrent search queries.

Create multiple search query variations that torrent sites would understand:
1. Primary queries - most likely to find exact matches
2. Fallback queries - broader searches if primary fails
3. Source-specific hints - special formats for particular sites

Consider variations like:
- "Breaking Bad S02" vs "Breaking Bad Season 2"
- With/without year
- Complete/Full/All episodes
- Different quality indicators

Respond with ONLY valid JSON:
{
    "primary_queries": ["query1", "query2"],
    "fallback_queries": ["query3"],
    "scraper_hints": {
        "piratebay": ["special format"],
        "yts": ["movie specific format"]
    }
}`

func parseUserPrompt(request string) string {
	return fmt.Sprintf("Request: %q", request)
}

func strategyUserPrompt(in intent.Intent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate search queries for: %s", in.Summary())
	if in.Language != "" {
		fmt.Fprintf(&b, "\nLanguage preference: %s", in.Language)
	}
	if len(in.Context) > 0 {
		fmt.Fprintf(&b, "\nAdditional context: %s", strings.Join(in.Context, "; "))
	}
	return b.String()
}

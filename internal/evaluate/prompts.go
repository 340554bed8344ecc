package evaluate

import (
	"fmt"
	"strings"

	"torrentai/internal/intent"
	"torrentai/internal/normalize"
)

const evaluationSystemPrompt = `You are evaluating torrent search results for relevance.

For each result, provide:
1. Relevance score (0.0-1.0) - how well it matches the request
2. Confidence (0.0-1.0) - how sure you are about the match
3. Match reasons - why this is or isn't a good match
4. Warnings - any concerns (fake, wrong content, low quality)
5. Quality score (0.0-1.0) - based on resolution, encoding, source
6. Completeness score (0.0-1.0) - does it have everything requested?

Respond with a JSON array of evaluations, one per result, in the same order as the results. Each evaluation has this structure:
{
    "relevance_score": 0.95,
    "confidence": 0.9,
    "match_reasons": ["Complete season 2", "High quality BluRay"],
    "warnings": [],
    "quality_score": 0.9,
    "completeness_score": 1.0
}`

func evaluationUserPrompt(in intent.Intent, candidates []normalize.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User wants: %s\n\nResults to evaluate:\n", in.Summary())
	for i, cand := range candidates {
		fmt.Fprintf(&b, "%d: %s", i+1, cand.Title)
		if cand.Seeders > 0 {
			fmt.Fprintf(&b, " (seeders: %d)", cand.Seeders)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

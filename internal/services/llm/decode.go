package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DecodeJSON unmarshals a model payload into target, tolerating the
// common wrapping quirks: markdown code fences and prose around the
// JSON object or array.
func DecodeJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}

	directErr := json.Unmarshal([]byte(trimmed), target)
	if directErr == nil {
		return nil
	}

	extracted := extractJSON(trimmed)
	if extracted == "" || extracted == trimmed {
		return fmt.Errorf("%w (payload snippet: %s)", directErr, snippet(trimmed))
	}
	if err := json.Unmarshal([]byte(extracted), target); err != nil {
		return fmt.Errorf("%w (sanitized payload snippet: %s)", err, snippet(extracted))
	}
	return nil
}

// extractJSON strips a surrounding code fence, then cuts out the
// outermost object or array when prose surrounds it.
func extractJSON(content string) string {
	content = unfence(content)
	if content == "" {
		return ""
	}
	if content[0] == '{' || content[0] == '[' {
		return content
	}
	for _, pair := range [...][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(content, pair[0])
		if start < 0 {
			continue
		}
		if end := strings.LastIndex(content, pair[1]); end > start {
			return strings.TrimSpace(content[start : end+1])
		}
	}
	return content
}

func unfence(content string) string {
	content = strings.TrimSpace(content)
	rest, found := strings.CutPrefix(content, "```")
	if !found {
		return content
	}
	rest = strings.TrimLeft(rest, " \t\r\n")
	if len(rest) >= 4 && strings.EqualFold(rest[:4], "json") {
		rest = strings.TrimLeft(rest[4:], " \t\r\n")
	}
	if closing := strings.LastIndex(rest, "```"); closing >= 0 {
		rest = rest[:closing]
	}
	return strings.TrimSpace(rest)
}

// snippet flattens content to one line bounded at 160 runes for error
// messages.
func snippet(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return "<empty>"
	}
	flat := strings.Join(strings.Fields(content), " ")
	runes := []rune(flat)
	if len(runes) > 160 {
		return string(runes[:160]) + "..."
	}
	return flat
}

package textutil

import (
	"math"
	"strings"
)

// minTokenLength drops filler words and release-name noise like "of",
// "a", "to" before counting.
const minTokenLength = 3

// Fingerprint is a term-frequency vector over the tokens of one piece
// of text, with its Euclidean magnitude precomputed.
type Fingerprint struct {
	terms     map[string]float64
	magnitude float64
}

// NewFingerprint tokenizes text and builds its frequency vector. Text
// that yields no tokens returns nil.
func NewFingerprint(text string) *Fingerprint {
	terms := make(map[string]float64)
	for _, token := range Tokenize(text) {
		terms[token]++
	}
	if len(terms) == 0 {
		return nil
	}
	var sumSquares float64
	for _, freq := range terms {
		sumSquares += freq * freq
	}
	return &Fingerprint{terms: terms, magnitude: math.Sqrt(sumSquares)}
}

// TokenCount reports how many distinct tokens the fingerprint holds.
func (f *Fingerprint) TokenCount() int {
	if f == nil {
		return 0
	}
	return len(f.terms)
}

func isTokenRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// Tokenize lowercases text, splits on anything outside [a-z0-9], and
// keeps tokens of at least minTokenLength characters.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isTokenRune(r)
	})
	tokens := fields[:0]
	for _, field := range fields {
		if len(field) >= minTokenLength {
			tokens = append(tokens, field)
		}
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

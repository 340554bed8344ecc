// Package textutil provides token-based text fingerprinting and
// similarity comparison.
//
// Fingerprints are term frequency vectors; the tokenization process
// lowercases text, splits on non-alphanumeric characters, and filters
// tokens shorter than 3 characters. Cosine similarity between two
// fingerprints gives a cheap, deterministic measure of how much two
// titles talk about the same thing.
package textutil

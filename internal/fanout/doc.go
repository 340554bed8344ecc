// Package fanout runs the concurrent multi-source search phase: one
// bounded call per query variant and adapter, primary variants before
// fallback, early termination on a candidate-count threshold, and
// per-call failures absorbed as non-fatal source errors.
package fanout

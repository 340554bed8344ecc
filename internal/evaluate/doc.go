// Package evaluate scores deduplicated candidates against a request
// intent using an LLM. Evaluations align with the input one-to-one and
// in order; scores outside [0,1] are clamped or rejected according to
// the configured policy.
package evaluate

// Package llm provides a minimal client for OpenAI-compatible chat
// completion APIs. It issues JSON-only completions with retry and
// backoff handling, and decodes model output that arrives wrapped in
// code fences or surrounding prose.
package llm

// Package interpret converts free-text content requests into
// structured intents and search strategies using an LLM. It owns the
// prompt text and the strict decoding of model output; callers only
// see validated intents and suggestions.
package interpret

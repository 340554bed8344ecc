// Package config loads, normalizes, and validates torrentai configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TORRENTAI_LLM_API_KEY. The Config type centralizes every knob the CLI and
// daemon need: gate thresholds, fan-out timeouts, source endpoints, and
// external service credentials are discovered in one pass.
//
// The config is immutable after Load; sessions receive it by value at
// creation and there is no process-wide mutable state. Gate threshold
// violations (auto_action_threshold below min_confidence) are rejected at
// load time with a services.ErrConfiguration tag.
package config

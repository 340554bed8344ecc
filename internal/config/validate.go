package config

import (
	"fmt"
	"strings"

	"torrentai/internal/services"
)

// Validate ensures the configuration is usable. Gate threshold
// violations are tagged services.ErrConfiguration so session creation
// can reject them distinctly.
func (c *Config) Validate() error {
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSearch() error {
	s := c.Search
	if s.MinConfidence < 0 || s.MinConfidence > 1 {
		return fmt.Errorf("%w: search.min_confidence must be between 0 and 1", services.ErrConfiguration)
	}
	if s.AutoActionThreshold < 0 || s.AutoActionThreshold > 1 {
		return fmt.Errorf("%w: search.auto_action_threshold must be between 0 and 1", services.ErrConfiguration)
	}
	if s.AutoActionThreshold < s.MinConfidence {
		return fmt.Errorf("%w: search.auto_action_threshold (%.2f) must not be below search.min_confidence (%.2f)",
			services.ErrConfiguration, s.AutoActionThreshold, s.MinConfidence)
	}
	if s.EarlyStopCandidates <= 0 {
		return fmt.Errorf("%w: search.early_stop_candidates must be positive", services.ErrConfiguration)
	}
	if s.SourceTimeoutSeconds <= 0 || s.PipelineTimeoutSeconds <= 0 {
		return fmt.Errorf("%w: search timeouts must be positive", services.ErrConfiguration)
	}
	if s.SourceTimeoutSeconds > s.PipelineTimeoutSeconds {
		return fmt.Errorf("%w: search.source_timeout_seconds must not exceed search.pipeline_timeout_seconds", services.ErrConfiguration)
	}
	if s.MaxConcurrentCalls <= 0 {
		return fmt.Errorf("%w: search.max_concurrent_calls must be positive", services.ErrConfiguration)
	}
	if s.EvaluatorRetries < 0 {
		return fmt.Errorf("%w: search.evaluator_retries must not be negative", services.ErrConfiguration)
	}
	if s.EvaluatorBackoffSecs < 0 {
		return fmt.Errorf("%w: search.evaluator_backoff_seconds must not be negative", services.ErrConfiguration)
	}
	switch s.MergePolicy {
	case MergePolicyHighestSeeders, MergePolicyFirstSeen:
	default:
		return fmt.Errorf("%w: search.merge_policy must be %q or %q",
			services.ErrConfiguration, MergePolicyHighestSeeders, MergePolicyFirstSeen)
	}
	switch s.ScorePolicy {
	case ScorePolicyClamp, ScorePolicyReject:
	default:
		return fmt.Errorf("%w: search.score_policy must be %q or %q",
			services.ErrConfiguration, ScorePolicyClamp, ScorePolicyReject)
	}
	return nil
}

func (c *Config) validateSources() error {
	if !c.Sources.PirateBay.Enabled && !c.Sources.YTS.Enabled {
		return fmt.Errorf("%w: at least one source must be enabled", services.ErrConfiguration)
	}
	if c.Sources.PirateBay.Enabled && strings.TrimSpace(c.Sources.PirateBay.BaseURL) == "" {
		return fmt.Errorf("%w: sources.piratebay.base_url must be set when enabled", services.ErrConfiguration)
	}
	if c.Sources.YTS.Enabled && strings.TrimSpace(c.Sources.YTS.BaseURL) == "" {
		return fmt.Errorf("%w: sources.yts.base_url must be set when enabled", services.ErrConfiguration)
	}
	return nil
}

func (c *Config) validateLLM() error {
	if strings.TrimSpace(c.LLM.Model) == "" {
		return fmt.Errorf("%w: llm.model must be set", services.ErrConfiguration)
	}
	if strings.TrimSpace(c.LLM.BaseURL) == "" {
		return fmt.Errorf("%w: llm.base_url must be set", services.ErrConfiguration)
	}
	if c.LLM.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: llm.timeout_seconds must not be negative", services.ErrConfiguration)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: logging.format must be console or json", services.ErrConfiguration)
	}
	return nil
}

// Package testsupport provides shared builders and stub capabilities
// for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"torrentai/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.LLM.APIKey = "test"
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithLLMKey sets the LLM API key on the test config.
func WithLLMKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.LLM.APIKey = key
	}
}

// WithAutoAction enables the auto-action gate with the given threshold.
func WithAutoAction(threshold float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Search.AutoAction = true
		cfg.Search.AutoActionThreshold = threshold
	}
}

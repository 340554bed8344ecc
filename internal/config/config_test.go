package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"torrentai/internal/config"
	"torrentai/internal/services"
)

func TestLoadDefaultConfigExpandsPathsAndAppliesEnv(t *testing.T) {
	t.Setenv("TORRENTAI_LLM_API_KEY", "env-llm-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "torrentai")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.LogDir != filepath.Join(wantState, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7379" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Paths.APIToken != "" {
		t.Fatalf("expected empty api token by default, got %q", cfg.Paths.APIToken)
	}
	if cfg.LLM.APIKey != "env-llm-key" {
		t.Fatalf("expected LLM key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.BaseURL != config.Default().LLM.BaseURL {
		t.Fatalf("unexpected LLM base url: %q", cfg.LLM.BaseURL)
	}
	if cfg.Search.AutoAction {
		t.Fatal("expected auto action disabled by default")
	}
	if cfg.Search.EarlyStopCandidates != 20 {
		t.Fatalf("unexpected early stop count: %d", cfg.Search.EarlyStopCandidates)
	}
	if cfg.Search.EvaluatorBackoffSecs != 2 {
		t.Fatalf("unexpected evaluator backoff: %d", cfg.Search.EvaluatorBackoffSecs)
	}
	if cfg.Search.MergePolicy != config.MergePolicyHighestSeeders {
		t.Fatalf("unexpected merge policy: %q", cfg.Search.MergePolicy)
	}
	if !cfg.Sources.PirateBay.Enabled || !cfg.Sources.YTS.Enabled {
		t.Fatal("expected both sources enabled by default")
	}
	if !cfg.Cache.Enabled {
		t.Fatal("expected interpretation cache enabled by default")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "torrentai.toml")

	type payload struct {
		LLM struct {
			APIKey string `toml:"api_key"`
			Model  string `toml:"model"`
		} `toml:"llm"`
		Search struct {
			MinConfidence       float64 `toml:"min_confidence"`
			AutoActionThreshold float64 `toml:"auto_action_threshold"`
			MergePolicy         string  `toml:"merge_policy"`
		} `toml:"search"`
		Transfer struct {
			URL string `toml:"url"`
		} `toml:"transfer"`
	}
	custom := payload{}
	custom.LLM.APIKey = "file-key"
	custom.LLM.Model = "anthropic/claude-sonnet"
	custom.Search.MinConfidence = 0.3
	custom.Search.AutoActionThreshold = 0.8
	custom.Search.MergePolicy = "First_Seen"
	custom.Transfer.URL = "http://nas.local:9091/transmission/rpc"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.LLM.APIKey != "file-key" {
		t.Fatalf("expected LLM key from file, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "anthropic/claude-sonnet" {
		t.Fatalf("unexpected model: %q", cfg.LLM.Model)
	}
	if cfg.Search.MinConfidence != 0.3 {
		t.Fatalf("unexpected min confidence: %v", cfg.Search.MinConfidence)
	}
	if cfg.Search.MergePolicy != config.MergePolicyFirstSeen {
		t.Fatalf("expected merge policy normalized to lowercase, got %q", cfg.Search.MergePolicy)
	}
	if cfg.Transfer.URL != "http://nas.local:9091/transmission/rpc" {
		t.Fatalf("unexpected transfer url: %q", cfg.Transfer.URL)
	}
}

func TestEnvVarOverridesConfigFileSecrets(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "torrentai.toml")

	type payload struct {
		LLM struct {
			APIKey string `toml:"api_key"`
		} `toml:"llm"`
		Transfer struct {
			Password string `toml:"password"`
		} `toml:"transfer"`
	}
	custom := payload{}
	custom.LLM.APIKey = "file-llm"
	custom.Transfer.Password = "file-pass"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("TORRENTAI_LLM_API_KEY", "env-llm")
	t.Setenv("TORRENTAI_TRANSFER_PASSWORD", "env-pass")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "env-llm" {
		t.Fatalf("expected env LLM key to win, got %q", cfg.LLM.APIKey)
	}
	if cfg.Transfer.Password != "env-pass" {
		t.Fatalf("expected env transfer password to win, got %q", cfg.Transfer.Password)
	}
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
		want   string
	}{
		{
			name:   "confidence above one",
			mutate: func(cfg *config.Config) { cfg.Search.MinConfidence = 1.5 },
			want:   "min_confidence",
		},
		{
			name: "gate below confidence floor",
			mutate: func(cfg *config.Config) {
				cfg.Search.MinConfidence = 0.8
				cfg.Search.AutoActionThreshold = 0.5
			},
			want: "auto_action_threshold",
		},
		{
			name:   "zero early stop",
			mutate: func(cfg *config.Config) { cfg.Search.EarlyStopCandidates = 0 },
			want:   "early_stop_candidates",
		},
		{
			name: "source timeout above pipeline timeout",
			mutate: func(cfg *config.Config) {
				cfg.Search.SourceTimeoutSeconds = 300
				cfg.Search.PipelineTimeoutSeconds = 120
			},
			want: "source_timeout_seconds",
		},
		{
			name:   "negative evaluator backoff",
			mutate: func(cfg *config.Config) { cfg.Search.EvaluatorBackoffSecs = -1 },
			want:   "evaluator_backoff_seconds",
		},
		{
			name:   "unknown merge policy",
			mutate: func(cfg *config.Config) { cfg.Search.MergePolicy = "lowest_seeders" },
			want:   "merge_policy",
		},
		{
			name:   "unknown score policy",
			mutate: func(cfg *config.Config) { cfg.Search.ScorePolicy = "round" },
			want:   "score_policy",
		},
		{
			name: "no sources enabled",
			mutate: func(cfg *config.Config) {
				cfg.Sources.PirateBay.Enabled = false
				cfg.Sources.YTS.Enabled = false
			},
			want: "at least one source",
		},
		{
			name:   "missing model",
			mutate: func(cfg *config.Config) { cfg.LLM.Model = "" },
			want:   "llm.model",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestWriteSample(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "nested", "config.toml")

	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[llm]") {
		t.Fatal("expected sample to include llm section")
	}
	if !strings.Contains(string(data), "[sources.piratebay]") {
		t.Fatal("expected sample to include piratebay source section")
	}

	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected second WriteSample to refuse overwrite")
	}
}

func TestSampleConfigParsesToDefaults(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample config failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Search.MinConfidence != config.Default().Search.MinConfidence {
		t.Fatalf("sample min_confidence diverged from default: %v", cfg.Search.MinConfidence)
	}
	if cfg.Search.MergePolicy != config.Default().Search.MergePolicy {
		t.Fatalf("sample merge_policy diverged from default: %q", cfg.Search.MergePolicy)
	}
}

func TestExpandPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	got, err := config.ExpandPath("~/downloads")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if got != filepath.Join(tempHome, "downloads") {
		t.Fatalf("unexpected expansion: %q", got)
	}

	got, err = config.ExpandPath("/var/lib/torrentai")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if got != "/var/lib/torrentai" {
		t.Fatalf("expected absolute path unchanged, got %q", got)
	}
}

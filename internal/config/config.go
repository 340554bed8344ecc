package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	// APIToken protects the HTTP API with bearer authentication when
	// set. An empty token leaves the API open.
	APIToken string `toml:"api_token"`
}

// LLM contains connection settings for the model backing the
// interpretation and evaluation capabilities.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Search contains the ranking, gating, and fan-out settings.
type Search struct {
	// MinConfidence filters scored candidates below this confidence.
	MinConfidence float64 `toml:"min_confidence"`
	// AutoActionThreshold is the relevance a top candidate must reach
	// before the gate decides to hand it to the transfer engine
	// without confirmation. Must be >= MinConfidence.
	AutoActionThreshold float64 `toml:"auto_action_threshold"`
	// AutoAction enables the automatic gate. When false every search
	// ends in AwaitingConfirmation.
	AutoAction bool `toml:"auto_action"`
	// EarlyStopCandidates halts further query variants once this many
	// raw candidates have accumulated.
	EarlyStopCandidates    int    `toml:"early_stop_candidates"`
	SourceTimeoutSeconds   int    `toml:"source_timeout_seconds"`
	PipelineTimeoutSeconds int    `toml:"pipeline_timeout_seconds"`
	MaxConcurrentCalls     int    `toml:"max_concurrent_calls"`
	EvaluatorRetries       int    `toml:"evaluator_retries"`
	EvaluatorTimeoutSecs   int    `toml:"evaluator_timeout_seconds"`
	// EvaluatorBackoffSecs is the delay before the first evaluator
	// retry; each further attempt doubles it.
	EvaluatorBackoffSecs int `toml:"evaluator_backoff_seconds"`
	MergePolicy            string `toml:"merge_policy"`
	ScorePolicy            string `toml:"score_policy"`
}

// SourceSite describes one enabled source adapter endpoint.
type SourceSite struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
}

// Sources contains source adapter configuration.
type Sources struct {
	UserAgent string     `toml:"user_agent"`
	PirateBay SourceSite `toml:"piratebay"`
	YTS       SourceSite `toml:"yts"`
}

// Transfer contains settings for the Transmission RPC transfer engine.
type Transfer struct {
	URL            string `toml:"url"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	DownloadDir    string `toml:"download_dir"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Notifications contains ntfy push notification settings.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Completion     bool   `toml:"completion"`
	Decisions      bool   `toml:"decisions"`
	Errors         bool   `toml:"errors"`
}

// Cache contains interpretation memoization settings.
type Cache struct {
	Enabled    bool `toml:"enabled"`
	TTLMinutes int  `toml:"ttl_minutes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values. It is constructed once
// at startup, validated, and passed explicitly; nothing mutates it
// afterwards.
//
// Configuration sections by subsystem:
//   - Paths: state directory, log directory, API bind address
//   - LLM: shared model connection for interpretation and evaluation
//   - Search: thresholds, timeouts, fan-out and merge policies
//   - Sources: per-adapter endpoints and shared user agent
//   - Transfer: Transmission RPC endpoint for the transfer engine
//   - Notifications: ntfy push notification settings
//   - Cache: interpretation memoization
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	LLM           LLM           `toml:"llm"`
	Search        Search        `toml:"search"`
	Sources       Sources       `toml:"sources"`
	Transfer      Transfer      `toml:"transfer"`
	Notifications Notifications `toml:"notifications"`
	Cache         Cache         `toml:"cache"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/torrentai/config.toml")
}

// Load locates, parses, and validates a configuration file. The
// returned config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) applyEnvOverrides() {
	if key := strings.TrimSpace(os.Getenv("TORRENTAI_LLM_API_KEY")); key != "" {
		c.LLM.APIKey = key
	}
	if pass := strings.TrimSpace(os.Getenv("TORRENTAI_TRANSFER_PASSWORD")); pass != "" {
		c.Transfer.Password = pass
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("torrentai.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Transfer.DownloadDir != "" {
		if c.Transfer.DownloadDir, err = expandPath(c.Transfer.DownloadDir); err != nil {
			return err
		}
	}
	c.Search.MergePolicy = strings.ToLower(strings.TrimSpace(c.Search.MergePolicy))
	c.Search.ScorePolicy = strings.ToLower(strings.TrimSpace(c.Search.ScorePolicy))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

// EnsureDirectories creates the directories required for operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// WriteSample writes the embedded sample configuration to path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

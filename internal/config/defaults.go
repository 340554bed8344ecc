package config

const (
	defaultStateDir               = "~/.local/share/torrentai"
	defaultLogDir                 = "~/.local/share/torrentai/logs"
	defaultAPIBind                = "127.0.0.1:7379"
	defaultLLMBaseURL             = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel               = "google/gemini-3-flash-preview"
	defaultLLMTimeoutSeconds      = 60
	defaultMinConfidence          = 0.5
	defaultAutoActionThreshold    = 0.9
	defaultEarlyStopCandidates    = 20
	defaultSourceTimeoutSeconds   = 30
	defaultPipelineTimeoutSeconds = 120
	defaultMaxConcurrentCalls     = 4
	defaultEvaluatorRetries       = 2
	defaultEvaluatorTimeoutSecs   = 90
	defaultEvaluatorBackoffSecs   = 2
	defaultUserAgent              = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	defaultPirateBayBaseURL       = "https://thepiratebay10.info"
	defaultYTSBaseURL             = "https://yts.mx/api/v2"
	defaultTransferURL            = "http://127.0.0.1:9091/transmission/rpc"
	defaultTransferTimeout        = 30
	defaultNotifyRequestTimeout   = 10
	defaultCacheTTLMinutes        = 60
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"

	// MergePolicyHighestSeeders keeps the duplicate with the most seeders.
	MergePolicyHighestSeeders = "highest_seeders"
	// MergePolicyFirstSeen keeps the duplicate that arrived first.
	MergePolicyFirstSeen = "first_seen"

	// ScorePolicyClamp clamps out-of-range evaluator scores into [0,1].
	ScorePolicyClamp = "clamp"
	// ScorePolicyReject fails evaluation when a score falls outside [0,1].
	ScorePolicyReject = "reject"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Search: Search{
			MinConfidence:          defaultMinConfidence,
			AutoActionThreshold:    defaultAutoActionThreshold,
			AutoAction:             false,
			EarlyStopCandidates:    defaultEarlyStopCandidates,
			SourceTimeoutSeconds:   defaultSourceTimeoutSeconds,
			PipelineTimeoutSeconds: defaultPipelineTimeoutSeconds,
			MaxConcurrentCalls:     defaultMaxConcurrentCalls,
			EvaluatorRetries:       defaultEvaluatorRetries,
			EvaluatorTimeoutSecs:   defaultEvaluatorTimeoutSecs,
			EvaluatorBackoffSecs:   defaultEvaluatorBackoffSecs,
			MergePolicy:            MergePolicyHighestSeeders,
			ScorePolicy:            ScorePolicyClamp,
		},
		Sources: Sources{
			UserAgent: defaultUserAgent,
			PirateBay: SourceSite{Enabled: true, BaseURL: defaultPirateBayBaseURL},
			YTS:       SourceSite{Enabled: true, BaseURL: defaultYTSBaseURL},
		},
		Transfer: Transfer{
			URL:            defaultTransferURL,
			TimeoutSeconds: defaultTransferTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Completion:     true,
			Decisions:      true,
			Errors:         true,
		},
		Cache: Cache{
			Enabled:    true,
			TTLMinutes: defaultCacheTTLMinutes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package main

import (
	"fmt"
	"log/slog"
	"time"

	"torrentai/internal/config"
	"torrentai/internal/evaluate"
	"torrentai/internal/fanout"
	"torrentai/internal/interpret"
	"torrentai/internal/normalize"
	"torrentai/internal/notifications"
	"torrentai/internal/services/llm"
	"torrentai/internal/services/transmission"
	"torrentai/internal/session"
	"torrentai/internal/sources"
	"torrentai/internal/sources/piratebay"
	"torrentai/internal/sources/yts"
	"torrentai/internal/transfer"
	"torrentai/internal/transfer/history"
)

// pipeline holds the wired search stack for one process.
type pipeline struct {
	runner   *session.Runner
	registry *session.Registry
	engine   *transfer.Engine
	history  *history.Store
}

// close releases resources the pipeline owns.
func (p *pipeline) close() {
	if p.history != nil {
		_ = p.history.Close()
	}
}

// buildPipeline wires every capability from configuration. The
// transfer engine is omitted when no Transmission endpoint is
// configured; searches then always park for confirmation.
func buildPipeline(cfg *config.Config, logger *slog.Logger) (*pipeline, error) {
	llmClient := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})

	interpreter := interpret.NewLLMService(llmClient, logger)
	evaluator := evaluate.NewLLMService(llmClient, evaluate.ScorePolicy(cfg.Search.ScorePolicy), logger)

	adapters, err := buildAdapters(cfg)
	if err != nil {
		return nil, err
	}
	coordinator := fanout.New(adapters, fanout.Options{
		CallTimeout:   time.Duration(cfg.Search.SourceTimeoutSeconds) * time.Second,
		EarlyStop:     cfg.Search.EarlyStopCandidates,
		MaxConcurrent: cfg.Search.MaxConcurrentCalls,
	}, logger)

	p := &pipeline{registry: session.NewRegistry()}

	var transferer session.Transferer
	if cfg.Transfer.URL != "" {
		client, err := transmission.NewClient(transmission.Config{
			URL:      cfg.Transfer.URL,
			Username: cfg.Transfer.Username,
			Password: cfg.Transfer.Password,
			Timeout:  time.Duration(cfg.Transfer.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		store, err := history.Open(cfg)
		if err != nil {
			return nil, err
		}
		p.history = store
		p.engine = transfer.NewEngine(client, store, cfg.Transfer.DownloadDir, logger)
		transferer = p.engine
	}

	var cacheTTL time.Duration
	if cfg.Cache.Enabled {
		cacheTTL = time.Duration(cfg.Cache.TTLMinutes) * time.Minute
	}

	p.runner = session.NewRunner(interpreter, coordinator, evaluator, transferer,
		notifications.NewService(cfg), session.RunnerConfig{
			MinConfidence:       cfg.Search.MinConfidence,
			AutoActionThreshold: cfg.Search.AutoActionThreshold,
			AutoAction:          cfg.Search.AutoAction,
			MergePolicy:         normalize.MergePolicy(cfg.Search.MergePolicy),
			PipelineTimeout:     time.Duration(cfg.Search.PipelineTimeoutSeconds) * time.Second,
			EvaluatorRetries:    cfg.Search.EvaluatorRetries,
			EvaluatorTimeout:    time.Duration(cfg.Search.EvaluatorTimeoutSecs) * time.Second,
			EvaluatorBackoff:    time.Duration(cfg.Search.EvaluatorBackoffSecs) * time.Second,
			CacheTTL:            cacheTTL,
		}, logger)
	return p, nil
}

func buildAdapters(cfg *config.Config) ([]sources.Adapter, error) {
	var adapters []sources.Adapter
	if cfg.Sources.PirateBay.Enabled {
		adapter, err := piratebay.New(cfg.Sources.PirateBay.BaseURL, cfg.Sources.UserAgent)
		if err != nil {
			return nil, fmt.Errorf("configure piratebay adapter: %w", err)
		}
		adapters = append(adapters, adapter)
	}
	if cfg.Sources.YTS.Enabled {
		adapter, err := yts.New(cfg.Sources.YTS.BaseURL, cfg.Sources.UserAgent)
		if err != nil {
			return nil, fmt.Errorf("configure yts adapter: %w", err)
		}
		adapters = append(adapters, adapter)
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("no source adapters enabled; enable at least one under [sources]")
	}
	return adapters, nil
}

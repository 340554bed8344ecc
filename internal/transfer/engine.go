// Package transfer hands chosen candidates to the Transmission daemon
// and keeps a persistent record of everything it initiated.
package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"torrentai/internal/logging"
	"torrentai/internal/services"
	"torrentai/internal/services/transmission"
	"torrentai/internal/transfer/history"
)

// Client is the subset of the Transmission API the engine uses.
type Client interface {
	Add(ctx context.Context, magnet, downloadDir string) (transmission.AddResult, error)
	Get(ctx context.Context, ids ...int64) ([]transmission.Torrent, error)
}

// Engine submits magnet links for download. It satisfies the session
// runner's transfer contract.
type Engine struct {
	client      Client
	store       *history.Store
	downloadDir string
	logger      *slog.Logger
}

// NewEngine wires the engine. The history store may be nil, in which
// case transfers are not recorded.
func NewEngine(client Client, store *history.Store, downloadDir string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		client:      client,
		store:       store,
		downloadDir: downloadDir,
		logger:      logging.NewComponentLogger(logger, "transfer"),
	}
}

// Initiate adds the magnet link to the download engine and records it.
// The returned identifier is the daemon's torrent hash. sessionID ties
// the history record to the search session that chose the candidate;
// it may be empty for direct downloads.
func (e *Engine) Initiate(ctx context.Context, magnet, title, sessionID string) (string, error) {
	result, err := e.client.Add(ctx, magnet, e.downloadDir)
	if err != nil {
		return "", err
	}
	if result.Duplicate {
		e.logger.InfoContext(ctx, "torrent already present",
			logging.String("hash", result.Hash),
			logging.String("title", title))
	}

	if e.store != nil && !result.Duplicate {
		_, recordErr := e.store.Record(ctx, history.Record{
			SessionID:   sessionID,
			TorrentID:   result.ID,
			Hash:        result.Hash,
			Title:       title,
			Magnet:      magnet,
			DownloadDir: e.downloadDir,
		})
		if recordErr != nil {
			// The download is running; a history miss is not worth
			// failing the transfer over.
			e.logger.WarnContext(ctx, "failed to record transfer",
				logging.String("hash", result.Hash),
				logging.Error(recordErr))
		}
	}

	e.logger.InfoContext(ctx, "transfer submitted",
		logging.String("hash", result.Hash),
		logging.String("title", title))
	return result.Hash, nil
}

// Progress describes one torrent the daemon is tracking.
type Progress struct {
	Hash         string
	Name         string
	PercentDone  float64
	RateDownload int64
	ETA          int64
	TotalSize    int64
	Downloading  bool
	Complete     bool
}

// Active lists every torrent the daemon currently tracks.
func (e *Engine) Active(ctx context.Context) ([]Progress, error) {
	torrents, err := e.client.Get(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Progress, 0, len(torrents))
	for _, t := range torrents {
		out = append(out, Progress{
			Hash:         t.Hash,
			Name:         t.Name,
			PercentDone:  t.PercentDone,
			RateDownload: t.RateDownload,
			ETA:          t.ETA,
			TotalSize:    t.TotalSize,
			Downloading:  t.Downloading(),
			Complete:     t.Complete(),
		})
	}
	return out, nil
}

// History returns the most recently initiated transfers, newest first.
func (e *Engine) History(ctx context.Context, limit int) ([]history.Record, error) {
	if e.store == nil {
		return nil, nil
	}
	return e.store.Recent(ctx, limit)
}

// MagnetHash extracts the info hash from a magnet link's btih urn.
func MagnetHash(magnet string) (string, error) {
	parsed, err := url.Parse(magnet)
	if err != nil || parsed.Scheme != "magnet" {
		return "", services.Wrap(services.ErrTransfer, "transfer", "parse",
			fmt.Sprintf("not a magnet link: %q", magnet), err)
	}
	for _, xt := range parsed.Query()["xt"] {
		if hash, ok := strings.CutPrefix(xt, "urn:btih:"); ok && hash != "" {
			return strings.ToLower(hash), nil
		}
	}
	return "", services.Wrap(services.ErrTransfer, "transfer", "parse", "magnet link has no btih urn", nil)
}

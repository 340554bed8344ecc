// Package daemon runs the long-lived search service: it enforces
// single-instance execution, owns the session registry, and exposes
// the HTTP API the CLI talks to.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"torrentai/internal/config"
	"torrentai/internal/logging"
	"torrentai/internal/session"
	"torrentai/internal/transfer"
)

// Daemon coordinates the session runner and the API server.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	runner   *session.Runner
	registry *session.Registry
	engine   *transfer.Engine

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Sessions     int
	LockFilePath string
}

// New constructs a daemon. The transfer engine may be nil when no
// download backend is configured.
func New(cfg *config.Config, runner *session.Runner, registry *session.Registry, engine *transfer.Engine, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || runner == nil || registry == nil {
		return nil, errors.New("daemon requires config, runner, and registry")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.StateDir, "torrentai.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		runner:   runner,
		registry: registry,
		engine:   engine,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	api, err := newAPIServer(cfg, d, d.logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the instance lock and brings the API server up.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another torrentai daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if d.api != nil {
		if err := d.api.start(d.ctx); err != nil {
			_ = d.lock.Unlock()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop cancels every live session, shuts the API server down, and
// releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	for _, sess := range d.registry.List() {
		if !sess.State().Terminal() {
			sess.Cancel()
		}
	}
	if d.api != nil {
		d.api.stop()
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.ctx = nil
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Addr returns the API listen address, empty until Start succeeds.
func (d *Daemon) Addr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// Status reports runtime information.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Sessions:     len(d.registry.List()),
		LockFilePath: d.lockPath,
	}
}

// StartSearch creates a session for the request and runs it in the
// background.
func (d *Daemon) StartSearch(request string) *session.Session {
	parent := d.ctx
	if parent == nil {
		parent = context.Background()
	}
	sess := session.New(parent, request)
	d.registry.Add(sess)
	go func() {
		if err := d.runner.Run(sess); err != nil {
			d.logger.Warn("session ended with error",
				logging.String(logging.FieldSessionID, sess.ID()),
				logging.Error(err))
		}
	}()
	return sess
}

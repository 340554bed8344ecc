package fanout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"torrentai/internal/logging"
	"torrentai/internal/planner"
	"torrentai/internal/services"
	"torrentai/internal/sources"
)

const (
	defaultCallTimeout   = 15 * time.Second
	defaultEarlyStop     = 20
	defaultMaxConcurrent = 4
)

// Options bounds the fan-out.
type Options struct {
	// CallTimeout caps each individual adapter call.
	CallTimeout time.Duration
	// EarlyStop halts further query variants once this many candidates
	// have accumulated. Calls already in flight still complete.
	EarlyStop int
	// MaxConcurrent caps in-flight adapter calls across the session.
	MaxConcurrent int
}

func (o Options) withDefaults() Options {
	if o.CallTimeout <= 0 {
		o.CallTimeout = defaultCallTimeout
	}
	if o.EarlyStop <= 0 {
		o.EarlyStop = defaultEarlyStop
	}
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = defaultMaxConcurrent
	}
	return o
}

// Sink receives candidate batches as adapter calls complete, before
// the fan-out finishes. Called from coordinator goroutines one batch
// at a time.
type Sink func(batch []sources.Candidate)

// Result is the accumulated outcome of one fan-out run.
type Result struct {
	Candidates []sources.Candidate
	// Errors holds every non-fatal per-call failure, in completion
	// order.
	Errors []*sources.Error
}

// Coordinator issues one call per (query variant, adapter) pair,
// primary variants before fallback, and tolerates individual adapter
// failures. It fails only when no adapter produced any candidate.
type Coordinator struct {
	adapters []sources.Adapter
	opts     Options
	logger   *slog.Logger
}

// New constructs a Coordinator over the enabled adapters.
func New(adapters []sources.Adapter, opts Options, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Coordinator{
		adapters: adapters,
		opts:     opts.withDefaults(),
		logger:   logging.NewComponentLogger(logger, "fanout"),
	}
}

// Run executes the plan. The context carries the overall pipeline
// deadline; per-call timeouts are layered beneath it. Candidates are
// appended to the result and pushed to sink as calls complete.
func (c *Coordinator) Run(ctx context.Context, plan planner.Plan, sink Sink) (Result, error) {
	var result Result
	if len(c.adapters) == 0 {
		return result, services.Wrap(services.ErrConfiguration, "fanout", "run", "no adapters enabled", nil)
	}

	var mu sync.Mutex
	sem := semaphore.NewWeighted(int64(c.opts.MaxConcurrent))

	appendBatch := func(batch []sources.Candidate) int {
		mu.Lock()
		result.Candidates = append(result.Candidates, batch...)
		total := len(result.Candidates)
		mu.Unlock()
		if sink != nil && len(batch) > 0 {
			sink(batch)
		}
		return total
	}
	appendError := func(srcErr *sources.Error) {
		mu.Lock()
		result.Errors = append(result.Errors, srcErr)
		mu.Unlock()
	}
	accumulated := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(result.Candidates)
	}

	buckets := [][]string{plan.Primary, plan.Fallback}
	for _, bucket := range buckets {
		for _, query := range bucket {
			if ctx.Err() != nil {
				return result, c.finish(ctx, result)
			}
			if accumulated() >= c.opts.EarlyStop {
				c.logger.DebugContext(ctx, "early stop threshold reached",
					logging.Int("candidates", accumulated()))
				return result, c.finish(ctx, result)
			}

			// One wave per variant: all adapters in parallel, bounded
			// by the shared semaphore. The wave completes before the
			// next variant is issued so the early-stop check sees a
			// settled count.
			group, groupCtx := errgroup.WithContext(ctx)
			for _, adapter := range c.adapters {
				adapter := adapter
				group.Go(func() error {
					if err := sem.Acquire(groupCtx, 1); err != nil {
						return nil
					}
					defer sem.Release(1)
					c.callAdapter(groupCtx, adapter, query, plan.HintsFor(adapter.Name()), appendBatch, appendError)
					return nil
				})
			}
			_ = group.Wait()
		}
	}
	return result, c.finish(ctx, result)
}

func (c *Coordinator) callAdapter(
	ctx context.Context,
	adapter sources.Adapter,
	query string,
	hints []string,
	appendBatch func([]sources.Candidate) int,
	appendError func(*sources.Error),
) {
	callCtx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
	defer cancel()

	batch, err := adapter.Search(callCtx, query, hints)
	if err != nil {
		srcErr := asSourceError(adapter.Name(), query, err)
		appendError(srcErr)
		c.logger.WarnContext(ctx, "adapter call failed",
			logging.String(logging.FieldAdapter, adapter.Name()),
			logging.String(logging.FieldQuery, query),
			logging.String("kind", string(srcErr.Kind)),
			logging.Error(srcErr.Cause))
		return
	}
	total := appendBatch(batch)
	c.logger.DebugContext(ctx, "adapter call completed",
		logging.String(logging.FieldAdapter, adapter.Name()),
		logging.String(logging.FieldQuery, query),
		logging.Int("batch", len(batch)),
		logging.Int("total", total))
}

// finish decides the run's final error: nothing at all is fatal, a
// fired deadline with no candidates is a timeout, partial results are
// success.
func (c *Coordinator) finish(ctx context.Context, result Result) error {
	if len(result.Candidates) > 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "fanout", "run", "pipeline deadline fired before any candidate arrived", err)
		}
		return err
	}
	return services.Wrap(services.ErrSourcesExhausted, "fanout", "run", "no candidates from any adapter", nil)
}

func asSourceError(adapter, query string, err error) *sources.Error {
	var srcErr *sources.Error
	if errors.As(err, &srcErr) {
		return srcErr
	}
	kind := sources.ErrorTransport
	if errors.Is(err, context.DeadlineExceeded) {
		kind = sources.ErrorTimeout
	}
	return sources.NewError(adapter, query, kind, err)
}

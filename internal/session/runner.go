package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"torrentai/internal/evaluate"
	"torrentai/internal/fanout"
	"torrentai/internal/intent"
	"torrentai/internal/interpret"
	"torrentai/internal/logging"
	"torrentai/internal/memo"
	"torrentai/internal/normalize"
	"torrentai/internal/notifications"
	"torrentai/internal/planner"
	"torrentai/internal/rank"
	"torrentai/internal/services"
)

// Transferer initiates an external download for a chosen candidate
// and returns an engine-native transfer identifier. The session id is
// recorded alongside the transfer so history can be traced back to
// the search that produced it.
type Transferer interface {
	Initiate(ctx context.Context, magnet, title, sessionID string) (string, error)
}

// RunnerConfig bounds one session run.
type RunnerConfig struct {
	MinConfidence       float64
	AutoActionThreshold float64
	AutoAction          bool
	MergePolicy         normalize.MergePolicy

	// PipelineTimeout bounds the whole run from Planning through
	// Ranked. Zero disables the deadline.
	PipelineTimeout time.Duration

	EvaluatorRetries int
	EvaluatorTimeout time.Duration
	// EvaluatorBackoff delays the first evaluator retry and doubles on
	// each further attempt. Zero retries immediately.
	EvaluatorBackoff time.Duration

	// CacheTTL enables interpretation and evaluation memoization when
	// positive.
	CacheTTL time.Duration
}

type cachedInterpretation struct {
	intent     intent.Intent
	suggestion planner.Suggestion
}

// Runner drives sessions through the pipeline. One Runner serves many
// concurrent sessions; it holds no per-session state.
type Runner struct {
	interpreter interpret.Service
	coordinator *fanout.Coordinator
	evaluator   evaluate.Service
	transferer  Transferer
	notifier    notifications.Service
	cfg         RunnerConfig
	logger      *slog.Logger

	interpCache *memo.Cache[cachedInterpretation]
	evalCache   *memo.Cache[[]evaluate.Scored]
}

// NewRunner wires the pipeline capabilities. Transferer may be nil
// when no transfer engine is configured; auto-action then degrades to
// awaiting confirmation.
func NewRunner(
	interpreter interpret.Service,
	coordinator *fanout.Coordinator,
	evaluator evaluate.Service,
	transferer Transferer,
	notifier notifications.Service,
	cfg RunnerConfig,
	logger *slog.Logger,
) *Runner {
	if notifier == nil {
		notifier = notifications.NewNoop()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		interpreter: interpreter,
		coordinator: coordinator,
		evaluator:   evaluator,
		transferer:  transferer,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logging.NewComponentLogger(logger, "session"),
		interpCache: memo.New[cachedInterpretation](cfg.CacheTTL),
		evalCache:   memo.New[[]evaluate.Scored](cfg.CacheTTL),
	}
}

// Run drives the session from Created to a terminal state, or to
// AwaitingConfirmation where it parks until Confirm or Dismiss. The
// returned error mirrors the failure recorded on the session.
func (r *Runner) Run(sess *Session) error {
	ctx := sess.Context()
	if r.cfg.PipelineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.PipelineTimeout)
		defer cancel()
	}
	logger := r.logger.With(logging.String(logging.FieldSessionID, sess.ID()))

	if !sess.transition(StatePlanning) {
		return r.settle(sess, logger, services.Wrap(services.ErrConfiguration, "session", "run", "session not in created state", nil))
	}

	in, plan, err := r.plan(ctx, sess)
	if err != nil {
		return r.settle(sess, logger, err)
	}
	logger.InfoContext(ctx, "request interpreted", logging.String("intent", in.Summary()))

	if !sess.transition(StateSearching) {
		return r.settle(sess, logger, ctx.Err())
	}
	result, err := r.coordinator.Run(ctx, plan, sess.appendRaw)
	sess.recordSourceErrors(result.Errors)
	if err != nil {
		return r.settle(sess, logger, err)
	}
	logger.InfoContext(ctx, "search finished",
		logging.Int("candidates", len(result.Candidates)),
		logging.Int("source_errors", len(result.Errors)))

	if !sess.transition(StateEvaluating) {
		return r.settle(sess, logger, ctx.Err())
	}
	normalized := normalize.Dedupe(result.Candidates, r.cfg.MergePolicy)
	sess.setNormalized(normalized)

	scored, err := r.evaluateWithRetry(ctx, in, normalized)
	if err != nil {
		return r.settle(sess, logger, err)
	}

	if !sess.transition(StateRanked) {
		return r.settle(sess, logger, ctx.Err())
	}
	outcome := rank.Rank(scored, rank.Options{
		MinConfidence:       r.cfg.MinConfidence,
		AutoActionThreshold: r.cfg.AutoActionThreshold,
		AutoAction:          r.cfg.AutoAction && r.transferer != nil,
	})
	sess.setOutcome(outcome)
	logger.InfoContext(ctx, "ranking complete",
		logging.Int("ranked", len(outcome.Ranked)),
		logging.String("decision", string(outcome.Decision)))

	switch outcome.Decision {
	case rank.DecisionNoQualifyingResults:
		_ = r.notifier.NotifyNoResults(ctx, sess.Request())
		sess.transition(StateCompleted)
		return nil
	case rank.DecisionProceed:
		top, _ := outcome.Top()
		if !sess.transition(StateAutoActing) {
			return r.settle(sess, logger, ctx.Err())
		}
		if err := r.startTransfer(ctx, sess, top); err != nil {
			return r.settle(sess, logger, err)
		}
		_ = r.notifier.NotifySearchCompleted(ctx, sess.Request(), top.Candidate.Title, len(outcome.Ranked))
		sess.transition(StateCompleted)
		return nil
	default:
		top, _ := outcome.Top()
		if !sess.transition(StateAwaitingConfirmation) {
			return r.settle(sess, logger, ctx.Err())
		}
		_ = r.notifier.NotifyAwaitingConfirmation(ctx, sess.Request(), top.Candidate.Title, len(outcome.Ranked))
		return nil
	}
}

// Confirm acts on a ranked candidate from AwaitingConfirmation: the
// indexed candidate is handed to the transfer engine and the session
// completes.
func (r *Runner) Confirm(ctx context.Context, sess *Session, index int) error {
	if err := sess.Context().Err(); err != nil {
		return services.Wrap(services.ErrConfiguration, "session", "confirm", "session is cancelled", err)
	}
	ranked, _ := sess.Ranked()
	if index < 0 || index >= len(ranked) {
		return services.Wrap(services.ErrConfiguration, "session", "confirm",
			fmt.Sprintf("candidate index %d out of range (0-%d)", index, len(ranked)-1), nil)
	}
	if r.transferer == nil {
		return services.Wrap(services.ErrTransfer, "session", "confirm", "no transfer engine configured", nil)
	}
	if !sess.transition(StateAutoActing) {
		return services.Wrap(services.ErrConfiguration, "session", "confirm",
			fmt.Sprintf("session is %s, not awaiting confirmation", sess.State()), nil)
	}
	logger := r.logger.With(logging.String(logging.FieldSessionID, sess.ID()))
	if err := r.startTransfer(ctx, sess, ranked[index]); err != nil {
		return r.settle(sess, logger, err)
	}
	_ = r.notifier.NotifySearchCompleted(ctx, sess.Request(), ranked[index].Candidate.Title, len(ranked))
	sess.transition(StateCompleted)
	return nil
}

// Dismiss completes a session parked in AwaitingConfirmation without
// taking any action. The ranked list was delivered; that is a valid
// completion.
func (r *Runner) Dismiss(sess *Session) error {
	if sess.State() != StateAwaitingConfirmation {
		return services.Wrap(services.ErrConfiguration, "session", "dismiss",
			fmt.Sprintf("session is %s, not awaiting confirmation", sess.State()), nil)
	}
	sess.transition(StateCompleted)
	return nil
}

func (r *Runner) plan(ctx context.Context, sess *Session) (intent.Intent, planner.Plan, error) {
	key := requestKey(sess.Request())

	var in intent.Intent
	var suggestion planner.Suggestion
	if cached, ok := r.interpCache.Get(key); ok {
		in, suggestion = cached.intent, cached.suggestion
	} else {
		var err error
		in, err = r.interpreter.ParseIntent(ctx, sess.Request())
		if err != nil {
			return intent.Intent{}, planner.Plan{}, err
		}
		suggestion, err = r.interpreter.BuildStrategy(ctx, in)
		if err != nil {
			return intent.Intent{}, planner.Plan{}, err
		}
		r.interpCache.Put(key, cachedInterpretation{intent: in, suggestion: suggestion})
	}
	sess.setIntent(in)

	plan, err := planner.Build(in, suggestion)
	if err != nil {
		return intent.Intent{}, planner.Plan{}, err
	}
	sess.setPlan(plan)
	return in, plan, nil
}

func (r *Runner) evaluateWithRetry(ctx context.Context, in intent.Intent, candidates []normalize.Candidate) ([]evaluate.Scored, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	key := evaluationKey(in, candidates)
	if cached, ok := r.evalCache.Get(key); ok {
		return cached, nil
	}

	attempts := r.cfg.EvaluatorRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	timeout := r.cfg.EvaluatorTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		scored, err := r.evaluator.Evaluate(callCtx, in, candidates)
		cancel()
		if err == nil {
			r.evalCache.Put(key, scored)
			return scored, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if attempt < attempts {
			if err := sleepCtx(ctx, r.backoff(attempt)); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

func (r *Runner) backoff(attempt int) time.Duration {
	base := r.cfg.EvaluatorBackoff
	if base <= 0 {
		return 0
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

func (r *Runner) startTransfer(ctx context.Context, sess *Session, top evaluate.Scored) error {
	id, err := r.transferer.Initiate(ctx, top.Candidate.Link, top.Candidate.Title, sess.ID())
	if err != nil {
		return services.Wrap(services.ErrTransfer, "session", "transfer", "initiate failed", err)
	}
	_ = r.notifier.NotifyTransferStarted(ctx, top.Candidate.Title)
	r.logger.InfoContext(ctx, "transfer initiated",
		logging.String(logging.FieldSessionID, sess.ID()),
		logging.String("transfer_id", id),
		logging.String("title", top.Candidate.Title))
	return nil
}

// settle records a pipeline error as the session's terminal state:
// cancellation wins over failure, and terminal sessions are left
// untouched.
func (r *Runner) settle(sess *Session, logger *slog.Logger, err error) error {
	if err == nil {
		err = errors.New("pipeline aborted")
	}
	if errors.Is(err, context.Canceled) || errors.Is(sess.Context().Err(), context.Canceled) {
		sess.setFailureReason("cancelled")
		if sess.transition(StateCancelled) {
			logger.InfoContext(context.Background(), "session cancelled",
				logging.String(logging.FieldState, string(StateCancelled)))
		}
		return err
	}
	reason := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		reason = "pipeline deadline exceeded"
	}
	sess.setFailureReason(reason)
	if sess.transition(StateFailed) {
		logger.ErrorContext(context.Background(), "session failed", logging.Error(err))
		_ = r.notifier.NotifyError(context.Background(), err, "search session")
	}
	return err
}

func sleepCtx(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func requestKey(request string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(request), " "))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:16])
}

func evaluationKey(in intent.Intent, candidates []normalize.Candidate) string {
	var b strings.Builder
	b.WriteString(in.Fingerprint())
	for _, c := range candidates {
		b.WriteByte('|')
		b.WriteString(c.Link)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:16])
}

package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/polkiloo/routeshop/internal/adapter/ledger"
	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
	"github.com/polkiloo/routeshop/internal/domain/model"
)

// ReconcileFacade exposes the subset of application functionality required by the reconciler.
type ReconcileFacade interface {
	Checkpoint(ctx context.Context) (time.Time, error)
	SaveCheckpoint(ctx context.Context, at time.Time) error
	Statement(ctx context.Context, from, to time.Time) ([]model.LedgerEvent, error)
	Reconcile(ctx context.Context, event model.LedgerEvent) (model.MatchOutcome, error)
}

// Reconciler polls the ledger statement and matches new events against pending orders.
type Reconciler struct {
	facade   ReconcileFacade
	interval time.Duration
	workers  int
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time

	wg           sync.WaitGroup
	mu           sync.Mutex
	cancel       context.CancelFunc
	blockedUntil time.Time
}

// NewReconciler constructs the statement poller.
func NewReconciler(facade ReconcileFacade, interval time.Duration, workers int, logger *slog.Logger, tracer trace.Tracer) *Reconciler {
	if workers <= 0 {
		workers = 1
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("reconciler")
	}
	return &Reconciler{
		facade:   facade,
		interval: interval,
		workers:  workers,
		logger:   logger,
		tracer:   tracer,
		now:      time.Now,
	}
}

// Start launches background polling.
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancel = cancel

	r.wg.Add(1)
	go r.loop(runCtx)
}

// Stop waits for the current pass to finish.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Reconciler) loop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if r.throttled() {
				continue
			}
			if err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
				r.logger.Error("reconcile pass failed", slog.String("error", err.Error()))
			}
		}
	}
}

func (r *Reconciler) throttled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now().Before(r.blockedUntil)
}

// RunOnce performs one pass over [checkpoint, now]. The checkpoint only
// advances when every event was handled; ambiguous events do not count as failures.
func (r *Reconciler) RunOnce(ctx context.Context) (err error) {
	ctx, span := r.tracer.Start(ctx, "reconcile.pass")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	from, err := r.facade.Checkpoint(ctx)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}
	to := r.now()

	events, err := r.facade.Statement(ctx, from, to)
	if err != nil {
		var tooMany ledger.TooManyRequestsError
		if errors.As(err, &tooMany) {
			r.mu.Lock()
			r.blockedUntil = to.Add(tooMany.RetryAfter)
			r.mu.Unlock()
			r.logger.Warn("ledger rate limited", slog.Duration("retry_after", tooMany.RetryAfter))
		}
		return fmt.Errorf("fetch statement: %w", err)
	}
	span.SetAttributes(attribute.Int("ledger.events", len(events)))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for _, event := range events {
		g.Go(func() error {
			return r.handle(ctx, event)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := r.facade.SaveCheckpoint(ctx, to); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

func (r *Reconciler) handle(ctx context.Context, event model.LedgerEvent) error {
	outcome, err := r.facade.Reconcile(ctx, event)
	switch {
	case err == nil:
		r.logger.Debug("ledger event reconciled", slog.String("event_id", event.ID), slog.String("outcome", string(outcome)))
		return nil
	case errors.Is(err, domainErrors.ErrAmbiguousMatch):
		r.logger.Warn("ledger event needs operator review", slog.String("event_id", event.ID))
		return nil
	default:
		return fmt.Errorf("reconcile event %s: %w", event.ID, err)
	}
}

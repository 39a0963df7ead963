package usecase

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/polkiloo/routeshop/internal/domain/model"
)

type orderMetrics struct {
	created   metric.Int64Counter
	resolved  metric.Int64Counter
	reconcile metric.Int64Counter
	accrued   metric.Int64Counter
}

func newOrderMetrics(m metric.Meter) orderMetrics {
	if m == nil {
		return orderMetrics{}
	}
	created, _ := m.Int64Counter("routeshop.orders.created", metric.WithDescription("Pending orders created"))
	resolved, _ := m.Int64Counter("routeshop.orders.resolved", metric.WithDescription("Orders moved to a terminal status"))
	reconcile, _ := m.Int64Counter("routeshop.reconcile.events", metric.WithDescription("Ledger events by match outcome"))
	accrued, _ := m.Int64Counter("routeshop.payouts.accrued", metric.WithDescription("Commission credited to instructors"), metric.WithUnit("kopiyka"))
	return orderMetrics{created: created, resolved: resolved, reconcile: reconcile, accrued: accrued}
}

func (m orderMetrics) recordCreated(ctx context.Context) {
	if m.created != nil {
		m.created.Add(ctx, 1)
	}
}

func (m orderMetrics) recordResolved(ctx context.Context, status model.OrderStatus, source string) {
	if m.resolved != nil {
		m.resolved.Add(ctx, 1, metric.WithAttributes(
			attribute.String("order.status", string(status)),
			attribute.String("source", source),
		))
	}
}

func (m orderMetrics) recordMatch(ctx context.Context, outcome model.MatchOutcome) {
	if m.reconcile != nil {
		m.reconcile.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome))))
	}
}

func (m orderMetrics) recordAccrued(ctx context.Context, commission int64) {
	if m.accrued != nil && commission > 0 {
		m.accrued.Add(ctx, commission)
	}
}

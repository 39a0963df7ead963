package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/polkiloo/routeshop/internal/domain/command"
	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
	"github.com/polkiloo/routeshop/internal/domain/model"
)

const (
	// CheckpointName keys the statement poller in the checkpoint table.
	CheckpointName = "ledger_statement"

	matchWindowBefore = 5 * time.Minute
	matchWindowAfter  = time.Minute
	initialLookback   = time.Hour

	// ambiguousNoticeTTL covers the re-polls of a window whose checkpoint is stuck.
	ambiguousNoticeTTL = 24 * time.Hour
)

// Invoice statuses reported by the ledger webhook.
const (
	InvoiceSuccess = "success"
	InvoiceExpired = "expired"
	InvoiceFailure = "failure"
)

const paymentFailedReason = "payment failed"

// Match narrows candidates to the orders that could have produced the event:
// same amount, created within [t-5m, t+1m], declared card ending in the event's card suffix.
func Match(event model.LedgerEvent, candidates []model.Order) []model.Order {
	from := event.Time.Add(-matchWindowBefore)
	to := event.Time.Add(matchWindowAfter)
	suffix := event.CardSuffix()

	var matched []model.Order
	for _, o := range candidates {
		if o.Status != model.OrderStatusPending || o.Amount != event.Amount {
			continue
		}
		if o.CreatedAt.Before(from) || o.CreatedAt.After(to) {
			continue
		}
		if suffix == "" || o.Proof.Last4 != suffix {
			continue
		}
		matched = append(matched, o)
	}
	return matched
}

// ReconcileUseCase correlates ledger activity with pending orders.
type ReconcileUseCase struct {
	deps     Deps
	resolver *resolver
	metrics  orderMetrics
	now      func() time.Time
}

// NewReconcileUseCase constructs ReconcileUseCase.
func NewReconcileUseCase(d Deps) *ReconcileUseCase {
	metrics := newOrderMetrics(d.Meter)
	return &ReconcileUseCase{deps: d, resolver: newResolver(d, metrics), metrics: metrics, now: time.Now}
}

// Checkpoint returns the time the statement was last fully processed up to.
func (u *ReconcileUseCase) Checkpoint(ctx context.Context) (time.Time, error) {
	at, ok, err := u.deps.Checkpoints.Load(ctx, CheckpointName)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return u.now().Add(-initialLookback), nil
	}
	return at, nil
}

// SaveCheckpoint advances the statement checkpoint.
func (u *ReconcileUseCase) SaveCheckpoint(ctx context.Context, at time.Time) error {
	return u.deps.Checkpoints.Save(ctx, CheckpointName, at)
}

// Statement queries ledger events in [from, to].
func (u *ReconcileUseCase) Statement(ctx context.Context, from, to time.Time) ([]model.LedgerEvent, error) {
	if u.deps.Ledger == nil {
		return nil, fmt.Errorf("%w: ledger is not configured", domainErrors.ErrExternalService)
	}
	return u.deps.Ledger.Statement(ctx, from, to)
}

// Reconcile promotes the single pending order matching event.
// Ambiguous events change nothing and are handed to the operator.
func (u *ReconcileUseCase) Reconcile(ctx context.Context, event model.LedgerEvent) (model.MatchOutcome, error) {
	outcome, err := u.reconcile(ctx, event)
	u.metrics.recordMatch(ctx, outcome)
	return outcome, err
}

func (u *ReconcileUseCase) reconcile(ctx context.Context, event model.LedgerEvent) (model.MatchOutcome, error) {
	log := u.deps.logger().With(slog.String("event_id", event.ID), slog.Int64("amount", event.Amount))

	if !event.Credit() {
		return model.MatchSkipped, nil
	}

	candidates, err := u.deps.Orders.ListPendingByAmount(ctx, event.Amount,
		event.Time.Add(-matchWindowBefore), event.Time.Add(matchWindowAfter))
	if err != nil {
		return model.MatchUnmatched, err
	}

	matched := Match(event, candidates)
	switch len(matched) {
	case 0:
		log.InfoContext(ctx, "ledger event left unmatched", slog.Int("candidates", len(candidates)))
		return model.MatchUnmatched, nil
	case 1:
		amount := matched[0].Amount
		if _, err := u.resolver.promote(ctx, matched[0].ID, &amount, SourceReconciler); err != nil {
			if errors.Is(err, domainErrors.ErrStaleAction) {
				log.InfoContext(ctx, "matched order already handled", slog.Int64("order_id", matched[0].ID))
				return model.MatchHandled, nil
			}
			return model.MatchUnmatched, err
		}
		return model.MatchPromoted, nil
	default:
		ids := make([]string, 0, len(matched))
		buttons := make([]model.Button, 0, len(matched))
		for _, o := range matched {
			ids = append(ids, "#"+strconv.FormatInt(o.ID, 10))
			buttons = append(buttons, model.Button{
				Label:  "Одобрити #" + strconv.FormatInt(o.ID, 10),
				Action: command.Approve(o.ID, o.Amount),
			})
		}
		log.WarnContext(ctx, "ambiguous ledger event", slog.String("orders", strings.Join(ids, ",")))
		ambiguous := fmt.Errorf("%w: event %s matches %d orders", domainErrors.ErrAmbiguousMatch, event.ID, len(matched))

		first, err := u.deps.Sessions.MarkNotice(ctx, "ambiguous:"+event.ID, ambiguousNoticeTTL)
		if err != nil {
			log.WarnContext(ctx, "failed to record ambiguous notice", slog.Any("error", err))
			first = true
		}
		if !first {
			log.DebugContext(ctx, "operator already asked about ledger event")
			return model.MatchAmbiguous, ambiguous
		}

		u.resolver.send(ctx, model.Message{
			ChatID: u.deps.Config.OperatorID,
			Text: fmt.Sprintf("Платіж %s (%s, карта %s) підходить до кількох замовлень: %s. Перевірте вручну.",
				event.ID, model.FormatAmount(event.Amount), maskCard(event.CardSuffix()), strings.Join(ids, ", ")),
			Buttons: buttons,
		})
		return model.MatchAmbiguous, ambiguous
	}
}

// HandleInvoice applies an invoice status reported by the ledger webhook.
// Repeated deliveries of a final status are no-ops.
func (u *ReconcileUseCase) HandleInvoice(ctx context.Context, invoiceID, status string) error {
	invoiceID = strings.TrimSpace(invoiceID)
	if invoiceID == "" {
		return fmt.Errorf("%w: invoice id is required", domainErrors.ErrValidation)
	}

	order, err := u.deps.Orders.GetByExternalRef(ctx, invoiceID)
	if err != nil {
		return err
	}

	amount := order.Amount
	switch strings.ToLower(status) {
	case InvoiceSuccess:
		_, err = u.resolver.promote(ctx, order.ID, &amount, SourceWebhook)
	case InvoiceExpired:
		_, err = u.resolver.close(ctx, model.Transition{OrderID: order.ID, ExpectedAmount: &amount, Status: model.OrderStatusExpired}, SourceWebhook)
	case InvoiceFailure:
		reason := paymentFailedReason
		_, err = u.resolver.close(ctx, model.Transition{OrderID: order.ID, ExpectedAmount: &amount, Status: model.OrderStatusRejected, Reason: &reason}, SourceWebhook)
	default:
		u.deps.logger().DebugContext(ctx, "ignoring invoice status", slog.String("invoice_id", invoiceID), slog.String("status", status))
		return nil
	}

	if errors.Is(err, domainErrors.ErrStaleAction) {
		u.deps.logger().InfoContext(ctx, "invoice already handled", slog.String("invoice_id", invoiceID))
		return nil
	}
	return err
}

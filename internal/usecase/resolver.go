package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/polkiloo/routeshop/internal/domain/command"
	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
	"github.com/polkiloo/routeshop/internal/domain/model"
)

// Sources record who caused a terminal transition.
const (
	SourceOperator   = "operator"
	SourceReconciler = "reconciler"
	SourceWebhook    = "webhook"
	SourceAdmin      = "admin"
)

// resolver owns every terminal transition so that operator actions, the
// reconciler and the webhook share one guarded path and one set of side effects.
type resolver struct {
	deps    Deps
	metrics orderMetrics
	now     func() time.Time
}

func newResolver(d Deps, metrics orderMetrics) *resolver {
	return &resolver{deps: d, metrics: metrics, now: time.Now}
}

// promote marks a pending order successful, credits its referrer and delivers the links.
func (r *resolver) promote(ctx context.Context, orderID int64, expectedAmount *int64, source string) (*model.Completion, error) {
	order, err := r.deps.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, fmt.Errorf("%w: order %d is already %s", domainErrors.ErrStaleAction, orderID, order.Status)
	}
	if expectedAmount != nil && *expectedAmount != order.Amount {
		return nil, fmt.Errorf("%w: order %d amount is %d", domainErrors.ErrStaleAction, orderID, order.Amount)
	}

	links, err := r.deps.Catalog.Fulfillment(order.Products)
	if err != nil {
		return nil, err
	}

	var commission int64
	if order.ReferralCode != nil {
		commission = Commission(order.Amount, r.deps.Config.CommissionRate)
	}

	amount := order.Amount
	completion, err := r.deps.Orders.Complete(ctx, model.Transition{
		OrderID:        orderID,
		ExpectedAmount: &amount,
		Status:         model.OrderStatusSuccess,
		Fulfillment:    links,
	}, commission)
	if err != nil {
		return nil, err
	}

	done := completion.Order
	r.deps.logger().InfoContext(ctx, "order completed",
		slog.Int64("order_id", done.ID), slog.Int64("amount", done.Amount), slog.String("source", source))
	r.metrics.recordResolved(ctx, model.OrderStatusSuccess, source)
	r.metrics.recordAccrued(ctx, completion.Commission)
	r.publish(ctx, model.EventOrderResolved, done, source)

	r.send(ctx, model.Message{
		ChatID: done.BuyerID,
		Text:   "Оплата підтверджена!\nТвої маршрути:\n\n" + strings.Join(done.Fulfillment, "\n"),
	})

	if in := completion.Instructor; in != nil && in.Balance >= r.deps.Config.PayoutThreshold {
		r.send(ctx, model.Message{
			ChatID: r.deps.Config.OperatorID,
			Text: fmt.Sprintf("@%s: виплата!\nНакопичено: %s\nКарта: %s\nВиплатіть і скиньте!",
				in.Contact, model.FormatAmount(in.Balance), maskCard(in.CardLast4)),
			Buttons: []model.Button{{Label: "Виплатити " + model.FormatAmount(in.Balance), Action: command.Settle(in.Code)}},
		})
	}

	return completion, nil
}

// close moves a pending order into rejected, cancelled or expired and tells the buyer.
func (r *resolver) close(ctx context.Context, t model.Transition, source string) (*model.Order, error) {
	order, err := r.deps.Orders.Transition(ctx, t)
	if err != nil {
		return nil, err
	}

	r.deps.logger().InfoContext(ctx, "order closed",
		slog.Int64("order_id", order.ID), slog.String("status", string(order.Status)), slog.String("source", source))
	r.metrics.recordResolved(ctx, order.Status, source)
	r.publish(ctx, model.EventOrderResolved, order, source)
	r.send(ctx, closedMessage(order))

	return order, nil
}

func closedMessage(order *model.Order) model.Message {
	msg := model.Message{ChatID: order.BuyerID}
	switch order.Status {
	case model.OrderStatusRejected:
		reason := ""
		if order.RejectReason != nil {
			reason = *order.RejectReason
		}
		msg.Text = fmt.Sprintf("Вибачте, %s.\nЗв'яжіться з адміном.", reason)
		msg.Buttons = []model.Button{{Label: "Написати адміністратору", Action: command.Support()}}
	case model.OrderStatusExpired:
		msg.Text = "Рахунок прострочено. Почни заново: /start"
	default:
		msg.Text = fmt.Sprintf("Замовлення #%d скасовано. Почни заново: /start", order.ID)
	}
	return msg
}

func (r *resolver) publish(ctx context.Context, eventType string, order *model.Order, source string) {
	if r.deps.Publisher == nil {
		return
	}
	event := model.NewOrderEvent(eventType, order, source, r.now())
	if err := r.deps.Publisher.Publish(ctx, event); err != nil {
		r.deps.logger().WarnContext(ctx, "failed to publish order event",
			slog.Int64("order_id", order.ID), slog.String("type", eventType), slog.Any("error", err))
	}
}

// send delivers best-effort; the persisted state is authoritative either way.
func (r *resolver) send(ctx context.Context, msg model.Message) {
	if err := r.deliver(ctx, msg); err != nil {
		r.deps.logger().WarnContext(ctx, "notification not delivered",
			slog.Int64("chat_id", msg.ChatID), slog.Any("error", err))
	}
}

func (r *resolver) deliver(ctx context.Context, msg model.Message) error {
	if r.deps.Notifier == nil {
		return nil
	}
	if err := r.deps.Notifier.Send(ctx, msg); err != nil {
		if errors.Is(err, domainErrors.ErrDelivery) {
			return err
		}
		return fmt.Errorf("%w: %v", domainErrors.ErrDelivery, err)
	}
	return nil
}

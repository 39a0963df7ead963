package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/polkiloo/routeshop/internal/domain/command"
	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
	"github.com/polkiloo/routeshop/internal/domain/model"
)

// OperatorUseCase implements operator decisions over pending orders and payouts.
type OperatorUseCase struct {
	deps     Deps
	resolver *resolver
}

// NewOperatorUseCase constructs OperatorUseCase.
func NewOperatorUseCase(d Deps) *OperatorUseCase {
	return &OperatorUseCase{deps: d, resolver: newResolver(d, newOrderMetrics(d.Meter))}
}

// Approve completes a pending order if it still has the expected amount.
func (u *OperatorUseCase) Approve(ctx context.Context, orderID, expectedAmount int64) (*model.Completion, error) {
	return u.resolver.promote(ctx, orderID, &expectedAmount, SourceOperator)
}

// RejectInit remembers which order the operator is about to reject.
func (u *OperatorUseCase) RejectInit(ctx context.Context, operatorID, orderID, expectedAmount int64) (*model.Order, error) {
	order, err := u.deps.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() || order.Amount != expectedAmount {
		return nil, fmt.Errorf("%w: order %d is %s with amount %d", domainErrors.ErrStaleAction, orderID, order.Status, order.Amount)
	}

	rc := model.RejectContext{OrderID: orderID, Amount: expectedAmount}
	if err := u.deps.Sessions.SaveRejection(ctx, operatorID, rc, u.deps.Config.DraftTTL); err != nil {
		return nil, err
	}
	return order, nil
}

// RejectApply rejects the remembered order with the given reason.
// A short reason keeps the context so the operator can retry.
func (u *OperatorUseCase) RejectApply(ctx context.Context, operatorID int64, reason string) (*model.Order, error) {
	rc, err := u.deps.Sessions.Rejection(ctx, operatorID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no rejection in progress", domainErrors.ErrStaleAction)
		}
		return nil, err
	}

	reason, err = ValidateReason(reason)
	if err != nil {
		return nil, err
	}

	amount := rc.Amount
	order, err := u.resolver.close(ctx, model.Transition{
		OrderID:        rc.OrderID,
		ExpectedAmount: &amount,
		Status:         model.OrderStatusRejected,
		Reason:         &reason,
	}, SourceOperator)
	if err != nil && !errors.Is(err, domainErrors.ErrStaleAction) {
		return nil, err
	}

	if clearErr := u.deps.Sessions.ClearRejection(ctx, operatorID); clearErr != nil {
		u.deps.logger().WarnContext(ctx, "failed to clear rejection context", slog.Any("error", clearErr))
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CancelAll cancels every pending order and tells the buyers.
func (u *OperatorUseCase) CancelAll(ctx context.Context) ([]model.Order, error) {
	orders, err := u.deps.Orders.CancelPending(ctx)
	if err != nil {
		return nil, err
	}

	u.deps.logger().InfoContext(ctx, "pending orders cancelled", slog.Int("count", len(orders)))
	for i := range orders {
		order := &orders[i]
		u.resolver.metrics.recordResolved(ctx, order.Status, SourceAdmin)
		u.resolver.publish(ctx, model.EventOrderResolved, order, SourceAdmin)
		u.resolver.send(ctx, closedMessage(order))
	}
	return orders, nil
}

// Stats returns order counts and sums per status.
func (u *OperatorUseCase) Stats(ctx context.Context) (*model.Stats, error) {
	return u.deps.Orders.Stats(ctx)
}

// CloseDispute tells the buyer their support request is closed.
func (u *OperatorUseCase) CloseDispute(ctx context.Context, buyerID int64) error {
	if buyerID <= 0 {
		return fmt.Errorf("%w: buyer id must be positive", domainErrors.ErrValidation)
	}
	u.resolver.send(ctx, model.Message{ChatID: buyerID, Text: "Спор закрито. Дякуємо!"})
	return nil
}

// Dispatch executes a parsed inline action on behalf of the operator.
func (u *OperatorUseCase) Dispatch(ctx context.Context, operatorID int64, action command.Action) (*model.ActionResult, error) {
	result := &model.ActionResult{Kind: action.Kind}

	switch action.Kind {
	case command.KindApprove:
		completion, err := u.Approve(ctx, action.OrderID, action.Amount)
		if err != nil {
			return nil, err
		}
		result.Completion = completion
		result.Order = completion.Order
	case command.KindReject:
		order, err := u.RejectInit(ctx, operatorID, action.OrderID, action.Amount)
		if err != nil {
			return nil, err
		}
		result.Order = order
		result.Prompt = "Введіть причину:"
	case command.KindSettle:
		settled, err := u.Settle(ctx, action.Code)
		if err != nil {
			return nil, err
		}
		result.Settled = settled
	case command.KindClose:
		if err := u.CloseDispute(ctx, action.BuyerID); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s is not an operator action", domainErrors.ErrValidation, action.Kind)
	}

	return result, nil
}

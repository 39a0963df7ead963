package repository

import (
	"context"
	"time"

	"github.com/polkiloo/routeshop/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
//
// Every method that changes status is conditional on the order still being
// pending; when the condition fails it returns errors.ErrStaleAction.
type OrderRepository interface {
	CreatePending(ctx context.Context, order model.NewOrder) (*model.Order, error)
	HasPending(ctx context.Context, buyerID int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByExternalRef(ctx context.Context, ref string) (*model.Order, error)
	SetExternalRef(ctx context.Context, id int64, ref string) error
	ListByBuyer(ctx context.Context, buyerID int64, status model.OrderStatus) ([]model.Order, error)
	ListPendingByAmount(ctx context.Context, amount int64, from, to time.Time) ([]model.Order, error)
	Transition(ctx context.Context, t model.Transition) (*model.Order, error)
	Complete(ctx context.Context, t model.Transition, commission int64) (*model.Completion, error)
	CancelPending(ctx context.Context) ([]model.Order, error)
	Stats(ctx context.Context) (*model.Stats, error)
}

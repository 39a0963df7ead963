package app

import (
	"context"
	"time"

	"github.com/polkiloo/routeshop/internal/domain/command"
	"github.com/polkiloo/routeshop/internal/domain/model"
	pkgAuth "github.com/polkiloo/routeshop/internal/pkg/auth"
	"github.com/polkiloo/routeshop/internal/usecase"
)

// ShopFacade exposes the use cases to the HTTP layer and the background workers.
type ShopFacade struct {
	auth      *usecase.AuthUseCase
	orders    *usecase.OrderUseCase
	operator  *usecase.OperatorUseCase
	reconcile *usecase.ReconcileUseCase
}

func NewShopFacade(auth *usecase.AuthUseCase, orders *usecase.OrderUseCase, operator *usecase.OperatorUseCase, reconcile *usecase.ReconcileUseCase) *ShopFacade {
	return &ShopFacade{auth: auth, orders: orders, operator: operator, reconcile: reconcile}
}

func (f *ShopFacade) IssueToken(actorID int64, scope pkgAuth.Scope) (string, error) {
	return f.auth.IssueToken(actorID, scope)
}

func (f *ShopFacade) ParseToken(token string) (pkgAuth.Claims, error) {
	return f.auth.ParseToken(token)
}

func (f *ShopFacade) IsOperator(claims pkgAuth.Claims) bool {
	return f.auth.IsOperator(claims)
}

func (f *ShopFacade) Start(ctx context.Context, buyerID int64, referral string) (*model.Welcome, error) {
	return f.orders.Start(ctx, buyerID, referral)
}

func (f *ShopFacade) StartCheckout(ctx context.Context, buyerID int64, buyerName, selection, referral string) (*model.Draft, error) {
	return f.orders.StartCheckout(ctx, buyerID, buyerName, selection, referral)
}

func (f *ShopFacade) SubmitProof(ctx context.Context, buyerID int64, input string) (*model.Submission, error) {
	return f.orders.SubmitProof(ctx, buyerID, input)
}

func (f *ShopFacade) MyPurchases(ctx context.Context, buyerID int64) ([]string, error) {
	return f.orders.MyPurchases(ctx, buyerID)
}

func (f *ShopFacade) ContactSupport(ctx context.Context, buyerID int64, buyerName, text string) error {
	return f.orders.ContactSupport(ctx, buyerID, buyerName, text)
}

func (f *ShopFacade) Approve(ctx context.Context, orderID, expectedAmount int64) (*model.Completion, error) {
	return f.operator.Approve(ctx, orderID, expectedAmount)
}

func (f *ShopFacade) RejectInit(ctx context.Context, operatorID, orderID, expectedAmount int64) (*model.Order, error) {
	return f.operator.RejectInit(ctx, operatorID, orderID, expectedAmount)
}

func (f *ShopFacade) RejectApply(ctx context.Context, operatorID int64, reason string) (*model.Order, error) {
	return f.operator.RejectApply(ctx, operatorID, reason)
}

func (f *ShopFacade) Dispatch(ctx context.Context, operatorID int64, action command.Action) (*model.ActionResult, error) {
	return f.operator.Dispatch(ctx, operatorID, action)
}

func (f *ShopFacade) CancelAll(ctx context.Context) ([]model.Order, error) {
	return f.operator.CancelAll(ctx)
}

func (f *ShopFacade) Stats(ctx context.Context) (*model.Stats, error) {
	return f.operator.Stats(ctx)
}

func (f *ShopFacade) AddInstructor(ctx context.Context, code, contact, card string) (*model.Registration, error) {
	return f.operator.AddInstructor(ctx, code, contact, card)
}

func (f *ShopFacade) ListPayouts(ctx context.Context) (*model.PayoutSummary, error) {
	return f.operator.ListPayouts(ctx)
}

func (f *ShopFacade) Settle(ctx context.Context, code string) (int64, error) {
	return f.operator.Settle(ctx, code)
}

func (f *ShopFacade) CloseDispute(ctx context.Context, buyerID int64) error {
	return f.operator.CloseDispute(ctx, buyerID)
}

func (f *ShopFacade) HandleInvoice(ctx context.Context, invoiceID, status string) error {
	return f.reconcile.HandleInvoice(ctx, invoiceID, status)
}

func (f *ShopFacade) Checkpoint(ctx context.Context) (time.Time, error) {
	return f.reconcile.Checkpoint(ctx)
}

func (f *ShopFacade) SaveCheckpoint(ctx context.Context, at time.Time) error {
	return f.reconcile.SaveCheckpoint(ctx, at)
}

func (f *ShopFacade) Statement(ctx context.Context, from, to time.Time) ([]model.LedgerEvent, error) {
	return f.reconcile.Statement(ctx, from, to)
}

func (f *ShopFacade) Reconcile(ctx context.Context, event model.LedgerEvent) (model.MatchOutcome, error) {
	return f.reconcile.Reconcile(ctx, event)
}

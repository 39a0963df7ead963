package test

import (
	"context"
	"sync"
	"time"

	"github.com/polkiloo/routeshop/internal/domain/command"
	"github.com/polkiloo/routeshop/internal/domain/model"
	pkgAuth "github.com/polkiloo/routeshop/internal/pkg/auth"
)

// TokenParserStub resolves every token to fixed claims.
type TokenParserStub struct {
	Claims     pkgAuth.Claims
	Err        error
	OperatorID int64
}

// ParseToken returns configured claims or error.
func (s TokenParserStub) ParseToken(string) (pkgAuth.Claims, error) {
	if s.Err != nil {
		return pkgAuth.Claims{}, s.Err
	}
	return s.Claims, nil
}

// IsOperator compares claims with configured operator id.
func (s TokenParserStub) IsOperator(c pkgAuth.Claims) bool {
	return c.Scope == pkgAuth.ScopeOperator && c.ActorID == s.OperatorID
}

// IssueToken encodes the actor into a predictable token.
func (s TokenParserStub) IssueToken(actorID int64, scope pkgAuth.Scope) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return string(scope) + "-token", nil
}

// BuyerFacadeStub provides controllable behaviour for buyer endpoints.
type BuyerFacadeStub struct {
	StartFn     func(context.Context, int64, string) (*model.Welcome, error)
	CheckoutFn  func(context.Context, int64, string, string, string) (*model.Draft, error)
	ProofFn     func(context.Context, int64, string) (*model.Submission, error)
	PurchasesFn func(context.Context, int64) ([]string, error)
	SupportFn   func(context.Context, int64, string, string) error
}

// Start delegates to StartFn or returns an empty welcome.
func (s BuyerFacadeStub) Start(ctx context.Context, buyerID int64, referral string) (*model.Welcome, error) {
	if s.StartFn != nil {
		return s.StartFn(ctx, buyerID, referral)
	}
	return &model.Welcome{}, nil
}

// StartCheckout delegates to CheckoutFn or opens a default draft.
func (s BuyerFacadeStub) StartCheckout(ctx context.Context, buyerID int64, buyerName, selection, referral string) (*model.Draft, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, buyerID, buyerName, selection, referral)
	}
	return &model.Draft{ID: "draft", BuyerID: buyerID, Products: []string{selection}, Amount: 25000, ExpiresAt: time.Unix(600, 0)}, nil
}

// SubmitProof delegates to ProofFn or returns a pending order.
func (s BuyerFacadeStub) SubmitProof(ctx context.Context, buyerID int64, input string) (*model.Submission, error) {
	if s.ProofFn != nil {
		return s.ProofFn(ctx, buyerID, input)
	}
	return &model.Submission{Order: &model.Order{ID: 1, BuyerID: buyerID, Amount: 25000, Status: model.OrderStatusPending}}, nil
}

// MyPurchases delegates to PurchasesFn.
func (s BuyerFacadeStub) MyPurchases(ctx context.Context, buyerID int64) ([]string, error) {
	if s.PurchasesFn != nil {
		return s.PurchasesFn(ctx, buyerID)
	}
	return nil, nil
}

// ContactSupport delegates to SupportFn.
func (s BuyerFacadeStub) ContactSupport(ctx context.Context, buyerID int64, buyerName, text string) error {
	if s.SupportFn != nil {
		return s.SupportFn(ctx, buyerID, buyerName, text)
	}
	return nil
}

// OperatorFacadeStub provides controllable behaviour for operator endpoints.
type OperatorFacadeStub struct {
	ApproveFn     func(context.Context, int64, int64) (*model.Completion, error)
	RejectInitFn  func(context.Context, int64, int64, int64) (*model.Order, error)
	RejectApplyFn func(context.Context, int64, string) (*model.Order, error)
	DispatchFn    func(context.Context, int64, command.Action) (*model.ActionResult, error)
	CancelAllFn   func(context.Context) ([]model.Order, error)
	StatsFn       func(context.Context) (*model.Stats, error)
	AddFn         func(context.Context, string, string, string) (*model.Registration, error)
	PayoutsFn     func(context.Context) (*model.PayoutSummary, error)
	SettleFn      func(context.Context, string) (int64, error)
	CloseFn       func(context.Context, int64) error
}

// Approve delegates to ApproveFn or completes the order.
func (s OperatorFacadeStub) Approve(ctx context.Context, orderID, amount int64) (*model.Completion, error) {
	if s.ApproveFn != nil {
		return s.ApproveFn(ctx, orderID, amount)
	}
	return &model.Completion{Order: &model.Order{ID: orderID, Amount: amount, Status: model.OrderStatusSuccess}}, nil
}

// RejectInit delegates to RejectInitFn.
func (s OperatorFacadeStub) RejectInit(ctx context.Context, operatorID, orderID, amount int64) (*model.Order, error) {
	if s.RejectInitFn != nil {
		return s.RejectInitFn(ctx, operatorID, orderID, amount)
	}
	return &model.Order{ID: orderID, Amount: amount, Status: model.OrderStatusPending}, nil
}

// RejectApply delegates to RejectApplyFn.
func (s OperatorFacadeStub) RejectApply(ctx context.Context, operatorID int64, reason string) (*model.Order, error) {
	if s.RejectApplyFn != nil {
		return s.RejectApplyFn(ctx, operatorID, reason)
	}
	return &model.Order{ID: 1, Status: model.OrderStatusRejected, RejectReason: &reason}, nil
}

// Dispatch delegates to DispatchFn.
func (s OperatorFacadeStub) Dispatch(ctx context.Context, operatorID int64, action command.Action) (*model.ActionResult, error) {
	if s.DispatchFn != nil {
		return s.DispatchFn(ctx, operatorID, action)
	}
	return &model.ActionResult{Kind: action.Kind}, nil
}

// CancelAll delegates to CancelAllFn.
func (s OperatorFacadeStub) CancelAll(ctx context.Context) ([]model.Order, error) {
	if s.CancelAllFn != nil {
		return s.CancelAllFn(ctx)
	}
	return nil, nil
}

// Stats delegates to StatsFn or returns empty stats.
func (s OperatorFacadeStub) Stats(ctx context.Context) (*model.Stats, error) {
	if s.StatsFn != nil {
		return s.StatsFn(ctx)
	}
	return &model.Stats{ByStatus: map[model.OrderStatus]model.StatusStats{}}, nil
}

// AddInstructor delegates to AddFn.
func (s OperatorFacadeStub) AddInstructor(ctx context.Context, code, contact, card string) (*model.Registration, error) {
	if s.AddFn != nil {
		return s.AddFn(ctx, code, contact, card)
	}
	return &model.Registration{Instructor: &model.Instructor{Code: code, Contact: contact}, Card: card}, nil
}

// ListPayouts delegates to PayoutsFn.
func (s OperatorFacadeStub) ListPayouts(ctx context.Context) (*model.PayoutSummary, error) {
	if s.PayoutsFn != nil {
		return s.PayoutsFn(ctx)
	}
	return &model.PayoutSummary{}, nil
}

// Settle delegates to SettleFn.
func (s OperatorFacadeStub) Settle(ctx context.Context, code string) (int64, error) {
	if s.SettleFn != nil {
		return s.SettleFn(ctx, code)
	}
	return 0, nil
}

// CloseDispute delegates to CloseFn.
func (s OperatorFacadeStub) CloseDispute(ctx context.Context, buyerID int64) error {
	if s.CloseFn != nil {
		return s.CloseFn(ctx, buyerID)
	}
	return nil
}

// WebhookFacadeStub records invoice updates.
type WebhookFacadeStub struct {
	HandleFn func(context.Context, string, string) error
}

// HandleInvoice delegates to HandleFn.
func (s WebhookFacadeStub) HandleInvoice(ctx context.Context, invoiceID, status string) error {
	if s.HandleFn != nil {
		return s.HandleFn(ctx, invoiceID, status)
	}
	return nil
}

// ShopFacadeStub aggregates every HTTP facade stub.
type ShopFacadeStub struct {
	TokenParserStub
	BuyerFacadeStub
	OperatorFacadeStub
	WebhookFacadeStub
}

// ReconcileFacadeStub mimics the reconciler's view of the application.
type ReconcileFacadeStub struct {
	mu sync.Mutex

	From        time.Time
	CheckErr    error
	Events      []model.LedgerEvent
	StatementFn func(context.Context, time.Time, time.Time) ([]model.LedgerEvent, error)
	ReconcileFn func(context.Context, model.LedgerEvent) (model.MatchOutcome, error)
	SaveErr     error

	Saved      []time.Time
	Reconciled []string
	Statements int
}

// Checkpoint returns the configured starting point.
func (s *ReconcileFacadeStub) Checkpoint(context.Context) (time.Time, error) {
	return s.From, s.CheckErr
}

// SaveCheckpoint records the saved point.
func (s *ReconcileFacadeStub) SaveCheckpoint(_ context.Context, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Saved = append(s.Saved, at)
	return nil
}

// Statement returns the configured events.
func (s *ReconcileFacadeStub) Statement(ctx context.Context, from, to time.Time) ([]model.LedgerEvent, error) {
	s.mu.Lock()
	s.Statements++
	s.mu.Unlock()
	if s.StatementFn != nil {
		return s.StatementFn(ctx, from, to)
	}
	return s.Events, nil
}

// Reconcile records the event and delegates to ReconcileFn.
func (s *ReconcileFacadeStub) Reconcile(ctx context.Context, event model.LedgerEvent) (model.MatchOutcome, error) {
	s.mu.Lock()
	s.Reconciled = append(s.Reconciled, event.ID)
	s.mu.Unlock()
	if s.ReconcileFn != nil {
		return s.ReconcileFn(ctx, event)
	}
	return model.MatchUnmatched, nil
}

// Snapshot returns copies of recorded calls.
func (s *ReconcileFacadeStub) Snapshot() (saved []time.Time, reconciled []string, statements int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.Saved...), append([]string(nil), s.Reconciled...), s.Statements
}

package handlers

import (
	"context"

	"github.com/polkiloo/routeshop/internal/domain/command"
	"github.com/polkiloo/routeshop/internal/domain/model"
	pkgAuth "github.com/polkiloo/routeshop/internal/pkg/auth"
	"github.com/polkiloo/routeshop/internal/server/http/middleware"
)

// TokenFacade issues and checks actor tokens.
type TokenFacade interface {
	middleware.TokenParser
	IssueToken(actorID int64, scope pkgAuth.Scope) (string, error)
}

// BuyerFacade encapsulates buyer operations exposed via HTTP.
type BuyerFacade interface {
	Start(ctx context.Context, buyerID int64, referral string) (*model.Welcome, error)
	StartCheckout(ctx context.Context, buyerID int64, buyerName, selection, referral string) (*model.Draft, error)
	SubmitProof(ctx context.Context, buyerID int64, input string) (*model.Submission, error)
	MyPurchases(ctx context.Context, buyerID int64) ([]string, error)
	ContactSupport(ctx context.Context, buyerID int64, buyerName, text string) error
}

// OperatorFacade encapsulates operator operations exposed via HTTP.
type OperatorFacade interface {
	Approve(ctx context.Context, orderID, expectedAmount int64) (*model.Completion, error)
	RejectInit(ctx context.Context, operatorID, orderID, expectedAmount int64) (*model.Order, error)
	RejectApply(ctx context.Context, operatorID int64, reason string) (*model.Order, error)
	Dispatch(ctx context.Context, operatorID int64, action command.Action) (*model.ActionResult, error)
	CancelAll(ctx context.Context) ([]model.Order, error)
	Stats(ctx context.Context) (*model.Stats, error)
	AddInstructor(ctx context.Context, code, contact, card string) (*model.Registration, error)
	ListPayouts(ctx context.Context) (*model.PayoutSummary, error)
	Settle(ctx context.Context, code string) (int64, error)
	CloseDispute(ctx context.Context, buyerID int64) error
}

// WebhookFacade applies ledger callbacks.
type WebhookFacade interface {
	HandleInvoice(ctx context.Context, invoiceID, status string) error
}

// ShopFacade aggregates the full set of operations used across handlers.
type ShopFacade interface {
	TokenFacade
	BuyerFacade
	OperatorFacade
	WebhookFacade
}

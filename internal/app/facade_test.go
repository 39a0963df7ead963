package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/routeshop/internal/catalog"
	"github.com/polkiloo/routeshop/internal/config"
	"github.com/polkiloo/routeshop/internal/domain/command"
	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
	"github.com/polkiloo/routeshop/internal/domain/model"
	pkgAuth "github.com/polkiloo/routeshop/internal/pkg/auth"
	"github.com/polkiloo/routeshop/internal/server/http/handlers"
	"github.com/polkiloo/routeshop/internal/storage/session"
	testhelpers "github.com/polkiloo/routeshop/internal/test"
	"github.com/polkiloo/routeshop/internal/usecase"
	"github.com/polkiloo/routeshop/internal/worker"
)

var (
	_ handlers.ShopFacade    = (*ShopFacade)(nil)
	_ worker.ReconcileFacade = (*ShopFacade)(nil)
)

type facadeFixture struct {
	facade   *ShopFacade
	orders   *testhelpers.OrderRepositoryStub
	notifier *testhelpers.NotifierStub
	ledger   *testhelpers.LedgerStub
}

func newFacadeFixture(t *testing.T) facadeFixture {
	t.Helper()
	instructors := testhelpers.NewInstructorRepositoryStub(model.Instructor{Code: "00007", Contact: "coach", CardLast4: "4444"})
	orders := testhelpers.NewOrderRepositoryStub(instructors)
	notifier := &testhelpers.NotifierStub{}
	ledger := &testhelpers.LedgerStub{}
	cfg := &config.Config{
		OperatorID:      999,
		BotUsername:     "ExamenPdr_bot",
		PayoutCard:      "4441111122223333",
		PriceSingle:     250,
		PriceBundle:     1000,
		PaymentMode:     config.PaymentModeStatement,
		ProofMode:       config.ProofModeCard,
		DraftTTL:        10 * time.Minute,
		CommissionRate:  decimal.RequireFromString("0.10"),
		PayoutThreshold: 10000,
	}

	deps := usecase.Deps{
		Orders:      orders,
		Instructors: instructors,
		Checkpoints: testhelpers.NewCheckpointRepositoryStub(),
		Sessions:    session.NewMemoryStore(),
		Catalog:     catalog.New(catalog.DefaultProducts, cfg.PriceSingle, cfg.PriceBundle),
		Hasher:      testhelpers.HasherStub{},
		Notifier:    notifier,
		Publisher:   &testhelpers.PublisherStub{},
		Ledger:      ledger,
		Timer:       &testhelpers.TimerStub{},
		Config:      cfg,
		Logger:      discardLogger(),
	}

	facade := NewShopFacade(
		usecase.NewAuthUseCase(testhelpers.StrategyStub{ParseFn: func(string) (pkgAuth.Claims, error) {
			return pkgAuth.Claims{ActorID: 999, Scope: pkgAuth.ScopeOperator}, nil
		}}, cfg),
		usecase.NewOrderUseCase(deps),
		usecase.NewOperatorUseCase(deps),
		usecase.NewReconcileUseCase(deps),
	)
	return facadeFixture{facade: facade, orders: orders, notifier: notifier, ledger: ledger}
}

func TestFacadeCheckoutApproveFlow(t *testing.T) {
	f := newFacadeFixture(t)
	ctx := context.Background()

	if _, err := f.facade.Start(ctx, 42, "inst_00007"); err != nil {
		t.Fatalf("start: %v", err)
	}
	draft, err := f.facade.StartCheckout(ctx, 42, "Buyer", "khust_route1", "")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if draft.ReferralCode == nil || *draft.ReferralCode != "00007" {
		t.Fatalf("expected remembered referral, got %+v", draft.ReferralCode)
	}

	sub, err := f.facade.SubmitProof(ctx, 42, "4111 1111 1111 1111")
	if err != nil {
		t.Fatalf("proof: %v", err)
	}

	result, err := f.facade.Dispatch(ctx, 999, command.Approve(sub.Order.ID, sub.Order.Amount))
	if err != nil {
		t.Fatalf("dispatch approve: %v", err)
	}
	if result.Completion == nil || result.Completion.Order.Status != model.OrderStatusSuccess {
		t.Fatalf("unexpected approve result %+v", result)
	}

	if _, err := f.facade.Approve(ctx, sub.Order.ID, sub.Order.Amount); !errors.Is(err, domainErrors.ErrStaleAction) {
		t.Fatalf("expected stale action on second approve, got %v", err)
	}

	links, err := f.facade.MyPurchases(ctx, 42)
	if err != nil || len(links) != 1 {
		t.Fatalf("expected one purchased link, got %v %v", links, err)
	}

	stats, err := f.facade.Stats(ctx)
	if err != nil || stats.Revenue() != 250 {
		t.Fatalf("unexpected stats %+v %v", stats, err)
	}
}

func TestFacadeReconcileDelegates(t *testing.T) {
	f := newFacadeFixture(t)
	ctx := context.Background()

	from, err := f.facade.Checkpoint(ctx)
	if err != nil {
		t.Fatalf("checkpoint: %v", err)
	}
	if err := f.facade.SaveCheckpoint(ctx, from.Add(time.Minute)); err != nil {
		t.Fatalf("save checkpoint: %v", err)
	}
	if got, _ := f.facade.Checkpoint(ctx); !got.Equal(from.Add(time.Minute)) {
		t.Fatalf("expected saved checkpoint, got %v", got)
	}

	f.ledger.Events = []model.LedgerEvent{{ID: "e1", Amount: -5}}
	events, err := f.facade.Statement(ctx, from, time.Now())
	if err != nil || len(events) != 1 {
		t.Fatalf("unexpected statement %v %v", events, err)
	}
	outcome, err := f.facade.Reconcile(ctx, events[0])
	if err != nil || outcome != model.MatchSkipped {
		t.Fatalf("expected debit to be skipped, got %s %v", outcome, err)
	}

	if err := f.facade.HandleInvoice(ctx, "missing", "success"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found for unknown invoice, got %v", err)
	}
}

func TestFacadeAuthDelegates(t *testing.T) {
	f := newFacadeFixture(t)

	if _, err := f.facade.IssueToken(1, pkgAuth.ScopeOperator); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error for non-operator, got %v", err)
	}
	claims, err := f.facade.ParseToken("token")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !f.facade.IsOperator(claims) {
		t.Fatal("expected operator claims")
	}
}

func TestFacadeOperatorDelegates(t *testing.T) {
	f := newFacadeFixture(t)
	ctx := context.Background()

	reg, err := f.facade.AddInstructor(ctx, "00008", "@coach", "4441111122223333")
	if err != nil || reg.Link == "" {
		t.Fatalf("add instructor: %+v %v", reg, err)
	}
	if _, err := f.facade.Settle(ctx, "00008"); !errors.Is(err, domainErrors.ErrBelowThreshold) {
		t.Fatalf("expected below threshold, got %v", err)
	}
	if _, err := f.facade.ListPayouts(ctx); err != nil {
		t.Fatalf("payouts: %v", err)
	}
	if _, err := f.facade.CancelAll(ctx); err != nil {
		t.Fatalf("cancel all: %v", err)
	}
	if err := f.facade.CloseDispute(ctx, 42); err != nil {
		t.Fatalf("close dispute: %v", err)
	}
	if err := f.facade.ContactSupport(ctx, 42, "Buyer", "where is my video"); err != nil {
		t.Fatalf("contact support: %v", err)
	}
	if _, err := f.facade.RejectApply(ctx, 999, "reason"); !errors.Is(err, domainErrors.ErrStaleAction) {
		t.Fatalf("expected stale without context, got %v", err)
	}
	if _, err := f.facade.RejectInit(ctx, 999, 12345, 250); err == nil {
		t.Fatal("expected error for unknown order")
	}
}

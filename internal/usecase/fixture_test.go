package usecase

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/routeshop/internal/catalog"
	"github.com/polkiloo/routeshop/internal/config"
	"github.com/polkiloo/routeshop/internal/domain/model"
	"github.com/polkiloo/routeshop/internal/storage/session"
	"github.com/polkiloo/routeshop/internal/test"
)

const (
	operatorID = int64(999)
	buyerID    = int64(42)
	validCard  = "4111111111111111"
	routeOne   = "khust_route1"
)

type fixture struct {
	cfg         *config.Config
	orders      *test.OrderRepositoryStub
	instructors *test.InstructorRepositoryStub
	checkpoints *test.CheckpointRepositoryStub
	sessions    *session.MemoryStore
	notifier    *test.NotifierStub
	publisher   *test.PublisherStub
	ledger      *test.LedgerStub
	timer       *test.TimerStub
	catalog     *catalog.Catalog
}

func newFixture(t *testing.T, seed ...model.Instructor) *fixture {
	t.Helper()
	instructors := test.NewInstructorRepositoryStub(seed...)
	return &fixture{
		cfg: &config.Config{
			OperatorID:      operatorID,
			BotUsername:     "ExamenPdr_bot",
			PayoutCard:      "4441111122223333",
			PriceSingle:     250,
			PriceBundle:     1000,
			PaymentMode:     config.PaymentModeManual,
			ProofMode:       config.ProofModeCard,
			DraftTTL:        10 * time.Minute,
			CommissionRate:  decimal.RequireFromString("0.10"),
			PayoutThreshold: 10000,
		},
		orders:      test.NewOrderRepositoryStub(instructors),
		instructors: instructors,
		checkpoints: test.NewCheckpointRepositoryStub(),
		sessions:    session.NewMemoryStore(),
		notifier:    &test.NotifierStub{},
		publisher:   &test.PublisherStub{},
		ledger:      &test.LedgerStub{},
		timer:       &test.TimerStub{},
		catalog:     catalog.New(catalog.DefaultProducts, 250, 1000),
	}
}

func (f *fixture) deps() Deps {
	return Deps{
		Orders:      f.orders,
		Instructors: f.instructors,
		Checkpoints: f.checkpoints,
		Sessions:    f.sessions,
		Catalog:     f.catalog,
		Hasher:      test.HasherStub{},
		Notifier:    f.notifier,
		Publisher:   f.publisher,
		Ledger:      f.ledger,
		Timer:       f.timer,
		Config:      f.cfg,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (f *fixture) buyer() *OrderUseCase       { return NewOrderUseCase(f.deps()) }
func (f *fixture) operator() *OperatorUseCase { return NewOperatorUseCase(f.deps()) }
func (f *fixture) matcher() *ReconcileUseCase { return NewReconcileUseCase(f.deps()) }

func instructor(code string) model.Instructor {
	return model.Instructor{Code: code, Contact: "olena", CardLast4: "4444", CardHash: "hash"}
}

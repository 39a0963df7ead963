package usecase

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"

	"github.com/polkiloo/routeshop/internal/catalog"
	"github.com/polkiloo/routeshop/internal/config"
	"github.com/polkiloo/routeshop/internal/domain/model"
	"github.com/polkiloo/routeshop/internal/domain/repository"
	"github.com/polkiloo/routeshop/internal/pkg/cardhash"
)

// Notifier delivers chat messages. Failures are reported but never roll back state.
type Notifier interface {
	Send(ctx context.Context, msg model.Message) error
}

// EventPublisher announces order changes to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event model.OrderEvent) error
}

// Ledger is the payment provider holding the payout account.
type Ledger interface {
	Statement(ctx context.Context, from, to time.Time) ([]model.LedgerEvent, error)
	CreateInvoice(ctx context.Context, order *model.Order, title string) (*model.Invoice, error)
}

// DraftTimer runs a one-shot callback once a draft outlives its ttl.
type DraftTimer interface {
	Schedule(buyerID int64, draftID string, ttl time.Duration, fire func(context.Context))
	Cancel(buyerID int64, draftID string)
}

// Deps groups collaborators shared by the use cases.
type Deps struct {
	fx.In

	Orders      repository.OrderRepository
	Instructors repository.InstructorRepository
	Checkpoints repository.CheckpointRepository
	Sessions    repository.SessionStore
	Catalog     *catalog.Catalog
	Hasher      cardhash.Hasher
	Notifier    Notifier
	Publisher   EventPublisher
	Ledger      Ledger
	Timer       DraftTimer
	Config      *config.Config
	Logger      *slog.Logger
	Meter       metric.Meter `optional:"true"`
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

package test

import (
	"context"
	"sync"
	"time"

	"github.com/polkiloo/routeshop/internal/domain/model"
	pkgAuth "github.com/polkiloo/routeshop/internal/pkg/auth"
	"github.com/polkiloo/routeshop/internal/pkg/cardhash"
)

// HasherStub produces readable digests for tests.
type HasherStub struct{}

// Hash prefixes the card so tests can assert on it.
func (HasherStub) Hash(card string) string {
	return "hash:" + card
}

// NotifierStub records sent messages.
type NotifierStub struct {
	mu       sync.Mutex
	Messages []model.Message
	Err      error
}

// Send records msg and returns the configured error.
func (n *NotifierStub) Send(ctx context.Context, msg model.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, msg)
	return n.Err
}

// To returns messages sent to chatID.
func (n *NotifierStub) To(chatID int64) []model.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	var result []model.Message
	for _, m := range n.Messages {
		if m.ChatID == chatID {
			result = append(result, m)
		}
	}
	return result
}

// PublisherStub records published events.
type PublisherStub struct {
	mu     sync.Mutex
	Events []model.OrderEvent
	Err    error
}

// Publish records event.
func (p *PublisherStub) Publish(ctx context.Context, event model.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return p.Err
}

// Snapshot returns a copy of recorded events.
func (p *PublisherStub) Snapshot() []model.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.OrderEvent(nil), p.Events...)
}

// LedgerStub serves configured statements and invoices.
type LedgerStub struct {
	mu          sync.Mutex
	StatementFn func(context.Context, time.Time, time.Time) ([]model.LedgerEvent, error)
	Events      []model.LedgerEvent
	Invoice     *model.Invoice
	Err         error
	Calls       int
}

// Statement returns events or the configured error.
func (l *LedgerStub) Statement(ctx context.Context, from, to time.Time) ([]model.LedgerEvent, error) {
	l.mu.Lock()
	l.Calls++
	l.mu.Unlock()
	if l.StatementFn != nil {
		return l.StatementFn(ctx, from, to)
	}
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Events, nil
}

// CreateInvoice returns the configured invoice.
func (l *LedgerStub) CreateInvoice(ctx context.Context, order *model.Order, title string) (*model.Invoice, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	if l.Invoice != nil {
		return l.Invoice, nil
	}
	return &model.Invoice{ID: "inv-1", PageURL: "https://pay.example/inv-1"}, nil
}

// ScheduledDraft is a timer armed through TimerStub.
type ScheduledDraft struct {
	BuyerID int64
	DraftID string
	TTL     time.Duration
	Fire    func(context.Context)
}

// TimerStub captures scheduled callbacks so tests fire them by hand.
type TimerStub struct {
	mu        sync.Mutex
	Scheduled []ScheduledDraft
	Cancelled []string
}

// Schedule records the callback.
func (t *TimerStub) Schedule(buyerID int64, draftID string, ttl time.Duration, fire func(context.Context)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Scheduled = append(t.Scheduled, ScheduledDraft{BuyerID: buyerID, DraftID: draftID, TTL: ttl, Fire: fire})
}

// Cancel records the cancelled draft id.
func (t *TimerStub) Cancel(buyerID int64, draftID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Cancelled = append(t.Cancelled, draftID)
}

// Last returns the most recently scheduled draft.
func (t *TimerStub) Last() ScheduledDraft {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.Scheduled) == 0 {
		return ScheduledDraft{}
	}
	return t.Scheduled[len(t.Scheduled)-1]
}

// StrategyStub issues and parses tokens via function overrides.
type StrategyStub struct {
	IssueFn func(pkgAuth.Claims) (string, error)
	ParseFn func(string) (pkgAuth.Claims, error)
}

// IssueToken returns deterministic tokens for tests.
func (s StrategyStub) IssueToken(claims pkgAuth.Claims) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(claims)
	}
	return "token", nil
}

// ParseToken parses previously issued token strings.
func (s StrategyStub) ParseToken(token string) (pkgAuth.Claims, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return pkgAuth.Claims{ActorID: 1, Scope: pkgAuth.ScopeBuyer}, nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	return "stub"
}

var (
	_ pkgAuth.Strategy = StrategyStub{}
	_ cardhash.Hasher  = HasherStub{}
)

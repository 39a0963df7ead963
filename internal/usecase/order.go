package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/routeshop/internal/config"
	"github.com/polkiloo/routeshop/internal/domain/command"
	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
	"github.com/polkiloo/routeshop/internal/domain/model"
)

const (
	referralPrefix = "inst_"
	referralTTL    = 24 * time.Hour
)

// OrderUseCase encapsulates the buyer side of the order lifecycle.
type OrderUseCase struct {
	deps     Deps
	resolver *resolver
	metrics  orderMetrics
	now      func() time.Time
	newID    func() string
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(d Deps) *OrderUseCase {
	metrics := newOrderMetrics(d.Meter)
	return &OrderUseCase{
		deps:     d,
		resolver: newResolver(d, metrics),
		metrics:  metrics,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Start remembers a valid referral code and returns the catalog together with earlier purchases.
func (u *OrderUseCase) Start(ctx context.Context, buyerID int64, referral string) (*model.Welcome, error) {
	code := strings.TrimPrefix(strings.TrimSpace(referral), referralPrefix)
	if code != "" {
		known, err := u.knownInstructor(ctx, code)
		if err != nil {
			return nil, err
		}
		if known {
			if err := u.deps.Sessions.RememberReferral(ctx, buyerID, code, referralTTL); err != nil {
				return nil, err
			}
		} else {
			u.deps.logger().DebugContext(ctx, "ignoring unknown referral", slog.Int64("buyer_id", buyerID), slog.String("code", code))
			code = ""
		}
	}
	if code == "" {
		remembered, err := u.deps.Sessions.Referral(ctx, buyerID)
		if err != nil {
			return nil, err
		}
		code = remembered
	}

	purchased, err := u.MyPurchases(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	return &model.Welcome{
		Items:      u.deps.Catalog.Items(),
		Purchased:  purchased,
		Referral:   code,
		PayoutCard: groupCard(u.deps.Config.PayoutCard),
	}, nil
}

// StartCheckout opens a draft for the selection unless the buyer already has a pending order.
// An explicit referral code must belong to a known instructor; otherwise the remembered one is used.
func (u *OrderUseCase) StartCheckout(ctx context.Context, buyerID int64, buyerName, selection, referral string) (*model.Draft, error) {
	item, err := u.deps.Catalog.Resolve(selection)
	if err != nil {
		return nil, err
	}

	pending, err := u.deps.Orders.HasPending(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("%w: buyer %d already has an active order", domainErrors.ErrConflict, buyerID)
	}

	code := strings.TrimPrefix(strings.TrimSpace(referral), referralPrefix)
	if code != "" {
		known, err := u.knownInstructor(ctx, code)
		if err != nil {
			return nil, err
		}
		if !known {
			return nil, fmt.Errorf("%w: unknown referral code %q", domainErrors.ErrValidation, code)
		}
	} else if code, err = u.deps.Sessions.Referral(ctx, buyerID); err != nil {
		return nil, err
	}

	if previous, err := u.deps.Sessions.Draft(ctx, buyerID); err == nil {
		u.deps.Timer.Cancel(buyerID, previous.ID)
	} else if !errors.Is(err, domainErrors.ErrNoDraft) {
		return nil, err
	}

	ttl := u.deps.Config.DraftTTL
	now := u.now()
	draft := model.Draft{
		ID:        u.newID(),
		BuyerID:   buyerID,
		BuyerName: buyerName,
		Products:  item.Products,
		Amount:    item.Amount,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if code != "" {
		draft.ReferralCode = &code
	}

	if err := u.deps.Sessions.OpenDraft(ctx, draft, ttl); err != nil {
		return nil, err
	}
	u.schedule(draft, ttl)

	return &draft, nil
}

// SubmitProof turns the open draft into a pending order and asks the operator to review it.
func (u *OrderUseCase) SubmitProof(ctx context.Context, buyerID int64, input string) (*model.Submission, error) {
	draft, err := u.deps.Sessions.Draft(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	proof, err := ParseProof(u.deps.Config.ProofMode, input, u.deps.Hasher)
	if err != nil {
		return nil, err
	}

	claimed, err := u.deps.Sessions.CloseDraft(ctx, buyerID, draft.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, domainErrors.ErrNoDraft
	}
	u.deps.Timer.Cancel(buyerID, draft.ID)

	order, err := u.deps.Orders.CreatePending(ctx, model.NewOrder{
		BuyerID:      buyerID,
		BuyerName:    draft.BuyerName,
		Proof:        proof,
		Amount:       draft.Amount,
		Products:     draft.Products,
		ReferralCode: draft.ReferralCode,
	})
	if err != nil {
		if !errors.Is(err, domainErrors.ErrConflict) {
			u.restore(ctx, *draft)
		}
		return nil, err
	}

	u.deps.logger().InfoContext(ctx, "order created",
		slog.Int64("order_id", order.ID), slog.Int64("buyer_id", buyerID), slog.Int64("amount", order.Amount))
	u.metrics.recordCreated(ctx)
	u.resolver.publish(ctx, model.EventOrderCreated, order, "buyer")

	submission := &model.Submission{Order: order}
	if u.deps.Config.PaymentMode == config.PaymentModeInvoice {
		submission.Invoice = u.attachInvoice(ctx, order)
	}

	u.resolver.send(ctx, u.instructions(submission))
	u.resolver.send(ctx, u.review(order))

	return submission, nil
}

// MyPurchases lists links of all successful orders, newest first, without repeats.
func (u *OrderUseCase) MyPurchases(ctx context.Context, buyerID int64) ([]string, error) {
	orders, err := u.deps.Orders.ListByBuyer(ctx, buyerID, model.OrderStatusSuccess)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	links := make([]string, 0)
	for _, o := range orders {
		for _, link := range o.Fulfillment {
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)
		}
	}
	return links, nil
}

// ContactSupport forwards a buyer message to the operator with a close action.
func (u *OrderUseCase) ContactSupport(ctx context.Context, buyerID int64, buyerName, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: empty support message", domainErrors.ErrValidation)
	}

	route := "невідомо"
	orders, err := u.deps.Orders.ListByBuyer(ctx, buyerID, model.OrderStatusSuccess)
	if err != nil {
		return err
	}
	if len(orders) > 0 {
		route = u.deps.Catalog.Titles(orders[0].Products)
	}

	return u.resolver.deliver(ctx, model.Message{
		ChatID: u.deps.Config.OperatorID,
		Text: fmt.Sprintf("Повідомлення!\n\nКористувач: %s\nID: %d\nМаршрут: %s\n\nТекст:\n%s",
			displayName(buyerName), buyerID, route, text),
		Buttons: []model.Button{{Label: "Закрити", Action: command.Close(buyerID)}},
	})
}

func (u *OrderUseCase) knownInstructor(ctx context.Context, code string) (bool, error) {
	if !ValidInstructorCode(code) {
		return false, nil
	}
	if _, err := u.deps.Instructors.GetByCode(ctx, code); err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (u *OrderUseCase) schedule(draft model.Draft, ttl time.Duration) {
	buyerID, draftID := draft.BuyerID, draft.ID
	u.deps.Timer.Schedule(buyerID, draftID, ttl, func(ctx context.Context) {
		u.expireDraft(ctx, buyerID, draftID)
	})
}

// expireDraft closes the draft only if it is still the live one.
func (u *OrderUseCase) expireDraft(ctx context.Context, buyerID int64, draftID string) {
	closed, err := u.deps.Sessions.CloseDraft(ctx, buyerID, draftID)
	if err != nil {
		u.deps.logger().ErrorContext(ctx, "failed to expire draft",
			slog.Int64("buyer_id", buyerID), slog.String("draft_id", draftID), slog.Any("error", err))
		return
	}
	if !closed {
		return
	}
	u.deps.logger().InfoContext(ctx, "draft expired", slog.Int64("buyer_id", buyerID), slog.String("draft_id", draftID))
	u.resolver.send(ctx, model.Message{ChatID: buyerID, Text: "Час вийшов. Почни заново: /start"})
}

// restore reopens a claimed draft after the order could not be stored.
func (u *OrderUseCase) restore(ctx context.Context, draft model.Draft) {
	remaining := draft.ExpiresAt.Sub(u.now())
	if remaining <= 0 {
		return
	}
	if err := u.deps.Sessions.OpenDraft(ctx, draft, remaining); err != nil {
		u.deps.logger().ErrorContext(ctx, "failed to restore draft",
			slog.Int64("buyer_id", draft.BuyerID), slog.Any("error", err))
		return
	}
	u.schedule(draft, remaining)
}

func (u *OrderUseCase) attachInvoice(ctx context.Context, order *model.Order) *model.Invoice {
	log := u.deps.logger().With(slog.Int64("order_id", order.ID))
	if u.deps.Ledger == nil {
		log.WarnContext(ctx, "invoice mode without ledger client")
		return nil
	}

	invoice, err := u.deps.Ledger.CreateInvoice(ctx, order, u.deps.Catalog.Titles(order.Products))
	if err != nil {
		log.ErrorContext(ctx, "failed to create invoice", slog.Any("error", err))
		return nil
	}
	if err := u.deps.Orders.SetExternalRef(ctx, order.ID, invoice.ID); err != nil {
		log.ErrorContext(ctx, "failed to store invoice reference", slog.String("invoice_id", invoice.ID), slog.Any("error", err))
		return nil
	}
	order.ExternalRef = &invoice.ID
	return invoice
}

func (u *OrderUseCase) instructions(s *model.Submission) model.Message {
	order := s.Order
	if s.Invoice != nil {
		return model.Message{
			ChatID:  order.BuyerID,
			Text:    fmt.Sprintf("Оплата: %s\nСплати за посиланням, відео прийде автоматично.", model.FormatAmount(order.Amount)),
			Buttons: []model.Button{{Label: "Сплатити", URL: s.Invoice.PageURL}},
		}
	}
	return model.Message{
		ChatID: order.BuyerID,
		Text: fmt.Sprintf("Оплата: %s\nТвоя карта: %s\nПереведи на:\n%s\n\nЧекай підтвердження...",
			model.FormatAmount(order.Amount), maskCard(order.Proof.Last4), groupCard(u.deps.Config.PayoutCard)),
	}
}

func (u *OrderUseCase) review(order *model.Order) model.Message {
	text := fmt.Sprintf("Новий заказ #%d\n\nКористувач: %s\nID: %d\nКарта: %s\nСума: %s\nМаршрути: %s\nЧас: %s",
		order.ID, displayName(order.BuyerName), order.BuyerID, maskCard(order.Proof.Last4),
		model.FormatAmount(order.Amount), u.deps.Catalog.Titles(order.Products), order.CreatedAt.Format(time.TimeOnly))
	if order.ReferralCode != nil {
		text += "\nІнструктор: " + *order.ReferralCode
	}
	return model.Message{
		ChatID: u.deps.Config.OperatorID,
		Text:   text,
		Buttons: []model.Button{
			{Label: "Одобрити", Action: command.Approve(order.ID, order.Amount)},
			{Label: "Відмовити", Action: command.Reject(order.ID, order.Amount)},
		},
	}
}

func displayName(name string) string {
	if name == "" {
		return "Без username"
	}
	return "@" + strings.TrimPrefix(name, "@")
}

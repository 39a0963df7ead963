package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
	"github.com/polkiloo/routeshop/internal/domain/model"
)

// Commission is the referrer's share of amount, rounded down to whole minor units.
func Commission(amount int64, rate decimal.Decimal) int64 {
	if amount <= 0 || !rate.IsPositive() {
		return 0
	}
	return decimal.NewFromInt(amount).Mul(rate).Floor().IntPart()
}

// AddInstructor registers or updates a referrer. Its balance is kept on update.
func (u *OperatorUseCase) AddInstructor(ctx context.Context, code, contact, card string) (*model.Registration, error) {
	code = strings.TrimSpace(code)
	if !ValidInstructorCode(code) {
		return nil, fmt.Errorf("%w: code must be 5 digits", domainErrors.ErrValidation)
	}
	contact = strings.TrimPrefix(strings.TrimSpace(contact), "@")
	if contact == "" {
		return nil, fmt.Errorf("%w: contact is required", domainErrors.ErrValidation)
	}
	card = strings.TrimSpace(card)
	if len(card) != cardLength || digitsOnly(card) != card {
		return nil, fmt.Errorf("%w: card must be %d digits", domainErrors.ErrValidation, cardLength)
	}

	instructor, err := u.deps.Instructors.Upsert(ctx, model.Instructor{
		Code:      code,
		Contact:   contact,
		CardLast4: card[cardLength-suffixLength:],
		CardHash:  u.deps.Hasher.Hash(card),
	})
	if err != nil {
		return nil, err
	}

	u.deps.logger().InfoContext(ctx, "instructor registered", slog.String("code", code))
	return &model.Registration{
		Instructor: instructor,
		Link:       fmt.Sprintf("https://t.me/%s?start=%s%s", u.deps.Config.BotUsername, referralPrefix, code),
		Card:       groupCard(card),
	}, nil
}

// ListPayouts returns instructors holding a balance and the total owed.
func (u *OperatorUseCase) ListPayouts(ctx context.Context) (*model.PayoutSummary, error) {
	instructors, err := u.deps.Instructors.ListWithBalance(ctx)
	if err != nil {
		return nil, err
	}

	summary := &model.PayoutSummary{Instructors: instructors, Threshold: u.deps.Config.PayoutThreshold}
	for _, in := range instructors {
		summary.Total += in.Balance
	}
	return summary, nil
}

// Settle zeroes a balance that reached the payout threshold and returns the paid amount.
func (u *OperatorUseCase) Settle(ctx context.Context, code string) (int64, error) {
	if !ValidInstructorCode(code) {
		return 0, fmt.Errorf("%w: code must be 5 digits", domainErrors.ErrValidation)
	}

	settled, err := u.deps.Instructors.Settle(ctx, code, u.deps.Config.PayoutThreshold)
	if err != nil {
		return 0, err
	}

	u.deps.logger().InfoContext(ctx, "instructor settled", slog.String("code", code), slog.Int64("amount", settled))
	return settled, nil
}

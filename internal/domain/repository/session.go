package repository

import (
	"context"
	"time"

	"github.com/polkiloo/routeshop/internal/domain/model"
)

// SessionStore keeps short lived conversational state: checkout drafts,
// referral attribution and operator rejection prompts.
type SessionStore interface {
	OpenDraft(ctx context.Context, draft model.Draft, ttl time.Duration) error
	Draft(ctx context.Context, buyerID int64) (*model.Draft, error)
	// CloseDraft removes the buyer's draft only if it is still the one with draftID.
	CloseDraft(ctx context.Context, buyerID int64, draftID string) (bool, error)

	RememberReferral(ctx context.Context, buyerID int64, code string, ttl time.Duration) error
	Referral(ctx context.Context, buyerID int64) (string, error)

	SaveRejection(ctx context.Context, operatorID int64, rc model.RejectContext, ttl time.Duration) error
	Rejection(ctx context.Context, operatorID int64) (*model.RejectContext, error)
	ClearRejection(ctx context.Context, operatorID int64) error

	// MarkNotice records key for ttl and reports whether it was not marked already.
	MarkNotice(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

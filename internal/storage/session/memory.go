package session

import (
	"context"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
	"github.com/polkiloo/routeshop/internal/domain/model"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e entry[T]) alive(now time.Time) bool {
	return now.Before(e.expiresAt)
}

// MemoryStore keeps sessions in process memory. State is lost on restart.
type MemoryStore struct {
	mu         sync.Mutex
	now        func() time.Time
	drafts     map[int64]entry[model.Draft]
	referrals  map[int64]entry[string]
	rejections map[int64]entry[model.RejectContext]
	notices    map[string]entry[struct{}]
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:        time.Now,
		drafts:     make(map[int64]entry[model.Draft]),
		referrals:  make(map[int64]entry[string]),
		rejections: make(map[int64]entry[model.RejectContext]),
		notices:    make(map[string]entry[struct{}]),
	}
}

func (s *MemoryStore) OpenDraft(_ context.Context, draft model.Draft, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draft.BuyerID] = entry[model.Draft]{value: draft, expiresAt: s.now().Add(ttl + expiryGrace)}
	return nil
}

func (s *MemoryStore) Draft(_ context.Context, buyerID int64) (*model.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.drafts[buyerID]
	if !ok || !e.alive(s.now()) {
		delete(s.drafts, buyerID)
		return nil, domainErrors.ErrNoDraft
	}
	d := e.value
	return &d, nil
}

func (s *MemoryStore) CloseDraft(_ context.Context, buyerID int64, draftID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.drafts[buyerID]
	if !ok || e.value.ID != draftID {
		return false, nil
	}
	delete(s.drafts, buyerID)
	return true, nil
}

func (s *MemoryStore) RememberReferral(_ context.Context, buyerID int64, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.referrals[buyerID] = entry[string]{value: code, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Referral(_ context.Context, buyerID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.referrals[buyerID]
	if !ok || !e.alive(s.now()) {
		delete(s.referrals, buyerID)
		return "", nil
	}
	return e.value, nil
}

func (s *MemoryStore) SaveRejection(_ context.Context, operatorID int64, rc model.RejectContext, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejections[operatorID] = entry[model.RejectContext]{value: rc, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Rejection(_ context.Context, operatorID int64) (*model.RejectContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.rejections[operatorID]
	if !ok || !e.alive(s.now()) {
		delete(s.rejections, operatorID)
		return nil, domainErrors.ErrNotFound
	}
	rc := e.value
	return &rc, nil
}

func (s *MemoryStore) ClearRejection(_ context.Context, operatorID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rejections, operatorID)
	return nil
}

func (s *MemoryStore) MarkNotice(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if e, ok := s.notices[key]; ok && e.alive(now) {
		return false, nil
	}
	s.notices[key] = entry[struct{}]{expiresAt: now.Add(ttl)}
	return true, nil
}

package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const expiryTimeout = 10 * time.Second

type draftKey struct {
	buyerID int64
	draftID string
}

// ExpiryScheduler arms one timer per open draft.
type ExpiryScheduler struct {
	logger *slog.Logger

	mu      sync.Mutex
	timers  map[draftKey]*time.Timer
	stopped bool
	wg      sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// NewExpiryScheduler creates an idle scheduler.
func NewExpiryScheduler(logger *slog.Logger) *ExpiryScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &ExpiryScheduler{
		logger: logger,
		timers: make(map[draftKey]*time.Timer),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Schedule runs fire once ttl elapses unless the draft is cancelled first.
// Rescheduling the same draft replaces the previous timer.
func (s *ExpiryScheduler) Schedule(buyerID int64, draftID string, ttl time.Duration, fire func(context.Context)) {
	key := draftKey{buyerID: buyerID, draftID: draftID}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopLocked(key)

	s.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(ttl, func() {
		defer s.wg.Done()

		s.mu.Lock()
		if s.timers[key] != timer {
			s.mu.Unlock()
			return
		}
		delete(s.timers, key)
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(s.ctx, expiryTimeout)
		defer cancel()
		fire(ctx)
	})
	s.timers[key] = timer
}

// Cancel disarms the draft's timer, if any.
func (s *ExpiryScheduler) Cancel(buyerID int64, draftID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(draftKey{buyerID: buyerID, draftID: draftID})
}

// Pending reports how many timers are armed.
func (s *ExpiryScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop disarms every timer and waits for callbacks already running.
func (s *ExpiryScheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for key := range s.timers {
		s.stopLocked(key)
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.logger.Info("draft expiry scheduler stopped")
}

func (s *ExpiryScheduler) stopLocked(key draftKey) {
	timer, ok := s.timers[key]
	if !ok {
		return
	}
	delete(s.timers, key)
	if timer.Stop() {
		s.wg.Done()
	}
}

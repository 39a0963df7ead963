package test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
	"github.com/polkiloo/routeshop/internal/domain/model"
)

// OrderRepositoryStub keeps orders in memory and enforces the same guards as storage:
// one pending order per buyer and pending-only conditional transitions.
type OrderRepositoryStub struct {
	mu          sync.Mutex
	orders      map[int64]*model.Order
	next        int64
	Instructors *InstructorRepositoryStub
	Now         func() time.Time

	// Err, when set, is returned from every call.
	Err error
	// CreateErr is returned from CreatePending only.
	CreateErr error
}

// NewOrderRepositoryStub constructs an empty repository crediting the given instructors.
func NewOrderRepositoryStub(instructors *InstructorRepositoryStub) *OrderRepositoryStub {
	return &OrderRepositoryStub{orders: make(map[int64]*model.Order), next: 1, Instructors: instructors, Now: time.Now}
}

// Put stores a prepared order as is and returns its id.
func (s *OrderRepositoryStub) Put(order model.Order) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == 0 {
		order.ID = s.next
	}
	if order.ID >= s.next {
		s.next = order.ID + 1
	}
	o := order
	s.orders[o.ID] = &o
	return o.ID
}

// All returns a snapshot of stored orders ordered by id.
func (s *OrderRepositoryStub) All() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		result = append(result, *o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// CreatePending inserts a pending order unless the buyer already has one.
func (s *OrderRepositoryStub) CreatePending(ctx context.Context, n model.NewOrder) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	for _, o := range s.orders {
		if o.BuyerID == n.BuyerID && o.Status == model.OrderStatusPending {
			return nil, fmt.Errorf("%w: buyer %d already has a pending order", domainErrors.ErrConflict, n.BuyerID)
		}
	}
	order := &model.Order{
		ID:           s.next,
		BuyerID:      n.BuyerID,
		BuyerName:    n.BuyerName,
		Proof:        n.Proof,
		Amount:       n.Amount,
		Products:     append([]string(nil), n.Products...),
		ReferralCode: n.ReferralCode,
		Status:       model.OrderStatusPending,
		CreatedAt:    s.Now(),
	}
	s.next++
	s.orders[order.ID] = order
	o := *order
	return &o, nil
}

// HasPending reports whether the buyer has a pending order.
func (s *OrderRepositoryStub) HasPending(ctx context.Context, buyerID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	for _, o := range s.orders {
		if o.BuyerID == buyerID && o.Status == model.OrderStatusPending {
			return true, nil
		}
	}
	return false, nil
}

// GetByID returns a copy of the order or not found.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	o, ok := s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

// GetByExternalRef finds the order carrying the invoice reference.
func (s *OrderRepositoryStub) GetByExternalRef(ctx context.Context, ref string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, o := range s.orders {
		if o.ExternalRef != nil && *o.ExternalRef == ref {
			copied := *o
			return &copied, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// SetExternalRef attaches an invoice reference.
func (s *OrderRepositoryStub) SetExternalRef(ctx context.Context, id int64, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	o, ok := s.orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	o.ExternalRef = &ref
	return nil
}

// ListByBuyer returns buyer orders with the status, newest first.
func (s *OrderRepositoryStub) ListByBuyer(ctx context.Context, buyerID int64, status model.OrderStatus) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var result []model.Order
	for _, o := range s.orders {
		if o.BuyerID == buyerID && o.Status == status {
			result = append(result, *o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

// ListPendingByAmount returns pending orders with the amount created within [from, to].
func (s *OrderRepositoryStub) ListPendingByAmount(ctx context.Context, amount int64, from, to time.Time) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var result []model.Order
	for _, o := range s.orders {
		if o.Status != model.OrderStatusPending || o.Amount != amount {
			continue
		}
		if o.CreatedAt.Before(from) || o.CreatedAt.After(to) {
			continue
		}
		result = append(result, *o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Transition closes a pending order with the expected amount.
func (s *OrderRepositoryStub) Transition(ctx context.Context, t model.Transition) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	o, err := s.claim(t)
	if err != nil {
		return nil, err
	}
	o.Status = t.Status
	o.RejectReason = t.Reason
	s.resolve(o)
	copied := *o
	return &copied, nil
}

// Complete marks the order successful and credits its instructor atomically.
func (s *OrderRepositoryStub) Complete(ctx context.Context, t model.Transition, commission int64) (*model.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	o, err := s.claim(t)
	if err != nil {
		return nil, err
	}
	o.Status = model.OrderStatusSuccess
	o.Fulfillment = append([]string(nil), t.Fulfillment...)
	s.resolve(o)

	copied := *o
	completion := &model.Completion{Order: &copied}
	if o.ReferralCode != nil && commission > 0 && s.Instructors != nil {
		if in, ok := s.Instructors.credit(*o.ReferralCode, commission); ok {
			completion.Instructor = in
			completion.Commission = commission
		}
	}
	return completion, nil
}

// CancelPending cancels every pending order.
func (s *OrderRepositoryStub) CancelPending(ctx context.Context) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var result []model.Order
	for _, o := range s.orders {
		if o.Status == model.OrderStatusPending {
			o.Status = model.OrderStatusCancelled
			s.resolve(o)
			result = append(result, *o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Stats aggregates orders per status.
func (s *OrderRepositoryStub) Stats(ctx context.Context) (*model.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	stats := &model.Stats{ByStatus: make(map[model.OrderStatus]model.StatusStats)}
	for _, o := range s.orders {
		st := stats.ByStatus[o.Status]
		st.Count++
		st.Sum += o.Amount
		stats.ByStatus[o.Status] = st
		stats.Total++
	}
	return stats, nil
}

func (s *OrderRepositoryStub) claim(t model.Transition) (*model.Order, error) {
	o, ok := s.orders[t.OrderID]
	if !ok || o.Status != model.OrderStatusPending || (t.ExpectedAmount != nil && *t.ExpectedAmount != o.Amount) {
		return nil, fmt.Errorf("%w: order %d is not pending with expected amount", domainErrors.ErrStaleAction, t.OrderID)
	}
	return o, nil
}

func (s *OrderRepositoryStub) resolve(o *model.Order) {
	now := s.Now()
	o.ResolvedAt = &now
}

// InstructorRepositoryStub keeps instructors in memory.
type InstructorRepositoryStub struct {
	mu          sync.Mutex
	instructors map[string]*model.Instructor
	Err         error
}

// NewInstructorRepositoryStub constructs a repository seeded with instructors.
func NewInstructorRepositoryStub(seed ...model.Instructor) *InstructorRepositoryStub {
	s := &InstructorRepositoryStub{instructors: make(map[string]*model.Instructor)}
	for _, in := range seed {
		copied := in
		s.instructors[in.Code] = &copied
	}
	return s
}

// Upsert stores the instructor keeping an existing balance.
func (s *InstructorRepositoryStub) Upsert(ctx context.Context, in model.Instructor) (*model.Instructor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if existing, ok := s.instructors[in.Code]; ok {
		in.Balance = existing.Balance
		in.CreatedAt = existing.CreatedAt
	}
	copied := in
	s.instructors[in.Code] = &copied
	result := copied
	return &result, nil
}

// GetByCode returns the instructor or not found.
func (s *InstructorRepositoryStub) GetByCode(ctx context.Context, code string) (*model.Instructor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	in, ok := s.instructors[code]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copied := *in
	return &copied, nil
}

// ListWithBalance returns instructors owed money, largest balance first.
func (s *InstructorRepositoryStub) ListWithBalance(ctx context.Context) ([]model.Instructor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var result []model.Instructor
	for _, in := range s.instructors {
		if in.Balance > 0 {
			result = append(result, *in)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Balance != result[j].Balance {
			return result[i].Balance > result[j].Balance
		}
		return result[i].Code < result[j].Code
	})
	return result, nil
}

// Settle zeroes a balance at or above the threshold.
func (s *InstructorRepositoryStub) Settle(ctx context.Context, code string, threshold int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	in, ok := s.instructors[code]
	if !ok {
		return 0, domainErrors.ErrNotFound
	}
	if in.Balance < threshold {
		return 0, fmt.Errorf("%w: balance %d, threshold %d", domainErrors.ErrBelowThreshold, in.Balance, threshold)
	}
	settled := in.Balance
	in.Balance = 0
	return settled, nil
}

// Balance returns the current balance of code.
func (s *InstructorRepositoryStub) Balance(code string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in, ok := s.instructors[code]; ok {
		return in.Balance
	}
	return 0
}

func (s *InstructorRepositoryStub) credit(code string, amount int64) (*model.Instructor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.instructors[code]
	if !ok {
		return nil, false
	}
	in.Balance += amount
	copied := *in
	return &copied, true
}

// CheckpointRepositoryStub keeps checkpoints in memory.
type CheckpointRepositoryStub struct {
	mu      sync.Mutex
	points  map[string]time.Time
	LoadErr error
	SaveErr error
	Saves   int
}

// NewCheckpointRepositoryStub constructs an empty checkpoint store.
func NewCheckpointRepositoryStub() *CheckpointRepositoryStub {
	return &CheckpointRepositoryStub{points: make(map[string]time.Time)}
}

// Load returns the stored checkpoint.
func (s *CheckpointRepositoryStub) Load(ctx context.Context, name string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return time.Time{}, false, s.LoadErr
	}
	at, ok := s.points[name]
	return at, ok, nil
}

// Save stores the checkpoint.
func (s *CheckpointRepositoryStub) Save(ctx context.Context, name string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.points[name] = at
	s.Saves++
	return nil
}

// Get returns the checkpoint without error handling.
func (s *CheckpointRepositoryStub) Get(name string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.points[name]
	return at, ok
}

package model

import "time"

// OrderStatus describes the order lifecycle.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusSuccess   OrderStatus = "success"
	OrderStatusRejected  OrderStatus = "rejected"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusExpired   OrderStatus = "expired"
)

// Terminal reports whether the status can no longer change.
func (s OrderStatus) Terminal() bool {
	return s != OrderStatusPending
}

// CardProof is what remains of the card a buyer claims to have paid from.
// Hash is empty when only the last four digits were submitted.
type CardProof struct {
	Hash  string
	Last4 string
}

// Order is a persisted purchase claim.
type Order struct {
	ID           int64
	BuyerID      int64
	BuyerName    string
	Proof        CardProof
	Amount       int64
	Products     []string
	ReferralCode *string
	Status       OrderStatus
	RejectReason *string
	ExternalRef  *string
	Fulfillment  []string
	CreatedAt    time.Time
	ResolvedAt   *time.Time
}

// NewOrder carries the data needed to insert a pending order.
type NewOrder struct {
	BuyerID      int64
	BuyerName    string
	Proof        CardProof
	Amount       int64
	Products     []string
	ReferralCode *string
}

// Transition moves a pending order with the expected amount into a terminal status.
// A nil ExpectedAmount skips the amount guard.
type Transition struct {
	OrderID        int64
	ExpectedAmount *int64
	Status         OrderStatus
	Reason         *string
	Fulfillment    []string
}

// Completion is the outcome of a successful order together with the referrer it credited.
type Completion struct {
	Order      *Order
	Instructor *Instructor
	Commission int64
}

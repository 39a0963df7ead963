package model

import "time"

// OrderEvent is published whenever an order is created or resolved.
type OrderEvent struct {
	Type         string      `json:"type"`
	OrderID      int64       `json:"order_id"`
	BuyerID      int64       `json:"buyer_id"`
	Amount       int64       `json:"amount"`
	Status       OrderStatus `json:"status"`
	ReferralCode *string     `json:"referral_code,omitempty"`
	Source       string      `json:"source,omitempty"`
	At           time.Time   `json:"at"`
}

const (
	EventOrderCreated  = "order.created"
	EventOrderResolved = "order.resolved"
)

// NewOrderEvent builds an event snapshot of the order.
func NewOrderEvent(eventType string, o *Order, source string, at time.Time) OrderEvent {
	return OrderEvent{
		Type:         eventType,
		OrderID:      o.ID,
		BuyerID:      o.BuyerID,
		Amount:       o.Amount,
		Status:       o.Status,
		ReferralCode: o.ReferralCode,
		Source:       source,
		At:           at,
	}
}

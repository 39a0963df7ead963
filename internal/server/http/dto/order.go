package dto

import "time"

// OrderResponse describes an order.
type OrderResponse struct {
	ID           int64      `json:"id"`
	BuyerID      int64      `json:"buyer_id"`
	Status       string     `json:"status"`
	Amount       int64      `json:"amount"`
	Products     []string   `json:"products"`
	CardLast4    string     `json:"card_last4,omitempty"`
	ReferralCode *string    `json:"referral_code,omitempty"`
	RejectReason *string    `json:"reject_reason,omitempty"`
	Fulfillment  []string   `json:"fulfillment,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

// ErrorResponse is returned with every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

package model

import "time"

// Draft is an unpersisted checkout waiting for card proof.
type Draft struct {
	ID           string    `json:"id"`
	BuyerID      int64     `json:"buyer_id"`
	BuyerName    string    `json:"buyer_name,omitempty"`
	Products     []string  `json:"products"`
	Amount       int64     `json:"amount"`
	ReferralCode *string   `json:"referral_code,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// RejectContext remembers which order an operator is writing a rejection reason for.
type RejectContext struct {
	OrderID int64 `json:"order_id"`
	Amount  int64 `json:"amount"`
}

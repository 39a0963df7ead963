package dto

import "time"

// StartRequest opens a buyer session, optionally through a referral link.
type StartRequest struct {
	Referral string `json:"referral"`
}

// ItemResponse is a purchasable selection.
type ItemResponse struct {
	Key      string   `json:"key"`
	Title    string   `json:"title"`
	Products []string `json:"products"`
	Amount   int64    `json:"amount"`
}

// WelcomeResponse describes the catalog and what the buyer already owns.
type WelcomeResponse struct {
	Items      []ItemResponse `json:"items"`
	Purchased  []string       `json:"purchased"`
	Referral   string         `json:"referral,omitempty"`
	PayoutCard string         `json:"payout_card"`
}

// CheckoutRequest starts a checkout for a selection.
type CheckoutRequest struct {
	Selection string `json:"selection" binding:"required"`
	BuyerName string `json:"buyer_name"`
	Referral  string `json:"referral"`
}

// DraftResponse is an open checkout awaiting card proof.
type DraftResponse struct {
	ID        string    `json:"id"`
	Products  []string  `json:"products"`
	Amount    int64     `json:"amount"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ProofRequest carries the card the buyer paid from.
type ProofRequest struct {
	Input string `json:"input" binding:"required"`
}

// SubmissionResponse reports the created pending order.
type SubmissionResponse struct {
	Order      OrderResponse `json:"order"`
	InvoiceURL string        `json:"invoice_url,omitempty"`
}

// PurchasesResponse lists fulfillment links, newest first.
type PurchasesResponse struct {
	Links []string `json:"links"`
}

// SupportRequest forwards a buyer message to the operator.
type SupportRequest struct {
	BuyerName string `json:"buyer_name"`
	Text      string `json:"text" binding:"required"`
}

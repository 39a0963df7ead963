package dto

// TokenRequest asks for an actor token on behalf of a chat user.
type TokenRequest struct {
	ActorID int64  `json:"actor_id" binding:"required"`
	Scope   string `json:"scope"`
}

// TokenResponse carries a signed actor token.
type TokenResponse struct {
	Token string `json:"token"`
}

// InvoiceWebhook is the ledger's invoice status callback.
type InvoiceWebhook struct {
	InvoiceID string `json:"invoiceId"`
	Status    string `json:"status"`
	Reference string `json:"reference,omitempty"`
	Amount    int64  `json:"amount,omitempty"`
}

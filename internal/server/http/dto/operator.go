package dto

// AmountRequest carries the amount the operator saw when acting on an order.
type AmountRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// RejectionRequest completes a pending rejection.
type RejectionRequest struct {
	Reason string `json:"reason"`
}

// ActionRequest carries a raw inline button payload.
type ActionRequest struct {
	Payload string `json:"payload" binding:"required"`
}

// ApproveResponse reports a completed order and the commission it produced.
type ApproveResponse struct {
	Order      OrderResponse `json:"order"`
	Instructor string        `json:"instructor,omitempty"`
	Commission int64         `json:"commission,omitempty"`
}

// ActionResponse reports what a dispatched action did.
type ActionResponse struct {
	Kind    string         `json:"kind"`
	Order   *OrderResponse `json:"order,omitempty"`
	Settled int64          `json:"settled,omitempty"`
	Prompt  string         `json:"prompt,omitempty"`
}

// CancelResponse lists orders cancelled in bulk.
type CancelResponse struct {
	Cancelled int             `json:"cancelled"`
	Orders    []OrderResponse `json:"orders"`
}

// StatusStatsResponse aggregates orders sharing a status.
type StatusStatsResponse struct {
	Count int64 `json:"count"`
	Sum   int64 `json:"sum"`
}

// StatsResponse summarises all orders.
type StatsResponse struct {
	Total    int64                          `json:"total"`
	Revenue  int64                          `json:"revenue"`
	ByStatus map[string]StatusStatsResponse `json:"by_status"`
}

// InstructorRequest registers or updates an instructor.
type InstructorRequest struct {
	Code    string `json:"code" binding:"required"`
	Contact string `json:"contact" binding:"required"`
	Card    string `json:"card" binding:"required"`
}

// InstructorResponse describes an instructor and their balance.
type InstructorResponse struct {
	Code      string `json:"code"`
	Contact   string `json:"contact"`
	CardLast4 string `json:"card_last4"`
	Balance   int64  `json:"balance"`
	Ready     bool   `json:"ready"`
}

// RegistrationResponse is returned once after an instructor is added.
type RegistrationResponse struct {
	Instructor InstructorResponse `json:"instructor"`
	Link       string             `json:"link"`
	Card       string             `json:"card"`
}

// PayoutsResponse lists instructors owed commission.
type PayoutsResponse struct {
	Instructors []InstructorResponse `json:"instructors"`
	Total       int64                `json:"total"`
	Threshold   int64                `json:"threshold"`
}

// SettleResponse reports a settled balance.
type SettleResponse struct {
	Code    string `json:"code"`
	Settled int64  `json:"settled"`
}

package errors

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflicting order exists")
	ErrStaleAction     = errors.New("action is stale")
	ErrAmbiguousMatch  = errors.New("ambiguous reconciliation match")
	ErrDelivery        = errors.New("message delivery failed")
	ErrExternalService = errors.New("external service failed")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrNoDraft         = errors.New("no open checkout draft")
	ErrBelowThreshold  = errors.New("balance below payout threshold")
)

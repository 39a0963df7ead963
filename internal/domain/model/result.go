package model

import (
	"github.com/polkiloo/routeshop/internal/catalog"
	"github.com/polkiloo/routeshop/internal/domain/command"
)

// Welcome is what a buyer sees when a session starts.
type Welcome struct {
	Items      []catalog.Item
	Purchased  []string
	Referral   string
	PayoutCard string
}

// Submission is the result of a successful proof submission.
type Submission struct {
	Order   *Order
	Invoice *Invoice
}

// Registration is returned after an instructor is added.
type Registration struct {
	Instructor *Instructor
	Link       string
	// Card echoes the payout card once; it is not stored.
	Card string
}

// ActionResult reports what a dispatched inline action did.
type ActionResult struct {
	Kind       command.Kind
	Completion *Completion
	Order      *Order
	Settled    int64
	// Prompt is set when the operator must answer before the action completes.
	Prompt string
}

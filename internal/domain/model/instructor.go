package model

import "time"

// Instructor refers buyers and earns commission on their successful orders.
type Instructor struct {
	Code      string
	Contact   string
	CardLast4 string
	CardHash  string
	Balance   int64
	CreatedAt time.Time
}

// PayoutSummary lists instructors with positive balances.
type PayoutSummary struct {
	Instructors []Instructor
	Total       int64
	Threshold   int64
}

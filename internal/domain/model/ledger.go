package model

import "time"

// LedgerEvent is a movement on the payout account statement.
type LedgerEvent struct {
	ID        string
	Time      time.Time
	Amount    int64
	MaskedPan string
}

// Credit reports whether the event brought money in.
func (e LedgerEvent) Credit() bool {
	return e.Amount > 0
}

// CardSuffix returns the last four digits of the masked card, if present.
func (e LedgerEvent) CardSuffix() string {
	digits := make([]byte, 0, 4)
	for i := len(e.MaskedPan) - 1; i >= 0 && len(digits) < 4; i-- {
		c := e.MaskedPan[i]
		if c < '0' || c > '9' {
			break
		}
		digits = append(digits, c)
	}
	if len(digits) != 4 {
		return ""
	}
	return string([]byte{digits[3], digits[2], digits[1], digits[0]})
}

// Invoice is a payment page created at the ledger provider.
type Invoice struct {
	ID      string
	PageURL string
}

// MatchOutcome describes what reconciliation did with a ledger event.
type MatchOutcome string

const (
	MatchPromoted  MatchOutcome = "promoted"
	MatchUnmatched MatchOutcome = "unmatched"
	MatchAmbiguous MatchOutcome = "ambiguous"
	MatchHandled   MatchOutcome = "already_handled"
	MatchSkipped   MatchOutcome = "skipped"
)

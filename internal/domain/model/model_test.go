package model

import (
	"testing"
	"time"
)

func TestOrderStatusValues(t *testing.T) {
	cases := []struct {
		name     string
		got      OrderStatus
		value    string
		terminal bool
	}{
		{"pending", OrderStatusPending, "pending", false},
		{"success", OrderStatusSuccess, "success", true},
		{"rejected", OrderStatusRejected, "rejected", true},
		{"cancelled", OrderStatusCancelled, "cancelled", true},
		{"expired", OrderStatusExpired, "expired", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if string(tc.got) != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, tc.got)
			}
			if tc.got.Terminal() != tc.terminal {
				t.Fatalf("expected terminal=%v for %s", tc.terminal, tc.got)
			}
		})
	}
}

func TestLedgerEventCardSuffix(t *testing.T) {
	cases := map[string]string{
		"537541******1234": "1234",
		"4441 **** 9876":   "9876",
		"1234":             "1234",
		"****123":          "",
		"":                 "",
		"1234****":         "",
	}

	for pan, want := range cases {
		e := LedgerEvent{MaskedPan: pan}
		if got := e.CardSuffix(); got != want {
			t.Errorf("%q: expected %q, got %q", pan, want, got)
		}
	}
}

func TestLedgerEventCredit(t *testing.T) {
	if !(LedgerEvent{Amount: 1}).Credit() {
		t.Errorf("positive amount must be a credit")
	}
	if (LedgerEvent{Amount: 0}).Credit() || (LedgerEvent{Amount: -100}).Credit() {
		t.Errorf("non-positive amounts must not be credits")
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[int64]string{
		25000: "250.00 UAH",
		2550:  "25.50 UAH",
		5:     "0.05 UAH",
		0:     "0.00 UAH",
	}
	for minor, want := range cases {
		if got := FormatAmount(minor); got != want {
			t.Errorf("%d: expected %q, got %q", minor, want, got)
		}
	}
}

func TestStatsRevenue(t *testing.T) {
	s := Stats{ByStatus: map[OrderStatus]StatusStats{
		OrderStatusSuccess: {Count: 2, Sum: 50000},
		OrderStatusPending: {Count: 1, Sum: 25000},
	}}
	if s.Revenue() != 50000 {
		t.Fatalf("expected revenue 50000, got %d", s.Revenue())
	}
	if (Stats{}).Revenue() != 0 {
		t.Fatalf("expected zero revenue for empty stats")
	}
}

func TestNewOrderEvent(t *testing.T) {
	code := "00007"
	at := time.Unix(100, 0)
	o := &Order{ID: 5, BuyerID: 9, Amount: 25000, Status: OrderStatusSuccess, ReferralCode: &code}

	e := NewOrderEvent(EventOrderResolved, o, "operator", at)
	if e.OrderID != 5 || e.BuyerID != 9 || e.Amount != 25000 || e.Status != OrderStatusSuccess {
		t.Fatalf("unexpected event: %+v", e)
	}
	if e.ReferralCode == nil || *e.ReferralCode != code || e.Source != "operator" || !e.At.Equal(at) {
		t.Fatalf("unexpected event metadata: %+v", e)
	}
}

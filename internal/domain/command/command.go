// Package command defines the typed actions carried by inline buttons.
//
// Actions travel through the chat platform as short strings such as
// "approve:17:25000". They are parsed exactly once at the boundary;
// everything past it works with Action values.
package command

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
)

// Kind names what an action does.
type Kind string

const (
	KindApprove Kind = "approve"
	KindReject  Kind = "reject"
	KindSettle  Kind = "settle"
	KindClose   Kind = "close"
	KindSupport Kind = "support"
)

const separator = ":"

var instructorCode = regexp.MustCompile(`^\d{5}$`)

// Action is a parsed inline button payload.
type Action struct {
	Kind    Kind
	OrderID int64
	Amount  int64
	Code    string
	BuyerID int64
}

// Approve builds the approve action for an order.
func Approve(orderID, amount int64) Action {
	return Action{Kind: KindApprove, OrderID: orderID, Amount: amount}
}

// Reject builds the reject action for an order.
func Reject(orderID, amount int64) Action {
	return Action{Kind: KindReject, OrderID: orderID, Amount: amount}
}

// Settle builds the payout action for an instructor.
func Settle(code string) Action {
	return Action{Kind: KindSettle, Code: code}
}

// Close builds the close-dispute action for a buyer.
func Close(buyerID int64) Action {
	return Action{Kind: KindClose, BuyerID: buyerID}
}

// Support builds the buyer's contact-support action.
func Support() Action {
	return Action{Kind: KindSupport}
}

// IsZero reports whether the action is unset.
func (a Action) IsZero() bool {
	return a.Kind == ""
}

// String encodes the action into its wire form.
func (a Action) String() string {
	switch a.Kind {
	case KindApprove, KindReject:
		return strings.Join([]string{string(a.Kind), strconv.FormatInt(a.OrderID, 10), strconv.FormatInt(a.Amount, 10)}, separator)
	case KindSettle:
		return string(a.Kind) + separator + a.Code
	case KindClose:
		return string(a.Kind) + separator + strconv.FormatInt(a.BuyerID, 10)
	default:
		return string(a.Kind)
	}
}

// Parse decodes a wire payload; malformed payloads are validation errors.
func Parse(payload string) (Action, error) {
	parts := strings.Split(strings.TrimSpace(payload), separator)
	kind := Kind(parts[0])

	switch kind {
	case KindApprove, KindReject:
		if len(parts) != 3 {
			return Action{}, invalid(payload, "expected kind:order:amount")
		}
		orderID, err := positive(parts[1])
		if err != nil {
			return Action{}, invalid(payload, "order id "+err.Error())
		}
		amount, err := positive(parts[2])
		if err != nil {
			return Action{}, invalid(payload, "amount "+err.Error())
		}
		return Action{Kind: kind, OrderID: orderID, Amount: amount}, nil
	case KindSettle:
		if len(parts) != 2 || !instructorCode.MatchString(parts[1]) {
			return Action{}, invalid(payload, "expected settle:<5 digit code>")
		}
		return Settle(parts[1]), nil
	case KindClose:
		if len(parts) != 2 {
			return Action{}, invalid(payload, "expected close:buyer")
		}
		buyerID, err := positive(parts[1])
		if err != nil {
			return Action{}, invalid(payload, "buyer id "+err.Error())
		}
		return Close(buyerID), nil
	case KindSupport:
		if len(parts) != 1 {
			return Action{}, invalid(payload, "support takes no arguments")
		}
		return Support(), nil
	default:
		return Action{}, invalid(payload, "unknown action")
	}
}

func positive(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("is not a number")
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return n, nil
}

func invalid(payload, reason string) error {
	return fmt.Errorf("%w: action %q: %s", domainErrors.ErrValidation, payload, reason)
}

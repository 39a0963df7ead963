package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/polkiloo/routeshop/internal/config"
	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
	"github.com/polkiloo/routeshop/internal/domain/model"
	"github.com/polkiloo/routeshop/internal/pkg/cardhash"
)

const (
	cardLength      = 16
	suffixLength    = 4
	minReasonLength = 3
)

var instructorCodePattern = regexp.MustCompile(`^\d{5}$`)

// ValidateCardNumber checks card number using Luhn algorithm.
func ValidateCardNumber(number string) bool {
	if number == "" {
		return false
	}

	var sum int
	var alt bool
	for i := len(number) - 1; i >= 0; i-- {
		r := rune(number[i])
		if !unicode.IsDigit(r) {
			return false
		}
		digit := int(r - '0')
		if alt {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		alt = !alt
	}

	return sum%10 == 0
}

// ValidInstructorCode reports whether code is a 5 digit referral code.
func ValidInstructorCode(code string) bool {
	return instructorCodePattern.MatchString(code)
}

// ParseProof normalizes buyer input into a card proof for the given proof mode.
// Only the digest and the last four digits survive.
func ParseProof(mode string, input string, hasher cardhash.Hasher) (model.CardProof, error) {
	digits := digitsOnly(input)

	switch mode {
	case config.ProofModeLast4:
		if len(digits) != suffixLength {
			return model.CardProof{}, fmt.Errorf("%w: expected %d digits", domainErrors.ErrValidation, suffixLength)
		}
		return model.CardProof{Last4: digits}, nil
	default:
		if len(digits) != cardLength {
			return model.CardProof{}, fmt.Errorf("%w: expected %d digits", domainErrors.ErrValidation, cardLength)
		}
		if !ValidateCardNumber(digits) {
			return model.CardProof{}, fmt.Errorf("%w: card number failed checksum", domainErrors.ErrValidation)
		}
		return model.CardProof{Hash: hasher.Hash(digits), Last4: digits[cardLength-suffixLength:]}, nil
	}
}

// ValidateReason trims an operator rejection reason and checks its length in characters.
func ValidateReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) < minReasonLength {
		return "", fmt.Errorf("%w: reason must be at least %d characters", domainErrors.ErrValidation, minReasonLength)
	}
	return reason, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// groupCard renders a card number in blocks of four.
func groupCard(card string) string {
	card = digitsOnly(card)
	var b strings.Builder
	for i, r := range card {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func maskCard(last4 string) string {
	return "**** **** **** " + last4
}

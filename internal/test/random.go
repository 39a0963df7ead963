package test

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomDigits returns n pseudo-random decimal digits.
func RandomDigits(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + randomIntn(10)))
	}
	return b.String()
}

// RandomCard returns a 16 digit card number passing the Luhn check.
func RandomCard() string {
	body := RandomDigits(15)
	var sum int
	// The check digit will sit at the rightmost position, so body digits
	// alternate starting with a doubled one from the right.
	for i := len(body) - 1; i >= 0; i-- {
		d := int(body[i] - '0')
		if (len(body)-1-i)%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	check := (10 - sum%10) % 10
	return body + string(byte('0'+check))
}

func randomIntn(n int) int {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Intn(n)
}

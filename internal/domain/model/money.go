package model

import "github.com/shopspring/decimal"

// Currency is the only currency the shop sells in.
const Currency = "UAH"

// FormatAmount renders minor units as a decimal amount with currency.
func FormatAmount(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2) + " " + Currency
}

// Package payment holds the domain types shared across the activation
// pipeline: the amount being collected, the payment method identifiers,
// the tokenized result payloads and the error taxonomy.
package payment

import (
	"fmt"
	"strconv"
)

// Amount is the value of one activation cycle. Total is expressed in major
// units (e.g. 12.34 USD). FractionDigits controls provider-facing
// formatting; nil means the usual 2, while an explicit 0 keeps
// zero-decimal currencies like JPY whole.
type Amount struct {
	Currency       string  `json:"currency"`
	Total          float64 `json:"total"`
	FractionDigits *int    `json:"fractionDigits,omitempty"`
}

// FormatTotal renders the total as a fixed-point string, the shape wallet
// and checkout providers expect (e.g. "12.34").
func (a Amount) FormatTotal() string {
	digits := 2
	if a.FractionDigits != nil && *a.FractionDigits >= 0 {
		digits = *a.FractionDigits
	}
	return strconv.FormatFloat(a.Total, 'f', digits, 64)
}

// Key returns a stable identity string for the amount, used as part of the
// activation-cycle identity.
func (a Amount) Key() string {
	return fmt.Sprintf("%s:%s", a.Currency, a.FormatTotal())
}

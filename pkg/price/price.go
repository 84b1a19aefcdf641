// Package price converts between decimal price strings and the
// fixed-point minor units (cents) the engine matches on.
package price

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/joripage/limitbook/pkg/orderbook"
)

var ErrInvalidPrice = errors.New("invalid price")

// Parse converts a decimal string like "99.50" to cents: multiply by
// 100 and round half-up to the nearest integer.
func Parse(s string) (orderbook.Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	cents := d.Mul(decimal.NewFromInt(100)).Round(0)
	return orderbook.Price(cents.IntPart()), nil
}

// Format renders cents back as a decimal string with two places.
func Format(p orderbook.Price) string {
	return decimal.New(int64(p), -2).StringFixed(2)
}

// FormatMid renders a midpoint (in cents, possibly on a half-cent) as a
// decimal string, keeping the extra fractional digit when present.
func FormatMid(mid float64) string {
	halfCents := decimal.NewFromInt(int64(mid * 2)) // exact: mid is k/2
	d := halfCents.Div(decimal.NewFromInt(200))
	if halfCents.Mod(decimal.NewFromInt(2)).IsZero() {
		return d.StringFixed(2)
	}
	return d.StringFixed(3)
}

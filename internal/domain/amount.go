package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Amount is a value in the smallest currency unit. Arithmetic is
// integer-only.
type Amount int64

// DefaultDecimals is the number of minor-unit digits used when none is
// configured.
const DefaultDecimals = 2

func (a Amount) IsZero() bool     { return a == 0 }
func (a Amount) IsNegative() bool { return a < 0 }

// MulQty returns a*qty, reporting false on overflow or negative input.
func (a Amount) MulQty(qty int64) (Amount, bool) {
	if a < 0 || qty < 0 {
		return 0, false
	}
	if a == 0 || qty == 0 {
		return 0, true
	}
	if int64(a) > math.MaxInt64/qty {
		return 0, false
	}
	return a * Amount(qty), true
}

// Add returns a+b, reporting false on overflow.
func (a Amount) Add(b Amount) (Amount, bool) {
	if b > 0 && a > Amount(math.MaxInt64)-b {
		return 0, false
	}
	if b < 0 && a < Amount(math.MinInt64)-b {
		return 0, false
	}
	return a + b, true
}

// Format renders the amount in major units, e.g. 5 with 2 decimals is "0.05".
func (a Amount) Format(decimals int32) string {
	return decimal.New(int64(a), -decimals).StringFixed(decimals)
}

// ParseAmount converts a major-unit decimal string into minor units. Values
// with more precision than decimals allows are rejected.
func ParseAmount(s string, decimals int32) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	minor := d.Shift(decimals)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, s, decimals)
	}
	if minor.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	}
	return Amount(minor.IntPart()), nil
}

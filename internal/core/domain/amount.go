package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountPrecision is the number of fractional digits an Amount keeps.
const AmountPrecision = 4

// AmountScale is the number of Amount units in one whole currency unit.
const AmountScale = 10_000

// maxAmountMagnitude bounds the decimal magnitude of a parseable amount.
// Any value of 10^15 or more overflows int64 once scaled.
const maxAmountMagnitude = 15

var (
	ErrEmptyAmount      = errors.New("empty amount")
	ErrAmountOutOfRange = errors.New("amount out of range")
	errAmountNotDecimal = errors.New("amount is not a decimal number")
)

// Amount is a fixed-point quantity stored as an integer count of
// ten-thousandths. It never passes through floating point.
type Amount struct {
	units int64
}

// AmountFromUnits builds an Amount from a raw count of ten-thousandths.
func AmountFromUnits(units int64) Amount { return Amount{units: units} }

// ParseAmount parses a decimal string, truncating any digits beyond the
// fourth fractional place. It never rounds.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, ErrEmptyAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q", errAmountNotDecimal, s)
	}

	// Scientific notation allows exponents far outside anything an int64
	// can hold; decide those by magnitude before any big-integer work.
	if d.IsZero() {
		return Amount{}, nil
	}
	mag := int64(d.Exponent()) + int64(d.NumDigits())
	if mag > maxAmountMagnitude {
		return Amount{}, fmt.Errorf("%w: %q", ErrAmountOutOfRange, s)
	}
	if mag <= -AmountPrecision {
		return Amount{}, nil
	}

	units := d.Truncate(AmountPrecision).Shift(AmountPrecision).BigInt()
	if !units.IsInt64() {
		return Amount{}, fmt.Errorf("%w: %q", ErrAmountOutOfRange, s)
	}
	return Amount{units: units.Int64()}, nil
}

// MustParseAmount is like ParseAmount but panics on error.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Add(b Amount) Amount      { return Amount{units: a.units + b.units} }
func (a Amount) Sub(b Amount) Amount      { return Amount{units: a.units - b.units} }
func (a Amount) LessThan(b Amount) bool   { return a.units < b.units }
func (a Amount) Equal(b Amount) bool      { return a.units == b.units }
func (a Amount) IsNegative() bool         { return a.units < 0 }
func (a Amount) IsZero() bool             { return a.units == 0 }
func (a Amount) Units() int64             { return a.units }
func (a Amount) Decimal() decimal.Decimal { return decimal.New(a.units, -AmountPrecision) }

// AddChecked adds b to a and reports false if the result overflows.
func (a Amount) AddChecked(b Amount) (Amount, bool) {
	sum := a.units + b.units
	if (b.units > 0 && sum < a.units) || (b.units < 0 && sum > a.units) {
		return Amount{}, false
	}
	return Amount{units: sum}, true
}

// String renders the amount with exactly four fractional digits.
func (a Amount) String() string {
	sign := ""
	abs := uint64(a.units)
	if a.units < 0 {
		sign = "-"
		abs = uint64(-(a.units + 1)) + 1
	}
	return fmt.Sprintf("%s%d.%04d", sign, abs/AmountScale, abs%AmountScale)
}

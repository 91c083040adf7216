package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

var (
	ErrCurrencyMismatch  = errors.New("currency mismatch")
	ErrInvalidScale      = errors.New("scale must be between 0 and 8")
	ErrNonPositiveAmount = errors.New("amount must be positive")
)

// Money is an immutable amount in a single currency, rounded to its scale.
type Money struct {
	value    decimal.Decimal
	currency Currency
	scale    int32
}

// NewMoney builds Money rounded to the currency's own scale.
func NewMoney(value decimal.Decimal, currency Currency) (Money, error) {
	return NewMoneyWithScale(value, currency, currency.Scale())
}

// NewMoneyWithScale builds Money rounded to an explicit scale in [0, MaxScale].
func NewMoneyWithScale(value decimal.Decimal, currency Currency, scale int32) (Money, error) {
	if !currency.IsSupported() {
		return Money{}, apperrors.Validation("UNSUPPORTED_CURRENCY", "unsupported currency code '"+string(currency)+"'")
	}
	if scale < 0 || scale > MaxScale {
		return Money{}, apperrors.Wrap(apperrors.KindValidation, "INVALID_SCALE", ErrInvalidScale, fmt.Sprintf("scale %d is out of range", scale))
	}
	return Money{value: value.Round(scale), currency: currency, scale: scale}, nil
}

// NewMoneyFromMinor builds Money from an integer count of minor units (kobo, cents).
func NewMoneyFromMinor(minor int64, currency Currency) (Money, error) {
	return NewMoneyFromMinorWithScale(minor, currency, currency.Scale())
}

// NewMoneyFromMinorWithScale interprets minor with an explicit exponent.
func NewMoneyFromMinorWithScale(minor int64, currency Currency, scale int32) (Money, error) {
	return NewMoneyWithScale(decimal.New(minor, -scale), currency, scale)
}

// Zero returns a zero amount in currency.
func Zero(currency Currency) Money {
	return Money{value: decimal.Zero, currency: currency, scale: currency.Scale()}
}

func (m Money) Amount() decimal.Decimal { return m.value }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) Scale() int32            { return m.scale }

// MinorUnits returns the amount as an integer of the smallest denomination at m's scale.
func (m Money) MinorUnits() int64 {
	return m.value.Shift(m.scale).IntPart()
}

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// ExactMinorUnits is MinorUnits for amounts that must fit in an int64.
func (m Money) ExactMinorUnits() (int64, error) {
	units := m.value.Shift(m.scale)
	if units.GreaterThan(maxMinor) || units.LessThan(minMinor) {
		return 0, apperrors.Validation("AMOUNT_OUT_OF_RANGE",
			fmt.Sprintf("amount %s is too large to represent in minor units of %s", m.value, m.currency))
	}
	return units.IntPart(), nil
}

func (m Money) IsZero() bool     { return m.value.IsZero() }
func (m Money) IsPositive() bool { return m.value.IsPositive() }
func (m Money) IsNegative() bool { return m.value.IsNegative() }

// Neg returns the additive inverse of m.
func (m Money) Neg() Money {
	return Money{value: m.value.Neg(), currency: m.currency, scale: m.scale}
}

// Add returns m + other. Both operands must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{value: m.value.Add(other.value), currency: m.currency, scale: maxScale(m.scale, other.scale)}, nil
}

// Sub returns m - other. Both operands must share a currency.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{value: m.value.Sub(other.value), currency: m.currency, scale: maxScale(m.scale, other.scale)}, nil
}

// Cmp compares m with other: -1, 0 or +1. Both operands must share a currency.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.sameCurrency(other); err != nil {
		return 0, err
	}
	return m.value.Cmp(other.value), nil
}

// Equal reports whether m and other hold the same value in the same currency.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.value.Equal(other.value)
}

func (m Money) String() string {
	return m.value.StringFixed(m.scale) + " " + string(m.currency)
}

func (m Money) sameCurrency(other Money) error {
	if m.currency != other.currency {
		return currencyMismatch(m.currency, other.currency)
	}
	return nil
}

func currencyMismatch(a, b Currency) error {
	return apperrors.Wrap(apperrors.KindValidation, "CURRENCY_MISMATCH", ErrCurrencyMismatch,
		fmt.Sprintf("cannot combine %s with %s", a, b))
}

func maxScale(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

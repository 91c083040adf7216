package domain

import (
	"sort"
	"strings"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
)

// MaxScale is the largest number of fractional digits Money may carry.
const MaxScale = 8

// Currency is one of the ISO 4217 codes the ledger supports.
type Currency string

const (
	NGN Currency = "NGN"
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	KES Currency = "KES"
	GHS Currency = "GHS"
	ZAR Currency = "ZAR"
	XOF Currency = "XOF"
)

// currencyScales holds the minor-unit exponent of every supported currency.
// The same table is seeded into the currencies table by the migrations.
var currencyScales = map[Currency]int32{
	NGN: 2,
	USD: 2,
	EUR: 2,
	GBP: 2,
	KES: 2,
	GHS: 2,
	ZAR: 2,
	XOF: 0,
}

// ParseCurrency converts a raw code into a supported Currency.
// Unknown codes are rejected, never defaulted.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !c.IsSupported() {
		return "", apperrors.Validation("UNSUPPORTED_CURRENCY", "unsupported currency code '"+code+"'")
	}
	return c, nil
}

// IsSupported reports whether c is in the closed set of ledger currencies.
func (c Currency) IsSupported() bool {
	_, ok := currencyScales[c]
	return ok
}

// Scale returns the number of minor-unit digits, e.g. 2 for kobo or cents.
func (c Currency) Scale() int32 {
	return currencyScales[c]
}

func (c Currency) String() string {
	return string(c)
}

// SupportedCurrencies lists every supported code in lexical order.
func SupportedCurrencies() []Currency {
	out := make([]Currency, 0, len(currencyScales))
	for c := range currencyScales {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

package exchange

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Converter turns an amount from one currency into another as of a date.
// Implementations must be deterministic for a given date so commission
// amounts stay reproducible and auditable.
type Converter interface {
	Convert(amount decimal.Decimal, from, to string, asOf time.Time) (converted, rate decimal.Decimal, err error)
}

var ErrUnknownCurrency = errors.New("unknown currency")

// DatedRate is the number of currency units per one USD, effective from Date.
type DatedRate struct {
	Date time.Time
	Rate decimal.Decimal
}

// TableConverter resolves rates from a static per-currency table, picking the
// newest rate effective at or before the requested date. USD is implicit.
type TableConverter struct {
	rates map[string][]DatedRate // sorted ascending by Date
}

func NewTableConverter(rates map[string][]DatedRate) *TableConverter {
	sorted := make(map[string][]DatedRate, len(rates))
	for cur, rs := range rates {
		cp := make([]DatedRate, len(rs))
		copy(cp, rs)
		sort.Slice(cp, func(i, j int) bool { return cp[i].Date.Before(cp[j].Date) })
		sorted[cur] = cp
	}
	return &TableConverter{rates: sorted}
}

func (c *TableConverter) perUSD(currency string, asOf time.Time) (decimal.Decimal, error) {
	if currency == "USD" {
		return decimal.NewFromInt(1), nil
	}
	rs, ok := c.rates[currency]
	if !ok || len(rs) == 0 {
		return decimal.Zero, ErrUnknownCurrency
	}
	best := decimal.Zero
	found := false
	for _, r := range rs {
		if r.Date.After(asOf) {
			break
		}
		best = r.Rate
		found = true
	}
	if !found {
		// asOf predates the table; use the oldest known rate
		best = rs[0].Rate
	}
	return best, nil
}

func (c *TableConverter) Convert(amount decimal.Decimal, from, to string, asOf time.Time) (decimal.Decimal, decimal.Decimal, error) {
	if from == to {
		return amount, decimal.NewFromInt(1), nil
	}
	fromRate, err := c.perUSD(from, asOf)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	toRate, err := c.perUSD(to, asOf)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	rate := toRate.DivRound(fromRate, 6)
	return amount.Mul(rate).Round(2), rate, nil
}

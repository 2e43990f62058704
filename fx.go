package folio

import (
	"errors"
	"fmt"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// FxRate is the price of one unit of From expressed in To, on Date.
type FxRate struct {
	From, To string
	Date     date.Date
	Rate     decimal.Decimal
}

// FxTable is a read-only table of exchange rates indexed by currency pair and date.
//
// A nil *FxTable is valid and can only convert a currency into itself.
type FxTable struct {
	pairs map[string]*date.History[decimal.Decimal]
}

func pairKey(from, to string) string { return from + to }

// NewFxTable indexes rates. It fails if any rate is not strictly positive, it
// never mutates the rates afterwards.
func NewFxTable(rates []FxRate) (*FxTable, error) {
	t := &FxTable{pairs: make(map[string]*date.History[decimal.Decimal])}
	var errs error
	for _, r := range rates {
		if !r.Rate.IsPositive() {
			errs = errors.Join(errs, fmt.Errorf("invalid rate %s for %s%s on %s", r.Rate, r.From, r.To, r.Date))
			continue
		}
		k := pairKey(r.From, r.To)
		h, ok := t.pairs[k]
		if !ok {
			h = new(date.History[decimal.Decimal])
			t.pairs[k] = h
		}
		h.Append(r.Date, r.Rate)
	}
	if errs != nil {
		return nil, errs
	}
	return t, nil
}

// asOf returns the most recent rate for a pair on or before 'on'.
func (t *FxTable) asOf(from, to string, on date.Date) (decimal.Decimal, bool) {
	if t == nil {
		return decimal.Decimal{}, false
	}
	h, ok := t.pairs[pairKey(from, to)]
	if !ok {
		return decimal.Decimal{}, false
	}
	return h.ValueAsOf(on)
}

// Rate returns how many 'to' units are worth one 'from' unit on a given date.
func (t *FxTable) Rate(from, to string, on date.Date) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	if rate, ok := t.asOf(from, to, on); ok {
		return rate, nil
	}
	if inverse, ok := t.asOf(to, from, on); ok {
		return decimal.NewFromInt(1).Div(inverse), nil
	}
	return decimal.Decimal{}, &NoRateError{From: from, To: to, Date: on}
}

// Convert converts amount into the 'to' currency with the rate on 'on', or
// the latest one before. The inverse pair is used when the direct one has no
// rate.
func (t *FxTable) Convert(amount Money, to string, on date.Date) (Money, error) {
	from := amount.Currency()
	if from == to {
		return amount, nil
	}
	if rate, ok := t.asOf(from, to, on); ok {
		return M(amount.value.Mul(rate), to), nil
	}
	if inverse, ok := t.asOf(to, from, on); ok {
		// dividing is exact where multiplying by the reciprocal is not.
		return M(amount.value.Div(inverse), to), nil
	}
	return Money{}, &NoRateError{From: from, To: to, Date: on}
}

// ConvertAmount converts a bare amount between two currencies.
func (t *FxTable) ConvertAmount(amount decimal.Decimal, from, to string, on date.Date) (decimal.Decimal, error) {
	m, err := t.Convert(M(amount, from), to, on)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return m.value, nil
}

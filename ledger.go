package folio

import (
	"errors"
	"slices"

	"github.com/etnz/folio/date"
)

// Ledger is the list of trades and cashflows of a portfolio, in insertion
// order.
type Ledger struct {
	Trades    []Trade
	Cashflows []Cashflow
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger { return &Ledger{} }

// AddTrade appends trades.
func (l *Ledger) AddTrade(t ...Trade) *Ledger {
	l.Trades = append(l.Trades, t...)
	return l
}

// AddCashflow appends cashflows.
func (l *Ledger) AddCashflow(c ...Cashflow) *Ledger {
	l.Cashflows = append(l.Cashflows, c...)
	return l
}

// Validate checks every trade and cashflow, and that trades replay without
// overselling.
func (l *Ledger) Validate() error {
	var errs error
	for _, t := range l.Trades {
		errs = errors.Join(errs, t.Validate())
	}
	for _, c := range l.Cashflows {
		errs = errors.Join(errs, c.Validate())
	}
	if errs != nil {
		return errs
	}
	if len(l.Trades) == 0 {
		return nil
	}
	_, err := Project(l.Trades, l.Range().To)
	return err
}

// Symbols returns the sorted list of traded symbols.
func (l *Ledger) Symbols() []string {
	var res []string
	for _, t := range l.Trades {
		res = append(res, t.Symbol)
	}
	slices.Sort(res)
	return slices.Compact(res)
}

// Range returns the dates of the first and the last entries.
func (l *Ledger) Range() date.Range {
	var dates []date.Date
	for _, t := range l.Trades {
		dates = append(dates, t.Date)
	}
	for _, c := range l.Cashflows {
		dates = append(dates, c.Date)
	}
	if len(dates) == 0 {
		return date.Range{}
	}
	dates = date.Unique(dates)
	return date.NewRange(dates[0], dates[len(dates)-1])
}

// Filter returns the entries within r, a nil range keeps everything.
func (l *Ledger) Filter(r *date.Range) *Ledger {
	if r == nil {
		return &Ledger{Trades: slices.Clone(l.Trades), Cashflows: slices.Clone(l.Cashflows)}
	}
	res := NewLedger()
	for _, t := range l.Trades {
		if r.Contains(t.Date) {
			res.Trades = append(res.Trades, t)
		}
	}
	for _, c := range l.Cashflows {
		if r.Contains(c.Date) {
			res.Cashflows = append(res.Cashflows, c)
		}
	}
	return res
}

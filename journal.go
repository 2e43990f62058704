package folio

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/etnz/folio/date"
)

// event is a single, atomic operation in the portfolio's history.
type event interface {
	date() date.Date
	// rank orders events on the same day: cash comes in first, then trades
	// settle, then cash goes out.
	rank() int
}

// Journal holds the chronologically sorted events of a ledger.
type Journal struct {
	events []event // sorted by date, then rank
}

// creditCash increases the balance of a cash account.
type creditCash struct {
	on     date.Date
	amount Money
	typ    FlowType
	symbol string
}

func (e creditCash) date() date.Date { return e.on }
func (e creditCash) rank() int       { return 0 }

// settle is a trade settling against the cash account of its currency.
type settle struct {
	trade Trade
}

func (e settle) date() date.Date { return e.trade.Date }
func (e settle) rank() int       { return 1 }

// debitCash decreases the balance of a cash account.
type debitCash struct {
	on     date.Date
	amount Money
	typ    FlowType
	symbol string
}

func (e debitCash) date() date.Date { return e.on }
func (e debitCash) rank() int       { return 2 }

// NewJournal validates trades and cashflows and sorts them into a journal.
// Trades on the same day keep their insertion order.
func NewJournal(trades []Trade, cashflows []Cashflow) (*Journal, error) {
	j := &Journal{events: make([]event, 0, len(trades)+len(cashflows))}
	for _, t := range trades {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		j.events = append(j.events, settle{trade: t})
	}
	for _, c := range cashflows {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if c.Type.IsInflow() {
			j.events = append(j.events, creditCash{on: c.Date, amount: c.Amount.Abs(), typ: c.Type, symbol: c.Symbol})
		} else {
			j.events = append(j.events, debitCash{on: c.Date, amount: c.Amount.Abs(), typ: c.Type, symbol: c.Symbol})
		}
	}
	slices.SortStableFunc(j.events, func(a, b event) int {
		if c := a.date().Compare(b.date()); c != 0 {
			return c
		}
		return cmp.Compare(a.rank(), b.rank())
	})
	return j, nil
}

// Dates returns the sorted, distinct dates of all events within r.
func (j *Journal) Dates(r date.Range) []date.Date {
	var res []date.Date
	for _, e := range j.events {
		if r.Contains(e.date()) {
			res = append(res, e.date())
		}
	}
	return date.Unique(res)
}

// flow is an external flow, converted into the reporting currency at its date.
// Positive amounts enter the portfolio.
type flow struct {
	on       date.Date
	amount   Money
	implicit bool // funding of a cash shortfall
}

// book replays a journal, keeping cash per currency and the external flows.
//
// Cash never goes negative: a shortfall in one currency is exchanged from the
// other currencies held, and only when every account is empty is it funded by
// an implicit contribution on the day it happens.
type book struct {
	journal *Journal
	next    int // index of the next event to replay
	on      date.Date

	base  string
	rates *FxTable

	positions *positions
	cash      map[string]Money
	flows     []flow

	// in the reporting currency, each converted at its own date.
	contributed Money
	realized    Money
	dividends   Money
	fees        Money
}

func newBook(j *Journal, rates *FxTable, base string) *book {
	zero := M(0, base)
	return &book{
		journal:     j,
		base:        base,
		rates:       rates,
		positions:   newPositions(),
		cash:        make(map[string]Money),
		contributed: zero,
		realized:    zero,
		dividends:   zero,
		fees:        zero,
	}
}

// advance replays every event up to and including 'to', and returns the net
// external flow of the replayed events.
func (b *book) advance(to date.Date) (Money, error) {
	if to.Before(b.on) {
		return Money{}, fmt.Errorf("cannot replay backward from %s to %s", b.on, to)
	}
	first := len(b.flows)
	for b.next < len(b.journal.events) {
		e := b.journal.events[b.next]
		if e.date().After(to) {
			break
		}
		if err := b.apply(e); err != nil {
			return Money{}, err
		}
		b.next++
	}
	b.on = to
	net := M(0, b.base)
	for _, f := range b.flows[first:] {
		net = net.Add(f.amount)
	}
	return net, nil
}

func (b *book) apply(e event) error {
	switch e := e.(type) {
	case creditCash:
		b.credit(e.amount)
		switch e.typ {
		case Contribution:
			return b.external(e.amount, e.on, false)
		case Dividend:
			return b.accrue(&b.dividends, e.amount, e.on)
		}
	case debitCash:
		if err := b.debit(e.amount, e.on); err != nil {
			return err
		}
		switch e.typ {
		case Withdrawal:
			return b.external(e.amount.Neg(), e.on, false)
		case Fee:
			return b.accrue(&b.fees, e.amount, e.on)
		}
	case settle:
		gain, err := b.positions.apply(e.trade)
		if err != nil {
			return err
		}
		gross := e.trade.GrossAmount()
		if e.trade.Side == Buy {
			return b.debit(gross, e.trade.Date)
		}
		b.credit(gross)
		return b.accrue(&b.realized, gain, e.trade.Date)
	}
	return nil
}

func (b *book) credit(amount Money) {
	c := amount.Currency()
	b.cash[c] = b.cash[c].Add(amount)
}

// debit withdraws amount from its cash account. A shortfall is first drawn
// from the other cash accounts, converted at the event date, base currency
// first; what remains is funded by an implicit contribution.
func (b *book) debit(amount Money, on date.Date) error {
	c := amount.Currency()
	balance := b.cash[c]
	if !amount.GreaterThan(balance) {
		b.cash[c] = balance.Sub(amount)
		return nil
	}
	b.cash[c] = M(0, c)
	short := amount.Sub(balance).Value()
	for _, from := range b.fundingOrder(c) {
		if short.IsZero() {
			return nil
		}
		pot := b.cash[from].Value()
		need, err := b.rates.ConvertAmount(short, c, from, on)
		if err != nil {
			return err
		}
		if need.LessThanOrEqual(pot) {
			b.cash[from] = M(pot.Sub(need), from)
			return nil
		}
		covered, err := b.rates.ConvertAmount(pot, from, c, on)
		if err != nil {
			return err
		}
		b.cash[from] = M(0, from)
		short = short.Sub(covered)
	}
	if !short.IsPositive() {
		return nil
	}
	return b.external(M(short, c), on, true)
}

// fundingOrder returns the cash accounts, other than c, that hold money:
// the base currency first, then the others by code.
func (b *book) fundingOrder(c string) []string {
	var res []string
	for _, cur := range slices.Sorted(maps.Keys(b.cash)) {
		if cur == c || !b.cash[cur].IsPositive() {
			continue
		}
		if cur == b.base {
			res = slices.Insert(res, 0, cur)
			continue
		}
		res = append(res, cur)
	}
	return res
}

// external records an external flow (positive for money coming in).
func (b *book) external(amount Money, on date.Date, implicit bool) error {
	v, err := b.rates.Convert(amount, b.base, on)
	if err != nil {
		return err
	}
	b.flows = append(b.flows, flow{on: on, amount: v, implicit: implicit})
	b.contributed = b.contributed.Add(v)
	return nil
}

// accrue adds amount, converted at its date, to a running total.
func (b *book) accrue(total *Money, amount Money, on date.Date) error {
	v, err := b.rates.Convert(amount, b.base, on)
	if err != nil {
		return err
	}
	*total = total.Add(v)
	return nil
}

// securities returns the market value of all the holdings on 'on'.
func (b *book) securities(prices PriceLookup, on date.Date) (Money, error) {
	total := M(0, b.base)
	for _, symbol := range b.positions.symbols() {
		v, err := marketValue(b.positions.quantity(symbol), symbol, prices, b.rates, b.base, on)
		if err != nil {
			return Money{}, err
		}
		total = total.Add(v)
	}
	return total, nil
}

// cashValue returns the value of all cash accounts on 'on'.
func (b *book) cashValue(on date.Date) (Money, error) {
	total := M(0, b.base)
	for _, c := range slices.Sorted(maps.Keys(b.cash)) {
		if b.cash[c].IsZero() {
			continue
		}
		v, err := b.rates.Convert(b.cash[c], b.base, on)
		if err != nil {
			return Money{}, err
		}
		total = total.Add(v)
	}
	return total, nil
}

// marketValue returns quantity × price converted into base.
func marketValue(q Quantity, symbol string, prices PriceLookup, rates *FxTable, base string, on date.Date) (Money, error) {
	price, err := prices.PriceAsOf(symbol, on)
	if err != nil {
		return Money{}, err
	}
	return rates.Convert(price.Mul(q), base, on)
}

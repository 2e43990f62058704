package folio

import (
	"fmt"
	"maps"
	"slices"

	"github.com/etnz/folio/date"
)

// Holding is the quantity and average cost of one instrument at a point in
// time, derived by replaying trades.
type Holding struct {
	Symbol      string
	Quantity    Quantity
	AverageCost Money // per share, in Currency
	Currency    string
}

// CostBasis returns the cost of the shares still held.
func (h Holding) CostBasis() Money { return h.AverageCost.Mul(h.Quantity) }

// Projection is the result of a ledger replay up to a date.
type Projection struct {
	On       date.Date
	Holdings map[string]Holding // only instruments with a non zero quantity
	Realized map[string]Money   // realized P&L per symbol, in the instrument currency
}

// Symbols returns the sorted symbols of the projected holdings.
func (p Projection) Symbols() []string { return slices.Sorted(maps.Keys(p.Holdings)) }

// sortTrades returns a copy of trades in chronological order, trades on the
// same day keep their insertion order.
func sortTrades(trades []Trade) []Trade {
	sorted := slices.Clone(trades)
	slices.SortStableFunc(sorted, func(a, b Trade) int { return a.Date.Compare(b.Date) })
	return sorted
}

// Project replays trades in chronological order up to and including asOf.
//
// A SELL larger than the quantity held fails with an *InsufficientHoldingsError,
// the replay is never clamped.
func Project(trades []Trade, asOf date.Date) (Projection, error) {
	p := newPositions()
	for _, t := range sortTrades(trades) {
		if t.Date.After(asOf) {
			break
		}
		if _, err := p.apply(t); err != nil {
			return Projection{}, err
		}
	}
	return p.projection(asOf), nil
}

// ProjectHoldings returns the holdings on asOf, see Project.
func ProjectHoldings(trades []Trade, asOf date.Date) (map[string]Holding, error) {
	p, err := Project(trades, asOf)
	if err != nil {
		return nil, err
	}
	return p.Holdings, nil
}

// positions is the mutable state of a replay.
type positions struct {
	held     map[string]*Holding
	realized map[string]Money
}

func newPositions() *positions {
	return &positions{
		held:     make(map[string]*Holding),
		realized: make(map[string]Money),
	}
}

// apply replays one trade and returns the realized gain it books (zero for a BUY).
func (p *positions) apply(t Trade) (Money, error) {
	if err := t.Validate(); err != nil {
		return Money{}, err
	}
	h, ok := p.held[t.Symbol]
	if !ok {
		h = &Holding{Symbol: t.Symbol, Currency: t.Currency(), AverageCost: M(0, t.Currency())}
		p.held[t.Symbol] = h
	}
	if h.Currency != t.Currency() {
		return Money{}, fmt.Errorf("trade %s on %s: %s is traded in %s, not %s", t.ID, t.Date, t.Symbol, h.Currency, t.Currency())
	}

	switch t.Side {
	case Buy:
		total := h.Quantity.Add(t.Quantity)
		if !total.IsZero() {
			cost := h.AverageCost.Mul(h.Quantity).Add(t.Price.Mul(t.Quantity))
			h.AverageCost = cost.Div(total)
		}
		h.Quantity = total
		return M(0, h.Currency), nil
	default: // Sell, Validate rejects anything else
		if t.Quantity.GreaterThan(h.Quantity) {
			return Money{}, &InsufficientHoldingsError{
				TradeID:   t.ID,
				Symbol:    t.Symbol,
				Date:      t.Date,
				Held:      h.Quantity,
				Requested: t.Quantity,
			}
		}
		gain := t.GrossAmount().Sub(h.AverageCost.Mul(t.Quantity))
		p.realized[t.Symbol] = p.realized[t.Symbol].Add(gain)
		h.Quantity = h.Quantity.Sub(t.Quantity)
		return gain, nil
	}
}

// quantity returns the quantity held for a symbol.
func (p *positions) quantity(symbol string) Quantity {
	if h, ok := p.held[symbol]; ok {
		return h.Quantity
	}
	return Quantity{}
}

// symbols returns held symbols (non zero quantity) in sorted order.
func (p *positions) symbols() []string {
	var res []string
	for _, s := range slices.Sorted(maps.Keys(p.held)) {
		if !p.held[s].Quantity.IsZero() {
			res = append(res, s)
		}
	}
	return res
}

func (p *positions) projection(on date.Date) Projection {
	res := Projection{
		On:       on,
		Holdings: make(map[string]Holding),
		Realized: maps.Clone(p.realized),
	}
	for symbol, h := range p.held {
		if h.Quantity.IsZero() {
			continue
		}
		res.Holdings[symbol] = *h
	}
	return res
}

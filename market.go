package folio

import (
	"iter"
	"maps"
	"slices"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// PriceLookup returns the price of a symbol on a date, or the latest before.
// Implementations fail with a *NoPriceError rather than guessing.
type PriceLookup interface {
	PriceAsOf(symbol string, on date.Date) (Money, error)
}

// Instrument is the metadata of a tradable instrument.
type Instrument struct {
	Symbol       string
	Name         string
	AUM          decimal.Decimal // assets under management, in major units
	ExpenseRatio decimal.Decimal // as a fraction: 0.003 for 0.3%
	Price        Money           // current price
}

// PriceTable is an in-memory price history per symbol. It implements PriceLookup.
//
// The zero value is not usable, use NewPriceTable.
type PriceTable struct {
	prices map[string]*date.History[Money]
}

// NewPriceTable returns an empty price table.
func NewPriceTable() *PriceTable {
	return &PriceTable{prices: make(map[string]*date.History[Money])}
}

func (p *PriceTable) history(symbol string) *date.History[Money] {
	h, ok := p.prices[symbol]
	if !ok {
		h = new(date.History[Money])
		p.prices[symbol] = h
	}
	return h
}

// Add records a price, replacing any price for the same symbol and date.
func (p *PriceTable) Add(symbol string, on date.Date, price Money) *PriceTable {
	p.history(symbol).Append(on, price)
	return p
}

// AddTrades records the execution price of every trade as an observed quote,
// unless a price was already recorded for that symbol on that day.
func (p *PriceTable) AddTrades(trades []Trade) *PriceTable {
	for _, t := range trades {
		h := p.history(t.Symbol)
		if _, exists := h.Get(t.Date); !exists {
			h.Append(t.Date, t.Price)
		}
	}
	return p
}

// PriceAsOf implements PriceLookup.
func (p *PriceTable) PriceAsOf(symbol string, on date.Date) (Money, error) {
	if h, ok := p.prices[symbol]; ok {
		if price, ok := h.ValueAsOf(on); ok {
			return price, nil
		}
	}
	return Money{}, &NoPriceError{Symbol: symbol, Date: on}
}

// Latest returns the most recent price of a symbol.
func (p *PriceTable) Latest(symbol string) (date.Date, Money, bool) {
	h, ok := p.prices[symbol]
	if !ok || h.Len() == 0 {
		return date.Date{}, Money{}, false
	}
	on, price := h.Latest()
	return on, price, true
}

// History iterates over the prices of a symbol in date order.
func (p *PriceTable) History(symbol string) iter.Seq2[date.Date, Money] {
	if h, ok := p.prices[symbol]; ok {
		return h.Values()
	}
	return func(func(date.Date, Money) bool) {}
}

// Symbols returns the sorted list of symbols with at least one price.
func (p *PriceTable) Symbols() []string {
	return slices.Sorted(maps.Keys(p.prices))
}

// Prices returns the price of every symbol as of a date, symbols without a
// price on or before that date are omitted.
func (p *PriceTable) Prices(on date.Date) map[string]Money {
	res := make(map[string]Money, len(p.prices))
	for symbol, h := range p.prices {
		if price, ok := h.ValueAsOf(on); ok {
			res[symbol] = price
		}
	}
	return res
}

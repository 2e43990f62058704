package folio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// Market holds the market data of a JSONL market file: prices, exchange
// rates and instrument descriptions.
type Market struct {
	Prices      *PriceTable
	Rates       []FxRate
	Instruments []Instrument
}

// NewMarket returns an empty market.
func NewMarket() *Market { return &Market{Prices: NewPriceTable()} }

// FxTable indexes the market rates.
func (m *Market) FxTable() (*FxTable, error) { return NewFxTable(m.Rates) }

// Instrument returns the description of a symbol.
func (m *Market) Instrument(symbol string) (Instrument, bool) {
	for _, i := range m.Instruments {
		if i.Symbol == symbol {
			return i, true
		}
	}
	return Instrument{}, false
}

// marketLine has all the fields a market line can have.
type marketLine struct {
	Command      CommandType     `json:"command"`
	Date         date.Date       `json:"date"`
	Symbol       string          `json:"symbol"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	From         string          `json:"from"`
	To           string          `json:"to"`
	Rate         decimal.Decimal `json:"rate"`
	Name         string          `json:"name"`
	AUM          decimal.Decimal `json:"aum"`
	ExpenseRatio decimal.Decimal `json:"expenseRatio"`
}

// DecodeMarket reads market data from JSONL, with one "price", "fx" or
// "instrument" command per line.
func DecodeMarket(r io.Reader) (*Market, error) {
	m := NewMarket()
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var l marketLine
		if err := json.Unmarshal(line, &l); err != nil {
			return nil, fmt.Errorf("line %d: cannot decode %q: %w", n, line, err)
		}
		switch l.Command {
		case CmdPrice:
			if l.Symbol == "" || l.Date.IsZero() {
				return nil, fmt.Errorf("line %d: price needs a symbol and a date", n)
			}
			if err := ValidateCurrency(l.Currency); err != nil {
				return nil, fmt.Errorf("line %d: %w", n, err)
			}
			if !l.Price.IsPositive() {
				return nil, fmt.Errorf("line %d: price of %s must be strictly positive", n, l.Symbol)
			}
			m.Prices.Add(l.Symbol, l.Date, M(l.Price, l.Currency))
		case CmdFx:
			if err := ValidateCurrency(l.From); err != nil {
				return nil, fmt.Errorf("line %d: from: %w", n, err)
			}
			if err := ValidateCurrency(l.To); err != nil {
				return nil, fmt.Errorf("line %d: to: %w", n, err)
			}
			if !l.Rate.IsPositive() || l.Date.IsZero() {
				return nil, fmt.Errorf("line %d: fx needs a date and a strictly positive rate", n)
			}
			m.Rates = append(m.Rates, FxRate{From: l.From, To: l.To, Date: l.Date, Rate: l.Rate})
		case CmdInstrument:
			if l.Symbol == "" {
				return nil, fmt.Errorf("line %d: instrument without symbol", n)
			}
			i := Instrument{Symbol: l.Symbol, Name: l.Name, AUM: l.AUM, ExpenseRatio: l.ExpenseRatio}
			if l.Currency != "" {
				if err := ValidateCurrency(l.Currency); err != nil {
					return nil, fmt.Errorf("line %d: %w", n, err)
				}
				i.Price = M(l.Price, l.Currency)
			}
			m.Instruments = append(m.Instruments, i)
		default:
			return nil, fmt.Errorf("line %d: unknown market command %q", n, l.Command)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return m, nil
}

// EncodeMarket writes market data in JSONL: instruments first, then prices
// and rates in chronological order.
func EncodeMarket(w io.Writer, m *Market) error {
	var lines []*jsonLine
	instruments := slices.Clone(m.Instruments)
	slices.SortFunc(instruments, func(a, b Instrument) int { return strings.Compare(a.Symbol, b.Symbol) })
	for _, i := range instruments {
		l := new(jsonLine).
			Append("command", CmdInstrument).
			Append("symbol", i.Symbol).
			Optional("name", i.Name).
			Append("aum", i.AUM).
			Append("expenseRatio", i.ExpenseRatio)
		if i.Price.Currency() != "" {
			l.Money("price", i.Price)
		}
		lines = append(lines, l)
	}

	type dated struct {
		on   date.Date
		line *jsonLine
	}
	var series []dated
	for _, symbol := range m.Prices.Symbols() {
		for on, p := range m.Prices.History(symbol) {
			series = append(series, dated{on, new(jsonLine).
				Append("command", CmdPrice).
				Append("date", on).
				Append("symbol", symbol).
				Money("price", p)})
		}
	}
	for _, r := range m.Rates {
		series = append(series, dated{r.Date, new(jsonLine).
			Append("command", CmdFx).
			Append("date", r.Date).
			Append("from", r.From).
			Append("to", r.To).
			Append("rate", r.Rate)})
	}
	slices.SortStableFunc(series, func(a, b dated) int { return a.on.Compare(b.on) })
	for _, s := range series {
		lines = append(lines, s.line)
	}

	for _, l := range lines {
		b, err := l.MarshalJSON()
		if err != nil {
			return err
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return fmt.Errorf("failed to write market data: %w", err)
		}
	}
	return nil
}

package folio

import (
	"fmt"

	"github.com/etnz/folio/date"
)

// ValuePoint is the value of the portfolio at the end of a day, in the
// reporting currency.
type ValuePoint struct {
	Date       date.Date
	Securities Money // market value of the holdings
	Cash       Money // cash balances across currencies
	Total      Money // Securities + Cash
	Flow       Money // net external flow since the previous point
}

// ProjectValueSeries replays trades and cashflows and values the portfolio on
// each of the given dates, in the base currency.
//
// Dates are sorted and deduplicated first. Every held instrument must have a
// price on or before each date, and every currency a rate, or the whole series
// fails.
func ProjectValueSeries(trades []Trade, cashflows []Cashflow, prices PriceLookup, rates *FxTable, base string, dates []date.Date) ([]ValuePoint, error) {
	if err := ValidateCurrency(base); err != nil {
		return nil, err
	}
	j, err := NewJournal(trades, cashflows)
	if err != nil {
		return nil, err
	}
	points, _, err := valueSeries(newBook(j, rates, base), prices, date.Unique(dates))
	return points, err
}

// valueSeries advances the book through sorted dates, and returns the book in
// its final state.
func valueSeries(b *book, prices PriceLookup, dates []date.Date) ([]ValuePoint, *book, error) {
	points := make([]ValuePoint, 0, len(dates))
	for _, on := range dates {
		net, err := b.advance(on)
		if err != nil {
			return nil, nil, err
		}
		sec, err := b.securities(prices, on)
		if err != nil {
			return nil, nil, fmt.Errorf("valuation on %s: %w", on, err)
		}
		cash, err := b.cashValue(on)
		if err != nil {
			return nil, nil, fmt.Errorf("valuation on %s: %w", on, err)
		}
		points = append(points, ValuePoint{
			Date:       on,
			Securities: sec,
			Cash:       cash,
			Total:      sec.Add(cash),
			Flow:       net,
		})
	}
	return points, b, nil
}

// PortfolioValuation is the value of a set of holdings on a date.
type PortfolioValuation struct {
	On     date.Date
	Base   string
	Total  Money            // in Base
	Values map[string]Money // per symbol, in Base
}

// Valuate values holdings with prices quoted in any currency, converted into
// base with the rates on 'on'. A holding without a price fails with a
// *NoPriceError.
func Valuate(holdings map[string]Holding, prices map[string]Money, rates *FxTable, base string, on date.Date) (PortfolioValuation, error) {
	if err := ValidateCurrency(base); err != nil {
		return PortfolioValuation{}, err
	}
	v := PortfolioValuation{
		On:     on,
		Base:   base,
		Total:  M(0, base),
		Values: make(map[string]Money, len(holdings)),
	}
	for symbol, h := range holdings {
		value, err := holdingValue(h.Quantity, symbol, prices, rates, base, on)
		if err != nil {
			return PortfolioValuation{}, err
		}
		v.Values[symbol] = value
		v.Total = v.Total.Add(value)
	}
	return v, nil
}

func holdingValue(q Quantity, symbol string, prices map[string]Money, rates *FxTable, base string, on date.Date) (Money, error) {
	price, ok := prices[symbol]
	if !ok {
		return Money{}, &NoPriceError{Symbol: symbol, Date: on}
	}
	return rates.Convert(price.Mul(q), base, on)
}

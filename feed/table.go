package feed

import (
	"context"
	"errors"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
)

// Table is a PriceFeed answering from an in-memory price table, with the
// latest price on or before the requested date.
type Table struct {
	Prices folio.PriceLookup
}

// Price implements folio.PriceFeed.
func (t Table) Price(ctx context.Context, symbol string, on date.Date) (folio.Money, error) {
	if err := ctx.Err(); err != nil {
		return folio.Money{}, err
	}
	if t.Prices == nil {
		return folio.Money{}, &folio.NoPriceError{Symbol: symbol, Date: on}
	}
	return t.Prices.PriceAsOf(symbol, on)
}

// Chain is a PriceFeed asking each feed in turn until one knows the price.
type Chain []folio.PriceFeed

// Price implements folio.PriceFeed.
func (c Chain) Price(ctx context.Context, symbol string, on date.Date) (folio.Money, error) {
	for _, f := range c {
		price, err := f.Price(ctx, symbol, on)
		if err == nil || !errors.Is(err, folio.ErrNoPriceAvailable) {
			return price, err
		}
	}
	return folio.Money{}, &folio.NoPriceError{Symbol: symbol, Date: on}
}

package folio

import (
	"context"

	"github.com/etnz/folio/date"
)

// TradeStore lists the trades of a portfolio, in insertion order. A nil range
// means the whole history.
type TradeStore interface {
	ListTrades(ctx context.Context, userID, portfolioID string, r *date.Range) ([]Trade, error)
}

// CashflowStore lists the cashflows of a portfolio. A nil range means the
// whole history.
type CashflowStore interface {
	ListCashflows(ctx context.Context, userID, portfolioID string, r *date.Range) ([]Cashflow, error)
}

// PriceFeed returns the price of a symbol on a date. Feeds fail with an error
// wrapping ErrNoPriceAvailable when they do not know the price.
type PriceFeed interface {
	Price(ctx context.Context, symbol string, on date.Date) (Money, error)
}

// InstrumentMetadata returns the description of a symbol, or an error
// wrapping ErrUnknownInstrument.
type InstrumentMetadata interface {
	Instrument(ctx context.Context, symbol string) (Instrument, error)
}

// FxRateStore lists every known exchange rate.
type FxRateStore interface {
	ListRates(ctx context.Context) ([]FxRate, error)
}

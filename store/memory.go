// Package store implements the folio stores: in memory and on SQLite.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
)

// ErrUnknownPortfolio is returned when listing the ledger of a portfolio that
// was never stored.
var ErrUnknownPortfolio = errors.New("unknown portfolio")

// Memory keeps ledgers and market data in memory. It implements every folio
// store and is safe for concurrent use.
type Memory struct {
	mu         sync.RWMutex
	portfolios map[string]*folio.Ledger
	market     *folio.Market
	rates      []folio.FxRate
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{portfolios: make(map[string]*folio.Ledger), market: folio.NewMarket()}
}

func key(userID, portfolioID string) string { return userID + "/" + portfolioID }

// PutLedger stores the ledger of a portfolio, replacing any previous one.
func (m *Memory) PutLedger(userID, portfolioID string, l *folio.Ledger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.portfolios[key(userID, portfolioID)] = &folio.Ledger{
		Trades:    slices.Clone(l.Trades),
		Cashflows: slices.Clone(l.Cashflows),
	}
}

// PutMarket replaces the market data.
func (m *Memory) PutMarket(market *folio.Market) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.market = market
	m.rates = slices.Clone(market.Rates)
}

func (m *Memory) ledger(userID, portfolioID string, r *date.Range) (*folio.Ledger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.portfolios[key(userID, portfolioID)]
	if !ok {
		return nil, fmt.Errorf("%w %q of user %q", ErrUnknownPortfolio, portfolioID, userID)
	}
	return l.Filter(r), nil
}

// ListTrades implements folio.TradeStore.
func (m *Memory) ListTrades(ctx context.Context, userID, portfolioID string, r *date.Range) ([]folio.Trade, error) {
	l, err := m.ledger(userID, portfolioID, r)
	if err != nil {
		return nil, err
	}
	return l.Trades, nil
}

// ListCashflows implements folio.CashflowStore.
func (m *Memory) ListCashflows(ctx context.Context, userID, portfolioID string, r *date.Range) ([]folio.Cashflow, error) {
	l, err := m.ledger(userID, portfolioID, r)
	if err != nil {
		return nil, err
	}
	return l.Cashflows, nil
}

// Price implements folio.PriceFeed with the latest known price on or before
// the date.
func (m *Memory) Price(ctx context.Context, symbol string, on date.Date) (folio.Money, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.market.Prices.PriceAsOf(symbol, on)
}

// Instrument implements folio.InstrumentMetadata.
func (m *Memory) Instrument(ctx context.Context, symbol string) (folio.Instrument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i, ok := m.market.Instrument(symbol); ok {
		return i, nil
	}
	return folio.Instrument{}, fmt.Errorf("%w %q", folio.ErrUnknownInstrument, symbol)
}

// ListRates implements folio.FxRateStore.
func (m *Memory) ListRates(ctx context.Context) ([]folio.FxRate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.rates), nil
}

// Sources returns the store as every folio source.
func (m *Memory) Sources() folio.Sources {
	return folio.Sources{Trades: m, Cashflows: m, Prices: m, Metadata: m, Rates: m}
}

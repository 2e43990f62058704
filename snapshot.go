package folio

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/etnz/folio/date"
	"golang.org/x/sync/errgroup"
)

// Sources are the stores a Snapshot is loaded from. Metadata and Rates are
// optional.
type Sources struct {
	Trades    TradeStore
	Cashflows CashflowStore
	Prices    PriceFeed
	Metadata  InstrumentMetadata
	Rates     FxRateStore
}

// Request selects what a Snapshot loads.
type Request struct {
	UserID      string
	PortfolioID string
	Dates       []date.Date // valuation dates
	Symbols     []string    // symbols to price on top of the traded ones, e.g. targets
	Concurrency int         // parallel price requests, DefaultConcurrency when zero
}

// DefaultConcurrency is the number of parallel price requests of LoadSnapshot.
const DefaultConcurrency = 8

// Snapshot is a consistent, read-only set of inputs: everything is read once
// before any calculation starts, so that no calculation sees the stores change
// under its feet.
type Snapshot struct {
	Dates       []date.Date // sorted valuation dates
	Trades      []Trade
	Cashflows   []Cashflow
	Prices      *PriceTable
	Rates       *FxTable
	Instruments map[string]Instrument
}

// LoadSnapshot reads every store once, up to the last requested date.
//
// Prices are requested for every symbol on every valuation date and every
// event date of the period. A feed that does not know a price is not an error
// here: trade prices and earlier quotes are used instead, and calculations
// fail if nothing is available.
func LoadSnapshot(ctx context.Context, src Sources, req Request) (*Snapshot, error) {
	dates := date.Unique(req.Dates)
	if len(dates) == 0 {
		return nil, errors.New("snapshot needs at least one valuation date")
	}
	if src.Trades == nil || src.Cashflows == nil || src.Prices == nil {
		return nil, errors.New("snapshot needs a trade store, a cashflow store and a price feed")
	}
	upTo := &date.Range{To: dates[len(dates)-1]}
	s := &Snapshot{Dates: dates, Prices: NewPriceTable(), Instruments: make(map[string]Instrument)}

	var rates []FxRate
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		s.Trades, err = src.Trades.ListTrades(gctx, req.UserID, req.PortfolioID, upTo)
		return err
	})
	g.Go(func() (err error) {
		s.Cashflows, err = src.Cashflows.ListCashflows(gctx, req.UserID, req.PortfolioID, upTo)
		return err
	})
	if src.Rates != nil {
		g.Go(func() (err error) {
			rates, err = src.Rates.ListRates(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("cannot load snapshot: %w", err)
	}

	var err error
	if s.Rates, err = NewFxTable(rates); err != nil {
		return nil, err
	}
	j, err := NewJournal(s.Trades, s.Cashflows)
	if err != nil {
		return nil, err
	}

	symbols := slices.Clone(req.Symbols)
	for _, t := range s.Trades {
		symbols = append(symbols, t.Symbol)
	}
	slices.Sort(symbols)
	symbols = slices.Compact(symbols)

	on := date.Unique(append(slices.Clone(dates), j.Dates(date.NewRange(dates[0], dates[len(dates)-1]))...))
	if err := s.loadPrices(ctx, src.Prices, symbols, on, req.Concurrency); err != nil {
		return nil, err
	}
	s.Prices.AddTrades(s.Trades)

	if src.Metadata != nil {
		if err := s.loadInstruments(ctx, src.Metadata, symbols); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Snapshot) loadPrices(ctx context.Context, feed PriceFeed, symbols []string, dates []date.Date, concurrency int) error {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, symbol := range symbols {
		for _, on := range dates {
			g.Go(func() error {
				price, err := feed.Price(gctx, symbol, on)
				if errors.Is(err, ErrNoPriceAvailable) {
					return nil
				}
				if err != nil {
					return fmt.Errorf("cannot get price of %s on %s: %w", symbol, on, err)
				}
				mu.Lock()
				defer mu.Unlock()
				s.Prices.Add(symbol, on, price)
				return nil
			})
		}
	}
	return g.Wait()
}

func (s *Snapshot) loadInstruments(ctx context.Context, meta InstrumentMetadata, symbols []string) error {
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return err
		}
		i, err := meta.Instrument(ctx, symbol)
		if errors.Is(err, ErrUnknownInstrument) {
			continue
		}
		if err != nil {
			return fmt.Errorf("cannot get metadata of %s: %w", symbol, err)
		}
		if !i.Price.IsPositive() {
			if _, p, ok := s.Prices.Latest(symbol); ok {
				i.Price = p
			}
		}
		s.Instruments[symbol] = i
	}
	return nil
}

// End returns the last valuation date.
func (s *Snapshot) End() date.Date { return s.Dates[len(s.Dates)-1] }

// Performance computes the performance over the valuation dates.
func (s *Snapshot) Performance(base string) (*PerformanceReport, error) {
	return CalculatePerformance(s.Trades, s.Cashflows, Valuations{Dates: s.Dates, Prices: s.Prices, Rates: s.Rates}, base)
}

// Holdings projects the trades up to 'on'.
func (s *Snapshot) Holdings(on date.Date) (Projection, error) {
	return Project(s.Trades, on)
}

// Compare compares the holdings on 'on' against a plan. The comparison is
// made on the invested value: cash is what a contribution allocates.
func (s *Snapshot) Compare(plan TargetPlan, base string, on date.Date) (*Comparison, error) {
	p, err := s.Holdings(on)
	if err != nil {
		return nil, err
	}
	prices := s.Prices.Prices(on)
	v, err := Valuate(p.Holdings, prices, s.Rates, base, on)
	if err != nil {
		return nil, err
	}
	return CompareAllocation(p.Holdings, plan, prices, v, s.Rates)
}

// InstrumentList returns the known instruments, sorted by symbol.
func (s *Snapshot) InstrumentList() []Instrument {
	res := make([]Instrument, 0, len(s.Instruments))
	for _, symbol := range slices.Sorted(maps.Keys(s.Instruments)) {
		res = append(res, s.Instruments[symbol])
	}
	return res
}

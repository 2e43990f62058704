package folio

import (
	"errors"
	"slices"

	"github.com/etnz/folio/date"
	"golang.org/x/sync/errgroup"
)

// Valuations are the market inputs of a performance calculation.
//
// Prices must be safe for concurrent use, instruments are computed in
// parallel.
type Valuations struct {
	Dates  []date.Date // valuation dates, the first and last bound the period
	Prices PriceLookup
	Rates  *FxTable
}

// InstrumentPerformance is the contribution of one instrument. Amounts are in
// the reporting currency, converted at the date they happened.
type InstrumentPerformance struct {
	Symbol      string
	Quantity    Quantity
	AverageCost Money // per share, in the instrument currency
	Value       Money // market value at the end of the period
	NetInvested Money // buys minus sells, since inception
	Realized    Money
	Unrealized  Money // Value minus the cost basis converted at the end of the period
	Dividends   Money
	Fees        Money
	TWR         Percent // over the period, as if the instrument was a portfolio of its own
	Periods     []SubPeriod
}

// Summary aggregates the performance of the whole period. Amounts are since
// inception.
type Summary struct {
	Value          Money   // total value at the end of the period
	NetContributed Money   // external flows, each converted at its own date
	Gain           Money   // Value − NetContributed
	GainPercent    Percent // undefined when nothing was contributed
	Realized       Money
	Unrealized     Money
	Dividends      Money
	Fees           Money
	Volatility     Percent // of the sub-period returns
	MaxDrawdown    Percent
}

// PerformanceReport is the result of CalculatePerformance.
type PerformanceReport struct {
	Base          string
	Range         date.Range
	TWR           Percent
	TWRAnnualized Percent
	MWR           Percent
	MWRAnnualized Percent
	Periods       []SubPeriod
	Values        []ValuePoint
	Instruments   []InstrumentPerformance // sorted by symbol
	Summary       Summary
}

// CalculatePerformance computes the portfolio returns between the first and
// the last valuation dates.
//
// The sub-periods are bounded by the valuation dates and by every event date
// in between, so that flows always fall on a boundary. Any missing price or
// rate aborts the calculation.
func CalculatePerformance(trades []Trade, cashflows []Cashflow, v Valuations, base string) (*PerformanceReport, error) {
	if err := ValidateCurrency(base); err != nil {
		return nil, err
	}
	if v.Prices == nil {
		return nil, errors.New("performance needs a price lookup")
	}
	dates := date.Unique(v.Dates)
	if len(dates) == 0 {
		return nil, errors.New("performance needs at least one valuation date")
	}
	r := date.NewRange(dates[0], dates[len(dates)-1])

	j, err := NewJournal(trades, cashflows)
	if err != nil {
		return nil, err
	}
	boundaries := date.Unique(append(slices.Clone(dates), j.Dates(r)...))
	points, b, err := valueSeries(newBook(j, v.Rates, base), v.Prices, boundaries)
	if err != nil {
		return nil, err
	}

	report := &PerformanceReport{Base: base, Range: r, Values: points}
	report.TWR, report.Periods = TimeWeightedReturn(points)
	report.TWRAnnualized = Annualize(report.TWR, r.Days())
	if report.MWR, report.MWRAnnualized, err = MoneyWeightedReturn(points); err != nil {
		return nil, err
	}

	if report.Instruments, err = instrumentPerformances(trades, cashflows, dates, v, base); err != nil {
		return nil, err
	}

	end := points[len(points)-1]
	s := Summary{
		Value:          end.Total,
		NetContributed: b.contributed,
		Gain:           end.Total.Sub(b.contributed),
		Realized:       b.realized,
		Unrealized:     M(0, base),
		Dividends:      b.dividends,
		Fees:           b.fees,
		Volatility:     Volatility(report.Periods),
		MaxDrawdown:    MaxDrawdown(report.Periods),
	}
	s.GainPercent = FromRatio(s.Gain.Ratio(s.NetContributed))
	for _, ip := range report.Instruments {
		s.Unrealized = s.Unrealized.Add(ip.Unrealized)
	}
	report.Summary = s
	return report, nil
}

// instrumentPerformances computes every instrument traded before the end of
// the period, in parallel.
func instrumentPerformances(trades []Trade, cashflows []Cashflow, dates []date.Date, v Valuations, base string) ([]InstrumentPerformance, error) {
	end := dates[len(dates)-1]
	var symbols []string
	for _, t := range trades {
		if !t.Date.After(end) {
			symbols = append(symbols, t.Symbol)
		}
	}
	slices.Sort(symbols)
	symbols = slices.Compact(symbols)

	res := make([]InstrumentPerformance, len(symbols))
	var g errgroup.Group
	for i, symbol := range symbols {
		g.Go(func() error {
			var ts []Trade
			for _, t := range trades {
				if t.Symbol == symbol {
					ts = append(ts, t)
				}
			}
			var cs []Cashflow
			for _, c := range cashflows {
				if c.Symbol == symbol && (c.Type == Dividend || c.Type == Fee) {
					cs = append(cs, c)
				}
			}
			j, err := NewJournal(ts, cs)
			if err != nil {
				return err
			}
			res[i], err = instrumentPerformance(symbol, j, dates, v, base)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// instrumentPerformance replays the journal of a single instrument. Its flows
// are seen from the instrument: buys and fees come in, sells and dividends go
// out.
func instrumentPerformance(symbol string, j *Journal, dates []date.Date, v Valuations, base string) (InstrumentPerformance, error) {
	r := date.NewRange(dates[0], dates[len(dates)-1])
	boundaries := date.Unique(append(slices.Clone(dates), j.Dates(r)...))
	zero := M(0, base)
	ip := InstrumentPerformance{
		Symbol:      symbol,
		Value:       zero,
		NetInvested: zero,
		Realized:    zero,
		Unrealized:  zero,
		Dividends:   zero,
		Fees:        zero,
	}
	pos := newPositions()
	points := make([]ValuePoint, 0, len(boundaries))
	next := 0
	for _, on := range boundaries {
		net := zero
		for ; next < len(j.events) && !j.events[next].date().After(on); next++ {
			f, err := ip.apply(pos, j.events[next], v.Rates, base)
			if err != nil {
				return InstrumentPerformance{}, err
			}
			net = net.Add(f)
		}
		value := zero
		if q := pos.quantity(symbol); !q.IsZero() {
			var err error
			if value, err = marketValue(q, symbol, v.Prices, v.Rates, base, on); err != nil {
				return InstrumentPerformance{}, err
			}
		}
		points = append(points, ValuePoint{Date: on, Securities: value, Cash: zero, Total: value, Flow: net})
	}
	ip.TWR, ip.Periods = TimeWeightedReturn(points)
	ip.Value = points[len(points)-1].Total

	if h, ok := pos.held[symbol]; ok {
		ip.Quantity = h.Quantity
		ip.AverageCost = h.AverageCost
		cost, err := v.Rates.Convert(h.CostBasis(), base, r.To)
		if err != nil {
			return InstrumentPerformance{}, err
		}
		ip.Unrealized = ip.Value.Sub(cost)
	}
	return ip, nil
}

// apply replays one event of the instrument and returns its flow, in base.
func (ip *InstrumentPerformance) apply(pos *positions, e event, rates *FxTable, base string) (Money, error) {
	switch e := e.(type) {
	case settle:
		gain, err := pos.apply(e.trade)
		if err != nil {
			return Money{}, err
		}
		gross, err := rates.Convert(e.trade.GrossAmount(), base, e.trade.Date)
		if err != nil {
			return Money{}, err
		}
		if e.trade.Side == Buy {
			ip.NetInvested = ip.NetInvested.Add(gross)
			return gross, nil
		}
		g, err := rates.Convert(gain, base, e.trade.Date)
		if err != nil {
			return Money{}, err
		}
		ip.Realized = ip.Realized.Add(g)
		ip.NetInvested = ip.NetInvested.Sub(gross)
		return gross.Neg(), nil
	case creditCash:
		d, err := rates.Convert(e.amount, base, e.on)
		if err != nil {
			return Money{}, err
		}
		ip.Dividends = ip.Dividends.Add(d)
		return d.Neg(), nil
	case debitCash:
		f, err := rates.Convert(e.amount, base, e.on)
		if err != nil {
			return Money{}, err
		}
		ip.Fees = ip.Fees.Add(f)
		return f, nil
	}
	return M(0, base), nil
}

package folio

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// Weights of the implementation score. They are fixed so that rankings stay
// reproducible.
const (
	WeightTarget        = 0.40
	WeightLiquidity     = 0.30
	WeightCost          = 0.20
	WeightAccessibility = 0.10

	LiquidityCap    = 1e9 // AUM above which an instrument is fully liquid
	AccessiblePrice = 500 // share price under which an instrument is accessible
)

// Ranked is an instrument scored for a first funding.
type Ranked struct {
	Rank          int // starts at 1
	Symbol        string
	Name          string
	TargetPct     float64
	Liquidity     float64 // min(AUM/LiquidityCap, 1)
	Cost          float64 // max(0, 1 − expense ratio/2)
	Accessibility float64 // 1 when the price is under AccessiblePrice
	Score         float64
}

// PrioritizeImplementation ranks the targets of a plan by decreasing score,
// then by decreasing target, then by symbol.
//
// Every target must have metadata and a current price: the ranking is never
// computed on partial information.
func PrioritizeImplementation(plan TargetPlan, instruments []Instrument) ([]Ranked, error) {
	meta := make(map[string]Instrument, len(instruments))
	for _, i := range instruments {
		meta[i.Symbol] = i
	}

	res := make([]Ranked, 0, len(plan.Targets))
	for _, t := range plan.Targets {
		i, ok := meta[t.Symbol]
		if !ok {
			return nil, fmt.Errorf("cannot rank %s: %w", t.Symbol, ErrUnknownInstrument)
		}
		if !i.Price.IsPositive() {
			return nil, fmt.Errorf("cannot rank %s: %w", t.Symbol, &NoPriceError{Symbol: t.Symbol})
		}
		r := Ranked{
			Symbol:    t.Symbol,
			Name:      i.Name,
			TargetPct: t.TargetPct,
			Liquidity: min(i.AUM.InexactFloat64()/LiquidityCap, 1),
			Cost:      max(0, 1-i.ExpenseRatio.InexactFloat64()/2),
		}
		if i.Price.Value().LessThan(decimal.NewFromInt(AccessiblePrice)) {
			r.Accessibility = 1
		}
		r.Score = WeightTarget*t.TargetPct/100 +
			WeightLiquidity*r.Liquidity +
			WeightCost*r.Cost +
			WeightAccessibility*r.Accessibility
		res = append(res, r)
	}

	slices.SortStableFunc(res, func(a, b Ranked) int {
		if x := cmp.Compare(b.Score, a.Score); x != 0 {
			return x
		}
		if x := cmp.Compare(b.TargetPct, a.TargetPct); x != 0 {
			return x
		}
		return cmp.Compare(a.Symbol, b.Symbol)
	})
	for i := range res {
		res[i].Rank = i + 1
	}
	return res, nil
}

package folio

import (
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/etnz/folio/date"
)

// Status is the classification of a deviation from the target.
type Status int

const (
	StatusOK        Status = iota // within the lower band
	StatusAttention               // within the upper band
	StatusAction                  // beyond the upper band
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusAttention:
		return "ATTENTION"
	case StatusAction:
		return "ACTION"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

func (s Status) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// Classify returns the status of a deviation (in percentage points) against
// its bands.
func Classify(deviation, lower, upper float64) Status {
	d := math.Abs(deviation)
	switch {
	case d <= lower:
		return StatusOK
	case d <= upper:
		return StatusAttention
	default:
		return StatusAction
	}
}

// AllocationStatus is the comparison of one instrument against its target.
type AllocationStatus struct {
	Symbol     string
	Quantity   Quantity
	Price      Money   // in the instrument currency, zero when unknown
	PriceBase  Money   // Price converted into the reporting currency
	Value      Money   // in the reporting currency
	CurrentPct float64 // share of the portfolio, in percent
	TargetPct  float64
	Deviation  float64 // CurrentPct − TargetPct, in percentage points
	BandLower  float64
	BandUpper  float64
	Status     Status
	Targeted   bool // false for holdings the plan does not mention
}

// Comparison is the allocation of a portfolio against a target plan.
type Comparison struct {
	On      date.Date
	Total   Money // in the reporting currency
	Version int   // of the target plan
	Items   []AllocationStatus
}

// CompareAllocation compares holdings valued by valuation against the plan.
//
// Every target appears, held or not, and so does every holding. Holdings the
// plan does not mention get a zero target and zero bands. Items are sorted by
// decreasing absolute deviation, then by decreasing target, then by symbol.
func CompareAllocation(holdings map[string]Holding, plan TargetPlan, prices map[string]Money, valuation PortfolioValuation, rates *FxTable) (*Comparison, error) {
	base, on := valuation.Base, valuation.On
	c := &Comparison{On: on, Total: valuation.Total, Version: plan.Version}

	symbols := slices.Collect(maps.Keys(holdings))
	for _, t := range plan.Targets {
		symbols = append(symbols, t.Symbol)
	}
	slices.Sort(symbols)
	symbols = slices.Compact(symbols)

	for _, symbol := range symbols {
		item := AllocationStatus{
			Symbol:    symbol,
			Price:     Money{},
			PriceBase: M(0, base),
			Value:     M(0, base),
		}
		if t, ok := plan.Target(symbol); ok {
			item.Targeted = true
			item.TargetPct, item.BandLower, item.BandUpper = t.TargetPct, t.BandLower, t.BandUpper
		}
		if price, ok := prices[symbol]; ok {
			pb, err := rates.Convert(price, base, on)
			if err != nil {
				return nil, err
			}
			item.Price, item.PriceBase = price, pb
		}
		if h, ok := holdings[symbol]; ok {
			item.Quantity = h.Quantity
			if v, ok := valuation.Values[symbol]; ok {
				item.Value = v
			} else {
				v, err := holdingValue(h.Quantity, symbol, prices, rates, base, on)
				if err != nil {
					return nil, err
				}
				item.Value = v
			}
		}
		if valuation.Total.IsPositive() {
			item.CurrentPct = item.Value.Value().Mul(newDecimal(100)).Div(valuation.Total.Value()).InexactFloat64()
		}
		item.Deviation = item.CurrentPct - item.TargetPct
		item.Status = Classify(item.Deviation, item.BandLower, item.BandUpper)
		c.Items = append(c.Items, item)
	}

	slices.SortStableFunc(c.Items, func(a, b AllocationStatus) int {
		if x := cmp.Compare(math.Abs(b.Deviation), math.Abs(a.Deviation)); x != 0 {
			return x
		}
		if x := cmp.Compare(b.TargetPct, a.TargetPct); x != 0 {
			return x
		}
		return cmp.Compare(a.Symbol, b.Symbol)
	})
	return c, nil
}

// Item returns the status of a symbol.
func (c *Comparison) Item(symbol string) (AllocationStatus, bool) {
	for _, it := range c.Items {
		if it.Symbol == symbol {
			return it, true
		}
	}
	return AllocationStatus{}, false
}

package folio

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/shopspring/decimal"
)

// Purchase is the part of a contribution that goes to one instrument.
type Purchase struct {
	Symbol       string
	Amount       Money    // in the reporting currency
	Shares       Quantity // Amount / PriceBase, never rounded
	PriceBase    Money
	TargetPct    float64
	CurrentPct   float64
	ProjectedPct float64 // share of the portfolio once the purchase is done
	Priority     float64 // |deviation| × share of the contribution × 100
}

// Allocation splits a contribution across the instruments of a comparison.
type Allocation struct {
	Contribution Money
	Total        Money // portfolio value once the contribution is invested
	Purchases    []Purchase
	Unallocated  Money
}

// AllocateContribution distributes amount so that the portfolio moves toward
// its targets, without ever selling.
//
// Each instrument gets its gap to target computed on the new total, and gaps
// are scaled to the contribution. The purchases and the unallocated amount
// always sum up exactly to the contribution: any rounding residue goes to the
// largest purchase. When no instrument is below its target the whole amount
// stays unallocated.
func AllocateContribution(amount Money, c *Comparison) (*Allocation, error) {
	base := c.Total.Currency()
	if amount.Currency() != base {
		return nil, fmt.Errorf("contribution in %s cannot be allocated to a portfolio valued in %s", amount.Currency(), base)
	}
	if !amount.IsPositive() {
		return nil, errors.New("contribution must be strictly positive")
	}
	amt := amount.Value()
	newTotal := c.Total.Value().Add(amt)
	hundred := decimal.NewFromInt(100)

	raws := make([]decimal.Decimal, len(c.Items))
	totalRaw := decimal.Zero
	for i, it := range c.Items {
		target := decimal.NewFromFloat(it.TargetPct).Div(hundred).Mul(newTotal)
		raws[i] = decimal.Max(decimal.Zero, target.Sub(it.Value.Value()))
		totalRaw = totalRaw.Add(raws[i])
	}

	a := &Allocation{
		Contribution: amount,
		Total:        M(newTotal, base),
		Unallocated:  M(0, base),
	}
	if totalRaw.IsZero() {
		a.Unallocated = amount
		return a, nil
	}

	purchases := make([]decimal.Decimal, len(c.Items))
	allocated, largest := decimal.Zero, -1
	for i, raw := range raws {
		purchases[i] = raw.Mul(amt).Div(totalRaw)
		allocated = allocated.Add(purchases[i])
		if raw.IsPositive() && (largest < 0 || purchases[i].GreaterThan(purchases[largest])) {
			largest = i
		}
	}
	purchases[largest] = purchases[largest].Add(amt.Sub(allocated))

	for i, it := range c.Items {
		p := purchases[i]
		if !p.IsPositive() {
			continue
		}
		if !it.PriceBase.IsPositive() {
			return nil, &NoPriceError{Symbol: it.Symbol, Date: c.On}
		}
		buy := M(p, base)
		a.Purchases = append(a.Purchases, Purchase{
			Symbol:       it.Symbol,
			Amount:       buy,
			Shares:       buy.DivPrice(it.PriceBase),
			PriceBase:    it.PriceBase,
			TargetPct:    it.TargetPct,
			CurrentPct:   it.CurrentPct,
			ProjectedPct: it.Value.Value().Add(p).Mul(hundred).Div(newTotal).InexactFloat64(),
			Priority:     math.Abs(it.Deviation) * p.Div(amt).InexactFloat64() * 100,
		})
	}
	slices.SortStableFunc(a.Purchases, func(x, y Purchase) int {
		if r := cmp.Compare(y.Priority, x.Priority); r != 0 {
			return r
		}
		return cmp.Compare(x.Symbol, y.Symbol)
	})
	return a, nil
}

// Allocated returns the sum of the purchases.
func (a *Allocation) Allocated() Money {
	total := M(0, a.Contribution.Currency())
	for _, p := range a.Purchases {
		total = total.Add(p.Amount)
	}
	return total
}

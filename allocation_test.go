package folio

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		deviation float64
		want      Status
	}{
		{0, StatusOK},
		{5, StatusOK},
		{-5, StatusOK},
		{5.01, StatusAttention},
		{-7, StatusAttention},
		{10, StatusAttention},
		{10.01, StatusAction},
		{-60, StatusAction},
	}
	for _, tt := range tests {
		if got := Classify(tt.deviation, 5, 10); got != tt.want {
			t.Errorf("Classify(%g, 5, 10) = %v, want %v", tt.deviation, got, tt.want)
		}
	}
}

func TestClassify_Monotonic(t *testing.T) {
	bands := [][2]float64{{0, 0}, {1, 2}, {5, 10}, {3, 3}}
	for _, b := range bands {
		prev := StatusOK
		for d := 0.0; d <= 30; d += 0.25 {
			got := Classify(d, b[0], b[1])
			if got < prev {
				t.Errorf("bands %v: status moved back from %v to %v at %g", b, prev, got, d)
			}
			if neg := Classify(-d, b[0], b[1]); neg != got {
				t.Errorf("bands %v: Classify(%g) = %v but Classify(%g) = %v", b, d, got, -d, neg)
			}
			prev = got
		}
	}
}

// abPortfolio is worth 10,000 USD split 50/50 between A and B, against 60/40 targets.
func abPortfolio(t *testing.T) (map[string]Holding, TargetPlan, map[string]Money, PortfolioValuation) {
	t.Helper()
	holdings, err := ProjectHoldings([]Trade{
		NewBuy(day("2024-01-01"), "A", Q(50), USD(100)),
		NewBuy(day("2024-01-01"), "B", Q(50), USD(100)),
	}, day("2024-06-01"))
	if err != nil {
		t.Fatalf("ProjectHoldings() error = %v", err)
	}
	plan := TargetPlan{Version: 1, Targets: []TargetAllocation{
		{Symbol: "A", TargetPct: 60, BandLower: 5, BandUpper: 10},
		{Symbol: "B", TargetPct: 40, BandLower: 5, BandUpper: 10},
	}}
	prices := map[string]Money{"A": USD(100), "B": USD(100)}
	v, err := Valuate(holdings, prices, nil, "USD", day("2024-06-01"))
	if err != nil {
		t.Fatalf("Valuate() error = %v", err)
	}
	return holdings, plan, prices, v
}

func TestCompareAllocation(t *testing.T) {
	holdings, plan, prices, v := abPortfolio(t)
	if got, want := v.Total, USD(10000); !got.Equal(want) {
		t.Fatalf("Valuate() total = %v, want %v", got, want)
	}

	c, err := CompareAllocation(holdings, plan, prices, v, nil)
	if err != nil {
		t.Fatalf("CompareAllocation() error = %v", err)
	}
	want := []struct {
		symbol    string
		current   float64
		deviation float64
		status    Status
	}{
		// same |deviation|, the larger target comes first.
		{"A", 50, -10, StatusAttention},
		{"B", 50, 10, StatusAttention},
	}
	if len(c.Items) != len(want) {
		t.Fatalf("len(Items) = %d, want %d", len(c.Items), len(want))
	}
	for i, w := range want {
		it := c.Items[i]
		if it.Symbol != w.symbol || it.CurrentPct != w.current || it.Deviation != w.deviation || it.Status != w.status {
			t.Errorf("Items[%d] = %s %g%% %+g %v, want %s %g%% %+g %v", i, it.Symbol, it.CurrentPct, it.Deviation, it.Status, w.symbol, w.current, w.deviation, w.status)
		}
	}
}

func TestCompareAllocation_Untargeted(t *testing.T) {
	holdings, plan, prices, _ := abPortfolio(t)
	more, err := ProjectHoldings([]Trade{NewBuy(day("2024-01-01"), "C", Q(1), USD(1000))}, day("2024-06-01"))
	if err != nil {
		t.Fatalf("ProjectHoldings() error = %v", err)
	}
	holdings["C"] = more["C"]
	prices["C"] = USD(1000)
	v, err := Valuate(holdings, prices, nil, "USD", day("2024-06-01"))
	if err != nil {
		t.Fatalf("Valuate() error = %v", err)
	}

	c, err := CompareAllocation(holdings, plan, prices, v, nil)
	if err != nil {
		t.Fatalf("CompareAllocation() error = %v", err)
	}
	it, ok := c.Item("C")
	if !ok {
		t.Fatalf("untargeted holding C is missing")
	}
	if it.Targeted || it.TargetPct != 0 || it.BandLower != 0 || it.BandUpper != 0 {
		t.Errorf("C = %+v, want an untargeted item with zero target and bands", it)
	}
	if it.Status != StatusAction {
		t.Errorf("C status = %v, want %v", it.Status, StatusAction)
	}
}

func TestCompareAllocation_Empty(t *testing.T) {
	plan := TargetPlan{Targets: []TargetAllocation{
		{Symbol: "A", TargetPct: 60, BandLower: 5, BandUpper: 10},
		{Symbol: "B", TargetPct: 40, BandLower: 50, BandUpper: 50},
	}}
	v, err := Valuate(nil, nil, nil, "USD", day("2024-06-01"))
	if err != nil {
		t.Fatalf("Valuate() error = %v", err)
	}
	c, err := CompareAllocation(nil, plan, map[string]Money{"A": USD(10)}, v, nil)
	if err != nil {
		t.Fatalf("CompareAllocation() error = %v", err)
	}
	for _, it := range c.Items {
		if it.CurrentPct != 0 {
			t.Errorf("%s current = %g, want 0", it.Symbol, it.CurrentPct)
		}
	}
	if a, _ := c.Item("A"); a.Status != StatusAction || !a.PriceBase.Equal(USD(10)) {
		t.Errorf("A = %v at %v, want ACTION at 10 USD", a.Status, a.PriceBase)
	}
	if b, _ := c.Item("B"); b.Status != StatusOK {
		t.Errorf("B = %v, want OK within its 50 points band", b.Status)
	}
}

func TestCompareAllocation_Currency(t *testing.T) {
	holdings, err := ProjectHoldings([]Trade{
		NewBuy(day("2024-01-01"), "A", Q(10), USD(100)),
		NewBuy(day("2024-01-01"), "B", Q(10), EUR(100)),
	}, day("2024-06-01"))
	if err != nil {
		t.Fatalf("ProjectHoldings() error = %v", err)
	}
	rates := fxTable(t, rate("EUR", "USD", "2024-01-01", 1.5))
	prices := map[string]Money{"A": USD(100), "B": EUR(100)}
	plan := TargetPlan{Targets: []TargetAllocation{{Symbol: "A", TargetPct: 50}, {Symbol: "B", TargetPct: 50}}}

	v, err := Valuate(holdings, prices, rates, "USD", day("2024-06-01"))
	if err != nil {
		t.Fatalf("Valuate() error = %v", err)
	}
	if got, want := v.Total, USD(2500); !got.Equal(want) {
		t.Errorf("Valuate() total = %v, want %v", got, want)
	}
	c, err := CompareAllocation(holdings, plan, prices, v, rates)
	if err != nil {
		t.Fatalf("CompareAllocation() error = %v", err)
	}
	b, _ := c.Item("B")
	if !b.Price.Equal(EUR(100)) || !b.PriceBase.Equal(USD(150)) {
		t.Errorf("B prices = %v, %v, want 100 EUR and 150 USD", b.Price, b.PriceBase)
	}
	if b.CurrentPct != 60 {
		t.Errorf("B current = %g, want 60", b.CurrentPct)
	}
}

func TestValuate_NoPrice(t *testing.T) {
	holdings, err := ProjectHoldings([]Trade{NewBuy(day("2024-01-01"), "A", Q(10), USD(100))}, day("2024-06-01"))
	if err != nil {
		t.Fatalf("ProjectHoldings() error = %v", err)
	}
	if _, err := Valuate(holdings, nil, nil, "USD", day("2024-06-01")); !errors.Is(err, ErrNoPriceAvailable) {
		t.Errorf("Valuate() error = %v, want %v", err, ErrNoPriceAvailable)
	}
}

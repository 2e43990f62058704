package folio

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func instrument(symbol string, aum, er float64, price Money) Instrument {
	return Instrument{
		Symbol:       symbol,
		Name:         symbol + " fund",
		AUM:          decimal.NewFromFloat(aum),
		ExpenseRatio: decimal.NewFromFloat(er),
		Price:        price,
	}
}

func TestPrioritizeImplementation(t *testing.T) {
	plan := TargetPlan{Targets: []TargetAllocation{
		{Symbol: "SMALL", TargetPct: 10},
		{Symbol: "CORE", TargetPct: 50},
		{Symbol: "PRICEY", TargetPct: 40},
	}}
	instruments := []Instrument{
		instrument("CORE", 2e9, 0.002, USD(100)),
		instrument("PRICEY", 5e8, 0.004, USD(600)),
		instrument("SMALL", 1e8, 0.01, USD(20)),
	}
	got, err := PrioritizeImplementation(plan, instruments)
	if err != nil {
		t.Fatalf("PrioritizeImplementation() error = %v", err)
	}

	want := []struct {
		symbol string
		score  float64
	}{
		{"CORE", 0.4*0.5 + 0.3*1 + 0.2*0.999 + 0.1},
		{"PRICEY", 0.4*0.4 + 0.3*0.5 + 0.2*0.998},
		{"SMALL", 0.4*0.1 + 0.3*0.1 + 0.2*0.995 + 0.1},
	}
	if len(got) != len(want) {
		t.Fatalf("len(PrioritizeImplementation()) = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Symbol != w.symbol || math.Abs(got[i].Score-w.score) > 1e-12 {
			t.Errorf("rank %d = %s %g, want %s %g", i+1, got[i].Symbol, got[i].Score, w.symbol, w.score)
		}
		if got[i].Rank != i+1 {
			t.Errorf("%s Rank = %d, want %d", got[i].Symbol, got[i].Rank, i+1)
		}
	}
}

func TestPrioritizeImplementation_Ties(t *testing.T) {
	plan := TargetPlan{Targets: []TargetAllocation{
		{Symbol: "B", TargetPct: 50},
		{Symbol: "A", TargetPct: 50},
	}}
	instruments := []Instrument{
		instrument("A", 1e9, 0, USD(10)),
		instrument("B", 1e9, 0, USD(10)),
	}
	got, err := PrioritizeImplementation(plan, instruments)
	if err != nil {
		t.Fatalf("PrioritizeImplementation() error = %v", err)
	}
	if got[0].Symbol != "A" || got[1].Symbol != "B" {
		t.Errorf("order = %s, %s, want A, B", got[0].Symbol, got[1].Symbol)
	}
	if got[0].Score != got[1].Score {
		t.Errorf("scores = %g, %g, want a tie", got[0].Score, got[1].Score)
	}
}

func TestPrioritizeImplementation_Missing(t *testing.T) {
	plan := TargetPlan{Targets: []TargetAllocation{{Symbol: "A", TargetPct: 100}}}
	if _, err := PrioritizeImplementation(plan, nil); !errors.Is(err, ErrUnknownInstrument) {
		t.Errorf("PrioritizeImplementation() without metadata: error = %v, want %v", err, ErrUnknownInstrument)
	}
	noPrice := []Instrument{instrument("A", 1e9, 0.001, Money{})}
	if _, err := PrioritizeImplementation(plan, noPrice); !errors.Is(err, ErrNoPriceAvailable) {
		t.Errorf("PrioritizeImplementation() without price: error = %v, want %v", err, ErrNoPriceAvailable)
	}
}

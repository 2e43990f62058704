package folio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/etnz/folio/date"
)

// TargetSumTolerance is how far from 100 the sum of the targets may be.
const TargetSumTolerance = 0.01

// TargetAllocation is the target weight of one instrument, and its tolerance
// bands, all in percentage points.
type TargetAllocation struct {
	Symbol    string  `json:"symbol"`
	TargetPct float64 `json:"target"`
	BandLower float64 `json:"bandLower"`
	BandUpper float64 `json:"bandUpper"`
}

// TargetPlan is a versioned set of target allocations.
type TargetPlan struct {
	Version   int                `json:"version"`
	Effective date.Date          `json:"effective,omitzero"`
	Targets   []TargetAllocation `json:"targets"`
}

// Validate checks that targets sum up to 100 and that bands are consistent.
func (p TargetPlan) Validate() error {
	var errs error
	seen := make(map[string]bool, len(p.Targets))
	sum := 0.0
	for _, t := range p.Targets {
		if t.Symbol == "" {
			errs = errors.Join(errs, errors.New("target without symbol"))
		}
		if seen[t.Symbol] {
			errs = errors.Join(errs, fmt.Errorf("duplicate target for %s", t.Symbol))
		}
		seen[t.Symbol] = true
		if t.TargetPct < 0 || t.TargetPct > 100 {
			errs = errors.Join(errs, fmt.Errorf("target for %s must be within [0, 100], got %g", t.Symbol, t.TargetPct))
		}
		if t.BandLower < 0 || t.BandLower > t.BandUpper {
			errs = errors.Join(errs, fmt.Errorf("bands for %s must satisfy 0 <= lower <= upper, got %g and %g", t.Symbol, t.BandLower, t.BandUpper))
		}
		sum += t.TargetPct
	}
	if math.Abs(sum-100) > TargetSumTolerance {
		errs = errors.Join(errs, fmt.Errorf("targets must sum up to 100, got %g", sum))
	}
	if errs != nil {
		return fmt.Errorf("invalid target plan version %d: %w", p.Version, errs)
	}
	return nil
}

// Target returns the target of a symbol.
func (p TargetPlan) Target(symbol string) (TargetAllocation, bool) {
	for _, t := range p.Targets {
		if t.Symbol == symbol {
			return t, true
		}
	}
	return TargetAllocation{}, false
}

// DecodeTargetPlan reads and validates a JSON target plan.
func DecodeTargetPlan(r io.Reader) (TargetPlan, error) {
	var p TargetPlan
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return TargetPlan{}, fmt.Errorf("cannot decode target plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return TargetPlan{}, err
	}
	return p, nil
}

// EncodeTargetPlan writes the plan as indented JSON.
func EncodeTargetPlan(w io.Writer, p TargetPlan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

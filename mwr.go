package folio

import (
	"math"
)

// Bounds of the annual money-weighted rate, and stopping rules of the solver.
const (
	MWRLowerBound    = -0.9999
	MWRUpperBound    = 10.0
	MWRTolerance     = 1e-6
	MWRMaxIterations = 200
)

// timedFlow is an external flow t years after the start of the period.
type timedFlow struct {
	t      float64
	amount float64
}

// years converts a number of days into years.
func years(days int) float64 { return float64(days) / 365 }

// MoneyWeightedReturn returns the annual rate r such that
//
//	V_T(1+r)^(−T) − Σ F_i(1+r)^(−t_i) − V_0 = 0
//
// where T and t_i are the years elapsed at the end of the period and at the
// i-th flow. The rate is searched within [MWRLowerBound, MWRUpperBound].
// It returns the rate over the whole period, (1+r)^T − 1, and r.
//
// When every flow happens on the last day the closed form is used, and it
// agrees with TimeWeightedReturn.
func MoneyWeightedReturn(points []ValuePoint) (Percent, Percent, error) {
	if len(points) < 2 {
		return Undefined(), Undefined(), nil
	}
	first, last := points[0], points[len(points)-1]
	days := last.Date.Sub(first.Date)
	if days <= 0 {
		return Undefined(), Undefined(), nil
	}
	v0, vT := first.Total.AsFloat(), last.Total.AsFloat()

	var flows []timedFlow
	interior, terminal, nonzero := false, 0.0, v0 != 0 || vT != 0
	for _, p := range points[1:] {
		if p.Flow.IsZero() {
			continue
		}
		nonzero = true
		f := p.Flow.AsFloat()
		flows = append(flows, timedFlow{t: years(p.Date.Sub(first.Date)), amount: f})
		if p.Date == last.Date {
			terminal += f
		} else {
			interior = true
		}
	}
	if !nonzero {
		return Undefined(), Undefined(), nil
	}

	if !interior {
		if v0 == 0 {
			return Undefined(), Undefined(), nil
		}
		period := FromRatio((vT-terminal)/v0 - 1)
		return period, Annualize(period, days), nil
	}
	horizon := years(days)
	r, err := solveMWR(v0, vT, horizon, flows)
	if err != nil {
		return Undefined(), Undefined(), err
	}
	return FromRatio(math.Pow(1+r, horizon) - 1), FromRatio(r), nil
}

// npv is the equation solved for the annual rate r, and its derivative.
func npv(r, v0, vT, horizon float64, flows []timedFlow) (f, df float64) {
	g := 1 + r
	end := math.Pow(g, -horizon)
	f = vT*end - v0
	df = -horizon * vT * end / g
	for _, c := range flows {
		d := math.Pow(g, -c.t)
		f -= c.amount * d
		df += c.amount * c.t * d / g
	}
	return f, df
}

// solveMWR runs a Newton iteration kept inside a bracket, falling back to
// bisection whenever a step leaves the bracket.
func solveMWR(v0, vT, horizon float64, flows []timedFlow) (float64, error) {
	lo, hi := MWRLowerBound, MWRUpperBound
	flo, _ := npv(lo, v0, vT, horizon, flows)
	fhi, _ := npv(hi, v0, vT, horizon, flows)
	switch {
	case flo == 0:
		return lo, nil
	case fhi == 0:
		return hi, nil
	case math.Signbit(flo) == math.Signbit(fhi) || math.IsNaN(flo) || math.IsNaN(fhi):
		return 0, &ConvergenceError{Reason: "no sign change in the search interval"}
	}

	r := 0.0
	for i := 1; i <= MWRMaxIterations; i++ {
		f, df := npv(r, v0, vT, horizon, flows)
		if f == 0 {
			return r, nil
		}
		// shrink the bracket around the root.
		if math.Signbit(f) == math.Signbit(flo) {
			lo, flo = r, f
		} else {
			hi = r
		}
		next := r - f/df
		if df == 0 || math.IsNaN(next) || next <= lo || next >= hi {
			next = (lo + hi) / 2
		}
		if math.Abs(next-r) < MWRTolerance {
			return next, nil
		}
		r = next
	}
	return 0, &ConvergenceError{Iterations: MWRMaxIterations, Last: r, Reason: "tolerance not reached"}
}

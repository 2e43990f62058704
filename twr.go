package folio

import (
	"math"

	"github.com/etnz/folio/date"
	"github.com/montanaflynn/stats"
)

// SubPeriod is one link of a time-weighted return chain.
type SubPeriod struct {
	From, To date.Date
	Start    Money   // value at From
	End      Money   // value at To, after the flow
	Flow     Money   // net external flow in (From, To]
	Return   Percent // undefined when Skipped
	Skipped  bool    // the period started with nothing invested
}

// TimeWeightedReturn chains the returns of the sub-periods between
// consecutive points: r = (End − Flow − Start) / Start.
//
// A sub-period starting from a zero value carries no return and is skipped.
// The return is undefined when no sub-period could be computed.
func TimeWeightedReturn(points []ValuePoint) (Percent, []SubPeriod) {
	var periods []SubPeriod
	growth, linked := 1.0, 0
	for i := 1; i < len(points); i++ {
		start, end := points[i-1], points[i]
		p := SubPeriod{
			From:  start.Date,
			To:    end.Date,
			Start: start.Total,
			End:   end.Total,
			Flow:  end.Flow,
		}
		if start.Total.IsZero() {
			p.Skipped = true
			p.Return = Undefined()
		} else {
			r := end.Total.Sub(end.Flow).Sub(start.Total).Ratio(start.Total)
			p.Return = FromRatio(r)
			growth *= 1 + r
			linked++
		}
		periods = append(periods, p)
	}
	if linked == 0 {
		return Undefined(), periods
	}
	return FromRatio(growth - 1), periods
}

// Annualize converts a return over a number of days into a yearly rate.
func Annualize(r Percent, days int) Percent {
	if days <= 0 || !r.IsDefined() {
		return Undefined()
	}
	g := 1 + r.Ratio()
	if g <= 0 {
		return Undefined()
	}
	return FromRatio(math.Pow(g, 365/float64(days)) - 1)
}

// linkedReturns returns the ratios of the sub-periods that were not skipped.
func linkedReturns(periods []SubPeriod) []float64 {
	var res []float64
	for _, p := range periods {
		if !p.Skipped {
			res = append(res, p.Return.Ratio())
		}
	}
	return res
}

// Volatility is the sample standard deviation of the sub-period returns.
// It is undefined with less than two sub-periods.
func Volatility(periods []SubPeriod) Percent {
	returns := linkedReturns(periods)
	if len(returns) < 2 {
		return Undefined()
	}
	sd, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return Undefined()
	}
	return FromRatio(sd)
}

// MaxDrawdown is the largest peak to trough decline of the growth of one unit
// invested along the sub-periods. It is zero or negative.
func MaxDrawdown(periods []SubPeriod) Percent {
	returns := linkedReturns(periods)
	if len(returns) == 0 {
		return Undefined()
	}
	index, peak, worst := 1.0, 1.0, 0.0
	for _, r := range returns {
		index *= 1 + r
		peak = max(peak, index)
		worst = min(worst, index/peak-1)
	}
	return FromRatio(worst)
}

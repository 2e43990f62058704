package date

import (
	"fmt"
	"strings"
)

// Period is a calendar period used to build valuation calendars.
//
// Period implements flag.Value, so a command can declare it directly:
//
//	p := date.Monthly
//	f.Var(&p, "period", "valuation calendar")
type Period int

const (
	Daily Period = iota
	Weekly
	Monthly
	Quarterly
	Yearly
)

// periodNames maps every period to its adverb and its noun.
var periodNames = [...][2]string{
	Daily:     {"daily", "day"},
	Weekly:    {"weekly", "week"},
	Monthly:   {"monthly", "month"},
	Quarterly: {"quarterly", "quarter"},
	Yearly:    {"yearly", "year"},
}

func (p Period) String() string {
	if p < 0 || int(p) >= len(periodNames) {
		return fmt.Sprintf("Period(%d)", int(p))
	}
	return periodNames[p][0]
}

// ParsePeriod parses a period name. Case is ignored and nouns ("month") are
// accepted as well as adverbs ("monthly").
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, names := range periodNames {
		if s == names[0] || s == names[1] {
			return Period(p), nil
		}
	}
	return Daily, fmt.Errorf("unknown period %q, want one of daily, weekly, monthly, quarterly or yearly", s)
}

// Set implements flag.Value.
func (p *Period) Set(s string) error {
	v, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

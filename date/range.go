package date

import (
	"fmt"
	"iter"
	"time"
)

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// NewRange returns the range between two dates.
func NewRange(from, to Date) Range { return Range{From: from, To: to} }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns the number of days elapsed between From and To.
func (r Range) Days() int { return r.To.Sub(r.From) }

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }

// Ends returns an iterator over the last day of every period overlapping the range.
//
// The first value is always r.From and the last is always r.To, so the
// result can be used as a valuation calendar for the whole range.
func (r Range) Ends(p Period) iter.Seq[Date] {
	return func(yield func(Date) bool) {
		if r.To.Before(r.From) {
			return
		}
		if !yield(r.From) {
			return
		}
		for end := r.From.EndOf(p); end.Before(r.To); end = end.Add(1).EndOf(p) {
			if end == r.From {
				continue
			}
			if !yield(end) {
				return
			}
		}
		if r.To != r.From {
			yield(r.To)
		}
	}
}

// EndOf returns the date of end of a given period
func (d Date) EndOf(period Period) Date {
	switch period {
	case Daily:
		return d
	case Weekly:
		offset := int(7 - d.Weekday()) // time.Sunday = 0, ..., time.Saturday = 6
		for offset >= 7 {
			offset -= 7
		}
		return d.Add(offset)
	case Monthly:
		return New(d.Year(), d.Month()+1, 0)
	case Quarterly:
		quarter := (d.Month() - 1) / 3        // in [0..3]
		endMonth := time.Month(quarter*3 + 3) // in [1..12] hence the +3
		return New(d.Year(), endMonth+1, 0)   // last is next month on the day 0
	case Yearly:
		return New(d.Year()+1, time.January, 0)
	default:
		panic("unknown period")
	}
}

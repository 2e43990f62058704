// Package date provides a day-granularity Date, date ranges and period
// calendars, and History, a sorted date-indexed series with as-of lookups.
package date

import (
	"cmp"
	"encoding"
	"fmt"
	"time"
)

// Layout is the canonical representation of a Date (ISO-8601).
const Layout = "2006-01-02"

// lenientLayout also reads single digit months and days ("2025-7-1").
const lenientLayout = "2006-1-2"

const Day = 24 * time.Hour

// Date is a calendar day, without time zone.
//
// Dates are comparable with == and the zero Date is the "unset" value.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns the Date for year, month and day. Out of range values are
// normalized the way time.Date does: New(2024, 3, 0) is 2024-02-29.
func New(year int, month time.Month, day int) Date {
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return Date{y, m, d}
}

// Today returns the current local date.
func Today() Date { return New(time.Now().Date()) }

func (d Date) Year() int             { return d.y }
func (d Date) Month() time.Month     { return d.m }
func (d Date) Day() int              { return d.d }
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

// IsZero reports whether d is the unset Date.
func (d Date) IsZero() bool { return d == Date{} }

// time is midnight UTC of d, the same instant for equal dates.
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

func (d Date) String() string { return d.time().Format(Layout) }

// Compare returns -1, 0 or +1 whether d is before, equal or after x.
// It can be used with slices.SortFunc.
func (d Date) Compare(x Date) int {
	return cmp.Or(cmp.Compare(d.y, x.y), cmp.Compare(d.m, x.m), cmp.Compare(d.d, x.d))
}

func (d Date) Before(x Date) bool { return d.Compare(x) < 0 }
func (d Date) After(x Date) bool  { return d.Compare(x) > 0 }

// Add returns the date n days after d (before if n is negative).
func (d Date) Add(n int) Date { return New(d.y, d.m, d.d+n) }

// Sub returns the number of days from x to d.
func (d Date) Sub(x Date) int {
	// UTC midnights have no DST, every day is exactly 24h.
	return int(d.time().Sub(x.time()) / Day)
}

// Parse reads a date in the YYYY-MM-DD format. Single digit months and days
// are accepted.
func Parse(s string) (Date, error) {
	t, err := time.Parse(lenientLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", s, err)
	}
	return New(t.Date()), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// MarshalText encodes d as YYYY-MM-DD, so dates are JSON strings and can key
// JSON objects.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

var (
	_ encoding.TextMarshaler   = Date{}
	_ encoding.TextUnmarshaler = (*Date)(nil)
)

// Unique sorts dates in place and removes duplicates, returning the shortened slice.
func Unique(dates []Date) []Date {
	if len(dates) == 0 {
		return dates
	}
	sortDates(dates)
	out := dates[:1]
	for _, d := range dates[1:] {
		if d != out[len(out)-1] {
			out = append(out, d)
		}
	}
	return out
}

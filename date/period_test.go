package date

import (
	"slices"
	"testing"
	"time"
)

func TestEndOf(t *testing.T) {
	d := New(2025, time.September, 10) // a Wednesday
	testCases := []struct {
		period Period
		want   Date
	}{
		{Daily, d},
		{Weekly, New(2025, time.September, 14)},
		{Monthly, New(2025, time.September, 30)},
		{Quarterly, New(2025, time.September, 30)},
		{Yearly, New(2025, time.December, 31)},
	}
	for _, tc := range testCases {
		t.Run(tc.period.String(), func(t *testing.T) {
			if got := d.EndOf(tc.period); got != tc.want {
				t.Errorf("EndOf(%v) = %v, want %v", tc.period, got, tc.want)
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	for _, p := range []Period{Daily, Weekly, Monthly, Quarterly, Yearly} {
		got, err := ParsePeriod(p.String())
		if err != nil || got != p {
			t.Errorf("ParsePeriod(%q) = %v, %v", p.String(), got, err)
		}
	}
	if got, err := ParsePeriod(" Quarter "); err != nil || got != Quarterly {
		t.Errorf("ParsePeriod(Quarter) = %v, %v, want quarterly", got, err)
	}
	if _, err := ParsePeriod("fortnight"); err == nil {
		t.Error("ParsePeriod(fortnight) expected an error")
	}
	if got := Period(9).String(); got != "Period(9)" {
		t.Errorf("Period(9).String() = %q", got)
	}
}

func TestPeriod_Set(t *testing.T) {
	p := Monthly
	if err := p.Set("year"); err != nil || p != Yearly {
		t.Errorf("Set(year) = %v, period = %v, want yearly", err, p)
	}
	if err := p.Set("hourly"); err == nil || p != Yearly {
		t.Errorf("Set(hourly) = %v, period = %v, want an error and no change", err, p)
	}
}

func TestRangeEnds(t *testing.T) {
	testCases := []struct {
		name string
		r    Range
		p    Period
		want []Date
	}{
		{
			name: "monthly inside a quarter",
			r:    NewRange(New(2024, 1, 15), New(2024, 3, 10)),
			p:    Monthly,
			want: []Date{New(2024, 1, 15), New(2024, 1, 31), New(2024, 2, 29), New(2024, 3, 10)},
		},
		{
			name: "range ending on a period end",
			r:    NewRange(New(2024, 1, 1), New(2024, 2, 29)),
			p:    Monthly,
			want: []Date{New(2024, 1, 1), New(2024, 1, 31), New(2024, 2, 29)},
		},
		{
			name: "starting on a period end",
			r:    NewRange(New(2024, 1, 31), New(2024, 2, 10)),
			p:    Monthly,
			want: []Date{New(2024, 1, 31), New(2024, 2, 10)},
		},
		{
			name: "single day",
			r:    NewRange(New(2024, 1, 1), New(2024, 1, 1)),
			p:    Yearly,
			want: []Date{New(2024, 1, 1)},
		},
		{
			name: "empty",
			r:    NewRange(New(2024, 1, 2), New(2024, 1, 1)),
			p:    Daily,
			want: nil,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := slices.Collect(tc.r.Ends(tc.p))
			if !slices.Equal(got, tc.want) {
				t.Errorf("Ends() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRangeContains(t *testing.T) {
	r := NewRange(New(2024, 1, 1), New(2024, 1, 31))
	if !r.Contains(New(2024, 1, 1)) || !r.Contains(New(2024, 1, 31)) {
		t.Error("Contains() must include boundaries")
	}
	if r.Contains(New(2024, 2, 1)) {
		t.Error("Contains(2024-02-01) = true, want false")
	}
	if got := r.Days(); got != 30 {
		t.Errorf("Days() = %d, want 30", got)
	}
}

package folio

import "testing"

func TestTimeWeightedReturn(t *testing.T) {
	tests := []struct {
		name    string
		points  []ValuePoint
		want    Percent
		skipped int
	}{
		{
			name:   "no points",
			points: nil,
			want:   Undefined(),
		},
		{
			name:   "chained",
			points: []ValuePoint{point("2024-01-01", 100, 100), point("2024-02-01", 110, 0), point("2024-03-01", 99, 0)},
			want:   Percent(-1),
		},
		{
			name:   "flow removed from the return",
			points: []ValuePoint{point("2024-01-01", 100, 0), point("2024-02-01", 210, 100)},
			want:   Percent(10),
		},
		{
			name:    "zero start is skipped",
			points:  []ValuePoint{point("2024-01-01", 0, 0), point("2024-02-01", 100, 100), point("2024-03-01", 120, 0)},
			want:    Percent(20),
			skipped: 1,
		},
		{
			name:    "nothing invested",
			points:  []ValuePoint{point("2024-01-01", 0, 0), point("2024-02-01", 0, 0)},
			want:    Undefined(),
			skipped: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, periods := TimeWeightedReturn(tt.points)
			if !got.Equal(tt.want) {
				t.Errorf("TimeWeightedReturn() = %v, want %v", got, tt.want)
			}
			skipped := 0
			for _, p := range periods {
				if p.Skipped {
					skipped++
				}
			}
			if skipped != tt.skipped {
				t.Errorf("skipped periods = %d, want %d", skipped, tt.skipped)
			}
		})
	}
}

func TestAnnualize(t *testing.T) {
	tests := []struct {
		r    Percent
		days int
		want Percent
	}{
		{Percent(21), 365, Percent(21)},
		{Percent(21), 730, Percent(10)},
		{Percent(10), 0, Undefined()},
		{Percent(-100), 365, Undefined()},
		{Undefined(), 365, Undefined()},
	}
	for _, tt := range tests {
		if got := Annualize(tt.r, tt.days); !got.Equal(tt.want) {
			t.Errorf("Annualize(%v, %d) = %v, want %v", tt.r, tt.days, got, tt.want)
		}
	}
}

func periods(returns ...float64) []SubPeriod {
	res := make([]SubPeriod, len(returns))
	for i, r := range returns {
		res[i] = SubPeriod{Return: FromRatio(r)}
	}
	return res
}

func TestVolatility(t *testing.T) {
	if got := Volatility(periods(0.1)); got.IsDefined() {
		t.Errorf("Volatility() of a single period = %v, want undefined", got)
	}
	// sample standard deviation of 1% and 3%.
	if got, want := Volatility(periods(0.01, 0.03)), Percent(1.4142); !got.Equal(want) {
		t.Errorf("Volatility() = %v, want %v", got, want)
	}
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name    string
		returns []float64
		want    Percent
	}{
		{"rising", []float64{0.1, 0.05}, Percent(0)},
		{"trough", []float64{0.1, -0.2, 0.05}, Percent(-20)},
		{"two troughs", []float64{-0.1, 0.5, -0.3, -0.1}, Percent(-37)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxDrawdown(periods(tt.returns...)); !got.Equal(tt.want) {
				t.Errorf("MaxDrawdown() = %v, want %v", got, tt.want)
			}
		})
	}
}

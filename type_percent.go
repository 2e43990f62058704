package folio

import (
	"encoding/json"
	"fmt"
	"math"
)

// Percent is a ratio expressed in percent (5 means 5%).
//
// NaN is the undefined return: a ratio whose denominator is zero. It is
// printed as "n/a" and marshalled as a JSON null.
type Percent float64

// Undefined returns the undefined Percent.
func Undefined() Percent { return Percent(math.NaN()) }

func nan() float64 { return math.NaN() }

// FromRatio converts a ratio (0.05) into a Percent (5%).
func FromRatio(r float64) Percent { return Percent(100 * r) }

// Ratio returns the value as a ratio (0.05 for 5%).
func (p Percent) Ratio() float64 { return float64(p) / 100 }

// IsDefined is false for the undefined return.
func (p Percent) IsDefined() bool { return !math.IsNaN(float64(p)) }

func (p Percent) Equal(q Percent) bool {
	if !p.IsDefined() || !q.IsDefined() {
		return p.IsDefined() == q.IsDefined()
	}
	// it has to be compared with some precision
	const precision = 0.0001
	return math.Abs(float64(p-q)) < precision
}

func (p Percent) String() string {
	if !p.IsDefined() {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	if !p.IsDefined() {
		return "n/a"
	}
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" || res == "-0.00%" {
		return "-"
	}
	return res
}

func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.IsDefined() || math.IsInf(float64(p), 0) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(p))
}

func (p *Percent) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = Undefined()
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*p = Percent(f)
	return nil
}

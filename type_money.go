package folio

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are JSON numbers, never strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Money is an exact amount in major units ("12.5" is twelve dollars fifty)
// of an ISO 4217 currency.
//
// The zero Money has no currency; it adopts the currency of whatever it is
// added to. Mixing two different currencies in arithmetic panics: amounts
// are always converted with an FxTable first.
type Money struct {
	value decimal.Decimal
	cur   string
}

// M returns the amount v in currency.
func M[T number](v T, currency string) Money { return Money{value: newDecimal(v), cur: currency} }

// ValidateCurrency checks that code is a known upper case ISO 4217 code.
func ValidateCurrency(code string) error {
	switch {
	case code == "":
		return errors.New("currency is missing")
	case code != strings.ToUpper(code), money.GetCurrency(code) == nil:
		return fmt.Errorf("unknown currency %q", code)
	}
	return nil
}

// String formats m with its currency symbol and fraction digits, "$1,234.50".
func (m Money) String() string {
	c := money.New(0, m.cur).Currency()
	minor := m.value.Shift(int32(c.Fraction)).Round(0)
	return c.Formatter().Format(minor.IntPart())
}

func (m Money) Currency() string       { return m.cur }
func (m Money) Value() decimal.Decimal { return m.value }
func (m Money) IsZero() bool           { return m.value.IsZero() }
func (m Money) IsPositive() bool       { return m.value.IsPositive() }
func (m Money) IsNegative() bool       { return m.value.IsNegative() }
func (m Money) Neg() Money             { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money             { return Money{value: m.value.Abs(), cur: m.cur} }

// Equal reports whether m and n are the same amount in the same currency.
func (m Money) Equal(n Money) bool { return m.cur == n.cur && m.value.Equal(n.value) }

func (m Money) LessThan(n Money) bool    { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool { return m.value.GreaterThan(n.value) }

// Mul and Div scale m by a quantity: price × shares, cost / shares.
func (m Money) Mul(q Quantity) Money { return Money{value: m.value.Mul(q.value), cur: m.cur} }
func (m Money) Div(q Quantity) Money { return Money{value: m.value.Div(q.value), cur: m.cur} }

// DivPrice returns how many shares of price m buys.
func (m Money) DivPrice(price Money) Quantity { return Quantity{value: m.value.Div(price.value)} }

func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: common(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: common(m, n)} }

// Ratio returns m/n as a float, NaN when n is zero.
func (m Money) Ratio(n Money) float64 {
	common(m, n)
	if n.IsZero() {
		return nan()
	}
	return m.value.Div(n.value).InexactFloat64()
}

// AsFloat is the approximate value of m. It is only used in return ratios,
// never in accounting.
func (m Money) AsFloat() float64 { return m.value.InexactFloat64() }

// SignedString is String with an explicit "+" on gains. Zero is "-".
func (m Money) SignedString() string {
	switch {
	case m.value.IsZero():
		return "-"
	case m.value.IsPositive():
		return "+" + m.String()
	}
	return m.String()
}

// common returns the currency of an operation between a and b.
func common(a, b Money) string {
	switch {
	case a.cur == "":
		return b.cur
	case b.cur == "", a.cur == b.cur:
		return a.cur
	}
	panic(fmt.Sprintf("currency mismatch: %s and %s", a.cur, b.cur))
}

type jsonMoney struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonMoney{Amount: m.value, Currency: m.cur})
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var j jsonMoney
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	*m = Money{value: j.Amount, cur: j.Currency}
	return nil
}

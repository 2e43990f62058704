package folio

import (
	"errors"
	"fmt"

	"github.com/etnz/folio/date"
	"github.com/google/uuid"
)

// Side of a trade.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Trade is an immutable buy or sell of an instrument.
type Trade struct {
	ID       string
	Symbol   string
	Side     Side
	Quantity Quantity
	Price    Money // price per share, in the instrument currency
	Date     date.Date
	Gross    Money // total amount paid or received, Price × Quantity when not recorded
}

// NewBuy returns a BUY trade with a fresh ID and a gross amount of price × quantity.
func NewBuy(on date.Date, symbol string, quantity Quantity, price Money) Trade {
	return newTrade(on, symbol, Buy, quantity, price)
}

// NewSell returns a SELL trade with a fresh ID and a gross amount of price × quantity.
func NewSell(on date.Date, symbol string, quantity Quantity, price Money) Trade {
	return newTrade(on, symbol, Sell, quantity, price)
}

func newTrade(on date.Date, symbol string, side Side, quantity Quantity, price Money) Trade {
	return Trade{
		ID:       uuid.NewString(),
		Symbol:   symbol,
		Side:     side,
		Quantity: quantity,
		Price:    price,
		Date:     on,
		Gross:    price.Mul(quantity),
	}
}

// Currency returns the currency the trade was settled in.
func (t Trade) Currency() string { return t.Price.Currency() }

// GrossAmount returns the recorded gross amount, or Price × Quantity if none.
func (t Trade) GrossAmount() Money {
	if t.Gross.Currency() == "" && t.Gross.IsZero() {
		return t.Price.Mul(t.Quantity)
	}
	return t.Gross
}

// Validate returns all the reasons why the trade cannot be replayed.
func (t Trade) Validate() error {
	var errs error
	if t.Symbol == "" {
		errs = errors.Join(errs, errors.New("trade symbol is missing"))
	}
	if t.Side != Buy && t.Side != Sell {
		errs = errors.Join(errs, fmt.Errorf("invalid trade side %q", t.Side))
	}
	if t.Date.IsZero() {
		errs = errors.Join(errs, errors.New("trade date is missing"))
	}
	if t.Quantity.IsNegative() {
		errs = errors.Join(errs, fmt.Errorf("trade quantity must be positive, got %s", t.Quantity))
	}
	if !t.Price.IsPositive() {
		errs = errors.Join(errs, fmt.Errorf("trade price must be strictly positive, got %s", t.Price.Value()))
	}
	if err := ValidateCurrency(t.Price.Currency()); err != nil {
		errs = errors.Join(errs, fmt.Errorf("trade price: %w", err))
	}
	if g := t.GrossAmount(); g.Currency() != t.Price.Currency() {
		errs = errors.Join(errs, fmt.Errorf("trade gross currency %q differs from price currency %q", g.Currency(), t.Price.Currency()))
	}
	if errs != nil {
		return fmt.Errorf("invalid trade %s: %w", t.ID, errs)
	}
	return nil
}

// FlowType is the kind of a cash movement.
type FlowType string

const (
	Contribution FlowType = "CONTRIBUTION"
	Withdrawal   FlowType = "WITHDRAWAL"
	Dividend     FlowType = "DIVIDEND"
	Fee          FlowType = "FEE"
)

// IsInflow is true for cash entering the portfolio.
func (f FlowType) IsInflow() bool { return f == Contribution || f == Dividend }

// IsExternal is true for the movements of capital between the investor and the
// portfolio. Dividends and fees are part of the investment return.
func (f FlowType) IsExternal() bool { return f == Contribution || f == Withdrawal }

// Cashflow is an immutable cash movement.
type Cashflow struct {
	ID     string
	Type   FlowType
	Amount Money // the magnitude, the sign comes from the Type
	Date   date.Date
	Symbol string // the instrument a dividend or fee is attributed to, if any
}

// NewCashflow returns a cashflow with a fresh ID.
func NewCashflow(on date.Date, t FlowType, amount Money) Cashflow {
	return Cashflow{ID: uuid.NewString(), Type: t, Amount: amount, Date: on}
}

// NewContribution returns a new CONTRIBUTION cashflow.
func NewContribution(on date.Date, amount Money) Cashflow {
	return NewCashflow(on, Contribution, amount)
}

// NewWithdrawal returns a new WITHDRAWAL cashflow.
func NewWithdrawal(on date.Date, amount Money) Cashflow {
	return NewCashflow(on, Withdrawal, amount)
}

// NewDividend returns a new DIVIDEND cashflow paid by symbol.
func NewDividend(on date.Date, symbol string, amount Money) Cashflow {
	c := NewCashflow(on, Dividend, amount)
	c.Symbol = symbol
	return c
}

// NewFee returns a new FEE cashflow, symbol is optional.
func NewFee(on date.Date, symbol string, amount Money) Cashflow {
	c := NewCashflow(on, Fee, amount)
	c.Symbol = symbol
	return c
}

// Signed returns the amount as seen by the portfolio: positive for inflows,
// negative for outflows.
func (c Cashflow) Signed() Money {
	if c.Type.IsInflow() {
		return c.Amount.Abs()
	}
	return c.Amount.Abs().Neg()
}

// Validate returns all the reasons why the cashflow cannot be used.
func (c Cashflow) Validate() error {
	var errs error
	switch c.Type {
	case Contribution, Withdrawal, Dividend, Fee:
	default:
		errs = errors.Join(errs, fmt.Errorf("invalid cashflow type %q", c.Type))
	}
	if c.Date.IsZero() {
		errs = errors.Join(errs, errors.New("cashflow date is missing"))
	}
	if err := ValidateCurrency(c.Amount.Currency()); err != nil {
		errs = errors.Join(errs, fmt.Errorf("cashflow amount: %w", err))
	}
	if errs != nil {
		return fmt.Errorf("invalid cashflow %s: %w", c.ID, errs)
	}
	return nil
}

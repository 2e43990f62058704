package folio

import (
	"errors"
	"fmt"

	"github.com/etnz/folio/date"
)

// Structural errors abort a whole calculation, no partial result is ever
// returned with them. Use errors.Is to test for the kind, and errors.As to get
// the typed error with its context.
var (
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrNoRateAvailable      = errors.New("no exchange rate available")
	ErrNoPriceAvailable     = errors.New("no price available")
	ErrConvergence          = errors.New("money-weighted return did not converge")
	ErrUnknownInstrument    = errors.New("unknown instrument")
)

// InsufficientHoldingsError reports a SELL trade larger than the quantity held.
type InsufficientHoldingsError struct {
	TradeID   string
	Symbol    string
	Date      date.Date
	Held      Quantity
	Requested Quantity
}

func (e *InsufficientHoldingsError) Error() string {
	return fmt.Sprintf("trade %s on %s: cannot sell %s %s, only %s held: %v",
		e.TradeID, e.Date, e.Requested, e.Symbol, e.Held, ErrInsufficientHoldings)
}

func (e *InsufficientHoldingsError) Unwrap() error { return ErrInsufficientHoldings }

// NoRateError reports a currency conversion without any usable rate.
type NoRateError struct {
	From, To string
	Date     date.Date
}

func (e *NoRateError) Error() string {
	return fmt.Sprintf("%v for %s%s on or before %s", ErrNoRateAvailable, e.From, e.To, e.Date)
}

func (e *NoRateError) Unwrap() error { return ErrNoRateAvailable }

// NoPriceError reports a valuation of a symbol without any known price.
type NoPriceError struct {
	Symbol string
	Date   date.Date
}

func (e *NoPriceError) Error() string {
	return fmt.Sprintf("%v for %s on or before %s", ErrNoPriceAvailable, e.Symbol, e.Date)
}

func (e *NoPriceError) Unwrap() error { return ErrNoPriceAvailable }

// ConvergenceError reports that the money-weighted return solver gave up.
type ConvergenceError struct {
	Iterations int
	Last       float64 // last estimate, for diagnosis only
	Reason     string
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%v after %d iterations (last estimate %g): %s", ErrConvergence, e.Iterations, e.Last, e.Reason)
}

func (e *ConvergenceError) Unwrap() error { return ErrConvergence }

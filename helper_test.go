package folio

import "github.com/etnz/folio/date"

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// day is a helper for test to parse a date.
func day(s string) date.Date { return date.MustParse(s) }

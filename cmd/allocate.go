package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// allocateCmd holds the flags for the 'allocate' subcommand.
type allocateCmd struct {
	amount   string
	date     string
	currency string
	json     bool
}

func (*allocateCmd) Name() string     { return "allocate" }
func (*allocateCmd) Synopsis() string { return "split a new contribution to move toward the targets" }
func (*allocateCmd) Usage() string {
	return `rebal allocate -a <amount> [-d <date>] [-c <currency>] [-json]

  Splits a new contribution across the instruments below their target, in
  proportion to their gap to target once the contribution is invested.
  Nothing is ever sold: instruments above their target get nothing.

Usage Examples:
$ rebal allocate -a 1000
`
}

func (c *allocateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "Amount of the contribution, in the reporting currency")
	f.StringVar(&c.date, "d", "", "Date of the valuation (YYYY-MM-DD), defaults to today")
	f.StringVar(&c.currency, "c", *defaultCurrency, "Reporting currency, and currency of the contribution")
	f.BoolVar(&c.json, "json", false, "Print the purchases as JSON")
}

func (c *allocateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.amount == "" {
		fmt.Fprintln(os.Stderr, "Error: -a is required")
		return subcommands.ExitUsageError
	}
	amount, err := decimal.NewFromString(c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount %q: %v\n", c.amount, err)
		return subcommands.ExitUsageError
	}
	on, err := parseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	comparison, status := compareOn(ctx, on, c.currency)
	if comparison == nil {
		return status
	}
	allocation, err := folio.AllocateContribution(folio.M(amount, c.currency), comparison)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error allocating contribution: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		return printJSON(allocation)
	}
	md, err := renderer.RenderAllocation(allocation)
	return printMarkdown("Contribution", md, err)
}

package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

// compareCmd holds the flags for the 'compare' subcommand.
type compareCmd struct {
	date     string
	currency string
	json     bool
}

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "compare the current allocation to the target plan" }
func (*compareCmd) Usage() string {
	return `rebal compare [-d <date>] [-c <currency>] [-json]

  Values the holdings on a date and compares the share of every instrument to
  its target. Each instrument is flagged OK within its lower band, ATTENTION
  within its upper band and ACTION beyond.
`
}

func (c *compareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the comparison (YYYY-MM-DD), defaults to today")
	f.StringVar(&c.currency, "c", *defaultCurrency, "Reporting currency")
	f.BoolVar(&c.json, "json", false, "Print the comparison as JSON")
}

func (c *compareCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := parseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	comparison, status := compareOn(ctx, on, c.currency)
	if comparison == nil {
		return status
	}
	if c.json {
		return printJSON(comparison)
	}
	md, err := renderer.RenderComparison(comparison)
	return printMarkdown("Allocation on "+on.String(), md, err)
}

// compareOn loads the target plan and the portfolio, and compares them.
// Errors are printed, and the comparison is nil.
func compareOn(ctx context.Context, on date.Date, currency string) (*folio.Comparison, subcommands.ExitStatus) {
	plan, err := folio.LoadTargetsFile(*targetsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading target plan: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	src, closer, err := openSources(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening sources: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	defer closer()

	s, err := loadSnapshot(ctx, src, folio.Request{Dates: []date.Date{on}, Symbols: symbols(plan)})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	comparison, err := s.Compare(plan, currency, on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error comparing allocation: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	return comparison, subcommands.ExitSuccess
}

// symbols returns the symbols of a plan.
func symbols(plan folio.TargetPlan) []string {
	res := make([]string, len(plan.Targets))
	for i, t := range plan.Targets {
		res[i] = t.Symbol
	}
	return res
}

package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

// performanceCmd holds the flags for the 'performance' subcommand.
type performanceCmd struct {
	from     string
	to       string
	period   date.Period
	currency string
	json     bool
}

func (*performanceCmd) Name() string     { return "performance" }
func (*performanceCmd) Synopsis() string { return "time and money weighted returns over a period" }
func (*performanceCmd) Usage() string {
	return `rebal performance [-from <date>] [-to <date>] [-period <period>] [-c <currency>] [-json]

  Computes the time-weighted and money-weighted returns of the portfolio
  between two dates, with the gains of every instrument.

  The portfolio is valued at the end of every period (daily, weekly, monthly,
  quarterly or yearly) and on every date with a trade or a cashflow.
  -from defaults to the first entry of the ledger, -to to today.
`
}

func (c *performanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "First day of the period (YYYY-MM-DD), defaults to the first ledger entry")
	f.StringVar(&c.to, "to", "", "Last day of the period (YYYY-MM-DD), defaults to today")
	c.period = date.Monthly
	f.Var(&c.period, "period", "Valuation calendar: daily, weekly, monthly, quarterly or yearly")
	f.StringVar(&c.currency, "c", *defaultCurrency, "Reporting currency")
	f.BoolVar(&c.json, "json", false, "Print the report as JSON")
}

func (c *performanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	to, err := parseDate(c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -to: %v\n", err)
		return subcommands.ExitUsageError
	}

	src, closer, err := openSources(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening sources: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	var from date.Date
	if c.from != "" {
		if from, err = date.Parse(c.from); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -from: %v\n", err)
			return subcommands.ExitUsageError
		}
	} else {
		if from, err = inception(ctx, src); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading ledger: %v\n", err)
			return subcommands.ExitFailure
		}
		if from.IsZero() {
			fmt.Fprintln(stdout, "Ledger is empty, nothing to report.")
			return subcommands.ExitSuccess
		}
	}
	if to.Before(from) {
		fmt.Fprintf(os.Stderr, "Error: -to %s is before -from %s\n", to, from)
		return subcommands.ExitUsageError
	}

	dates := slices.Collect(date.NewRange(from, to).Ends(c.period))
	s, err := loadSnapshot(ctx, src, folio.Request{Dates: dates})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	report, err := s.Performance(c.currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing performance: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		return printJSON(report)
	}
	md, err := renderer.RenderPerformance(report)
	return printMarkdown("Performance "+report.Range.String(), md, err)
}

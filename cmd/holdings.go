package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

// holdingsCmd holds the flags for the 'holdings' subcommand.
type holdingsCmd struct {
	date string
	json bool
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "display the holdings and realized gains on a date" }
func (*holdingsCmd) Usage() string {
	return `rebal holdings [-d <date>] [-json]

  Replays the trades of the ledger up to a date and displays the quantity and
  the average cost of every instrument still held.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the holdings (YYYY-MM-DD), defaults to today")
	f.BoolVar(&c.json, "json", false, "Print the holdings as JSON")
}

func (c *holdingsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := parseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	src, closer, err := openSources(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening sources: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	trades, err := src.Trades.ListTrades(ctx, *userID, *portfolioID, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading trades: %v\n", err)
		return subcommands.ExitFailure
	}
	p, err := folio.Project(trades, on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error projecting holdings: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		return printJSON(p)
	}
	md, err := renderer.RenderHoldings(p)
	return printMarkdown("Holdings on "+on.String(), md, err)
}

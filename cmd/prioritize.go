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

// prioritizeCmd holds the flags for the 'prioritize' subcommand.
type prioritizeCmd struct {
	json bool
}

func (*prioritizeCmd) Name() string { return "prioritize" }
func (*prioritizeCmd) Synopsis() string {
	return "rank the instruments of the target plan in the order to buy them"
}
func (*prioritizeCmd) Usage() string {
	return `rebal prioritize [-json]

  Ranks the instruments of the target plan when building the portfolio from
  scratch: the largest targets first, then the most liquid, the cheapest and
  the most accessible instruments.

  Every instrument needs a description (aum, expense ratio) and a price in the
  market data.
`
}

func (c *prioritizeCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the ranking as JSON")
}

func (c *prioritizeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	plan, err := folio.LoadTargetsFile(*targetsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading target plan: %v\n", err)
		return subcommands.ExitFailure
	}
	src, closer, err := openSources(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening sources: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	s, err := loadSnapshot(ctx, src, folio.Request{Dates: []date.Date{date.Today()}, Symbols: symbols(plan)})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading market data: %v\n", err)
		return subcommands.ExitFailure
	}
	ranked, err := folio.PrioritizeImplementation(plan, s.InstrumentList())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error ranking instruments: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		return printJSON(ranked)
	}
	md, err := renderer.RenderPriorities(ranked)
	return printMarkdown("Implementation order", md, err)
}

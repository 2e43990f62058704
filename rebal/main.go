// Command rebal reports on the performance of a portfolio and plans its
// rebalancing against a target allocation.
//
// Shell completion is installed with:
//
//	COMP_INSTALL=1 rebal
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/folio/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cmd.Register(commander, flag.CommandLine)

	completion().Complete("rebal")

	flag.Parse()
	cmd.InitLogger()

	if name := flag.Arg(0); name != "" && !registered(commander, name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

func registered(c *subcommands.Commander, name string) bool {
	found := false
	c.VisitCommands(func(_ *subcommands.CommandGroup, sub subcommands.Command) {
		if sub.Name() == name {
			found = true
		}
	})
	return found
}

// completion describes the command line for shell completion.
func completion() *complete.Command {
	dates := predict.Something
	currency := predict.Set{"EUR", "USD", "GBP", "CHF", "JPY"}
	jsonFlag := map[string]complete.Predictor{"json": predict.Nothing}
	with := func(flags map[string]complete.Predictor) map[string]complete.Predictor {
		for k, v := range jsonFlag {
			flags[k] = v
		}
		return flags
	}

	return &complete.Command{
		Sub: map[string]*complete.Command{
			"performance": {Flags: with(map[string]complete.Predictor{
				"from":   dates,
				"to":     dates,
				"period": predict.Set{"daily", "weekly", "monthly", "quarterly", "yearly"},
				"c":      currency,
			})},
			"holdings": {Flags: with(map[string]complete.Predictor{"d": dates})},
			"compare":  {Flags: with(map[string]complete.Predictor{"d": dates, "c": currency})},
			"allocate": {Flags: with(map[string]complete.Predictor{
				"a": predict.Something,
				"d": dates,
				"c": currency,
			})},
			"prioritize": {Flags: jsonFlag},
			"import": {Flags: map[string]complete.Predictor{
				"ledger": predict.Nothing,
				"market": predict.Nothing,
			}},
			"fmt":      {Flags: map[string]complete.Predictor{"check": predict.Nothing}},
			"help":     {},
			"flags":    {},
			"commands": {},
		},
		Flags: map[string]complete.Predictor{
			"ledger-file":  predict.Files("*.jsonl"),
			"market-file":  predict.Files("*.jsonl"),
			"targets-file": predict.Files("*.json"),
			"db":           predict.Files("*.db"),
			"currency":     currency,
			"price-url":    predict.Something,
			"price-path":   predict.Something,
			"log-level":    predict.Set{"debug", "info", "warn", "error"},
			"eodhd-key":    predict.Something,
			"html":         predict.Files("*.html"),
			"user":         predict.Something,
			"portfolio":    predict.Something,
		},
	}
}

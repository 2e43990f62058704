package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/store"
	"github.com/google/subcommands"
)

// importCmd holds the flags for the 'import' subcommand.
type importCmd struct {
	ledger bool
	market bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import the ledger and market files into the database" }
func (*importCmd) Usage() string {
	return `rebal -db <file> import [-ledger=false] [-market=false]

  Validates the ledger file and imports it, with the market file, into the
  SQLite database. Entries already imported with the same id are replaced.

Usage Examples:
$ rebal -db folio.db -ledger-file ledger.jsonl -portfolio pea import
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.ledger, "ledger", true, "Import the ledger file")
	f.BoolVar(&c.market, "market", true, "Import the market file")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if *dbFile == "" {
		fmt.Fprintln(os.Stderr, "Error: import needs a database, use -db")
		return subcommands.ExitUsageError
	}
	db, err := store.OpenSQLite(ctx, *dbFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	if c.ledger {
		ledger, err := folio.LoadLedgerFile(*ledgerFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := ledger.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: ledger %q is invalid: %v\n", *ledgerFile, err)
			return subcommands.ExitFailure
		}
		if err := db.ImportLedger(ctx, *userID, *portfolioID, ledger); err != nil {
			fmt.Fprintf(os.Stderr, "Error importing ledger: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(stdout, "Imported %d trades and %d cashflows into %s/%s\n", len(ledger.Trades), len(ledger.Cashflows), *userID, *portfolioID)
	}
	if c.market {
		market, err := folio.LoadMarketFile(*marketFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading market data: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := db.ImportMarket(ctx, market); err != nil {
			fmt.Fprintf(os.Stderr, "Error importing market data: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(stdout, "Imported %d rates and %d instruments\n", len(market.Rates), len(market.Instruments))
	}
	return subcommands.ExitSuccess
}

package cmd

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/etnz/folio"
	"github.com/google/subcommands"
)

type fmtCmd struct {
	check bool
}

func (*fmtCmd) Name() string     { return "fmt" }
func (*fmtCmd) Synopsis() string { return "rewrite the ledger file in canonical form" }
func (*fmtCmd) Usage() string {
	return `rebal fmt [-check]

  Validates the ledger file, gives an id to every entry without one, sorts the
  entries by date and writes them back one JSON object per line.

  With -check the file is left untouched and the command fails if it is not
  already in canonical form.
`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.check, "check", false, "Fail if the ledger is not formatted instead of rewriting it")
}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := folio.LoadLedgerFile(*ledgerFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := ledger.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: ledger %q is invalid: %v\n", *ledgerFile, err)
		return subcommands.ExitFailure
	}

	if c.check {
		var want bytes.Buffer
		if err := folio.EncodeLedger(&want, ledger); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding ledger: %v\n", err)
			return subcommands.ExitFailure
		}
		got, err := os.ReadFile(*ledgerFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Error reading ledger: %v\n", err)
			return subcommands.ExitFailure
		}
		if !bytes.Equal(got, want.Bytes()) {
			fmt.Fprintf(os.Stderr, "Ledger file %q is not formatted, run 'rebal fmt'.\n", *ledgerFile)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(stdout, "Ledger file %q is formatted.\n", *ledgerFile)
		return subcommands.ExitSuccess
	}

	if err := folio.SaveLedgerFile(*ledgerFile, ledger); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Ledger file %q has been formatted.\n", *ledgerFile)
	return subcommands.ExitSuccess
}

package cmd

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/google/subcommands"
)

const testLedger = `{"command":"contribution","date":"2024-01-01","id":"c1","amount":10000,"currency":"USD"}
{"command":"buy","date":"2024-01-02","id":"t1","symbol":"VTI","quantity":30,"price":200,"currency":"USD"}
{"command":"buy","date":"2024-01-02","id":"t2","symbol":"BND","quantity":40,"price":70,"currency":"USD"}
`

const testMarket = `{"command":"instrument","symbol":"VTI","name":"Total Stock Market","aum":1.5e12,"expenseRatio":0.0003,"price":250,"currency":"USD"}
{"command":"instrument","symbol":"BND","name":"Total Bond Market","aum":3e11,"expenseRatio":0.0003,"price":72,"currency":"USD"}
{"command":"price","date":"2024-06-28","symbol":"VTI","price":250,"currency":"USD"}
{"command":"price","date":"2024-06-28","symbol":"BND","price":72,"currency":"USD"}
`

const testTargets = `{"version":1,"targets":[
  {"symbol":"VTI","target":60,"bandLower":5,"bandUpper":10},
  {"symbol":"BND","target":40,"bandLower":5,"bandUpper":10}
]}`

// workspace writes the input files and returns the global flags pointing to them.
func workspace(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"ledger.jsonl": testLedger,
		"market.jsonl": testMarket,
		"targets.json": testTargets,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return []string{
		"-ledger-file", filepath.Join(dir, "ledger.jsonl"),
		"-market-file", filepath.Join(dir, "market.jsonl"),
		"-targets-file", filepath.Join(dir, "targets.json"),
		"-db", filepath.Join(dir, "folio.db"),
		"-log-level", "error",
	}
}

// run executes the command line args.
func run(t *testing.T, args ...string) subcommands.ExitStatus {
	t.Helper()
	status, _ := capture(t, args...)
	return status
}

// capture executes the command line args and returns what they printed as a
// report.
func capture(t *testing.T, args ...string) (subcommands.ExitStatus, string) {
	t.Helper()
	var out bytes.Buffer
	stdout = &out
	t.Cleanup(func() { stdout = os.Stdout })

	f := flag.NewFlagSet("rebal", flag.ContinueOnError)
	c := subcommands.NewCommander(f, "rebal")
	Register(c, f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("cannot parse %v: %v", args, err)
	}
	InitLogger()
	status := c.Execute(context.Background())
	return status, out.String()
}

func TestCommands(t *testing.T) {
	t.Setenv(EnvCurrency, "USD")
	global := workspace(t)

	tests := []struct {
		name     string
		args     []string
		want     subcommands.ExitStatus
		contains []string
	}{
		{"fmt check unformatted", []string{"fmt", "-check"}, subcommands.ExitFailure, nil},
		{"fmt", []string{"fmt"}, subcommands.ExitSuccess, nil},
		{"fmt check formatted", []string{"fmt", "-check"}, subcommands.ExitSuccess, nil},
		{"import", []string{"import"}, subcommands.ExitSuccess, nil},
		{"performance", []string{"performance", "-from", "2024-01-01", "-to", "2024-06-30", "-json"}, subcommands.ExitSuccess, []string{`"TWR"`, `"Symbol": "VTI"`}},
		{"performance markdown", []string{"performance", "-to", "2024-06-30", "-period", "quarterly"}, subcommands.ExitSuccess, []string{"Performance", "VTI", "BND", "1,580.00"}},
		{"holdings", []string{"holdings", "-d", "2024-06-30"}, subcommands.ExitSuccess, []string{"Holdings", "VTI", "BND"}},
		{"compare", []string{"compare", "-d", "2024-06-30", "-json"}, subcommands.ExitSuccess, []string{`"VTI"`}},
		{"allocate", []string{"allocate", "-a", "1000", "-d", "2024-06-30"}, subcommands.ExitSuccess, []string{"Contribution"}},
		{"allocate in another currency", []string{"allocate", "-a", "1000", "-c", "EUR", "-d", "2024-06-30"}, subcommands.ExitFailure, nil},
		{"allocate without amount", []string{"allocate"}, subcommands.ExitUsageError, nil},
		{"prioritize", []string{"prioritize", "-json"}, subcommands.ExitSuccess, []string{`"VTI"`, `"BND"`}},
		{"bad period", []string{"performance", "-period", "fortnight"}, subcommands.ExitUsageError, nil},
	}
	// commands run in order: fmt rewrites the ledger, the import feeds the
	// database the others read.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, out := capture(t, append(global, tt.args...)...)
			if got != tt.want {
				t.Errorf("rebal %v = %v, want %v", tt.args, got, tt.want)
			}
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("rebal %v output does not contain %q:\n%s", tt.args, want, out)
				}
			}
		})
	}
}

func TestHTMLOutput(t *testing.T) {
	global := workspace(t)
	out := filepath.Join(t.TempDir(), "holdings.html")
	// without -db, the files are read directly.
	args := append(global[:6:6], "-html", out, "holdings", "-d", "2024-06-30")
	if got := run(t, args...); got != subcommands.ExitSuccess {
		t.Fatalf("rebal %v = %v", args, got)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("HTML report not written: %v", err)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("REBAL_TEST_VALUE", "x")
	if got := getEnv("REBAL_TEST_VALUE", "y"); got != "x" {
		t.Errorf("getEnv(set) = %q, want x", got)
	}
	if got := getEnv("REBAL_TEST_UNSET", "y"); got != "y" {
		t.Errorf("getEnv(unset) = %q, want y", got)
	}
}

func TestExtensionEnv(t *testing.T) {
	global := workspace(t)
	f := flag.NewFlagSet("rebal", flag.ContinueOnError)
	Register(subcommands.NewCommander(f, "rebal"), f)
	if err := f.Parse(append(global, "-currency", "CHF")); err != nil {
		t.Fatal(err)
	}
	env := extensionEnv()
	for _, want := range []string{EnvCurrency + "=CHF", EnvLedgerFile + "=" + global[1], EnvLogLevel + "=error"} {
		if !slices.Contains(env, want) {
			t.Errorf("extensionEnv() = %v, does not contain %q", env, want)
		}
	}
	if found, _ := RunExtension("no-such-extension", nil); found {
		t.Errorf("RunExtension(no-such-extension) found an extension")
	}
}

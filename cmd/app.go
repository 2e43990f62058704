// Package cmd implements the rebal command line application.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/feed"
	"github.com/etnz/folio/store"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

// Environment variables providing the defaults of the global flags. They can
// be set in a .env file in the working directory.
const (
	EnvLedgerFile  = "REBAL_LEDGER_FILE"
	EnvMarketFile  = "REBAL_MARKET_FILE"
	EnvTargetsFile = "REBAL_TARGETS_FILE"
	EnvDB          = "REBAL_DB"
	EnvCurrency    = "REBAL_CURRENCY"
	EnvPriceURL    = "REBAL_PRICE_URL"
	EnvPricePath   = "REBAL_PRICE_PATH"
	EnvLogLevel    = "REBAL_LOG_LEVEL"
	EnvEODHDKey    = "REBAL_EODHD_API_KEY"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.
var (
	ledgerFile      *string
	marketFile      *string
	targetsFile     *string
	dbFile          *string
	defaultCurrency *string
	priceURL        *string
	pricePath       *string
	logLevel        *string
	eodhdKey        *string
	htmlFile        *string
	userID          *string
	portfolioID     *string
)

// Register loads the .env file, declares the global flags on f and registers
// the subcommands.
func Register(c *subcommands.Commander, f *flag.FlagSet) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: cannot load .env file: %v\n", err)
	}

	ledgerFile = f.String("ledger-file", getEnv(EnvLedgerFile, "ledger.jsonl"), "Path to the ledger file (JSONL format)")
	marketFile = f.String("market-file", getEnv(EnvMarketFile, "market.jsonl"), "Path to the market data file (JSONL format)")
	targetsFile = f.String("targets-file", getEnv(EnvTargetsFile, "targets.json"), "Path to the target plan (JSON format)")
	dbFile = f.String("db", getEnv(EnvDB, ""), "Path to a SQLite database, used instead of the ledger and market files when set")
	defaultCurrency = f.String("currency", getEnv(EnvCurrency, "EUR"), "Default reporting currency")
	priceURL = f.String("price-url", getEnv(EnvPriceURL, ""), "URL template of an HTTP price feed, with {symbol} and {date} placeholders")
	pricePath = f.String("price-path", getEnv(EnvPricePath, "$.close"), "JSONPath of the price in the HTTP price feed responses")
	logLevel = f.String("log-level", getEnv(EnvLogLevel, "warn"), "Log level: debug, info, warn or error")
	eodhdKey = f.String("eodhd-key", getEnv(EnvEODHDKey, ""), "API key of eodhd.com, to complete the stored prices with end of day quotes")
	htmlFile = f.String("html", "", "Also write the report as an HTML page to this file")
	userID = f.String("user", "default", "User owning the portfolio in the database")
	portfolioID = f.String("portfolio", "main", "Portfolio in the database")

	for _, name := range []string{"ledger-file", "market-file", "targets-file", "db", "currency"} {
		c.ImportantFlag(name)
	}

	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&performanceCmd{}, "reports")
	c.Register(&holdingsCmd{}, "reports")
	c.Register(&compareCmd{}, "reports")

	c.Register(&allocateCmd{}, "planning")
	c.Register(&prioritizeCmd{}, "planning")

	c.Register(&importCmd{}, "data")
	c.Register(&fmtCmd{}, "data")
}

// getEnv returns the value of an environment variable, or fallback when unset.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// InitLogger configures the default logger from the -log-level flag. Logs go
// to stderr, reports to stdout.
func InitLogger() {
	var level slog.Level
	switch strings.ToLower(*logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning", "":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
		defer slog.Warn("invalid log level, defaulting to warn", "configured", *logLevel)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// openSources opens the stores selected by the global flags: the database
// when -db is set, the ledger and market files otherwise. An HTTP price feed
// and the eodhd.com feed complete the stored prices when configured.
func openSources(ctx context.Context) (folio.Sources, func() error, error) {
	var src folio.Sources
	closer := func() error { return nil }

	if *dbFile != "" {
		db, err := store.OpenSQLite(ctx, *dbFile)
		if err != nil {
			return src, closer, err
		}
		src, closer = db.Sources(), db.Close
	} else {
		ledger, err := folio.LoadLedgerFile(*ledgerFile)
		if err != nil {
			return src, closer, err
		}
		market, err := folio.LoadMarketFile(*marketFile)
		if err != nil {
			return src, closer, err
		}
		mem := store.NewMemory()
		mem.PutLedger(*userID, *portfolioID, ledger)
		mem.PutMarket(market)
		src = mem.Sources()
	}

	if *priceURL != "" {
		quotes := &feed.HTTP{URL: *priceURL, Path: *pricePath, Currency: *defaultCurrency}
		src.Prices = feed.Chain{src.Prices, feed.NewCached(quotes, feed.DefaultTTL)}
	}
	if *eodhdKey != "" {
		eod := &feed.EODHD{APIKey: *eodhdKey, Currency: *defaultCurrency}
		src.Prices = feed.Chain{src.Prices, feed.NewCached(eod, feed.DefaultTTL)}
	}
	return src, closer, nil
}

// loadSnapshot reads everything needed to report on the requested dates.
func loadSnapshot(ctx context.Context, src folio.Sources, req folio.Request) (*folio.Snapshot, error) {
	req.UserID, req.PortfolioID = *userID, *portfolioID
	slog.DebugContext(ctx, "loading snapshot", "user", req.UserID, "portfolio", req.PortfolioID, "dates", len(req.Dates))
	return folio.LoadSnapshot(ctx, src, req)
}

// inception returns the date of the first entry of the portfolio, or the zero
// date for an empty portfolio.
func inception(ctx context.Context, src folio.Sources) (date.Date, error) {
	trades, err := src.Trades.ListTrades(ctx, *userID, *portfolioID, nil)
	if err != nil {
		return date.Date{}, err
	}
	cashflows, err := src.Cashflows.ListCashflows(ctx, *userID, *portfolioID, nil)
	if err != nil {
		return date.Date{}, err
	}
	return (&folio.Ledger{Trades: trades, Cashflows: cashflows}).Range().From, nil
}

// parseDate parses a flag date, empty means today.
func parseDate(s string) (date.Date, error) {
	if s == "" {
		return date.Today(), nil
	}
	return date.Parse(s)
}

// Package folio measures and rebalances an investment portfolio.
//
// It is a pure calculation engine over immutable inputs:
//   - Ledger replay: trades are replayed in chronological order into holdings
//     with a weighted average cost, and realized P&L on sells.
//   - Performance: the time-weighted and money-weighted returns of the
//     portfolio, and of each instrument, in a single reporting currency.
//   - Rebalancing: the comparison of current weights against a versioned
//     target plan, the allocation of a new contribution toward the targets,
//     and the ranking of instruments for a first funding.
//
// Inputs come from a Snapshot, loaded once from the stores (TradeStore,
// CashflowStore, PriceFeed, InstrumentMetadata, FxRateStore) before any
// calculation starts. Ledgers and market data are also read from and written
// to JSONL files, human-readable and version-controllable.
//
// This package serves as the foundational logic for the `rebal` command-line
// tool.
package folio

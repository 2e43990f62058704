package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	portfolio_id TEXT NOT NULL,
	date         TEXT NOT NULL,
	symbol       TEXT NOT NULL,
	side         TEXT NOT NULL,
	quantity     TEXT NOT NULL,
	price        TEXT NOT NULL,
	gross        TEXT NOT NULL,
	currency     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS trades_portfolio ON trades (user_id, portfolio_id, date);
CREATE TABLE IF NOT EXISTS cashflows (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	portfolio_id TEXT NOT NULL,
	date         TEXT NOT NULL,
	type         TEXT NOT NULL,
	symbol       TEXT NOT NULL DEFAULT '',
	amount       TEXT NOT NULL,
	currency     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS cashflows_portfolio ON cashflows (user_id, portfolio_id, date);
CREATE TABLE IF NOT EXISTS prices (
	symbol   TEXT NOT NULL,
	date     TEXT NOT NULL,
	price    TEXT NOT NULL,
	currency TEXT NOT NULL,
	PRIMARY KEY (symbol, date)
);
CREATE TABLE IF NOT EXISTS rates (
	from_currency TEXT NOT NULL,
	to_currency   TEXT NOT NULL,
	date          TEXT NOT NULL,
	rate          TEXT NOT NULL,
	PRIMARY KEY (from_currency, to_currency, date)
);
CREATE TABLE IF NOT EXISTS instruments (
	symbol        TEXT PRIMARY KEY,
	name          TEXT NOT NULL DEFAULT '',
	aum           TEXT NOT NULL DEFAULT '0',
	expense_ratio TEXT NOT NULL DEFAULT '0',
	price         TEXT NOT NULL DEFAULT '0',
	currency      TEXT NOT NULL DEFAULT ''
);
`

// SQLite stores ledgers and market data in a SQLite database. It implements
// every folio store.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens, and creates if needed, the database at path. Use
// ":memory:" for a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database %s: %w", path, err)
	}
	// one connection: SQLite serializes writes anyway, and an in-memory
	// database only exists within its connection.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot open database %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot create schema in %s: %w", path, err)
	}
	slog.DebugContext(ctx, "database opened", "path", path)
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

// Sources returns the database as every folio source.
func (s *SQLite) Sources() folio.Sources {
	return folio.Sources{Trades: s, Cashflows: s, Prices: s, Metadata: s, Rates: s}
}

// ImportLedger inserts the trades and cashflows of a ledger in a portfolio.
// Entries with an existing id are updated in place, they keep their position
// among the entries of the same day.
func (s *SQLite) ImportLedger(ctx context.Context, userID, portfolioID string, l *folio.Ledger) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		for _, t := range l.Trades {
			gross := t.GrossAmount()
			_, err := tx.ExecContext(ctx, `INSERT INTO trades
				(id, user_id, portfolio_id, date, symbol, side, quantity, price, gross, currency)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					user_id = excluded.user_id, portfolio_id = excluded.portfolio_id, date = excluded.date,
					symbol = excluded.symbol, side = excluded.side, quantity = excluded.quantity,
					price = excluded.price, gross = excluded.gross, currency = excluded.currency`,
				t.ID, userID, portfolioID, t.Date.String(), t.Symbol, string(t.Side),
				t.Quantity.Value().String(), t.Price.Value().String(), gross.Value().String(), t.Currency())
			if err != nil {
				return fmt.Errorf("cannot insert trade %s: %w", t.ID, err)
			}
		}
		for _, c := range l.Cashflows {
			_, err := tx.ExecContext(ctx, `INSERT INTO cashflows
				(id, user_id, portfolio_id, date, type, symbol, amount, currency)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					user_id = excluded.user_id, portfolio_id = excluded.portfolio_id, date = excluded.date,
					type = excluded.type, symbol = excluded.symbol, amount = excluded.amount,
					currency = excluded.currency`,
				c.ID, userID, portfolioID, c.Date.String(), string(c.Type), c.Symbol,
				c.Amount.Value().String(), c.Amount.Currency())
			if err != nil {
				return fmt.Errorf("cannot insert cashflow %s: %w", c.ID, err)
			}
		}
		slog.InfoContext(ctx, "ledger imported", "user", userID, "portfolio", portfolioID,
			"trades", len(l.Trades), "cashflows", len(l.Cashflows))
		return nil
	})
}

// ImportMarket inserts prices, rates and instruments. Existing entries with
// the same key are replaced.
func (s *SQLite) ImportMarket(ctx context.Context, m *folio.Market) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		n := 0
		for _, symbol := range m.Prices.Symbols() {
			for on, p := range m.Prices.History(symbol) {
				_, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO prices (symbol, date, price, currency) VALUES (?, ?, ?, ?)`,
					symbol, on.String(), p.Value().String(), p.Currency())
				if err != nil {
					return fmt.Errorf("cannot insert price of %s on %s: %w", symbol, on, err)
				}
				n++
			}
		}
		for _, r := range m.Rates {
			_, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO rates (from_currency, to_currency, date, rate) VALUES (?, ?, ?, ?)`,
				r.From, r.To, r.Date.String(), r.Rate.String())
			if err != nil {
				return fmt.Errorf("cannot insert rate %s%s on %s: %w", r.From, r.To, r.Date, err)
			}
		}
		for _, i := range m.Instruments {
			_, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO instruments
				(symbol, name, aum, expense_ratio, price, currency) VALUES (?, ?, ?, ?, ?, ?)`,
				i.Symbol, i.Name, i.AUM.String(), i.ExpenseRatio.String(), i.Price.Value().String(), i.Price.Currency())
			if err != nil {
				return fmt.Errorf("cannot insert instrument %s: %w", i.Symbol, err)
			}
		}
		slog.InfoContext(ctx, "market imported", "prices", n, "rates", len(m.Rates), "instruments", len(m.Instruments))
		return nil
	})
}

func (s *SQLite) tx(ctx context.Context, f func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// between returns the SQL condition and arguments selecting a date range.
func between(r *date.Range) (string, []any) {
	switch {
	case r == nil:
		return "", nil
	case r.From.IsZero():
		return " AND date <= ?", []any{r.To.String()}
	default:
		return " AND date >= ? AND date <= ?", []any{r.From.String(), r.To.String()}
	}
}

// ListTrades implements folio.TradeStore.
func (s *SQLite) ListTrades(ctx context.Context, userID, portfolioID string, r *date.Range) ([]folio.Trade, error) {
	cond, args := between(r)
	rows, err := s.db.QueryContext(ctx, `SELECT id, date, symbol, side, quantity, price, gross, currency
		FROM trades WHERE user_id = ? AND portfolio_id = ?`+cond+` ORDER BY rowid`,
		append([]any{userID, portfolioID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("cannot list trades: %w", err)
	}
	defer rows.Close()

	var res []folio.Trade
	for rows.Next() {
		var t folio.Trade
		var on, side, quantity, price, gross, cur string
		if err := rows.Scan(&t.ID, &on, &t.Symbol, &side, &quantity, &price, &gross, &cur); err != nil {
			return nil, err
		}
		d, derr := date.Parse(on)
		q, qerr := decimal.NewFromString(quantity)
		p, perr := decimal.NewFromString(price)
		g, gerr := decimal.NewFromString(gross)
		if err := errors.Join(derr, qerr, perr, gerr); err != nil {
			return nil, fmt.Errorf("corrupted trade %s: %w", t.ID, err)
		}
		t.Date = d
		t.Side = folio.Side(side)
		t.Quantity = folio.Q(q)
		t.Price = folio.M(p, cur)
		t.Gross = folio.M(g, cur)
		res = append(res, t)
	}
	return res, rows.Err()
}

// ListCashflows implements folio.CashflowStore.
func (s *SQLite) ListCashflows(ctx context.Context, userID, portfolioID string, r *date.Range) ([]folio.Cashflow, error) {
	cond, args := between(r)
	rows, err := s.db.QueryContext(ctx, `SELECT id, date, type, symbol, amount, currency
		FROM cashflows WHERE user_id = ? AND portfolio_id = ?`+cond+` ORDER BY rowid`,
		append([]any{userID, portfolioID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("cannot list cashflows: %w", err)
	}
	defer rows.Close()

	var res []folio.Cashflow
	for rows.Next() {
		var c folio.Cashflow
		var on, typ, amount, cur string
		if err := rows.Scan(&c.ID, &on, &typ, &c.Symbol, &amount, &cur); err != nil {
			return nil, err
		}
		d, derr := date.Parse(on)
		a, aerr := decimal.NewFromString(amount)
		if err := errors.Join(derr, aerr); err != nil {
			return nil, fmt.Errorf("corrupted cashflow %s: %w", c.ID, err)
		}
		c.Date = d
		c.Type = folio.FlowType(typ)
		c.Amount = folio.M(a, cur)
		res = append(res, c)
	}
	return res, rows.Err()
}

// Price implements folio.PriceFeed with the latest price on or before the
// date.
func (s *SQLite) Price(ctx context.Context, symbol string, on date.Date) (folio.Money, error) {
	var price, cur string
	err := s.db.QueryRowContext(ctx, `SELECT price, currency FROM prices
		WHERE symbol = ? AND date <= ? ORDER BY date DESC LIMIT 1`, symbol, on.String()).Scan(&price, &cur)
	if errors.Is(err, sql.ErrNoRows) {
		return folio.Money{}, &folio.NoPriceError{Symbol: symbol, Date: on}
	}
	if err != nil {
		return folio.Money{}, fmt.Errorf("cannot get price of %s: %w", symbol, err)
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return folio.Money{}, fmt.Errorf("corrupted price of %s: %w", symbol, err)
	}
	return folio.M(p, cur), nil
}

// Instrument implements folio.InstrumentMetadata.
func (s *SQLite) Instrument(ctx context.Context, symbol string) (folio.Instrument, error) {
	var name, aum, er, price, cur string
	err := s.db.QueryRowContext(ctx, `SELECT name, aum, expense_ratio, price, currency
		FROM instruments WHERE symbol = ?`, symbol).Scan(&name, &aum, &er, &price, &cur)
	if errors.Is(err, sql.ErrNoRows) {
		return folio.Instrument{}, fmt.Errorf("%w %q", folio.ErrUnknownInstrument, symbol)
	}
	if err != nil {
		return folio.Instrument{}, fmt.Errorf("cannot get instrument %s: %w", symbol, err)
	}
	a, aerr := decimal.NewFromString(aum)
	e, eerr := decimal.NewFromString(er)
	p, perr := decimal.NewFromString(price)
	if err := errors.Join(aerr, eerr, perr); err != nil {
		return folio.Instrument{}, fmt.Errorf("corrupted instrument %s: %w", symbol, err)
	}
	i := folio.Instrument{Symbol: symbol, Name: name, AUM: a, ExpenseRatio: e}
	if cur != "" {
		i.Price = folio.M(p, cur)
	}
	return i, nil
}

// ListRates implements folio.FxRateStore.
func (s *SQLite) ListRates(ctx context.Context) ([]folio.FxRate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT from_currency, to_currency, date, rate FROM rates ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("cannot list rates: %w", err)
	}
	defer rows.Close()

	var res []folio.FxRate
	for rows.Next() {
		var r folio.FxRate
		var on, rate string
		if err := rows.Scan(&r.From, &r.To, &on, &rate); err != nil {
			return nil, err
		}
		d, derr := date.Parse(on)
		v, verr := decimal.NewFromString(rate)
		if err := errors.Join(derr, verr); err != nil {
			return nil, fmt.Errorf("corrupted rate %s%s: %w", r.From, r.To, err)
		}
		r.Date, r.Rate = d, v
		res = append(res, r)
	}
	return res, rows.Err()
}

// Portfolios lists the portfolios of a user having at least one entry.
func (s *SQLite) Portfolios(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT portfolio_id FROM trades WHERE user_id = ?
		UNION SELECT portfolio_id FROM cashflows WHERE user_id = ? ORDER BY 1`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("cannot list portfolios: %w", err)
	}
	defer rows.Close()
	var res []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		res = append(res, id)
	}
	return res, rows.Err()
}

// Ledger reads back the whole ledger of a portfolio.
func (s *SQLite) Ledger(ctx context.Context, userID, portfolioID string) (*folio.Ledger, error) {
	trades, err := s.ListTrades(ctx, userID, portfolioID, nil)
	if err != nil {
		return nil, err
	}
	cashflows, err := s.ListCashflows(ctx, userID, portfolioID, nil)
	if err != nil {
		return nil, err
	}
	return &folio.Ledger{Trades: trades, Cashflows: cashflows}, nil
}

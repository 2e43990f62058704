package folio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/etnz/folio/date"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommandType is the "command" field of a JSONL line.
type CommandType string

const (
	CmdBuy          CommandType = "buy"
	CmdSell         CommandType = "sell"
	CmdContribution CommandType = "contribution"
	CmdWithdrawal   CommandType = "withdrawal"
	CmdDividend     CommandType = "dividend"
	CmdFee          CommandType = "fee"
	CmdPrice        CommandType = "price"
	CmdFx           CommandType = "fx"
	CmdInstrument   CommandType = "instrument"
)

var flowCommands = map[CommandType]FlowType{
	CmdContribution: Contribution,
	CmdWithdrawal:   Withdrawal,
	CmdDividend:     Dividend,
	CmdFee:          Fee,
}

// ledgerLine has all the fields a ledger line can have.
type ledgerLine struct {
	Command  CommandType      `json:"command"`
	ID       string           `json:"id"`
	Date     date.Date        `json:"date"`
	Symbol   string           `json:"symbol"`
	Quantity Quantity         `json:"quantity"`
	Price    decimal.Decimal  `json:"price"`
	Amount   *decimal.Decimal `json:"amount"`
	Currency string           `json:"currency"`
}

// DecodeLedger reads a ledger from JSONL data, one trade or cashflow per line.
//
// Lines without an id get a fresh one. Entries keep the order of the file.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var l ledgerLine
		if err := json.Unmarshal(line, &l); err != nil {
			return nil, fmt.Errorf("line %d: cannot decode %q: %w", n, line, err)
		}
		if l.ID == "" {
			l.ID = uuid.NewString()
		}

		switch l.Command {
		case CmdBuy, CmdSell:
			t := Trade{
				ID:       l.ID,
				Symbol:   l.Symbol,
				Side:     Buy,
				Quantity: l.Quantity,
				Price:    M(l.Price, l.Currency),
				Date:     l.Date,
			}
			if l.Command == CmdSell {
				t.Side = Sell
			}
			t.Gross = t.Price.Mul(t.Quantity)
			if l.Amount != nil {
				t.Gross = M(*l.Amount, l.Currency)
			}
			if err := t.Validate(); err != nil {
				return nil, fmt.Errorf("line %d: %w", n, err)
			}
			ledger.AddTrade(t)
		case CmdContribution, CmdWithdrawal, CmdDividend, CmdFee:
			if l.Amount == nil {
				return nil, fmt.Errorf("line %d: %s without amount", n, l.Command)
			}
			c := Cashflow{
				ID:     l.ID,
				Type:   flowCommands[l.Command],
				Amount: M(*l.Amount, l.Currency),
				Date:   l.Date,
				Symbol: l.Symbol,
			}
			if err := c.Validate(); err != nil {
				return nil, fmt.Errorf("line %d: %w", n, err)
			}
			ledger.AddCashflow(c)
		default:
			return nil, fmt.Errorf("line %d: unknown ledger command %q", n, l.Command)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return ledger, nil
}

// command returns the command name of a cashflow type.
func command(f FlowType) CommandType {
	for cmd, t := range flowCommands {
		if t == f {
			return cmd
		}
	}
	return CommandType(strings.ToLower(string(f)))
}

// EncodeLedger writes the ledger in JSONL, in chronological order. Entries on
// the same day keep their order, trades first.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	type entry struct {
		on   date.Date
		line *jsonLine
	}
	entries := make([]entry, 0, len(ledger.Trades)+len(ledger.Cashflows))
	for _, t := range ledger.Trades {
		cmd := CmdBuy
		if t.Side == Sell {
			cmd = CmdSell
		}
		l := new(jsonLine).
			Append("command", cmd).
			Append("date", t.Date).
			Append("id", t.ID).
			Append("symbol", t.Symbol).
			Append("quantity", t.Quantity).
			Append("price", t.Price.Value()).
			Money("amount", t.GrossAmount())
		entries = append(entries, entry{t.Date, l})
	}
	for _, c := range ledger.Cashflows {
		l := new(jsonLine).
			Append("command", command(c.Type)).
			Append("date", c.Date).
			Append("id", c.ID).
			Optional("symbol", c.Symbol).
			Money("amount", c.Amount)
		entries = append(entries, entry{c.Date, l})
	}
	slices.SortStableFunc(entries, func(a, b entry) int { return a.on.Compare(b.on) })

	for _, e := range entries {
		b, err := e.line.MarshalJSON()
		if err != nil {
			return err
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return fmt.Errorf("failed to write ledger: %w", err)
		}
	}
	return nil
}

package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// DefaultEODHDURL is the root of the EODHD API.
const DefaultEODHDURL = "https://eodhd.com/api"

// lookback is the number of days before a date searched for a close: markets
// close on week-ends and holidays.
const lookback = 7

// EODHD is a PriceFeed on the end of day prices of eodhd.com.
//
// Symbols are EODHD tickers ("MCD.US", "CW8.PA"), unless Tickers maps them.
// EODHD does not return the currency of a quote, it is Currencies[symbol] or
// Currency.
type EODHD struct {
	Client     *http.Client
	APIKey     string
	BaseURL    string // DefaultEODHDURL when empty
	Tickers    map[string]string
	Currencies map[string]string
	Currency   string
}

// eodQuote is one day of the eod endpoint.
//
//	[{"date": "2024-02-13", "open": 675.066, "high": 684.219, "low": 648.659,
//	  "close": 668.445, "adjusted_close": 67.705, "volume": 0}, ...]
type eodQuote struct {
	Date  date.Date       `json:"date"`
	Open  decimal.Decimal `json:"open"`
	Close decimal.Decimal `json:"close"`
}

// eod fetches the daily quotes of a ticker, bounds included.
func (e *EODHD) eod(ctx context.Context, ticker string, from, to date.Date) ([]eodQuote, error) {
	base := e.BaseURL
	if base == "" {
		base = DefaultEODHDURL
	}
	addr := fmt.Sprintf("%s/eod/%s?fmt=json&api_token=%s&from=%s&to=%s", base, url.PathEscape(ticker), url.QueryEscape(e.APIKey), from, to)
	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}
	var content []eodQuote
	if err := getJSON(ctx, client, addr, &content); err != nil {
		return nil, err
	}
	return content, nil
}

// Price implements folio.PriceFeed with the last close on or before the date.
func (e *EODHD) Price(ctx context.Context, symbol string, on date.Date) (folio.Money, error) {
	ticker := symbol
	if t, ok := e.Tickers[symbol]; ok {
		ticker = t
	}
	quotes, err := e.eod(ctx, ticker, on.Add(-lookback), on)
	if errors.Is(err, errNotFound) {
		return folio.Money{}, &folio.NoPriceError{Symbol: symbol, Date: on}
	}
	if err != nil {
		return folio.Money{}, fmt.Errorf("error retrieving %q from eodhd: %w", ticker, err)
	}

	var last *eodQuote
	for i, q := range quotes {
		if q.Date.After(on) || !q.Close.IsPositive() {
			continue
		}
		if last == nil || q.Date.After(last.Date) {
			last = &quotes[i]
		}
	}
	if last == nil {
		return folio.Money{}, &folio.NoPriceError{Symbol: symbol, Date: on}
	}
	slog.DebugContext(ctx, "eodhd close", "ticker", ticker, "date", last.Date.String(), "close", last.Close.String())

	currency := e.Currency
	if c, ok := e.Currencies[symbol]; ok {
		currency = c
	}
	if err := folio.ValidateCurrency(currency); err != nil {
		return folio.Money{}, fmt.Errorf("quote of %q: %w", symbol, err)
	}
	return folio.M(last.Close, currency), nil
}

// EODHDRates is a FxRateStore on the forex quotes of eodhd.com, for a fixed
// list of currency pairs over a date range.
type EODHDRates struct {
	EODHD
	Pairs [][2]string // from, to
	Range date.Range
}

// ListRates implements folio.FxRateStore.
//
// The close of EODHD forex quotes is most of the time equal to their open, the
// open of the next day is closer to the truth: the rate of a day is the open
// of the day after.
func (e *EODHDRates) ListRates(ctx context.Context) ([]folio.FxRate, error) {
	var rates []folio.FxRate
	for _, pair := range e.Pairs {
		from, to := pair[0], pair[1]
		ticker := fmt.Sprintf("%s%s.FOREX", from, to)
		quotes, err := e.eod(ctx, ticker, e.Range.From.Add(1), e.Range.To.Add(1))
		if err != nil {
			return nil, fmt.Errorf("error retrieving %s rates from eodhd: %w", ticker, err)
		}
		for _, q := range quotes {
			if !q.Open.IsPositive() {
				continue
			}
			rates = append(rates, folio.FxRate{From: from, To: to, Date: q.Date.Add(-1), Rate: q.Open})
		}
	}
	return rates, nil
}

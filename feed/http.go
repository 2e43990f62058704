// Package feed implements price feeds for folio.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// HTTP is a PriceFeed reading one JSON quote per request.
//
// URL is a template where "{symbol}" and "{date}" are replaced by the
// requested symbol and date (YYYY-MM-DD). Path is the JSONPath expression of
// the price in the response, for instance "$.close" or "$.data[-1:].price".
// The quote currency is read at CurrencyPath when set, Currency otherwise.
type HTTP struct {
	Client       *http.Client
	URL          string
	Path         string
	CurrencyPath string
	Currency     string
}

// errNotFound is returned by getJSON on a 404.
var errNotFound = errors.New("not found")

// Price implements folio.PriceFeed.
func (h *HTTP) Price(ctx context.Context, symbol string, on date.Date) (folio.Money, error) {
	addr := strings.NewReplacer("{symbol}", url.PathEscape(symbol), "{date}", on.String()).Replace(h.URL)
	slog.DebugContext(ctx, "fetching price", "symbol", symbol, "date", on.String(), "url", addr)

	var jobj any
	err := getJSON(ctx, h.client(), addr, &jobj)
	if errors.Is(err, errNotFound) {
		return folio.Money{}, &folio.NoPriceError{Symbol: symbol, Date: on}
	}
	if err != nil {
		return folio.Money{}, fmt.Errorf("error retrieving %q on %s: %w", symbol, on, err)
	}

	jval, err := lookup(h.Path, jobj)
	if err != nil || jval == nil {
		slog.DebugContext(ctx, "no price in response", "symbol", symbol, "path", h.Path, "error", err)
		return folio.Money{}, &folio.NoPriceError{Symbol: symbol, Date: on}
	}
	value, err := toDecimal(jval)
	if err != nil {
		return folio.Money{}, fmt.Errorf("error parsing %q at %q: %w", symbol, h.Path, err)
	}
	if !value.IsPositive() {
		return folio.Money{}, &folio.NoPriceError{Symbol: symbol, Date: on}
	}

	currency := h.Currency
	if h.CurrencyPath != "" {
		if jcur, err := lookup(h.CurrencyPath, jobj); err == nil {
			if s, ok := jcur.(string); ok && s != "" {
				currency = strings.ToUpper(s)
			}
		}
	}
	if err := folio.ValidateCurrency(currency); err != nil {
		return folio.Money{}, fmt.Errorf("quote of %q: %w", symbol, err)
	}
	return folio.M(value, currency), nil
}

func (h *HTTP) client() *http.Client {
	if h.Client == nil {
		return http.DefaultClient
	}
	return h.Client
}

// lookup evaluates a JSONPath expression.
func lookup(path string, jobj any) (any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, err
	}
	// jsonpath returns either a single value or a list of matches, keep the
	// first match.
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return nil, nil
		}
		jval = jlist[0]
	}
	return jval, nil
}

func toDecimal(jval any) (decimal.Decimal, error) {
	switch v := jval.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	default:
		return decimal.Zero, fmt.Errorf("not a number: %v", jval)
	}
}

// getJSON performs an HTTP GET request and unmarshals the JSON response into
// data.
func getJSON(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	return dec.Decode(data)
}

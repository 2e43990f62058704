package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
)

func quoteServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case "/quote/VTI/2024-01-31":
			w.Write([]byte(`{"symbol":"VTI","currency":"usd","data":[{"close":205.1},{"close":210.25}]}`))
		case "/quote/CW8/2024-01-31":
			w.Write([]byte(`{"symbol":"CW8","data":[{"close":"512.30"}]}`))
		case "/quote/EMPTY/2024-01-31":
			w.Write([]byte(`{"symbol":"EMPTY","data":[]}`))
		case "/quote/DOWN/2024-01-31":
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTP_Price(t *testing.T) {
	var calls atomic.Int32
	srv := quoteServer(t, &calls)
	feed := &HTTP{
		Client:       srv.Client(),
		URL:          srv.URL + "/quote/{symbol}/{date}",
		Path:         "$.data[-1:].close",
		CurrencyPath: "$.currency",
		Currency:     "EUR",
	}
	on := date.MustParse("2024-01-31")

	tests := []struct {
		symbol  string
		want    folio.Money
		missing bool
		wantErr bool
	}{
		{symbol: "VTI", want: folio.M(210.25, "USD")},
		{symbol: "CW8", want: folio.M(512.3, "EUR")},
		{symbol: "EMPTY", missing: true},
		{symbol: "UNKNOWN", missing: true},
		{symbol: "DOWN", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			got, err := feed.Price(context.Background(), tt.symbol, on)
			if tt.missing {
				if !errors.Is(err, folio.ErrNoPriceAvailable) {
					t.Errorf("Price(%s) error = %v, want %v", tt.symbol, err, folio.ErrNoPriceAvailable)
				}
				return
			}
			if tt.wantErr {
				if err == nil || errors.Is(err, folio.ErrNoPriceAvailable) {
					t.Errorf("Price(%s) error = %v, want a transport error", tt.symbol, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Price(%s) error = %v", tt.symbol, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Price(%s) = %v, want %v", tt.symbol, got, tt.want)
			}
		})
	}
}

func TestCached(t *testing.T) {
	var calls atomic.Int32
	srv := quoteServer(t, &calls)
	feed := NewCached(&HTTP{
		Client:   srv.Client(),
		URL:      srv.URL + "/quote/{symbol}/{date}",
		Path:     "$.data[-1:].close",
		Currency: "USD",
	}, 0)
	on := date.MustParse("2024-01-31")
	ctx := context.Background()

	for range 3 {
		if _, err := feed.Price(ctx, "VTI", on); err != nil {
			t.Fatalf("Price(VTI) error = %v", err)
		}
		if _, err := feed.Price(ctx, "UNKNOWN", on); !errors.Is(err, folio.ErrNoPriceAvailable) {
			t.Fatalf("Price(UNKNOWN) error = %v", err)
		}
		feed.Price(ctx, "DOWN", on)
	}
	// VTI and UNKNOWN once, DOWN every time.
	if got, want := calls.Load(), int32(5); got != want {
		t.Errorf("requests = %d, want %d", got, want)
	}

	feed.Flush()
	feed.Price(ctx, "VTI", on)
	if got, want := calls.Load(), int32(6); got != want {
		t.Errorf("requests after Flush() = %d, want %d", got, want)
	}
}

func TestTableAndChain(t *testing.T) {
	prices := folio.NewPriceTable().
		Add("VTI", date.MustParse("2024-01-31"), folio.M(210, "USD"))
	other := folio.NewPriceTable().
		Add("BND", date.MustParse("2024-01-15"), folio.M(70, "USD"))
	feed := Chain{Table{Prices: prices}, Table{Prices: other}, Table{}}
	ctx := context.Background()

	if got, err := feed.Price(ctx, "VTI", date.MustParse("2024-02-10")); err != nil || !got.Equal(folio.M(210, "USD")) {
		t.Errorf("Price(VTI) = %v, %v, want 210 USD", got, err)
	}
	if got, err := feed.Price(ctx, "BND", date.MustParse("2024-01-31")); err != nil || !got.Equal(folio.M(70, "USD")) {
		t.Errorf("Price(BND) = %v, %v, want 70 USD", got, err)
	}
	if _, err := feed.Price(ctx, "BND", date.MustParse("2024-01-01")); !errors.Is(err, folio.ErrNoPriceAvailable) {
		t.Errorf("Price(BND) before the first quote: error = %v, want %v", err, folio.ErrNoPriceAvailable)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := (Table{Prices: prices}).Price(cancelled, "VTI", date.MustParse("2024-02-10")); !errors.Is(err, context.Canceled) {
		t.Errorf("Price() with a cancelled context: error = %v", err)
	}
}

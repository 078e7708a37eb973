package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestHTTPProviderQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/eod/USDEUR.FOREX" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_token") != "tok" {
			t.Fatalf("missing api token")
		}
		w.Write([]byte(`[{"date":"2025-03-11","open":0.919,"close":0.921}]`))
	}))
	defer srv.Close()

	p := NewHTTPProviderWithBase("tok", srv.URL)
	rate, err := p.Quote(context.Background(), "USD", "EUR", time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !rate.Equal(decimal.NewFromFloat(0.921)) {
		t.Fatalf("rate = %s, want 0.921", rate)
	}
}

func TestHTTPProviderEmptyPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	p := NewHTTPProviderWithBase("tok", srv.URL)
	if _, err := p.Quote(context.Background(), "USD", "EUR", time.Now()); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestResolveSameCurrency(t *testing.T) {
	r := NewResolver(nil)
	rate := r.Resolve(context.Background(), "USD", "USD", time.Now())
	if !rate.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("rate = %s, want 1", rate)
	}
}

func TestResolveStaticFallback(t *testing.T) {
	// No provider configured: the static table answers common pairs.
	r := NewResolver(nil)
	rate := r.Resolve(context.Background(), "USD", "EUR", time.Now())
	if !rate.Equal(decimal.NewFromFloat(0.92)) {
		t.Fatalf("rate = %s, want 0.92", rate)
	}
}

func TestResolveTerminalFallback(t *testing.T) {
	// Unknown pair and no provider resolves to 1.0 rather than failing.
	r := NewResolver(nil)
	rate := r.Resolve(context.Background(), "USD", "THB", time.Now())
	if !rate.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("rate = %s, want 1", rate)
	}
}

func TestResolveProviderErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	r := NewResolver(NewHTTPProviderWithBase("tok", srv.URL))
	rate := r.Resolve(context.Background(), "EUR", "USD", time.Now())
	if !rate.Equal(decimal.NewFromFloat(1.09)) {
		t.Fatalf("rate = %s, want static 1.09", rate)
	}
}

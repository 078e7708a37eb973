// Package rates resolves currency conversion rates for trips and expenses.
//
// Resolution policy: same currency pair resolves to 1; with a configured
// API token the EODHD forex endpoint supplies the historical daily close;
// without a token (or on provider failure) a small static table of common
// pairs answers; anything still unresolved falls back to 1.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Provider looks up a conversion rate for a currency pair on a given date.
type Provider interface {
	Quote(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, error)
}

// ErrNoQuote is returned when a provider has no rate for the pair.
var ErrNoQuote = errors.New("no quote for currency pair")

const defaultBaseURL = "https://eodhd.com/api"

// HTTPProvider queries the EODHD end-of-day endpoint for forex pairs.
// The ticker format for forex is "FROMTO.FOREX".
type HTTPProvider struct {
	apiToken string
	baseURL  string
	client   *http.Client
}

func NewHTTPProvider(apiToken string) *HTTPProvider {
	return &HTTPProvider{
		apiToken: apiToken,
		baseURL:  defaultBaseURL,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// NewHTTPProviderWithBase is used by tests to point at a stub server.
func NewHTTPProviderWithBase(apiToken, baseURL string) *HTTPProvider {
	p := NewHTTPProvider(apiToken)
	p.baseURL = strings.TrimRight(baseURL, "/")
	return p
}

func (p *HTTPProvider) Quote(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, error) {
	if p.apiToken == "" {
		return decimal.Zero, errors.New("missing rates api token")
	}

	// The eod endpoint includes both bounds, so from=to=date yields one row.
	day := date.Format("2006-01-02")
	addr := fmt.Sprintf("%s/eod/%s%s.FOREX?fmt=json&api_token=%s&from=%s&to=%s",
		p.baseURL, strings.ToUpper(from), strings.ToUpper(to), p.apiToken, day, day)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build rate request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return decimal.Zero, fmt.Errorf("rate endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	type row struct {
		Date  string          `json:"date"`
		Close decimal.Decimal `json:"close"`
	}
	var content []row
	if err := json.NewDecoder(resp.Body).Decode(&content); err != nil {
		return decimal.Zero, fmt.Errorf("decode rate payload: %w", err)
	}
	if len(content) == 0 {
		return decimal.Zero, ErrNoQuote
	}

	last := content[len(content)-1]
	if !last.Close.IsPositive() {
		return decimal.Zero, fmt.Errorf("non-positive rate %s for %s%s", last.Close, from, to)
	}
	return last.Close, nil
}

// Resolver applies the fallback policy on top of an optional provider.
type Resolver struct {
	provider Provider
}

func NewResolver(provider Provider) *Resolver {
	return &Resolver{provider: provider}
}

// Resolve never fails: it degrades through the static table down to 1.
func (r *Resolver) Resolve(ctx context.Context, from, to string, date time.Time) decimal.Decimal {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to {
		return decimal.NewFromInt(1)
	}

	if r.provider != nil {
		rate, err := r.provider.Quote(ctx, from, to, date)
		if err == nil {
			return rate
		}
		slog.WarnContext(ctx, "Rate provider failed, falling back to static table",
			"from", from, "to", to, "error", err)
	}

	if rate, ok := staticRate(from, to); ok {
		return rate
	}

	slog.WarnContext(ctx, "No rate available for pair, using 1.0", "from", from, "to", to)
	return decimal.NewFromInt(1)
}

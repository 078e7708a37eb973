package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"viaggi/internal/core"
	"viaggi/internal/i18n"
)

func testTrip() core.Trip {
	return core.Trip{
		ID:            "trip-1",
		Traveler:      "Ada",
		Name:          "Berlin Office Visit",
		Destination:   "Berlin",
		LocalCurrency: "EUR",
		BaseCurrency:  "USD",
		AdvanceAmount: decimal.RequireFromString("1000"),
		InitialRate:   decimal.RequireFromString("0.92"),
		StartDate:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Status:        core.StatusActive,
	}
}

func testExpenses() []core.Expense {
	return []core.Expense{
		{
			ID:             "e1",
			TripID:         "trip-1",
			Date:           time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
			Category:       core.CategoryMeal,
			Merchant:       "Curry 36",
			AmountOriginal: decimal.RequireFromString("12.50"),
			Currency:       "EUR",
			ExchangeRate:   decimal.RequireFromString("1.1"),
			AmountBase:     decimal.RequireFromString("13.75"),
			PaymentMethod:  core.PaymentCash,
			Notes:          "team lunch",
			Verified:       true,
		},
		{
			ID:             "e2",
			TripID:         "other-trip",
			Date:           time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
			Category:       core.CategoryTransport,
			Merchant:       "BVG",
			AmountOriginal: decimal.RequireFromString("3"),
			Currency:       "EUR",
			ExchangeRate:   decimal.RequireFromString("1.1"),
			AmountBase:     decimal.RequireFromString("3.30"),
			PaymentMethod:  core.PaymentPersonalCard,
		},
	}
}

func TestWriteTripCSVStartsWithBOM(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTripCSV(&buf, testTrip(), testExpenses(), i18n.LocaleEnglish); err != nil {
		t.Fatalf("WriteTripCSV failed: %v", err)
	}

	if !bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}) {
		t.Error("output should start with the UTF-8 BOM")
	}
}

func TestWriteTripCSVShape(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTripCSV(&buf, testTrip(), testExpenses(), i18n.LocaleEnglish); err != nil {
		t.Fatalf("WriteTripCSV failed: %v", err)
	}

	out := strings.TrimPrefix(buf.String(), "\xEF\xBB\xBF")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	// Metadata block, blank separator line, header, one expense row.
	var blankIdx = -1
	for i, l := range lines {
		if l == "" {
			blankIdx = i
			break
		}
	}
	if blankIdx < 0 {
		t.Fatal("no blank line separating metadata from the expense table")
	}

	if want := "Trip;Berlin Office Visit"; lines[0] != want {
		t.Errorf("first line = %q, want %q", lines[0], want)
	}

	header := lines[blankIdx+1]
	if !strings.HasPrefix(header, "Date;Category;Merchant;Amount;Currency") {
		t.Errorf("unexpected table header: %q", header)
	}
	if !strings.Contains(header, "Amount (USD)") {
		t.Errorf("header should carry the base currency: %q", header)
	}

	rows := lines[blankIdx+2:]
	if len(rows) != 1 {
		t.Fatalf("expense rows = %d, want 1 (foreign trip filtered)", len(rows))
	}
	if want := "2026-03-11;Meals;Curry 36;12,50;EUR;1,1;13,75;Cash / advance;team lunch;yes"; rows[0] != want {
		t.Errorf("expense row = %q, want %q", rows[0], want)
	}
}

func TestWriteTripCSVCommaDecimalRates(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTripCSV(&buf, testTrip(), testExpenses(), i18n.LocaleEnglish); err != nil {
		t.Fatalf("WriteTripCSV failed: %v", err)
	}
	out := buf.String()

	// Rates use the same comma separator as the amounts.
	if !strings.Contains(out, "Initial rate;0,92") {
		t.Error("initial rate should use a comma decimal separator")
	}
	if strings.Contains(out, ";1.1;") || strings.Contains(out, ";0.92") {
		t.Errorf("dot-decimal rate leaked into the export:\n%s", out)
	}
}

func TestWriteTripCSVSettlementInMetadata(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTripCSV(&buf, testTrip(), testExpenses(), i18n.LocaleEnglish); err != nil {
		t.Fatalf("WriteTripCSV failed: %v", err)
	}
	out := buf.String()

	// 1000 advance - 13.75 spent = 986.25 to return.
	if !strings.Contains(out, "Total spent;13,75") {
		t.Error("missing total spent line")
	}
	if !strings.Contains(out, "Balance;986,25") {
		t.Error("missing balance line")
	}
	if !strings.Contains(out, "Settlement;To return") {
		t.Error("missing settlement direction line")
	}
}

func TestWriteTripCSVItalianLabels(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTripCSV(&buf, testTrip(), testExpenses(), i18n.LocaleItalian); err != nil {
		t.Fatalf("WriteTripCSV failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "Viaggio;Berlin Office Visit") {
		t.Error("missing localized trip line")
	}
	if !strings.Contains(out, ";Pasti;") {
		t.Error("missing localized category label")
	}
	if !strings.Contains(out, "Liquidazione;Da restituire") {
		t.Error("missing localized settlement line")
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		trip core.Trip
		want string
	}{
		{"plain", testTrip(), "Berlin-Office-Visit-2026-03-10.csv"},
		{"empty name", core.Trip{StartDate: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}, "trip-2026-01-02.csv"},
		{"strips punctuation", core.Trip{Name: "Q1: Paris/Lyon", StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)}, "Q1-ParisLyon-2026-04-01.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filename(tt.trip); got != tt.want {
				t.Errorf("Filename = %q, want %q", got, tt.want)
			}
		})
	}
}

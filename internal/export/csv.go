// Package export renders a trip's ledger for use outside the app:
// a spreadsheet-friendly CSV download and an optional Google Sheets report.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"viaggi/internal/core"
	"viaggi/internal/i18n"
)

// utf8BOM keeps Excel from guessing the encoding wrong on download.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const dateLayout = "2006-01-02"

// WriteTripCSV writes the trip metadata block, a blank line and the expense
// table, with labels in the given locale. Semicolon separators and comma
// decimals match what European spreadsheet locales expect.
func WriteTripCSV(w io.Writer, t core.Trip, expenses []core.Expense, locale i18n.Locale) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	summary := core.Summarize(t, expenses)
	label := func(key string) string { return i18n.T(locale, key) }

	meta := [][]string{
		{label("export.trip"), t.Name},
		{label("export.traveler"), t.Traveler},
		{label("export.destination"), t.Destination},
		{label("export.start_date"), t.StartDate.Format(dateLayout)},
		{label("export.status"), label("status." + string(t.Status))},
		{label("export.base_currency"), t.BaseCurrency},
		{label("export.local_currency"), t.LocalCurrency},
		{label("export.advance"), core.FormatAmount(t.AdvanceAmount)},
		{label("export.initial_rate"), core.FormatRate(t.InitialRate)},
		{label("export.total_spent"), core.FormatAmount(summary.TotalSpent)},
		{label("export.balance"), core.FormatAmount(summary.Balance)},
		{label("export.balance_local"), core.FormatAmount(summary.BalanceLocal)},
		{label("export.settlement"), label("settlement." + string(summary.Direction))},
	}
	for _, row := range meta {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write metadata row: %w", err)
		}
	}

	// csv.Writer drops fully empty records, so flush and emit the separator
	// line by hand.
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush metadata: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("write separator: %w", err)
	}

	header := []string{
		label("export.date"), label("export.category"), label("export.merchant"),
		label("export.amount"), label("export.currency"), label("export.rate"),
		label("export.amount") + " (" + t.BaseCurrency + ")",
		label("export.payment"), label("export.notes"), label("export.verified"),
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write table header: %w", err)
	}

	for _, e := range expenses {
		if e.TripID != t.ID {
			continue
		}
		verified := label("export.no")
		if e.Verified {
			verified = label("export.yes")
		}
		row := []string{
			e.Date.Format(dateLayout),
			label("category." + string(e.Category)),
			e.Merchant,
			core.FormatAmount(e.AmountOriginal),
			e.Currency,
			core.FormatRate(e.ExchangeRate),
			core.FormatAmount(e.AmountBase),
			label("payment." + string(e.PaymentMethod)),
			e.Notes,
			verified,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write expense row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush expenses: %w", err)
	}
	return nil
}

// Filename returns the suggested download name for a trip export.
func Filename(t core.Trip) string {
	name := t.Name
	if name == "" {
		name = "trip"
	}
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		case r == ' ', r == '-', r == '_':
			out = append(out, '-')
		}
	}
	return fmt.Sprintf("%s-%s.csv", string(out), t.StartDate.Format(dateLayout))
}

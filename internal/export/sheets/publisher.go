// Package sheets publishes trip reports to a Google spreadsheet using a
// service-account credential. Credentials stay server-side; browsers only
// ever see the JSON API.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"viaggi/internal/core"
)

const dateLayout = "2006-01-02"

// Config carries the spreadsheet target and the service-account credential.
// Exactly one of CredentialsJSON or CredentialsFile must be set.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Publisher struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// New builds a publisher from a service-account credential.
func New(ctx context.Context, cfg Config) (*Publisher, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Trips"
	}

	credentials, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Publisher{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func loadCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials")
	}
}

// PublishTrip appends the trip's settlement line and its expense rows to the
// configured sheet. Rows land after the last used row, so repeated publishes
// of the same trip append fresh snapshots rather than editing in place.
func (p *Publisher) PublishTrip(ctx context.Context, t core.Trip, expenses []core.Expense) error {
	if p.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rows := tripRows(t, expenses)

	// Find the next empty row before writing.
	rng := fmt.Sprintf("%s!A:A", p.sheetName)
	resp, err := p.svc.Spreadsheets.Values.Get(p.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get sheet dimensions for %s: %w", p.sheetName, err)
	}
	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d", p.sheetName, nextRow)
	vr := &gsheet.ValueRange{Values: rows}
	_, err = p.svc.Spreadsheets.Values.Update(p.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write trip report to %s: %w", p.sheetName, err)
	}

	slog.InfoContext(ctx, "Published trip report to Google Sheets",
		"trip_id", t.ID,
		"sheet", p.sheetName,
		"rows", len(rows),
		"start_row", nextRow)

	return nil
}

// tripRows renders the settlement line followed by one row per expense.
// Expense rows leave column A empty so trip lines stand out in the sheet.
func tripRows(t core.Trip, expenses []core.Expense) [][]any {
	summary := core.Summarize(t, expenses)

	rows := [][]any{
		{
			t.Name, t.Traveler, t.Destination,
			t.StartDate.Format(dateLayout), string(t.Status),
			t.BaseCurrency, t.AdvanceAmount.StringFixed(core.MoneyPrecision),
			summary.TotalSpent.StringFixed(core.MoneyPrecision),
			summary.Balance.StringFixed(core.MoneyPrecision),
			string(summary.Direction),
		},
	}
	for _, e := range expenses {
		if e.TripID != t.ID {
			continue
		}
		rows = append(rows, []any{
			"", e.Date.Format(dateLayout), string(e.Category), e.Merchant,
			e.AmountOriginal.StringFixed(core.MoneyPrecision), e.Currency,
			e.ExchangeRate.String(),
			e.AmountBase.StringFixed(core.MoneyPrecision),
			string(e.PaymentMethod),
		})
	}
	return rows
}

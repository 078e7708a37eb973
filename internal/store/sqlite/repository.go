// Package sqlite is the durable store backend over modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"viaggi/internal/core"
	"viaggi/internal/store"
)

type Repository struct {
	db *sql.DB
}

var _ store.Store = (*Repository)(nil)

func New(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) ListTrips(ctx context.Context) ([]core.Trip, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, traveler, name, destination, local_currency, base_currency,
		       advance_amount, initial_rate, start_date, status
		FROM trips ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var out []core.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) GetTrip(ctx context.Context, id string) (core.Trip, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, traveler, name, destination, local_currency, base_currency,
		       advance_amount, initial_rate, start_date, status
		FROM trips WHERE id = ?`, id)
	t, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Trip{}, store.ErrNotFound
	}
	return t, err
}

// UpsertTrip replaces the record with the same ID in place, or appends.
// A single statement, so the write is atomic.
func (r *Repository) UpsertTrip(ctx context.Context, t core.Trip) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO trips (id, traveler, name, destination, local_currency, base_currency,
		                   advance_amount, initial_rate, start_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			traveler = excluded.traveler,
			name = excluded.name,
			destination = excluded.destination,
			local_currency = excluded.local_currency,
			base_currency = excluded.base_currency,
			advance_amount = excluded.advance_amount,
			initial_rate = excluded.initial_rate,
			start_date = excluded.start_date,
			status = excluded.status`,
		t.ID, t.Traveler, t.Name, t.Destination, t.LocalCurrency, t.BaseCurrency,
		t.AdvanceAmount.String(), t.InitialRate.String(),
		t.StartDate.UTC().Format(time.RFC3339), string(t.Status))
	if err != nil {
		return "", fmt.Errorf("upsert trip: %w", err)
	}

	slog.InfoContext(ctx, "Trip saved",
		"id", t.ID,
		"name", t.Name,
		"status", t.Status)

	return t.ID, nil
}

func (r *Repository) ListExpenses(ctx context.Context, tripID string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, trip_id, date, category, merchant, amount_original, currency,
		       exchange_rate, amount_base, payment_method, receipt, notes, verified
		FROM expenses WHERE trip_id = ? ORDER BY rowid`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, trip_id, date, category, merchant, amount_original, currency,
		       exchange_rate, amount_base, payment_method, receipt, notes, verified
		FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, store.ErrNotFound
	}
	return e, err
}

func (r *Repository) UpsertExpense(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, trip_id, date, category, merchant, amount_original,
		                      currency, exchange_rate, amount_base, payment_method,
		                      receipt, notes, verified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			trip_id = excluded.trip_id,
			date = excluded.date,
			category = excluded.category,
			merchant = excluded.merchant,
			amount_original = excluded.amount_original,
			currency = excluded.currency,
			exchange_rate = excluded.exchange_rate,
			amount_base = excluded.amount_base,
			payment_method = excluded.payment_method,
			receipt = excluded.receipt,
			notes = excluded.notes,
			verified = excluded.verified`,
		e.ID, e.TripID, e.Date.UTC().Format(time.RFC3339), string(e.Category),
		e.Merchant, e.AmountOriginal.String(), e.Currency, e.ExchangeRate.String(),
		e.AmountBase.String(), string(e.PaymentMethod), e.Receipt, e.Notes,
		boolToInt(e.Verified))
	if err != nil {
		return "", fmt.Errorf("upsert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"trip_id", e.TripID,
		"merchant", e.Merchant,
		"amount_base", e.AmountBase.String())

	return e.ID, nil
}

func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (core.Trip, error) {
	var (
		t                      core.Trip
		advance, rate, started string
		status                 string
	)
	err := row.Scan(&t.ID, &t.Traveler, &t.Name, &t.Destination, &t.LocalCurrency,
		&t.BaseCurrency, &advance, &rate, &started, &status)
	if err != nil {
		return core.Trip{}, err
	}
	if t.AdvanceAmount, err = decimal.NewFromString(advance); err != nil {
		return core.Trip{}, fmt.Errorf("parse advance amount %q: %w", advance, err)
	}
	if t.InitialRate, err = decimal.NewFromString(rate); err != nil {
		return core.Trip{}, fmt.Errorf("parse initial rate %q: %w", rate, err)
	}
	if t.StartDate, err = time.Parse(time.RFC3339, started); err != nil {
		return core.Trip{}, fmt.Errorf("parse start date %q: %w", started, err)
	}
	t.Status = core.TripStatus(status)
	return t, nil
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e                      core.Expense
		date, orig, rate, base string
		category, payment      string
		verified               int64
	)
	err := row.Scan(&e.ID, &e.TripID, &date, &category, &e.Merchant, &orig,
		&e.Currency, &rate, &base, &payment, &e.Receipt, &e.Notes, &verified)
	if err != nil {
		return core.Expense{}, err
	}
	if e.Date, err = time.Parse(time.RFC3339, date); err != nil {
		return core.Expense{}, fmt.Errorf("parse expense date %q: %w", date, err)
	}
	if e.AmountOriginal, err = decimal.NewFromString(orig); err != nil {
		return core.Expense{}, fmt.Errorf("parse original amount %q: %w", orig, err)
	}
	if e.ExchangeRate, err = decimal.NewFromString(rate); err != nil {
		return core.Expense{}, fmt.Errorf("parse exchange rate %q: %w", rate, err)
	}
	if e.AmountBase, err = decimal.NewFromString(base); err != nil {
		return core.Expense{}, fmt.Errorf("parse base amount %q: %w", base, err)
	}
	e.Category = core.Category(category)
	e.PaymentMethod = core.PaymentMethod(payment)
	e.Verified = verified != 0
	return e, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

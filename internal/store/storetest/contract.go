// Package storetest holds the contract suite both store backends must pass.
// Running the same suite against SQLite and memory is what makes their
// interchangeability a tested property instead of a convention.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"viaggi/internal/core"
	"viaggi/internal/store"
)

func sampleTrip() core.Trip {
	return core.Trip{
		Traveler:      "Ada",
		Name:          "Berlin onsite",
		Destination:   "Berlin",
		LocalCurrency: "EUR",
		BaseCurrency:  "USD",
		AdvanceAmount: decimal.NewFromInt(1000),
		InitialRate:   decimal.NewFromFloat(0.92),
		StartDate:     time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Status:        core.StatusActive,
	}
}

func sampleExpense(tripID string) core.Expense {
	e := core.Expense{
		TripID:         tripID,
		Date:           time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		Category:       core.CategoryMeal,
		Merchant:       "Curry 36",
		AmountOriginal: decimal.NewFromFloat(12.50),
		Currency:       "EUR",
		ExchangeRate:   decimal.NewFromFloat(1.1),
		PaymentMethod:  core.PaymentCash,
		Notes:          "lunch",
	}
	return e.WithDerived()
}

// Run executes the full contract against a fresh store.
func Run(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("trip round trip", func(t *testing.T) { testTripRoundTrip(ctx, t, s) })
	t.Run("trip upsert in place", func(t *testing.T) { testTripUpsert(ctx, t, s) })
	t.Run("expense round trip", func(t *testing.T) { testExpenseRoundTrip(ctx, t, s) })
	t.Run("expense scoping", func(t *testing.T) { testExpenseScoping(ctx, t, s) })
	t.Run("expense delete", func(t *testing.T) { testExpenseDelete(ctx, t, s) })
	t.Run("not found", func(t *testing.T) { testNotFound(ctx, t, s) })
	t.Run("validation rejected", func(t *testing.T) { testValidation(ctx, t, s) })
}

func testTripRoundTrip(ctx context.Context, t *testing.T, s store.Store) {
	want := sampleTrip()
	id, err := s.UpsertTrip(ctx, want)
	if err != nil {
		t.Fatalf("upsert trip: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}
	want.ID = id

	got, err := s.GetTrip(ctx, id)
	if err != nil {
		t.Fatalf("get trip: %v", err)
	}
	assertTripEqual(t, want, got)

	trips, err := s.ListTrips(ctx)
	if err != nil {
		t.Fatalf("list trips: %v", err)
	}
	found := false
	for _, tr := range trips {
		if tr.ID == id {
			found = true
			assertTripEqual(t, want, tr)
		}
	}
	if !found {
		t.Fatal("saved trip missing from listing")
	}
}

func testTripUpsert(ctx context.Context, t *testing.T, s store.Store) {
	trip := sampleTrip()
	id, err := s.UpsertTrip(ctx, trip)
	if err != nil {
		t.Fatalf("upsert trip: %v", err)
	}
	before, err := s.ListTrips(ctx)
	if err != nil {
		t.Fatalf("list trips: %v", err)
	}

	trip.ID = id
	trip.Status = core.StatusClosed
	trip.AdvanceAmount = decimal.NewFromInt(500)
	if _, err := s.UpsertTrip(ctx, trip); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	after, err := s.ListTrips(ctx)
	if err != nil {
		t.Fatalf("list trips: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("upsert by id must replace, count went %d -> %d", len(before), len(after))
	}

	got, err := s.GetTrip(ctx, id)
	if err != nil {
		t.Fatalf("get trip: %v", err)
	}
	if got.Status != core.StatusClosed {
		t.Fatalf("status = %s, want closed", got.Status)
	}

	// Reopening is allowed; the transition is reversible.
	trip.Status = core.StatusActive
	if _, err := s.UpsertTrip(ctx, trip); err != nil {
		t.Fatalf("reopen: %v", err)
	}
}

func testExpenseRoundTrip(ctx context.Context, t *testing.T, s store.Store) {
	tripID, err := s.UpsertTrip(ctx, sampleTrip())
	if err != nil {
		t.Fatalf("upsert trip: %v", err)
	}

	want := sampleExpense(tripID)
	want.Receipt = []byte{0xff, 0xd8, 0x01}
	want.Verified = true
	id, err := s.UpsertExpense(ctx, want)
	if err != nil {
		t.Fatalf("upsert expense: %v", err)
	}
	want.ID = id

	got, err := s.GetExpense(ctx, id)
	if err != nil {
		t.Fatalf("get expense: %v", err)
	}
	assertExpenseEqual(t, want, got)
}

func testExpenseScoping(ctx context.Context, t *testing.T, s store.Store) {
	tripA, err := s.UpsertTrip(ctx, sampleTrip())
	if err != nil {
		t.Fatalf("upsert trip: %v", err)
	}
	tripB, err := s.UpsertTrip(ctx, sampleTrip())
	if err != nil {
		t.Fatalf("upsert trip: %v", err)
	}

	first := sampleExpense(tripA)
	second := sampleExpense(tripA)
	second.Merchant = "BVG"
	other := sampleExpense(tripB)
	firstID, err := s.UpsertExpense(ctx, first)
	if err != nil {
		t.Fatalf("upsert expense: %v", err)
	}
	secondID, err := s.UpsertExpense(ctx, second)
	if err != nil {
		t.Fatalf("upsert expense: %v", err)
	}
	if _, err := s.UpsertExpense(ctx, other); err != nil {
		t.Fatalf("upsert expense: %v", err)
	}

	got, err := s.ListExpenses(ctx, tripA)
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 expenses for trip, got %d", len(got))
	}
	// Insertion order
	if got[0].ID != firstID || got[1].ID != secondID {
		t.Fatalf("listing not in insertion order: %s, %s", got[0].ID, got[1].ID)
	}
	for _, e := range got {
		if e.TripID != tripA {
			t.Fatalf("foreign expense leaked into listing: %s", e.ID)
		}
	}
}

func testExpenseDelete(ctx context.Context, t *testing.T, s store.Store) {
	tripID, err := s.UpsertTrip(ctx, sampleTrip())
	if err != nil {
		t.Fatalf("upsert trip: %v", err)
	}
	keepID, err := s.UpsertExpense(ctx, sampleExpense(tripID))
	if err != nil {
		t.Fatalf("upsert expense: %v", err)
	}
	dropID, err := s.UpsertExpense(ctx, sampleExpense(tripID))
	if err != nil {
		t.Fatalf("upsert expense: %v", err)
	}

	if err := s.DeleteExpense(ctx, dropID); err != nil {
		t.Fatalf("delete expense: %v", err)
	}

	got, err := s.ListExpenses(ctx, tripID)
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if len(got) != 1 || got[0].ID != keepID {
		t.Fatalf("expected only %s to remain, got %d records", keepID, len(got))
	}

	if err := s.DeleteExpense(ctx, dropID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}

func testNotFound(ctx context.Context, t *testing.T, s store.Store) {
	if _, err := s.GetTrip(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("get trip: got %v, want ErrNotFound", err)
	}
	if _, err := s.GetExpense(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("get expense: got %v, want ErrNotFound", err)
	}
}

func testValidation(ctx context.Context, t *testing.T, s store.Store) {
	bad := sampleTrip()
	bad.Name = ""
	if _, err := s.UpsertTrip(ctx, bad); err == nil {
		t.Fatal("expected validation error for bad trip")
	}
	if _, err := s.UpsertExpense(ctx, core.Expense{}); err == nil {
		t.Fatal("expected validation error for bad expense")
	}
}

func assertTripEqual(t *testing.T, want, got core.Trip) {
	t.Helper()
	if got.ID != want.ID || got.Traveler != want.Traveler || got.Name != want.Name ||
		got.Destination != want.Destination || got.LocalCurrency != want.LocalCurrency ||
		got.BaseCurrency != want.BaseCurrency || got.Status != want.Status {
		t.Fatalf("trip mismatch: got %+v, want %+v", got, want)
	}
	if !got.AdvanceAmount.Equal(want.AdvanceAmount) || !got.InitialRate.Equal(want.InitialRate) {
		t.Fatalf("trip amounts mismatch: got %s/%s, want %s/%s",
			got.AdvanceAmount, got.InitialRate, want.AdvanceAmount, want.InitialRate)
	}
	if !got.StartDate.Equal(want.StartDate) {
		t.Fatalf("start date = %s, want %s", got.StartDate, want.StartDate)
	}
}

func assertExpenseEqual(t *testing.T, want, got core.Expense) {
	t.Helper()
	if got.ID != want.ID || got.TripID != want.TripID || got.Category != want.Category ||
		got.Merchant != want.Merchant || got.Currency != want.Currency ||
		got.PaymentMethod != want.PaymentMethod || got.Notes != want.Notes ||
		got.Verified != want.Verified {
		t.Fatalf("expense mismatch: got %+v, want %+v", got, want)
	}
	if !got.AmountOriginal.Equal(want.AmountOriginal) ||
		!got.ExchangeRate.Equal(want.ExchangeRate) ||
		!got.AmountBase.Equal(want.AmountBase) {
		t.Fatalf("expense amounts mismatch: got %s/%s/%s",
			got.AmountOriginal, got.ExchangeRate, got.AmountBase)
	}
	if !got.Date.Equal(want.Date) {
		t.Fatalf("date = %s, want %s", got.Date, want.Date)
	}
	if string(got.Receipt) != string(want.Receipt) {
		t.Fatalf("receipt bytes mismatch: %d vs %d bytes", len(got.Receipt), len(want.Receipt))
	}
}

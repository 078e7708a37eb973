package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"viaggi/internal/core"
	"viaggi/internal/store/memory"
)

type stubReporter struct {
	published []string
	err       error
}

func (r *stubReporter) PublishTrip(_ context.Context, t core.Trip, _ []core.Expense) error {
	if r.err != nil {
		return r.err
	}
	r.published = append(r.published, t.ID)
	return nil
}

func seedTrip(t *testing.T, st *memory.Store, status core.TripStatus) string {
	t.Helper()
	id, err := st.UpsertTrip(context.Background(), core.Trip{
		Traveler:      "Anna",
		Name:          "Berlin onsite",
		Destination:   "Berlin",
		LocalCurrency: "EUR",
		BaseCurrency:  "EUR",
		AdvanceAmount: decimal.RequireFromString("1000"),
		InitialRate:   decimal.NewFromInt(1),
		StartDate:     time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		Status:        status,
	})
	if err != nil {
		t.Fatalf("seed trip: %v", err)
	}
	return id
}

func TestPublishClosedTripsOnlyOnce(t *testing.T) {
	st := memory.New()
	closed := seedTrip(t, st, core.StatusClosed)
	seedTrip(t, st, core.StatusActive)

	reporter := &stubReporter{}
	w := NewReportWorker(st, reporter, time.Minute)

	if err := w.PublishClosedTrips(context.Background()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(reporter.published) != 1 || reporter.published[0] != closed {
		t.Fatalf("expected only closed trip published, got %v", reporter.published)
	}

	// Re-running must not publish the same trip again.
	if err := w.PublishClosedTrips(context.Background()); err != nil {
		t.Fatalf("second publish: %v", err)
	}
	if len(reporter.published) != 1 {
		t.Fatalf("expected no duplicate publish, got %v", reporter.published)
	}
}

func TestPublishRetriesFailedTrips(t *testing.T) {
	st := memory.New()
	seedTrip(t, st, core.StatusClosed)

	reporter := &stubReporter{err: errors.New("sheet unavailable")}
	w := NewReportWorker(st, reporter, time.Minute)

	if err := w.PublishClosedTrips(context.Background()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(reporter.published) != 0 {
		t.Fatalf("expected no publishes while failing, got %v", reporter.published)
	}

	// Once the reporter recovers the trip goes out on the next run.
	reporter.err = nil
	if err := w.PublishClosedTrips(context.Background()); err != nil {
		t.Fatalf("retry publish: %v", err)
	}
	if len(reporter.published) != 1 {
		t.Fatalf("expected publish after recovery, got %v", reporter.published)
	}
}

func TestReportWorkerLifecycle(t *testing.T) {
	st := memory.New()
	w := NewReportWorker(st, &stubReporter{}, time.Minute)

	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.Start(ctx); err == nil {
		t.Fatal("expected error on double start")
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := w.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := w.Stop(stopCtx); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}

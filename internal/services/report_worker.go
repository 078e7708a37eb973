package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"viaggi/internal/core"
	"viaggi/internal/store"
)

// TripReporter appends a trip's report somewhere external. Satisfied by
// *sheets.Publisher.
type TripReporter interface {
	PublishTrip(ctx context.Context, t core.Trip, expenses []core.Expense) error
}

// ReportWorker periodically publishes closed trips to the configured
// reporter. The published set lives in memory, so a restart may append a
// trip's report a second time; the report sheet is an append-only log and
// tolerant of that.
type ReportWorker struct {
	store    store.Store
	reporter TripReporter
	interval time.Duration

	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
	published map[string]bool
}

func NewReportWorker(st store.Store, reporter TripReporter, interval time.Duration) *ReportWorker {
	return &ReportWorker{
		store:     st,
		reporter:  reporter,
		interval:  interval,
		published: make(map[string]bool),
	}
}

func (w *ReportWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("report worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	slog.InfoContext(ctx, "Report worker started", "interval", w.interval)
	return nil
}

func (w *ReportWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopCh)
	done := w.doneCh
	w.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("report worker stop timed out: %w", ctx.Err())
	}
}

func (w *ReportWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			if err := w.PublishClosedTrips(ctx); err != nil {
				slog.ErrorContext(ctx, "Trip report run failed", "error", err)
			}
		}
	}
}

// PublishClosedTrips reports every closed trip not yet published in this
// process. A failed trip is retried on the next tick.
func (w *ReportWorker) PublishClosedTrips(ctx context.Context) error {
	trips, err := w.store.ListTrips(ctx)
	if err != nil {
		return fmt.Errorf("list trips: %w", err)
	}

	for _, t := range trips {
		if t.Status != core.StatusClosed || w.seen(t.ID) {
			continue
		}
		expenses, err := w.store.ListExpenses(ctx, t.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load expenses for report",
				"trip_id", t.ID, "error", err)
			continue
		}
		if err := w.reporter.PublishTrip(ctx, t, expenses); err != nil {
			slog.ErrorContext(ctx, "Failed to publish trip report",
				"trip_id", t.ID, "error", err)
			continue
		}
		w.mark(t.ID)
	}
	return nil
}

func (w *ReportWorker) seen(tripID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.published[tripID]
}

func (w *ReportWorker) mark(tripID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.published[tripID] = true
}

// Package store defines the persistence port shared by the SQLite and
// in-memory backends. Both implementations must satisfy the same contract;
// storetest carries the shared suite that proves it.
package store

import (
	"context"
	"errors"

	"viaggi/internal/core"
)

// ErrNotFound is returned when a trip or expense id has no record.
var ErrNotFound = errors.New("record not found")

type (
	// TripStore persists trip records. Upsert replaces an existing record
	// with the same ID in place, otherwise appends. Trips are never deleted.
	TripStore interface {
		ListTrips(ctx context.Context) ([]core.Trip, error)
		GetTrip(ctx context.Context, id string) (core.Trip, error)
		UpsertTrip(ctx context.Context, t core.Trip) (string, error)
	}

	// ExpenseStore persists expense records scoped to a trip.
	// ListExpenses returns only the given trip's expenses, in insertion order.
	ExpenseStore interface {
		ListExpenses(ctx context.Context, tripID string) ([]core.Expense, error)
		GetExpense(ctx context.Context, id string) (core.Expense, error)
		UpsertExpense(ctx context.Context, e core.Expense) (string, error)
		DeleteExpense(ctx context.Context, id string) error
	}

	// Store is the full persistence surface used by the services and the
	// HTTP layer.
	Store interface {
		TripStore
		ExpenseStore
	}
)

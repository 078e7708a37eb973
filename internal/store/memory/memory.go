// Package memory is the flat-list store backend. It mirrors the SQLite
// backend's contract exactly so either can be selected at startup.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"viaggi/internal/core"
	"viaggi/internal/store"
)

type Store struct {
	mu       sync.Mutex
	trips    []core.Trip
	expenses []core.Expense
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) ListTrips(_ context.Context) ([]core.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Trip, len(s.trips))
	copy(out, s.trips)
	return out, nil
}

func (s *Store) GetTrip(_ context.Context, id string) (core.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.trips {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Trip{}, store.ErrNotFound
}

// UpsertTrip replaces the record with the same ID in place, or appends.
func (s *Store) UpsertTrip(_ context.Context, t core.Trip) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.trips {
		if s.trips[i].ID == t.ID {
			s.trips[i] = t
			return t.ID, nil
		}
	}
	s.trips = append(s.trips, t)
	return t.ID, nil
}

func (s *Store) ListExpenses(_ context.Context, tripID string) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Expense
	for _, e := range s.expenses {
		if e.TripID == tripID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) GetExpense(_ context.Context, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, store.ErrNotFound
}

func (s *Store) UpsertExpense(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == e.ID {
			s.expenses[i] = e
			return e.ID, nil
		}
	}
	s.expenses = append(s.expenses, e)
	return e.ID, nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

package http

import (
	"errors"
	"io"
	"net/http"

	"viaggi/internal/core"
	"viaggi/internal/services"
	"viaggi/internal/vision"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	tripID := r.PathValue("id")

	if _, err := s.store.GetTrip(r.Context(), tripID); err != nil {
		respondStoreError(w, r, err)
		return
	}

	expenses, err := s.store.ListExpenses(r.Context(), tripID)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	payload := make([]expensePayload, 0, len(expenses))
	for _, e := range expenses {
		payload = append(payload, expenseToPayload(e))
	}
	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	tripID := r.PathValue("id")

	t, err := s.store.GetTrip(r.Context(), tripID)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	var p expensePayload
	if err := decodeJSON(r, &p); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	e, err := p.toCore(tripID)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	e.ID = ""
	s.fillRate(r, &e, t)
	if err := e.Validate(); err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	saved, err := s.expenses.CreateExpense(r.Context(), e)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	s.summaryCache.Invalidate(tripID)
	respondJSON(w, http.StatusCreated, expenseToPayload(saved))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := s.store.GetExpense(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	var p expensePayload
	if err := decodeJSON(r, &p); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	e, err := p.toCore(existing.TripID)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	e.ID = id
	if len(e.Receipt) == 0 {
		e.Receipt = existing.Receipt
	}
	if err := e.Validate(); err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	saved, err := s.expenses.UpdateExpense(r.Context(), e)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	s.summaryCache.Invalidate(existing.TripID)
	respondJSON(w, http.StatusOK, expenseToPayload(saved))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := s.store.GetExpense(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	if err := s.expenses.DeleteExpense(r.Context(), id); err != nil {
		respondStoreError(w, r, err)
		return
	}
	s.summaryCache.Invalidate(existing.TripID)
	w.WriteHeader(http.StatusNoContent)
}

// handleScanExpense accepts a raw image body, attaches it to the expense
// and either queues an async scan (202) or, with no broker configured,
// analyzes inline and returns the verified expense (200).
func (s *Server) handleScanExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, r, http.StatusRequestEntityTooLarge, "receipt image too large")
		return
	}
	if len(body) == 0 {
		respondError(w, r, http.StatusBadRequest, "empty receipt image")
		return
	}

	image, err := vision.PrepareImage(body)
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, "unsupported receipt image")
		return
	}

	e, scannedNow, err := s.expenses.AttachReceipt(r.Context(), id, image)
	if err != nil {
		if errors.Is(err, services.ErrNoReceipt) {
			respondError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		respondStoreError(w, r, err)
		return
	}

	s.summaryCache.Invalidate(e.TripID)
	status := http.StatusAccepted
	if scannedNow {
		status = http.StatusOK
	}
	respondJSON(w, status, expenseToPayload(e))
}

// fillRate defaults the currency to the trip's local one and resolves a
// missing exchange rate for the expense date. Explicit values always win.
func (s *Server) fillRate(r *http.Request, e *core.Expense, t core.Trip) {
	if e.Currency == "" {
		e.Currency = t.LocalCurrency
	}
	if e.ExchangeRate.IsZero() && s.resolver != nil {
		e.ExchangeRate = s.resolver.Resolve(r.Context(), e.Currency, t.BaseCurrency, e.Date)
	}
}

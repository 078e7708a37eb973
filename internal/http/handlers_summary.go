package http

import (
	"log/slog"
	"net/http"

	"viaggi/internal/core"
	"viaggi/internal/export"
	"viaggi/internal/i18n"
)

func (s *Server) handleTripSummary(w http.ResponseWriter, r *http.Request) {
	tripID := r.PathValue("id")

	summary, err := s.summaryCache.GetOrCompute(tripID, func() (core.Summary, error) {
		t, expenses, err := s.loadTrip(r)
		if err != nil {
			return core.Summary{}, err
		}
		return core.Summarize(t, expenses), nil
	})
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summaryToPayload(summary))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	t, expenses, err := s.loadTrip(r)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	// Labels follow the saved language preference; load failures fall back
	// to the default locale rather than failing the download.
	locale := i18n.DefaultLocale
	if prefs, err := s.prefs.Load(); err == nil {
		locale = prefs.Language
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(t)+`"`)
	if err := export.WriteTripCSV(w, t, expenses, locale); err != nil {
		// Headers are already written; all we can do is log.
		slog.ErrorContext(r.Context(), "CSV export failed", "trip_id", t.ID, "error", err)
	}
}

func (s *Server) loadTrip(r *http.Request) (core.Trip, []core.Expense, error) {
	tripID := r.PathValue("id")

	t, err := s.store.GetTrip(r.Context(), tripID)
	if err != nil {
		return core.Trip{}, nil, err
	}
	expenses, err := s.store.ListExpenses(r.Context(), tripID)
	if err != nil {
		return core.Trip{}, nil, err
	}
	return t, expenses, nil
}

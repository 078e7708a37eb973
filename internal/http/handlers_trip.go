package http

import (
	"net/http"
	"strings"

	"viaggi/internal/core"
)

func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.store.ListTrips(r.Context())
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	payload := make([]tripPayload, 0, len(trips))
	for _, t := range trips {
		payload = append(payload, tripToPayload(t))
	}
	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	var p tripPayload
	if err := decodeJSON(r, &p); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	t, err := p.toCore()
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	t.ID = "" // the store assigns ids on create
	if err := t.Validate(); err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.store.UpsertTrip(r.Context(), t)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	t.ID = id
	respondJSON(w, http.StatusCreated, tripToPayload(t))
}

func (s *Server) handleUpdateTrip(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, err := s.store.GetTrip(r.Context(), id); err != nil {
		respondStoreError(w, r, err)
		return
	}

	var p tripPayload
	if err := decodeJSON(r, &p); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	t, err := p.toCore()
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	t.ID = id
	if err := t.Validate(); err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if _, err := s.store.UpsertTrip(r.Context(), t); err != nil {
		respondStoreError(w, r, err)
		return
	}
	s.summaryCache.Invalidate(id)
	respondJSON(w, http.StatusOK, tripToPayload(t))
}

type tripStatusPayload struct {
	Status string `json:"status"`
}

// handleTripStatus flips a trip between active and closed.
func (s *Server) handleTripStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	t, err := s.store.GetTrip(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	var p tripStatusPayload
	if err := decodeJSON(r, &p); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	status := core.TripStatus(strings.ToLower(strings.TrimSpace(p.Status)))
	if !status.Valid() {
		respondError(w, r, http.StatusUnprocessableEntity, core.ErrInvalidStatus.Error())
		return
	}

	t.Status = status
	if _, err := s.store.UpsertTrip(r.Context(), t); err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tripToPayload(t))
}

package http

import (
	"errors"
	"log/slog"
	"net/http"

	"viaggi/internal/settings"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.prefs.Load()
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load settings", "error", err)
		respondError(w, r, http.StatusInternalServerError, "operation failed, please try again")
		return
	}
	respondJSON(w, http.StatusOK, prefs)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var in settings.Settings
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.prefs.Save(in); err != nil {
		if errors.Is(err, settings.ErrInvalidTheme) {
			respondError(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to save settings", "error", err)
		respondError(w, r, http.StatusInternalServerError, "operation failed, please try again")
		return
	}

	saved, err := s.prefs.Load()
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load settings", "error", err)
		respondError(w, r, http.StatusInternalServerError, "operation failed, please try again")
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

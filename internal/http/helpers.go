package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	applog "viaggi/internal/log"
	"viaggi/internal/middleware/trace"
	"viaggi/internal/store"
)

const dateLayout = "2006-01-02"

// maxBodyBytes caps request bodies; receipts travel base64-encoded so the
// limit leaves room for a few MB of image.
const maxBodyBytes = 10 << 20

type errorPayload struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	respondJSON(w, status, errorPayload{
		Error:     msg,
		RequestID: trace.GetRequestID(r.Context()),
	})
}

// respondStoreError maps persistence failures onto the API contract:
// missing records are 404, everything else is a generic 500.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, "record not found")
		return
	}
	ctx := r.Context()
	applog.FromContext(ctx).ErrorContext(ctx, "Store operation failed",
		applog.FieldError, err.Error(),
		applog.FieldRequestID, trace.GetRequestID(ctx))
	respondError(w, r, http.StatusInternalServerError, "operation failed, please try again")
}

func decodeJSON(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer func() { _, _ = io.Copy(io.Discard, body) }()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimSpace(s))
}

// sanitizeInput strips control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

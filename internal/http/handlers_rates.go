package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ratePayload struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Date string          `json:"date"`
	Rate decimal.Decimal `json:"rate"`
}

// handleRateQuote answers ?from=&to=&date= lookups. Resolution never
// fails; the fallback chain bottoms out at 1.0.
func (s *Server) handleRateQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := strings.ToUpper(strings.TrimSpace(q.Get("from")))
	to := strings.ToUpper(strings.TrimSpace(q.Get("to")))
	if len(from) != 3 || len(to) != 3 {
		respondError(w, r, http.StatusBadRequest, "from and to must be 3-letter currency codes")
		return
	}

	date := time.Now().UTC()
	if raw := q.Get("date"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	rate := s.resolver.Resolve(r.Context(), from, to, date)
	respondJSON(w, http.StatusOK, ratePayload{
		From: from,
		To:   to,
		Date: date.Format(dateLayout),
		Rate: rate,
	})
}

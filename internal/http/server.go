// Package http is the JSON API surface: trips, expenses, settlement
// summaries, CSV export, receipt scans, rate quotes and user settings.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"

	"viaggi/internal/cache"
	"viaggi/internal/core"
	applog "viaggi/internal/log"
	"viaggi/internal/middleware/ratelimit"
	"viaggi/internal/middleware/security"
	"viaggi/internal/middleware/trace"
	"viaggi/internal/rates"
	"viaggi/internal/services"
	"viaggi/internal/settings"
	"viaggi/internal/store"
)

// Config holds what the server needs beyond its collaborators.
type Config struct {
	Addr           string
	AllowedOrigins []string
}

type Server struct {
	http.Server

	store    store.Store
	expenses *services.ExpenseService
	resolver *rates.Resolver
	prefs    *settings.Store

	// Settlement summaries are derived on read; cache them briefly keyed by
	// trip id and invalidate on any write touching the trip.
	summaryCache *cache.TTLCache[string, core.Summary]
	cacheManager *cache.Manager

	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, st store.Store, expenses *services.ExpenseService, resolver *rates.Resolver, prefs *settings.Store) *Server {
	s := &Server{
		store:        st,
		expenses:     expenses,
		resolver:     resolver,
		prefs:        prefs,
		summaryCache: cache.New[string, core.Summary](100, 5*time.Minute),
		cacheManager: cache.NewManager(),
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:     security.NewDetector(),
	}
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/trips", s.handleListTrips)
	mux.HandleFunc("POST /api/trips", s.handleCreateTrip)
	mux.HandleFunc("PUT /api/trips/{id}", s.handleUpdateTrip)
	mux.HandleFunc("POST /api/trips/{id}/status", s.handleTripStatus)

	mux.HandleFunc("GET /api/trips/{id}/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/trips/{id}/expenses", s.handleCreateExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("POST /api/expenses/{id}/scan", s.handleScanExpense)

	mux.HandleFunc("GET /api/trips/{id}/summary", s.handleTripSummary)
	mux.HandleFunc("GET /api/trips/{id}/export.csv", s.handleExportCSV)

	mux.HandleFunc("GET /api/rates", s.handleRateQuote)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handlePutSettings)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.middleware(cfg, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// middleware wraps the mux: CORS outermost, then security headers,
// request-scoped logger, request tracing, and write rate limiting.
func (s *Server) middleware(cfg Config, next http.Handler) http.Handler {
	h := s.limiter.Middleware(s.detector.ExtractClientIP,
		http.MethodPost, http.MethodPut, http.MethodDelete)(next)
	h = trace.NewMiddleware(s.detector.ExtractClientIP).Middleware(h)
	h = applog.Middleware(applog.New(applog.FromEnv(applog.ComponentHTTP)))(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{trace.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})
	return c.Handler(h)
}

// Shutdown stops background routines before draining connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// The store answering a list proves both backends ready.
	if _, err := s.store.ListTrips(r.Context()); err != nil {
		http.Error(w, "store not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"financas/internal/core"
	"financas/internal/ledger"
	"financas/internal/log"
	"financas/internal/metrics"
	"financas/internal/services"
)

// LedgerReader is the read side served by the API. *services.LedgerService
// satisfies it.
type LedgerReader interface {
	Statement(ctx context.Context, month core.Month) (ledger.Statement, error)
	Trend(ctx context.Context, month core.Month, months int) ([]ledger.TrendPoint, error)
	Recent(ctx context.Context, n int) ([]core.Transaction, error)
	Household(ctx context.Context) (services.Household, error)
}

// TransactionManager is the write side. *services.TransactionService
// satisfies it.
type TransactionManager interface {
	Create(ctx context.Context, t core.Transaction) (core.Transaction, error)
	Update(ctx context.Context, id string, t core.Transaction) (core.Transaction, error)
	Delete(ctx context.Context, id string) error
	TogglePaid(ctx context.Context, id string, month core.Month) (core.Transaction, error)
}

// Deps wires the server to the application.
type Deps struct {
	Ledger       LedgerReader
	Transactions TransactionManager
	Metrics      *metrics.Metrics
	Logger       *log.Logger
	// Ready is consulted by /readyz; nil means always ready.
	Ready              func(ctx context.Context) error
	TrendMonths        int
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	deps         Deps
	logger       *log.Logger
	access       *log.StructuredLogger
	rateLimiter  *rateLimiter
	now          func() time.Time
	shutdownOnce sync.Once
}

func NewServer(addr string, deps Deps) *Server {
	if deps.TrendMonths == 0 {
		deps.TrendMonths = ledger.DefaultTrendMonths
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		deps:        deps,
		logger:      logger,
		access:      log.NewStructuredLogger(logger),
		rateLimiter: newRateLimiter(deps.RateLimitPerMinute),
		now:         time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	mux.HandleFunc("GET /api/ledger", s.handleLedger)
	mux.HandleFunc("GET /api/trend", s.handleTrend)
	mux.HandleFunc("GET /api/recent", s.handleRecent)
	mux.HandleFunc("GET /api/household", s.handleHousehold)

	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("POST /api/transactions/{id}/paid", s.handleTogglePaid)

	mux.HandleFunc("GET /api/statement.xlsx", s.handleStatementXLSX)
	mux.HandleFunc("GET /api/statement.pdf", s.handleStatementPDF)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.withMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(s.rateLimiter.stop)
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Ready(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

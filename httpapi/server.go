// Package httpapi serves the accounting system as a JSON API for a dashboard.
//
// A Server owns the ledger loaded from its Store. Every request runs under a
// single mutex, and a mutation is persisted before its response is written.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/etnz/nexus"
	"github.com/etnz/nexus/store"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Summarizer comments the history of a view. *insight.Summarizer implements it.
type Summarizer interface {
	Summarize(ctx context.Context, stats nexus.Stats, entries []nexus.Entry) (string, error)
}

// Config holds the server configuration.
type Config struct {
	Store          store.Store
	MonthlyCeiling nexus.Money
	FallbackPrice  nexus.Money
	AllowedOrigins []string
	Summarizer     Summarizer // optional, the insight endpoint answers 503 without it
	Logger         zerolog.Logger
	Now            func() time.Time // optional clock, time.Now by default
}

// Server is the HTTP API over one ledger.
type Server struct {
	mu         sync.Mutex
	accounting *nexus.AccountingSystem
	store      store.Store
	summarizer Summarizer
	log        zerolog.Logger
	router     *chi.Mux
}

// New loads the ledger from cfg.Store and creates the server.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	ledger, err := cfg.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load ledger: %w", err)
	}
	as, err := nexus.NewAccountingSystem(ledger, cfg.MonthlyCeiling, cfg.FallbackPrice)
	if err != nil {
		return nil, err
	}
	if cfg.Now != nil {
		as.Now = cfg.Now
	}
	s := &Server{
		accounting: as,
		store:      cfg.Store,
		summarizer: cfg.Summarizer,
		log:        cfg.Logger.With().Str("component", "httpapi").Logger(),
	}
	s.router = s.routes(cfg.AllowedOrigins)
	return s, nil
}

func (s *Server) routes(origins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(recovery(s.log))
	r.Use(requestLogger(s.log))
	r.Use(corsHandler(origins))

	r.Get("/health", s.getHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/transactions", s.getTransactions)
		r.Post("/transactions", s.createTransaction)
		r.Delete("/transactions/{id}", s.deleteTransaction)

		r.Get("/stats", s.getStats)
		r.Get("/monthly", s.getMonthly)
		r.Get("/scenarios", s.getScenarios)
		r.Get("/simulate", s.getSimulation)
		r.Post("/adjustments", s.createAdjustment)
		r.Get("/export.csv", s.exportCSV)

		r.Get("/view", s.getView)
		r.Put("/view", s.putView)

		r.Post("/insight", s.createInsight)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// ledgerState is the ledger content a failed save rolls back to.
type ledgerState struct {
	transactions []nexus.Transaction
	view         nexus.View
}

// snapshot must be called with s.mu held, before the mutation.
func (s *Server) snapshot() ledgerState {
	return ledgerState{
		transactions: s.accounting.Ledger.Transactions(),
		view:         s.accounting.Ledger.View(),
	}
}

// persist saves the ledger. When the save fails, the ledger is reloaded from
// the store, or rolled back to prev when the store cannot be read either.
// It must be called with s.mu held.
func (s *Server) persist(prev ledgerState) error {
	err := s.store.Save(s.accounting.Ledger)
	if err == nil {
		return nil
	}
	s.log.Error().Err(err).Msg("could not save ledger")
	l, lerr := s.store.Load()
	if lerr != nil {
		s.log.Error().Err(lerr).Msg("could not reload ledger, rolling back the mutation")
		if l, lerr = nexus.NewLedger(prev.transactions...); lerr != nil {
			s.log.Error().Err(lerr).Msg("in-memory ledger diverged from the store")
			return fmt.Errorf("could not save ledger: %w", err)
		}
		l.SetView(prev.view)
		l.SetLogger(s.log)
	}
	s.accounting.Ledger = l
	return fmt.Errorf("could not save ledger: %w", err)
}

// view resolves the view query parameter, defaulting to the active view.
// It must be called with s.mu held.
func (s *Server) view(r *http.Request) (nexus.View, error) {
	q := r.URL.Query().Get("view")
	if q == "" {
		return s.accounting.Ledger.View(), nil
	}
	return nexus.ParseView(q)
}

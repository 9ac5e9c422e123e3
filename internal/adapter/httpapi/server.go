package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/BthnIsler/finoria/internal/domain"
	"github.com/BthnIsler/finoria/internal/usecase/advisor"
	"github.com/BthnIsler/finoria/internal/usecase/history"
	"github.com/BthnIsler/finoria/internal/usecase/holdings"
	"github.com/BthnIsler/finoria/internal/usecase/news"
	"github.com/BthnIsler/finoria/internal/usecase/pricing"
	"github.com/BthnIsler/finoria/internal/usecase/snapshot"
)

// Services bundles the use cases the API exposes
type Services struct {
	Pricing   *pricing.Service
	History   *history.Service
	Snapshots *snapshot.Store
	Holdings  *holdings.Service
	Advisor   *advisor.Service
	News      *news.Service
	Search    domain.EquitySearcher
}

// Server represents the HTTP server
type Server struct {
	addr     string
	svc      Services
	apiToken string
	currency string
	logger   *slog.Logger
	server   *http.Server
}

// NewServer creates a new HTTP server
func NewServer(addr string, svc Services, apiToken, currency string, logger *slog.Logger) *Server {
	return &Server{
		addr:     addr,
		svc:      svc,
		apiToken: apiToken,
		currency: currency,
		logger:   logger,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	api := http.NewServeMux()

	api.HandleFunc("GET /api/prices", s.handlePrices)
	api.HandleFunc("GET /api/stock-prices", s.handleStockPrices)
	api.HandleFunc("POST /api/historical-prices", s.handleHistoricalPrices)

	api.HandleFunc("GET /api/holdings", s.handleListHoldings)
	api.HandleFunc("POST /api/holdings", s.handleCreateHolding)
	api.HandleFunc("PUT /api/holdings/{id}", s.handleUpdateHolding)
	api.HandleFunc("DELETE /api/holdings/{id}", s.handleDeleteHolding)
	api.HandleFunc("POST /api/holdings/{id}/sell", s.handleSellHolding)
	api.HandleFunc("GET /api/holdings/{id}/history", s.handleHoldingHistory)

	api.HandleFunc("POST /api/refresh", s.handleRefresh)
	api.HandleFunc("GET /api/history", s.handleDailyHistory)
	api.HandleFunc("GET /api/history/hourly", s.handleHourlyHistory)
	api.HandleFunc("DELETE /api/history", s.handleResetHistory)
	api.HandleFunc("GET /api/transactions", s.handleListTransactions)

	api.HandleFunc("GET /api/news", s.handleNews)
	api.HandleFunc("GET /api/stocks/search", s.handleStockSearch)
	api.HandleFunc("POST /api/ai/analysis", s.handleAnalysis)
	api.HandleFunc("POST /api/ai/chat", s.handleChat)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("/api/", authMiddleware(s.apiToken, userMiddleware(s.logRequests(api))))

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	s.logger.Info("starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("api request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

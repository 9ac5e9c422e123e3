package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/genai"

	"github.com/BthnIsler/finoria/internal/adapter/httpapi"
	"github.com/BthnIsler/finoria/internal/adapter/provider/coingecko"
	"github.com/BthnIsler/finoria/internal/adapter/provider/exchangerate"
	"github.com/BthnIsler/finoria/internal/adapter/provider/googlenews"
	"github.com/BthnIsler/finoria/internal/adapter/provider/metalprice"
	"github.com/BthnIsler/finoria/internal/adapter/provider/yahoo"
	"github.com/BthnIsler/finoria/internal/adapter/repository/postgres"
	"github.com/BthnIsler/finoria/internal/config"
	"github.com/BthnIsler/finoria/internal/usecase/advisor"
	"github.com/BthnIsler/finoria/internal/usecase/history"
	"github.com/BthnIsler/finoria/internal/usecase/holdings"
	"github.com/BthnIsler/finoria/internal/usecase/news"
	"github.com/BthnIsler/finoria/internal/usecase/pricing"
	"github.com/BthnIsler/finoria/internal/usecase/snapshot"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := config.Load()

	// 1. Database and repositories
	db, err := postgres.NewDB(cfg.DBConnStr(), logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	holdingRepo := postgres.NewHoldingRepository(db)
	snapshotRepo := postgres.NewSnapshotRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)

	// 2. Market data providers
	crypto := coingecko.New(cfg.CoinGeckoURL, logger)
	quotes := yahoo.New(cfg.YahooChartURL, cfg.YahooSearchURL, logger)
	fx := exchangerate.New(cfg.ExchangeRateURL)
	metals := metalprice.New(cfg.MetalPriceURL, cfg.MetalPriceAPIKey)
	newsFeed := googlenews.New(cfg.GoogleNewsURL, cfg.NewsLocale)

	// 3. Use cases
	cache := pricing.NewCache(pricing.DefaultTTL)
	pricingSvc := pricing.NewService(crypto, quotes, fx, metals, cfg.BaseCurrency, cache, logger)
	historySvc := history.NewService(crypto, quotes, cfg.BaseCurrency, logger)
	snapshotStore := snapshot.NewStore(snapshotRepo, logger)
	holdingsSvc := holdings.NewService(holdingRepo, transactionRepo, logger)
	newsSvc := news.NewService(newsFeed, logger)

	// The advisor stays disabled without an API key
	var genaiClient *genai.Client
	if cfg.GeminiAPIKey != "" {
		genaiClient, err = genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: cfg.GeminiAPIKey})
		if err != nil {
			logger.Error("failed to initialize LLM client", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("GEMINI_API_KEY not set, AI advisor disabled")
	}
	advisorSvc := advisor.NewService(genaiClient, cfg.GeminiModel, logger)

	// 4. HTTP server
	server := httpapi.NewServer(":"+cfg.HTTPPort, httpapi.Services{
		Pricing:   pricingSvc,
		History:   historySvc,
		Snapshots: snapshotStore,
		Holdings:  holdingsSvc,
		Advisor:   advisorSvc,
		News:      newsSvc,
		Search:    quotes,
	}, cfg.APIToken, cfg.BaseCurrency, logger)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(server, logger)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down
// the server
func waitForShutdown(server *httpapi.Server, logger *slog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info("received signal, shutting down gracefully", "signal", sig.String())

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}

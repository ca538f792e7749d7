package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/analyzer"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/assistant"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/billing"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/config"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/db"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/handlers"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/livedata"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/repository"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/router"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/storage"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/utils"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/views"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the environment and flags still apply.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.LogLevel)

	// Initialize database and run migrations
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to open database", "error", err, "path", cfg.DatabaseURL)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Assistant with optional archive and LLM summaries
	var opts []assistant.Option
	if cfg.S3Enabled {
		s3, err := storage.NewS3Storage(ctx, cfg)
		if err != nil {
			logger.Fatal("Failed to initialize S3 storage", "error", err)
		}
		opts = append(opts, assistant.WithStorage(s3))
	}
	if cfg.OpenRouterAPIKey != "" {
		opts = append(opts, assistant.WithAnalyzer(analyzer.NewOpenRouterAnalyzer(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, logger)))
	}
	docAssistant := assistant.New(repository.NewDocumentRepository(database), logger, opts...)

	ledger := billing.NewLedger(repository.NewLedgerRepository(database), billing.Options{
		InitialCredits:   cfg.InitialCredits,
		PricePerQuestion: cfg.PricePerQuestion,
		PricePerReport:   cfg.PricePerReport,
	}, logger)
	if _, err := ledger.GetOrCreateUser(ctx, cfg.DemoUser); err != nil {
		logger.Fatal("Failed to prepare demo account", "error", err, "user", cfg.DemoUser)
	}

	store := livedata.NewStore(repository.NewLiveItemRepository(database), feeds(cfg), logger)
	go store.Run(ctx, cfg.LiveDataRefreshInterval)

	renderer, err := views.New()
	if err != nil {
		logger.Fatal("Failed to load templates", "error", err)
	}

	h := handlers.NewHandler(docAssistant, ledger, store, renderer, handlers.Options{
		DemoUser:         cfg.DemoUser,
		UploadDir:        cfg.UploadDir,
		MaxUploadSize:    cfg.MaxUploadSize,
		PricePerQuestion: cfg.PricePerQuestion,
		PricePerReport:   cfg.PricePerReport,
		InitialCredits:   cfg.InitialCredits,
		CreditTopUp:      cfg.CreditTopUp,
	}, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewRouter(h, logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "url", "http://localhost:"+cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

// feeds builds the live-data sources from config, falling back to the
// built-in sample feed when none is configured.
func feeds(cfg *config.Config) []livedata.Feed {
	var out []livedata.Feed
	if cfg.LiveDataFeedFile != "" {
		out = append(out, livedata.NewFileFeed(cfg.LiveDataFeedFile))
	}
	for _, u := range cfg.LiveDataFeedURLs {
		if u != "" {
			out = append(out, livedata.NewHTTPFeed(u))
		}
	}
	if len(out) == 0 {
		out = append(out, livedata.NewSampleFeed())
	}
	return out
}

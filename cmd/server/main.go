package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"home-valuation/internal/config"
	"home-valuation/internal/handler"
	"home-valuation/internal/logger"
	"home-valuation/internal/pricing"
	"home-valuation/internal/repository"
	"home-valuation/internal/rubric"
	"home-valuation/internal/service"

	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("Home Valuation Service")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, closeLogger, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer closeLogger()
	slog.SetDefault(appLogger)

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Optional database-backed district prices; the embedded table is always available
	var (
		source pricing.PriceSource
		pinger handler.Pinger
	)
	if cfg.Pricing.Source == "postgres" {
		repo, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			appLogger.Error("postgres unavailable, using embedded district prices", slog.Any("error", err))
		} else {
			defer repo.Close()
			source = repo
			pinger = repo
			appLogger.Info("connected to PostgreSQL for district prices")
		}
	}

	resolver := pricing.NewResolver(pricing.DefaultTable(), source, cfg.Pricing.DefaultBasePrice)

	// Initialize the scoring oracle client
	oracle := service.NewOpenAIClient(&cfg.OpenAI)
	if err := oracle.CheckConfig(); err != nil {
		appLogger.Warn("oracle is not configured, evaluations will be rejected", slog.Any("error", err))
	} else {
		appLogger.Info("oracle client initialized",
			slog.String("api_base", cfg.OpenAI.APIBase),
			slog.String("model", cfg.OpenAI.ChatModel),
			slog.Float64("temperature", cfg.OpenAI.ChatTemperature),
			slog.Int("max_tokens", cfg.OpenAI.ChatMaxTokens),
			slog.Bool("json_mode", cfg.OpenAI.JSONMode),
		)
	}

	// Initialize services
	evaluator := service.NewEvaluator(oracle, resolver, service.NewEvaluatorConfig(cfg))
	appLogger.Info("services initialized",
		slog.Int("retry_max_attempts", cfg.Retry.MaxAttempts),
		slog.Duration("evaluation_timeout", cfg.Evaluation.Timeout),
		slog.Int("max_concurrent", cfg.Evaluation.MaxConcurrent),
		slog.Bool("strict_rubric", cfg.Evaluation.StrictRubric),
	)

	// Setup Gin router
	router := handler.NewRouter(handler.RouterConfig{
		Logger:         appLogger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Evaluate:       handler.NewEvaluateHandler(evaluator),
		Rubric:         handler.NewRubricHandler(rubric.Default(), resolver),
		Health:         handler.NewHealthHandler(Version, pinger, oracle),
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("starting server", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Evaluation.Timeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("graceful shutdown failed", slog.Any("error", err))
	}
	appLogger.Info("server stopped")
}

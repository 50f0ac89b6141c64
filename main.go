package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kairomed/medicine-info-api/ai"
	"github.com/kairomed/medicine-info-api/config"
	"github.com/kairomed/medicine-info-api/handlers"
	"github.com/kairomed/medicine-info-api/health"
	"github.com/kairomed/medicine-info-api/interfaces"
	"github.com/kairomed/medicine-info-api/logging"
	"github.com/kairomed/medicine-info-api/scheduler"
	"github.com/kairomed/medicine-info-api/server"
	"github.com/kairomed/medicine-info-api/service"
	"github.com/kairomed/medicine-info-api/store"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine, the environment may already be populated
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logCloser, err := logging.Init(logging.Options{
		Dir:            cfg.LogDir,
		Prefix:         cfg.ServiceName,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
		Level:          cfg.LogLevel,
	})
	if err != nil {
		logging.Warn("File logging disabled", "error", err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	medicineStore, err := store.Open(ctx, store.Options{
		DatabaseURL:         cfg.DatabaseURL,
		MaxConns:            int32(cfg.DBMaxConns),
		MinConns:            int32(cfg.DBMinConns),
		SimilarityThreshold: cfg.SimilarityThreshold,
	})
	if err != nil {
		return fmt.Errorf("medicine store: %w", err)
	}
	defer medicineStore.Close()

	var generator interfaces.TextGenerator
	if cfg.AIEnabled() {
		gemini, err := ai.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return fmt.Errorf("gemini client: %w", err)
		}
		generator = gemini
		logging.Info("AI fallback enabled", "model", gemini.Model())
	} else {
		logging.Warn("GEMINI_API_KEY not set, info requests without a store match will fail")
	}

	fallback := ai.NewFallback(generator, cfg.AITimeout, ai.Policy(cfg.UnknownMedicinePolicy))
	medicineService := service.NewMedicineService(medicineStore, fallback, cfg.SimilarityThreshold)

	healthChecker := health.NewHealthChecker(medicineStore, cfg.ServiceName, fallback.Enabled())
	probes := scheduler.NewScheduler(healthChecker, cfg.StoreCheckInterval)
	if err := probes.Start(); err != nil {
		return err
	}
	defer probes.Stop()

	srv := server.NewServer(cfg, handlers.NewMedicineHandler(medicineService, healthChecker))

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.AITimeout+10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

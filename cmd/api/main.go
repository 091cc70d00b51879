package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"studio/internal/audit"
	"studio/internal/editor"
	"studio/internal/http/handlers"
	"studio/internal/http/httpapi"
	"studio/internal/infra"
	"studio/internal/prefs"
	"studio/internal/session"
	"studio/internal/transform"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()

	// Postgres is optional: without it preferences live in memory and no
	// audit log is written.
	var store prefs.Store = prefs.NewMemoryStore()
	var recorder *audit.Recorder
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		runner := infra.NewSQLRunner(pool, logger)
		store = prefs.NewPGStore(runner)
		recorder = audit.NewRecorder(runner, logger)
	} else {
		logger.Warn().Msg("DATABASE_URL not set; using in-memory preferences")
	}

	svc := transform.NewGemini(transform.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Logger:  &logger,
	})
	if cfg.GeminiAPIKey == "" {
		logger.Warn().Msg("GEMINI_API_KEY not set; edits use the synthetic fallback")
	}

	sessions := session.NewManager(cfg.SessionTTL, logger)
	go sessions.Run(ctx, time.Minute)

	dispatcher := editor.NewDispatcher(svc, logger)
	app := handlers.NewApp(cfg, logger, sessions, dispatcher, store, recorder)
	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("model", svc.Model()).Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anjoman/internal/api"
	"anjoman/internal/catalog"
	"anjoman/internal/config"
	"anjoman/internal/llm"
	"anjoman/internal/orchestrator"
	"anjoman/internal/sessions"
	"anjoman/internal/store"
)

func main() {
	// Logger
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// SQLite
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	sessStore := sessions.NewStore(db)

	// Model catalog
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Error("failed to load model catalog", "error", err)
		os.Exit(1)
	}

	// Completion router, one client per provider with a configured key
	llmRouter := llm.NewRouterFromConfig(cat, llm.ProviderConfig{
		OpenAIKey:        cfg.OpenAIKey,
		OpenAIBaseURL:    cfg.OpenAIBaseURL,
		AnthropicKey:     cfg.AnthropicKey,
		AnthropicBaseURL: cfg.AnthropicBaseURL,
		MistralKey:       cfg.MistralKey,
		MistralBaseURL:   cfg.MistralBaseURL,
		GeminiKey:        cfg.GeminiKey,
		GeminiBaseURL:    cfg.GeminiBaseURL,
		CallTimeout:      cfg.CallTimeout(),
	})
	if providers := llmRouter.Providers(); len(providers) == 0 {
		logger.Warn("no LLM provider configured, all completions will fail")
	} else {
		logger.Info("LLM providers configured", "providers", providers)
	}

	// Deliberation engine
	dana := orchestrator.NewDana(llmRouter, cat, cfg.ModeratorModel, logger)
	ray := orchestrator.NewRay(llmRouter, cfg.AgentTemperature, cfg.AgentMaxTokens, logger)
	runner := orchestrator.NewRunner(dana, ray, sessStore, logger)

	// Router
	router := api.NewRouter(db, sessStore, dana, runner, cat, llmRouter,
		cfg.DefaultBudget, cfg.APIKey, logger)

	// Server
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		// Iterations stream for minutes; no write deadline, SSE keeps the
		// connection alive until the iteration finishes.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("anjoman server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("server stopped")
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pks0715/seggy-the-analyst-v4/internal/analysis"
	"github.com/pks0715/seggy-the-analyst-v4/internal/api"
	"github.com/pks0715/seggy-the-analyst-v4/internal/config"
	"github.com/pks0715/seggy-the-analyst-v4/internal/parser"
	"github.com/pks0715/seggy-the-analyst-v4/internal/pipeline"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	prompts, err := analysis.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		log.Error("load prompts", "error", err, "path", cfg.PromptsFile)
		os.Exit(1)
	}

	// Initialize the provider adapter.
	var completer analysis.Completer
	switch cfg.Provider {
	case config.ProviderAnthropic:
		ac := analysis.NewAnthropicClient(cfg.ProviderAPIKey, cfg.ProviderBaseURL, cfg.ModelID)
		defer ac.Close()
		completer = ac
	default:
		completer = analysis.NewOpenAIClient(cfg.ProviderAPIKey, cfg.ProviderBaseURL, cfg.ModelID, analysis.OpenAIOptions{
			Referer: cfg.ProviderReferer,
			Title:   cfg.ProviderTitle,
		})
	}

	stats := analysis.NewCallStats(cfg.StatsWindow)
	client := analysis.NewClient(completer, analysis.NewPacer(cfg.InterRequestDelay), prompts, stats, analysis.Options{
		ProbeTimeout:   cfg.ProbeTimeout,
		SingleTimeout:  cfg.AnalysisTimeout,
		BatchTimeout:   cfg.BatchTimeout,
		MaxSingleChars: cfg.MaxSingleChars,
		MaxRetries:     cfg.MaxRetries,
		Parallel:       cfg.ParallelDimensions,
	}, log)

	// Initialize pipeline.
	registry := parser.NewRegistry(cfg.AcceptedExtensions, cfg.PDFFallbackPdftotext)
	p := pipeline.New(registry, client, pipeline.Options{
		Mode:            cfg.AnalysisMode,
		MaxBatchSize:    cfg.MaxBatchSize,
		SkipUnsupported: cfg.SkipUnsupportedFiles,
		Provider:        cfg.ModelID + " via " + cfg.Provider,
	}, log)

	// Initialize HTTP server.
	srv := api.NewServer(p, client, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	idle := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown", "error", err)
		}
		close(idle)
	}()

	log.Info("starting analysis service",
		"port", cfg.Port,
		"provider", cfg.Provider,
		"model", cfg.ModelID,
		"mode", cfg.AnalysisMode,
		"extensions", cfg.AcceptedExtensions,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-idle
}

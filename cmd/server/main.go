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

	"github.com/dgallion1/resumedoc/internal/api"
	"github.com/dgallion1/resumedoc/internal/config"
	"github.com/dgallion1/resumedoc/internal/pipeline"
	"github.com/dgallion1/resumedoc/internal/render"
	"github.com/dgallion1/resumedoc/internal/resume"
	"github.com/dgallion1/resumedoc/internal/store"
	"github.com/dgallion1/resumedoc/internal/suggest"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine, err := resume.FromConfig(cfg, log)
	if err != nil {
		log.Error("invalid rules file", "error", err)
		os.Exit(1)
	}

	// Initialize document store.
	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("database unavailable", "error", err)
			os.Exit(1)
		}
		st = pg
		log.Info("using postgres document store")
	} else {
		mem := store.NewMemoryStore(cfg.DocumentTTL)
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if n := mem.Cleanup(); n > 0 {
						log.Info("expired documents evicted", "count", n)
					}
				}
			}
		}()
		st = mem
		log.Info("using in-memory document store", "ttl", cfg.DocumentTTL.String())
	}

	// Initialize render pipeline.
	orch := pipeline.NewOrchestrator(cfg, render.NewChromeRenderer(cfg.ChromePath, cfg.RenderTimeout), log)
	orch.Start(ctx)

	deps := api.Deps{
		Engine:       engine,
		Store:        st,
		Orchestrator: orch,
	}
	var claude *suggest.ClaudeClient
	if cfg.AnthropicAPIKey != "" {
		claude = suggest.NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		deps.Stats = suggest.NewLLMStats(time.Hour)
		deps.Generator = suggest.NewGenerator(claude, engine.Merger(), deps.Stats, log)
		deps.Model = claude.Model()
	} else {
		log.Warn("ANTHROPIC_API_KEY not set, suggestion generation disabled")
	}

	// Initialize HTTP server.
	srv := api.NewServer(deps, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if claude != nil {
			claude.Close()
		}
		st.Close()
	}()

	log.Info("starting resumedoc", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

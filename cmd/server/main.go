package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ouslabs/docclass/internal/api"
	"github.com/ouslabs/docclass/internal/booster"
	"github.com/ouslabs/docclass/internal/chunker"
	"github.com/ouslabs/docclass/internal/classify"
	"github.com/ouslabs/docclass/internal/config"
	"github.com/ouslabs/docclass/internal/oracle"
	"github.com/ouslabs/docclass/internal/pipeline"
	"github.com/ouslabs/docclass/internal/retrieval"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine, err := booster.NewEngine(booster.DefaultTables())
	if err != nil {
		log.Error("invalid booster tables", "error", err)
		os.Exit(1)
	}

	ck := chunker.New(chunker.Config{
		ChunkSize:      cfg.DefaultChunkSize,
		ChunkOverlap:   cfg.DefaultChunkOverlap,
		MinChunk:       100,
		ThresholdWords: cfg.ChunkThresholdWords,
	})

	// Retrieval backend: local index by default, remote service if configured.
	var searcher retrieval.Searcher
	var index *retrieval.Index
	var remote *retrieval.RemoteClient
	if cfg.RemoteSearchURL != "" {
		remote = retrieval.NewRemoteClient(cfg.RemoteSearchURL, cfg.RemoteSearchAPIKey)
		searcher = remote
		log.Info("using remote vector search", "url", cfg.RemoteSearchURL)
	} else {
		if dir := filepath.Dir(cfg.IndexPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				log.Error("create index directory", "error", err)
				os.Exit(1)
			}
		}
		index = retrieval.NewIndex(cfg.IndexPath, ck, cfg.SimilarityThreshold)
		if err := index.Load(); err != nil {
			log.Error("load index", "path", cfg.IndexPath, "error", err)
			os.Exit(1)
		}
		searcher = index
		log.Info("loaded local index", "path", cfg.IndexPath, "chunks", index.Stats().TotalChunks)
	}

	// Oracle: Groq when a key is present, deterministic rules otherwise.
	stats := oracle.NewLatencyStats(time.Hour)
	var decider oracle.Decider
	if cfg.GroqAPIKey != "" {
		decider = oracle.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL, stats, log)
	} else {
		decider = oracle.NewRuleDecider()
		log.Warn("GROQ_API_KEY not set, falling back to rule-based classification")
	}

	classifier := classify.New(engine, searcher, decider, cfg.SimilarTopK, log)

	// Training pipeline needs the local index; with remote search the
	// training endpoints are still wired but fail per-job.
	orch := pipeline.NewOrchestrator(cfg, index, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, classifier, index, stats, decider.Name(), log, cfg)

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

		if index != nil {
			if err := index.Save(); err != nil {
				log.Error("save index on shutdown", "error", err)
			}
		}
		if remote != nil {
			remote.Close()
		}
	}()

	log.Info("starting docclass", "port", cfg.Port, "oracle", decider.Name())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

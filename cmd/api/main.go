package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"roteiro-qa/internal/config"
	"roteiro-qa/internal/document"
	"roteiro-qa/internal/http"
	"roteiro-qa/internal/llm"
	"roteiro-qa/internal/rag"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Load the guideline document once; it is immutable for the process
	// lifetime.
	docText, err := document.Load(cfg.DocumentPath)
	if err != nil {
		log.Fatalf("Failed to load document: %v", err)
	}
	slog.Info("Document loaded", "path", cfg.DocumentPath, "runes", len([]rune(docText)))

	embedder := llm.NewEmbeddingsClient(
		cfg.EmbeddingBaseURL,
		cfg.EmbeddingAPIKey,
		cfg.EmbeddingModel,
		cfg.EmbeddingDims,
		cfg.ProviderTimeout,
	)

	// Validate the embedding provider at startup (fail-fast); later
	// provider failures degrade gracefully inside the pipeline.
	ctx := context.Background()
	probe, err := embedder.Embed(ctx, "test")
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(probe) != cfg.EmbeddingDims {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.EmbeddingDims, len(probe))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.EmbeddingDims)

	extractor := llm.NewQAClient(cfg.QABaseURL, cfg.EmbeddingAPIKey, cfg.QAModel, cfg.ProviderTimeout)

	engine, err := rag.NewEngine(cfg.Pipeline, docText, embedder, extractor)
	if err != nil {
		log.Fatalf("Failed to initialize pipeline: %v", err)
	}
	slog.Info("Pipeline ready", "stats", engine.Stats())

	router := http.NewRouter(&http.Deps{Engine: engine})

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"roteiro-qa/internal/rag"
)

// Config holds all configuration for the application.
type Config struct {
	DocumentPath string
	APIPort      string

	EmbeddingBaseURL  string
	EmbeddingModel    string
	EmbeddingAPIKey   string
	EmbeddingDims     int
	QABaseURL         string
	QAModel           string
	ProviderTimeout   time.Duration

	Pipeline rag.Config

	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a
// Config struct. It applies defaults for optional fields and validates
// required fields; an invalid pipeline knob refuses startup. If a .env
// file exists in the current directory or an ancestor, it is loaded
// automatically; environment variables already set take precedence.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		DocumentPath:     getEnv("DOCUMENT_PATH", ""),
		APIPort:          getEnv("API_PORT", "9000"),
		EmbeddingBaseURL: getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		EmbeddingAPIKey:  getEnv("EMBEDDING_API_KEY", "dummy-key"),
		QABaseURL:        getEnv("QA_BASE_URL", "http://localhost:8082"),
		QAModel:          getEnv("QA_MODEL_NAME", "bert-base-multilingual-squad"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	if cfg.DocumentPath == "" {
		return nil, fmt.Errorf("DOCUMENT_PATH is required")
	}

	var err error
	cfg.EmbeddingDims, err = getEnvInt("EMBEDDING_VECTOR_SIZE", 0)
	if err != nil {
		return nil, err
	}
	if cfg.EmbeddingDims <= 0 {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE is required and must be greater than 0")
	}

	timeoutSecs, err := getEnvInt("PROVIDER_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	if timeoutSecs <= 0 {
		return nil, fmt.Errorf("PROVIDER_TIMEOUT_SECONDS must be greater than 0")
	}
	cfg.ProviderTimeout = time.Duration(timeoutSecs) * time.Second

	pipeline := rag.DefaultConfig()
	if pipeline.ChunkSize, err = getEnvInt("CHUNK_SIZE", pipeline.ChunkSize); err != nil {
		return nil, err
	}
	if pipeline.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", pipeline.ChunkOverlap); err != nil {
		return nil, err
	}
	if pipeline.TopK, err = getEnvInt("TOP_K", pipeline.TopK); err != nil {
		return nil, err
	}
	if pipeline.MaxContextLen, err = getEnvInt("MAX_CONTEXT_LENGTH", pipeline.MaxContextLen); err != nil {
		return nil, err
	}
	if pipeline.MaxAnswerLen, err = getEnvInt("MAX_ANSWER_LENGTH", pipeline.MaxAnswerLen); err != nil {
		return nil, err
	}
	if pipeline.KeywordThreshold, err = getEnvFloat("KEYWORD_THRESHOLD", pipeline.KeywordThreshold); err != nil {
		return nil, err
	}
	if pipeline.SimilarityFloor, err = getEnvFloat("SIMILARITY_FLOOR", pipeline.SimilarityFloor); err != nil {
		return nil, err
	}
	if pipeline.AcceptThreshold, err = getEnvFloat("ACCEPT_THRESHOLD", pipeline.AcceptThreshold); err != nil {
		return nil, err
	}
	if pipeline.SemanticWeight, err = getEnvFloat("SEMANTIC_WEIGHT", pipeline.SemanticWeight); err != nil {
		return nil, err
	}
	if pipeline.LexicalWeight, err = getEnvFloat("LEXICAL_WEIGHT", pipeline.LexicalWeight); err != nil {
		return nil, err
	}
	if err := pipeline.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline configuration: %w", err)
	}
	cfg.Pipeline = pipeline

	switch getEnv("LOG_LEVEL", "info") {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "info":
		cfg.LogLevel = slog.LevelInfo
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json")
	}

	return cfg, nil
}

// loadDotEnv tries the current directory, then walks up a few levels
// looking for a .env file.
func loadDotEnv() {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return f, nil
}

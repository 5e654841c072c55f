package rag

import "fmt"

// Config enumerates the tunable knobs of the retrieval pipeline. One
// config serves the whole pipeline; deployments vary parameters here
// instead of forking the code.
type Config struct {
	// ChunkSize is the target chunk length in runes.
	ChunkSize int
	// ChunkOverlap is the approximate overlap between consecutive chunks.
	ChunkOverlap int
	// TopK is how many ranked chunks make up the context.
	TopK int
	// KeywordThreshold is the minimum lexical score for a chunk to enter
	// the reduced semantic candidate set.
	KeywordThreshold float64
	// SimilarityFloor excludes chunks whose final score falls at or
	// below it.
	SimilarityFloor float64
	// AcceptThreshold is the minimum extractor confidence for accepting
	// an answer span as-is.
	AcceptThreshold float64
	// SemanticWeight and LexicalWeight blend the two scores on the
	// keyword-filtered path.
	SemanticWeight float64
	LexicalWeight  float64
	// MaxContextLen caps the context passed to the extractor, in runes.
	MaxContextLen int
	// MaxAnswerLen caps the extractor's answer span, in runes.
	MaxAnswerLen int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:        1500,
		ChunkOverlap:     300,
		TopK:             3,
		KeywordThreshold: 0.1,
		SimilarityFloor:  0.05,
		AcceptThreshold:  0.3,
		SemanticWeight:   0.6,
		LexicalWeight:    0.4,
		MaxContextLen:    6000,
		MaxAnswerLen:     200,
	}
}

// Validate rejects configurations that would degrade the pipeline
// silently. Invalid config is a startup-time fatal condition.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk overlap must be in [0, chunk size), got %d with chunk size %d", c.ChunkOverlap, c.ChunkSize)
	}
	if c.TopK < 1 || c.TopK > 5 {
		return fmt.Errorf("top-k must be between 1 and 5, got %d", c.TopK)
	}
	if c.KeywordThreshold < 0 || c.KeywordThreshold > 1 {
		return fmt.Errorf("keyword threshold must be in [0, 1], got %g", c.KeywordThreshold)
	}
	if c.SimilarityFloor < 0 || c.SimilarityFloor > 1 {
		return fmt.Errorf("similarity floor must be in [0, 1], got %g", c.SimilarityFloor)
	}
	if c.AcceptThreshold < 0 || c.AcceptThreshold > 1 {
		return fmt.Errorf("acceptance threshold must be in [0, 1], got %g", c.AcceptThreshold)
	}
	if c.SemanticWeight < 0 || c.LexicalWeight < 0 || c.SemanticWeight+c.LexicalWeight == 0 {
		return fmt.Errorf("hybrid weights must be non-negative and not both zero, got %g/%g", c.SemanticWeight, c.LexicalWeight)
	}
	if c.MaxContextLen <= 0 {
		return fmt.Errorf("max context length must be positive, got %d", c.MaxContextLen)
	}
	if c.MaxAnswerLen <= 0 {
		return fmt.Errorf("max answer length must be positive, got %d", c.MaxAnswerLen)
	}
	return nil
}

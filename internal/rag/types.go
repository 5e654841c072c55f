package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_providers.go -package=mocks roteiro-qa/internal/rag EmbeddingProvider,Extractor

import "context"

// Origin identifies where an answer came from.
type Origin string

const (
	// OriginExtracted marks an answer span accepted from the extractive
	// QA provider.
	OriginExtracted Origin = "extracted"
	// OriginContextExtraction marks a verbatim sentence pulled from the
	// retrieved context when the extractor's confidence was too low.
	OriginContextExtraction Origin = "context_extraction"
	// OriginNoAnswer marks a refusal: nothing relevant was found.
	OriginNoAnswer Origin = "no_answer"
	// OriginCache marks a memoized response served without recomputation.
	OriginCache Origin = "cache"
)

// EmbeddingProvider produces fixed-dimension embedding vectors.
// This interface is defined from the pipeline's perspective (consumer-first).
type EmbeddingProvider interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one vector per input text in a single provider
	// call. All vectors share the provider's dimensionality.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Candidate is the extractive QA provider's proposed answer span.
type Candidate struct {
	// Text is the extracted span. May be empty when the provider found
	// no plausible answer.
	Text string
	// Score is the provider's confidence in [0, 1].
	Score float64
}

// Extractor runs extractive question answering over a context string.
type Extractor interface {
	// Extract returns an answer span and confidence for the question
	// given the context. Implementations may fail; callers treat any
	// error as a zero-confidence candidate.
	Extract(ctx context.Context, question, contextText string, maxAnswerLen int) (Candidate, error)
}

// Response is the final formatted answer returned to callers. The
// pipeline always produces a well-formed Response; provider failures
// degrade to a persona refusal rather than an error.
type Response struct {
	// Answer is the persona-formatted display text.
	Answer string `json:"answer"`
	// Confidence is the extractor confidence behind the answer, 0 for refusals.
	Confidence float64 `json:"confidence"`
	// Source records which path produced the answer.
	Source Origin `json:"source"`
	// Persona is the persona id the answer was formatted for.
	Persona string `json:"persona"`
}

// Package rag implements the retrieval-and-answer pipeline: chunking
// the guideline document, hybrid lexical+semantic ranking, extractive
// question answering behind a confidence gate, persona formatting and
// response memoization.
package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks roteiro-qa/internal/rag Engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"roteiro-qa/internal/chunker"
	"roteiro-qa/internal/contextutil"
	"roteiro-qa/internal/persona"
)

var (
	// ErrUnknownPersona is returned for persona ids outside the closed
	// set of two profiles.
	ErrUnknownPersona = errors.New("unknown persona")
	// ErrEmptyQuestion is returned when the question is blank.
	ErrEmptyQuestion = errors.New("question cannot be empty")
)

// Engine answers questions against the loaded guideline document.
type Engine interface {
	// Answer runs the pipeline for (question, personaID) and returns a
	// well-formed response. It fails only on invalid input; provider
	// failures degrade to a persona refusal.
	Answer(ctx context.Context, question, personaID string) (Response, error)
	// Stats reports document and cache counters for health reporting.
	Stats() Stats
}

// Stats describes the engine's loaded state.
type Stats struct {
	Chunks          int `json:"chunks"`
	DocumentRunes   int `json:"document_runes"`
	CachedResponses int `json:"cached_responses"`
}

// pipeline implements Engine. One pipeline is constructed at process
// start and shared by all requests; the chunk list is computed once
// and read-only thereafter, so the cache is the only mutable state.
type pipeline struct {
	cfg       Config
	chunks    []chunker.Chunk
	docRunes  int
	ranker    *Ranker
	extractor Extractor
	gate      *Gate
	cache     *Cache
	group     singleflight.Group
	logger    *slog.Logger
}

// NewEngine validates the config, chunks the document once and wires
// the pipeline. A nil error means the engine is ready to serve; config
// problems refuse initialization rather than degrade silently.
func NewEngine(cfg Config, documentText string, embedder EmbeddingProvider, extractor Extractor) (Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}

	splitter, err := chunker.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("invalid chunker config: %w", err)
	}
	chunks := splitter.Split(documentText)

	slog.Info("document chunked",
		"document_runes", len([]rune(documentText)),
		"chunks", len(chunks),
		"chunk_size", cfg.ChunkSize,
		"overlap", cfg.ChunkOverlap,
	)

	return &pipeline{
		cfg:       cfg,
		chunks:    chunks,
		docRunes:  len([]rune(documentText)),
		ranker:    NewRanker(cfg, embedder),
		extractor: extractor,
		gate:      NewGate(cfg.AcceptThreshold),
		cache:     NewCache(),
		logger:    slog.Default(),
	}, nil
}

// Answer resolves a question for a persona. Identical (question,
// persona) pairs return the first computed response for the process
// lifetime, and concurrent requests for the same pair collapse into a
// single computation.
func (p *pipeline) Answer(ctx context.Context, question, personaID string) (Response, error) {
	logger := contextutil.LoggerFromContext(ctx)

	profile, ok := persona.Lookup(personaID)
	if !ok {
		return Response{}, fmt.Errorf("%w: %q", ErrUnknownPersona, personaID)
	}
	if strings.TrimSpace(question) == "" {
		return Response{}, ErrEmptyQuestion
	}

	if resp, ok := p.cache.Get(question, personaID); ok {
		logger.InfoContext(ctx, "cache hit", "persona", personaID)
		return resp, nil
	}

	key := cacheKey(question, personaID)
	v, _, _ := p.group.Do(key, func() (any, error) {
		// A concurrent caller may have filled the entry while this one
		// waited on the flight group.
		if resp, ok := p.cache.Get(question, personaID); ok {
			return resp, nil
		}
		resp := p.compute(ctx, question, profile)
		p.cache.Put(question, personaID, resp)
		stored, _ := p.cache.Get(question, personaID)
		return stored, nil
	})

	return v.(Response), nil
}

// compute runs the uncached pipeline. It never fails: retrieval and
// provider errors are logged and degrade through the gate to a
// refusal.
func (p *pipeline) compute(ctx context.Context, question string, profile persona.Profile) Response {
	logger := contextutil.LoggerFromContext(ctx)

	contextText, scored, err := p.ranker.Context(ctx, question, p.chunks)
	if err != nil {
		logger.WarnContext(ctx, "retrieval failed, refusing", "error", err)
		contextText = ""
	}

	var cand Candidate
	if contextText != "" {
		cand, err = p.extractor.Extract(ctx, question, contextText, p.cfg.MaxAnswerLen)
		if err != nil {
			logger.WarnContext(ctx, "extractor failed, treating as zero confidence", "error", err)
			cand = Candidate{}
		}
	}

	outcome := p.gate.Decide(question, contextText, cand)

	logger.InfoContext(ctx, "question answered",
		"persona", profile.ID,
		"source", outcome.Origin,
		"confidence", outcome.Confidence,
		"chunks_used", len(scored),
	)

	return Response{
		Answer:     profile.Format(outcome.Answer, string(outcome.Origin), outcome.Confidence),
		Confidence: outcome.Confidence,
		Source:     outcome.Origin,
		Persona:    string(profile.ID),
	}
}

// Stats reports chunk and cache counters.
func (p *pipeline) Stats() Stats {
	return Stats{
		Chunks:          len(p.chunks),
		DocumentRunes:   p.docRunes,
		CachedResponses: p.cache.Len(),
	}
}

package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"roteiro-qa/internal/chunker"
	"roteiro-qa/internal/contextutil"
)

// ScoredChunk pairs a chunk with its relevance scores for one question.
// Instances are ephemeral, created per question and discarded after
// ranking.
type ScoredChunk struct {
	Chunk    chunker.Chunk
	Lexical  float64
	Semantic float64
	Final    float64
}

// Ranker selects the most relevant chunks for a question using a
// hybrid lexical+semantic score and concatenates them into a bounded
// context string.
type Ranker struct {
	cfg      Config
	embedder EmbeddingProvider
	logger   *slog.Logger
}

// NewRanker creates a Ranker. The config is assumed validated.
func NewRanker(cfg Config, embedder EmbeddingProvider) *Ranker {
	return &Ranker{
		cfg:      cfg,
		embedder: embedder,
		logger:   slog.Default(),
	}
}

// Context ranks chunks against the question and returns the context to
// pass to the extractor, along with the selected scored chunks in
// final-score order. An empty chunk list yields an empty context and no
// error; embedding provider failures are returned as errors for the
// caller to degrade on.
func (r *Ranker) Context(ctx context.Context, question string, chunks []chunker.Chunk) (string, []ScoredChunk, error) {
	logger := r.getLogger(ctx)

	if len(chunks) == 0 {
		return "", nil, nil
	}

	// Cheap lexical pre-filter over the whole document.
	lexical := make([]float64, len(chunks))
	for i, c := range chunks {
		lexical[i] = lexicalScore(question, c.Text)
	}

	candidates := make([]int, 0, len(chunks))
	for i, score := range lexical {
		if score > r.cfg.KeywordThreshold {
			candidates = append(candidates, i)
		}
	}

	// When keywords match we only embed the reduced candidate set; the
	// full-document fallback scores on semantic similarity alone.
	filtered := len(candidates) > 0
	if !filtered {
		candidates = candidates[:0]
		for i := range chunks {
			candidates = append(candidates, i)
		}
	}

	logger.DebugContext(ctx, "lexical pre-filter applied",
		"total_chunks", len(chunks),
		"candidates", len(candidates),
		"keyword_filtered", filtered,
	)

	questionVec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return "", nil, fmt.Errorf("failed to embed question: %w", err)
	}

	texts := make([]string, len(candidates))
	for i, idx := range candidates {
		texts[i] = chunks[idx].Text
	}
	chunkVecs, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return "", nil, fmt.Errorf("failed to embed candidate chunks: %w", err)
	}
	if len(chunkVecs) != len(candidates) {
		return "", nil, fmt.Errorf("expected %d chunk embeddings, got %d", len(candidates), len(chunkVecs))
	}

	scored := make([]ScoredChunk, 0, len(candidates))
	for i, idx := range candidates {
		semantic := cosineSimilarity(questionVec, chunkVecs[i])
		final := semantic
		if filtered {
			final = r.cfg.SemanticWeight*semantic + r.cfg.LexicalWeight*lexical[idx]
		}
		if final <= r.cfg.SimilarityFloor {
			continue
		}
		scored = append(scored, ScoredChunk{
			Chunk:    chunks[idx],
			Lexical:  lexical[idx],
			Semantic: semantic,
			Final:    final,
		})
	}

	// Final score descending; ties go to the earlier chunk so results
	// stay deterministic.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Final != scored[j].Final {
			return scored[i].Final > scored[j].Final
		}
		return scored[i].Chunk.Index < scored[j].Chunk.Index
	})

	if len(scored) > r.cfg.TopK {
		scored = scored[:r.cfg.TopK]
	}

	if len(scored) == 0 {
		logger.InfoContext(ctx, "no chunk cleared the similarity floor", "floor", r.cfg.SimilarityFloor)
		return "", nil, nil
	}

	parts := make([]string, len(scored))
	for i, sc := range scored {
		parts[i] = sc.Chunk.Text
	}
	contextText := strings.Join(parts, " ")
	if runes := []rune(contextText); len(runes) > r.cfg.MaxContextLen {
		contextText = string(runes[:r.cfg.MaxContextLen])
	}

	logger.InfoContext(ctx, "context selected",
		"chunks_selected", len(scored),
		"context_length", len(contextText),
		"top_score", scored[0].Final,
	)

	return contextText, scored, nil
}

// getLogger extracts a request-scoped logger from context when present.
func (r *Ranker) getLogger(ctx context.Context) *slog.Logger {
	if l := contextutil.LoggerFromContext(ctx); l != slog.Default() {
		return l
	}
	return r.logger
}

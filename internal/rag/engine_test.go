package rag_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/mock/gomock"

	"roteiro-qa/internal/rag"
	"roteiro-qa/internal/rag/mocks"
)

const guideline = "Rifampicina deve ser administrada uma vez ao mês, de forma supervisionada."

func newTestEngine(t *testing.T, document string, embedder rag.EmbeddingProvider, extractor rag.Extractor) rag.Engine {
	t.Helper()
	engine, err := rag.NewEngine(rag.DefaultConfig(), document, embedder, extractor)
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	return engine
}

func TestAnswerAcceptsConfidentExtraction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := mocks.NewMockEmbeddingProvider(ctrl)
	embedder.EXPECT().Embed(gomock.Any(), "Como é administrada a rifampicina?").Return([]float32{1, 0}, nil)
	embedder.EXPECT().EmbedBatch(gomock.Any(), []string{guideline}).Return([][]float32{{1, 0}}, nil)

	extractor := mocks.NewMockExtractor(ctrl)
	extractor.EXPECT().
		Extract(gomock.Any(), "Como é administrada a rifampicina?", guideline, gomock.Any()).
		Return(rag.Candidate{Text: "uma vez ao mês", Score: 0.8}, nil)

	engine := newTestEngine(t, guideline, embedder, extractor)
	resp, err := engine.Answer(context.Background(), "Como é administrada a rifampicina?", "dr_gasnelio")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Source != rag.OriginExtracted {
		t.Fatalf("expected source %q, got %q", rag.OriginExtracted, resp.Source)
	}
	if resp.Confidence != 0.8 {
		t.Fatalf("expected confidence 0.8, got %f", resp.Confidence)
	}
	if !strings.Contains(resp.Answer, "uma vez ao mês") {
		t.Fatalf("expected answer to contain the extracted span, got %q", resp.Answer)
	}
	if !strings.Contains(resp.Answer, "Dr. Gasnelio") {
		t.Fatalf("expected technical persona framing, got %q", resp.Answer)
	}
}

func TestAnswerDowngradesLowConfidence(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := mocks.NewMockEmbeddingProvider(ctrl)
	embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).Return([]float32{1, 0}, nil)
	embedder.EXPECT().EmbedBatch(gomock.Any(), gomock.Any()).Return([][]float32{{1, 0}}, nil)

	extractor := mocks.NewMockExtractor(ctrl)
	extractor.EXPECT().
		Extract(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(rag.Candidate{Text: "", Score: 0.05}, nil)

	engine := newTestEngine(t, guideline, embedder, extractor)
	resp, err := engine.Answer(context.Background(), "Como é administrada a rifampicina?", "dr_gasnelio")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Source != rag.OriginContextExtraction {
		t.Fatalf("expected downgrade, got %q", resp.Source)
	}
	// The document's first sentence shares tokens with the question.
	if !strings.Contains(resp.Answer, "Rifampicina deve ser administrada uma vez ao mês") {
		t.Fatalf("expected first sentence of the document, got %q", resp.Answer)
	}
}

func TestAnswerRejectsOnEmptyDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := mocks.NewMockEmbeddingProvider(ctrl)
	extractor := mocks.NewMockExtractor(ctrl)
	// Neither provider may be called for an empty document.

	engine := newTestEngine(t, "", embedder, extractor)
	for _, q := range []string{"Como é administrada a rifampicina?", "Qualquer outra pergunta"} {
		resp, err := engine.Answer(context.Background(), q, "ga")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Source != rag.OriginNoAnswer {
			t.Fatalf("expected refusal for %q, got %q", q, resp.Source)
		}
		if resp.Confidence != 0 {
			t.Fatalf("refusal must carry zero confidence, got %f", resp.Confidence)
		}
		if !strings.Contains(resp.Answer, "essa eu não sei") {
			t.Fatalf("expected the Gá refusal template, got %q", resp.Answer)
		}
	}
}

func TestAnswerTreatsExtractorFailureAsZeroConfidence(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := mocks.NewMockEmbeddingProvider(ctrl)
	embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).Return([]float32{1, 0}, nil)
	embedder.EXPECT().EmbedBatch(gomock.Any(), gomock.Any()).Return([][]float32{{1, 0}}, nil)

	extractor := mocks.NewMockExtractor(ctrl)
	extractor.EXPECT().
		Extract(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(rag.Candidate{}, errors.New("provider timeout"))

	engine := newTestEngine(t, guideline, embedder, extractor)
	resp, err := engine.Answer(context.Background(), "Como é administrada a rifampicina?", "dr_gasnelio")
	if err != nil {
		t.Fatalf("provider failure must not surface as an error, got %v", err)
	}
	if resp.Source != rag.OriginContextExtraction {
		t.Fatalf("expected downgrade through the gate, got %q", resp.Source)
	}
}

func TestAnswerRefusesWhenEmbeddingFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := mocks.NewMockEmbeddingProvider(ctrl)
	embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).Return(nil, errors.New("embedding service down"))

	extractor := mocks.NewMockExtractor(ctrl)
	// Extraction is pointless without a context.

	engine := newTestEngine(t, guideline, embedder, extractor)
	resp, err := engine.Answer(context.Background(), "Como é administrada a rifampicina?", "ga")
	if err != nil {
		t.Fatalf("provider failure must not surface as an error, got %v", err)
	}
	if resp.Source != rag.OriginNoAnswer {
		t.Fatalf("expected refusal, got %q", resp.Source)
	}
}

func TestAnswerCacheIdempotence(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := mocks.NewMockEmbeddingProvider(ctrl)
	embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).Return([]float32{1, 0}, nil).Times(1)
	embedder.EXPECT().EmbedBatch(gomock.Any(), gomock.Any()).Return([][]float32{{1, 0}}, nil).Times(1)

	extractor := mocks.NewMockExtractor(ctrl)
	extractor.EXPECT().
		Extract(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(rag.Candidate{Text: "uma vez ao mês", Score: 0.8}, nil).
		Times(1)

	engine := newTestEngine(t, guideline, embedder, extractor)

	first, err := engine.Answer(context.Background(), "Como é administrada a rifampicina?", "dr_gasnelio")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Case and whitespace variants must hit the same entry without
	// touching the providers again.
	second, err := engine.Answer(context.Background(), "  como é administrada a rifampicina?  ", "dr_gasnelio")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Fatalf("cached response differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAnswerCachesPerPersona(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := mocks.NewMockEmbeddingProvider(ctrl)
	embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).Return([]float32{1, 0}, nil).Times(2)
	embedder.EXPECT().EmbedBatch(gomock.Any(), gomock.Any()).Return([][]float32{{1, 0}}, nil).Times(2)

	extractor := mocks.NewMockExtractor(ctrl)
	extractor.EXPECT().
		Extract(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(rag.Candidate{Text: "uma vez ao mês", Score: 0.8}, nil).
		Times(2)

	engine := newTestEngine(t, guideline, embedder, extractor)

	technical, err := engine.Answer(context.Background(), "Como é administrada a rifampicina?", "dr_gasnelio")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	simplified, err := engine.Answer(context.Background(), "Como é administrada a rifampicina?", "ga")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if technical.Answer == simplified.Answer {
		t.Fatal("personas must produce distinct formatted answers")
	}
	if technical.Persona != "dr_gasnelio" || simplified.Persona != "ga" {
		t.Fatalf("persona tags wrong: %q / %q", technical.Persona, simplified.Persona)
	}
}

func TestAnswerCollapsesConcurrentIdenticalRequests(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := mocks.NewMockEmbeddingProvider(ctrl)
	embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).Return([]float32{1, 0}, nil).Times(1)
	embedder.EXPECT().EmbedBatch(gomock.Any(), gomock.Any()).Return([][]float32{{1, 0}}, nil).Times(1)

	extractor := mocks.NewMockExtractor(ctrl)
	extractor.EXPECT().
		Extract(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(rag.Candidate{Text: "uma vez ao mês", Score: 0.8}, nil).
		Times(1)

	engine := newTestEngine(t, guideline, embedder, extractor)

	var wg sync.WaitGroup
	results := make([]rag.Response, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := engine.Answer(context.Background(), "Como é administrada a rifampicina?", "dr_gasnelio")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results[i] = resp
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Fatalf("concurrent callers got different responses: %+v vs %+v", results[0], results[i])
		}
	}
}

func TestAnswerValidatesInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	engine := newTestEngine(t, guideline, mocks.NewMockEmbeddingProvider(ctrl), mocks.NewMockExtractor(ctrl))

	if _, err := engine.Answer(context.Background(), "pergunta", "unknown_persona"); !errors.Is(err, rag.ErrUnknownPersona) {
		t.Fatalf("expected ErrUnknownPersona, got %v", err)
	}
	if _, err := engine.Answer(context.Background(), "   ", "ga"); !errors.Is(err, rag.ErrEmptyQuestion) {
		t.Fatalf("expected ErrEmptyQuestion, got %v", err)
	}
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := rag.DefaultConfig()
	cfg.ChunkOverlap = cfg.ChunkSize // overlap must stay below chunk size

	_, err := rag.NewEngine(cfg, guideline, mocks.NewMockEmbeddingProvider(ctrl), mocks.NewMockExtractor(ctrl))
	if err == nil {
		t.Fatal("expected config validation error")
	}
}

func TestEngineStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	engine := newTestEngine(t, guideline, mocks.NewMockEmbeddingProvider(ctrl), mocks.NewMockExtractor(ctrl))
	stats := engine.Stats()
	if stats.Chunks != 1 {
		t.Fatalf("expected 1 chunk for a short document, got %d", stats.Chunks)
	}
	if stats.DocumentRunes != len([]rune(guideline)) {
		t.Fatalf("expected %d document runes, got %d", len([]rune(guideline)), stats.DocumentRunes)
	}
	if stats.CachedResponses != 0 {
		t.Fatalf("expected empty cache, got %d", stats.CachedResponses)
	}
}

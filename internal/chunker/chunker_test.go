package chunker

import (
	"strings"
	"testing"
)

func TestNewSplitterValidation(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
		wantErr   bool
	}{
		{"valid", 1500, 300, false},
		{"zero chunk size", 0, 0, true},
		{"negative chunk size", -10, 0, true},
		{"negative overlap", 100, -1, true},
		{"overlap equals chunk size", 100, 100, true},
		{"overlap exceeds chunk size", 100, 150, true},
		{"zero overlap allowed", 100, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSplitter(tt.chunkSize, tt.overlap)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSplitter(%d, %d) error = %v, wantErr %v", tt.chunkSize, tt.overlap, err, tt.wantErr)
			}
		})
	}
}

func TestSplitEmptyInput(t *testing.T) {
	s, err := NewSplitter(100, 20)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Split(""); got != nil {
		t.Fatalf("expected nil chunks for empty input, got %d chunks", len(got))
	}
}

func TestSplitShortDocumentSingleChunk(t *testing.T) {
	s, err := NewSplitter(100, 20)
	if err != nil {
		t.Fatal(err)
	}
	text := "Rifampicina deve ser administrada uma vez ao mês."
	chunks := s.Split(text)

	if len(chunks) != 1 {
		t.Fatalf("expected a single chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Fatalf("single chunk should carry the whole document, got %q", chunks[0].Text)
	}
	if chunks[0].Start != 0 || chunks[0].End != len([]rune(text)) {
		t.Fatalf("unexpected offsets: [%d, %d)", chunks[0].Start, chunks[0].End)
	}
}

func TestSplitCoversWholeDocument(t *testing.T) {
	s, err := NewSplitter(120, 30)
	if err != nil {
		t.Fatal(err)
	}
	text := strings.Repeat("A dispensação de medicamentos deve seguir o protocolo vigente. ", 40)
	runes := []rune(text)
	chunks := s.Split(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for a long document, got %d", len(chunks))
	}

	// No gaps: each chunk must start at or before the previous end.
	if chunks[0].Start != 0 {
		t.Fatalf("first chunk must start at 0, got %d", chunks[0].Start)
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Start > chunks[i-1].End {
			t.Fatalf("gap between chunk %d (end %d) and chunk %d (start %d)",
				i-1, chunks[i-1].End, i, chunks[i].Start)
		}
	}
	if last := chunks[len(chunks)-1]; last.End != len(runes) {
		t.Fatalf("last chunk must end at document end %d, got %d", len(runes), last.End)
	}
}

func TestSplitRespectsMaxSize(t *testing.T) {
	s, err := NewSplitter(80, 10)
	if err != nil {
		t.Fatal(err)
	}
	text := strings.Repeat("palavra longa seguida de outra palavra ", 50)
	for i, c := range s.Split(text) {
		if n := len([]rune(c.Text)); n > 80 {
			t.Fatalf("chunk %d has %d runes, exceeds max 80", i, n)
		}
	}
}

func TestSplitOverlapApproximate(t *testing.T) {
	s, err := NewSplitter(100, 25)
	if err != nil {
		t.Fatal(err)
	}
	text := strings.Repeat("frase curta sobre tratamento supervisionado mensal. ", 30)
	chunks := s.Split(text)
	if len(chunks) < 3 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks)-1; i++ {
		overlap := chunks[i-1].End - chunks[i].Start
		if overlap < 0 || overlap > 25 {
			t.Fatalf("overlap between chunks %d and %d is %d, want within [0, 25]", i-1, i, overlap)
		}
	}
}

func TestSplitPrefersParagraphBoundary(t *testing.T) {
	s, err := NewSplitter(100, 10)
	if err != nil {
		t.Fatal(err)
	}
	// Paragraph break in the trailing portion of the first window.
	para := strings.Repeat("a", 85) + "\n\n" + strings.Repeat("b", 120)
	chunks := s.Split(para)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0].Text, "\n\n") {
		t.Fatalf("first chunk should end at the paragraph break, got %q", chunks[0].Text[len(chunks[0].Text)-5:])
	}
}

func TestSplitRejectsEarlyBoundary(t *testing.T) {
	s, err := NewSplitter(100, 10)
	if err != nil {
		t.Fatal(err)
	}
	// The only boundary candidates sit in the first half of the window,
	// so the split must fall back to the raw size offset.
	text := strings.Repeat("a", 30) + ". " + strings.Repeat("b", 200)
	chunks := s.Split(text)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if got := len([]rune(chunks[0].Text)); got != 100 {
		t.Fatalf("expected hard split at 100 runes, got %d", got)
	}
}

func TestSplitHandlesAccentedRunes(t *testing.T) {
	s, err := NewSplitter(50, 10)
	if err != nil {
		t.Fatal(err)
	}
	text := strings.Repeat("ação administração dispensação farmacêutico ", 10)
	chunks := s.Split(text)
	if len(chunks) == 0 {
		t.Fatal("expected chunks for non-empty input")
	}
	for i, c := range chunks {
		if c.Text != string([]rune(text)[c.Start:c.End]) {
			t.Fatalf("chunk %d text does not match its offsets", i)
		}
	}
}

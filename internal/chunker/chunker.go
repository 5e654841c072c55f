// Package chunker splits the guideline document into overlapping,
// boundary-aware segments used as retrieval units.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Chunk represents a contiguous segment of the source document.
// Start and End are rune offsets into the document; consecutive
// chunks overlap by roughly the configured overlap amount.
type Chunk struct {
	Index int    // Chunk index within the document (starts at 0)
	Start int    // Start rune offset (inclusive)
	End   int    // End rune offset (exclusive)
	Text  string // Chunk text content
}

// Splitter produces chunks of at most chunkSize runes with the
// configured overlap between consecutive chunks.
type Splitter struct {
	chunkSize int
	overlap   int
}

// NewSplitter creates a Splitter. It fails on parameters that would
// produce degenerate or non-terminating splits.
func NewSplitter(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("overlap must be non-negative, got %d", overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("overlap (%d) must be smaller than chunk size (%d)", overlap, chunkSize)
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}, nil
}

// boundary is a split candidate searched inside a window, in priority order.
type boundary struct {
	sep  string
	keep int // runes of the separator kept in the left chunk
}

var boundaries = []boundary{
	{"\n\n", 2}, // paragraph break
	{". ", 2},   // sentence terminator
	{"\n", 1},   // line break
	{" ", 1},    // whitespace
}

// Split divides text into overlapping chunks. Boundaries are preferred
// at paragraph breaks, then sentence ends, line breaks, and whitespace,
// but only when the candidate falls in the trailing portion of the
// window; otherwise the split happens at the exact size offset.
//
// It returns nil for empty input and a single chunk when the whole
// text fits in one window. Sizes are measured in runes so that
// accented text splits consistently.
func (s *Splitter) Split(text string) []Chunk {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= s.chunkSize {
		return []Chunk{{Index: 0, Start: 0, End: len(runes), Text: text}}
	}

	// A boundary closer to the window start than this would produce a
	// degenerate tiny chunk, so it is rejected in favor of later
	// candidates or the raw size offset.
	floor := (s.chunkSize * 7) / 10

	var chunks []Chunk
	start := 0
	for start < len(runes) {
		end := start + s.chunkSize
		if end >= len(runes) {
			chunks = append(chunks, Chunk{
				Index: len(chunks),
				Start: start,
				End:   len(runes),
				Text:  string(runes[start:]),
			})
			break
		}

		window := string(runes[start:end])
		if off := lastBoundary(window, floor); off > 0 {
			end = start + off
		}

		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Start: start,
			End:   end,
			Text:  string(runes[start:end]),
		})

		next := end - s.overlap
		if next <= start {
			// Overlap would not advance past a short chunk; move on
			// without overlap rather than looping forever.
			next = end
		}
		start = next
	}

	return chunks
}

// lastBoundary returns the rune offset just past the best split
// candidate in window, or -1 when no candidate clears the floor.
// Candidates are tried in priority order and each must individually
// fall past the floor, mirroring how a reader would prefer a late
// paragraph break over an earlier sentence end.
func lastBoundary(window string, floor int) int {
	for _, b := range boundaries {
		i := strings.LastIndex(window, b.sep)
		if i == -1 {
			continue
		}
		off := utf8.RuneCountInString(window[:i]) + b.keep
		if off > floor {
			return off
		}
	}
	return -1
}

package rag

import (
	"strings"
	"unicode"
)

// lexicalScore computes a cheap word-overlap relevance score between a
// question and a chunk: the fraction of distinct question tokens that
// appear in the chunk. Normalization is by question length on purpose,
// so short precise questions are not penalized by long chunks. Returns
// 0 when the question has no tokens.
func lexicalScore(question, chunkText string) float64 {
	questionTokens := tokenSet(question)
	if len(questionTokens) == 0 {
		return 0
	}

	chunkTokens := tokenSet(chunkText)
	if len(chunkTokens) == 0 {
		return 0
	}

	var common int
	for token := range questionTokens {
		if _, ok := chunkTokens[token]; ok {
			common++
		}
	}

	return float64(common) / float64(len(questionTokens))
}

// tokenize lowercases text and splits it into alphanumeric runs.
func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	tokens := strings.Fields(builder.String())
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// tokenSet returns the distinct tokens of text.
func tokenSet(text string) map[string]struct{} {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

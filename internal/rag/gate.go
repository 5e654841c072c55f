package rag

import "strings"

// minDowngradeContext is the minimum context length, in runes, for the
// sentence-extraction fallback to be worth attempting. A single short
// retrieved sentence still qualifies; scraps shorter than this don't.
const minDowngradeContext = 50

// Outcome is a terminal decision of the confidence gate.
type Outcome struct {
	// Answer is the raw answer text before persona formatting. Empty
	// for refusals; the formatter supplies the refusal template.
	Answer string
	// Confidence is the extractor confidence carried into the response.
	Confidence float64
	// Origin tags which gate path produced the answer.
	Origin Origin
}

// Gate decides whether to accept the extractor's answer, downgrade to
// a verbatim sentence from the context, or refuse.
type Gate struct {
	acceptThreshold float64
}

// NewGate creates a Gate with the given acceptance threshold.
func NewGate(acceptThreshold float64) *Gate {
	return &Gate{acceptThreshold: acceptThreshold}
}

// Decide maps an extractor candidate to one of the three terminal
// outcomes. Provider failures arrive here as a zero-score candidate,
// so the error path and the low-confidence path converge.
func (g *Gate) Decide(question, contextText string, cand Candidate) Outcome {
	if cand.Score >= g.acceptThreshold && cand.Text != "" {
		return Outcome{Answer: cand.Text, Confidence: cand.Score, Origin: OriginExtracted}
	}

	if len([]rune(contextText)) > minDowngradeContext {
		if sentence := firstOverlappingSentence(question, contextText); sentence != "" {
			return Outcome{Answer: sentence, Confidence: cand.Score, Origin: OriginContextExtraction}
		}
	}

	return Outcome{Origin: OriginNoAnswer}
}

// firstOverlappingSentence scans the context's sentences in order and
// returns the first one sharing at least one token with the question,
// or "" when none does.
func firstOverlappingSentence(question, contextText string) string {
	questionTokens := tokenSet(question)
	if len(questionTokens) == 0 {
		return ""
	}

	for _, sentence := range strings.Split(contextText, ".") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		for token := range tokenSet(sentence) {
			if _, ok := questionTokens[token]; ok {
				return sentence + "."
			}
		}
	}
	return ""
}

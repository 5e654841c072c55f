package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"roteiro-qa/internal/rag"
)

// QAClient is a client for an extractive question-answering API. The
// endpoint takes a question and a context passage and returns the best
// answer span with a confidence score.
type QAClient struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

// NewQAClient creates a new extractive QA client. timeout bounds each
// call; a timed-out extraction surfaces as an error the pipeline
// treats as a zero-confidence answer.
func NewQAClient(baseURL, apiKey, model string, timeout time.Duration) *QAClient {
	return &QAClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// QARequest represents the request payload for the QA API.
type QARequest struct {
	Model        string `json:"model"`
	Question     string `json:"question"`
	Context      string `json:"context"`
	MaxAnswerLen int    `json:"max_answer_len,omitempty"`
}

// QAResponse represents the response from the QA API.
type QAResponse struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
}

// Extract asks the QA service for an answer span. An empty answer with
// a low score is a valid response, not an error.
func (c *QAClient) Extract(ctx context.Context, question, contextText string, maxAnswerLen int) (rag.Candidate, error) {
	url := fmt.Sprintf("%s/v1/question-answering", c.BaseURL)

	payload := QARequest{
		Model:        c.Model,
		Question:     question,
		Context:      contextText,
		MaxAnswerLen: maxAnswerLen,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return rag.Candidate{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return rag.Candidate{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return rag.Candidate{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return rag.Candidate{}, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var qaResp QAResponse
	if err := json.NewDecoder(resp.Body).Decode(&qaResp); err != nil {
		return rag.Candidate{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if qaResp.Score < 0 || qaResp.Score > 1 {
		return rag.Candidate{}, fmt.Errorf("score %g outside [0, 1]", qaResp.Score)
	}

	return rag.Candidate{Text: qaResp.Answer, Score: qaResp.Score}, nil
}

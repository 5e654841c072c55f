package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"roteiro-qa/internal/contextutil"
	"roteiro-qa/internal/rag"
)

// ChatHandler handles HTTP requests for guideline questions.
type ChatHandler struct {
	engine rag.Engine
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(engine rag.Engine) *ChatHandler {
	return &ChatHandler{engine: engine}
}

// ChatRequest represents the HTTP request payload for a question.
type ChatRequest struct {
	Question      string `json:"question"`
	PersonalityID string `json:"personality_id"`
}

// ChatResponse represents the HTTP response payload for a question.
type ChatResponse struct {
	Answer     string  `json:"answer"`
	Persona    string  `json:"persona"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP answers a question for a persona. Malformed JSON, a blank
// question or an unknown persona id are 400s; everything else is a
// well-formed answer, worst case the persona's refusal.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	resp, err := h.engine.Answer(ctx, req.Question, req.PersonalityID)
	if err != nil {
		switch {
		case errors.Is(err, rag.ErrEmptyQuestion):
			writeError(w, http.StatusBadRequest, "question is required")
		case errors.Is(err, rag.ErrUnknownPersona):
			writeError(w, http.StatusBadRequest, "unknown personality_id")
		default:
			logger.ErrorContext(ctx, "failed to answer question", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Answer:     resp.Answer,
		Persona:    resp.Persona,
		Confidence: resp.Confidence,
		Source:     string(resp.Source),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

package handlers

import (
	"net/http"

	"roteiro-qa/internal/persona"
	"roteiro-qa/internal/rag"
)

// HealthHandler reports service readiness and loaded-document stats.
type HealthHandler struct {
	engine rag.Engine
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(engine rag.Engine) *HealthHandler {
	return &HealthHandler{engine: engine}
}

// HealthResponse represents the health check payload.
type HealthResponse struct {
	Status   string    `json:"status"`
	Stats    rag.Stats `json:"stats"`
	Personas []string  `json:"personas"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	personas := make([]string, 0, 2)
	for _, p := range persona.All() {
		personas = append(personas, string(p.ID))
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Stats:    h.engine.Stats(),
		Personas: personas,
	})
}

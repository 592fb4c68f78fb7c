package kernel

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kweiss-dev/minerva/internal/core/domain"
	"github.com/kweiss-dev/minerva/internal/core/services"
)

// Server is the thin request-handling layer in front of the agent core.
type Server struct {
	logger  *slog.Logger
	agent   *services.AgentService
	tools   *domain.ToolRegistry
	schemas *domain.SchemaRegistry
}

// NewServer wires the HTTP kernel.
func NewServer(logger *slog.Logger, agent *services.AgentService, tools *domain.ToolRegistry, schemas *domain.SchemaRegistry) *Server {
	return &Server{logger: logger, agent: agent, tools: tools, schemas: schemas}
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat", s.handleChat)
	mux.HandleFunc("GET /v1/tools", s.handleListTools)
	mux.HandleFunc("GET /v1/schemas", s.handleListSchemas)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// ChatRequest is the POST /v1/chat payload.
type ChatRequest struct {
	Message     string               `json:"message"`
	History     []domain.ChatMessage `json:"history,omitempty"`
	UserID      string               `json:"user_id,omitempty"`
	SessionID   string               `json:"session_id,omitempty"`
	ForceSchema string               `json:"force_schema,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	result := s.agent.Process(r.Context(), req.Message, req.History, domain.ProcessOptions{
		UserID:      req.UserID,
		SessionID:   req.SessionID,
		ForceSchema: domain.ResponseKind(req.ForceSchema),
	})

	// A missing response means even the fallback path failed; that is the
	// only protocol-level failure. A degraded answer (fallback response with
	// Error set in the envelope) still ships as 200: the client gets a usable
	// response either way and reads Error for the failure detail.
	status := http.StatusOK
	if result.Response == nil && result.Error != "" {
		status = http.StatusInternalServerError
	}
	s.writeJSON(w, status, result)
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	type toolInfo struct {
		Name        string                `json:"name"`
		Description string                `json:"description"`
		Parameters  domain.ToolParameters `json:"parameters"`
	}
	var out []toolInfo
	for _, t := range s.tools.ListTools() {
		out = append(out, toolInfo{Name: t.Name, Description: t.Description, Parameters: t.Parameters})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"tools": out})
}

func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	type schemaInfo struct {
		Kind        domain.ResponseKind `json:"kind"`
		Name        string              `json:"name"`
		Description string              `json:"description"`
	}
	var out []schemaInfo
	for _, sc := range s.schemas.List() {
		out = append(out, schemaInfo{Kind: sc.Kind, Name: sc.Name, Description: sc.Description})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"schemas": out})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/metrics"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// handleQuery is POST /api/query.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	metrics.ActiveRequests.Inc()
	defer metrics.ActiveRequests.Dec()
	start := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return
	}

	var req service.QueryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	resp, err := s.queries.Process(r.Context(), req)
	if err != nil {
		metrics.QueryErrors.Inc()
		writeError(w, http.StatusInternalServerError, service.ErrProcessing.Error())
		return
	}

	metrics.QueriesTotal.Inc()
	metrics.QueryLatency.Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, resp)
}

// handleGetConversation is GET /api/conversations/{id}.
func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	msgs := s.memory.GetConversation(id)
	if len(msgs) == 0 {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": id,
		"messages":        msgs,
	})
}

// handleDeleteConversation is DELETE /api/conversations/{id}.
func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if !s.memory.DeleteConversation(id) {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": id,
		"deleted":         true,
	})
}

// handleAnalytics is GET /api/admin/analytics.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.GetSummary())
}

// handleListConversations is GET /api/admin/conversations.
func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	ids := s.memory.ListConversations()
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversations": ids,
		"count":         len(ids),
	})
}

// handleStatus is GET /status, used by health probes.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(metrics.Collector.Uptime().Seconds()),
	})
}

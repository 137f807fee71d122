// Package service implements the query pipeline: memory, routing, agent
// invocation and analytics for one portfolio question.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/agent"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/analytics"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/domain"
)

// ErrProcessing is returned to API clients when the agent pipeline fails.
// The detailed cause stays in the logs.
var ErrProcessing = errors.New("error processing your request")

// QueryRequest is one question from a client.
type QueryRequest struct {
	Query           string `json:"query"`
	ConversationID  string `json:"conversation_id,omitempty"`
	UserID          string `json:"user_id,omitempty"`
	ProjectSpecific bool   `json:"project_specific,omitempty"`
	ProjectName     string `json:"project_name,omitempty"`
}

// QueryResponse is the answer together with conversation bookkeeping.
type QueryResponse struct {
	ConversationID string         `json:"conversation_id"`
	Response       string         `json:"response"`
	AgentUsed      string         `json:"agent_used"`
	Confidence     float64        `json:"confidence"`
	ProcessingTime float64        `json:"processing_time"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// QueryService wires conversation memory, the agent crew and analytics into
// the flow behind POST /api/query.
type QueryService struct {
	memory  domain.ConversationStore
	crew    *agent.Crew
	router  *agent.Router
	tracker *analytics.Tracker
	logger  *slog.Logger
}

// NewQueryService builds a service that routes on the request flags alone:
// the project path is taken iff project_specific is set with a project name.
func NewQueryService(memory domain.ConversationStore, crew *agent.Crew, tracker *analytics.Tracker, logger *slog.Logger) *QueryService {
	return &QueryService{
		memory:  memory,
		crew:    crew,
		tracker: tracker,
		logger:  logger,
	}
}

// WithRouter enables keyword-based role suggestion for requests that carry
// no project flags. The interactive chat uses this; the HTTP API does not.
func (s *QueryService) WithRouter(r *agent.Router) *QueryService {
	s.router = r
	return s
}

// Process answers one question. The user message is recorded before the
// agent runs; on agent failure it stays recorded and the caller gets
// ErrProcessing.
func (s *QueryService) Process(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	start := time.Now()

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	// History snapshot predates the current exchange, matching the
	// conversation_length accounting below.
	history := s.memory.GetConversation(conversationID)

	if err := s.memory.AddMessage(conversationID, domain.RoleUser, req.Query); err != nil {
		s.logger.Error("cannot record user message", "conversation_id", conversationID, "error", err)
		return nil, ErrProcessing
	}

	role := agent.RoleKnowledge
	switch {
	case req.ProjectSpecific && req.ProjectName != "":
		role = agent.RoleProject
	case s.router != nil:
		role = s.router.Route(req.Query, false, "")
	}

	var answer string
	var err error
	if role == agent.RoleProject && req.ProjectSpecific && req.ProjectName != "" {
		answer, err = s.crew.AskProject(ctx, req.ProjectName, req.Query, history)
	} else {
		answer, err = s.crew.Ask(ctx, role, req.Query, history)
	}
	if err != nil {
		s.logger.Error("agent pipeline failed",
			"conversation_id", conversationID,
			"agent", role,
			"error", err,
		)
		return nil, ErrProcessing
	}

	if err := s.memory.AddMessage(conversationID, domain.RoleAssistant, answer); err != nil {
		s.logger.Error("cannot record assistant message", "conversation_id", conversationID, "error", err)
		return nil, ErrProcessing
	}

	elapsed := time.Since(start).Seconds()

	// Analytics must never delay or fail the response.
	go func(query, userID, convID string, rt float64) {
		s.tracker.TrackQuery(query, userID, &convID, &rt)
	}(req.Query, req.UserID, conversationID, elapsed)

	return &QueryResponse{
		ConversationID: conversationID,
		Response:       answer,
		AgentUsed:      role,
		Confidence:     0.95,
		ProcessingTime: elapsed,
		Metadata: map[string]any{
			// +2 for the current exchange.
			"conversation_length": len(history) + 2,
		},
	}, nil
}

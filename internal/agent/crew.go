// Package agent builds portfolio-aware prompts and runs them against an LLM
// provider. Each role pairs a system prompt with the portfolio knowledge it
// is allowed to speak from.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/domain"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/knowledge"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/metrics"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/vectorstore"
)

// Agent roles exposed to API clients via the agent_used response field.
const (
	RoleKnowledge = "Portfolio Knowledge Expert"
	RoleProject   = "Project Specialist"
)

const (
	defaultTemperature      = 0.7
	defaultHistoryExchanges = 3
)

// Crew answers portfolio questions by selecting a role-specific prompt and
// calling the provider. When a vector store is attached, retrieved chunks
// replace the full portfolio dump in the prompt.
type Crew struct {
	provider      domain.Provider
	roleProviders map[string]domain.Provider
	portfolio     *knowledge.Portfolio
	vectors       *vectorstore.Store
	extra         string // operator-supplied addition to every system prompt
	overrides     map[string]string
	temperature   float64
	exchanges     int
	logger        *slog.Logger
}

type CrewConfig struct {
	Provider          domain.Provider
	RoleProviders     map[string]domain.Provider // optional per-role override
	Portfolio         *knowledge.Portfolio
	Vectors           *vectorstore.Store
	SystemPromptExtra string
	PromptOverrides   map[string]string // role -> replacement backstory
	Temperature       float64           // 0 = default
	HistoryExchanges  int               // exchanges folded into the prompt; 0 = default
	Logger            *slog.Logger
}

func NewCrew(cfg CrewConfig) *Crew {
	if cfg.HistoryExchanges <= 0 {
		cfg.HistoryExchanges = defaultHistoryExchanges
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	return &Crew{
		provider:      cfg.Provider,
		roleProviders: cfg.RoleProviders,
		portfolio:     cfg.Portfolio,
		vectors:       cfg.Vectors,
		extra:         cfg.SystemPromptExtra,
		overrides:     cfg.PromptOverrides,
		temperature:   cfg.Temperature,
		exchanges:     cfg.HistoryExchanges,
		logger:        cfg.Logger,
	}
}

// Ask runs one question through the named role. History is folded into the
// prompt as plain text so providers without native multi-turn support behave
// the same as those with it.
func (c *Crew) Ask(ctx context.Context, role, question string, history []domain.Message) (string, error) {
	system := c.systemPrompt(ctx, role, question)

	var sb strings.Builder
	if h := formatHistory(history, c.exchanges); h != "" {
		sb.WriteString(h)
		sb.WriteString("\n")
	}
	sb.WriteString(question)

	prov := c.provider
	if p, ok := c.roleProviders[role]; ok {
		prov = p
	}

	metrics.LLMRequestsTotal.Inc()
	resp, err := prov.Chat(ctx, domain.ChatRequest{
		Messages: []domain.ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: sb.String()},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("agent %s: %w", role, err)
	}
	metrics.LLMLatency.Observe(float64(resp.LatencyMs) / 1000)

	c.logger.Debug("agent answered",
		"role", role,
		"tokens", resp.Usage.TotalTokens,
		"latency_ms", resp.LatencyMs,
	)
	return resp.Content, nil
}

// AskProject answers a question scoped to one named project.
func (c *Crew) AskProject(ctx context.Context, projectName, question string, history []domain.Message) (string, error) {
	scoped := fmt.Sprintf("Answer the following question about the project '%s':\n\n%s\n\nProvide technical details, challenges faced, solutions implemented, and outcomes achieved. Include technologies used and your role in the project.", projectName, question)
	return c.Ask(ctx, RoleProject, scoped, history)
}

// systemPrompt assembles the role backstory plus portfolio knowledge. The
// question is only used for vector retrieval.
func (c *Crew) systemPrompt(ctx context.Context, role, question string) string {
	var sb strings.Builder

	name := c.portfolio.Personal.Name
	switch {
	case c.overrides[role] != "":
		sb.WriteString(c.overrides[role])
		sb.WriteString("\n\n")
	case role == RoleProject:
		sb.WriteString(fmt.Sprintf("You are %s's Portfolio AI Assistant, acting as a Project Specialist. You specialize in providing in-depth information about portfolio projects: the technologies used, challenges faced, solutions implemented, and outcomes for each project. You can explain the technical aspects as well as the business impact of each project.\n\n", name))
	default:
		sb.WriteString(fmt.Sprintf("You are %s's Portfolio AI Assistant, acting as a Portfolio Knowledge Expert. You have extensive knowledge about their professional background, including skills, work experience, education, and career achievements. You can answer detailed questions about their qualifications and help users understand their professional profile.\n\n", name))
	}

	sb.WriteString(c.knowledgeSection(ctx, role, question))

	sb.WriteString("\nWhen answering questions about the portfolio, use this information to provide accurate and detailed responses. If asked about specific projects or technical details not explicitly mentioned here, you can respond based on the general technology stack and experience, but make it clear that you're providing a general answer.\n")
	sb.WriteString("\nAlways maintain the owner's voice and philosophy in your responses:\n")
	sb.WriteString("- Focus on business value before technology\n")
	sb.WriteString("- Emphasize problem-solving and practical solutions\n")
	sb.WriteString("- Highlight the connection between technology and business impact\n")
	sb.WriteString("\nIf asked about availability for projects, interviews, or collaborations, suggest contacting directly through the provided contact information.\n")

	if c.extra != "" {
		sb.WriteString("\n")
		sb.WriteString(c.extra)
		sb.WriteString("\n")
	}
	return sb.String()
}

// knowledgeSection returns either semantically retrieved chunks or the full
// formatted portfolio, depending on whether the vector store is available.
func (c *Crew) knowledgeSection(ctx context.Context, role, question string) string {
	if hits := c.vectors.SimilaritySearch(ctx, question); len(hits) > 0 {
		var sb strings.Builder
		sb.WriteString("Relevant portfolio information:\n\n")
		for _, h := range hits {
			sb.WriteString(h.Content)
			sb.WriteString("\n\n")
		}
		return sb.String()
	}

	if role == RoleProject {
		return c.portfolio.FormatProjects()
	}
	return c.portfolio.FormatContext()
}

// formatHistory renders the last n exchanges as labelled lines, oldest first.
func formatHistory(history []domain.Message, exchanges int) string {
	if len(history) == 0 {
		return ""
	}
	start := 0
	if keep := exchanges * 2; len(history) > keep {
		start = len(history) - keep
	}

	var sb strings.Builder
	sb.WriteString("Previous conversation:\n")
	for _, m := range history[start:] {
		label := "User"
		if m.Role == domain.RoleAssistant {
			label = "Assistant"
		}
		sb.WriteString(label)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

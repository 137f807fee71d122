package agent

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/domain"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/knowledge"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/metrics"
)

// fakeProvider records the last request and returns a canned answer.
type fakeProvider struct {
	lastReq domain.ChatRequest
	reply   string
	err     error
}

func (f *fakeProvider) Name() string                      { return "fake" }
func (f *fakeProvider) Models() []string                  { return []string{"fake-model"} }
func (f *fakeProvider) Healthy(ctx context.Context) error { return nil }

func (f *fakeProvider) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ChatResponse{Content: f.reply, FinishReason: "stop"}, nil
}

func newTestCrew(p domain.Provider) *Crew {
	return NewCrew(CrewConfig{
		Provider:  p,
		Portfolio: knowledge.Default(),
		Logger:    slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
	})
}

func TestAskRecordsLLMMetrics(t *testing.T) {
	crew := newTestCrew(&fakeProvider{reply: "counted"})

	requestsBefore := metrics.LLMRequestsTotal.Value()
	latencyBefore := metrics.LLMLatency.Count()

	if _, err := crew.Ask(context.Background(), RoleKnowledge, "metrics?", nil); err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if got := metrics.LLMRequestsTotal.Value() - requestsBefore; got != 1 {
		t.Errorf("llm request counter advanced by %d, want 1", got)
	}
	if got := metrics.LLMLatency.Count() - latencyBefore; got != 1 {
		t.Errorf("llm latency histogram advanced by %d, want 1", got)
	}
}

func TestAskBuildsSystemAndUserMessages(t *testing.T) {
	fp := &fakeProvider{reply: "answer"}
	crew := newTestCrew(fp)

	got, err := crew.Ask(context.Background(), RoleKnowledge, "What skills do you have?", nil)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if got != "answer" {
		t.Fatalf("got %q", got)
	}

	msgs := fp.lastReq.Messages
	if len(msgs) != 2 || msgs[0].Role != "system" || msgs[1].Role != "user" {
		t.Fatalf("unexpected message shape: %+v", msgs)
	}
	if !strings.Contains(msgs[0].Content, "Portfolio Knowledge Expert") {
		t.Error("system prompt missing role backstory")
	}
	if !strings.Contains(msgs[0].Content, "PERSONAL INFORMATION") {
		t.Error("system prompt missing portfolio context")
	}
	if fp.lastReq.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", fp.lastReq.Temperature)
	}
}

func TestAskFoldsRecentHistory(t *testing.T) {
	fp := &fakeProvider{reply: "ok"}
	crew := newTestCrew(fp)

	history := []domain.Message{
		{Role: "user", Content: "oldest question"},
		{Role: "assistant", Content: "oldest answer"},
		{Role: "user", Content: "q2"},
		{Role: "assistant", Content: "a2"},
		{Role: "user", Content: "q3"},
		{Role: "assistant", Content: "a3"},
		{Role: "user", Content: "q4"},
		{Role: "assistant", Content: "a4"},
	}

	if _, err := crew.Ask(context.Background(), RoleKnowledge, "next?", history); err != nil {
		t.Fatalf("Ask: %v", err)
	}

	user := fp.lastReq.Messages[1].Content
	if strings.Contains(user, "oldest question") {
		t.Error("history older than the window should be dropped")
	}
	if !strings.Contains(user, "User: q2") || !strings.Contains(user, "Assistant: a4") {
		t.Errorf("recent history missing from prompt:\n%s", user)
	}
	// History precedes the new question.
	if strings.Index(user, "Assistant: a4") > strings.Index(user, "next?") {
		t.Error("history should come before the question")
	}
}

func TestAskProjectScopesQuestion(t *testing.T) {
	fp := &fakeProvider{reply: "ok"}
	crew := newTestCrew(fp)

	if _, err := crew.AskProject(context.Background(), "Nau Fleet Manager", "what was hard?", nil); err != nil {
		t.Fatalf("AskProject: %v", err)
	}

	user := fp.lastReq.Messages[1].Content
	if !strings.Contains(user, "Nau Fleet Manager") {
		t.Error("project name missing from prompt")
	}
	if !strings.Contains(fp.lastReq.Messages[0].Content, "Project Specialist") {
		t.Error("project questions should use the specialist backstory")
	}
}

func TestAskPropagatesProviderError(t *testing.T) {
	fp := &fakeProvider{err: errors.New("provider down")}
	crew := newTestCrew(fp)

	if _, err := crew.Ask(context.Background(), RoleKnowledge, "hi", nil); err == nil {
		t.Fatal("expected error from failing provider")
	}
}

func TestRoute(t *testing.T) {
	r := NewRouter(nil)
	tests := []struct {
		question        string
		projectSpecific bool
		projectName     string
		want            string
	}{
		{"What skills do you have?", false, "", RoleKnowledge},
		{"Tell me about your projects", false, "", RoleProject},
		{"Where did you study?", false, "", RoleKnowledge},
		{"Is there a GitHub link?", false, "", RoleProject},
		{"anything", true, "Stinte", RoleProject},
		{"anything", true, "", RoleKnowledge}, // flag without a name falls through
	}
	for _, tt := range tests {
		if got := r.Route(tt.question, tt.projectSpecific, tt.projectName); got != tt.want {
			t.Errorf("Route(%q, %v, %q) = %q, want %q", tt.question, tt.projectSpecific, tt.projectName, got, tt.want)
		}
	}
}

func TestRouterExtraKeywords(t *testing.T) {
	r := NewRouter([]string{"Fleet"})
	if got := r.Route("tell me about the fleet work", false, ""); got != RoleProject {
		t.Errorf("configured keyword should route to project specialist, got %q", got)
	}
}

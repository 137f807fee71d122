package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/config"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/domain"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/metrics"
)

func factoryConfig() *config.Config {
	cfg := config.Defaults()
	cfg.General.DefaultProvider = "claude"
	for name, pc := range cfg.Providers {
		pc.Enabled = true
		pc.APIKey = "test-key"
		cfg.Providers[name] = pc
	}
	return cfg
}

func TestFactory_GetCachesInstances(t *testing.T) {
	f := NewFactory(factoryConfig(), testLogger())

	p1, err := f.Get("claude")
	if err != nil {
		t.Fatalf("Get(claude): %v", err)
	}
	p2, err := f.Get("claude")
	if err != nil {
		t.Fatalf("Get(claude) again: %v", err)
	}
	if p1 != p2 {
		t.Fatal("expected cached instance on second Get")
	}
}

func TestFactory_DefaultProvider(t *testing.T) {
	f := NewFactory(factoryConfig(), testLogger())

	p, err := f.DefaultProvider()
	if err != nil {
		t.Fatalf("DefaultProvider: %v", err)
	}
	if p.Name() != "claude" {
		t.Fatalf("expected claude, got %q", p.Name())
	}
}

func TestFactory_UnknownProvider(t *testing.T) {
	f := NewFactory(factoryConfig(), testLogger())

	if _, err := f.Get("nonexistent"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestFactory_DisabledProvider(t *testing.T) {
	cfg := factoryConfig()
	pc := cfg.Providers["openai"]
	pc.Enabled = false
	cfg.Providers["openai"] = pc
	f := NewFactory(cfg, testLogger())

	if _, err := f.Get("openai"); err == nil {
		t.Fatal("expected error for disabled provider")
	}
}

func TestFactory_UnregisteredNameFallsBackToOpenAICompatible(t *testing.T) {
	cfg := factoryConfig()
	cfg.Providers["groq"] = config.ProviderConfig{
		Enabled:      true,
		APIBase:      "https://api.groq.com/openai/v1",
		APIKey:       "test-key",
		DefaultModel: "llama-3.1-8b-instant",
	}
	f := NewFactory(cfg, testLogger())

	p, err := f.Get("groq")
	if err != nil {
		t.Fatalf("Get(groq): %v", err)
	}
	if p.Name() != "groq" {
		t.Fatalf("expected groq, got %q", p.Name())
	}
}

func TestFactory_FailoverChain(t *testing.T) {
	cfg := factoryConfig()
	cfg.General.FailoverChain = []string{"claude", "openai"}
	f := NewFactory(cfg, testLogger())

	p, err := f.FailoverChain()
	if err != nil {
		t.Fatalf("FailoverChain: %v", err)
	}
	if _, ok := p.(*FailoverProvider); !ok {
		t.Fatalf("expected FailoverProvider, got %T", p)
	}
}

func TestOpenAI_ChatRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "hello"}, "finish_reason": "stop"},
			},
			"usage": map[string]int{"prompt_tokens": 5, "completion_tokens": 2, "total_tokens": 7},
		})
	}))
	defer srv.Close()

	p := NewOpenAI(OpenAIConfig{APIKey: "k", APIBase: srv.URL, Model: "m", Logger: testLogger()})

	retriesBefore := metrics.LLMRetriesTotal.Value()
	resp, err := p.Chat(context.Background(), domain.ChatRequest{
		Messages: []domain.ChatMessage{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Content != "hello" {
		t.Fatalf("got %q, want hello", resp.Content)
	}
	if resp.Usage.TotalTokens != 7 {
		t.Fatalf("usage not propagated: %+v", resp.Usage)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls (one retry), got %d", calls.Load())
	}
	if got := metrics.LLMRetriesTotal.Value() - retriesBefore; got != 1 {
		t.Fatalf("retry counter advanced by %d, want 1", got)
	}
}

func TestOpenAI_ChatClientErrorNoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewOpenAI(OpenAIConfig{APIKey: "k", APIBase: srv.URL, Model: "m", Logger: testLogger()})

	_, err := p.Chat(context.Background(), domain.ChatRequest{
		Messages: []domain.ChatMessage{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error on 400")
	}
	if calls.Load() != 1 {
		t.Fatalf("4xx must not retry, got %d calls", calls.Load())
	}
}

package memory

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	s, err := NewStore(t.TempDir(), logger)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestGetConversation_UnknownID_ReturnsEmpty(t *testing.T) {
	s := newTestStore(t)
	msgs := s.GetConversation("never-seen")
	if len(msgs) != 0 {
		t.Errorf("expected empty conversation, got %d messages", len(msgs))
	}
}

func TestAddMessage_PreservesOrder(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		if err := s.AddMessage("conv-1", role, fmt.Sprintf("message %d", i)); err != nil {
			t.Fatalf("add message %d: %v", i, err)
		}
	}

	msgs := s.GetConversation("conv-1")
	if len(msgs) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(msgs))
	}
	for i, msg := range msgs {
		want := fmt.Sprintf("message %d", i)
		if msg.Content != want {
			t.Errorf("message %d: got %q, want %q", i, msg.Content, want)
		}
	}
}

func TestAddMessage_InvalidRole_LeavesConversationUnchanged(t *testing.T) {
	s := newTestStore(t)
	if err := s.AddMessage("conv-1", domain.RoleUser, "hello"); err != nil {
		t.Fatal(err)
	}

	err := s.AddMessage("conv-1", "system", "injected")
	if err == nil {
		t.Fatal("expected error for invalid role")
	}
	if !errors.Is(err, domain.ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}

	msgs := s.GetConversation("conv-1")
	if len(msgs) != 1 {
		t.Errorf("conversation should be unchanged, got %d messages", len(msgs))
	}
}

func TestConversationID_PathTraversal_Rejected(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	base := t.TempDir()
	s, err := NewStore(filepath.Join(base, "conversations"), logger)
	if err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"../escaped", "..", ".", "", "a/b", `a\b`, "../../etc/passwd"} {
		if err := s.AddMessage(id, domain.RoleUser, "owned"); err == nil {
			t.Errorf("AddMessage(%q) should be rejected", id)
		}
		if msgs := s.GetConversation(id); len(msgs) != 0 {
			t.Errorf("GetConversation(%q) = %d messages, want none", id, len(msgs))
		}
		if s.DeleteConversation(id) {
			t.Errorf("DeleteConversation(%q) should return false", id)
		}
	}

	if _, err := os.Stat(filepath.Join(base, "escaped.json")); !os.IsNotExist(err) {
		t.Fatal("a conversation file was written outside the storage directory")
	}
}

func TestAddMessage_NonStringContent_Coerced(t *testing.T) {
	s := newTestStore(t)
	if err := s.AddMessage("conv-1", domain.RoleAssistant, 42); err != nil {
		t.Fatal(err)
	}
	msgs := s.GetConversation("conv-1")
	if msgs[0].Content != "42" {
		t.Errorf("expected stringified content, got %q", msgs[0].Content)
	}
}

func TestAddMessage_PersistsToDisk(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	dir := t.TempDir()

	s1, err := NewStore(dir, logger)
	if err != nil {
		t.Fatal(err)
	}
	if err := s1.AddMessage("conv-persist", domain.RoleUser, "saved"); err != nil {
		t.Fatal(err)
	}

	// A fresh store with an empty cache must load from the backing file.
	s2, err := NewStore(dir, logger)
	if err != nil {
		t.Fatal(err)
	}
	msgs := s2.GetConversation("conv-persist")
	if len(msgs) != 1 || msgs[0].Content != "saved" {
		t.Errorf("expected persisted message, got %+v", msgs)
	}
}

func TestGetConversation_CorruptFile_TreatedAsEmpty(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewStore(dir, logger)
	if err != nil {
		t.Fatal(err)
	}
	if msgs := s.GetConversation("bad"); len(msgs) != 0 {
		t.Errorf("corrupt file should read as empty, got %d messages", len(msgs))
	}
}

func TestDeleteConversation(t *testing.T) {
	s := newTestStore(t)

	if s.DeleteConversation("never-existed") {
		t.Error("delete of unknown conversation should return false")
	}

	if err := s.AddMessage("conv-del", domain.RoleUser, "bye"); err != nil {
		t.Fatal(err)
	}
	if !s.DeleteConversation("conv-del") {
		t.Error("delete of existing conversation should return true")
	}
	if msgs := s.GetConversation("conv-del"); len(msgs) != 0 {
		t.Errorf("conversation should be empty after delete, got %d messages", len(msgs))
	}
}

func TestGetConversationSummary(t *testing.T) {
	s := newTestStore(t)

	if got := s.GetConversationSummary("empty", 3); got != emptyConversationSummary {
		t.Errorf("empty conversation: got %q", got)
	}

	for i := 0; i < 10; i++ {
		_ = s.AddMessage("conv-sum", domain.RoleUser, fmt.Sprintf("q%d", i))
		_ = s.AddMessage("conv-sum", domain.RoleAssistant, fmt.Sprintf("a%d", i))
	}

	summary := s.GetConversationSummary("conv-sum", 2)
	// Last 2 exchanges = 4 messages: q8,a8,q9,a9.
	if strings.Contains(summary, "q7") {
		t.Errorf("summary should only include last 2 exchanges: %s", summary)
	}
	for _, want := range []string{"User: q8", "Assistant: a8", "User: q9", "Assistant: a9"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q: %s", want, summary)
		}
	}
}

func TestFormatForContext_RespectsBudgetAndOrder(t *testing.T) {
	s := newTestStore(t)

	if got := s.FormatForContext("empty", 100); got != "" {
		t.Errorf("empty conversation should format to empty string, got %q", got)
	}

	_ = s.AddMessage("conv-ctx", domain.RoleUser, strings.Repeat("x", 400))
	_ = s.AddMessage("conv-ctx", domain.RoleUser, "recent question")
	_ = s.AddMessage("conv-ctx", domain.RoleAssistant, "recent answer")

	// Budget of 20 tokens = 80 chars: the 400-char message cannot fit.
	out := s.FormatForContext("conv-ctx", 20)
	if strings.Contains(out, "xxxx") {
		t.Errorf("oversized message should be excluded: %s", out)
	}
	qi := strings.Index(out, "recent question")
	ai := strings.Index(out, "recent answer")
	if qi == -1 || ai == -1 {
		t.Fatalf("recent messages missing from context: %s", out)
	}
	if qi > ai {
		t.Error("context must preserve chronological order")
	}
}

func TestListConversations(t *testing.T) {
	s := newTestStore(t)
	_ = s.AddMessage("b-conv", domain.RoleUser, "1")
	_ = s.AddMessage("a-conv", domain.RoleUser, "2")

	ids := s.ListConversations()
	if len(ids) != 2 || ids[0] != "a-conv" || ids[1] != "b-conv" {
		t.Errorf("expected sorted ids [a-conv b-conv], got %v", ids)
	}
}

func TestAddMessage_ConcurrentSameConversation(t *testing.T) {
	s := newTestStore(t)
	const n = 20

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.AddMessage("conv-race", domain.RoleUser, fmt.Sprintf("m%d", i))
		}(i)
	}
	wg.Wait()

	if msgs := s.GetConversation("conv-race"); len(msgs) != n {
		t.Errorf("expected %d messages after concurrent appends, got %d", n, len(msgs))
	}
}

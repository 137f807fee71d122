// Package memory stores conversation history as one JSON file per
// conversation, fronted by an in-process cache.
package memory

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/domain"
)

const emptyConversationSummary = "No previous conversation."

// validConversationID rejects ids that could escape the storage directory
// once joined into a filename. Ids come straight from request bodies and
// URL path segments.
func validConversationID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`)
}

// Store implements domain.ConversationStore. Callers on the same conversation
// id are serialized through a per-conversation mutex, so concurrent requests
// cannot interleave the read-modify-write of the backing file.
type Store struct {
	storagePath string
	logger      *slog.Logger

	mu    sync.Mutex // guards cache and locks
	cache map[string][]domain.Message
	locks map[string]*sync.Mutex // one per conversation id
}

func NewStore(storagePath string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create conversations directory %s: %w", storagePath, err)
	}
	return &Store{
		storagePath: storagePath,
		logger:      logger,
		cache:       make(map[string][]domain.Message),
		locks:       make(map[string]*sync.Mutex),
	}, nil
}

// convLock returns the mutex that serializes access to one conversation id.
func (s *Store) convLock(conversationID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[conversationID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[conversationID] = l
	}
	return l
}

// AddMessage appends a message to a conversation, creating it on demand.
// The conversation's backing file is rewritten in full on every call.
func (s *Store) AddMessage(conversationID, role string, content any) error {
	if !validConversationID(conversationID) {
		return fmt.Errorf("invalid conversation id %q", conversationID)
	}
	if !domain.ValidRole(role) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidRole, role)
	}

	l := s.convLock(conversationID)
	l.Lock()
	defer l.Unlock()

	msgs := s.loadLocked(conversationID)
	msgs = append(msgs, domain.NewMessage(role, content))

	s.mu.Lock()
	s.cache[conversationID] = msgs
	s.mu.Unlock()

	if err := s.saveLocked(conversationID, msgs); err != nil {
		// Cache already holds the message; disk write failure is logged,
		// the append itself still succeeds for the caller.
		s.logger.Error("cannot save conversation", "conversation", conversationID, "err", err)
	}
	return nil
}

// GetConversation returns the messages of a conversation in append order.
// Unknown, malformed or unreadable ids yield an empty slice, never an error.
func (s *Store) GetConversation(conversationID string) []domain.Message {
	if !validConversationID(conversationID) {
		return nil
	}
	l := s.convLock(conversationID)
	l.Lock()
	defer l.Unlock()

	msgs := s.loadLocked(conversationID)
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out
}

// loadLocked returns the cached messages, falling back to the backing file.
// The caller must hold the conversation lock.
func (s *Store) loadLocked(conversationID string) []domain.Message {
	s.mu.Lock()
	cached, ok := s.cache[conversationID]
	s.mu.Unlock()
	if ok {
		return cached
	}

	data, err := os.ReadFile(s.filePath(conversationID))
	if err != nil {
		return nil
	}
	var msgs []domain.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		// Corrupt file is treated as "no conversation".
		s.logger.Warn("cannot parse conversation file", "conversation", conversationID, "err", err)
		return nil
	}

	s.mu.Lock()
	s.cache[conversationID] = msgs
	s.mu.Unlock()
	return msgs
}

func (s *Store) saveLocked(conversationID string, msgs []domain.Message) error {
	data, err := json.MarshalIndent(msgs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	return os.WriteFile(s.filePath(conversationID), data, 0o644)
}

// GetConversationSummary formats the most recent maxLength exchanges as
// alternating "User:"/"Assistant:" lines.
func (s *Store) GetConversationSummary(conversationID string, maxLength int) string {
	msgs := s.GetConversation(conversationID)
	if len(msgs) == 0 {
		return emptyConversationSummary
	}

	recent := msgs
	if limit := maxLength * 2; len(msgs) > limit {
		recent = msgs[len(msgs)-limit:]
	}

	var sb strings.Builder
	sb.WriteString("Previous conversation:\n\n")
	for _, msg := range recent {
		speaker := "Assistant"
		if msg.Role == domain.RoleUser {
			speaker = "User"
		}
		fmt.Fprintf(&sb, "%s: %s\n\n", speaker, msg.Content)
	}
	return sb.String()
}

// FormatForContext builds a history string bounded by an approximate token
// budget (4 chars per token), walking from the most recent message backward
// and keeping chronological order in the output.
func (s *Store) FormatForContext(conversationID string, maxTokens int) string {
	msgs := s.GetConversation(conversationID)
	if len(msgs) == 0 {
		return ""
	}

	budget := maxTokens * 4
	totalChars := 0
	var include []string

	for i := len(msgs) - 1; i >= 0; i-- {
		msg := msgs[i]
		line := fmt.Sprintf("%s: %s\n\n", titleRole(msg.Role), msg.Content)
		if totalChars+len(line) > budget {
			break
		}
		include = append([]string{line}, include...)
		totalChars += len(line)
	}

	return "# Previous Conversation:\n\n" + strings.Join(include, "")
}

// DeleteConversation removes the cache entry and the backing file.
// Returns false when neither existed.
func (s *Store) DeleteConversation(conversationID string) bool {
	if !validConversationID(conversationID) {
		return false
	}
	l := s.convLock(conversationID)
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	_, cached := s.cache[conversationID]
	delete(s.cache, conversationID)
	s.mu.Unlock()

	path := s.filePath(conversationID)
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			s.logger.Error("cannot delete conversation file", "conversation", conversationID, "err", err)
			return false
		}
		return true
	}
	return cached
}

// ListConversations returns the ids of all stored conversations, sorted.
func (s *Store) ListConversations() []string {
	seen := make(map[string]bool)

	entries, err := os.ReadDir(s.storagePath)
	if err == nil {
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasSuffix(name, ".json") {
				continue
			}
			seen[strings.TrimSuffix(name, ".json")] = true
		}
	}

	s.mu.Lock()
	for id := range s.cache {
		seen[id] = true
	}
	s.mu.Unlock()

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) filePath(conversationID string) string {
	return filepath.Join(s.storagePath, conversationID+".json")
}

func titleRole(role string) string {
	if role == "" {
		return role
	}
	return strings.ToUpper(role[:1]) + role[1:]
}

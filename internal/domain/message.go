package domain

import (
	"errors"
	"fmt"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrInvalidRole is returned when a message role is neither "user" nor "assistant".
var ErrInvalidRole = errors.New("role must be either 'user' or 'assistant'")

// Message is a single turn in a conversation. Immutable once stored.
type Message struct {
	Role      string `json:"role"`      // user | assistant
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"` // ISO-8601
}

// ValidRole reports whether role is one of the two accepted message roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}

// Stringify coerces arbitrary content to a string representation.
// Non-string inputs are converted best-effort, never rejected.
func Stringify(content any) string {
	switch v := content.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// NewMessage builds a message stamped with the current time.
func NewMessage(role string, content any) Message {
	return Message{
		Role:      role,
		Content:   Stringify(content),
		Timestamp: time.Now().Format(time.RFC3339Nano),
	}
}

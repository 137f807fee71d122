package domain

// ConversationStore handles persistent storage of conversation history.
// Implementations own the message list exclusively; callers only ever see
// request-scoped copies.
type ConversationStore interface {
	AddMessage(conversationID, role string, content any) error
	GetConversation(conversationID string) []Message
	GetConversationSummary(conversationID string, maxLength int) string
	FormatForContext(conversationID string, maxTokens int) string
	DeleteConversation(conversationID string) bool
	ListConversations() []string
}

// AnalyticsEvent records one query for usage analytics. Append-only.
type AnalyticsEvent struct {
	Query          string   `json:"query"`
	UserID         string   `json:"user_id"`
	ConversationID *string  `json:"conversation_id"`
	Timestamp      string   `json:"timestamp"`
	Date           string   `json:"date"` // YYYY-MM-DD
	Time           string   `json:"time"` // HH:MM:SS
	ResponseTime   *float64 `json:"response_time"` // seconds, nil when not measured
}

// QueryCount pairs a normalized query string with how often it was seen.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// AnalyticsSummary is the aggregate view served by the admin API.
type AnalyticsSummary struct {
	TotalQueries    int              `json:"total_queries"`
	UniqueQueries   int              `json:"unique_queries"`
	UniqueUsers     int              `json:"unique_users"`
	AvgResponseTime float64          `json:"avg_response_time"`
	RecentQueries   []AnalyticsEvent `json:"recent_queries"`
}

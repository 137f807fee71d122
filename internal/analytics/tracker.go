// Package analytics records query events for the admin API. Events are kept
// in memory and mirrored to an aggregate JSON file plus one file per day.
package analytics

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/domain"
)

// Tracker records query events. All operations are safe for concurrent use;
// writes to the backing files happen under the tracker mutex so two requests
// cannot interleave the rewrite.
type Tracker struct {
	storagePath string
	logger      *slog.Logger
	now         func() time.Time // overridable in tests
	disabled    bool

	mu     sync.Mutex
	events []domain.AnalyticsEvent
}

func NewTracker(storagePath string, logger *slog.Logger) (*Tracker, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create analytics directory %s: %w", storagePath, err)
	}

	t := &Tracker{
		storagePath: storagePath,
		logger:      logger,
		now:         time.Now,
	}
	t.events = t.loadEvents()
	return t, nil
}

// Disable turns the tracker into a no-op recorder. Summaries still serve
// previously persisted events.
func (t *Tracker) Disable() {
	t.disabled = true
}

func (t *Tracker) aggregateFile() string {
	return filepath.Join(t.storagePath, "queries.json")
}

func (t *Tracker) dailyFile(date string) string {
	return filepath.Join(t.storagePath, "queries_"+date+".json")
}

// loadEvents reads the aggregate file; unreadable or corrupt files read as empty.
func (t *Tracker) loadEvents() []domain.AnalyticsEvent {
	data, err := os.ReadFile(t.aggregateFile())
	if err != nil {
		return nil
	}
	var events []domain.AnalyticsEvent
	if err := json.Unmarshal(data, &events); err != nil {
		t.logger.Warn("cannot parse analytics file, starting fresh", "err", err)
		return nil
	}
	return events
}

// TrackQuery records one query event. It always succeeds from the caller's
// point of view; file write failures are logged, never raised.
func (t *Tracker) TrackQuery(query, userID string, conversationID *string, responseTime *float64) bool {
	if t.disabled {
		return false
	}
	if userID == "" {
		userID = "anonymous"
	}
	now := t.now()
	event := domain.AnalyticsEvent{
		Query:          query,
		UserID:         userID,
		ConversationID: conversationID,
		Timestamp:      now.Format(time.RFC3339Nano),
		Date:           now.Format("2006-01-02"),
		Time:           now.Format("15:04:05"),
		ResponseTime:   responseTime,
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.events = append(t.events, event)

	if err := t.writeJSON(t.aggregateFile(), t.events); err != nil {
		t.logger.Error("cannot save analytics file", "err", err)
	}
	t.appendDaily(event)
	return true
}

// appendDaily rewrites the per-day file with the new event included.
func (t *Tracker) appendDaily(event domain.AnalyticsEvent) {
	path := t.dailyFile(event.Date)

	var daily []domain.AnalyticsEvent
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &daily); err != nil {
			t.logger.Warn("cannot parse daily analytics file", "path", path, "err", err)
			daily = nil
		}
	}
	daily = append(daily, event)

	if err := t.writeJSON(path, daily); err != nil {
		t.logger.Error("cannot save daily analytics file", "path", path, "err", err)
	}
}

func (t *Tracker) writeJSON(path string, events []domain.AnalyticsEvent) error {
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// GetRecentQueries returns the last limit events in insertion order.
func (t *Tracker) GetRecentQueries(limit int) []domain.AnalyticsEvent {
	t.mu.Lock()
	defer t.mu.Unlock()

	start := 0
	if len(t.events) > limit {
		start = len(t.events) - limit
	}
	out := make([]domain.AnalyticsEvent, len(t.events)-start)
	copy(out, t.events[start:])
	return out
}

// GetPopularQueries groups queries case-insensitively and returns the top
// limit entries by descending count. Ties break by ascending query string so
// the ordering is deterministic.
func (t *Tracker) GetPopularQueries(limit int) []domain.QueryCount {
	t.mu.Lock()
	counts := make(map[string]int)
	for _, e := range t.events {
		counts[strings.ToLower(e.Query)]++
	}
	t.mu.Unlock()

	ranked := make([]domain.QueryCount, 0, len(counts))
	for q, c := range counts {
		ranked = append(ranked, domain.QueryCount{Query: q, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Query < ranked[j].Query
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// GetSummary computes the aggregate analytics view. The average response time
// only counts events that carry one; it is 0 when none do.
func (t *Tracker) GetSummary() domain.AnalyticsSummary {
	t.mu.Lock()
	events := t.events
	total := len(events)

	uniqueQueries := make(map[string]bool)
	uniqueUsers := make(map[string]bool)
	var rtSum float64
	var rtCount int
	for _, e := range events {
		uniqueQueries[strings.ToLower(e.Query)] = true
		uniqueUsers[e.UserID] = true
		if e.ResponseTime != nil {
			rtSum += *e.ResponseTime
			rtCount++
		}
	}
	t.mu.Unlock()

	var avg float64
	if rtCount > 0 {
		avg = rtSum / float64(rtCount)
	}

	return domain.AnalyticsSummary{
		TotalQueries:    total,
		UniqueQueries:   len(uniqueQueries),
		UniqueUsers:     len(uniqueUsers),
		AvgResponseTime: avg,
		RecentQueries:   t.GetRecentQueries(5),
	}
}

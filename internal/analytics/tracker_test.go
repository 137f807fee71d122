package analytics

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	tr, err := NewTracker(t.TempDir(), slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	return tr
}

func TestTrackQueryAppends(t *testing.T) {
	tr := newTestTracker(t)

	rt := 1.5
	if ok := tr.TrackQuery("what projects have you built?", "u1", nil, &rt); !ok {
		t.Fatal("TrackQuery returned false")
	}
	tr.TrackQuery("tell me about yourself", "", nil, nil)

	recent := tr.GetRecentQueries(10)
	if len(recent) != 2 {
		t.Fatalf("got %d events, want 2", len(recent))
	}
	if recent[0].Query != "what projects have you built?" {
		t.Errorf("events out of order: %q", recent[0].Query)
	}
	if recent[1].UserID != "anonymous" {
		t.Errorf("empty user id should default to anonymous, got %q", recent[1].UserID)
	}
	if recent[0].ResponseTime == nil || *recent[0].ResponseTime != 1.5 {
		t.Errorf("response time not preserved: %v", recent[0].ResponseTime)
	}
	if recent[1].ResponseTime != nil {
		t.Errorf("nil response time should stay nil")
	}
}

func TestTrackQueryWritesFiles(t *testing.T) {
	dir := t.TempDir()
	tr, err := NewTracker(dir, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	tr.now = func() time.Time {
		return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	}

	tr.TrackQuery("hello", "u1", nil, nil)

	for _, name := range []string{"queries.json", "queries_2025-03-14.json"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		var events []map[string]any
		if err := json.Unmarshal(data, &events); err != nil {
			t.Fatalf("parsing %s: %v", name, err)
		}
		if len(events) != 1 {
			t.Fatalf("%s has %d events, want 1", name, len(events))
		}
		if events[0]["date"] != "2025-03-14" || events[0]["time"] != "09:26:53" {
			t.Errorf("%s date/time fields wrong: %v", name, events[0])
		}
	}
}

func TestEventsSurviveRestart(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	tr, err := NewTracker(dir, logger)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	tr.TrackQuery("persisted", "u1", nil, nil)

	tr2, err := NewTracker(dir, logger)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	recent := tr2.GetRecentQueries(10)
	if len(recent) != 1 || recent[0].Query != "persisted" {
		t.Fatalf("events not reloaded: %v", recent)
	}
}

func TestCorruptFileStartsFresh(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "queries.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	tr, err := NewTracker(dir, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	if got := len(tr.GetRecentQueries(10)); got != 0 {
		t.Fatalf("corrupt file should read as empty, got %d events", got)
	}
}

func TestGetRecentQueriesLimit(t *testing.T) {
	tr := newTestTracker(t)
	for _, q := range []string{"a", "b", "c", "d", "e"} {
		tr.TrackQuery(q, "u1", nil, nil)
	}

	recent := tr.GetRecentQueries(3)
	if len(recent) != 3 {
		t.Fatalf("got %d events, want 3", len(recent))
	}
	if recent[0].Query != "c" || recent[2].Query != "e" {
		t.Errorf("want last three in order, got %q..%q", recent[0].Query, recent[2].Query)
	}
}

func TestGetPopularQueries(t *testing.T) {
	tr := newTestTracker(t)
	tr.TrackQuery("What projects?", "u1", nil, nil)
	tr.TrackQuery("what projects?", "u2", nil, nil)
	tr.TrackQuery("who are you", "u1", nil, nil)
	tr.TrackQuery("any AI work", "u1", nil, nil)

	popular := tr.GetPopularQueries(2)
	if len(popular) != 2 {
		t.Fatalf("got %d entries, want 2", len(popular))
	}
	if popular[0].Query != "what projects?" || popular[0].Count != 2 {
		t.Errorf("case-insensitive grouping failed: %+v", popular[0])
	}
	// Single-count tie breaks by ascending query string.
	if popular[1].Query != "any ai work" {
		t.Errorf("tie-break wrong: %+v", popular[1])
	}
}

func TestGetSummary(t *testing.T) {
	tr := newTestTracker(t)

	sum := tr.GetSummary()
	if sum.TotalQueries != 0 || sum.AvgResponseTime != 0 {
		t.Fatalf("empty tracker summary wrong: %+v", sum)
	}

	rt1, rt2 := 1.0, 3.0
	tr.TrackQuery("q1", "u1", nil, &rt1)
	tr.TrackQuery("Q1", "u2", nil, &rt2)
	tr.TrackQuery("q2", "u1", nil, nil)

	sum = tr.GetSummary()
	if sum.TotalQueries != 3 {
		t.Errorf("TotalQueries = %d, want 3", sum.TotalQueries)
	}
	if sum.UniqueQueries != 2 {
		t.Errorf("UniqueQueries = %d, want 2 (case-insensitive)", sum.UniqueQueries)
	}
	if sum.UniqueUsers != 2 {
		t.Errorf("UniqueUsers = %d, want 2", sum.UniqueUsers)
	}
	// Average ignores events with no measured response time.
	if sum.AvgResponseTime != 2.0 {
		t.Errorf("AvgResponseTime = %v, want 2.0", sum.AvgResponseTime)
	}
	if len(sum.RecentQueries) != 3 {
		t.Errorf("RecentQueries has %d entries, want 3", len(sum.RecentQueries))
	}
}

func TestConcurrentTracking(t *testing.T) {
	tr := newTestTracker(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.TrackQuery("concurrent", "u1", nil, nil)
		}()
	}
	wg.Wait()

	if got := tr.GetSummary().TotalQueries; got != 20 {
		t.Fatalf("lost events under concurrency: got %d, want 20", got)
	}
}

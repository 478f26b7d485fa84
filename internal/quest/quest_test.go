package quest

import (
	"errors"
	"testing"
	"time"
)

func newTestQuest(t *testing.T, id, title string, deps ...string) *Quest {
	t.Helper()
	q, err := NewQuest(id, title, "", deps)
	if err != nil {
		t.Fatalf("NewQuest(%s) failed: %v", id, err)
	}
	return q
}

func TestNewQuest_Defaults(t *testing.T) {
	q, err := NewQuest("q1", "First Quest", "a description", nil)
	if err != nil {
		t.Fatalf("NewQuest failed: %v", err)
	}

	if q.Status != StatusNotStarted {
		t.Errorf("Status mismatch: got %s, want %s", q.Status, StatusNotStarted)
	}
	if q.Type != TypeSide {
		t.Errorf("Type mismatch: got %s, want %s", q.Type, TypeSide)
	}
	if len(q.Dependencies) != 0 {
		t.Errorf("Dependencies should be empty, got %v", q.Dependencies)
	}
	if q.StartTime != nil {
		t.Error("StartTime should be nil for a new quest")
	}
	if q.Rewards == nil || q.Consequences == nil || q.FailureConditions == nil {
		t.Error("Metadata lists should be initialized, not nil")
	}
}

func TestNewQuest_Validation(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		title string
		deps  []string
	}{
		{"empty id", "", "Title", nil},
		{"empty title", "q1", "", nil},
		{"empty dependency", "q1", "Title", []string{""}},
		{"empty dependency among valid", "q1", "Title", []string{"q0", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewQuest(tt.id, tt.title, "", tt.deps)
			if err == nil {
				t.Fatal("expected an error, got nil")
			}
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("error should be ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestNewQuest_DeduplicatesDependencies(t *testing.T) {
	q := newTestQuest(t, "q1", "Quest", "a", "b", "a", "a")

	if len(q.Dependencies) != 2 {
		t.Errorf("Dependencies should be deduplicated to 2, got %d", len(q.Dependencies))
	}
	deps := q.DependencyList()
	if deps[0] != "a" || deps[1] != "b" {
		t.Errorf("DependencyList mismatch: got %v, want [a b]", deps)
	}
}

func TestParseStatus(t *testing.T) {
	valid := []string{"not_started", "in_progress", "completed", "failed"}
	for _, s := range valid {
		if _, err := ParseStatus(s); err != nil {
			t.Errorf("ParseStatus(%s) should succeed, got %v", s, err)
		}
	}

	for _, s := range []string{"", "done", "NOT_STARTED", "pending"} {
		_, err := ParseStatus(s)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("ParseStatus(%q) should fail with ErrInvalidArgument, got %v", s, err)
		}
	}
}

func TestParseType(t *testing.T) {
	valid := []string{"main", "side", "optional", "repeatable", "timed"}
	for _, s := range valid {
		if _, err := ParseType(s); err != nil {
			t.Errorf("ParseType(%s) should succeed, got %v", s, err)
		}
	}

	for _, s := range []string{"", "daily", "MAIN"} {
		_, err := ParseType(s)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("ParseType(%q) should fail with ErrInvalidArgument, got %v", s, err)
		}
	}
}

func TestIsUnlocked(t *testing.T) {
	noDeps := newTestQuest(t, "a", "A")
	if !noDeps.IsUnlocked(map[string]bool{}) {
		t.Error("quest with no dependencies should always be unlocked")
	}

	q := newTestQuest(t, "c", "C", "a", "b")
	if q.IsUnlocked(map[string]bool{"a": true}) {
		t.Error("quest should be locked while a dependency is incomplete")
	}
	if !q.IsUnlocked(map[string]bool{"a": true, "b": true}) {
		t.Error("quest should be unlocked once all dependencies are completed")
	}
}

func TestUpdateStatus(t *testing.T) {
	q := newTestQuest(t, "q1", "Quest")

	if err := q.UpdateStatus(StatusFailed); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if q.Status != StatusFailed {
		t.Errorf("Status mismatch: got %s, want %s", q.Status, StatusFailed)
	}

	err := q.UpdateStatus(Status("bogus"))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("unknown status should be rejected, got %v", err)
	}
	if q.Status != StatusFailed {
		t.Error("rejected update should not change the status")
	}
}

func TestClone_Independent(t *testing.T) {
	q := newTestQuest(t, "q1", "Quest", "a")
	q.Rewards = []map[string]any{{"gold": 10}}
	now := time.Now()
	q.SetStartTime(now)

	clone := q.Clone()
	clone.Dependencies["b"] = true
	clone.Rewards[0]["gold"] = 999
	clone.ClearStartTime()

	if len(q.Dependencies) != 1 {
		t.Error("mutating a clone's dependencies should not affect the original")
	}
	if q.Rewards[0]["gold"] != 10 {
		t.Error("mutating a clone's metadata should not affect the original")
	}
	if q.StartTime == nil {
		t.Error("clearing a clone's start time should not affect the original")
	}
}

func TestRecordRoundTrip(t *testing.T) {
	q := newTestQuest(t, "q1", "First Quest", "dep2", "dep1")
	q.Description = "save the village"
	q.Type = TypeTimed
	q.Status = StatusInProgress
	q.Rewards = []map[string]any{{"gold": 100, "item": "sword"}}
	q.Consequences = []map[string]any{{"reputation": -5}}
	q.FailureConditions = []map[string]any{{"time_limit": 3600}}
	started := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	q.SetStartTime(started)

	rec := q.ToRecord()

	if rec.Status != "in_progress" || rec.QuestType != "timed" {
		t.Errorf("record wire values mismatch: status=%s type=%s", rec.Status, rec.QuestType)
	}
	if len(rec.Dependencies) != 2 || rec.Dependencies[0] != "dep1" || rec.Dependencies[1] != "dep2" {
		t.Errorf("record dependencies should be sorted: got %v", rec.Dependencies)
	}
	if rec.StartTime == nil {
		t.Fatal("record start_time should be set")
	}

	restored, err := FromRecord(rec)
	if err != nil {
		t.Fatalf("FromRecord failed: %v", err)
	}

	if restored.ID != q.ID || restored.Title != q.Title || restored.Description != q.Description {
		t.Error("identity fields did not survive the round trip")
	}
	if restored.Status != q.Status || restored.Type != q.Type {
		t.Errorf("lifecycle fields mismatch: got %s/%s, want %s/%s",
			restored.Status, restored.Type, q.Status, q.Type)
	}
	if !restored.Dependencies["dep1"] || !restored.Dependencies["dep2"] || len(restored.Dependencies) != 2 {
		t.Errorf("dependencies mismatch: got %v", restored.Dependencies)
	}
	if restored.StartTime == nil || !restored.StartTime.Equal(started) {
		t.Errorf("start_time mismatch: got %v, want %v", restored.StartTime, started)
	}
	if len(restored.Rewards) != 1 || len(restored.Consequences) != 1 || len(restored.FailureConditions) != 1 {
		t.Error("metadata lists did not survive the round trip")
	}
}

func TestRecordRoundTrip_EmptyOptionals(t *testing.T) {
	q := newTestQuest(t, "bare", "Bare Quest")

	restored, err := FromRecord(q.ToRecord())
	if err != nil {
		t.Fatalf("FromRecord failed: %v", err)
	}
	if len(restored.Dependencies) != 0 {
		t.Errorf("dependencies should stay empty, got %v", restored.Dependencies)
	}
	if restored.StartTime != nil {
		t.Error("start_time should stay nil")
	}
}

func TestFromRecord_Defaults(t *testing.T) {
	q, err := FromRecord(Record{ID: "q1", Title: "Quest"})
	if err != nil {
		t.Fatalf("FromRecord failed: %v", err)
	}

	if q.Status != StatusNotStarted {
		t.Errorf("absent status should default to %s, got %s", StatusNotStarted, q.Status)
	}
	if q.Type != TypeSide {
		t.Errorf("absent quest_type should default to %s, got %s", TypeSide, q.Type)
	}
	if q.Rewards == nil {
		t.Error("absent rewards should default to an empty list")
	}
}

func TestFromRecord_RejectsBadFields(t *testing.T) {
	badTime := "not-a-timestamp"
	tests := []struct {
		name string
		rec  Record
	}{
		{"unknown status", Record{ID: "q1", Title: "Q", Status: "pending"}},
		{"unknown type", Record{ID: "q1", Title: "Q", QuestType: "weekly"}},
		{"bad start_time", Record{ID: "q1", Title: "Q", StartTime: &badTime}},
		{"empty id", Record{Title: "Q"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromRecord(tt.rec)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

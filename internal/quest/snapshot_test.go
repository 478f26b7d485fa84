package quest

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSnapshotFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quests.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("could not write test file: %v", err)
	}
	return path
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	m := NewManager()
	addTestQuest(t, m, "intro", "Introduction")
	addTestQuest(t, m, "hunt", "The Hunt", "intro")
	timed := newTestQuest(t, "race", "The Race")
	timed.Type = TypeTimed
	if err := m.Add(timed); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := m.Start("intro"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := m.Complete("intro"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if err := m.Start("race"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "quests.json")
	if err := m.SaveFile(path); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	restored := NewManager()
	count, err := restored.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Should have loaded 3 quests, got %d", count)
	}

	intro, _ := restored.Get("intro")
	if intro.Status != StatusCompleted {
		t.Errorf("intro status mismatch: got %s, want %s", intro.Status, StatusCompleted)
	}
	race, _ := restored.Get("race")
	if race.Status != StatusInProgress {
		t.Errorf("race status mismatch: got %s, want %s", race.Status, StatusInProgress)
	}
	if race.StartTime == nil {
		t.Error("race start time should survive the round trip")
	}
	if unlocked, _ := restored.Unlocked("hunt"); !unlocked {
		t.Error("hunt should be unlocked, its dependency loaded as completed")
	}
}

func TestSaveFile_SortedOutput(t *testing.T) {
	m := NewManager()
	addTestQuest(t, m, "zebra", "Zebra")
	addTestQuest(t, m, "apple", "Apple")

	path := filepath.Join(t.TempDir(), "quests.json")
	if err := m.SaveFile(path); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("could not read saved file: %v", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("saved file is not a JSON list of quests: %v", err)
	}
	if len(records) != 2 || records[0].ID != "apple" || records[1].ID != "zebra" {
		t.Errorf("records should be sorted by ID: got %v", records)
	}
}

func TestSaveFile_CreatesDirectory(t *testing.T) {
	m := NewManager()
	addTestQuest(t, m, "q1", "Quest")

	path := filepath.Join(t.TempDir(), "deep", "nested", "quests.json")
	if err := m.SaveFile(path); err != nil {
		t.Fatalf("SaveFile should create missing directories, got %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("saved file should exist: %v", err)
	}
}

func TestLoadFile_ReplacesState(t *testing.T) {
	path := writeSnapshotFile(t, `[{"id": "new", "title": "New Quest"}]`)

	m := NewManager()
	addTestQuest(t, m, "old", "Old Quest")
	if err := m.Start("old"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if _, err := m.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if m.Count() != 1 {
		t.Errorf("load should replace prior state, got %d quests", m.Count())
	}
	if _, ok := m.Get("old"); ok {
		t.Error("old quest should be gone after load")
	}
	if _, ok := m.Get("new"); !ok {
		t.Error("new quest should be present after load")
	}
}

func TestLoadFile_PrunesGhostDependencies(t *testing.T) {
	path := writeSnapshotFile(t, `[
		{"id": "survivor", "title": "Survivor", "dependencies": ["ghost", "anchor"]},
		{"id": "anchor", "title": "Anchor", "status": "completed"}
	]`)

	m := NewManager()
	count, err := m.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("Should have loaded 2 quests, got %d", count)
	}

	q, _ := m.Get("survivor")
	if q.Dependencies["ghost"] {
		t.Error("dependency on a quest missing from the file should be pruned")
	}
	if !q.Dependencies["anchor"] {
		t.Error("dependency on a loaded quest should be kept")
	}
	if unlocked, _ := m.Unlocked("survivor"); !unlocked {
		t.Error("survivor should be unlocked once the ghost edge is pruned")
	}
}

func TestLoadFile_DuplicateIDsFirstWins(t *testing.T) {
	path := writeSnapshotFile(t, `[
		{"id": "q1", "title": "First Instance"},
		{"id": "q1", "title": "Second Instance"}
	]`)

	m := NewManager()
	count, err := m.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if count != 1 {
		t.Errorf("duplicates should collapse to 1 quest, got %d", count)
	}
	q, _ := m.Get("q1")
	if q.Title != "First Instance" {
		t.Errorf("first instance should win: got %s", q.Title)
	}
}

func TestLoadFile_SkipsMalformedRecords(t *testing.T) {
	path := writeSnapshotFile(t, `[
		{"id": "good", "title": "Good Quest"},
		42,
		"not a quest",
		{"id": "bad_status", "title": "Bad", "status": "pending"},
		{"title": "No ID"}
	]`)

	m := NewManager()
	count, err := m.LoadFile(path)
	if err != nil {
		t.Fatalf("malformed records should be skipped, not fatal: %v", err)
	}
	if count != 1 {
		t.Errorf("Should have loaded 1 quest, got %d", count)
	}
	if _, ok := m.Get("good"); !ok {
		t.Error("the valid record should have loaded")
	}
}

func TestLoadFile_RejectsNonList(t *testing.T) {
	path := writeSnapshotFile(t, `{"id": "q1", "title": "Quest"}`)

	m := NewManager()
	addTestQuest(t, m, "keep", "Keep Me")

	_, err := m.LoadFile(path)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("non-list file should fail with ErrInvalidArgument, got %v", err)
	}
	// A failed load leaves existing state untouched.
	if _, ok := m.Get("keep"); !ok {
		t.Error("failed load should not discard existing quests")
	}
}

func TestLoadFile_RejectsNullTopLevel(t *testing.T) {
	path := writeSnapshotFile(t, `null`)

	m := NewManager()
	addTestQuest(t, m, "keep", "Keep Me")

	_, err := m.LoadFile(path)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("null file should fail with ErrInvalidArgument, got %v", err)
	}
	if _, ok := m.Get("keep"); !ok {
		t.Error("failed load should not discard existing quests")
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	m := NewManager()
	_, err := m.LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("loading a missing file should fail")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should report the missing file, got %v", err)
	}
}

func TestLoadFile_MalformedJSON(t *testing.T) {
	path := writeSnapshotFile(t, `[{"id": "q1"`)

	m := NewManager()
	if _, err := m.LoadFile(path); err == nil {
		t.Error("truncated JSON should fail to load")
	}
}

func TestLoadFile_StartTimeParsed(t *testing.T) {
	path := writeSnapshotFile(t, `[
		{"id": "race", "title": "Race", "quest_type": "timed",
		 "status": "in_progress", "start_time": "2025-03-14T09:26:53Z"}
	]`)

	m := NewManager()
	if _, err := m.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	q, _ := m.Get("race")
	if q.StartTime == nil {
		t.Fatal("start_time should be parsed from the file")
	}
	want := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	if !q.StartTime.Equal(want) {
		t.Errorf("start_time mismatch: got %v, want %v", q.StartTime, want)
	}
}

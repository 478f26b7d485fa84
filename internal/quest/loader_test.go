package quest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCatalogFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("could not write catalog file: %v", err)
	}
	return path
}

const sampleCatalog = `quests:
  gather_wood:
    title: Gather Wood
    description: Chop some trees at the forest edge.
  build_house:
    title: Build House
    dependencies:
      - gather_wood
    quest_type: main
    rewards:
      - gold: 50
`

func TestLoadCatalogFile(t *testing.T) {
	path := writeCatalogFile(t, t.TempDir(), "quests.yaml", sampleCatalog)

	catalog, err := LoadCatalogFile(path)
	if err != nil {
		t.Fatalf("LoadCatalogFile failed: %v", err)
	}

	if len(catalog.Quests) != 2 {
		t.Fatalf("Should have 2 catalog entries, got %d", len(catalog.Quests))
	}
	entry, ok := catalog.Quests["build_house"]
	if !ok {
		t.Fatal("build_house should be in the catalog")
	}
	if entry.Title != "Build House" {
		t.Errorf("title mismatch: got %s, want Build House", entry.Title)
	}
	if len(entry.Dependencies) != 1 || entry.Dependencies[0] != "gather_wood" {
		t.Errorf("dependencies mismatch: got %v", entry.Dependencies)
	}
	if entry.QuestType != "main" {
		t.Errorf("quest_type mismatch: got %s, want main", entry.QuestType)
	}
	if len(entry.Rewards) != 1 {
		t.Errorf("rewards mismatch: got %v", entry.Rewards)
	}
}

func TestLoadCatalogFile_Missing(t *testing.T) {
	_, err := LoadCatalogFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("loading a missing catalog file should fail")
	}
}

func TestLoadCatalogFile_BadYAML(t *testing.T) {
	path := writeCatalogFile(t, t.TempDir(), "broken.yaml", "quests: [not a map")
	if _, err := LoadCatalogFile(path); err == nil {
		t.Error("malformed YAML should fail to parse")
	}
}

func TestLoadCatalog_IntoManager(t *testing.T) {
	path := writeCatalogFile(t, t.TempDir(), "quests.yaml", sampleCatalog)

	m := NewManager()
	count, err := m.LoadCatalogFromFile(path)
	if err != nil {
		t.Fatalf("LoadCatalogFromFile failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Should have loaded 2 quests, got %d", count)
	}

	q, ok := m.Get("build_house")
	if !ok {
		t.Fatal("build_house should be in the manager")
	}
	if q.Status != StatusNotStarted {
		t.Errorf("catalog quests should start as %s, got %s", StatusNotStarted, q.Status)
	}
	if q.Type != TypeMain {
		t.Errorf("quest type mismatch: got %s, want %s", q.Type, TypeMain)
	}

	// The dependency gate holds for catalog-loaded quests.
	if err := m.Start("build_house"); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("build_house should be locked, got %v", err)
	}
}

func TestLoadCatalog_InvalidEntry(t *testing.T) {
	content := `quests:
  broken:
    title: Broken
    quest_type: weekly
`
	path := writeCatalogFile(t, t.TempDir(), "quests.yaml", content)

	m := NewManager()
	_, err := m.LoadCatalogFromFile(path)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("unknown quest_type should fail with ErrInvalidArgument, got %v", err)
	}
}

func TestLoadCatalog_MissingTitle(t *testing.T) {
	content := `quests:
  untitled:
    description: has no title
`
	path := writeCatalogFile(t, t.TempDir(), "quests.yaml", content)

	m := NewManager()
	if _, err := m.LoadCatalogFromFile(path); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("entry without a title should fail with ErrInvalidArgument, got %v", err)
	}
}

func TestLoadCatalogDirectory(t *testing.T) {
	dir := t.TempDir()
	writeCatalogFile(t, dir, "one.yaml", "quests:\n  a:\n    title: A\n")
	writeCatalogFile(t, dir, "two.yml", "quests:\n  b:\n    title: B\n")
	writeCatalogFile(t, dir, "ignored.txt", "not yaml")

	catalog, err := LoadCatalogDirectory(dir)
	if err != nil {
		t.Fatalf("LoadCatalogDirectory failed: %v", err)
	}
	if len(catalog.Quests) != 2 {
		t.Errorf("Should have merged 2 entries, got %d", len(catalog.Quests))
	}
}

func TestLoadCatalogDirectory_DuplicateAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeCatalogFile(t, dir, "one.yaml", "quests:\n  a:\n    title: First\n")
	writeCatalogFile(t, dir, "two.yaml", "quests:\n  a:\n    title: Second\n")

	_, err := LoadCatalogDirectory(dir)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("the same quest in two files should fail with ErrInvalidArgument, got %v", err)
	}
}

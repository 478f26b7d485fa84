package quest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/lawnchairsociety/questline/internal/logger"
)

// SaveFile writes every quest to path as a JSON array of records,
// creating missing parent directories. The file is written to a
// temporary name and renamed into place, so a failed save never leaves
// a half-written snapshot behind.
func (m *Manager) SaveFile(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.quests))
	for id := range m.quests {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, m.quests[id].ToRecord())
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("error serializing quests to JSON: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("could not create directory %s: %w", dir, err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("could not write to file %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("could not write to file %s: %w", path, err)
	}

	logger.Info("Quests saved", "path", path, "count", len(records))
	return nil
}

// LoadFile replaces the entire collection with the contents of the JSON
// snapshot at path. Malformed records and duplicate IDs are skipped with
// a warning; a top-level value that is not a list is fatal. Dependencies
// on IDs absent from the file are pruned so the loaded graph is always
// self-consistent. The completed set is rebuilt from the loaded status
// fields. Returns the number of quests loaded.
func (m *Manager) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("could not read file %s: %w", path, err)
	}

	var rawRecords []json.RawMessage
	if err := json.Unmarshal(data, &rawRecords); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return 0, fmt.Errorf("%w: expected a list of quests in %s, got %s", ErrInvalidArgument, path, typeErr.Value)
		}
		return 0, fmt.Errorf("error decoding JSON from file %s: %w", path, err)
	}
	// A top-level null unmarshals into a nil slice without error; it is
	// not a list either.
	if rawRecords == nil {
		return 0, fmt.Errorf("%w: expected a list of quests in %s, got null", ErrInvalidArgument, path)
	}

	// Build the full replacement before touching manager state so a
	// partially-parsed file is never visible to concurrent readers.
	loaded := make(map[string]*Quest, len(rawRecords))
	completed := make(map[string]bool)
	order := make([]string, 0, len(rawRecords))

	for i, raw := range rawRecords {
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			logger.Warning("Skipping malformed quest record", "path", path, "index", i, "error", err)
			continue
		}
		q, err := FromRecord(rec)
		if err != nil {
			logger.Warning("Skipping invalid quest record", "path", path, "index", i, "error", err)
			continue
		}
		if _, dup := loaded[q.ID]; dup {
			logger.Warning("Duplicate quest ID in file, using first instance", "path", path, "id", q.ID)
			continue
		}
		loaded[q.ID] = q
		order = append(order, q.ID)
	}

	for _, id := range order {
		q := loaded[id]
		for _, dep := range q.DependencyList() {
			if _, known := loaded[dep]; !known {
				logger.Warning("Pruning dependency on unknown quest", "quest", q.ID, "dependency", dep)
				q.RemoveDependency(dep)
			}
		}
		if q.Status == StatusCompleted {
			completed[q.ID] = true
		}
	}

	m.mu.Lock()
	m.quests = loaded
	m.completed = completed
	m.mu.Unlock()

	logger.Info("Quests loaded", "path", path, "count", len(loaded), "completed", len(completed))
	return len(loaded), nil
}

package quest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/questline/internal/logger"
)

// Catalog is the top-level YAML structure for seeding a manager with
// quest definitions. Keys are quest IDs.
type Catalog struct {
	Quests map[string]CatalogEntry `yaml:"quests"`
}

// CatalogEntry describes one quest definition. Catalog quests always
// enter the manager as NotStarted; runtime state lives in snapshots,
// not catalogs.
type CatalogEntry struct {
	Title             string           `yaml:"title"`
	Description       string           `yaml:"description"`
	Dependencies      []string         `yaml:"dependencies"`
	QuestType         string           `yaml:"quest_type"`
	Rewards           []map[string]any `yaml:"rewards"`
	Consequences      []map[string]any `yaml:"consequences"`
	FailureConditions []map[string]any `yaml:"failure_conditions"`
}

// LoadCatalogFile parses a quest catalog from a YAML file.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML %s: %w", path, err)
	}
	return &catalog, nil
}

// LoadCatalogDirectory parses and merges every .yaml/.yml catalog in a
// directory. A quest ID defined in two files is an error.
func LoadCatalogDirectory(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog directory: %w", err)
	}

	merged := &Catalog{Quests: make(map[string]CatalogEntry)}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		catalog, err := LoadCatalogFile(path)
		if err != nil {
			return nil, err
		}
		for id, def := range catalog.Quests {
			if _, dup := merged.Quests[id]; dup {
				return nil, fmt.Errorf("%w: quest '%s' defined in multiple catalog files", ErrInvalidArgument, id)
			}
			merged.Quests[id] = def
		}
		logger.Debug("Catalog file parsed", "path", path, "quests", len(catalog.Quests))
	}
	return merged, nil
}

// LoadCatalog adds every definition in a catalog to the manager.
// Invalid entries are a hard error: an unknown quest type or an empty
// dependency ID aborts the load rather than degrading to a default.
// Returns the number of quests added.
func (m *Manager) LoadCatalog(catalog *Catalog) (int, error) {
	ids := make([]string, 0, len(catalog.Quests))
	for id := range catalog.Quests {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	added := 0
	for _, id := range ids {
		def := catalog.Quests[id]
		q, err := FromRecord(Record{
			ID:                id,
			Title:             def.Title,
			Description:       def.Description,
			Dependencies:      def.Dependencies,
			QuestType:         def.QuestType,
			Rewards:           def.Rewards,
			Consequences:      def.Consequences,
			FailureConditions: def.FailureConditions,
		})
		if err != nil {
			return added, fmt.Errorf("catalog entry '%s': %w", id, err)
		}
		if err := m.Add(q); err != nil {
			return added, fmt.Errorf("catalog entry '%s': %w", id, err)
		}
		added++
	}

	logger.Info("Quest catalog loaded", "count", added)
	return added, nil
}

// LoadCatalogFromFile is a convenience wrapper combining LoadCatalogFile
// and LoadCatalog.
func (m *Manager) LoadCatalogFromFile(path string) (int, error) {
	catalog, err := LoadCatalogFile(path)
	if err != nil {
		return 0, err
	}
	return m.LoadCatalog(catalog)
}

package server

import (
	"time"

	"github.com/lawnchairsociety/questline/internal/logger"
)

// GetSnapshotPath returns the configured snapshot location.
func (s *Server) GetSnapshotPath() string {
	if s.dataConfig != nil && s.dataConfig.SnapshotPath != "" {
		return s.dataConfig.SnapshotPath
	}
	return "data/snapshot.json"
}

// SaveSnapshot writes the full quest state to the given path.
func (s *Server) SaveSnapshot(path string) error {
	if err := s.manager.SaveFile(path); err != nil {
		return err
	}
	logger.Debug("Saved quest snapshot", "path", path, "quests", s.manager.Count())
	return nil
}

// LoadSnapshot replaces the quest state with the contents of the given
// path. Returns the number of quests loaded.
func (s *Server) LoadSnapshot(path string) (int, error) {
	count, err := s.manager.LoadFile(path)
	if err != nil {
		return 0, err
	}
	logger.Info("Loaded quest snapshot", "path", path, "quests", count)
	return count, nil
}

// startAutoSaveTicker runs a background ticker that periodically saves
// the quest snapshot
func (s *Server) startAutoSaveTicker() {
	// Get interval from config (0 means disabled)
	intervalSeconds := 0
	if s.dataConfig != nil {
		intervalSeconds = s.dataConfig.AutosaveSeconds
	}
	if intervalSeconds <= 0 {
		logger.Info("Auto-save disabled")
		return
	}

	interval := time.Duration(intervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Auto-save enabled", "interval_seconds", intervalSeconds)

	for {
		select {
		case <-s.shutdown:
			return
		case <-ticker.C:
			s.autoSave()
		}
	}
}

// autoSave persists the current quest state to the configured path.
func (s *Server) autoSave() {
	path := s.GetSnapshotPath()
	if err := s.SaveSnapshot(path); err != nil {
		logger.Error("Auto-save failed", "path", path, "error", err)
		return
	}
	logger.Info("Auto-saved quest snapshot", "path", path, "quests", s.manager.Count())
}

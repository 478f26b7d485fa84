package api

import (
	"errors"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v3"

	"github.com/lawnchairsociety/questline/internal/logger"
	"github.com/lawnchairsociety/questline/internal/quest"
)

type createQuestRequest struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Dependencies []string `json:"dependencies"`
	QuestType    string   `json:"quest_type"`
}

type filePathRequest struct {
	Filepath string `json:"filepath"`
}

// statusForError maps quest engine errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, quest.ErrInvalidArgument):
		return 400
	case errors.Is(err, quest.ErrNotFound):
		return 404
	case errors.Is(err, quest.ErrAlreadyExists):
		return 409
	case errors.Is(err, quest.ErrPermissionDenied):
		return 403
	case errors.Is(err, quest.ErrConflict):
		return 409
	default:
		return 500
	}
}

func (s *Server) questError(c fiber.Ctx, err error) error {
	return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
}

func (s *Server) handleRoot(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Welcome to the Quest Dependency Manager API!"})
}

func (s *Server) handleCreateQuest(c fiber.Ctx) error {
	var req createQuestRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}

	q, err := quest.NewQuest(req.ID, req.Title, req.Description, req.Dependencies)
	if err != nil {
		return s.questError(c, err)
	}
	if req.QuestType != "" {
		questType, err := quest.ParseType(req.QuestType)
		if err != nil {
			return s.questError(c, err)
		}
		q.Type = questType
	}

	if err := s.manager.Add(q); err != nil {
		return s.questError(c, err)
	}

	logger.Info("Quest created via API", "quest_id", q.ID, "key", keyName(c), "request_id", requestID(c))
	return c.Status(201).JSON(q.ToRecord())
}

func (s *Server) handleListQuests(c fiber.Ctx) error {
	quests := s.manager.All()
	records := make([]quest.Record, 0, len(quests))
	for _, q := range quests {
		records = append(records, q.ToRecord())
	}
	return c.JSON(records)
}

func (s *Server) handleListAvailable(c fiber.Ctx) error {
	available := s.manager.ListAvailable()
	records := make([]quest.Record, 0, len(available))
	for _, q := range available {
		records = append(records, q.ToRecord())
	}
	return c.JSON(records)
}

func (s *Server) handleGetQuest(c fiber.Ctx) error {
	id := c.Params("id")
	q, ok := s.manager.Get(id)
	if !ok {
		return c.Status(404).JSON(fiber.Map{"error": fmt.Sprintf("Quest with ID '%s' not found.", id)})
	}
	return c.JSON(q.ToRecord())
}

func (s *Server) handleStart(c fiber.Ctx) error {
	return s.handleTransition(c, "start", s.manager.Start)
}

func (s *Server) handleComplete(c fiber.Ctx) error {
	return s.handleTransition(c, "complete", s.manager.Complete)
}

func (s *Server) handleFail(c fiber.Ctx) error {
	return s.handleTransition(c, "fail", s.manager.Fail)
}

func (s *Server) handleReset(c fiber.Ctx) error {
	return s.handleTransition(c, "reset", s.manager.Reset)
}

// handleTransition runs a lifecycle operation and returns the updated record.
func (s *Server) handleTransition(c fiber.Ctx, op string, fn func(string) error) error {
	id := c.Params("id")
	if err := fn(id); err != nil {
		return s.questError(c, err)
	}

	q, ok := s.manager.Get(id)
	if !ok {
		return c.Status(500).JSON(fiber.Map{"error": fmt.Sprintf("quest '%s' missing after %s", id, op)})
	}

	logger.Info("Quest transition via API", "quest_id", id, "operation", op, "key", keyName(c), "request_id", requestID(c))
	return c.JSON(q.ToRecord())
}

func (s *Server) handleCycles(c fiber.Ctx) error {
	hasCycles := s.manager.HasCycles()
	message := "No cyclic dependencies detected."
	if hasCycles {
		message = "Cyclic dependencies detected."
	}
	return c.JSON(fiber.Map{"has_cycles": hasCycles, "message": message})
}

func (s *Server) handleCompletionOrder(c fiber.Ctx) error {
	order, err := s.manager.CompletionOrder()
	if err != nil {
		return s.questError(c, err)
	}
	return c.JSON(fiber.Map{"order": order, "message": "Successfully retrieved completion order."})
}

func (s *Server) handleSave(c fiber.Ctx) error {
	var req filePathRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}

	path := req.Filepath
	if path == "" {
		path = s.data.SnapshotPath
	}

	if err := s.manager.SaveFile(path); err != nil {
		logger.Error("Snapshot save via API failed", "path", path, "error", err, "request_id", requestID(c))
		return c.Status(500).JSON(fiber.Map{"error": fmt.Sprintf("Error saving quests: %v", err)})
	}

	logger.Info("Quests saved via API", "path", path, "key", keyName(c), "request_id", requestID(c))
	return c.JSON(fiber.Map{"message": fmt.Sprintf("Quests successfully saved to %s", path)})
}

func (s *Server) handleLoad(c fiber.Ctx) error {
	var req filePathRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}

	path := req.Filepath
	if path == "" {
		path = s.data.SnapshotPath
	}

	count, err := s.manager.LoadFile(path)
	if err != nil {
		status := 500
		switch {
		case errors.Is(err, os.ErrNotExist):
			status = 404
		case errors.Is(err, quest.ErrInvalidArgument):
			status = 400
		}
		logger.Error("Snapshot load via API failed", "path", path, "error", err, "request_id", requestID(c))
		return c.Status(status).JSON(fiber.Map{"error": fmt.Sprintf("Error loading quests: %v", err)})
	}

	logger.Info("Quests loaded via API", "path", path, "count", count, "key", keyName(c), "request_id", requestID(c))
	return c.JSON(fiber.Map{"message": fmt.Sprintf("Quests successfully loaded from %s. Total: %d.", path, count)})
}

// handleTestingReset wipes all quest state and reloads the configured
// snapshot if one exists. Mounted only when testing endpoints are enabled.
func (s *Server) handleTestingReset(c fiber.Ctx) error {
	s.manager.Clear()

	if s.data.SnapshotPath != "" {
		if _, err := os.Stat(s.data.SnapshotPath); err == nil {
			count, err := s.manager.LoadFile(s.data.SnapshotPath)
			if err != nil {
				logger.Warning("Failed to reload snapshot after reset", "path", s.data.SnapshotPath, "error", err)
			} else {
				logger.Info("Snapshot reloaded after reset", "path", s.data.SnapshotPath, "count", count)
			}
		}
	}

	logger.Always("Quest state reset via testing endpoint", "key", keyName(c), "request_id", requestID(c))
	return c.JSON(fiber.Map{"message": "Quest state has been reset."})
}

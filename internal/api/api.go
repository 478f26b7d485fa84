// Package api exposes the quest engine over HTTP. Routes are thin
// call-throughs to the quest manager; engine errors map onto status
// codes and mutating routes require an API key.
package api

import (
	"github.com/gofiber/fiber/v3"

	"github.com/lawnchairsociety/questline/internal/config"
	"github.com/lawnchairsociety/questline/internal/quest"
)

// KeyValidator checks an API key against a key store and returns the
// key's name. database.Database satisfies this.
type KeyValidator interface {
	ValidateAPIKey(key string) (string, error)
}

// Server is the HTTP API front end for a quest manager.
type Server struct {
	app     *fiber.App
	addr    string
	manager *quest.Manager
	cfg     config.APIConfig
	data    config.DataConfig
	keys    KeyValidator
}

// NewServer builds the API server and registers its routes.
func NewServer(cfg config.APIConfig, dataCfg config.DataConfig, manager *quest.Manager) *Server {
	s := &Server{
		app:     fiber.New(),
		addr:    cfg.Address,
		manager: manager,
		cfg:     cfg,
		data:    dataCfg,
	}
	s.routes()
	return s
}

// SetKeyValidator wires a database-backed key store into the auth
// middleware. Without one, only static keys from the config are accepted.
func (s *Server) SetKeyValidator(v KeyValidator) {
	s.keys = v
}

// App returns the underlying fiber app, used by tests to issue requests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves the API until Shutdown is called.
func (s *Server) Listen() error {
	return s.app.Listen(s.addr)
}

// Shutdown gracefully stops the API listener.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) routes() {
	s.app.Use(s.requestID)

	s.app.Get("/", s.handleRoot)

	// /quests/available/ must be registered before /quests/:id so the
	// literal segment wins over the parameter.
	s.app.Post("/quests/", s.requireKey(s.handleCreateQuest))
	s.app.Get("/quests/", s.handleListQuests)
	s.app.Get("/quests/available/", s.handleListAvailable)
	s.app.Get("/quests/:id", s.handleGetQuest)

	s.app.Post("/quests/:id/start", s.requireKey(s.handleStart))
	s.app.Post("/quests/:id/complete", s.requireKey(s.handleComplete))
	s.app.Post("/quests/:id/fail", s.requireKey(s.handleFail))
	s.app.Post("/quests/:id/reset", s.requireKey(s.handleReset))

	s.app.Get("/analysis/cycles", s.handleCycles)
	s.app.Get("/analysis/completion_order", s.handleCompletionOrder)

	s.app.Post("/data/save", s.requireKey(s.handleSave))
	s.app.Post("/data/load", s.requireKey(s.handleLoad))

	if s.cfg.EnableTestingEndpoints {
		s.app.Post("/testing/reset", s.requireKey(s.handleTestingReset))
	}
}

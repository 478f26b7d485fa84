package api

import (
	"crypto/subtle"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/lawnchairsociety/questline/internal/logger"
)

const (
	localRequestID = "request_id"
	localKeyName   = "api_key_name"
)

var errUnknownKey = errors.New("unknown API key")

// requestID tags every request with a uuid, echoed in the X-Request-ID
// response header and attached to log lines.
func (s *Server) requestID(c fiber.Ctx) error {
	id := uuid.NewString()
	c.Locals(localRequestID, id)
	c.Set("X-Request-ID", id)

	err := c.Next()

	logger.Debug("API request",
		"request_id", id,
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode())
	return err
}

// requireKey wraps a handler with X-API-Key authentication. A missing
// header is 401; a key that matches neither the static keys nor the
// key store is 403.
func (s *Server) requireKey(h fiber.Handler) fiber.Handler {
	return func(c fiber.Ctx) error {
		key := c.Get("X-API-Key")
		if key == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Not authenticated"})
		}

		name, err := s.authenticate(key)
		if err != nil {
			logger.Warning("API key rejected", "path", c.Path(), "request_id", requestID(c))
			return c.Status(403).JSON(fiber.Map{"error": "Invalid API Key"})
		}

		c.Locals(localKeyName, name)
		return h(c)
	}
}

// authenticate resolves a plaintext key to its name, checking static
// config keys first and the key store second.
func (s *Server) authenticate(key string) (string, error) {
	for name, static := range s.cfg.StaticKeys {
		if subtle.ConstantTimeCompare([]byte(static), []byte(key)) == 1 {
			return name, nil
		}
	}
	if s.keys != nil {
		return s.keys.ValidateAPIKey(key)
	}
	return "", errUnknownKey
}

// requestID returns the uuid assigned by the middleware, or "" outside it.
func requestID(c fiber.Ctx) string {
	if v, ok := c.Locals(localRequestID).(string); ok {
		return v
	}
	return ""
}

// keyName returns the authenticated key's name, or "" on public routes.
func keyName(c fiber.Ctx) string {
	if v, ok := c.Locals(localKeyName).(string); ok {
		return v
	}
	return ""
}

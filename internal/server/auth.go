package server

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/lawnchairsociety/questline/internal/database"
	"github.com/lawnchairsociety/questline/internal/logger"
)

// handleAuth prompts the client for an API key and validates it against
// the static config keys and the database. Returns the key name on success.
func (s *Server) handleAuth(client Client) (string, error) {
	// Welcome banner
	client.WriteLine("\n")
	client.WriteLine("=====================================\n")
	client.WriteLine("      Questline - Quest Engine\n")
	client.WriteLine("=====================================\n")
	client.WriteLine("\n")

	// Get IP address for rate limiting
	ipAddress := extractIP(client.RemoteAddr())

	// Check if IP is rate limited
	if s.authLimiter != nil {
		if locked, remaining := s.authLimiter.IsLocked(ipAddress); locked {
			client.WriteLine(fmt.Sprintf("Too many failed attempts. Please wait %d seconds.\n",
				int(remaining.Seconds())))
			return "", errors.New("rate limited")
		}
	}

	client.WriteLine("API key: ")

	key, err := client.ReadLine()
	if err != nil {
		return "", errors.New("connection closed")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		client.WriteLine("API key cannot be empty.\n")
		return "", errors.New("empty API key")
	}

	keyName, err := s.validateKey(key)
	if err != nil {
		logger.Info("Failed key attempt",
			"ip", ipAddress,
			"event", "auth_failed")
		// Record failed attempt
		if s.authLimiter != nil {
			if locked, duration := s.authLimiter.RecordFailure(ipAddress); locked {
				logger.Warning("IP rate limited after failed key attempts",
					"ip", ipAddress,
					"lockout_seconds", int(duration.Seconds()),
					"event", "auth_ratelimit")
				client.WriteLine(fmt.Sprintf("Invalid API key. Too many attempts - locked out for %d seconds.\n",
					int(duration.Seconds())))
				return "", errors.New("rate limited")
			}
		}
		client.WriteLine("Invalid API key.\n")
		return "", errors.New("invalid API key")
	}

	// Successful auth - clear rate limit
	if s.authLimiter != nil {
		s.authLimiter.RecordSuccess(ipAddress)
	}

	logger.Info("Successful authentication",
		"key_name", keyName,
		"ip", ipAddress,
		"event", "auth_success")

	return keyName, nil
}

// validateKey checks static config keys first, then the database.
func (s *Server) validateKey(key string) (string, error) {
	for name, static := range s.staticKeys {
		if subtle.ConstantTimeCompare([]byte(static), []byte(key)) == 1 {
			return name, nil
		}
	}
	if s.db != nil {
		return s.db.ValidateAPIKey(key)
	}
	return "", database.ErrInvalidKey
}

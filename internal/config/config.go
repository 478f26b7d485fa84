package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the questd service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	API      APIConfig      `yaml:"api"`
	Data     DataConfig     `yaml:"data"`
	Database DatabaseConfig `yaml:"database"`
}

// ServerConfig holds shell listener settings.
type ServerConfig struct {
	// TelnetAddress is the listen address for the telnet shell.
	TelnetAddress string `yaml:"telnet_address"`

	// WebSocketAddress is the listen address for the WebSocket shell.
	WebSocketAddress string `yaml:"websocket_address"`

	// IdleTimeoutSeconds disconnects shell sessions idle this long.
	// 0 disables the idle check.
	IdleTimeoutSeconds int `yaml:"idle_timeout_seconds"`

	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Connections ConnectionsConfig `yaml:"connections"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
}

// APIConfig holds HTTP API settings.
type APIConfig struct {
	// Enabled starts the HTTP API listener.
	Enabled bool `yaml:"enabled"`

	// Address is the HTTP API listen address.
	Address string `yaml:"address"`

	// StaticKeys maps key names to plaintext API keys accepted without a
	// database lookup. Intended for development and CI; long-lived keys
	// belong in the database.
	StaticKeys map[string]string `yaml:"static_keys"`

	// EnableTestingEndpoints exposes the /testing routes, which can wipe
	// all quest state. Never enable in production.
	EnableTestingEndpoints bool `yaml:"enable_testing_endpoints"`
}

// DataConfig holds quest data file locations and autosave behavior.
type DataConfig struct {
	// SnapshotPath is where quest state is saved to and loaded from.
	SnapshotPath string `yaml:"snapshot_path"`

	// CatalogPath is a YAML quest catalog file or directory loaded at boot.
	// Empty means no catalog is loaded.
	CatalogPath string `yaml:"catalog_path"`

	// AutosaveSeconds is the interval between automatic snapshots.
	// 0 disables autosave.
	AutosaveSeconds int `yaml:"autosave_seconds"`
}

// DatabaseConfig selects and configures the backing database.
type DatabaseConfig struct {
	// Driver selects the backend: "sqlite" or "postgres".
	Driver string `yaml:"driver"`

	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig holds SQLite settings.
type SQLiteConfig struct {
	// Path is the database file location.
	Path string `yaml:"path"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// RateLimitConfig holds rate limiting settings for shell authentication attempts.
type RateLimitConfig struct {
	// MaxAttempts is the maximum key entry attempts before lockout.
	MaxAttempts int `yaml:"max_attempts"`

	// LockoutSeconds is the initial lockout duration in seconds.
	LockoutSeconds int `yaml:"lockout_seconds"`

	// MaxLockoutSeconds is the maximum lockout duration (for exponential backoff).
	MaxLockoutSeconds int `yaml:"max_lockout_seconds"`
}

// ConnectionsConfig holds connection limit settings.
type ConnectionsConfig struct {
	// MaxPerIP is the maximum concurrent connections allowed from a single IP address.
	// 0 means unlimited (not recommended).
	MaxPerIP int `yaml:"max_per_ip"`

	// MaxTotal is the maximum total concurrent connections to the server.
	// 0 means unlimited.
	MaxTotal int `yaml:"max_total"`
}

// WebSocketConfig holds WebSocket-specific settings.
type WebSocketConfig struct {
	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins (not recommended for production).
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`
}

// DefaultConfig returns a Config with secure defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			TelnetAddress:      ":4000",
			WebSocketAddress:   ":4443",
			IdleTimeoutSeconds: 0, // No idle disconnect by default
			WebSocket: WebSocketConfig{
				AllowedOrigins: []string{}, // Same-origin only by default
				MaxMessageSize: 4096,
			},
			Connections: ConnectionsConfig{
				MaxPerIP: 3,   // Default: 3 connections per IP
				MaxTotal: 100, // Default: 100 total connections
			},
			RateLimit: RateLimitConfig{
				MaxAttempts:       5,   // Default: 5 attempts before lockout
				LockoutSeconds:    30,  // Default: 30 second initial lockout
				MaxLockoutSeconds: 300, // Default: 5 minute max lockout
			},
		},
		API: APIConfig{
			Enabled:                true,
			Address:                ":8080",
			StaticKeys:             map[string]string{},
			EnableTestingEndpoints: false,
		},
		Data: DataConfig{
			SnapshotPath:    "data/snapshot.json",
			CatalogPath:     "",
			AutosaveSeconds: 300, // Default: snapshot every 5 minutes
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{
				Path: "data/questline.db",
			},
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				SSLMode: "disable",
			},
		},
	}
}

// LoadConfig loads service configuration from a YAML file.
// If the file doesn't exist, returns default config.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil // Use defaults if file doesn't exist
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), err
	}

	if err := config.Validate(); err != nil {
		return DefaultConfig(), err
	}

	return config, nil
}

// Validate checks field ranges and enum values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown database driver %q (expected sqlite or postgres)", c.Database.Driver)
	}
	if c.Data.AutosaveSeconds < 0 {
		return fmt.Errorf("autosave_seconds must not be negative, got %d", c.Data.AutosaveSeconds)
	}
	if c.Server.IdleTimeoutSeconds < 0 {
		return fmt.Errorf("idle_timeout_seconds must not be negative, got %d", c.Server.IdleTimeoutSeconds)
	}
	if c.Server.WebSocket.MaxMessageSize <= 0 {
		return fmt.Errorf("max_message_size must be positive, got %d", c.Server.WebSocket.MaxMessageSize)
	}
	return nil
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	// If no origins configured, enforce same-origin policy
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		// Wildcard allows all origins
		if allowed == "*" {
			return true
		}
		// Exact match
		if allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host (same-origin policy).
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // No origin header means same-origin (e.g., non-browser client)
	}

	// Extract host from origin URL (e.g., "http://localhost:3000" -> "localhost:3000")
	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	// Remove trailing slash if present
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}

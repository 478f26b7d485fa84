package database

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt cost factor (12 is a good balance of security and performance)
const bcryptCost = 12

// ErrKeyNotFound is returned when an API key lookup fails.
var ErrKeyNotFound = errors.New("API key not found")

// ErrKeyExists is returned when trying to create a key under a taken name.
var ErrKeyExists = errors.New("API key name already exists")

// ErrInvalidKey is returned when a presented key matches no active key.
var ErrInvalidKey = errors.New("invalid API key")

// APIKey represents a stored API key. The plaintext key is never stored;
// only the bcrypt hash is.
type APIKey struct {
	ID        int64
	Name      string
	KeyHash   string
	CreatedAt time.Time
	Revoked   bool
}

// CreateAPIKey generates a new key under the given name and returns it
// along with the plaintext key. The plaintext is shown exactly once.
func (d *Database) CreateAPIKey(name string) (*APIKey, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", errors.New("key name cannot be empty")
	}

	key, err := generateKey()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate key: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash key: %w", err)
	}

	var id int64
	if d.dialect.SupportsLastInsertID() {
		query := d.qb.Build("INSERT INTO api_keys (name, key_hash) VALUES (?, ?)")
		result, err := d.db.Exec(query, name, string(hash))
		if err != nil {
			if d.dialect.IsDuplicateKeyError(err) {
				return nil, "", ErrKeyExists
			}
			return nil, "", fmt.Errorf("failed to create API key: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return nil, "", fmt.Errorf("failed to get key ID: %w", err)
		}
	} else {
		query := d.qb.BuildWithReturning("INSERT INTO api_keys (name, key_hash) VALUES (?, ?)", "id")
		err := d.db.QueryRow(query, name, string(hash)).Scan(&id)
		if err != nil {
			if d.dialect.IsDuplicateKeyError(err) {
				return nil, "", ErrKeyExists
			}
			return nil, "", fmt.Errorf("failed to create API key: %w", err)
		}
	}

	return &APIKey{
		ID:        id,
		Name:      name,
		KeyHash:   string(hash),
		CreatedAt: time.Now(),
	}, key, nil
}

// ValidateAPIKey checks a presented key against every active stored key.
// Returns the matching key's name, or ErrInvalidKey if none match.
func (d *Database) ValidateAPIKey(key string) (string, error) {
	query := d.qb.Build("SELECT name, key_hash FROM api_keys WHERE revoked = 0")
	rows, err := d.db.Query(query)
	if err != nil {
		return "", fmt.Errorf("failed to query API keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, hash string
		if err := rows.Scan(&name, &hash); err != nil {
			return "", fmt.Errorf("failed to scan API key: %w", err)
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil {
			return name, nil
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to read API keys: %w", err)
	}

	return "", ErrInvalidKey
}

// RevokeAPIKey marks the named key as revoked. Revoking twice is a no-op.
func (d *Database) RevokeAPIKey(name string) error {
	query := d.qb.Build("UPDATE api_keys SET revoked = 1 WHERE name = ?")
	result, err := d.db.Exec(query, name)
	if err != nil {
		return fmt.Errorf("failed to revoke API key: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check revoke result: %w", err)
	}
	if affected == 0 {
		return ErrKeyNotFound
	}
	return nil
}

// GetAPIKey retrieves a stored key by name.
func (d *Database) GetAPIKey(name string) (*APIKey, error) {
	var k APIKey
	var revoked int

	query := d.qb.Build("SELECT id, name, key_hash, created_at, revoked FROM api_keys WHERE name = ?")
	err := d.db.QueryRow(query, name).Scan(&k.ID, &k.Name, &k.KeyHash, &k.CreatedAt, &revoked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get API key: %w", err)
	}

	k.Revoked = revoked != 0
	return &k, nil
}

// ListAPIKeys returns all stored keys, active and revoked, sorted by name.
func (d *Database) ListAPIKeys() ([]*APIKey, error) {
	query := d.qb.Build("SELECT id, name, key_hash, created_at, revoked FROM api_keys ORDER BY name")
	rows, err := d.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query API keys: %w", err)
	}
	defer rows.Close()

	var keys []*APIKey
	for rows.Next() {
		var k APIKey
		var revoked int
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.CreatedAt, &revoked); err != nil {
			return nil, fmt.Errorf("failed to scan API key: %w", err)
		}
		k.Revoked = revoked != 0
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

// generateKey produces a 64-character hex key from 32 random bytes.
func generateKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

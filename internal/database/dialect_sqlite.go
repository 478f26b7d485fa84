package database

import (
	"strings"
)

// SQLiteDialect is the default dialect. A standalone questline server
// keeps its API keys and quest journal in a single SQLite file with no
// external database to run.
type SQLiteDialect struct{}

// DriverName returns the modernc.org/sqlite driver name.
func (d *SQLiteDialect) DriverName() string {
	return "sqlite"
}

// Placeholder returns "?" regardless of position.
func (d *SQLiteDialect) Placeholder(position int) string {
	return "?"
}

// SupportsLastInsertID reports true; inserts read back their row id
// through LastInsertId rather than a RETURNING clause.
func (d *SQLiteDialect) SupportsLastInsertID() bool {
	return true
}

// ReturningClause returns an empty string, see SupportsLastInsertID.
func (d *SQLiteDialect) ReturningClause(column string) string {
	return ""
}

// InitStatements returns the PRAGMAs run once per connection. WAL keeps
// journal writes from blocking key lookups on the shell's auth path.
func (d *SQLiteDialect) InitStatements() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
}

// IsDuplicateKeyError reports whether err is a UNIQUE constraint
// violation, such as creating an API key under a taken name.
func (d *SQLiteDialect) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CaseInsensitiveCollation returns the collation used for key-name
// matching, so "Deploy-Bot" and "deploy-bot" name the same key.
func (d *SQLiteDialect) CaseInsensitiveCollation() string {
	return "COLLATE NOCASE"
}

package database

import (
	"errors"
	"testing"
	"time"
)

// =============================================================================
// Dialect Selection Tests
// =============================================================================

func TestNewDialect(t *testing.T) {
	if _, ok := NewDialect(DialectSQLite).(*SQLiteDialect); !ok {
		t.Errorf("NewDialect(%q) did not return *SQLiteDialect", DialectSQLite)
	}
	if _, ok := NewDialect(DialectPostgres).(*PostgresDialect); !ok {
		t.Errorf("NewDialect(%q) did not return *PostgresDialect", DialectPostgres)
	}
	// Unknown driver names fall back to the embedded default.
	if _, ok := NewDialect("oracle").(*SQLiteDialect); !ok {
		t.Error("unknown driver should default to *SQLiteDialect")
	}
}

func TestDialect_InterfaceCompliance(t *testing.T) {
	var _ Dialect = (*SQLiteDialect)(nil)
	var _ Dialect = (*PostgresDialect)(nil)
}

// =============================================================================
// SQLite Dialect Tests
// =============================================================================

func TestSQLiteDialect_Basics(t *testing.T) {
	d := &SQLiteDialect{}

	if got := d.DriverName(); got != "sqlite" {
		t.Errorf("DriverName() = %q, want %q", got, "sqlite")
	}
	for _, pos := range []int{1, 2, 10, 100} {
		if got := d.Placeholder(pos); got != "?" {
			t.Errorf("Placeholder(%d) = %q, want %q", pos, got, "?")
		}
	}
	if !d.SupportsLastInsertID() {
		t.Error("SupportsLastInsertID() = false, want true")
	}
	if got := d.ReturningClause("id"); got != "" {
		t.Errorf("ReturningClause() = %q, want empty string", got)
	}
	if got := d.CaseInsensitiveCollation(); got != "COLLATE NOCASE" {
		t.Errorf("CaseInsensitiveCollation() = %q, want %q", got, "COLLATE NOCASE")
	}
}

func TestSQLiteDialect_InitStatements(t *testing.T) {
	d := &SQLiteDialect{}
	stmts := d.InitStatements()

	// The journal table takes a write on every quest transition, so WAL
	// and a busy timeout are required, not optional.
	want := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	if len(stmts) != len(want) {
		t.Fatalf("InitStatements() returned %d statements, want %d", len(stmts), len(want))
	}
	for i := range want {
		if stmts[i] != want[i] {
			t.Errorf("InitStatements()[%d] = %q, want %q", i, stmts[i], want[i])
		}
	}
}

func TestSQLiteDialect_IsDuplicateKeyError(t *testing.T) {
	d := &SQLiteDialect{}
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("some random error"), false},
		{errors.New("UNIQUE constraint failed: api_keys.name"), true},
		{errors.New("UNIQUE constraint failed: quest_journal.id"), true},
		{errors.New("FOREIGN KEY constraint failed"), false},
	}
	for _, tt := range tests {
		if got := d.IsDuplicateKeyError(tt.err); got != tt.want {
			t.Errorf("IsDuplicateKeyError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

// =============================================================================
// PostgreSQL Dialect Tests
// =============================================================================

func TestPostgresDialect_Basics(t *testing.T) {
	d := &PostgresDialect{}

	if got := d.DriverName(); got != "postgres" {
		t.Errorf("DriverName() = %q, want %q", got, "postgres")
	}
	if d.SupportsLastInsertID() {
		t.Error("SupportsLastInsertID() = true, want false")
	}
	if got := d.CaseInsensitiveCollation(); got != "" {
		t.Errorf("CaseInsensitiveCollation() = %q, want empty string", got)
	}
}

func TestPostgresDialect_Placeholder(t *testing.T) {
	d := &PostgresDialect{}
	tests := []struct {
		position int
		want     string
	}{
		{1, "$1"},
		{2, "$2"},
		{10, "$10"},
		{100, "$100"},
	}
	for _, tt := range tests {
		if got := d.Placeholder(tt.position); got != tt.want {
			t.Errorf("Placeholder(%d) = %q, want %q", tt.position, got, tt.want)
		}
	}
}

func TestPostgresDialect_ReturningClause(t *testing.T) {
	d := &PostgresDialect{}
	if got := d.ReturningClause("id"); got != " RETURNING id" {
		t.Errorf("ReturningClause(%q) = %q, want %q", "id", got, " RETURNING id")
	}
	if got := d.ReturningClause("quest_id"); got != " RETURNING quest_id" {
		t.Errorf("ReturningClause(%q) = %q, want %q", "quest_id", got, " RETURNING quest_id")
	}
}

func TestPostgresDialect_InitStatements(t *testing.T) {
	d := &PostgresDialect{}
	stmts := d.InitStatements()

	if len(stmts) != 1 {
		t.Fatalf("InitStatements() returned %d statements, want 1", len(stmts))
	}
	// citext backs the case-insensitive key-name column.
	if want := "CREATE EXTENSION IF NOT EXISTS citext"; stmts[0] != want {
		t.Errorf("InitStatements()[0] = %q, want %q", stmts[0], want)
	}
}

func TestPostgresDialect_IsDuplicateKeyError(t *testing.T) {
	d := &PostgresDialect{}
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("some random error"), false},
		{errors.New("duplicate key value violates unique constraint"), true},
		{errors.New("ERROR: duplicate key value (SQLSTATE 23505)"), true},
		{errors.New("pq: unique constraint violation on api_keys_name_key"), true},
		{errors.New("foreign key constraint"), false},
	}
	for _, tt := range tests {
		if got := d.IsDuplicateKeyError(tt.err); got != tt.want {
			t.Errorf("IsDuplicateKeyError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

// =============================================================================
// QueryBuilder Tests
// =============================================================================

// The stores write every query with ? placeholders; the builder rewrites
// them per dialect. The cases below are the shapes keys.go and journal.go
// actually run.

func TestQueryBuilder_Build_SQLite(t *testing.T) {
	qb := NewQueryBuilder(&SQLiteDialect{})
	tests := []struct {
		input string
		want  string
	}{
		{
			"SELECT name, key_hash FROM api_keys WHERE revoked = 0",
			"SELECT name, key_hash FROM api_keys WHERE revoked = 0",
		},
		{
			"UPDATE api_keys SET revoked = 1 WHERE name = ?",
			"UPDATE api_keys SET revoked = 1 WHERE name = ?",
		},
		{
			"INSERT INTO quest_journal (id, quest_id, from_status, to_status, operation, occurred_at) VALUES (?, ?, ?, ?, ?, ?)",
			"INSERT INTO quest_journal (id, quest_id, from_status, to_status, operation, occurred_at) VALUES (?, ?, ?, ?, ?, ?)",
		},
	}
	for _, tt := range tests {
		if got := qb.Build(tt.input); got != tt.want {
			t.Errorf("Build(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestQueryBuilder_Build_Postgres(t *testing.T) {
	qb := NewQueryBuilder(&PostgresDialect{})
	tests := []struct {
		input string
		want  string
	}{
		{
			"SELECT name, key_hash FROM api_keys WHERE revoked = 0",
			"SELECT name, key_hash FROM api_keys WHERE revoked = 0",
		},
		{
			"UPDATE api_keys SET revoked = 1 WHERE name = ?",
			"UPDATE api_keys SET revoked = 1 WHERE name = $1",
		},
		{
			"INSERT INTO quest_journal (id, quest_id, from_status, to_status, operation, occurred_at) VALUES (?, ?, ?, ?, ?, ?)",
			"INSERT INTO quest_journal (id, quest_id, from_status, to_status, operation, occurred_at) VALUES ($1, $2, $3, $4, $5, $6)",
		},
	}
	for _, tt := range tests {
		if got := qb.Build(tt.input); got != tt.want {
			t.Errorf("Build(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestQueryBuilder_Build_ManyPlaceholders(t *testing.T) {
	qb := NewQueryBuilder(&PostgresDialect{})
	// Double-digit positions must not truncate to $1..$9.
	input := "INSERT INTO t VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	want := "INSERT INTO t VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)"
	if got := qb.Build(input); got != want {
		t.Errorf("Build with 12 placeholders:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestQueryBuilder_Build_EmptyQuery(t *testing.T) {
	for _, d := range []Dialect{&SQLiteDialect{}, &PostgresDialect{}} {
		qb := NewQueryBuilder(d)
		if got := qb.Build(""); got != "" {
			t.Errorf("%s: Build(\"\") = %q, want empty string", d.DriverName(), got)
		}
	}
}

func TestQueryBuilder_BuildWithReturning(t *testing.T) {
	insert := "INSERT INTO api_keys (name, key_hash) VALUES (?, ?)"

	sq := NewQueryBuilder(&SQLiteDialect{})
	if got := sq.BuildWithReturning(insert, "id"); got != insert {
		t.Errorf("sqlite BuildWithReturning = %q, want unchanged query", got)
	}

	pq := NewQueryBuilder(&PostgresDialect{})
	want := "INSERT INTO api_keys (name, key_hash) VALUES ($1, $2) RETURNING id"
	if got := pq.BuildWithReturning(insert, "id"); got != want {
		t.Errorf("postgres BuildWithReturning = %q, want %q", got, want)
	}
}

// =============================================================================
// Config Tests
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/var/lib/questline/questline.db")

	if cfg.Driver != "sqlite" {
		t.Errorf("Driver = %q, want %q", cfg.Driver, "sqlite")
	}
	if cfg.SQLitePath != "/var/lib/questline/questline.db" {
		t.Errorf("SQLitePath = %q, want the requested path", cfg.SQLitePath)
	}
}

func TestDefaultPostgresConfig(t *testing.T) {
	cfg := DefaultPostgresConfig()

	if cfg.Host != "localhost" {
		t.Errorf("Host = %q, want %q", cfg.Host, "localhost")
	}
	if cfg.Port != 5432 {
		t.Errorf("Port = %d, want %d", cfg.Port, 5432)
	}
	if cfg.SSLMode != "disable" {
		t.Errorf("SSLMode = %q, want %q", cfg.SSLMode, "disable")
	}
	if cfg.MaxOpenConns != 25 {
		t.Errorf("MaxOpenConns = %d, want %d", cfg.MaxOpenConns, 25)
	}
	if cfg.MaxIdleConns != 5 {
		t.Errorf("MaxIdleConns = %d, want %d", cfg.MaxIdleConns, 5)
	}
	if cfg.ConnMaxLifetime != 5*time.Minute {
		t.Errorf("ConnMaxLifetime = %v, want %v", cfg.ConnMaxLifetime, 5*time.Minute)
	}
}

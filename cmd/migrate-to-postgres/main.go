// migrate-to-postgres migrates questline data from SQLite to PostgreSQL.
//
// Usage:
//
//	go run ./cmd/migrate-to-postgres \
//	    -sqlite data/questline.db \
//	    -pg-host localhost \
//	    -pg-port 5432 \
//	    -pg-user questline \
//	    -pg-password questline \
//	    -pg-database questline
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func main() {
	// Parse command-line flags
	sqlitePath := flag.String("sqlite", "data/questline.db", "Path to SQLite database")
	pgHost := flag.String("pg-host", "localhost", "PostgreSQL host")
	pgPort := flag.Int("pg-port", 5432, "PostgreSQL port")
	pgUser := flag.String("pg-user", "questline", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "questline", "PostgreSQL password")
	pgDatabase := flag.String("pg-database", "questline", "PostgreSQL database name")
	pgSSLMode := flag.String("pg-sslmode", "disable", "PostgreSQL SSL mode")
	dryRun := flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	flag.Parse()

	log.Println("SQLite to PostgreSQL Migration Tool")
	log.Println("====================================")

	// Open SQLite database
	log.Printf("Opening SQLite database: %s", *sqlitePath)
	sqliteDB, err := sql.Open("sqlite", *sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite database: %v", err)
	}
	defer sqliteDB.Close()

	// Verify SQLite connection
	if err := sqliteDB.Ping(); err != nil {
		log.Fatalf("Failed to connect to SQLite database: %v", err)
	}

	// Build PostgreSQL connection string
	pgConnStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		*pgHost, *pgPort, *pgUser, *pgPassword, *pgDatabase, *pgSSLMode,
	)

	// Open PostgreSQL database
	log.Printf("Opening PostgreSQL database: %s@%s:%d/%s", *pgUser, *pgHost, *pgPort, *pgDatabase)
	pgDB, err := sql.Open("postgres", pgConnStr)
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL database: %v", err)
	}
	defer pgDB.Close()

	// Verify PostgreSQL connection
	if err := pgDB.Ping(); err != nil {
		log.Fatalf("Failed to connect to PostgreSQL database: %v", err)
	}

	if *dryRun {
		log.Println("DRY RUN MODE - No changes will be made")
	}

	// Run migrations on PostgreSQL first
	log.Println("Ensuring PostgreSQL schema is ready...")
	if !*dryRun {
		if err := migratePostgres(pgDB); err != nil {
			log.Fatalf("Failed to migrate PostgreSQL schema: %v", err)
		}
	}

	// Migrate each table
	tables := []struct {
		name    string
		migrate func(*sql.DB, *sql.DB, bool) (int64, error)
	}{
		{"api_keys", migrateAPIKeys},
		{"quest_journal", migrateQuestJournal},
	}

	var totalRows int64
	for _, t := range tables {
		log.Printf("Migrating table: %s", t.name)
		count, err := t.migrate(sqliteDB, pgDB, *dryRun)
		if err != nil {
			log.Fatalf("Failed to migrate %s: %v", t.name, err)
		}
		log.Printf("  Migrated %d rows", count)
		totalRows += count
	}

	log.Println("====================================")
	log.Printf("Migration complete! Total rows migrated: %d", totalRows)
	if *dryRun {
		log.Println("(DRY RUN - No actual changes were made)")
	}
}

func migratePostgres(db *sql.DB) error {
	// Enable citext extension
	if _, err := db.Exec("CREATE EXTENSION IF NOT EXISTS citext"); err != nil {
		return fmt.Errorf("failed to create citext extension: %w", err)
	}

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS api_keys (
			id SERIAL PRIMARY KEY,
			name CITEXT UNIQUE NOT NULL,
			key_hash TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			revoked INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS quest_journal (
			id TEXT PRIMARY KEY,
			quest_id TEXT NOT NULL,
			from_status TEXT NOT NULL,
			to_status TEXT NOT NULL,
			operation TEXT NOT NULL,
			occurred_at TIMESTAMP NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_journal_quest ON quest_journal(quest_id)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_occurred ON quest_journal(occurred_at)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

func migrateAPIKeys(sqliteDB, pgDB *sql.DB, dryRun bool) (int64, error) {
	rows, err := sqliteDB.Query(`
		SELECT name, key_hash, created_at, revoked
		FROM api_keys
		ORDER BY id
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to query api_keys: %w", err)
	}
	defer rows.Close()

	var count int64
	for rows.Next() {
		var name, keyHash string
		var createdAt sql.NullTime
		var revoked int
		if err := rows.Scan(&name, &keyHash, &createdAt, &revoked); err != nil {
			return count, fmt.Errorf("failed to scan api_keys row: %w", err)
		}

		if dryRun {
			log.Printf("  Would migrate key: %s (revoked: %d)", name, revoked)
			count++
			continue
		}

		// ON CONFLICT keeps the tool idempotent: re-running skips keys
		// that already made it over.
		_, err := pgDB.Exec(`
			INSERT INTO api_keys (name, key_hash, created_at, revoked)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO NOTHING
		`, name, keyHash, createdAt, revoked)
		if err != nil {
			return count, fmt.Errorf("failed to insert key %s: %w", name, err)
		}
		count++
	}

	return count, rows.Err()
}

func migrateQuestJournal(sqliteDB, pgDB *sql.DB, dryRun bool) (int64, error) {
	rows, err := sqliteDB.Query(`
		SELECT id, quest_id, from_status, to_status, operation, occurred_at
		FROM quest_journal
		ORDER BY occurred_at
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to query quest_journal: %w", err)
	}
	defer rows.Close()

	var count int64
	for rows.Next() {
		var id, questID, fromStatus, toStatus, operation string
		var occurredAt sql.NullTime
		if err := rows.Scan(&id, &questID, &fromStatus, &toStatus, &operation, &occurredAt); err != nil {
			return count, fmt.Errorf("failed to scan quest_journal row: %w", err)
		}

		if dryRun {
			count++
			continue
		}

		_, err := pgDB.Exec(`
			INSERT INTO quest_journal (id, quest_id, from_status, to_status, operation, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING
		`, id, questID, fromStatus, toStatus, operation, occurredAt)
		if err != nil {
			return count, fmt.Errorf("failed to insert journal entry %s: %w", id, err)
		}
		count++
	}

	return count, rows.Err()
}

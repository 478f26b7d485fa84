package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JournalEntry represents one recorded quest status transition.
type JournalEntry struct {
	ID         string
	QuestID    string
	FromStatus string
	ToStatus   string
	Operation  string
	OccurredAt time.Time
}

// RecordTransition appends a quest status change to the journal.
func (d *Database) RecordTransition(questID, fromStatus, toStatus, operation string) error {
	query := d.qb.Build(`
		INSERT INTO quest_journal (id, quest_id, from_status, to_status, operation, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := d.db.Exec(query, uuid.NewString(), questID, fromStatus, toStatus, operation, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record transition: %w", err)
	}
	return nil
}

// JournalForQuest returns all recorded transitions for one quest, oldest first.
func (d *Database) JournalForQuest(questID string) ([]JournalEntry, error) {
	query := d.qb.Build(`
		SELECT id, quest_id, from_status, to_status, operation, occurred_at
		FROM quest_journal
		WHERE quest_id = ?
		ORDER BY occurred_at ASC, id ASC
	`)
	rows, err := d.db.Query(query, questID)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.ID, &e.QuestID, &e.FromStatus, &e.ToStatus, &e.Operation, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecentJournal returns the most recent transitions across all quests,
// newest first.
func (d *Database) RecentJournal(limit int) ([]JournalEntry, error) {
	query := d.qb.Build(`
		SELECT id, quest_id, from_status, to_status, operation, occurred_at
		FROM quest_journal
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?
	`)
	rows, err := d.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.ID, &e.QuestID, &e.FromStatus, &e.ToStatus, &e.Operation, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// JournalCount returns the total number of journal entries.
func (d *Database) JournalCount() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM quest_journal").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count journal entries: %w", err)
	}
	return count, nil
}

package command

import (
	"fmt"
	"strings"

	"github.com/lawnchairsociety/questline/internal/database"
	"github.com/lawnchairsociety/questline/internal/quest"
)

// executeSave writes the current quest set to a snapshot file.
func executeSave(c *Command, s SessionInterface) string {
	serverIface := s.GetServer()
	server, ok := serverIface.(ServerInterface)
	if !ok {
		return "Internal error: invalid server type"
	}

	path := server.GetSnapshotPath()
	if len(c.Args) > 0 {
		path = c.Args[0]
	}

	if err := server.SaveSnapshot(path); err != nil {
		return fmt.Sprintf("Error saving quests: %v", err)
	}
	return fmt.Sprintf("Quests successfully saved to %s", path)
}

// executeLoad replaces the current quest set from a snapshot file.
func executeLoad(c *Command, s SessionInterface) string {
	serverIface := s.GetServer()
	server, ok := serverIface.(ServerInterface)
	if !ok {
		return "Internal error: invalid server type"
	}

	path := server.GetSnapshotPath()
	if len(c.Args) > 0 {
		path = c.Args[0]
	}

	if _, err := server.LoadSnapshot(path); err != nil {
		return fmt.Sprintf("Error loading quests: %v", err)
	}

	manager := server.GetQuestManager()
	return fmt.Sprintf("Quests successfully loaded from %s. Total quests in manager: %d. Completed: %d.",
		path, manager.Count(), len(manager.CompletedIDs()))
}

// executeJournal shows recorded quest transitions, newest first.
func executeJournal(c *Command, s SessionInterface) string {
	serverIface := s.GetServer()
	server, ok := serverIface.(ServerInterface)
	if !ok {
		return "Internal error: invalid server type"
	}

	db, ok := server.GetDatabase().(*database.Database)
	if !ok || db == nil {
		return "Journal is not available (database disabled)."
	}

	var entries []database.JournalEntry
	var err error
	if len(c.Args) > 0 {
		entries, err = db.JournalForQuest(c.Args[0])
	} else {
		entries, err = db.RecentJournal(20)
	}
	if err != nil {
		return fmt.Sprintf("Error reading journal: %v", err)
	}
	if len(entries) == 0 {
		return "No journal entries."
	}

	var sb strings.Builder
	sb.WriteString("=== Quest Journal ===\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("  %s  %s: %s -> %s (%s)\n",
			e.OccurredAt.Format("2006-01-02 15:04:05"), e.QuestID, e.FromStatus, e.ToStatus, e.Operation))
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

// executeStats reports engine statistics and server health.
func executeStats(c *Command, s SessionInterface) string {
	serverIface := s.GetServer()
	server, ok := serverIface.(ServerInterface)
	if !ok {
		return "Internal error: invalid server type"
	}

	manager := server.GetQuestManager()
	quests := manager.All()

	byStatus := make(map[quest.Status]int)
	for _, q := range quests {
		byStatus[q.Status]++
	}

	var sb strings.Builder
	sb.WriteString("=== Engine Statistics ===\n")
	sb.WriteString(fmt.Sprintf("Quests:       %d\n", len(quests)))
	sb.WriteString(fmt.Sprintf("  Not started:  %d\n", byStatus[quest.StatusNotStarted]))
	sb.WriteString(fmt.Sprintf("  In progress:  %d\n", byStatus[quest.StatusInProgress]))
	sb.WriteString(fmt.Sprintf("  Completed:    %d\n", byStatus[quest.StatusCompleted]))
	sb.WriteString(fmt.Sprintf("  Failed:       %d\n", byStatus[quest.StatusFailed]))

	if db, ok := server.GetDatabase().(*database.Database); ok && db != nil {
		if count, err := db.JournalCount(); err == nil {
			sb.WriteString(fmt.Sprintf("Journal:      %d entries\n", count))
		}
	}

	sb.WriteString(fmt.Sprintf("Sessions:     %d connected\n", server.GetSessionCount()))

	uptime := server.GetUptime()
	hours := int(uptime.Hours())
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60
	sb.WriteString(fmt.Sprintf("Uptime:       %d hours, %d minutes, %d seconds", hours, minutes, seconds))

	return sb.String()
}

package command

import (
	"fmt"
	"strings"

	"github.com/lawnchairsociety/questline/internal/quest"
)

// executeAdd creates a new quest from the command line.
// Grammar: add <id> [deps=a,b,c] [type=side] <title words...>
func executeAdd(c *Command, s SessionInterface) string {
	if err := c.RequireArgs(2, "Usage: add <id> [deps=a,b,c] [type=side] <title>"); err != nil {
		return err.Error()
	}

	serverIface := s.GetServer()
	server, ok := serverIface.(ServerInterface)
	if !ok {
		return "Internal error: invalid server type"
	}

	id := c.Args[0]
	rest := c.Args[1:]

	var deps []string
	questType := quest.TypeSide

	// Consume deps= and type= options before the title
	for len(rest) > 0 {
		switch {
		case strings.HasPrefix(rest[0], "deps="):
			for _, dep := range strings.Split(strings.TrimPrefix(rest[0], "deps="), ",") {
				dep = strings.TrimSpace(dep)
				if dep != "" {
					deps = append(deps, dep)
				}
			}
		case strings.HasPrefix(rest[0], "type="):
			parsed, err := quest.ParseType(strings.TrimPrefix(rest[0], "type="))
			if err != nil {
				return fmt.Sprintf("Error adding quest: %v", err)
			}
			questType = parsed
		default:
			title := strings.Join(rest, " ")
			q, err := quest.NewQuest(id, title, "", deps)
			if err != nil {
				return fmt.Sprintf("Error adding quest: %v", err)
			}
			q.Type = questType

			if err := server.GetQuestManager().Add(q); err != nil {
				return fmt.Sprintf("Error adding quest: %v", err)
			}
			return fmt.Sprintf("Quest '%s' (ID: %s) added successfully.", title, id)
		}
		rest = rest[1:]
	}

	return "Usage: add <id> [deps=a,b,c] [type=side] <title>"
}

// executeShow displays full details for one quest.
func executeShow(c *Command, s SessionInterface) string {
	if err := c.RequireArgs(1, "Usage: show <id>"); err != nil {
		return err.Error()
	}

	serverIface := s.GetServer()
	server, ok := serverIface.(ServerInterface)
	if !ok {
		return "Internal error: invalid server type"
	}

	manager := server.GetQuestManager()
	q, exists := manager.Get(c.Args[0])
	if !exists {
		return fmt.Sprintf("No quest with ID '%s'.", c.Args[0])
	}

	completed := make(map[string]bool)
	for _, id := range manager.CompletedIDs() {
		completed[id] = true
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("=== Quest: %s ===\n", q.ID))
	sb.WriteString(fmt.Sprintf("Title:  %s\n", q.Title))
	sb.WriteString(fmt.Sprintf("Status: %s\n", q.Status))
	sb.WriteString(fmt.Sprintf("Type:   %s\n", q.Type))
	if q.Description != "" {
		sb.WriteString(fmt.Sprintf("Description: %s\n", q.Description))
	}
	if q.StartTime != nil {
		sb.WriteString(fmt.Sprintf("Started: %s\n", q.StartTime.Format("2006-01-02 15:04:05")))
	}

	depList := q.DependencyList()
	if len(depList) == 0 {
		sb.WriteString("Dependencies: none")
	} else {
		sb.WriteString("Dependencies:\n")
		for _, dep := range depList {
			mark := "[ ]"
			if completed[dep] {
				mark = "[x]"
			}
			state := "not in engine"
			if depQuest, ok := manager.Get(dep); ok {
				state = string(depQuest.Status)
			}
			sb.WriteString(fmt.Sprintf("  %s %s (%s)\n", mark, dep, state))
		}
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

// executeList shows every quest with its status.
func executeList(c *Command, s SessionInterface) string {
	serverIface := s.GetServer()
	server, ok := serverIface.(ServerInterface)
	if !ok {
		return "Internal error: invalid server type"
	}

	quests := server.GetQuestManager().All()
	if len(quests) == 0 {
		return "No quests in the engine. Use 'add' to create one."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("=== Quests (%d) ===\n", len(quests)))
	for _, q := range quests {
		sb.WriteString(fmt.Sprintf("  [%s] %s - %s\n", q.Status, q.ID, q.Title))
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

// executeAvailable lists quests that are unlocked and not yet started.
func executeAvailable(c *Command, s SessionInterface) string {
	serverIface := s.GetServer()
	server, ok := serverIface.(ServerInterface)
	if !ok {
		return "Internal error: invalid server type"
	}

	available := server.GetQuestManager().ListAvailable()
	if len(available) == 0 {
		return "No quests available."
	}

	var sb strings.Builder
	sb.WriteString("Available quests:\n")
	for _, q := range available {
		sb.WriteString(fmt.Sprintf("  - %s\n", q))
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

// executeStart begins a quest.
func executeStart(c *Command, s SessionInterface) string {
	if err := c.RequireArgs(1, "Usage: start <id>"); err != nil {
		return err.Error()
	}

	serverIface := s.GetServer()
	server, ok := serverIface.(ServerInterface)
	if !ok {
		return "Internal error: invalid server type"
	}

	manager := server.GetQuestManager()
	if err := manager.Start(c.Args[0]); err != nil {
		return fmt.Sprintf("Error starting quest: %v", err)
	}

	q, _ := manager.Get(c.Args[0])
	return fmt.Sprintf("Quest '%s' (ID: %s) started.", q.Title, q.ID)
}

// executeComplete marks an in-progress quest as completed.
func executeComplete(c *Command, s SessionInterface) string {
	if err := c.RequireArgs(1, "Usage: complete <id>"); err != nil {
		return err.Error()
	}

	serverIface := s.GetServer()
	server, ok := serverIface.(ServerInterface)
	if !ok {
		return "Internal error: invalid server type"
	}

	manager := server.GetQuestManager()
	if err := manager.Complete(c.Args[0]); err != nil {
		return fmt.Sprintf("Error completing quest: %v", err)
	}

	q, _ := manager.Get(c.Args[0])
	return fmt.Sprintf("Quest '%s' (ID: %s) marked as completed.", q.Title, q.ID)
}

// executeFail marks an in-progress quest as failed.
func executeFail(c *Command, s SessionInterface) string {
	if err := c.RequireArgs(1, "Usage: fail <id>"); err != nil {
		return err.Error()
	}

	serverIface := s.GetServer()
	server, ok := serverIface.(ServerInterface)
	if !ok {
		return "Internal error: invalid server type"
	}

	manager := server.GetQuestManager()
	if err := manager.Fail(c.Args[0]); err != nil {
		return fmt.Sprintf("Error failing quest: %v", err)
	}

	q, _ := manager.Get(c.Args[0])
	return fmt.Sprintf("Quest '%s' (ID: %s) marked as failed.", q.Title, q.ID)
}

// executeReset returns a repeatable quest to its initial state.
func executeReset(c *Command, s SessionInterface) string {
	if err := c.RequireArgs(1, "Usage: reset <id>"); err != nil {
		return err.Error()
	}

	serverIface := s.GetServer()
	server, ok := serverIface.(ServerInterface)
	if !ok {
		return "Internal error: invalid server type"
	}

	manager := server.GetQuestManager()
	if err := manager.Reset(c.Args[0]); err != nil {
		return fmt.Sprintf("Error resetting quest: %v", err)
	}

	q, _ := manager.Get(c.Args[0])
	return fmt.Sprintf("Quest '%s' (ID: %s) reset to not started.", q.Title, q.ID)
}

// executeCycles reports whether the dependency graph contains cycles.
func executeCycles(c *Command, s SessionInterface) string {
	serverIface := s.GetServer()
	server, ok := serverIface.(ServerInterface)
	if !ok {
		return "Internal error: invalid server type"
	}

	if server.GetQuestManager().HasCycles() {
		return "Warning: cyclic dependencies detected in the system!"
	}
	return "No cyclic dependencies detected."
}

// executeOrder prints a dependency-respecting completion order.
func executeOrder(c *Command, s SessionInterface) string {
	serverIface := s.GetServer()
	server, ok := serverIface.(ServerInterface)
	if !ok {
		return "Internal error: invalid server type"
	}

	manager := server.GetQuestManager()
	order, err := manager.CompletionOrder()
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if len(order) == 0 {
		return "No quests available to order."
	}

	var sb strings.Builder
	sb.WriteString("Recommended quest completion order:\n")
	for i, id := range order {
		title := ""
		if q, ok := manager.Get(id); ok {
			title = fmt.Sprintf(" (%s)", q.Title)
		}
		sb.WriteString(fmt.Sprintf("  %d. %s%s\n", i+1, id, title))
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

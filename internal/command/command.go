package command

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lawnchairsociety/questline/internal/help"
	"github.com/lawnchairsociety/questline/internal/quest"
)

// ServerInterface defines the methods we need from the server.
// To avoid circular dependencies, sessions hand it back as interface{}.
type ServerInterface interface {
	GetQuestManager() *quest.Manager
	GetDatabase() interface{} // Returns *database.Database, or nil when journaling is off
	SaveSnapshot(path string) error
	LoadSnapshot(path string) (int, error)
	GetSnapshotPath() string
	GetSessionCount() int
	GetUptime() time.Duration
}

// SessionInterface defines the methods we need from a connected session.
// These are satisfied by *server.Session.
type SessionInterface interface {
	GetKeyName() string
	GetRemoteAddr() string
	Disconnect()
	GetServer() interface{} // Returns a ServerInterface (avoid circular dependency)
}

type Command struct {
	Name string
	Args []string
}

// RequireArgs checks if the command has at least the minimum number of arguments
// Returns an error with the usage message if not enough arguments are provided
func (c *Command) RequireArgs(min int, usage string) error {
	if len(c.Args) < min {
		return errors.New(usage)
	}
	return nil
}

func ParseCommand(input string) *Command {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return &Command{Name: "", Args: []string{}}
	}

	return &Command{
		Name: strings.ToLower(parts[0]),
		Args: parts[1:],
	}
}

func (c *Command) Execute(sessionIface interface{}) string {
	// Type assertion to interface type
	s, ok := sessionIface.(SessionInterface)
	if !ok {
		return "Internal error: invalid session type"
	}

	switch c.Name {
	case "":
		return ""
	case "help", "?":
		return c.executeHelp()
	case "add", "create":
		return executeAdd(c, s)
	case "show", "info", "view":
		return executeShow(c, s)
	case "list", "ls", "all":
		return executeList(c, s)
	case "available", "avail", "unlocked":
		return executeAvailable(c, s)
	case "start", "begin":
		return executeStart(c, s)
	case "complete", "finish", "done":
		return executeComplete(c, s)
	case "fail":
		return executeFail(c, s)
	case "reset":
		return executeReset(c, s)
	case "cycles", "cycle":
		return executeCycles(c, s)
	case "order", "plan":
		return executeOrder(c, s)
	case "save":
		return executeSave(c, s)
	case "load":
		return executeLoad(c, s)
	case "journal", "history":
		return executeJournal(c, s)
	case "stats":
		return executeStats(c, s)
	case "quit", "exit":
		return c.executeQuit(s)
	default:
		return fmt.Sprintf("Unknown command: %s. Type 'help' for available commands.", c.Name)
	}
}

func (c *Command) executeQuit(s SessionInterface) string {
	s.Disconnect()
	return "Goodbye!"
}

func (c *Command) executeHelp() string {
	// Get topic from args
	topic := ""
	if len(c.Args) > 0 {
		topic = strings.ToLower(strings.Join(c.Args, " "))
	}

	// Prefer operator-provided help topics when loaded
	if h := help.GetInstance(); h != nil {
		return h.GetHelpText(topic)
	}

	return c.getHelpText(topic)
}

func (c *Command) getHelpText(topic string) string {

	// Topic-specific help
	switch topic {
	case "add", "create":
		return `ADD <id> [deps=a,b,c] <title>
Add a new quest to the engine.

Usage:
  add gather-wood Gather some firewood
  add build-raft deps=gather-wood,find-rope Build a raft

The optional deps= argument lists quest IDs that must be completed
before this quest can be started. Everything after the ID (and the
deps= argument, if present) becomes the quest title.

Aliases: create`

	case "show", "info", "view":
		return `SHOW <id>
Display full details for a single quest: title, status, type,
description, and its dependencies with their completion state.

Usage:
  show gather-wood

Aliases: info, view`

	case "list", "ls", "all":
		return `LIST
List every quest in the engine, sorted by ID, with its status.

Aliases: ls, all`

	case "available", "avail", "unlocked":
		return `AVAILABLE
List quests that can be started right now: not yet started, with
every dependency completed.

Aliases: avail, unlocked`

	case "start", "begin":
		return `START <id>
Start a quest. Fails if the quest is already underway or finished,
or if any of its dependencies are not completed yet.

Usage:
  start gather-wood

Aliases: begin`

	case "complete", "finish", "done":
		return `COMPLETE <id>
Mark an in-progress quest as completed. Completing a quest may
unlock other quests that depend on it.

Usage:
  complete gather-wood

Aliases: finish, done`

	case "fail":
		return `FAIL <id>
Mark an in-progress quest as failed. Failed quests stay failed
unless they are repeatable, in which case 'reset' returns them
to the start.

Usage:
  fail gather-wood`

	case "reset":
		return `RESET <id>
Reset a repeatable quest back to its initial state so it can be
started again. Only repeatable quests can be reset.

Usage:
  reset daily-patrol`

	case "cycles", "cycle":
		return `CYCLES
Check the dependency graph for cycles. A cycle means some group of
quests depend on each other and none of them can ever be started.

Aliases: cycle`

	case "order", "plan":
		return `ORDER
Compute a recommended completion order for all quests, honoring
every dependency. Fails if the graph contains cycles.

Aliases: plan`

	case "save":
		return `SAVE [path]
Save all quests to a snapshot file. Without a path, saves to the
server's configured snapshot location.

Usage:
  save
  save /tmp/quests.json`

	case "load":
		return `LOAD [path]
Replace all quests with the contents of a snapshot file. Without a
path, loads from the server's configured snapshot location.

Usage:
  load
  load /tmp/quests.json`

	case "journal", "history":
		return `JOURNAL [id]
Show recent quest transitions recorded in the journal. With an ID,
shows the full history of that quest.

Usage:
  journal
  journal gather-wood

Aliases: history`

	case "stats":
		return `STATS
Show engine statistics: quest counts by status, journal size,
connected sessions, and server uptime.`

	case "quit", "exit":
		return `QUIT
Disconnect from the server.

Aliases: exit`

	case "":
		return `Available commands:

Quests:
  add <id> [deps=a,b] <title>  - Add a new quest
  show <id>                    - Show quest details
  list                         - List all quests
  available                    - List quests ready to start

Lifecycle:
  start <id>                   - Start a quest
  complete <id>                - Complete an in-progress quest
  fail <id>                    - Fail an in-progress quest
  reset <id>                   - Reset a repeatable quest

Graph:
  cycles                       - Check for dependency cycles
  order                        - Recommended completion order

Data:
  save [path]                  - Save quests to a snapshot
  load [path]                  - Load quests from a snapshot
  journal [id]                 - Show recorded transitions
  stats                        - Engine statistics

Other:
  help [command]               - Show help for a command
  quit                         - Disconnect

Type 'help <command>' for details on a specific command.`

	default:
		return fmt.Sprintf("No help available for '%s'.\nType 'help' for a list of commands.", topic)
	}
}

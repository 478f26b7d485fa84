package server

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lawnchairsociety/questline/internal/command"
	"github.com/lawnchairsociety/questline/internal/logger"
)

// Session is one authenticated shell connection. It satisfies
// command.SessionInterface so commands can reach back to the server.
type Session struct {
	client  Client
	server  *Server
	keyName string

	mu           sync.Mutex
	disconnected bool
	lastActivity time.Time
}

func NewSession(client Client, server *Server, keyName string) *Session {
	return &Session{
		client:       client,
		server:       server,
		keyName:      keyName,
		lastActivity: time.Now(),
	}
}

// GetKeyName returns the name of the API key this session authenticated with.
func (sess *Session) GetKeyName() string {
	return sess.keyName
}

// GetRemoteAddr returns the client's address for logging.
func (sess *Session) GetRemoteAddr() string {
	return sess.client.RemoteAddr()
}

// GetServer returns the server as interface{} to satisfy the command
// package without a circular import.
func (sess *Session) GetServer() interface{} {
	return sess.server
}

// SendMessage writes a message to the client. Errors are ignored; a dead
// connection surfaces in the read loop.
func (sess *Session) SendMessage(message string) {
	sess.mu.Lock()
	if sess.disconnected {
		sess.mu.Unlock()
		return
	}
	sess.mu.Unlock()

	if err := sess.client.WriteLine(message); err != nil {
		logger.Debug("Failed to write to client",
			"remote_addr", sess.client.RemoteAddr(),
			"error", err)
	}
}

// Disconnect marks the session as finished and closes the connection.
func (sess *Session) Disconnect() {
	sess.mu.Lock()
	if sess.disconnected {
		sess.mu.Unlock()
		return
	}
	sess.disconnected = true
	sess.mu.Unlock()

	sess.client.Close()
}

// IsDisconnected reports whether Disconnect has been called.
func (sess *Session) IsDisconnected() bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.disconnected
}

// IsIdle reports whether the session has been inactive longer than timeout.
func (sess *Session) IsIdle(timeout time.Duration) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return time.Since(sess.lastActivity) > timeout
}

func (sess *Session) updateActivity() {
	sess.mu.Lock()
	sess.lastActivity = time.Now()
	sess.mu.Unlock()
}

// Run reads commands from the client until it disconnects.
func (sess *Session) Run() {
	sess.SendMessage(fmt.Sprintf("\nAuthenticated as '%s'.\n", sess.keyName))
	sess.SendMessage("Type 'help' for a list of commands.\n\n")
	sess.SendMessage("> ")

	for {
		line, err := sess.client.ReadLine()
		if err != nil {
			return
		}
		if sess.IsDisconnected() {
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			sess.SendMessage("> ")
			continue
		}

		sess.updateActivity()

		// Parse and execute command
		cmd := command.ParseCommand(input)
		result := cmd.Execute(sess)
		if result != "" {
			sess.SendMessage(result + "\n")
		}

		if sess.IsDisconnected() {
			return
		}
		sess.SendMessage("> ")
	}
}

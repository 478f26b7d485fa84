package server

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lawnchairsociety/questline/internal/config"
	"github.com/lawnchairsociety/questline/internal/database"
	"github.com/lawnchairsociety/questline/internal/logger"
	"github.com/lawnchairsociety/questline/internal/quest"
)

type Server struct {
	address      string
	listener     net.Listener
	manager      *quest.Manager
	db           *database.Database
	sessions     map[string]*Session
	mu           sync.RWMutex
	shutdown     chan struct{}
	shutdownOnce sync.Once
	StartTime    time.Time
	serverConfig *config.ServerConfig
	dataConfig   *config.DataConfig
	staticKeys   map[string]string
	connLimiter  *ConnLimiter
	authLimiter  *AuthRateLimiter
}

func NewServer(address string, manager *quest.Manager) *Server {
	return &Server{
		address:   address,
		manager:   manager,
		sessions:  make(map[string]*Session),
		shutdown:  make(chan struct{}),
		StartTime: time.Now(),
	}
}

// SetDatabase sets the database connection for the server
func (s *Server) SetDatabase(db *database.Database) {
	s.db = db
}

func (s *Server) SetServerConfig(cfg *config.ServerConfig) {
	s.serverConfig = cfg
	// Initialize connection limiter with the new config
	s.connLimiter = NewConnLimiter(cfg.Connections)
	// Initialize auth rate limiter
	s.authLimiter = NewAuthRateLimiter(cfg.RateLimit)
}

func (s *Server) SetDataConfig(cfg *config.DataConfig) {
	s.dataConfig = cfg
}

// SetStaticKeys installs config-provisioned API keys accepted by the
// shell without a database lookup.
func (s *Server) SetStaticKeys(keys map[string]string) {
	s.staticKeys = keys
}

func (s *Server) GetServerConfig() *config.ServerConfig {
	if s.serverConfig == nil {
		return &config.DefaultConfig().Server
	}
	return s.serverConfig
}

// GetQuestManager returns the quest manager shared by all sessions.
func (s *Server) GetQuestManager() *quest.Manager {
	return s.manager
}

// GetDatabase returns the database as interface{} to satisfy the command
// package without a circular import. Nil when journaling is disabled.
func (s *Server) GetDatabase() interface{} {
	return s.db
}

func (s *Server) GetUptime() time.Duration {
	return time.Since(s.StartTime)
}

// GetSessionCount returns the number of authenticated shell sessions.
func (s *Server) GetSessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener

	logger.Info("Shell listening", "address", s.address)

	// Start the idle timeout checker
	go s.startIdleTimeoutTicker()

	// Start the auto-save ticker
	go s.startAutoSaveTicker()

	for {
		select {
		case <-s.shutdown:
			return nil
		default:
			conn, err := s.listener.Accept()
			if err != nil {
				// Check if we're shutting down
				select {
				case <-s.shutdown:
					return nil
				default:
					logger.Error("Error accepting connection", "error", err)
					continue
				}
			}

			go s.handleConnection(conn)
		}
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	remoteAddr := conn.RemoteAddr().String()
	ip := extractIP(remoteAddr)

	// Check connection limits
	if s.connLimiter != nil && !s.connLimiter.TryAcquire(ip) {
		logger.Warning("Connection rejected - limit exceeded",
			"remote_addr", remoteAddr,
			"ip", ip)
		conn.Write([]byte("Too many connections. Please try again later.\r\n"))
		conn.Close()
		return
	}

	defer func() {
		if s.connLimiter != nil {
			s.connLimiter.Release(ip)
		}
		conn.Close()
	}()

	client := NewTelnetClient(conn)
	s.handleClient(client)
}

// handleClient is the shared client handling logic for both telnet and WebSocket.
func (s *Server) handleClient(client Client) {
	remoteAddr := client.RemoteAddr()
	logger.Info("Client connected", "remote_addr", remoteAddr)

	// Handle authentication
	keyName, err := s.handleAuth(client)
	if err != nil {
		logger.Info("Authentication failed", "remote_addr", remoteAddr, "error", err)
		return
	}

	session := NewSession(client, s, keyName)

	s.mu.Lock()
	s.sessions[remoteAddr] = session
	s.mu.Unlock()

	defer func() {
		logger.Info("Client disconnected", "remote_addr", remoteAddr, "key_name", keyName)

		s.mu.Lock()
		delete(s.sessions, remoteAddr)
		s.mu.Unlock()
	}()

	session.Run()
}

// StartWebSocket starts the WebSocket server on the given address.
func (s *Server) StartWebSocket(address string) error {
	http.HandleFunc("/ws", s.handleWebSocketUpgrade)

	logger.Info("WebSocket shell listening", "address", address)
	return http.ListenAndServe(address, nil)
}

// handleWebSocketUpgrade upgrades an HTTP connection to WebSocket.
func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	// Get the real client IP (supports X-Forwarded-For from reverse proxies)
	clientIP := getRealIP(r)

	// Check connection limits before upgrading
	if s.connLimiter != nil && !s.connLimiter.TryAcquire(clientIP) {
		logger.Warning("WebSocket connection rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", clientIP)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	// Create upgrader with origin check based on server config
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			cfg := s.GetServerConfig()
			allowed := cfg.WebSocket.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("WebSocket connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", "error", err)
		// Release the connection slot since upgrade failed
		if s.connLimiter != nil {
			s.connLimiter.Release(clientIP)
		}
		return
	}

	go s.handleWebSocketConnection(wsConn, clientIP)
}

// handleWebSocketConnection handles a WebSocket client connection.
func (s *Server) handleWebSocketConnection(wsConn *websocket.Conn, clientIP string) {
	defer func() {
		if s.connLimiter != nil {
			s.connLimiter.Release(clientIP)
		}
		wsConn.Close()
	}()

	if cfg := s.GetServerConfig(); cfg.WebSocket.MaxMessageSize > 0 {
		wsConn.SetReadLimit(cfg.WebSocket.MaxMessageSize)
	}

	client := NewWebSocketClient(wsConn)
	s.handleClient(client)
}

// getRealIP extracts the real client IP from an HTTP request.
// It checks X-Forwarded-For header first (for reverse proxy setups),
// then falls back to the direct remote address.
func getRealIP(r *http.Request) string {
	// Check X-Forwarded-For header (set by reverse proxies like nginx)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// X-Forwarded-For can contain multiple IPs: "client, proxy1, proxy2"
		// The first one is the original client
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			clientIP := strings.TrimSpace(ips[0])
			if clientIP != "" {
				return clientIP
			}
		}
	}

	// Check X-Real-IP header (alternative header used by some proxies)
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to direct remote address
	return extractIP(r.RemoteAddr)
}

func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)
		if s.listener != nil {
			s.listener.Close()
		}

		// Stop the auth rate limiter
		if s.authLimiter != nil {
			s.authLimiter.Stop()
		}

		// Disconnect all sessions
		s.mu.Lock()
		sessions := make([]*Session, 0, len(s.sessions))
		for _, session := range s.sessions {
			sessions = append(sessions, session)
		}
		s.mu.Unlock()

		for _, session := range sessions {
			session.SendMessage("\n*** Server is shutting down. ***\n")
			session.Disconnect()
		}

		// Final snapshot before exit
		path := s.GetSnapshotPath()
		if err := s.SaveSnapshot(path); err != nil {
			logger.Error("Failed to save snapshot on shutdown", "path", path, "error", err)
		} else {
			logger.Info("Saved snapshot on shutdown", "path", path)
		}

		logger.Info("Server shutdown complete")
	})
}

// startIdleTimeoutTicker runs a background ticker that disconnects idle sessions
func (s *Server) startIdleTimeoutTicker() {
	ticker := time.NewTicker(1 * time.Minute) // Check every minute
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdown:
			return
		case <-ticker.C:
			s.checkIdleSessions()
		}
	}
}

func (s *Server) checkIdleSessions() {
	// Get timeout from config (0 means disabled)
	timeoutSeconds := 0
	if s.serverConfig != nil {
		timeoutSeconds = s.serverConfig.IdleTimeoutSeconds
	}
	if timeoutSeconds <= 0 {
		return // Idle timeout disabled
	}

	timeout := time.Duration(timeoutSeconds) * time.Second

	s.mu.RLock()
	var idleSessions []*Session
	for _, session := range s.sessions {
		if session.IsIdle(timeout) {
			idleSessions = append(idleSessions, session)
		}
	}
	s.mu.RUnlock()

	for _, session := range idleSessions {
		logger.Info("Disconnecting idle session",
			"remote_addr", session.GetRemoteAddr(),
			"idle_seconds", timeoutSeconds)
		session.SendMessage("\n\n*** You have been disconnected due to inactivity. ***\n")
		session.Disconnect()
	}
}

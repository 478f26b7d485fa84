package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lawnchairsociety/questline/internal/api"
	"github.com/lawnchairsociety/questline/internal/config"
	"github.com/lawnchairsociety/questline/internal/database"
	"github.com/lawnchairsociety/questline/internal/help"
	"github.com/lawnchairsociety/questline/internal/logger"
	"github.com/lawnchairsociety/questline/internal/quest"
	"github.com/lawnchairsociety/questline/internal/server"
)

func main() {
	// Parse command-line flags
	configFile := flag.String("config", "data/questd.yaml", "Path to service config YAML file")
	telnetAddr := flag.String("telnet", "", "Telnet shell listen address (overrides config)")
	wsAddr := flag.String("ws", "", "WebSocket shell listen address (overrides config)")
	apiAddr := flag.String("api", "", "HTTP API listen address (overrides config)")
	snapshotFile := flag.String("snapshot", "", "Path to quest snapshot file (overrides config)")
	catalogPath := flag.String("catalog", "", "Path to quest catalog file or directory (overrides config)")
	helpFile := flag.String("help", "data/help.yaml", "Path to help YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	noLoad := flag.Bool("no-load", false, "Skip loading the snapshot at startup")
	flag.Parse()

	// Initialize logger first (before any logging)
	logConfig, _ := logger.LoadConfig(*loggingConfig)
	logger.Initialize(logConfig)

	logger.Info("Starting Questline Server")

	// Load service config
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Warning("Failed to load service config, using defaults", "path", *configFile, "error", err)
		cfg = config.DefaultConfig()
	}

	// Apply command-line overrides
	if *telnetAddr != "" {
		cfg.Server.TelnetAddress = *telnetAddr
	}
	if *wsAddr != "" {
		cfg.Server.WebSocketAddress = *wsAddr
	}
	if *apiAddr != "" {
		cfg.API.Address = *apiAddr
	}
	if *snapshotFile != "" {
		cfg.Data.SnapshotPath = *snapshotFile
	}
	if *catalogPath != "" {
		cfg.Data.CatalogPath = *catalogPath
	}

	manager := quest.NewManager()

	// Seed the manager from the authored catalog, if configured
	if cfg.Data.CatalogPath != "" {
		count, err := loadCatalog(manager, cfg.Data.CatalogPath)
		if err != nil {
			log.Fatalf("Failed to load quest catalog: %v", err)
		}
		logger.Info("Quest catalog loaded", "path", cfg.Data.CatalogPath, "quests", count)
	}

	// Restore quest state from the last snapshot, if one exists. Snapshot
	// state wins over catalog seeds: LoadFile is a full replace.
	if !*noLoad {
		if _, err := os.Stat(cfg.Data.SnapshotPath); err == nil {
			count, err := manager.LoadFile(cfg.Data.SnapshotPath)
			if err != nil {
				log.Fatalf("Failed to load snapshot: %v", err)
			}
			logger.Info("Snapshot restored", "path", cfg.Data.SnapshotPath, "quests", count)
		} else {
			logger.Info("No snapshot found, starting fresh", "path", cfg.Data.SnapshotPath)
		}
	}

	// Load help system
	if err := help.Initialize(*helpFile); err != nil {
		logger.Warning("Failed to load help config, using built-in help", "path", *helpFile, "error", err)
	} else {
		logger.Info("Help system loaded", "path", *helpFile)
	}

	// Open the database for API keys and the transition journal
	db, err := database.Open(databaseConfig(cfg))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	logger.Info("Database initialized", "driver", cfg.Database.Driver)

	// Record every committed transition in the journal. Journal failures
	// never block quest operations.
	manager.SetTransitionHook(func(questID string, from, to quest.Status) {
		op := operationName(from, to)
		if err := db.RecordTransition(questID, string(from), string(to), op); err != nil {
			logger.Error("Failed to record transition", "quest_id", questID, "error", err)
		}
	})

	// Create the shell server
	srv := server.NewServer(cfg.Server.TelnetAddress, manager)
	srv.SetDatabase(db)
	srv.SetServerConfig(&cfg.Server)
	srv.SetDataConfig(&cfg.Data)
	srv.SetStaticKeys(cfg.API.StaticKeys)

	if len(cfg.Server.WebSocket.AllowedOrigins) == 0 {
		logger.Info("WebSocket CORS policy", "mode", "same-origin")
	} else if len(cfg.Server.WebSocket.AllowedOrigins) == 1 && cfg.Server.WebSocket.AllowedOrigins[0] == "*" {
		logger.Warning("WebSocket CORS allows all origins (not recommended for production)")
	} else {
		logger.Info("WebSocket CORS policy", "allowed_origins", cfg.Server.WebSocket.AllowedOrigins)
	}

	// Start telnet shell in a goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("Telnet server error: %v", err)
		}
	}()

	// Start WebSocket shell in a goroutine
	go func() {
		if err := srv.StartWebSocket(cfg.Server.WebSocketAddress); err != nil {
			log.Fatalf("WebSocket server error: %v", err)
		}
	}()

	// Start the HTTP API in a goroutine
	var apiSrv *api.Server
	if cfg.API.Enabled {
		apiSrv = api.NewServer(cfg.API, cfg.Data, manager)
		apiSrv.SetKeyValidator(db)
		if cfg.API.EnableTestingEndpoints {
			logger.Warning("Testing endpoints enabled (never enable in production)")
		}
		go func() {
			if err := apiSrv.Listen(); err != nil {
				log.Fatalf("API server error: %v", err)
			}
		}()
	}

	logger.Info("Questline running",
		"telnet", cfg.Server.TelnetAddress,
		"websocket", cfg.Server.WebSocketAddress,
		"api", cfg.API.Address,
		"api_enabled", cfg.API.Enabled)
	logger.Info("Press Ctrl+C to shutdown")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server")
	if apiSrv != nil {
		if err := apiSrv.Shutdown(); err != nil {
			logger.Error("API shutdown error", "error", err)
		}
	}
	srv.Shutdown()
	logger.Info("Server stopped")
}

// loadCatalog seeds the manager from a catalog file or directory.
func loadCatalog(manager *quest.Manager, path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}

	var catalog *quest.Catalog
	if info.IsDir() {
		catalog, err = quest.LoadCatalogDirectory(path)
	} else {
		catalog, err = quest.LoadCatalogFile(path)
	}
	if err != nil {
		return 0, err
	}
	return manager.LoadCatalog(catalog)
}

// databaseConfig maps the service config onto the database package config.
func databaseConfig(cfg *config.Config) database.Config {
	dbCfg := database.Config{
		Driver:     cfg.Database.Driver,
		SQLitePath: cfg.Database.SQLite.Path,
	}
	if cfg.Database.Driver == "postgres" {
		dbCfg.Postgres = database.DefaultPostgresConfig()
		dbCfg.Postgres.Host = cfg.Database.Postgres.Host
		dbCfg.Postgres.Port = cfg.Database.Postgres.Port
		dbCfg.Postgres.User = cfg.Database.Postgres.User
		dbCfg.Postgres.Password = cfg.Database.Postgres.Password
		dbCfg.Postgres.Database = cfg.Database.Postgres.Database
		dbCfg.Postgres.SSLMode = cfg.Database.Postgres.SSLMode
	}
	return dbCfg
}

// operationName maps a committed transition to the operation that caused it.
func operationName(from, to quest.Status) string {
	switch {
	case to == quest.StatusInProgress:
		return "start"
	case to == quest.StatusCompleted:
		return "complete"
	case to == quest.StatusFailed:
		return "fail"
	case to == quest.StatusNotStarted && from == quest.StatusCompleted:
		return "reset"
	default:
		return "unknown"
	}
}

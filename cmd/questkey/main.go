// questkey manages API keys for the questline server.
//
// Usage:
//
//	go run ./cmd/questkey -config data/questd.yaml -create ci-pipeline
//	go run ./cmd/questkey -config data/questd.yaml -revoke ci-pipeline
//	go run ./cmd/questkey -config data/questd.yaml -list
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lawnchairsociety/questline/internal/config"
	"github.com/lawnchairsociety/questline/internal/database"
)

func main() {
	configFile := flag.String("config", "data/questd.yaml", "Path to service config YAML file")
	create := flag.String("create", "", "Create a new API key with the given name and print it")
	revoke := flag.String("revoke", "", "Revoke the API key with the given name")
	list := flag.Bool("list", false, "List all API keys")
	flag.Parse()

	actions := 0
	if *create != "" {
		actions++
	}
	if *revoke != "" {
		actions++
	}
	if *list {
		actions++
	}
	if actions != 1 {
		fmt.Fprintln(os.Stderr, "Specify exactly one of -create, -revoke, or -list")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config %s: %v\n", *configFile, err)
		os.Exit(1)
	}

	db, err := database.Open(databaseConfig(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	switch {
	case *create != "":
		handleCreate(db, *create)
	case *revoke != "":
		handleRevoke(db, *revoke)
	case *list:
		handleList(db)
	}
}

func handleCreate(db *database.Database, name string) {
	_, plaintext, err := db.CreateAPIKey(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create key: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("API key '%s' created.\n\n", name)
	fmt.Printf("  %s\n\n", plaintext)
	fmt.Println("Store this key now. Only its hash is kept in the database,")
	fmt.Println("so it cannot be shown again.")
}

func handleRevoke(db *database.Database, name string) {
	if err := db.RevokeAPIKey(name); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to revoke key: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("API key '%s' revoked.\n", name)
}

func handleList(db *database.Database) {
	keys, err := db.ListAPIKeys()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list keys: %v\n", err)
		os.Exit(1)
	}

	if len(keys) == 0 {
		fmt.Println("No API keys.")
		return
	}

	fmt.Printf("%-24s %-20s %s\n", "NAME", "CREATED", "STATUS")
	for _, k := range keys {
		status := "active"
		if k.Revoked {
			status = "revoked"
		}
		fmt.Printf("%-24s %-20s %s\n", k.Name, k.CreatedAt.Format("2006-01-02 15:04:05"), status)
	}
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

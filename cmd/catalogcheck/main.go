// catalogcheck validates quest data files without starting a server.
// It loads a YAML catalog and/or a JSON snapshot into a fresh manager,
// reports what loaded, and runs the graph checks an operator cares
// about before shipping the data: cycles and a completion order.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lawnchairsociety/questline/internal/logger"
	"github.com/lawnchairsociety/questline/internal/quest"
)

func main() {
	catalogPath := flag.String("catalog", "", "Path to a quest catalog YAML file or directory")
	snapshotPath := flag.String("snapshot", "", "Path to a quest snapshot JSON file")
	flag.Parse()

	if *catalogPath == "" && *snapshotPath == "" {
		fmt.Fprintln(os.Stderr, "Specify -catalog and/or -snapshot")
		flag.Usage()
		os.Exit(2)
	}

	// Warnings from snapshot loading (pruned dependencies, skipped
	// records) go to stdout so they are visible without a log file.
	logger.Initialize(logger.Config{Level: "warning", ConsoleEnabled: true, ConsoleFormat: "text"})

	manager := quest.NewManager()
	failed := false

	if *catalogPath != "" {
		count, err := loadCatalog(manager, *catalogPath)
		if err != nil {
			fmt.Printf("Catalog %s: INVALID\n  %v\n", *catalogPath, err)
			failed = true
		} else {
			fmt.Printf("Catalog %s: %d quests\n", *catalogPath, count)
		}
	}

	if *snapshotPath != "" {
		count, err := manager.LoadFile(*snapshotPath)
		if err != nil {
			fmt.Printf("Snapshot %s: INVALID\n  %v\n", *snapshotPath, err)
			failed = true
		} else {
			fmt.Printf("Snapshot %s: %d quests\n", *snapshotPath, count)
		}
	}

	if failed {
		os.Exit(1)
	}

	fmt.Printf("\nQuests: %d, completed: %d\n", manager.Count(), len(manager.CompletedIDs()))

	if manager.HasCycles() {
		fmt.Println("\nCycle check: FAILED - the dependency graph contains cycles")
		os.Exit(1)
	}
	fmt.Println("\nCycle check: ok")

	order, err := manager.CompletionOrder()
	if err != nil {
		fmt.Printf("Completion order: FAILED - %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Completion order:")
	for i, id := range order {
		title := ""
		if q, ok := manager.Get(id); ok {
			title = " - " + q.Title
		}
		fmt.Printf("  %d. %s%s\n", i+1, id, title)
	}

	available := manager.ListAvailable()
	fmt.Printf("\nAvailable now: %d\n", len(available))
	for _, q := range available {
		fmt.Printf("  - %s (%s)\n", q.ID, q.Title)
	}
}

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

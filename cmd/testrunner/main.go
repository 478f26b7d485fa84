package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lawnchairsociety/questline/test"
)

func main() {
	serverAddr := flag.String("addr", "localhost:4000", "Quest server shell address")
	apiKey := flag.String("key", test.APIKey, "API key the test server accepts")
	filter := flag.String("run", "", "Only run tests whose names contain this string")
	listTests := flag.Bool("list", false, "List available tests and exit")
	verbose := flag.Bool("v", false, "Verbose output - show detailed actions for each test")
	flag.Parse()

	if *listTests {
		for _, name := range test.GetTestNames() {
			fmt.Println(name)
		}
		return
	}

	// Set verbose mode and API key
	test.Verbose = *verbose
	test.APIKey = *apiKey

	fmt.Printf("Running integration tests against %s\n", *serverAddr)
	fmt.Println("Make sure the quest server is running!")
	if *verbose {
		fmt.Println("Verbose mode enabled - showing detailed test actions")
	}
	fmt.Println()

	var results []test.TestResult
	if *filter != "" {
		results = test.RunFilteredTests(*serverAddr, *filter)
	} else {
		results = test.RunAllTests(*serverAddr)
	}
	test.PrintResults(results)

	// Exit with error code if any tests failed
	for _, result := range results {
		if !result.Passed {
			os.Exit(1)
		}
	}
}

package test

import (
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"

	_ "modernc.org/sqlite"
)

// uniqueCounter provides unique quest IDs within a single run
var uniqueCounter uint64

// uniqueName generates a unique quest ID by appending a letter-based suffix.
// All scenarios share one engine, so every scenario must mint its own IDs
// to avoid AlreadyExists collisions with earlier runs against the same server.
func uniqueName(base string) string {
	counter := atomic.AddUint64(&uniqueCounter, 1)
	suffix := counterToLetters(counter)
	return base + "-" + suffix
}

// counterToLetters converts a number to a letter sequence (1=a, 2=b, ..., 26=z, 27=aa, 28=ab, ...)
func counterToLetters(n uint64) string {
	if n == 0 {
		return "a"
	}
	result := ""
	for n > 0 {
		n-- // Make it 0-indexed
		result = string(rune('a'+(n%26))) + result
		n /= 26
	}
	return result
}

// Verbose controls whether detailed logging is shown during tests
var Verbose = false

// APIKey is the key scenarios authenticate with. The target server must
// accept it (static_keys in the test config or a key created with questkey).
var APIKey = "questline-test-key"

// TestDBPath is where the test server keeps its sqlite database. Scenarios
// that inspect the journal directly read from here; they skip the direct
// check when the file does not exist.
var TestDBPath = "data/test/questline_test.db"

// TestResult represents the result of a test
type TestResult struct {
	Name    string
	Passed  bool
	Message string
}

// logAction logs a test action when verbose mode is enabled
func logAction(testName, action string) {
	if Verbose {
		fmt.Printf("  [%s] %s\n", testName, action)
	}
}

// logResult logs an expected vs actual result when verbose mode is enabled
func logResult(testName string, success bool, detail string) {
	if Verbose {
		status := "OK"
		if !success {
			status = "FAIL"
		}
		fmt.Printf("  [%s] %s: %s\n", testName, status, detail)
	}
}

// =============================================================================
// Test Runner
// =============================================================================

// RunAllTests runs all integration tests
func RunAllTests(serverAddr string) []TestResult {
	results := make([]TestResult, 0)

	for _, t := range getAllTests() {
		results = append(results, t.Func(serverAddr))
	}

	return results
}

// testEntry holds a test function and its name
type testEntry struct {
	Name string
	Func func(string) TestResult
}

// getAllTests returns all test entries in order. The cycle detection
// scenario must stay after the completion order scenarios: it plants a
// dependency cycle in the shared engine, and every 'order' command issued
// afterwards reports a conflict.
func getAllTests() []testEntry {
	return []testEntry{
		// Group 1: Connection & Authentication
		{"Basic Connection", TestBasicConnection},
		{"Invalid Key Rejected", TestInvalidKeyRejected},
		{"Empty Key Rejected", TestEmptyKeyRejected},
		{"Multiple Clients", TestMultipleClients},
		{"Help Command", TestHelpCommand},
		{"Help Topic", TestHelpTopic},
		{"Unknown Command", TestUnknownCommand},
		{"Quit Command", TestQuitCommand},

		// Group 2: Quest Graph
		{"Add Quest", TestAddQuest},
		{"Add Quest With Dependencies", TestAddQuestWithDependencies},
		{"Duplicate Quest Rejected", TestDuplicateQuestRejected},
		{"Show Quest", TestShowQuest},
		{"Show Missing Quest", TestShowMissingQuest},
		{"List Quests", TestListQuests},
		{"Available Quests", TestAvailableQuests},
		{"Dependency Gating", TestDependencyGating},
		{"Completion Order", TestCompletionOrder},

		// Group 3: Lifecycle
		{"Start Quest", TestStartQuest},
		{"Start Blocked Quest", TestStartBlockedQuest},
		{"Start Missing Quest", TestStartMissingQuest},
		{"Complete Quest", TestCompleteQuest},
		{"Complete Without Start", TestCompleteWithoutStart},
		{"Fail Quest", TestFailQuest},
		{"Reset Repeatable Quest", TestResetRepeatableQuest},
		{"Reset Non-Repeatable Quest", TestResetNonRepeatable},

		// Group 4: Persistence & Introspection
		{"Save Command", TestSaveCommand},
		{"Save Load Round Trip", TestSaveLoadRoundTrip},
		{"Load Missing File", TestLoadMissingFile},
		{"Stats Command", TestStatsCommand},
		{"Journal Command", TestJournalCommand},
		{"Journal Database", TestJournalDatabase},

		// Group 5: Cycle Detection (keep last: plants a cycle in the engine)
		{"Cycle Detection", TestCycleDetection},
	}
}

// GetTestNames returns the names of all available tests
func GetTestNames() []string {
	tests := getAllTests()
	names := make([]string, len(tests))
	for i, t := range tests {
		names[i] = t.Name
	}
	return names
}

// RunFilteredTests runs only tests whose names contain the filter string (case-insensitive)
func RunFilteredTests(serverAddr string, filter string) []TestResult {
	results := make([]TestResult, 0)
	filterLower := strings.ToLower(filter)

	for _, t := range getAllTests() {
		if strings.Contains(strings.ToLower(t.Name), filterLower) {
			results = append(results, t.Func(serverAddr))
		}
	}

	return results
}

// PrintResults prints all test results in a formatted way
func PrintResults(results []TestResult) {
	passed := 0
	failed := 0

	fmt.Println("============================================================")
	fmt.Println("Integration Test Results")
	fmt.Println("============================================================")
	fmt.Println()

	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
			failed++
		} else {
			passed++
		}
		fmt.Printf("[%s] %s: %s\n", status, r.Name, r.Message)
	}

	fmt.Println()
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Total: %d | Passed: %d | Failed: %d\n", len(results), passed, failed)
	fmt.Println("------------------------------------------------------------")
}

// connectToTestDB opens a connection to the test server's database
func connectToTestDB() (*sql.DB, error) {
	return sql.Open("sqlite", TestDBPath)
}

package test

import (
	"fmt"
	"strings"
	"time"

	"github.com/lawnchairsociety/questline/internal/testclient"
)

// =============================================================================
// Group 2: Quest Graph
// =============================================================================

// TestAddQuest tests adding a quest with no dependencies
func TestAddQuest(serverAddr string) TestResult {
	const testName = "Add Quest"

	client, err := testclient.NewTestClient("AddQuest", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	id := uniqueName("gather-wood")

	logAction(testName, fmt.Sprintf("Adding quest %s...", id))
	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("add %s Gather some firewood", id))

	added := client.WaitForMessage("added successfully", 2*time.Second)
	logResult(testName, added, "Quest added")
	if !added {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Quest not added. Got: %v", client.GetMessages())}
	}

	// The new quest should show up in the list
	client.ClearMessages()
	client.SendCommand("list")
	listed := client.WaitForMessage(id, 2*time.Second)
	logResult(testName, listed, "Quest appears in list")
	if !listed {
		return TestResult{Name: testName, Passed: false, Message: "Added quest missing from list"}
	}

	return TestResult{Name: testName, Passed: true, Message: "Quest added and listed"}
}

// TestAddQuestWithDependencies tests the deps= argument
func TestAddQuestWithDependencies(serverAddr string) TestResult {
	const testName = "Add Quest With Dependencies"

	client, err := testclient.NewTestClient("AddQuestDeps", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	dep := uniqueName("find-rope")
	dependent := uniqueName("build-raft")

	logAction(testName, "Adding prerequisite and dependent quests...")
	client.SendCommand(fmt.Sprintf("add %s Find a length of rope", dep))
	if !client.WaitForMessage("added successfully", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "Prerequisite quest not added"}
	}

	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("add %s deps=%s Build a raft", dependent, dep))
	if !client.WaitForMessage("added successfully", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Dependent quest not added. Got: %v", client.GetMessages())}
	}

	// show must list the dependency as unmet
	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("show %s", dependent))
	hasDep := client.WaitForMessage(dep, 2*time.Second) && client.HasMessage("[ ]")
	logResult(testName, hasDep, "Dependency shown as unmet")
	if !hasDep {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Dependency not shown. Got: %v", client.GetMessages())}
	}

	return TestResult{Name: testName, Passed: true, Message: "Dependencies recorded and displayed"}
}

// TestDuplicateQuestRejected tests that adding the same ID twice fails
func TestDuplicateQuestRejected(serverAddr string) TestResult {
	const testName = "Duplicate Quest Rejected"

	client, err := testclient.NewTestClient("DuplicateQuest", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	id := uniqueName("twice")

	client.SendCommand(fmt.Sprintf("add %s The first one", id))
	if !client.WaitForMessage("added successfully", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "First add failed"}
	}

	logAction(testName, "Adding the same ID again...")
	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("add %s The second one", id))

	rejected := client.WaitForMessage("already exists", 2*time.Second)
	logResult(testName, rejected, "Duplicate rejected")
	if !rejected {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Duplicate not rejected. Got: %v", client.GetMessages())}
	}

	return TestResult{Name: testName, Passed: true, Message: "Duplicate quest ID rejected"}
}

// TestShowQuest tests the show command output
func TestShowQuest(serverAddr string) TestResult {
	const testName = "Show Quest"

	client, err := testclient.NewTestClient("ShowQuest", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	id := uniqueName("showme")
	client.SendCommand(fmt.Sprintf("add %s A quest worth showing", id))
	if !client.WaitForMessage("added successfully", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "Quest not added"}
	}

	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("show %s", id))

	hasHeader := client.WaitForMessage(fmt.Sprintf("=== Quest: %s ===", id), 2*time.Second)
	hasStatus := client.WaitForMessage("not_started", 1*time.Second)
	hasDeps := client.WaitForMessage("Dependencies: none", 1*time.Second)

	logResult(testName, hasHeader && hasStatus && hasDeps, "Details present")
	if !hasHeader || !hasStatus || !hasDeps {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Incomplete details. Got: %v", client.GetMessages())}
	}

	return TestResult{Name: testName, Passed: true, Message: "Quest details shown"}
}

// TestShowMissingQuest tests show with an unknown ID
func TestShowMissingQuest(serverAddr string) TestResult {
	const testName = "Show Missing Quest"

	client, err := testclient.NewTestClient("ShowMissing", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	client.SendCommand("show no-such-quest-anywhere")

	notFound := client.WaitForMessage("No quest with ID", 2*time.Second)
	logResult(testName, notFound, "Unknown ID reported")
	if !notFound {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Missing quest not reported. Got: %v", client.GetMessages())}
	}

	return TestResult{Name: testName, Passed: true, Message: "Unknown quest ID reported cleanly"}
}

// TestListQuests tests that list shows quests with their status
func TestListQuests(serverAddr string) TestResult {
	const testName = "List Quests"

	client, err := testclient.NewTestClient("ListQuests", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	id := uniqueName("listme")
	client.SendCommand(fmt.Sprintf("add %s Appears in the list", id))
	if !client.WaitForMessage("added successfully", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "Quest not added"}
	}

	client.ClearMessages()
	client.SendCommand("list")

	hasHeader := client.WaitForMessage("=== Quests", 2*time.Second)
	hasEntry := client.WaitForMessage(fmt.Sprintf("[not_started] %s", id), 2*time.Second)

	logResult(testName, hasHeader && hasEntry, "List shows quest with status")
	if !hasHeader || !hasEntry {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("List output wrong. Got: %v", client.GetMessages())}
	}

	return TestResult{Name: testName, Passed: true, Message: "List shows quests with status"}
}

// TestAvailableQuests tests that available only shows unlocked quests
func TestAvailableQuests(serverAddr string) TestResult {
	const testName = "Available Quests"

	client, err := testclient.NewTestClient("AvailableQuests", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	free := uniqueName("free")
	blocked := uniqueName("blocked")

	client.SendCommand(fmt.Sprintf("add %s No strings attached", free))
	client.WaitForMessage("added successfully", 2*time.Second)
	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("add %s deps=%s Locked behind the first", blocked, free))
	if !client.WaitForMessage("added successfully", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "Setup quests not added"}
	}

	client.ClearMessages()
	client.SendCommand("available")
	time.Sleep(300 * time.Millisecond)

	hasFree := client.HasMessage(free)
	hasBlocked := client.HasMessage(blocked)

	logResult(testName, hasFree && !hasBlocked, "Only unlocked quest listed")
	if !hasFree {
		return TestResult{Name: testName, Passed: false, Message: "Unlocked quest missing from available"}
	}
	if hasBlocked {
		return TestResult{Name: testName, Passed: false, Message: "Locked quest listed as available"}
	}

	return TestResult{Name: testName, Passed: true, Message: "Available filters locked quests"}
}

// TestDependencyGating tests that completing a prerequisite unlocks its dependent
func TestDependencyGating(serverAddr string) TestResult {
	const testName = "Dependency Gating"

	client, err := testclient.NewTestClient("DependencyGating", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	first := uniqueName("gate-first")
	second := uniqueName("gate-second")

	client.SendCommand(fmt.Sprintf("add %s The prerequisite", first))
	client.WaitForMessage("added successfully", 2*time.Second)
	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("add %s deps=%s The dependent", second, first))
	if !client.WaitForMessage("added successfully", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "Setup quests not added"}
	}

	// Starting the dependent while the prerequisite is incomplete must fail
	logAction(testName, "Starting dependent before prerequisite...")
	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("start %s", second))
	blocked := client.WaitForMessage("dependencies not met", 2*time.Second) && client.HasMessage(first)
	logResult(testName, blocked, "Blocked with unmet dependency named")
	if !blocked {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Dependent not blocked. Got: %v", client.GetMessages())}
	}

	// Complete the prerequisite, then the dependent must start
	logAction(testName, "Completing prerequisite...")
	client.SendCommand(fmt.Sprintf("start %s", first))
	client.WaitForMessage("started", 2*time.Second)
	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("complete %s", first))
	if !client.WaitForMessage("marked as completed", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "Prerequisite did not complete"}
	}

	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("start %s", second))
	unlocked := client.WaitForMessage("started", 2*time.Second)
	logResult(testName, unlocked, "Dependent unlocked after prerequisite")
	if !unlocked {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Dependent still blocked. Got: %v", client.GetMessages())}
	}

	return TestResult{Name: testName, Passed: true, Message: "Dependency gating enforced"}
}

// TestCompletionOrder tests that order puts prerequisites before dependents
func TestCompletionOrder(serverAddr string) TestResult {
	const testName = "Completion Order"

	client, err := testclient.NewTestClient("CompletionOrder", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	base := uniqueName("order-base")
	mid := uniqueName("order-mid")
	top := uniqueName("order-top")

	client.SendCommand(fmt.Sprintf("add %s The foundation", base))
	client.WaitForMessage("added successfully", 2*time.Second)
	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("add %s deps=%s The middle", mid, base))
	client.WaitForMessage("added successfully", 2*time.Second)
	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("add %s deps=%s The summit", top, mid))
	if !client.WaitForMessage("added successfully", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "Setup quests not added"}
	}

	client.ClearMessages()
	client.SendCommand("order")
	if !client.WaitForMessage("Recommended quest completion order", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("No order produced. Got: %v", client.GetMessages())}
	}
	time.Sleep(300 * time.Millisecond)

	// Find the order lines containing our three quests
	baseIdx, midIdx, topIdx := -1, -1, -1
	for i, msg := range client.GetMessages() {
		if strings.Contains(msg, base) {
			baseIdx = i
		}
		if strings.Contains(msg, mid) {
			midIdx = i
		}
		if strings.Contains(msg, top) {
			topIdx = i
		}
	}

	ordered := baseIdx != -1 && midIdx != -1 && topIdx != -1 && baseIdx < midIdx && midIdx < topIdx
	logResult(testName, ordered, fmt.Sprintf("Order indexes: base=%d mid=%d top=%d", baseIdx, midIdx, topIdx))
	if !ordered {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Prerequisites not ordered first (base=%d mid=%d top=%d)", baseIdx, midIdx, topIdx)}
	}

	return TestResult{Name: testName, Passed: true, Message: "Completion order respects dependencies"}
}

package test

import (
	"fmt"
	"time"

	"github.com/lawnchairsociety/questline/internal/testclient"
)

// =============================================================================
// Group 3: Lifecycle
// =============================================================================

// addQuest creates a quest over the shell and waits for confirmation.
// Returns false if the add failed.
func addQuest(client *testclient.TestClient, id, args, title string) bool {
	client.ClearMessages()
	if args != "" {
		client.SendCommand(fmt.Sprintf("add %s %s %s", id, args, title))
	} else {
		client.SendCommand(fmt.Sprintf("add %s %s", id, title))
	}
	return client.WaitForMessage("added successfully", 2*time.Second)
}

// TestStartQuest tests starting an unlocked quest
func TestStartQuest(serverAddr string) TestResult {
	const testName = "Start Quest"

	client, err := testclient.NewTestClient("StartQuest", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	id := uniqueName("startme")
	if !addQuest(client, id, "", "Ready to go") {
		return TestResult{Name: testName, Passed: false, Message: "Quest not added"}
	}

	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("start %s", id))
	started := client.WaitForMessage("started", 2*time.Second)
	logResult(testName, started, "Quest started")
	if !started {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Start failed. Got: %v", client.GetMessages())}
	}

	// Status must now read in_progress
	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("show %s", id))
	inProgress := client.WaitForMessage("in_progress", 2*time.Second)
	logResult(testName, inProgress, "Status is in_progress")
	if !inProgress {
		return TestResult{Name: testName, Passed: false, Message: "Status not in_progress after start"}
	}

	// Starting again from in_progress must be refused
	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("start %s", id))
	refused := client.WaitForMessage("Error starting quest", 2*time.Second)
	logResult(testName, refused, "Double start refused")
	if !refused {
		return TestResult{Name: testName, Passed: false, Message: "Second start was not refused"}
	}

	return TestResult{Name: testName, Passed: true, Message: "Start transitions NotStarted to InProgress"}
}

// TestStartBlockedQuest tests starting a quest with unmet dependencies
func TestStartBlockedQuest(serverAddr string) TestResult {
	const testName = "Start Blocked Quest"

	client, err := testclient.NewTestClient("StartBlocked", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	dep := uniqueName("unmet")
	id := uniqueName("held-back")
	if !addQuest(client, dep, "", "Never completed") {
		return TestResult{Name: testName, Passed: false, Message: "Prerequisite not added"}
	}
	if !addQuest(client, id, "deps="+dep, "Stuck behind it") {
		return TestResult{Name: testName, Passed: false, Message: "Dependent not added"}
	}

	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("start %s", id))

	blocked := client.WaitForMessage("dependencies not met", 2*time.Second)
	namesDep := client.HasMessage(dep)
	logResult(testName, blocked && namesDep, "Blocked and unmet dependency named")
	if !blocked {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Start was not blocked. Got: %v", client.GetMessages())}
	}
	if !namesDep {
		return TestResult{Name: testName, Passed: false, Message: "Error does not name the unmet dependency"}
	}

	return TestResult{Name: testName, Passed: true, Message: "Blocked start names the unmet dependency"}
}

// TestStartMissingQuest tests starting an unknown quest ID
func TestStartMissingQuest(serverAddr string) TestResult {
	const testName = "Start Missing Quest"

	client, err := testclient.NewTestClient("StartMissing", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	client.SendCommand("start never-added-quest")

	notFound := client.WaitForMessage("not found", 2*time.Second)
	logResult(testName, notFound, "Unknown ID reported")
	if !notFound {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Unknown ID not reported. Got: %v", client.GetMessages())}
	}

	return TestResult{Name: testName, Passed: true, Message: "Starting an unknown quest reports not found"}
}

// TestCompleteQuest tests the full start-complete flow
func TestCompleteQuest(serverAddr string) TestResult {
	const testName = "Complete Quest"

	client, err := testclient.NewTestClient("CompleteQuest", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	id := uniqueName("finishme")
	if !addQuest(client, id, "", "See it through") {
		return TestResult{Name: testName, Passed: false, Message: "Quest not added"}
	}

	client.SendCommand(fmt.Sprintf("start %s", id))
	client.WaitForMessage("started", 2*time.Second)

	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("complete %s", id))
	completed := client.WaitForMessage("marked as completed", 2*time.Second)
	logResult(testName, completed, "Quest completed")
	if !completed {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Complete failed. Got: %v", client.GetMessages())}
	}

	// Re-completing a completed quest is a no-op, not an error
	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("complete %s", id))
	noop := client.WaitForMessage("marked as completed", 2*time.Second) && !client.HasMessage("Error")
	logResult(testName, noop, "Re-complete is a no-op")
	if !noop {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Re-complete errored. Got: %v", client.GetMessages())}
	}

	return TestResult{Name: testName, Passed: true, Message: "Complete transitions InProgress to Completed"}
}

// TestCompleteWithoutStart tests that completing a NotStarted quest is refused
func TestCompleteWithoutStart(serverAddr string) TestResult {
	const testName = "Complete Without Start"

	client, err := testclient.NewTestClient("CompleteNoStart", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	id := uniqueName("skipahead")
	if !addQuest(client, id, "", "Not yet begun") {
		return TestResult{Name: testName, Passed: false, Message: "Quest not added"}
	}

	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("complete %s", id))

	refused := client.WaitForMessage("Error completing quest", 2*time.Second)
	logResult(testName, refused, "Complete refused from not_started")
	if !refused {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Complete was not refused. Got: %v", client.GetMessages())}
	}

	return TestResult{Name: testName, Passed: true, Message: "Completing a NotStarted quest is refused"}
}

// TestFailQuest tests failing an in-progress quest
func TestFailQuest(serverAddr string) TestResult {
	const testName = "Fail Quest"

	client, err := testclient.NewTestClient("FailQuest", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	id := uniqueName("doomed")
	if !addQuest(client, id, "", "It was not to be") {
		return TestResult{Name: testName, Passed: false, Message: "Quest not added"}
	}

	client.SendCommand(fmt.Sprintf("start %s", id))
	client.WaitForMessage("started", 2*time.Second)

	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("fail %s", id))
	failed := client.WaitForMessage("marked as failed", 2*time.Second)
	logResult(testName, failed, "Quest failed")
	if !failed {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Fail command failed. Got: %v", client.GetMessages())}
	}

	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("show %s", id))
	isFailed := client.WaitForMessage("failed", 2*time.Second)
	logResult(testName, isFailed, "Status is failed")
	if !isFailed {
		return TestResult{Name: testName, Passed: false, Message: "Status not failed after fail"}
	}

	return TestResult{Name: testName, Passed: true, Message: "Fail transitions InProgress to Failed"}
}

// TestResetRepeatableQuest tests the repeatable complete-reset loop
func TestResetRepeatableQuest(serverAddr string) TestResult {
	const testName = "Reset Repeatable Quest"

	client, err := testclient.NewTestClient("ResetRepeatable", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	id := uniqueName("daily-patrol")
	if !addQuest(client, id, "type=repeatable", "Walk the walls") {
		return TestResult{Name: testName, Passed: false, Message: "Quest not added"}
	}

	logAction(testName, "Completing the repeatable quest...")
	client.SendCommand(fmt.Sprintf("start %s", id))
	client.WaitForMessage("started", 2*time.Second)
	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("complete %s", id))
	if !client.WaitForMessage("marked as completed", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "Quest did not complete"}
	}

	logAction(testName, "Resetting...")
	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("reset %s", id))
	reset := client.WaitForMessage("reset to not started", 2*time.Second)
	logResult(testName, reset, "Quest reset")
	if !reset {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Reset failed. Got: %v", client.GetMessages())}
	}

	// And it can run through the loop again
	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("start %s", id))
	restarted := client.WaitForMessage("started", 2*time.Second)
	logResult(testName, restarted, "Quest startable again after reset")
	if !restarted {
		return TestResult{Name: testName, Passed: false, Message: "Quest not startable after reset"}
	}

	return TestResult{Name: testName, Passed: true, Message: "Repeatable quest resets and restarts"}
}

// TestResetNonRepeatable tests that reset is refused for non-repeatable quests
func TestResetNonRepeatable(serverAddr string) TestResult {
	const testName = "Reset Non-Repeatable Quest"

	client, err := testclient.NewTestClient("ResetNonRepeatable", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	id := uniqueName("once-only")
	if !addQuest(client, id, "", "One shot") {
		return TestResult{Name: testName, Passed: false, Message: "Quest not added"}
	}

	client.SendCommand(fmt.Sprintf("start %s", id))
	client.WaitForMessage("started", 2*time.Second)
	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("complete %s", id))
	if !client.WaitForMessage("marked as completed", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "Quest did not complete"}
	}

	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("reset %s", id))
	refused := client.WaitForMessage("not repeatable", 2*time.Second)
	logResult(testName, refused, "Reset refused for side quest")
	if !refused {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Reset was not refused. Got: %v", client.GetMessages())}
	}

	return TestResult{Name: testName, Passed: true, Message: "Reset refused for non-repeatable quests"}
}

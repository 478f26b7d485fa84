package test

import (
	"fmt"
	"time"

	"github.com/lawnchairsociety/questline/internal/testclient"
)

// =============================================================================
// Group 5: Cycle Detection
// =============================================================================

// TestCycleDetection plants a two-quest cycle and verifies both the cycle
// check and the completion order react to it. This scenario runs last:
// the cycle stays in the shared engine for the rest of the run.
func TestCycleDetection(serverAddr string) TestResult {
	const testName = "Cycle Detection"

	client, err := testclient.NewTestClient("CycleDetection", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	// The graph so far is acyclic
	logAction(testName, "Checking the graph before planting a cycle...")
	client.SendCommand("cycles")
	clean := client.WaitForMessage("No cyclic dependencies", 2*time.Second)
	logResult(testName, clean, "Graph clean before cycle")
	if !clean {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Graph already cyclic before test. Got: %v", client.GetMessages())}
	}

	// Two quests that depend on each other
	chicken := uniqueName("chicken")
	egg := uniqueName("egg")

	logAction(testName, "Planting a two-quest cycle...")
	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("add %s deps=%s Which came first", chicken, egg))
	client.WaitForMessage("added successfully", 2*time.Second)
	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("add %s deps=%s The other one", egg, chicken))
	if !client.WaitForMessage("added successfully", 2*time.Second) {
		return TestResult{Name: testName, Passed: false, Message: "Cycle quests not added"}
	}

	client.ClearMessages()
	client.SendCommand("cycles")
	detected := client.WaitForMessage("cyclic dependencies detected", 3*time.Second)
	logResult(testName, detected, "Cycle detected")
	if !detected {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Cycle not detected. Got: %v", client.GetMessages())}
	}

	// Ordering a cyclic graph must refuse, never return a partial order
	client.ClearMessages()
	client.SendCommand("order")
	refused := client.WaitForMessage("graph contains cycles", 3*time.Second)
	partial := client.HasMessage("Recommended quest completion order")
	logResult(testName, refused && !partial, "Order refused on cyclic graph")
	if !refused {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Order did not refuse. Got: %v", client.GetMessages())}
	}
	if partial {
		return TestResult{Name: testName, Passed: false, Message: "Order returned a partial result on a cyclic graph"}
	}

	// Neither quest in the cycle can ever start
	client.ClearMessages()
	client.SendCommand(fmt.Sprintf("start %s", chicken))
	blocked := client.WaitForMessage("dependencies not met", 2*time.Second)
	logResult(testName, blocked, "Cycle member cannot start")
	if !blocked {
		return TestResult{Name: testName, Passed: false, Message: "Cycle member was allowed to start"}
	}

	return TestResult{Name: testName, Passed: true, Message: "Cycles detected and completion order refused"}
}

package test

import (
	"fmt"
	"strings"
	"time"

	"github.com/lawnchairsociety/questline/internal/testclient"
)

// =============================================================================
// Group 1: Connection & Authentication
// =============================================================================

// TestBasicConnection tests that clients can connect, authenticate, and
// receive the session welcome
func TestBasicConnection(serverAddr string) TestResult {
	const testName = "Basic Connection"

	logAction(testName, "Connecting with valid API key...")
	client, err := testclient.NewTestClient("BasicConnection", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Failed to connect: %v", err)}
	}
	defer client.Close()

	logAction(testName, "Waiting for welcome messages...")
	time.Sleep(300 * time.Millisecond)

	messages := client.GetMessages()
	logResult(testName, len(messages) > 0, fmt.Sprintf("Received %d messages", len(messages)))

	if len(messages) == 0 {
		return TestResult{Name: testName, Passed: false, Message: "No messages received from server"}
	}

	hasWelcome := client.HasMessage("Authenticated as")
	logResult(testName, hasWelcome, "Session welcome received")
	if !hasWelcome {
		return TestResult{Name: testName, Passed: false, Message: "No session welcome after authentication"}
	}

	return TestResult{Name: testName, Passed: true, Message: fmt.Sprintf("Connected successfully, received %d messages", len(messages))}
}

// TestInvalidKeyRejected tests that a bogus API key is refused
func TestInvalidKeyRejected(serverAddr string) TestResult {
	const testName = "Invalid Key Rejected"

	client, err := testclient.NewTestClientRaw(serverAddr)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	logAction(testName, "Sending bogus API key...")
	client.SendCommand("definitely-not-a-valid-key")

	rejected := client.WaitForMessage("Invalid API key", 2*time.Second)
	logResult(testName, rejected, "Server rejected the key")

	if !rejected {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("No rejection message. Got: %v", client.GetMessages())}
	}

	return TestResult{Name: testName, Passed: true, Message: "Invalid key rejected"}
}

// TestEmptyKeyRejected tests that a blank line at the key prompt is refused
func TestEmptyKeyRejected(serverAddr string) TestResult {
	const testName = "Empty Key Rejected"

	client, err := testclient.NewTestClientRaw(serverAddr)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	logAction(testName, "Sending empty key...")
	client.SendCommand("")

	rejected := client.WaitForMessage("API key cannot be empty", 2*time.Second)
	logResult(testName, rejected, "Server rejected the empty key")

	if !rejected {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("No rejection message. Got: %v", client.GetMessages())}
	}

	return TestResult{Name: testName, Passed: true, Message: "Empty key rejected"}
}

// TestMultipleClients tests several authenticated sessions working at once
func TestMultipleClients(serverAddr string) TestResult {
	const testName = "Multiple Clients"

	logAction(testName, "Connecting 3 clients...")
	client1, err1 := testclient.NewTestClient("Multi1", serverAddr, APIKey)
	if err1 != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Failed to connect client 1: %v", err1)}
	}
	defer client1.Close()

	client2, err2 := testclient.NewTestClient("Multi2", serverAddr, APIKey)
	if err2 != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Failed to connect client 2: %v", err2)}
	}
	defer client2.Close()

	client3, err3 := testclient.NewTestClient("Multi3", serverAddr, APIKey)
	if err3 != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Failed to connect client 3: %v", err3)}
	}
	defer client3.Close()

	// Each session adds its own quest, then all three list
	id1 := uniqueName("multi-one")
	id2 := uniqueName("multi-two")
	id3 := uniqueName("multi-three")

	logAction(testName, "Each client adds a quest...")
	client1.SendCommand(fmt.Sprintf("add %s First Session Quest", id1))
	client2.SendCommand(fmt.Sprintf("add %s Second Session Quest", id2))
	client3.SendCommand(fmt.Sprintf("add %s Third Session Quest", id3))
	time.Sleep(500 * time.Millisecond)

	// All sessions share one engine: client1 should see everyone's quests
	client1.ClearMessages()
	client1.SendCommand("list")

	sawAll := client1.WaitForMessage(id1, 2*time.Second) &&
		client1.WaitForMessage(id2, 2*time.Second) &&
		client1.WaitForMessage(id3, 2*time.Second)
	logResult(testName, sawAll, "All quests visible from one session")

	if !sawAll {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Shared engine state missing quests. Got: %v", client1.GetLastMessages(10))}
	}

	return TestResult{Name: testName, Passed: true, Message: "3 clients connected and share engine state"}
}

// TestHelpCommand tests the general help listing
func TestHelpCommand(serverAddr string) TestResult {
	const testName = "Help Command"

	client, err := testclient.NewTestClient("HelpTest", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	client.ClearMessages()
	client.SendCommand("help")

	found := client.WaitForMessage("Available commands", 2*time.Second)
	logResult(testName, found, "General help shown")
	if !found {
		return TestResult{Name: testName, Passed: false, Message: "Help command did not list available commands"}
	}

	messages := strings.Join(client.GetMessages(), " ")
	for _, cmd := range []string{"add", "start", "complete", "cycles", "order", "save"} {
		if !strings.Contains(messages, cmd) {
			return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Help output missing '%s' command", cmd)}
		}
	}

	return TestResult{Name: testName, Passed: true, Message: "Help command lists available commands"}
}

// TestHelpTopic tests per-command help
func TestHelpTopic(serverAddr string) TestResult {
	const testName = "Help Topic"

	client, err := testclient.NewTestClient("HelpTopicTest", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	client.ClearMessages()
	client.SendCommand("help add")

	found := client.WaitForMessage("Usage", 2*time.Second)
	logResult(testName, found, "Topic help shown")
	if !found {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("No usage text for 'help add'. Got: %v", client.GetMessages())}
	}

	return TestResult{Name: testName, Passed: true, Message: "Per-command help works"}
}

// TestUnknownCommand tests the unknown command response
func TestUnknownCommand(serverAddr string) TestResult {
	const testName = "Unknown Command"

	client, err := testclient.NewTestClient("UnknownTest", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	client.ClearMessages()
	client.SendCommand("grapple")

	found := client.WaitForMessage("Unknown command: grapple", 2*time.Second)
	logResult(testName, found, "Unknown command reported")
	if !found {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("No unknown-command message. Got: %v", client.GetMessages())}
	}

	return TestResult{Name: testName, Passed: true, Message: "Unknown commands are reported"}
}

// TestQuitCommand tests that quit disconnects the session
func TestQuitCommand(serverAddr string) TestResult {
	const testName = "Quit Command"

	client, err := testclient.NewTestClient("QuitTest", serverAddr, APIKey)
	if err != nil {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer client.Close()

	logAction(testName, "Sending quit...")
	client.SendCommand("quit")
	time.Sleep(300 * time.Millisecond)

	// The connection should be closed: further commands get no response
	client.ClearMessages()
	client.SendCommand("list")
	time.Sleep(300 * time.Millisecond)

	messages := client.GetMessages()
	logResult(testName, len(messages) == 0, fmt.Sprintf("Received %d messages after quit", len(messages)))

	if len(messages) > 0 {
		return TestResult{Name: testName, Passed: false, Message: fmt.Sprintf("Session still responding after quit: %v", messages)}
	}

	return TestResult{Name: testName, Passed: true, Message: "Quit disconnects the session"}
}

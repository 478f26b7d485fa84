package testclient

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
)

// TestClient represents a test connection to the quest engine shell
type TestClient struct {
	Name     string
	conn     net.Conn
	reader   *bufio.Reader
	writer   *bufio.Writer
	messages []string
	mu       sync.Mutex
	done     chan struct{}
}

// newClientConnection establishes a connection and starts the message reader
func newClientConnection(address string) (*TestClient, error) {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	client := &TestClient{
		conn:     conn,
		reader:   bufio.NewReader(conn),
		writer:   bufio.NewWriter(conn),
		messages: make([]string, 0),
		done:     make(chan struct{}),
	}

	// Start reading messages in background
	go client.readMessages()

	return client, nil
}

// NewTestClient creates a client and authenticates with the given API key
func NewTestClient(name, address, apiKey string) (*TestClient, error) {
	client, err := newClientConnection(address)
	if err != nil {
		return nil, err
	}
	client.Name = name

	// Wait for the banner and key prompt
	time.Sleep(200 * time.Millisecond)

	// Send API key
	if err := client.SendCommand(apiKey); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to send API key: %w", err)
	}

	// Wait for the session welcome
	if !client.WaitForMessage("Authenticated as", 3*time.Second) {
		client.Close()
		return nil, fmt.Errorf("authentication failed for %s", name)
	}

	return client, nil
}

// NewTestClientRaw creates a raw client connection without authenticating.
// Use this for testing the auth flow itself.
func NewTestClientRaw(address string) (*TestClient, error) {
	client, err := newClientConnection(address)
	if err != nil {
		return nil, err
	}
	client.Name = "RawClient"

	// Wait for banner prompt
	time.Sleep(200 * time.Millisecond)

	return client, nil
}

// readMessages continuously reads messages from the server
func (c *TestClient) readMessages() {
	for {
		select {
		case <-c.done:
			return
		default:
			line, err := c.reader.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimRight(line, "\r\n")
			if line != "" {
				c.mu.Lock()
				c.messages = append(c.messages, line)
				c.mu.Unlock()
			}
		}
	}
}

// SendCommand sends a command to the server
func (c *TestClient) SendCommand(cmd string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.writer.WriteString(cmd + "\n")
	if err != nil {
		return err
	}
	return c.writer.Flush()
}

// GetMessages returns all messages received so far
func (c *TestClient) GetMessages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Return a copy
	result := make([]string, len(c.messages))
	copy(result, c.messages)
	return result
}

// GetLastMessages returns the last N messages
func (c *TestClient) GetLastMessages(n int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n > len(c.messages) {
		n = len(c.messages)
	}

	start := len(c.messages) - n
	result := make([]string, n)
	copy(result, c.messages[start:])
	return result
}

// ClearMessages clears the message buffer
func (c *TestClient) ClearMessages() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = make([]string, 0)
}

// WaitForMessage waits for a message containing the specified text (with timeout)
func (c *TestClient) WaitForMessage(text string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		messages := c.GetMessages()
		for _, msg := range messages {
			if strings.Contains(msg, text) {
				return true
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	return false
}

// WaitForAnyMessage waits for any of the specified texts (with timeout)
func (c *TestClient) WaitForAnyMessage(texts []string, timeout time.Duration) (string, bool) {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		messages := c.GetMessages()
		for _, msg := range messages {
			for _, text := range texts {
				if strings.Contains(msg, text) {
					return text, true
				}
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	return "", false
}

// Close closes the client connection
func (c *TestClient) Close() error {
	close(c.done)
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// GetLastMessage returns the most recent message
func (c *TestClient) GetLastMessage() string {
	messages := c.GetLastMessages(1)
	if len(messages) > 0 {
		return messages[0]
	}
	return ""
}

// PrintMessages prints all messages (for debugging)
func (c *TestClient) PrintMessages() {
	messages := c.GetMessages()
	fmt.Printf("\n=== Messages for %s ===\n", c.Name)
	for i, msg := range messages {
		fmt.Printf("[%d] %s\n", i, msg)
	}
	fmt.Println("======================")
}

// HasMessage checks if any message contains the specified text
func (c *TestClient) HasMessage(text string) bool {
	messages := c.GetMessages()
	for _, msg := range messages {
		if strings.Contains(msg, text) {
			return true
		}
	}
	return false
}

package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// wsTestServer upgrades incoming connections and hands them to fn.
func wsTestServer(t *testing.T, fn func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade: %v", err)
			return
		}
		defer conn.Close()
		fn(conn)
	}))
}

func wsDial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	return conn
}

// TestWebSocketClient_ReadLine_EmptyMessages tests that whitespace-only
// messages are skipped until a real line arrives
func TestWebSocketClient_ReadLine_EmptyMessages(t *testing.T) {
	messagesSent := make(chan struct{})

	server := wsTestServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(""))
		conn.WriteMessage(websocket.TextMessage, []byte("   "))
		conn.WriteMessage(websocket.TextMessage, []byte("\n\n\n"))
		conn.WriteMessage(websocket.TextMessage, []byte("start gather-wood"))
		close(messagesSent)

		// Keep connection open briefly
		time.Sleep(100 * time.Millisecond)
	})
	defer server.Close()

	conn := wsDial(t, server)
	defer conn.Close()

	client := NewWebSocketClient(conn)

	<-messagesSent

	line, err := client.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if line != "start gather-wood" {
		t.Errorf("Expected 'start gather-wood', got '%s'", line)
	}
}

// TestWebSocketClient_ReadLine_MultiLineMessage tests that a message holding
// several lines is split and returned one line at a time
func TestWebSocketClient_ReadLine_MultiLineMessage(t *testing.T) {
	server := wsTestServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte("list\navailable\norder"))
		time.Sleep(100 * time.Millisecond)
	})
	defer server.Close()

	conn := wsDial(t, server)
	defer conn.Close()

	client := NewWebSocketClient(conn)

	for _, want := range []string{"list", "available", "order"} {
		line, err := client.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine failed: %v", err)
		}
		if line != want {
			t.Errorf("Expected %q, got %q", want, line)
		}
	}
}

// TestWebSocketClient_WriteLine tests writing messages to the client
func TestWebSocketClient_WriteLine(t *testing.T) {
	received := make(chan string, 1)

	server := wsTestServer(t, func(conn *websocket.Conn) {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		received <- string(msg)
	})
	defer server.Close()

	conn := wsDial(t, server)
	defer conn.Close()

	client := NewWebSocketClient(conn)

	if err := client.WriteLine("No quests available."); err != nil {
		t.Fatalf("WriteLine failed: %v", err)
	}

	select {
	case msg := <-received:
		if msg != "No quests available." {
			t.Errorf("Expected 'No quests available.', got '%s'", msg)
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for message")
	}
}

// TestWebSocketClient_RemoteAddr tests the RemoteAddr method
func TestWebSocketClient_RemoteAddr(t *testing.T) {
	done := make(chan struct{})

	server := wsTestServer(t, func(conn *websocket.Conn) {
		<-done
	})
	defer server.Close()

	conn := wsDial(t, server)
	defer conn.Close()
	defer close(done)

	client := NewWebSocketClient(conn)

	if addr := client.RemoteAddr(); addr == "" {
		t.Error("RemoteAddr should not be empty")
	}
}

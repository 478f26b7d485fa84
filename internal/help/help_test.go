package help

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAndGetTopic(t *testing.T) {
	// Create temp test file
	content := `
topics:
  start:
    aliases:
      - begin
    text: |
      START command help text
  complete:
    aliases:
      - finish
      - done
    text: |
      COMPLETE command help text
general_help: |
  General help text
`
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "help.yaml")
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	h, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Failed to load help: %v", err)
	}

	// Test getting topic by its own name
	text := h.GetTopic("start")
	if text != "START command help text" {
		t.Errorf("Expected 'START command help text', got %q", text)
	}

	// Test getting topic by alias
	text = h.GetTopic("finish")
	if text != "COMPLETE command help text" {
		t.Errorf("Expected 'COMPLETE command help text', got %q", text)
	}

	// Test case insensitivity
	text = h.GetTopic("START")
	if text != "START command help text" {
		t.Errorf("Expected 'START command help text', got %q", text)
	}

	// Test unknown topic
	text = h.GetTopic("unknown")
	if text != "" {
		t.Errorf("Expected empty string for unknown topic, got %q", text)
	}
}

func TestGetHelpText(t *testing.T) {
	content := `
topics:
  cycles:
    aliases:
      - cycle
    text: |
      CYCLES help
general_help: |
  General help
`
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "help.yaml")
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	h, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Failed to load help: %v", err)
	}

	// Test general help
	text := h.GetHelpText("")
	if text != "General help" {
		t.Errorf("Expected 'General help', got %q", text)
	}

	// Test specific topic
	text = h.GetHelpText("cycles")
	if text != "CYCLES help" {
		t.Errorf("Expected 'CYCLES help', got %q", text)
	}

	// Test unknown topic
	text = h.GetHelpText("unknown")
	if text == "" || text == "CYCLES help" {
		t.Errorf("Expected 'no help' message, got %q", text)
	}
}

func TestLoadError(t *testing.T) {
	// Test loading non-existent file
	_, err := Load("/nonexistent/path/help.yaml")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}

	// Test loading invalid YAML
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "invalid.yaml")
	if err := os.WriteFile(tmpFile, []byte("not: valid: yaml: content:"), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	_, err = Load(tmpFile)
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONInProd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	log, err := New("studyboard", "prod", path)
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("hidden")
	log.Info("hello")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %s", len(lines), data)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if entry["message"] != "hello" || entry["service"] != "studyboard" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestNewConsoleInDev(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.log")
	log, err := New("studyboard", "dev", path)
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("details")
	log.Sync()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "DEBUG") || !strings.Contains(string(data), "details") {
		t.Fatalf("unexpected output: %s", data)
	}
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	if err != nil {
		t.Skip("no config dir:", err)
	}
	if filepath.Base(path) != "studyboard.log" {
		t.Fatalf("path = %s", path)
	}
}

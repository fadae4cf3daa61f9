package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestJSONUsesCloudLoggingKeys(t *testing.T) {
	var buf bytes.Buffer
	l := setup(&buf, "info", "json")
	l.Warn("tank level low", "device_id", "device-42")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if entry["severity"] != "WARNING" {
		t.Errorf("expected severity WARNING, got %v", entry["severity"])
	}
	if entry["message"] != "tank level low" {
		t.Errorf("expected message, got %v", entry["message"])
	}
	if entry["device_id"] != "device-42" {
		t.Errorf("expected device_id attribute, got %v", entry["device_id"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := setup(&buf, "error", "text")
	l.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
	l.Error("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("expected error line, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("WARNING") != slog.LevelWarn {
		t.Error("expected warn level")
	}
	if parseLevel("bogus") != slog.LevelInfo {
		t.Error("expected info level default")
	}
}

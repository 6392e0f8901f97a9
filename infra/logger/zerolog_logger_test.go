package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestZerologLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLoggerTo(&buf, "test")
	l.Infof("hello %s", "world")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["component"] != "test" {
		t.Fatalf("missing component field: %v", entry)
	}
	if entry["message"] != "hello world" {
		t.Fatalf("unexpected message: %v", entry["message"])
	}
}

func TestZerologLoggerDebugw(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLoggerTo(&buf, "test")
	l.Debugw("banded", map[string]any{"band": "Low", "count": 3})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["band"] != "Low" {
		t.Fatalf("missing structured field: %v", entry)
	}
}

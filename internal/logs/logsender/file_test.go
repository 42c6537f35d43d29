// evtship/agent/internal/logs/logsender/file_test.go

package logsender

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/evtship/agent/internal/model"
)

func fileTestPayload() *model.EventPayload {
	ts := time.Date(2014, 1, 15, 8, 30, 0, 0, time.UTC)
	return &model.EventPayload{
		Hostname: "WIN-ABC",
		Events: []model.NormalizedEvent{
			{Timestamp: ts, Host: "WIN-ABC", Path: "Application", Level: "info", Message: "service started"},
			{Timestamp: ts, Host: "WIN-ABC", Path: "System", Level: "error", Message: "disk failure"},
		},
	}
}

func TestFileSinkPlainCodec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	sink, err := newFileSink(path, "plain")
	if err != nil {
		t.Fatalf("newFileSink: %v", err)
	}

	if err := sink.Publish(context.Background(), fileTestPayload()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), data)
	}
	if want := "2014-01-15T08:30:00Z WIN-ABC Application info: service started"; lines[0] != want {
		t.Errorf("line 0 = %q, want %q", lines[0], want)
	}
	if !strings.Contains(lines[1], "disk failure") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestFileSinkJSONCodec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ndjson")
	sink, err := newFileSink(path, "json")
	if err != nil {
		t.Fatalf("newFileSink: %v", err)
	}

	if err := sink.Publish(context.Background(), fileTestPayload()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var rec model.NormalizedEvent
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("line 1 is not valid JSON: %v", err)
	}
	if rec.Message != "disk failure" || rec.Level != "error" {
		t.Errorf("round-trip = %+v", rec)
	}
}

func TestFileSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	if err := os.WriteFile(path, []byte("existing line\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	sink, err := newFileSink(path, "plain")
	if err != nil {
		t.Fatalf("newFileSink: %v", err)
	}
	if err := sink.Publish(context.Background(), fileTestPayload()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	_ = sink.Close()

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "existing line\n") {
		t.Errorf("sink truncated the file: %q", data)
	}
}

func TestNewFileSinkRequiresPath(t *testing.T) {
	if _, err := newFileSink("", "plain"); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestStdoutSinkCloseLeavesStdoutOpen(t *testing.T) {
	sink, err := newStdoutSink("plain")
	if err != nil {
		t.Fatalf("newStdoutSink: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Stdout must still be usable after the sink is gone.
	if _, err := os.Stdout.Stat(); err != nil {
		t.Fatalf("stdout unusable after Close: %v", err)
	}
}

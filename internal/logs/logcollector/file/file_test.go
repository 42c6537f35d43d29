// evtship/agent/internal/logs/logcollector/file/file_test.go

package filecollector

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/evtship/agent/internal/config"
	"github.com/evtship/agent/internal/model"
)

func testConfig(files ...string) *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Agent.LogCollection.Files = files
	cfg.Agent.LogCollection.BatchSize = 10
	return cfg
}

func drain(t *testing.T, c *FileCollector, n int) []model.NormalizedEvent {
	t.Helper()
	var got []model.NormalizedEvent
	deadline := time.Now().Add(3 * time.Second)
	for len(got) < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for lines, got %d of %d", len(got), n)
		}
		batches, err := c.Collect(context.Background())
		if err != nil {
			t.Fatalf("Collect() error = %v", err)
		}
		for _, b := range batches {
			got = append(got, b...)
		}
		time.Sleep(10 * time.Millisecond)
	}
	return got
}

func TestFileCollectorTailsNewLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	c := NewFileCollector(testConfig(path), "test-host")
	defer c.Close()

	// Give the tailer a moment to open and seek to the end.
	time.Sleep(100 * time.Millisecond)

	lines := []string{
		"service started",
		"request failed with status 500",
		"connection error from 10.0.0.5",
	}
	for _, l := range lines {
		if _, err := f.WriteString(l + "\n"); err != nil {
			t.Fatal(err)
		}
	}

	got := drain(t, c, len(lines))
	for i, rec := range got {
		if rec.Message != lines[i] {
			t.Errorf("line %d = %q, want %q", i, rec.Message, lines[i])
		}
		if rec.Host != "test-host" {
			t.Errorf("Host = %q, want test-host", rec.Host)
		}
		if rec.Path != path {
			t.Errorf("Path = %q, want %q", rec.Path, path)
		}
		if rec.Type != "file" {
			t.Errorf("Type = %q, want file", rec.Type)
		}
		if rec.SourceName != "app.log" {
			t.Errorf("SourceName = %q, want app.log", rec.SourceName)
		}
	}

	if got[0].Level != "info" || got[1].Level != "warning" || got[2].Level != "error" {
		t.Errorf("levels = %q %q %q, want info warning error",
			got[0].Level, got[1].Level, got[2].Level)
	}
}

func TestFileCollectorCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewFileCollector(testConfig(path), "test-host")
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	batches, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() after Close error = %v", err)
	}
	if len(batches) != 0 {
		t.Errorf("collected %d batches after Close", len(batches))
	}
}

func TestDetectSeverity(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"all good", "info"},
		{"login failed for admin", "warning"},
		{"invalid token", "warning"},
		{"disk error on /dev/sda", "error"},
		{"access denied", "error"},
	}
	for _, tt := range tests {
		if got := detectSeverity(tt.line); got != tt.want {
			t.Errorf("detectSeverity(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

package config

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestEnsureDefaultConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	if err := EnsureDefaultConfig(path); err != nil {
		t.Fatalf("EnsureDefaultConfig: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Agent.ServerURL != "localhost:4317" {
		t.Errorf("ServerURL = %q", cfg.Agent.ServerURL)
	}
	if cfg.Agent.Interval != 2*time.Second {
		t.Errorf("Interval = %v", cfg.Agent.Interval)
	}
	want := []string{"Application", "Security", "System"}
	if got := cfg.Agent.LogCollection.EventLog.Logfile; !reflect.DeepEqual(got, want) {
		t.Errorf("EventLog.Logfile = %v, want %v", got, want)
	}
	if cfg.Agent.Output.Mode != "otlp" {
		t.Errorf("Output.Mode = %q", cfg.Agent.Output.Mode)
	}
	if cfg.Agent.Output.Kafka.Topic != "evtship.events" {
		t.Errorf("Kafka.Topic = %q", cfg.Agent.Output.Kafka.Topic)
	}
	if cfg.CustomTags["env"] != "dev" {
		t.Errorf("CustomTags = %v", cfg.CustomTags)
	}

	// Second call must not rewrite an existing file.
	if err := EnsureDefaultConfig(path); err != nil {
		t.Fatalf("EnsureDefaultConfig (existing): %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	ev := cfg.Agent.LogCollection.EventLog
	want := []string{"Application", "Security", "System"}
	if !reflect.DeepEqual(ev.Logfile, want) {
		t.Errorf("default logfiles = %v, want %v", ev.Logfile, want)
	}
	if ev.Codec != "plain" {
		t.Errorf("default codec = %q, want plain", ev.Codec)
	}
	if ev.TypeTag != "eventlog" {
		t.Errorf("default type tag = %q, want eventlog", ev.TypeTag)
	}
	if ev.WaitTimeout != time.Second {
		t.Errorf("default wait timeout = %v, want 1s", ev.WaitTimeout)
	}
	if ev.Backoff != time.Second {
		t.Errorf("default backoff = %v, want 1s", ev.Backoff)
	}
	if cfg.Agent.LogCollection.BatchSize != 100 || cfg.Agent.LogCollection.Workers != 2 {
		t.Errorf("collection defaults = %+v", cfg.Agent.LogCollection)
	}
	if cfg.Agent.Output.Mode != "otlp" {
		t.Errorf("default output mode = %q", cfg.Agent.Output.Mode)
	}

	// Existing values are preserved.
	cfg2 := Config{}
	cfg2.Agent.LogCollection.EventLog.Logfile = []string{"Setup"}
	cfg2.Agent.LogCollection.EventLog.Codec = "json"
	ApplyDefaults(&cfg2)
	if !reflect.DeepEqual(cfg2.Agent.LogCollection.EventLog.Logfile, []string{"Setup"}) {
		t.Errorf("configured logfiles overwritten: %v", cfg2.Agent.LogCollection.EventLog.Logfile)
	}
	if cfg2.Agent.LogCollection.EventLog.Codec != "json" {
		t.Errorf("configured codec overwritten: %q", cfg2.Agent.LogCollection.EventLog.Codec)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("EVTSHIP_SERVER_URL", "collector:4317")
	t.Setenv("EVTSHIP_INTERVAL", "5s")
	t.Setenv("EVTSHIP_LOGFILES", "Application, Setup")
	t.Setenv("EVTSHIP_OUTPUT_MODE", "kafka")
	t.Setenv("EVTSHIP_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("EVTSHIP_CUSTOM_TAGS", "env=prod, rack=r1, bad")

	var cfg Config
	ApplyEnvOverrides(&cfg)

	if cfg.Agent.ServerURL != "collector:4317" {
		t.Errorf("ServerURL = %q", cfg.Agent.ServerURL)
	}
	if cfg.Agent.Interval != 5*time.Second {
		t.Errorf("Interval = %v", cfg.Agent.Interval)
	}
	if got := cfg.Agent.LogCollection.EventLog.Logfile; !reflect.DeepEqual(got, []string{"Application", "Setup"}) {
		t.Errorf("Logfile = %v", got)
	}
	if cfg.Agent.Output.Mode != "kafka" {
		t.Errorf("Output.Mode = %q", cfg.Agent.Output.Mode)
	}
	if got := cfg.Agent.Output.Kafka.Brokers; !reflect.DeepEqual(got, []string{"k1:9092", "k2:9092"}) {
		t.Errorf("Brokers = %v", got)
	}
	want := map[string]string{"env": "prod", "rack": "r1"}
	if !reflect.DeepEqual(cfg.CustomTags, want) {
		t.Errorf("CustomTags = %v, want %v", cfg.CustomTags, want)
	}
}

func TestSplitCSV(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ,, c ", []string{"a", "b", "c"}},
		{"", nil},
		{" , ", nil},
	}
	for _, tt := range tests {
		if got := SplitCSV(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitCSV(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

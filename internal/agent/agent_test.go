// evtship/agent/internal/agent/agent_test.go

package agent

import (
	"context"
	"testing"
	"time"

	"github.com/evtship/agent/internal/config"
)

func agentTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Agent.HostOverride = "agent-test-host"
	cfg.Agent.Output.Mode = "stdout"
	// "file" with no files configured is skipped by the registry, so
	// the agent comes up with no live sources.
	cfg.Agent.LogCollection.Sources = []string{"file"}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestNewAgent(t *testing.T) {
	// Keep the generated agent ID out of the real state directory.
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)
	t.Setenv("APPDATA", state)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := NewAgent(ctx, agentTestConfig(), "test")
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	defer a.Close()

	if a.AgentID == "" {
		t.Error("agent ID is empty")
	}
	if a.Meta == nil || a.Meta.Hostname != "agent-test-host" {
		t.Errorf("meta hostname = %v, want agent-test-host", a.Meta)
	}
	if a.LogRunner == nil {
		t.Error("log runner not constructed")
	}
}

func TestAgentIDStableAcrossRestarts(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)
	t.Setenv("APPDATA", state)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := NewAgent(ctx, agentTestConfig(), "test")
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	first.Close()

	second, err := NewAgent(ctx, agentTestConfig(), "test")
	if err != nil {
		t.Fatalf("NewAgent (restart): %v", err)
	}
	defer second.Close()

	if first.AgentID != second.AgentID {
		t.Errorf("agent ID changed across restarts: %q vs %q", first.AgentID, second.AgentID)
	}
}

func TestAgentStartAndShutdown(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)
	t.Setenv("APPDATA", state)

	ctx, cancel := context.WithCancel(context.Background())

	a, err := NewAgent(ctx, agentTestConfig(), "test")
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}

	a.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		a.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("agent did not shut down after context cancellation")
	}
}

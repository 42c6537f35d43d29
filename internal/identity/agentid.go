// evtship/agent/internal/identity/agentid.go
// Package agentidentity persists a stable per-install agent ID.

package agentidentity

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/evtship/agent/internal/logger"
	"github.com/google/uuid"
)

// LoadOrCreateAgentID returns the UUID stored on disk, generating and
// saving one on first run. The ID survives restarts and upgrades so the
// backend can tell a reinstalled agent from a new host.
func LoadOrCreateAgentID() (string, error) {
	path := agentIDPath()

	if data, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			logger.Debug("Loaded agent ID from %s", path)
			return id, nil
		}
	}

	id := uuid.NewString()
	logger.Debug("Generated new agent ID: %s", id)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(id), 0o600); err != nil {
		return "", err
	}

	return id, nil
}

// agentIDPath picks a per-OS state location: APPDATA on Windows,
// XDG_STATE_HOME elsewhere.
func agentIDPath() string {
	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("APPDATA")
		if base == "" {
			base = `C:\evtship`
		}
		return filepath.Join(base, "evtship", "agent_id")
	default:
		base := os.Getenv("XDG_STATE_HOME")
		if base == "" {
			base = filepath.Join(os.Getenv("HOME"), ".local", "state")
		}
		return filepath.Join(base, "evtship", "agent_id")
	}
}

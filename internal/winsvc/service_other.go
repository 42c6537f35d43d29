//go:build !windows
// +build !windows

// evtship/agent/internal/winsvc/service_other.go

package winsvc

import "context"

// IsService is always false off Windows; the agent runs as a plain
// process under systemd or the shell.
func IsService() bool { return false }

// Run is never reached off Windows. It exists so the caller does not
// need its own build tags.
func Run(_ string, _ context.CancelFunc, _ <-chan struct{}) error { return nil }

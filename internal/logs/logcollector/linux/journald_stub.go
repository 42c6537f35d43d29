//go:build !linux
// +build !linux

// evtship/agent/internal/logs/logcollector/linux/journald_stub.go

package linuxcollector

import (
	"context"

	"github.com/evtship/agent/internal/config"
	"github.com/evtship/agent/internal/model"
)

type JournaldCollector struct{}

func NewJournaldCollector(_ *config.Config, _ string) *JournaldCollector {
	return &JournaldCollector{}
}

func (j *JournaldCollector) Name() string {
	return "journald (disabled)"
}

func (j *JournaldCollector) Collect(_ context.Context) ([][]model.NormalizedEvent, error) {
	return nil, nil
}

func (j *JournaldCollector) Close() error {
	return nil
}

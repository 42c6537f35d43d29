/*
SPDX-License-Identifier: GPL-3.0-or-later

Copyright (C) 2025 EvtShip Contributors

This file is part of EvtShip.

EvtShip is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EvtShip is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EvtShip. If not, see https://www.gnu.org/licenses/.
*/

// evtship/agent/internal/logs/logcollector/registry.go
// registry.go - builds and owns the enabled event sources at runtime.

package logcollector

import (
	"context"
	"errors"
	"io"
	"runtime"

	"github.com/evtship/agent/internal/config"
	"github.com/evtship/agent/internal/eventlog"
	"github.com/evtship/agent/internal/logger"
	filecollector "github.com/evtship/agent/internal/logs/logcollector/file"
	linuxcollector "github.com/evtship/agent/internal/logs/logcollector/linux"
	"github.com/evtship/agent/internal/model"
	"github.com/evtship/agent/internal/utils"
)

// LogRegistry holds the active event sources keyed by name and fans a
// collection cycle out over them.
type LogRegistry struct {
	Collectors map[string]Collector
}

// NewRegistry builds the sources named in the configuration. A source
// that cannot run on this platform is skipped with a warning rather
// than failing the agent; the remaining sources still ship.
func NewRegistry(cfg *config.Config) *LogRegistry {
	reg := &LogRegistry{Collectors: make(map[string]Collector)}

	host := cfg.Agent.HostOverride
	if host == "" {
		host = agentutils.GetHostname()
	}

	for _, name := range cfg.Agent.LogCollection.Sources {
		switch name {
		case "eventlog":
			sub, err := eventlog.NewWMISubscriber()
			if err != nil {
				logger.Warn("eventlog source unavailable on %s, skipping: %v", runtime.GOOS, err)
				continue
			}
			tailer := eventlog.NewTailer(eventlog.Config{
				Logfiles:    cfg.Agent.LogCollection.EventLog.Logfile,
				WaitTimeout: cfg.Agent.LogCollection.EventLog.WaitTimeout,
				Backoff:     cfg.Agent.LogCollection.EventLog.Backoff,
				BufferSize:  cfg.Agent.LogCollection.BufferSize,
				BatchSize:   cfg.Agent.LogCollection.BatchSize,
			}, sub, eventlog.NewNormalizer(host, cfg.Agent.LogCollection.EventLog.TypeTag, sub.Unwrapper()))
			tailer.Start()
			reg.Collectors["eventlog"] = tailer
		case "journald":
			if runtime.GOOS != "linux" {
				logger.Warn("journald source is only supported on Linux, skipping")
				continue
			}
			reg.Collectors["journald"] = linuxcollector.NewJournaldCollector(cfg, host)
		case "file":
			if len(cfg.Agent.LogCollection.Files) == 0 {
				logger.Warn("file source enabled but no files configured, skipping")
				continue
			}
			reg.Collectors["file"] = filecollector.NewFileCollector(cfg, host)
		default:
			logger.Warn("Unknown event source: %s (skipping)", name)
		}
	}
	logger.Info("Loaded %d event sources", len(reg.Collectors))

	return reg
}

// Collect runs one cycle over every source and concatenates the
// batches. A failing source is logged and skipped so one bad source
// never starves the others.
func (r *LogRegistry) Collect(ctx context.Context) ([][]model.NormalizedEvent, error) {
	var allBatches [][]model.NormalizedEvent

	for name, collector := range r.Collectors {
		batches, err := collector.Collect(ctx)
		if err != nil {
			logger.Error("Error collecting %s: %v", name, err)
			continue
		}
		allBatches = append(allBatches, batches...)
	}

	return allBatches, nil
}

// Close shuts down every source that holds resources.
func (r *LogRegistry) Close() error {
	logger.Info("Closing event source registry...")
	var errs []error

	for name, collector := range r.Collectors {
		if closer, ok := collector.(io.Closer); ok {
			logger.Debug("Closing source: %s", name)
			if err := closer.Close(); err != nil {
				logger.Error("Error closing source %s: %v", name, err)
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

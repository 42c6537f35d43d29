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

// evtship/agent/internal/logs/logsender/sender.go
// Package logsender ships event payloads to the configured output. The
// worker pool in task.go pulls payloads off the runner's queue and
// publishes them through one of the interchangeable sinks.

package logsender

import (
	"context"
	"fmt"
	"sync"

	"github.com/evtship/agent/internal/config"
	"github.com/evtship/agent/internal/logger"
	"github.com/evtship/agent/internal/model"
)

// Sink publishes one payload to a destination. Publish may block and
// is called concurrently by the worker pool, so implementations guard
// their own state.
type Sink interface {
	Name() string
	Publish(ctx context.Context, payload *model.EventPayload) error
	Close() error
}

// LogSender wraps the active sink and the worker pool draining into it.
type LogSender struct {
	sink Sink
	cfg  *config.Config
	wg   sync.WaitGroup
}

// NewSender builds the sink selected by output.mode. An unknown mode is
// a configuration error rather than a silent fallback.
func NewSender(ctx context.Context, cfg *config.Config) (*LogSender, error) {
	var (
		sink Sink
		err  error
	)

	switch mode := cfg.Agent.Output.Mode; mode {
	case "otlp":
		sink, err = newOTLPSink(ctx, cfg)
	case "kafka":
		sink, err = newKafkaSink(cfg)
	case "file":
		sink, err = newFileSink(cfg.Agent.Output.File, cfg.Agent.LogCollection.EventLog.Codec)
	case "stdout":
		sink, err = newStdoutSink(cfg.Agent.LogCollection.EventLog.Codec)
	default:
		return nil, fmt.Errorf("unknown output mode %q", mode)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s output: %w", cfg.Agent.Output.Mode, err)
	}

	logger.Info("Log sender using %s output", sink.Name())
	return &LogSender{sink: sink, cfg: cfg}, nil
}

// Close waits for the workers to drain, then closes the sink so it can
// flush whatever it buffers.
func (s *LogSender) Close() error {
	logger.Info("Closing log sender, waiting for workers...")
	s.wg.Wait()
	return s.sink.Close()
}

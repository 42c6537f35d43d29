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

// evtship/agent/internal/logs/logrunner/runner.go
// Package logrunner drives the collect/ship cycle: on every tick it
// drains the collector registry, wraps each batch in a payload with
// the agent's identity, and hands the payloads to the sender pool.

package logrunner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/evtship/agent/internal/config"
	"github.com/evtship/agent/internal/logger"
	"github.com/evtship/agent/internal/logs/logcollector"
	"github.com/evtship/agent/internal/logs/logsender"
	"github.com/evtship/agent/internal/meta"
	"github.com/evtship/agent/internal/model"
	"github.com/evtship/agent/internal/telemetry"
	agentutils "github.com/evtship/agent/internal/utils"
)

// LogRunner owns the log pipeline: the collector registry on one end,
// the sender worker pool on the other, and the ticker loop between them.
type LogRunner struct {
	Config      *config.Config
	LogSender   *logsender.LogSender
	LogRegistry *logcollector.LogRegistry
	Meta        *model.Meta
	runWg       sync.WaitGroup
}

// NewRunner builds the registry and the sender. A sender that cannot be
// constructed is fatal for the pipeline, so the registry is torn down
// again before returning the error.
func NewRunner(ctx context.Context, cfg *config.Config, baseMeta *model.Meta) (*LogRunner, error) {
	registry := logcollector.NewRegistry(cfg)

	sender, err := logsender.NewSender(ctx, cfg)
	if err != nil {
		_ = registry.Close()
		return nil, fmt.Errorf("create log sender: %w", err)
	}

	return &LogRunner{
		Config:      cfg,
		LogSender:   sender,
		LogRegistry: registry,
		Meta:        baseMeta,
	}, nil
}

// Close stops the collectors first so nothing new is produced, then
// closes the sender, which flushes and joins its worker pool.
func (r *LogRunner) Close() {
	logger.Info("Closing log runner...")

	if r.LogRegistry != nil {
		if err := r.LogRegistry.Close(); err != nil {
			logger.Error("Error closing log collectors: %v", err)
		}
	}

	if r.LogSender != nil {
		if err := r.LogSender.Close(); err != nil {
			logger.Error("Error closing log sender: %v", err)
		}
	}

	r.runWg.Wait()
	logger.Info("Log runner closed.")
}

// Run blocks until ctx is cancelled. Batches keep their collection
// order in the queue; whether sends overlap is up to the worker count.
// Teardown is the owner's job via Close, after ctx is done.
func (r *LogRunner) Run(ctx context.Context) {
	taskQueue := make(chan *model.EventPayload, r.Config.Agent.LogCollection.BufferSize)

	r.runWg.Add(1)
	go func() {
		defer r.runWg.Done()
		r.LogSender.StartWorkerPool(ctx, taskQueue, r.Config.Agent.LogCollection.Workers)
	}()

	interval := r.Config.Agent.LogCollection.Interval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Log runner started, collecting every %v", interval)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Log runner context cancelled, shutting down")
			return
		case <-ticker.C:
			batches, err := r.LogRegistry.Collect(ctx)
			if err != nil {
				logger.Error("Log collection failed: %v", err)
				continue
			}
			if len(batches) == 0 {
				continue
			}

			// Per-payload tag overrides go on a clone so the base meta
			// stays untouched for the next tick.
			payloadMeta := meta.CloneMetaWithTags(r.Meta, map[string]string{
				"job":      "evtship-logs",
				"instance": r.Meta.Hostname,
			})
			payloadMeta.EndpointID = agentutils.GenerateEndpointID(payloadMeta.Hostname)

			for _, batch := range batches {
				if len(batch) == 0 {
					continue
				}

				payload := &model.EventPayload{
					AgentID:    payloadMeta.AgentID,
					HostID:     payloadMeta.HostID,
					Hostname:   payloadMeta.Hostname,
					EndpointID: payloadMeta.EndpointID,
					Timestamp:  time.Now(),
					Events:     batch,
					Meta:       payloadMeta,
				}

				select {
				case taskQueue <- payload:
				case <-ctx.Done():
					logger.Info("Context cancelled while queuing log payload, shutting down")
					return
				default:
					telemetry.EventsDropped.WithLabelValues("queue").Add(float64(len(batch)))
					logger.Warn("Log task queue full, dropping batch of %d events from %s", len(batch), payloadMeta.Hostname)
				}
			}
		}
	}
}

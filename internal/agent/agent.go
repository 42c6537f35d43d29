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

// evtship/agent/internal/agent/agent.go
// Package agent assembles and supervises the log pipeline.

package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/evtship/agent/internal/config"
	grpcconn "github.com/evtship/agent/internal/grpc"
	agentidentity "github.com/evtship/agent/internal/identity"
	"github.com/evtship/agent/internal/logger"
	"github.com/evtship/agent/internal/logs/logrunner"
	"github.com/evtship/agent/internal/meta"
	"github.com/evtship/agent/internal/model"
	"github.com/evtship/agent/internal/telemetry"
)

// Agent ties the configuration, identity, and log runner together for
// the lifetime of the process.
type Agent struct {
	Config       *config.Config
	LogRunner    *logrunner.LogRunner
	AgentID      string
	AgentVersion string
	Meta         *model.Meta
	StartTime    time.Time
}

// NewAgent loads the persistent agent ID, builds the base metadata all
// payloads will carry, and constructs the log runner.
func NewAgent(ctx context.Context, cfg *config.Config, agentVersion string) (*Agent, error) {
	telemetry.Init()

	agentID, err := agentidentity.LoadOrCreateAgentID()
	if err != nil {
		return nil, fmt.Errorf("load agent ID: %w", err)
	}

	startTime := time.Now()
	baseMeta := meta.BuildMeta(cfg, nil, agentID, agentVersion)
	meta.BuildStandardTags(baseMeta, startTime)

	logRunner, err := logrunner.NewRunner(ctx, cfg, baseMeta)
	if err != nil {
		return nil, fmt.Errorf("create log runner: %w", err)
	}

	return &Agent{
		Config:       cfg,
		LogRunner:    logRunner,
		AgentID:      agentID,
		AgentVersion: agentVersion,
		Meta:         baseMeta,
		StartTime:    startTime,
	}, nil
}

// Start launches the log runner and, when configured, the telemetry
// endpoint. Both run until ctx is cancelled.
func (a *Agent) Start(ctx context.Context) {
	logger.Info("EvtShip agent %s starting as %s (%s)", a.AgentVersion, a.Meta.Hostname, a.AgentID)

	go a.LogRunner.Run(ctx)

	if addr := a.Config.Agent.TelemetryAddr; addr != "" {
		go telemetry.Serve(addr)
	}
}

// Close tears down the pipeline: collectors first, then the sender, and
// finally any remaining gRPC connection.
func (a *Agent) Close() {
	a.LogRunner.Close()

	if err := grpcconn.CloseGRPCConn(); err != nil {
		logger.Warn("Failed to close gRPC connection cleanly: %v", err)
	}
	logger.Info("Agent shutdown complete")
}

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

// cmd/main.go - main entry point for the EvtShip agent.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	evtagent "github.com/evtship/agent/internal/agent"
	"github.com/evtship/agent/internal/bootstrap"
	"github.com/evtship/agent/internal/logger"
	"github.com/evtship/agent/internal/winsvc"
)

var Version = "dev" // default
// go build -ldflags "-X main.Version=0.2.0" -o evtship-agent ./cmd

const serviceName = "evtship-agent"

func main() {

	// Bootstrap config loading (flags -> env -> file)
	cfg := bootstrap.LoadAgentConfig()
	bootstrap.SetupLogging(cfg)
	logger.Debug("debug logging is active from main.go")

	// Graceful shutdown context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})

	if winsvc.IsService() {
		// Under the service control manager a Stop request cancels the
		// context; done tells the SCM the pipeline has flushed.
		go func() {
			if err := winsvc.Run(serviceName, cancel, done); err != nil {
				logger.Error("service control handler failed: %v", err)
				cancel()
			}
		}()
	} else {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigs
			logger.Warn("signal received, shutting down agent...")
			cancel()
		}()
	}

	agent, err := evtagent.NewAgent(ctx, cfg, Version)
	if err != nil {
		logger.Error("failed to initialize agent: %v", err)
		os.Exit(1)
	}

	agent.Start(ctx)

	<-ctx.Done()

	logger.Info("Context canceled, beginning agent shutdown...")

	agent.Close()
	close(done)
}

//go:build windows
// +build windows

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

// evtship/agent/internal/winsvc/service_windows.go
// Package winsvc hooks the agent into the Windows service control
// manager so a Stop request shuts the pipeline down cleanly.

package winsvc

import (
	"context"

	"github.com/evtship/agent/internal/logger"
	"golang.org/x/sys/windows/svc"
)

// IsService reports whether the process was started by the service
// control manager. On detection failure it assumes an interactive
// session, which degrades to plain signal handling.
func IsService() bool {
	isSvc, err := svc.IsWindowsService()
	if err != nil {
		logger.Warn("Could not detect service environment: %v", err)
		return false
	}
	return isSvc
}

// Run registers with the service control manager and blocks until the
// service stops. A Stop or Shutdown request cancels the agent context
// and waits for done, so the SCM only sees the stop complete after the
// pipeline has flushed.
func Run(name string, cancel context.CancelFunc, done <-chan struct{}) error {
	return svc.Run(name, &handler{cancel: cancel, done: done})
}

type handler struct {
	cancel context.CancelFunc
	done   <-chan struct{}
}

func (h *handler) Execute(_ []string, requests <-chan svc.ChangeRequest, status chan<- svc.Status) (bool, uint32) {
	const accepted = svc.AcceptStop | svc.AcceptShutdown

	status <- svc.Status{State: svc.StartPending}
	status <- svc.Status{State: svc.Running, Accepts: accepted}

	for {
		select {
		case req := <-requests:
			switch req.Cmd {
			case svc.Interrogate:
				status <- req.CurrentStatus
			case svc.Stop, svc.Shutdown:
				logger.Info("Service stop requested")
				status <- svc.Status{State: svc.StopPending}
				h.cancel()
				<-h.done
				return false, 0
			}
		case <-h.done:
			// The agent stopped on its own (fatal error or signal).
			status <- svc.Status{State: svc.StopPending}
			return false, 0
		}
	}
}

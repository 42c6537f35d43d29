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

// evtship/agent/internal/meta/meta.go
// Package meta assembles the host and agent identity attached to
// every outbound payload.

package meta

import (
	"runtime"

	"github.com/evtship/agent/internal/config"
	"github.com/evtship/agent/internal/logger"
	"github.com/evtship/agent/internal/model"
	agentutils "github.com/evtship/agent/internal/utils"
	"github.com/shirou/gopsutil/v4/host"
)

// BuildMeta gathers the identity of this agent and the host it runs on.
// Hostname honors the configured override so events from a renamed or
// containerized host keep a stable identity. Host details come from
// gopsutil; failures degrade to empty fields rather than aborting.
func BuildMeta(cfg *config.Config, addTags map[string]string, agentID, agentVersion string) *model.Meta {
	hostname := cfg.Agent.HostOverride
	if hostname == "" {
		hostname = agentutils.GetHostname()
	}

	ip := agentutils.GetLocalIP()
	if ip == "" {
		logger.Warn("meta: could not determine local IP address")
	}

	hostInfo, err := host.Info()
	if err != nil {
		logger.Warn("meta: host info unavailable: %v", err)
		hostInfo = &host.InfoStat{}
	}

	return &model.Meta{
		AgentID:         agentID,
		AgentVersion:    agentVersion,
		HostID:          hostInfo.HostID,
		EndpointID:      agentutils.GenerateEndpointID(hostname),
		Hostname:        hostname,
		IPAddress:       ip,
		OS:              hostInfo.OS,
		Platform:        hostInfo.Platform,
		PlatformFamily:  hostInfo.PlatformFamily,
		PlatformVersion: hostInfo.PlatformVersion,
		KernelVersion:   hostInfo.KernelVersion,
		Architecture:    runtime.GOARCH,
		Environment:     cfg.Agent.Environment,
		Tags:            agentutils.MergeMaps(cfg.CustomTags, addTags),
	}
}

// CloneMetaWithTags returns a shallow copy of base with extraTags merged
// over its tag map. The copy shares no map with the original, so per-batch
// tagging never races with other senders holding the base meta.
func CloneMetaWithTags(base *model.Meta, extraTags map[string]string) *model.Meta {
	if base == nil {
		return nil
	}

	clone := *base
	clone.Tags = agentutils.MergeMaps(base.Tags, extraTags)

	return &clone
}

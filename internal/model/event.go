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

// evtship/agent/internal/model/event.go
// Package model defines the records exchanged between collectors,
// the runner, and the sinks.

package model

import "time"

// NormalizedEvent is one outbound log record. Collectors fill the
// generic fields (Timestamp, Host, Path, Level, Message); the Windows
// event log collector additionally fills the Win32_NTLogEvent
// properties, the nested insertion mapping, and the packed data bytes.
// A record is built once and never mutated after hand-off.
type NormalizedEvent struct {
	Timestamp     time.Time `json:"timestamp"`
	OffsetMinutes int       `json:"offset_minutes"`

	Host    string `json:"host"`
	Path    string `json:"path"`
	Type    string `json:"type,omitempty"`
	Level   string `json:"level,omitempty"`
	Message string `json:"message"`

	SourceName      string `json:"source_name,omitempty"`
	ComputerName    string `json:"computer_name,omitempty"`
	Category        uint16 `json:"category,omitempty"`
	CategoryString  string `json:"category_string,omitempty"`
	EventCode       uint16 `json:"event_code,omitempty"`
	EventIdentifier uint32 `json:"event_identifier,omitempty"`
	EventType       uint8  `json:"event_type,omitempty"`
	TypeLabel       string `json:"type_label,omitempty"`
	Logfile         string `json:"logfile,omitempty"`
	RecordNumber    uint32 `json:"record_number,omitempty"`
	TimeGenerated   string `json:"time_generated,omitempty"`
	TimeWritten     string `json:"time_written,omitempty"`
	User            string `json:"user,omitempty"`

	InsertionStrings []string                     `json:"insertion_strings,omitempty"`
	Insertion        map[string]map[string]string `json:"insertion,omitempty"`
	Data             []byte                       `json:"data,omitempty"`

	// Fields carries source-specific extras (journald fields, file path
	// metadata) that have no dedicated column above.
	Fields map[string]string `json:"fields,omitempty"`
}

// EventPayload is one shipping unit: a batch of records plus the
// identity of the agent that produced them.
type EventPayload struct {
	AgentID    string            `json:"agent_id"`
	HostID     string            `json:"host_id"`
	Hostname   string            `json:"hostname"`
	EndpointID string            `json:"endpoint_id"`
	Timestamp  time.Time         `json:"timestamp"`
	Events     []NormalizedEvent `json:"events"`
	Meta       *Meta             `json:"meta,omitempty"`
}

// Meta describes the host and agent that produced a payload.
type Meta struct {
	AgentID         string            `json:"agent_id"`
	AgentVersion    string            `json:"agent_version"`
	HostID          string            `json:"host_id"`
	EndpointID      string            `json:"endpoint_id,omitempty"`
	Hostname        string            `json:"hostname"`
	IPAddress       string            `json:"ip_address,omitempty"`
	OS              string            `json:"os,omitempty"`
	Platform        string            `json:"platform,omitempty"`
	PlatformFamily  string            `json:"platform_family,omitempty"`
	PlatformVersion string            `json:"platform_version,omitempty"`
	KernelVersion   string            `json:"kernel_version,omitempty"`
	Architecture    string            `json:"architecture,omitempty"`
	Environment     string            `json:"environment,omitempty"`
	Tags            map[string]string `json:"tags,omitempty"`
}

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

// evtship/agent/internal/meta/tags.go

package meta

import (
	"fmt"
	"time"

	"github.com/evtship/agent/internal/model"
)

// BuildStandardTags sets the labels every payload carries so downstream
// consumers can group and filter consistently. "job" identifies the
// producer, "instance" the host, and "agent_start_time" lets the server
// compute agent uptime.
func BuildStandardTags(m *model.Meta, startTime time.Time) {
	if m.Tags == nil {
		m.Tags = make(map[string]string)
	}

	m.Tags["agent_start_time"] = fmt.Sprintf("%d", startTime.Unix())
	m.Tags["job"] = "evtship-agent"
	m.Tags["instance"] = m.Hostname

	if m.Environment != "" {
		m.Tags["environment"] = m.Environment
	}
}

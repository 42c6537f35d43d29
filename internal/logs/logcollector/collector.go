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

// evtship/agent/internal/logs/logcollector/collector.go
// Package logcollector defines the Collector interface shared by all
// event sources and the registry that manages them.

package logcollector

import (
	"context"

	"github.com/evtship/agent/internal/model"
)

// Collector is one tailed event source. Collect drains whatever the
// source has buffered since the last call, already grouped into
// batches; it never blocks waiting for new events.
type Collector interface {
	Name() string
	Collect(ctx context.Context) ([][]model.NormalizedEvent, error)
}

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

// evtship/agent/internal/bootstrap/logger.go
// Initializes the process logger.

package bootstrap

import (
	"fmt"
	"os"

	"github.com/evtship/agent/internal/config"
	"github.com/evtship/agent/internal/logger"
)

func SetupLogging(cfg *config.Config) {
	if err := logger.Init(cfg.Logs.AppLogFile, cfg.Logs.ErrorLogFile, cfg.Logs.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
}

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

package config

import (
	"os"
	"path/filepath"
)

const defaultAgentYAML = `agent:
  server_url: "localhost:4317"   # OTLP/gRPC collector, domain/ip:port
  interval: 2s                   # Collection / send interval
  host: ""                       # Hostname override; empty = system hostname
  environment: "dev"             # (dev/prod)
  telemetry_addr: ""             # e.g. ":9109" exposes Prometheus /metrics
  log_collection:
    sources:                     # Enabled sources (see internal/logs/logcollector/registry.go)
      - eventlog
      - journald
    batch_size: 100              # Number of records per payload
    buffer_size: 500             # Per-source channel buffer
    workers: 2                   # Sender worker pool size
    message_max: 4096            # Max message size before truncating
    files: []                    # Extra flat files to tail, e.g. /var/log/auth.log
    journal_cursor_file: ""      # Journald resume cursor; empty = state dir default
    eventlog:
      logfile:                   # Windows event logs to watch
        - Application
        - Security
        - System
      codec: plain               # file/stdout sink encoding: plain or json
      type: eventlog             # type tag attached to records
      wait_timeout: 1s           # bounded wait for the next event
      backoff: 1s                # delay after an unexpected runtime failure
  output:
    mode: otlp                   # otlp | kafka | file | stdout
    file: "./events.ndjson"      # used by mode=file
    kafka:
      brokers:
        - localhost:9092
      topic: "evtship.events"
      required_acks: one         # none | one | all
      batch_size: 100
      batch_timeout: 1s
      async: false

# Log Config
logs:
  app_log_file: "./evtship.log"  # Relative to path of execution
  error_log_file: "error.log"    # Relative to path of execution
  log_level: "info"              # Or "debug", etc.

# TLS Config
tls:
  enabled: false
  ca_file: "../certs/ca.crt"
  cert_file: ""                  # (only needed if doing mTLS)
  key_file: ""                   # (only needed if doing mTLS)
  insecure_skip_verify: false

custom_tags:
  env: dev
`

// EnsureDefaultConfig checks if the default config file exists at the specified path.
// If it does not exist, it creates the directory structure and writes the default config to the file.
func EnsureDefaultConfig(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		return os.WriteFile(path, []byte(defaultAgentYAML), 0o644)
	}
	return nil
}

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

// evtship/agent/internal/logs/logsender/otlp.go

package logsender

import (
	"context"
	"errors"
	"time"

	"github.com/evtship/agent/internal/config"
	grpcconn "github.com/evtship/agent/internal/grpc"
	"github.com/evtship/agent/internal/logger"
	"github.com/evtship/agent/internal/model"
	"github.com/evtship/agent/internal/otlp"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
)

const exportTimeout = 10 * time.Second

// otlpSink exports payloads to an OTLP/gRPC collector. The connection
// is the process-wide one from grpcconn; gRPC reconnects it under the
// covers, so Publish just asks for it again on every call.
type otlpSink struct {
	cfg *config.Config
}

func newOTLPSink(ctx context.Context, cfg *config.Config) (*otlpSink, error) {
	if cfg.Agent.ServerURL == "" {
		return nil, errors.New("otlp output requires server_url")
	}
	// Dial eagerly so a bad address or TLS setup fails at startup
	// instead of on the first batch.
	if _, err := grpcconn.GetGRPCConn(cfg); err != nil {
		return nil, err
	}
	return &otlpSink{cfg: cfg}, nil
}

func (s *otlpSink) Name() string { return "otlp" }

func (s *otlpSink) Publish(ctx context.Context, payload *model.EventPayload) error {
	cc, err := grpcconn.GetGRPCConn(s.cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()

	resp, err := collogspb.NewLogsServiceClient(cc).Export(ctx, otlp.BuildExportRequest(payload))
	if err != nil {
		return err
	}
	if ps := resp.GetPartialSuccess(); ps.GetRejectedLogRecords() > 0 {
		logger.Warn("Collector rejected %d of %d records: %s",
			ps.GetRejectedLogRecords(), len(payload.Events), ps.GetErrorMessage())
	}
	return nil
}

func (s *otlpSink) Close() error {
	return grpcconn.CloseGRPCConn()
}

var _ Sink = (*otlpSink)(nil)

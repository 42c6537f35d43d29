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

// evtship/agent/internal/grpc/connection.go
// Package grpcconn owns the agent's single client connection to the
// OTLP collector.

package grpcconn

import (
	"sync"
	"time"

	"github.com/evtship/agent/internal/config"
	"github.com/evtship/agent/internal/logger"
	agentutils "github.com/evtship/agent/internal/utils"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding/gzip"
	"google.golang.org/grpc/keepalive"
)

var (
	conn   *grpc.ClientConn
	connMu sync.Mutex
)

// GetGRPCConn returns the shared client connection, dialing it on first
// use. A connection in a broken state is closed and replaced, so a
// sender can keep calling this across collector restarts. Safe for
// concurrent use; does not block until the transport is up.
func GetGRPCConn(cfg *config.Config) (*grpc.ClientConn, error) {
	connMu.Lock()
	defer connMu.Unlock()

	if conn != nil {
		state := conn.GetState()
		if state == connectivity.Ready || state == connectivity.Idle || state == connectivity.Connecting {
			return conn, nil
		}
		_ = conn.Close()
		conn = nil
	}

	creds := insecure.NewCredentials()
	if cfg.TLS.Enabled {
		tlsCfg, err := agentutils.LoadTLSConfig(cfg)
		if err != nil {
			return nil, err
		}
		creds = credentials.NewTLS(tlsCfg)
	}

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                2 * time.Minute,
			Timeout:             20 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.WithDefaultCallOptions(
			grpc.UseCompressor(gzip.Name),
			grpc.MaxCallRecvMsgSize(32*1024*1024),
			grpc.MaxCallSendMsgSize(32*1024*1024),
		),
	}

	c, err := grpc.NewClient(cfg.Agent.ServerURL, opts...)
	if err != nil {
		return nil, err
	}
	logger.Info("gRPC client created for %s", cfg.Agent.ServerURL)

	conn = c
	return conn, nil
}

// CloseGRPCConn closes the shared connection on shutdown.
func CloseGRPCConn() error {
	connMu.Lock()
	defer connMu.Unlock()
	if conn != nil {
		err := conn.Close()
		conn = nil
		return err
	}
	return nil
}

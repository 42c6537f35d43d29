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

// evtship/agent/internal/logs/logsender/task.go

package logsender

import (
	"context"
	"time"

	"github.com/evtship/agent/internal/logger"
	"github.com/evtship/agent/internal/model"
	"github.com/evtship/agent/internal/telemetry"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	sendAttempts   = 5
	initialBackoff = 500 * time.Millisecond
	maxSendBackoff = 10 * time.Second
)

// StartWorkerPool launches workerCount workers pulling payloads off the
// queue until ctx is cancelled. A payload that still fails after the
// retry budget is dropped with a log line; one unreachable collector
// must not wedge the queue forever.
func (s *LogSender) StartWorkerPool(ctx context.Context, queue <-chan *model.EventPayload, workerCount int) {
	for i := 0; i < workerCount; i++ {
		s.wg.Add(1)
		go func(id int) {
			defer s.wg.Done()
			for {
				var payload *model.EventPayload
				select {
				case payload = <-queue:
				case <-ctx.Done():
					logger.Debug("Log worker #%d shutting down", id)
					return
				}

				if err := s.trySendWithBackoff(ctx, payload); err != nil {
					telemetry.EventsDropped.WithLabelValues("send").Add(float64(len(payload.Events)))
					logger.Error("Log worker #%d dropping payload of %d events: %v", id, len(payload.Events), err)
				}
			}
		}(i + 1)
	}
}

// trySendWithBackoff publishes with exponential backoff on transient
// failures. gRPC status codes decide retryability for the OTLP sink;
// errors without a status (kafka, file) are treated as transient.
func (s *LogSender) trySendWithBackoff(ctx context.Context, payload *model.EventPayload) error {
	backoff := initialBackoff

	var err error
	for attempt := 1; attempt <= sendAttempts; attempt++ {
		err = s.sink.Publish(ctx, payload)
		if err == nil {
			telemetry.PayloadsSent.WithLabelValues(s.sink.Name()).Inc()
			return nil
		}
		telemetry.SendErrors.WithLabelValues(s.sink.Name()).Inc()

		if st, ok := status.FromError(err); ok {
			switch st.Code() {
			case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
				logger.Warn("Transient send error (%s), retrying in %v [attempt %d/%d]", st.Code(), backoff, attempt, sendAttempts)
			case codes.Canceled:
				return err
			default:
				logger.Error("Permanent send error (%s): %v", st.Code(), err)
				return err
			}
		} else {
			logger.Warn("Send error, retrying in %v [attempt %d/%d]: %v", backoff, attempt, sendAttempts, err)
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
		if backoff > maxSendBackoff {
			backoff = maxSendBackoff
		}
	}

	return err
}

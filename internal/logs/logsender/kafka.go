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

// evtship/agent/internal/logs/logsender/kafka.go

package logsender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/evtship/agent/internal/config"
	"github.com/evtship/agent/internal/logger"
	"github.com/evtship/agent/internal/model"
	"github.com/segmentio/kafka-go"
)

// kafkaSink publishes one message per event. Messages are keyed by
// endpoint ID so all events from one host land on one partition and
// keep their order.
type kafkaSink struct {
	writer *kafka.Writer
	topic  string
}

func newKafkaSink(cfg *config.Config) (*kafkaSink, error) {
	kc := cfg.Agent.Output.Kafka
	if len(kc.Brokers) == 0 || kc.Topic == "" {
		return nil, errors.New("kafka output requires brokers and topic")
	}

	var requiredAcks kafka.RequiredAcks
	switch kc.RequiredAcks {
	case "none":
		requiredAcks = kafka.RequireNone
	case "all":
		requiredAcks = kafka.RequireAll
	default:
		requiredAcks = kafka.RequireOne
	}

	w := &kafka.Writer{
		Addr:     kafka.TCP(kc.Brokers...),
		Topic:    kc.Topic,
		Balancer: &kafka.LeastBytes{},

		BatchSize:    kc.BatchSize,
		BatchTimeout: kc.BatchTimeout,
		RequiredAcks: requiredAcks,
		Async:        kc.Async,

		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error("Kafka writer: "+msg, args...)
		}),
	}

	logger.Info("Kafka producer connected to %v, topic %s", kc.Brokers, kc.Topic)
	return &kafkaSink{writer: w, topic: kc.Topic}, nil
}

func (s *kafkaSink) Name() string { return "kafka" }

func (s *kafkaSink) Publish(ctx context.Context, payload *model.EventPayload) error {
	msgs, err := buildKafkaMessages(payload)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := s.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write to kafka: %w", err)
	}
	return nil
}

// Close flushes whatever the writer still buffers.
func (s *kafkaSink) Close() error {
	return s.writer.Close()
}

func buildKafkaMessages(payload *model.EventPayload) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(payload.Events))
	headers := []kafka.Header{
		{Key: "hostname", Value: []byte(payload.Hostname)},
		{Key: "agent_id", Value: []byte(payload.AgentID)},
	}

	for i := range payload.Events {
		value, err := json.Marshal(&payload.Events[i])
		if err != nil {
			return nil, fmt.Errorf("serialize event: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:     []byte(payload.EndpointID),
			Value:   value,
			Headers: headers,
		})
	}
	return msgs, nil
}

var _ Sink = (*kafkaSink)(nil)

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

// evtship/agent/internal/otlp/convert.go
// Package otlp converts internal event payloads to the OpenTelemetry
// log protos for gRPC export.

package otlp

import (
	"github.com/evtship/agent/internal/model"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
)

// BuildExportRequest maps one payload to an OTLP export request. All
// records of the payload share one resource (the producing host) and
// one scope. The record timestamp is the event's own time; the
// observed timestamp is when the agent collected the batch.
func BuildExportRequest(payload *model.EventPayload) *collogspb.ExportLogsServiceRequest {
	records := make([]*logspb.LogRecord, 0, len(payload.Events))
	observed := uint64(payload.Timestamp.UnixNano())

	for i := range payload.Events {
		rec := &payload.Events[i]
		records = append(records, &logspb.LogRecord{
			TimeUnixNano:         uint64(rec.Timestamp.UnixNano()),
			ObservedTimeUnixNano: observed,
			SeverityNumber:       severityNumber(rec.Level),
			SeverityText:         rec.Level,
			Body:                 strValue(rec.Message),
			Attributes:           recordAttributes(rec),
		})
	}

	return &collogspb.ExportLogsServiceRequest{
		ResourceLogs: []*logspb.ResourceLogs{{
			Resource: &resourcepb.Resource{
				Attributes: resourceAttributes(payload),
			},
			ScopeLogs: []*logspb.ScopeLogs{{
				Scope: &commonpb.InstrumentationScope{
					Name:    "evtship",
					Version: agentVersion(payload.Meta),
				},
				LogRecords: records,
			}},
		}},
	}
}

// severityNumber follows the OTel log data model's syslog appendix:
// critical maps to FATAL, notices and unknown levels to INFO. The
// Windows audit levels keep their text and land on INFO/WARN so a
// failed audit stands out without being treated as an agent error.
func severityNumber(level string) logspb.SeverityNumber {
	switch level {
	case "debug":
		return logspb.SeverityNumber_SEVERITY_NUMBER_DEBUG
	case "info", "audit_success":
		return logspb.SeverityNumber_SEVERITY_NUMBER_INFO
	case "warning", "audit_failure":
		return logspb.SeverityNumber_SEVERITY_NUMBER_WARN
	case "error":
		return logspb.SeverityNumber_SEVERITY_NUMBER_ERROR
	case "critical":
		return logspb.SeverityNumber_SEVERITY_NUMBER_FATAL
	default:
		return logspb.SeverityNumber_SEVERITY_NUMBER_UNSPECIFIED
	}
}

func resourceAttributes(payload *model.EventPayload) []*commonpb.KeyValue {
	attrs := []*commonpb.KeyValue{
		kv("service.name", strValue("evtship-agent")),
		kv("host.name", strValue(payload.Hostname)),
	}

	m := payload.Meta
	if m == nil {
		return attrs
	}

	if m.AgentVersion != "" {
		attrs = append(attrs, kv("service.version", strValue(m.AgentVersion)))
	}
	if m.AgentID != "" {
		attrs = append(attrs, kv("service.instance.id", strValue(m.AgentID)))
	}
	if m.HostID != "" {
		attrs = append(attrs, kv("host.id", strValue(m.HostID)))
	}
	if m.IPAddress != "" {
		attrs = append(attrs, kv("host.ip", strValue(m.IPAddress)))
	}
	if m.OS != "" {
		attrs = append(attrs, kv("os.type", strValue(m.OS)))
	}
	if m.PlatformVersion != "" {
		attrs = append(attrs, kv("os.version", strValue(m.PlatformVersion)))
	}
	if m.Architecture != "" {
		attrs = append(attrs, kv("host.arch", strValue(m.Architecture)))
	}
	if m.Environment != "" {
		attrs = append(attrs, kv("deployment.environment", strValue(m.Environment)))
	}
	for k, v := range m.Tags {
		attrs = append(attrs, kv(k, strValue(v)))
	}

	return attrs
}

// recordAttributes flattens the source-specific columns of a record.
// Zero values are omitted so a plain file line does not drag fifteen
// empty Windows columns along with it.
func recordAttributes(rec *model.NormalizedEvent) []*commonpb.KeyValue {
	attrs := []*commonpb.KeyValue{
		kv("log.type", strValue(rec.Type)),
		kv("log.path", strValue(rec.Path)),
	}

	if rec.SourceName != "" {
		attrs = append(attrs, kv("event.source", strValue(rec.SourceName)))
	}
	if rec.ComputerName != "" {
		attrs = append(attrs, kv("event.computer_name", strValue(rec.ComputerName)))
	}
	if rec.EventCode != 0 {
		attrs = append(attrs, kv("event.code", intValue(int64(rec.EventCode))))
	}
	if rec.EventIdentifier != 0 {
		attrs = append(attrs, kv("event.id", intValue(int64(rec.EventIdentifier))))
	}
	if rec.Category != 0 {
		attrs = append(attrs, kv("event.category", intValue(int64(rec.Category))))
	}
	if rec.CategoryString != "" {
		attrs = append(attrs, kv("event.category_name", strValue(rec.CategoryString)))
	}
	if rec.TypeLabel != "" {
		attrs = append(attrs, kv("event.kind", strValue(rec.TypeLabel)))
	}
	if rec.RecordNumber != 0 {
		attrs = append(attrs, kv("event.record_number", intValue(int64(rec.RecordNumber))))
	}
	if rec.User != "" {
		attrs = append(attrs, kv("event.user", strValue(rec.User)))
	}
	if rec.TimeWritten != "" {
		attrs = append(attrs, kv("event.time_written", strValue(rec.TimeWritten)))
	}
	if rec.TimeGenerated != "" {
		// Event log records carry the producer's UTC offset, which the
		// normalized UTC instant alone would lose.
		attrs = append(attrs, kv("event.tz_offset_minutes", intValue(int64(rec.OffsetMinutes))))
	}
	if len(rec.InsertionStrings) > 0 {
		attrs = append(attrs, kv("event.insertion_strings", strArrayValue(rec.InsertionStrings)))
	}
	if len(rec.Insertion) > 0 {
		attrs = append(attrs, kv("event.insertion", insertionValue(rec.Insertion)))
	}
	if len(rec.Data) > 0 {
		attrs = append(attrs, kv("event.data", bytesValue(rec.Data)))
	}
	if len(rec.Fields) > 0 {
		attrs = append(attrs, kv("fields", mapValue(rec.Fields)))
	}

	return attrs
}

func agentVersion(m *model.Meta) string {
	if m == nil {
		return ""
	}
	return m.AgentVersion
}

func kv(key string, value *commonpb.AnyValue) *commonpb.KeyValue {
	return &commonpb.KeyValue{Key: key, Value: value}
}

func strValue(s string) *commonpb.AnyValue {
	return &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: s}}
}

func intValue(n int64) *commonpb.AnyValue {
	return &commonpb.AnyValue{Value: &commonpb.AnyValue_IntValue{IntValue: n}}
}

func bytesValue(b []byte) *commonpb.AnyValue {
	return &commonpb.AnyValue{Value: &commonpb.AnyValue_BytesValue{BytesValue: b}}
}

func strArrayValue(ss []string) *commonpb.AnyValue {
	vals := make([]*commonpb.AnyValue, 0, len(ss))
	for _, s := range ss {
		vals = append(vals, strValue(s))
	}
	return &commonpb.AnyValue{Value: &commonpb.AnyValue_ArrayValue{
		ArrayValue: &commonpb.ArrayValue{Values: vals},
	}}
}

func mapValue(m map[string]string) *commonpb.AnyValue {
	vals := make([]*commonpb.KeyValue, 0, len(m))
	for k, v := range m {
		vals = append(vals, kv(k, strValue(v)))
	}
	return &commonpb.AnyValue{Value: &commonpb.AnyValue_KvlistValue{
		KvlistValue: &commonpb.KeyValueList{Values: vals},
	}}
}

// insertionValue nests the two-level insertion mapping as a kvlist of
// kvlists, mirroring its shape in the source event.
func insertionValue(m map[string]map[string]string) *commonpb.AnyValue {
	outer := make([]*commonpb.KeyValue, 0, len(m))
	for parent, children := range m {
		outer = append(outer, kv(parent, mapValue(children)))
	}
	return &commonpb.AnyValue{Value: &commonpb.AnyValue_KvlistValue{
		KvlistValue: &commonpb.KeyValueList{Values: outer},
	}}
}

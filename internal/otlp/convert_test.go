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

package otlp

import (
	"testing"
	"time"

	"github.com/evtship/agent/internal/model"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
)

func findAttr(attrs []*commonpb.KeyValue, key string) *commonpb.AnyValue {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value
		}
	}
	return nil
}

func TestBuildExportRequest(t *testing.T) {
	eventTime := time.Date(2014, 1, 15, 8, 30, 0, 0, time.UTC)
	collected := time.Date(2014, 1, 15, 8, 30, 2, 0, time.UTC)

	payload := &model.EventPayload{
		AgentID:    "agent-1",
		HostID:     "host-uuid",
		Hostname:   "WIN-ABC",
		EndpointID: "host-deadbeef",
		Timestamp:  collected,
		Events: []model.NormalizedEvent{
			{
				Timestamp:       eventTime,
				OffsetMinutes:   60,
				Host:            "WIN-ABC",
				Path:            "Security",
				Type:            "eventlog",
				Level:           "audit_failure",
				Message:         "An account failed to log on.",
				SourceName:      "Microsoft-Windows-Security-Auditing",
				ComputerName:    "WIN-ABC.example.test",
				EventCode:       4625,
				EventIdentifier: 4625,
				TypeLabel:       "Audit Failure",
				Logfile:         "Security",
				RecordNumber:    991,
				TimeGenerated:   "20140115093000.000000+060",
				User:            "SYSTEM",
				InsertionStrings: []string{
					"S-1-0-0", "joe",
				},
				Insertion: map[string]map[string]string{
					"Subject:": {"Account Name:": "joe"},
				},
				Data: []byte{0xc8, 0xc8},
			},
			{
				Timestamp: eventTime,
				Host:      "WIN-ABC",
				Path:      "/var/log/app.log",
				Type:      "file",
				Level:     "info",
				Message:   "started",
			},
		},
		Meta: &model.Meta{
			AgentID:      "agent-1",
			AgentVersion: "1.2.3",
			HostID:       "host-uuid",
			Hostname:     "WIN-ABC",
			Environment:  "prod",
			Tags:         map[string]string{"job": "evtship-logs"},
		},
	}

	req := BuildExportRequest(payload)

	if len(req.ResourceLogs) != 1 {
		t.Fatalf("expected 1 ResourceLogs, got %d", len(req.ResourceLogs))
	}
	rl := req.ResourceLogs[0]
	if len(rl.ScopeLogs) != 1 {
		t.Fatalf("expected 1 ScopeLogs, got %d", len(rl.ScopeLogs))
	}
	sl := rl.ScopeLogs[0]
	if sl.Scope.Name != "evtship" || sl.Scope.Version != "1.2.3" {
		t.Errorf("unexpected scope %q/%q", sl.Scope.Name, sl.Scope.Version)
	}
	if len(sl.LogRecords) != 2 {
		t.Fatalf("expected 2 records, got %d", len(sl.LogRecords))
	}

	res := rl.Resource.Attributes
	if v := findAttr(res, "service.name"); v.GetStringValue() != "evtship-agent" {
		t.Errorf("service.name = %v", v)
	}
	if v := findAttr(res, "host.name"); v.GetStringValue() != "WIN-ABC" {
		t.Errorf("host.name = %v", v)
	}
	if v := findAttr(res, "deployment.environment"); v.GetStringValue() != "prod" {
		t.Errorf("deployment.environment = %v", v)
	}
	if v := findAttr(res, "job"); v.GetStringValue() != "evtship-logs" {
		t.Errorf("tag job = %v", v)
	}

	win := sl.LogRecords[0]
	if win.TimeUnixNano != uint64(eventTime.UnixNano()) {
		t.Errorf("TimeUnixNano = %d", win.TimeUnixNano)
	}
	if win.ObservedTimeUnixNano != uint64(collected.UnixNano()) {
		t.Errorf("ObservedTimeUnixNano = %d", win.ObservedTimeUnixNano)
	}
	if win.SeverityNumber != logspb.SeverityNumber_SEVERITY_NUMBER_WARN {
		t.Errorf("severity number = %v", win.SeverityNumber)
	}
	if win.SeverityText != "audit_failure" {
		t.Errorf("severity text = %q", win.SeverityText)
	}
	if win.Body.GetStringValue() != "An account failed to log on." {
		t.Errorf("body = %v", win.Body)
	}

	if v := findAttr(win.Attributes, "event.code"); v.GetIntValue() != 4625 {
		t.Errorf("event.code = %v", v)
	}
	if v := findAttr(win.Attributes, "event.tz_offset_minutes"); v.GetIntValue() != 60 {
		t.Errorf("event.tz_offset_minutes = %v", v)
	}
	if v := findAttr(win.Attributes, "event.kind"); v.GetStringValue() != "Audit Failure" {
		t.Errorf("event.kind = %v", v)
	}

	arr := findAttr(win.Attributes, "event.insertion_strings").GetArrayValue()
	if arr == nil || len(arr.Values) != 2 || arr.Values[1].GetStringValue() != "joe" {
		t.Errorf("insertion_strings = %v", arr)
	}

	ins := findAttr(win.Attributes, "event.insertion").GetKvlistValue()
	if ins == nil || len(ins.Values) != 1 || ins.Values[0].Key != "Subject:" {
		t.Fatalf("insertion = %v", ins)
	}
	inner := ins.Values[0].Value.GetKvlistValue()
	if inner == nil || len(inner.Values) != 1 || inner.Values[0].Value.GetStringValue() != "joe" {
		t.Errorf("insertion children = %v", inner)
	}

	data := findAttr(win.Attributes, "event.data").GetBytesValue()
	if len(data) != 2 || data[0] != 0xc8 {
		t.Errorf("event.data = %v", data)
	}

	// The plain file record must not grow empty Windows columns.
	plain := sl.LogRecords[1]
	if plain.SeverityNumber != logspb.SeverityNumber_SEVERITY_NUMBER_INFO {
		t.Errorf("severity number = %v", plain.SeverityNumber)
	}
	for _, key := range []string{"event.code", "event.insertion", "event.data", "event.tz_offset_minutes"} {
		if v := findAttr(plain.Attributes, key); v != nil {
			t.Errorf("unexpected attribute %s = %v on file record", key, v)
		}
	}
	if v := findAttr(plain.Attributes, "log.path"); v.GetStringValue() != "/var/log/app.log" {
		t.Errorf("log.path = %v", v)
	}
}

func TestSeverityNumber(t *testing.T) {
	cases := map[string]logspb.SeverityNumber{
		"debug":         logspb.SeverityNumber_SEVERITY_NUMBER_DEBUG,
		"info":          logspb.SeverityNumber_SEVERITY_NUMBER_INFO,
		"audit_success": logspb.SeverityNumber_SEVERITY_NUMBER_INFO,
		"warning":       logspb.SeverityNumber_SEVERITY_NUMBER_WARN,
		"audit_failure": logspb.SeverityNumber_SEVERITY_NUMBER_WARN,
		"error":         logspb.SeverityNumber_SEVERITY_NUMBER_ERROR,
		"critical":      logspb.SeverityNumber_SEVERITY_NUMBER_FATAL,
		"":              logspb.SeverityNumber_SEVERITY_NUMBER_UNSPECIFIED,
		"bogus":         logspb.SeverityNumber_SEVERITY_NUMBER_UNSPECIFIED,
	}
	for level, want := range cases {
		if got := severityNumber(level); got != want {
			t.Errorf("severityNumber(%q) = %v, want %v", level, got, want)
		}
	}
}

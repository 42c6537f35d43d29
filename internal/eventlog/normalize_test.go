// evtship/agent/internal/eventlog/normalize_test.go

package eventlog

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

// wrapped simulates a binding that hands array members back inside a
// variant-like container.
type wrapped struct{ v any }

func (w wrapped) Value() any { return w.v }

func TestNormalizeEvent(t *testing.T) {
	message := "An account was successfully logged on.\r\n\r\n" +
		"Subject:\r\n\tSecurity ID:\t\tS-1-5-18\r\n\tAccount Name:\t\tSYSTEM\r\n\r\n" +
		"Logon Information:\r\n\tLogon Type:\t\t3"

	raw := &RawEvent{
		Category:         2,
		CategoryString:   "Logon",
		ComputerName:     "WIN-ABC123",
		Data:             []any{wrapped{int16(200)}, wrapped{int16(-56)}},
		EventCode:        4624,
		EventIdentifier:  4624,
		EventType:        4,
		InsertionStrings: []any{wrapped{"S-1-5-18"}, wrapped{nil}, wrapped{int32(3)}},
		Logfile:          "Security",
		Message:          message,
		RecordNumber:     987654,
		SourceName:       "Microsoft-Windows-Security-Auditing",
		TimeGenerated:    "20140115093000.000000+060",
		TimeWritten:      "20140115093001.000000+060",
		Type:             "Audit Success",
		User:             "SYSTEM",
	}

	n := NewNormalizer("agent-host", "eventlog", ValueUnwrapper{})
	got, err := n.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if !got.Timestamp.Equal(time.Date(2014, 1, 15, 8, 30, 0, 0, time.UTC)) {
		t.Errorf("Timestamp = %s, want 2014-01-15T08:30:00Z", got.Timestamp.UTC())
	}
	if got.OffsetMinutes != 60 {
		t.Errorf("OffsetMinutes = %d, want 60", got.OffsetMinutes)
	}
	if got.Host != "agent-host" {
		t.Errorf("Host = %q, want agent-host", got.Host)
	}
	if got.Path != "Security" {
		t.Errorf("Path = %q, want Security", got.Path)
	}
	if got.Type != "eventlog" {
		t.Errorf("Type = %q, want eventlog", got.Type)
	}
	if got.Level != "audit_success" {
		t.Errorf("Level = %q, want audit_success", got.Level)
	}
	if got.Message != "An account was successfully logged on." {
		t.Errorf("Message = %q, want first line only", got.Message)
	}
	if got.SourceName != raw.SourceName || got.ComputerName != raw.ComputerName {
		t.Errorf("source fields not copied: %q %q", got.SourceName, got.ComputerName)
	}
	if got.EventCode != 4624 || got.EventIdentifier != 4624 || got.RecordNumber != 987654 {
		t.Errorf("numeric fields not copied: %d %d %d", got.EventCode, got.EventIdentifier, got.RecordNumber)
	}
	if got.TypeLabel != "Audit Success" {
		t.Errorf("TypeLabel = %q, want Audit Success", got.TypeLabel)
	}
	if got.TimeGenerated != raw.TimeGenerated || got.TimeWritten != raw.TimeWritten {
		t.Errorf("vendor timestamps not copied verbatim: %q %q", got.TimeGenerated, got.TimeWritten)
	}
	if !reflect.DeepEqual(got.InsertionStrings, []string{"S-1-5-18", "", "3"}) {
		t.Errorf("InsertionStrings = %v", got.InsertionStrings)
	}
	if !reflect.DeepEqual(got.Data, []byte{200, 200}) {
		t.Errorf("Data = %v, want [200 200]", got.Data)
	}

	wantInsertion := map[string]map[string]string{
		"Subject:":           {"Security ID:": "S-1-5-18", "Account Name:": "SYSTEM"},
		"Logon Information:": {"Logon Type:": "3"},
	}
	if !reflect.DeepEqual(got.Insertion, wantInsertion) {
		t.Errorf("Insertion = %v, want %v", got.Insertion, wantInsertion)
	}

	// Normalization is pure; a second pass over the same raw event
	// must produce an identical record.
	again, err := n.Normalize(raw)
	if err != nil {
		t.Fatalf("second Normalize() error = %v", err)
	}
	if !reflect.DeepEqual(got, again) {
		t.Error("repeated Normalize() produced a different record")
	}
}

func TestNormalizeDataBytes(t *testing.T) {
	n := NewNormalizer("h", "eventlog", nil)
	got, err := n.Normalize(&RawEvent{
		TimeGenerated: "20200101000000.000000+000",
		Data:          []any{int16(200), int16(-56), int32(-1), "junk", nil, int64(255)},
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	want := []byte{200, 200, 255, 255}
	if !reflect.DeepEqual(got.Data, want) {
		t.Errorf("Data = %v, want %v", got.Data, want)
	}
}

func TestNormalizeNilArrays(t *testing.T) {
	n := NewNormalizer("h", "eventlog", nil)
	got, err := n.Normalize(&RawEvent{TimeGenerated: "20200101000000.000000+000"})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got.InsertionStrings != nil {
		t.Errorf("InsertionStrings = %v, want nil", got.InsertionStrings)
	}
	if got.Data != nil {
		t.Errorf("Data = %v, want nil", got.Data)
	}
}

func TestNormalizeMalformedTimestamp(t *testing.T) {
	n := NewNormalizer("h", "eventlog", nil)
	_, err := n.Normalize(&RawEvent{TimeGenerated: "yesterday", Logfile: "Application"})
	if !errors.Is(err, ErrMalformedTimestamp) {
		t.Fatalf("Normalize() error = %v, want ErrMalformedTimestamp", err)
	}
}

func TestMapEventLevel(t *testing.T) {
	tests := []struct {
		eventType uint8
		want      string
	}{
		{1, "error"},
		{2, "warning"},
		{3, "info"},
		{4, "audit_success"},
		{5, "audit_failure"},
		{0, "info"},
		{9, "info"},
	}
	for _, tt := range tests {
		if got := mapEventLevel(tt.eventType); got != tt.want {
			t.Errorf("mapEventLevel(%d) = %q, want %q", tt.eventType, got, tt.want)
		}
	}
}

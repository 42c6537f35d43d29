// evtship/agent/internal/eventlog/normalize.go

package eventlog

import (
	"fmt"

	"github.com/evtship/agent/internal/model"
)

// Normalizer converts raw provider events into the flat shipping
// shape. It is stateless after construction; Normalize never mutates
// its input and repeated calls on the same event yield the same
// result.
type Normalizer struct {
	host    string
	typeTag string
	unwrap  Unwrapper
}

// NewNormalizer returns a normalizer tagging events with the given
// host and type. A nil unwrapper defaults to passthrough.
func NewNormalizer(host, typeTag string, unwrap Unwrapper) *Normalizer {
	if unwrap == nil {
		unwrap = PassthroughUnwrapper{}
	}
	return &Normalizer{host: host, typeTag: typeTag, unwrap: unwrap}
}

// Normalize maps a raw event to the shipping model. The provider
// timestamp becomes a zoned time plus its UTC offset in minutes, the
// full message is decomposed into the insertion mapping and then
// replaced by its trimmed first line, and wrapped array members are
// unwrapped to plain strings and bytes. A malformed timestamp aborts
// the event.
func (n *Normalizer) Normalize(ev *RawEvent) (model.NormalizedEvent, error) {
	ts, offset, err := ParseWMITimestamp(ev.TimeGenerated)
	if err != nil {
		return model.NormalizedEvent{}, err
	}

	return model.NormalizedEvent{
		Timestamp:        ts,
		OffsetMinutes:    offset,
		Host:             n.host,
		Path:             ev.Logfile,
		Type:             n.typeTag,
		Level:            mapEventLevel(ev.EventType),
		Message:          firstLine(ev.Message),
		SourceName:       ev.SourceName,
		ComputerName:     ev.ComputerName,
		Category:         ev.Category,
		CategoryString:   ev.CategoryString,
		EventCode:        ev.EventCode,
		EventIdentifier:  ev.EventIdentifier,
		EventType:        ev.EventType,
		TypeLabel:        ev.Type,
		Logfile:          ev.Logfile,
		RecordNumber:     ev.RecordNumber,
		TimeGenerated:    ev.TimeGenerated,
		TimeWritten:      ev.TimeWritten,
		User:             ev.User,
		InsertionStrings: n.unwrapStrings(ev.InsertionStrings),
		Insertion:        ParseInsertionData(ev.Message),
		Data:             n.unwrapData(ev.Data),
	}, nil
}

// mapEventLevel translates the numeric Win32_NTLogEvent EventType to
// a severity word.
func mapEventLevel(eventType uint8) string {
	switch eventType {
	case 1:
		return "error"
	case 2:
		return "warning"
	case 3:
		return "info"
	case 4:
		return "audit_success"
	case 5:
		return "audit_failure"
	default:
		return "info"
	}
}

// unwrapStrings flattens a wrapped string array. Nil members become
// empty strings, non-string members are rendered with fmt.
func (n *Normalizer) unwrapStrings(values []any) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		u := n.unwrap.Unwrap(v)
		switch s := u.(type) {
		case nil:
			out = append(out, "")
		case string:
			out = append(out, s)
		default:
			out = append(out, fmt.Sprint(s))
		}
	}
	return out
}

// unwrapData flattens a wrapped byte array. Members arrive as signed
// integers on some runtimes; negative values are reinterpreted as
// their unsigned byte pattern. Non-numeric members are dropped.
func (n *Normalizer) unwrapData(values []any) []byte {
	if values == nil {
		return nil
	}
	out := make([]byte, 0, len(values))
	for _, v := range values {
		if b, ok := toDataByte(n.unwrap.Unwrap(v)); ok {
			out = append(out, b)
		}
	}
	return out
}

func toDataByte(v any) (byte, bool) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint:
		n = int64(x)
	case uint8:
		return x, true
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint64:
		n = int64(x)
	default:
		return 0, false
	}
	if n < 0 {
		n += 256
	}
	return byte(n & 0xff), true
}

// evtship/agent/internal/eventlog/event.go
// Package eventlog tails the Windows event log through the WMI
// change-notification facility and turns raw events into normalized
// records. The wait/normalize pipeline is platform independent; only
// the subscription implementation touches the OS.

package eventlog

import (
	"errors"
	"fmt"
	"time"
)

// RawEvent mirrors the named properties of one Win32_NTLogEvent
// instance as delivered by a subscription. The two arrays keep the
// binding's element representation (possibly wrapped); the normalizer
// unwraps them. An event is only valid until the next wait call, so
// nothing may retain one across iterations.
type RawEvent struct {
	Category         uint16
	CategoryString   string
	ComputerName     string
	Data             []any
	EventCode        uint16
	EventIdentifier  uint32
	EventType        uint8
	InsertionStrings []any
	Logfile          string
	Message          string
	RecordNumber     uint32
	SourceName       string
	TimeGenerated    string
	TimeWritten      string
	Type             string
	User             string
}

var (
	// ErrNoEvent reports that a bounded wait elapsed with nothing to
	// read. Not a failure; the caller simply waits again.
	ErrNoEvent = errors.New("eventlog: no event within wait interval")

	// ErrMalformedTimestamp reports a vendor timestamp outside the
	// fixed YYYYMMDDhhmmss.ffffff±UUU layout.
	ErrMalformedTimestamp = errors.New("eventlog: malformed timestamp")

	// ErrUnsupported reports that the change-notification facility
	// does not exist on this platform.
	ErrUnsupported = errors.New("eventlog: subscriptions unsupported on this platform")
)

// NativeCallError wraps a transient failure raised by the underlying
// OS facility during a wait. The tail loop swallows these and retries
// the wait immediately.
type NativeCallError struct {
	Op  string
	Err error
}

func (e *NativeCallError) Error() string {
	return fmt.Sprintf("eventlog: native %s call failed: %v", e.Op, e.Err)
}

func (e *NativeCallError) Unwrap() error { return e.Err }

// Subscriber opens change-notification subscriptions against the OS
// event facility.
type Subscriber interface {
	Subscribe(query string) (Subscription, error)
}

// Subscription is a live watch over one or more event logs. NextEvent
// blocks up to timeout and returns ErrNoEvent when the interval
// elapses quietly, or a *NativeCallError when the facility hiccups in
// a retryable way. A subscription belongs to a single goroutine.
type Subscription interface {
	NextEvent(timeout time.Duration) (*RawEvent, error)
	Close() error
}

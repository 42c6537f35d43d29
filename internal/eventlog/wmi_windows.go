//go:build windows
// +build windows

// evtship/agent/internal/eventlog/wmi_windows.go

package eventlog

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

const (
	// S_FALSE from CoInitializeEx means the thread already holds an
	// initialized apartment. Still counted, so Close uninitializes.
	S_FALSE = 0x00000001

	// wbemErrTimedout is raised by SWbemEventSource.NextEvent when
	// the wait interval elapses with nothing to deliver.
	wbemErrTimedout = 0x80043001
)

// WMISubscriber opens notification queries against the local CIM
// repository through the WbemScripting automation objects.
type WMISubscriber struct{}

func NewWMISubscriber() (*WMISubscriber, error) {
	return &WMISubscriber{}, nil
}

// Unwrapper reports how this binding represents array members. The
// scripting binding converts safe arrays to native Go values, so no
// per-member unwrap is required.
func (s *WMISubscriber) Unwrapper() Unwrapper { return PassthroughUnwrapper{} }

// Subscribe connects to root\cimv2 and registers the notification
// query. The returned subscription owns a COM apartment pinned to the
// calling goroutine's thread; Subscribe, NextEvent and Close must all
// run on that one goroutine.
func (s *WMISubscriber) Subscribe(query string) (Subscription, error) {
	runtime.LockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		oleCode := err.(*ole.OleError).Code()
		if oleCode != ole.S_OK && oleCode != S_FALSE {
			runtime.UnlockOSThread()
			return nil, fmt.Errorf("initialize com: %w", err)
		}
	}

	// From here on the subscription owns cleanup; Close releases
	// whatever has been acquired so far.
	sub := &wmiSubscription{}

	unknown, err := oleutil.CreateObject("WbemScripting.SWbemLocator")
	if err != nil {
		sub.Close()
		return nil, fmt.Errorf("create wbem locator: %w", err)
	}
	sub.unknown = unknown

	locator, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		sub.Close()
		return nil, fmt.Errorf("query locator dispatch: %w", err)
	}
	sub.locator = locator

	service, err := oleutil.CallMethod(locator, "ConnectServer", ".", `root\cimv2`)
	if err != nil {
		sub.Close()
		return nil, fmt.Errorf("connect to cim repository: %w", err)
	}
	sub.service = service

	source, err := oleutil.CallMethod(service.ToIDispatch(), "ExecNotificationQuery", query)
	if err != nil {
		sub.Close()
		return nil, fmt.Errorf("exec notification query: %w", err)
	}
	sub.source = source

	return sub, nil
}

// wmiSubscription wraps one SWbemEventSource. The variants returned
// by ConnectServer and ExecNotificationQuery hold the dispatch
// references; clearing them on Close releases the chain.
type wmiSubscription struct {
	unknown *ole.IUnknown
	locator *ole.IDispatch
	service *ole.VARIANT
	source  *ole.VARIANT
	closed  bool
}

// NextEvent blocks up to timeout for the next notification and reads
// the embedded Win32_NTLogEvent instance. A quiet interval maps to
// ErrNoEvent; any other automation failure is wrapped as a
// *NativeCallError for the tail loop to retry.
func (w *wmiSubscription) NextEvent(timeout time.Duration) (*RawEvent, error) {
	ms := int(timeout / time.Millisecond)
	notification, err := oleutil.CallMethod(w.source.ToIDispatch(), "NextEvent", ms)
	if err != nil {
		if code, ok := oleErrorCode(err); ok && code == wbemErrTimedout {
			return nil, ErrNoEvent
		}
		return nil, &NativeCallError{Op: "NextEvent", Err: err}
	}
	defer notification.Clear()

	instance, err := oleutil.GetProperty(notification.ToIDispatch(), "TargetInstance")
	if err != nil {
		return nil, &NativeCallError{Op: "TargetInstance", Err: err}
	}
	defer instance.Clear()

	return readEvent(instance.ToIDispatch())
}

func (w *wmiSubscription) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.source != nil {
		w.source.Clear()
		w.source = nil
	}
	if w.service != nil {
		w.service.Clear()
		w.service = nil
	}
	if w.locator != nil {
		w.locator.Release()
		w.locator = nil
	}
	if w.unknown != nil {
		w.unknown.Release()
		w.unknown = nil
	}
	ole.CoUninitialize()
	runtime.UnlockOSThread()
	return nil
}

// readEvent copies the named properties of a Win32_NTLogEvent
// instance into a RawEvent.
func readEvent(instance *ole.IDispatch) (*RawEvent, error) {
	r := &propReader{instance: instance}
	ev := &RawEvent{
		Category:         uint16(r.uint("Category")),
		CategoryString:   r.str("CategoryString"),
		ComputerName:     r.str("ComputerName"),
		Data:             r.array("Data"),
		EventCode:        uint16(r.uint("EventCode")),
		EventIdentifier:  uint32(r.uint("EventIdentifier")),
		EventType:        uint8(r.uint("EventType")),
		InsertionStrings: r.array("InsertionStrings"),
		Logfile:          r.str("Logfile"),
		Message:          r.str("Message"),
		RecordNumber:     uint32(r.uint("RecordNumber")),
		SourceName:       r.str("SourceName"),
		TimeGenerated:    r.str("TimeGenerated"),
		TimeWritten:      r.str("TimeWritten"),
		Type:             r.str("Type"),
		User:             r.str("User"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return ev, nil
}

// propReader reads typed properties off a dispatch instance with a
// sticky first error.
type propReader struct {
	instance *ole.IDispatch
	err      error
}

func (r *propReader) get(name string) *ole.VARIANT {
	if r.err != nil {
		return nil
	}
	v, err := oleutil.GetProperty(r.instance, name)
	if err != nil {
		r.err = &NativeCallError{Op: "GetProperty " + name, Err: err}
		return nil
	}
	return v
}

func (r *propReader) str(name string) string {
	v := r.get(name)
	if v == nil {
		return ""
	}
	defer v.Clear()
	if v.VT == ole.VT_NULL || v.VT == ole.VT_EMPTY {
		return ""
	}
	if s, ok := v.Value().(string); ok {
		return s
	}
	return fmt.Sprint(v.Value())
}

func (r *propReader) uint(name string) uint64 {
	v := r.get(name)
	if v == nil {
		return 0
	}
	defer v.Clear()
	switch n := v.Value().(type) {
	case int:
		return uint64(n)
	case int8:
		return uint64(n)
	case int16:
		return uint64(n)
	case int32:
		return uint64(n)
	case int64:
		return uint64(n)
	case uint:
		return uint64(n)
	case uint8:
		return uint64(n)
	case uint16:
		return uint64(n)
	case uint32:
		return uint64(n)
	case uint64:
		return n
	case float64:
		return uint64(n)
	default:
		return 0
	}
}

func (r *propReader) array(name string) []any {
	v := r.get(name)
	if v == nil {
		return nil
	}
	defer v.Clear()
	if v.VT == ole.VT_NULL || v.VT == ole.VT_EMPTY {
		return nil
	}
	sa := v.ToArray()
	if sa == nil {
		return nil
	}
	return sa.ToValueArray()
}

// oleErrorCode digs the operation status out of an automation error.
// Provider exceptions carry their code in the EXCEPINFO scode field
// rather than the outer HRESULT.
func oleErrorCode(err error) (uint32, bool) {
	var oleErr *ole.OleError
	if !errors.As(err, &oleErr) {
		return 0, false
	}
	switch sub := oleErr.SubError().(type) {
	case ole.EXCEPINFO:
		return uint32(sub.SCODE()), true
	case *ole.EXCEPINFO:
		return uint32(sub.SCODE()), true
	}
	return uint32(oleErr.Code()), true
}

//go:build !windows
// +build !windows

// evtship/agent/internal/eventlog/wmi_stub.go

package eventlog

// WMISubscriber exists only on Windows; elsewhere construction
// reports ErrUnsupported so the registry skips the source.
type WMISubscriber struct{}

func NewWMISubscriber() (*WMISubscriber, error) {
	return nil, ErrUnsupported
}

func (s *WMISubscriber) Unwrapper() Unwrapper { return PassthroughUnwrapper{} }

func (s *WMISubscriber) Subscribe(query string) (Subscription, error) {
	return nil, ErrUnsupported
}

// evtship/agent/internal/eventlog/unwrap.go

package eventlog

// Unwrapper converts provider-wrapped property values into plain Go
// values. WMI hands array members back as variants on some runtimes
// and as native values on others; the subscriber picks the matching
// implementation at startup so the normalizer never has to care.
type Unwrapper interface {
	Unwrap(v any) any
}

// PassthroughUnwrapper returns values untouched. Used when the event
// source already yields native Go values.
type PassthroughUnwrapper struct{}

func (PassthroughUnwrapper) Unwrap(v any) any { return v }

// valuer is the shape of a wrapped variant: anything exposing the
// underlying value through a Value method.
type valuer interface {
	Value() any
}

// ValueUnwrapper unwraps values that carry a Value accessor, such as
// OLE variants, and passes everything else through unchanged.
type ValueUnwrapper struct{}

func (ValueUnwrapper) Unwrap(v any) any {
	if w, ok := v.(valuer); ok {
		return w.Value()
	}
	return v
}
